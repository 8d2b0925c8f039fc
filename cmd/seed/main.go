// Command seed loads a YAML catalog of users, campaigns and challenges and
// inserts the entries that do not exist yet. Safe to run repeatedly.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/Howards254/maathai-innovation-catalyst/internal/config"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

type catalog struct {
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
	Campaigns []struct {
		Title       string    `yaml:"title"`
		Description string    `yaml:"description"`
		TargetTrees int       `yaml:"target_trees"`
		StartDate   time.Time `yaml:"start_date"`
		EndDate     time.Time `yaml:"end_date"`
		CreatedBy   string    `yaml:"created_by"` // username, must exist or be in users above
	} `yaml:"campaigns"`
	Challenges []struct {
		Title        string    `yaml:"title"`
		Description  string    `yaml:"description"`
		TargetValue  int       `yaml:"target_value"`
		RewardPoints int       `yaml:"reward_points"`
		StartTime    time.Time `yaml:"start_time"`
		EndTime      time.Time `yaml:"end_time"`
	} `yaml:"challenges"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	catalogPath := flag.String("catalog", "config/seed.yaml", "path to seed catalog")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	raw, err := os.ReadFile(*catalogPath)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	var cat catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)

	created := 0

	for _, u := range cat.Users {
		if _, err := userRepo.GetByUsername(u.Username); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("look up user %q: %w", u.Username, err)
		}
		role := u.Role
		if role == "" {
			role = models.RoleUser
		}
		if err := userRepo.Create(&models.User{Username: u.Username, Email: u.Email, Role: role}); err != nil {
			return fmt.Errorf("create user %q: %w", u.Username, err)
		}
		created++
		logg.Info().Str("username", u.Username).Str("role", role).Msg("Seeded user")
	}

	existing, err := campaignRepo.List("")
	if err != nil {
		return fmt.Errorf("list campaigns: %w", err)
	}
	campaignTitles := make(map[string]bool, len(existing))
	for _, c := range existing {
		campaignTitles[c.Title] = true
	}

	for _, c := range cat.Campaigns {
		if campaignTitles[c.Title] {
			continue
		}
		creator, err := userRepo.GetByUsername(c.CreatedBy)
		if err != nil {
			return fmt.Errorf("campaign %q: creator %q: %w", c.Title, c.CreatedBy, err)
		}
		campaign := &models.Campaign{
			Title:       c.Title,
			Description: c.Description,
			TargetTrees: c.TargetTrees,
			StartDate:   c.StartDate,
			EndDate:     c.EndDate,
			Status:      models.CampaignStatusActive,
			CreatedBy:   creator.ID,
		}
		if err := campaignRepo.Create(campaign); err != nil {
			return fmt.Errorf("create campaign %q: %w", c.Title, err)
		}
		created++
		logg.Info().Str("title", c.Title).Int("target_trees", c.TargetTrees).Msg("Seeded campaign")
	}

	allChallenges, err := challengeRepo.List(time.Time{})
	if err != nil {
		return fmt.Errorf("list challenges: %w", err)
	}
	challengeTitles := make(map[string]bool, len(allChallenges))
	for _, c := range allChallenges {
		challengeTitles[c.Title] = true
	}

	for _, c := range cat.Challenges {
		if challengeTitles[c.Title] {
			continue
		}
		challenge := &models.Challenge{
			Title:        c.Title,
			Description:  c.Description,
			TargetValue:  c.TargetValue,
			RewardPoints: c.RewardPoints,
			StartTime:    c.StartTime,
			EndTime:      c.EndTime,
		}
		if err := challengeRepo.Create(challenge); err != nil {
			return fmt.Errorf("create challenge %q: %w", c.Title, err)
		}
		created++
		logg.Info().Str("title", c.Title).Int("reward", c.RewardPoints).Msg("Seeded challenge")
	}

	logg.Info().Int("created", created).Msg("Seed catalog applied")
	return nil
}
