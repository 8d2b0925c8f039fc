// Package scheduler runs the background maintenance jobs: the challenge
// expiry sweep, the leaderboard cache refresh and the badge audit.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Howards254/maathai-innovation-catalyst/internal/config"
	prommetrics "github.com/Howards254/maathai-innovation-catalyst/internal/metrics"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/internal/rules"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/leaderboard"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// Job names as reported in logs and metrics.
const (
	jobChallengeSweep     = "challenge_sweep"
	jobLeaderboardRefresh = "leaderboard_refresh"
	jobBadgeAudit         = "badge_audit"
)

// ChallengeRepository interface for challenge listing.
type ChallengeRepository interface {
	List(activeAt time.Time) ([]models.Challenge, error)
}

// UserRepository interface for user listing.
type UserRepository interface {
	List(role string) ([]models.User, error)
}

// LedgerRepository interface for badge award repair.
type LedgerRepository interface {
	AwardTier(userID uint, tier string, threshold int) (bool, error)
}

// LeaderboardService interface for cache refreshes.
type LeaderboardService interface {
	Refresh(ctx context.Context) error
}

// Service handles background job scheduling.
type Service struct {
	config         *config.Config
	challengeRepo  ChallengeRepository
	userRepo       UserRepository
	ledgerRepo     LedgerRepository
	leaderboardSvc LeaderboardService
	log            *logger.Logger
	cron           *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.Config,
	challengeRepo *repository.ChallengeRepository,
	userRepo *repository.UserRepository,
	ledgerRepo *repository.LedgerRepository,
	leaderboardSvc *leaderboard.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		config:         cfg,
		challengeRepo:  challengeRepo,
		userRepo:       userRepo,
		ledgerRepo:     ledgerRepo,
		leaderboardSvc: leaderboardSvc,
		log:            log,
	}
}

// NewServiceWithInterfaces creates a new scheduler service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	cfg *config.Config,
	challengeRepo ChallengeRepository,
	userRepo UserRepository,
	ledgerRepo LedgerRepository,
	leaderboardSvc LeaderboardService,
	log *logger.Logger,
) *Service {
	return &Service{
		config:         cfg,
		challengeRepo:  challengeRepo,
		userRepo:       userRepo,
		ledgerRepo:     ledgerRepo,
		leaderboardSvc: leaderboardSvc,
		log:            log,
	}
}

// Start initializes and starts the cron scheduler. Jobs without a configured
// cron expression are skipped.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	jobs := []struct {
		name string
		expr string
		run  func(context.Context)
	}{
		{jobChallengeSweep, s.config.Scheduler.ChallengeSweepCron, s.runChallengeSweep},
		{jobLeaderboardRefresh, s.config.Scheduler.LeaderboardCron, s.runLeaderboardRefresh},
		{jobBadgeAudit, s.config.Scheduler.BadgeAuditCron, s.runBadgeAudit},
	}

	registered := 0
	for _, job := range jobs {
		if job.expr == "" {
			s.log.Debug().Str("job", job.name).Msg("No cron expression configured, job skipped")
			continue
		}
		run := job.run
		if _, err := s.cron.AddFunc(job.expr, func() {
			run(context.Background())
		}); err != nil {
			return fmt.Errorf("failed to register %s job: %w", job.name, err)
		}
		registered++
		s.log.Info().
			Str("job", job.name).
			Str("schedule", job.expr).
			Msg("Scheduler job registered")
	}

	s.cron.Start()

	nextRun := ""
	if entries := s.cron.Entries(); len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Int("jobs", registered).
		Str("timezone", s.config.Scheduler.Timezone).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// runChallengeSweep refreshes the participant gauges for active challenges
// and reports how many challenges have left their window. Expiry never
// mutates challenge rows; completions earned inside the window stand.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) runChallengeSweep(ctx context.Context) {
	start := time.Now()
	s.log.Info().Msg("Running challenge sweep job")

	all, err := s.challengeRepo.List(time.Time{})
	if err != nil {
		s.log.Error().Err(err).Msg("Challenge sweep failed to list challenges")
		s.finishJob(jobChallengeSweep, "error", start)
		return
	}

	now := time.Now()
	active, expired := 0, 0
	for i := range all {
		c := &all[i]
		if c.IsExpired(now) {
			expired++
			continue
		}
		active++
		prommetrics.SetChallengeParticipants(strconv.FormatUint(uint64(c.ID), 10), c.ParticipantCount)
	}

	s.finishJob(jobChallengeSweep, "success", start)

	s.log.Info().
		Int("active", active).
		Int("expired", expired).
		Dur("duration", time.Since(start)).
		Msg("Challenge sweep completed")
}

// runLeaderboardRefresh rebuilds the cached leaderboard snapshot.
func (s *Service) runLeaderboardRefresh(ctx context.Context) {
	start := time.Now()
	s.log.Info().Msg("Running leaderboard refresh job")

	if err := s.leaderboardSvc.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("Leaderboard refresh failed")
		s.finishJob(jobLeaderboardRefresh, "error", start)
		return
	}

	s.finishJob(jobLeaderboardRefresh, "success", start)

	s.log.Info().
		Dur("duration", time.Since(start)).
		Msg("Leaderboard refresh completed")
}

// runBadgeAudit reconciles badge awards against point totals, granting any
// tier a user has earned but was never awarded. Awards are idempotent, so
// re-running the audit is always safe.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) runBadgeAudit(ctx context.Context) {
	start := time.Now()
	s.log.Info().Msg("Running badge audit job")

	users, err := s.userRepo.List("")
	if err != nil {
		s.log.Error().Err(err).Msg("Badge audit failed to list users")
		s.finishJob(jobBadgeAudit, "error", start)
		return
	}

	repaired := 0
	failed := 0
	for _, user := range users {
		for _, tier := range rules.Tiers() {
			if user.Points < tier.Threshold {
				break
			}
			granted, err := s.ledgerRepo.AwardTier(user.ID, tier.Name, tier.Threshold)
			if err != nil {
				failed++
				s.log.Error().
					Err(err).
					Uint("user_id", user.ID).
					Str("tier", tier.Name).
					Msg("Badge audit failed to award tier")
				continue
			}
			if granted {
				repaired++
				prommetrics.RecordBadgeAwarded(tier.Name)
				s.log.Warn().
					Uint("user_id", user.ID).
					Str("tier", tier.Name).
					Int("points", user.Points).
					Msg("Badge audit repaired a missing award")
			}
		}
	}

	status := "success"
	if failed > 0 {
		status = "error"
	}
	s.finishJob(jobBadgeAudit, status, start)

	s.log.Info().
		Int("users", len(users)).
		Int("repaired", repaired).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Badge audit completed")
}

// finishJob records the run outcome and last-run timestamp for a job.
func (s *Service) finishJob(job, status string, start time.Time) {
	prommetrics.RecordSchedulerJob(job, status, time.Since(start).Seconds())
	prommetrics.SetSchedulerLastRun(job, float64(time.Now().Unix()))
}
