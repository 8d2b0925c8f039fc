// Command api runs the impact scoring HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Howards254/maathai-innovation-catalyst/internal/api"
	apicampaigns "github.com/Howards254/maathai-innovation-catalyst/internal/api/campaigns"
	apichallenges "github.com/Howards254/maathai-innovation-catalyst/internal/api/challenges"
	"github.com/Howards254/maathai-innovation-catalyst/internal/api/dashboard"
	apifeed "github.com/Howards254/maathai-innovation-catalyst/internal/api/feed"
	apiinnovations "github.com/Howards254/maathai-innovation-catalyst/internal/api/innovations"
	"github.com/Howards254/maathai-innovation-catalyst/internal/cache"
	"github.com/Howards254/maathai-innovation-catalyst/internal/config"
	"github.com/Howards254/maathai-innovation-catalyst/internal/notifier"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/campaigns"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/challenges"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/feed"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/innovations"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/leaderboard"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/points"
	"github.com/Howards254/maathai-innovation-catalyst/internal/service/scheduler"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("api failed: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	logg.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting impact scoring service")

	db, err := repository.NewDB(&cfg.Database.Postgres, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logg.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, logg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisCache.Close(); err != nil {
			logg.Error().Err(err).Msg("Failed to close redis")
		}
	}()
	sessions := cache.NewSessionStore(redisCache)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	discussionRepo := repository.NewDiscussionRepository(db)
	innovationRepo := repository.NewInnovationRepository(db)

	// Services
	notify := notifier.NewClient(&cfg.Community, logg)
	pointsSvc := points.NewService(userRepo, ledgerRepo, notify, &cfg.Points, logg)
	campaignSvc := campaigns.NewService(campaignRepo, pointsSvc, notify, logg)
	challengeSvc := challenges.NewService(challengeRepo, userRepo, pointsSvc, notify, logg)
	feedSvc := feed.NewService(discussionRepo, pointsSvc, logg)
	innovationSvc := innovations.NewService(innovationRepo, pointsSvc, logg)
	leaderboardSvc := leaderboard.NewService(userRepo, ledgerRepo, redisCache, logg)

	sched := scheduler.NewService(cfg, challengeRepo, userRepo, ledgerRepo, leaderboardSvc, logg)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	// Router
	router := api.NewRouter(api.Handlers{
		Dashboard:   dashboard.NewHandler(pointsSvc, leaderboardSvc, logg),
		Campaigns:   apicampaigns.NewHandler(campaignSvc, logg),
		Feed:        apifeed.NewHandler(feedSvc, logg),
		Challenges:  apichallenges.NewHandler(challengeSvc, logg),
		Innovations: apiinnovations.NewHandler(innovationSvc, logg),
	}, api.Deps{
		Config:   cfg,
		Sessions: sessions,
		Users:    userRepo,
		DB:       db,
		Cache:    redisCache,
		Log:      logg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.RequestTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.RequestTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logg.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logg.Info().Msg("Server stopped cleanly")
	return nil
}
