// Package leaderboard provides point-ranked user standings with a Redis
// cache in front of the database.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Howards254/maathai-innovation-catalyst/internal/cache"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/internal/repository"
	"github.com/Howards254/maathai-innovation-catalyst/internal/rules"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

const (
	cacheKey = "leaderboard:points"
	cacheTTL = 5 * time.Minute

	// DefaultLimit bounds leaderboard queries without an explicit limit.
	DefaultLimit = 25
)

// UserRepository interface for user operations.
type UserRepository interface {
	TopByPoints(limit int) ([]models.User, error)
}

// LedgerRepository interface for badge counts.
type LedgerRepository interface {
	CountAwardsByUser(userID uint) (int64, error)
}

// Entry represents a single entry in the leaderboard.
type Entry struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Points     int    `json:"points"`
	Tier       string `json:"tier"`
	BadgeCount int    `json:"badge_count"`
	Rank       int    `json:"rank"`
}

// Service handles leaderboard generation.
type Service struct {
	userRepo   UserRepository
	ledgerRepo LedgerRepository
	cache      cache.Cache
	log        *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(
	userRepo *repository.UserRepository,
	ledgerRepo *repository.LedgerRepository,
	c cache.Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		cache:      c,
		log:        log,
	}
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	userRepo UserRepository,
	ledgerRepo LedgerRepository,
	c cache.Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		cache:      c,
		log:        log,
	}
}

// GetLeaderboard returns the top users by cumulative points, served from the
// cache when fresh. Ties share insertion order, not rank gymnastics.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if entries, ok := s.fromCache(ctx, limit); ok {
		return entries, nil
	}

	entries, err := s.build(limit)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, entries)
	return entries, nil
}

// Refresh rebuilds the cached leaderboard. Called by the scheduler so most
// reads never touch the database.
func (s *Service) Refresh(ctx context.Context) error {
	entries, err := s.build(DefaultLimit)
	if err != nil {
		return err
	}
	s.toCache(ctx, entries)

	s.log.Debug().
		Int("entries", len(entries)).
		Msg("Leaderboard cache refreshed")

	return nil
}

// build assembles the leaderboard from the database.
func (s *Service) build(limit int) ([]Entry, error) {
	users, err := s.userRepo.TopByPoints(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(users))
	for i, user := range users {
		badgeCount, err := s.ledgerRepo.CountAwardsByUser(user.ID)
		if err != nil {
			s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("Failed to count badges")
		}

		entries = append(entries, Entry{
			UserID:     user.ID,
			Username:   user.Username,
			Points:     user.Points,
			Tier:       rules.ResolveTier(user.Points).Name,
			BadgeCount: int(badgeCount),
			Rank:       i + 1,
		})
	}

	return entries, nil
}

// fromCache returns cached entries when present and large enough for limit.
func (s *Service) fromCache(ctx context.Context, limit int) ([]Entry, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("Leaderboard cache read failed")
		return nil, false
	}
	if raw == "" {
		return nil, false
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.log.Warn().Err(err).Msg("Corrupt leaderboard cache entry, rebuilding")
		return nil, false
	}

	// The snapshot only serves requests it fully covers.
	if len(entries) < limit {
		return nil, false
	}
	return entries[:limit], true
}

func (s *Service) toCache(ctx context.Context, entries []Entry) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to marshal leaderboard for cache")
		return
	}
	if err := s.cache.Set(ctx, cacheKey, string(raw), cacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("Leaderboard cache write failed")
	}
}
