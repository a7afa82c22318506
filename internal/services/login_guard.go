package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/BradenHooton/srm/internal/models"
	"github.com/BradenHooton/srm/internal/store"
	pkglogger "github.com/BradenHooton/srm/pkg/logger"
)

// LoginGuardConfig holds the lockout thresholds.
type LoginGuardConfig struct {
	MaxAttempts   int
	BlockDuration time.Duration
	AttemptWindow time.Duration // lifetime of the failure counter
}

// DefaultLoginGuardConfig returns 10 attempts, a 30 minute block and a 24
// hour counter window.
func DefaultLoginGuardConfig() LoginGuardConfig {
	return LoginGuardConfig{
		MaxAttempts:   10,
		BlockDuration: 30 * time.Minute,
		AttemptWindow: 24 * time.Hour,
	}
}

// LoginGuard throttles failed logins per (client address, username). While a
// block entry exists credentials must not be checked at all.
//
// Storage errors fail open: a read error counts as "no failures, not blocked"
// and a write error is logged while the verdict is computed as if the write
// had succeeded.
type LoginGuard struct {
	store  store.ExpiringStore
	config LoginGuardConfig
	logger *slog.Logger
}

func NewLoginGuard(store store.ExpiringStore, config LoginGuardConfig, logger *slog.Logger) *LoginGuard {
	return &LoginGuard{
		store:  store,
		config: config,
		logger: logger,
	}
}

func attemptsKey(key models.LoginClientKey) string {
	return "login_attempts:" + key.IPAddress + ":" + key.Username
}

func blockKey(key models.LoginClientKey) string {
	return "login_blocked:" + key.IPAddress + ":" + key.Username
}

// CheckStatus reports whether key is locked out and, if not, how many
// attempts remain. It has no side effects.
func (g *LoginGuard) CheckStatus(ctx context.Context, key models.LoginClientKey) models.LoginAttemptStatus {
	ttl, blocked, err := g.store.TTL(ctx, blockKey(key))
	if err != nil {
		g.storeError("failed to read login block", key, err)
	} else if blocked {
		return models.LoginAttemptStatus{
			Blocked:               true,
			BlockMinutesRemaining: g.minutesRemaining(ttl),
		}
	}

	count := 0
	raw, ok, err := g.store.Get(ctx, attemptsKey(key))
	if err != nil {
		g.storeError("failed to read login attempts", key, err)
	} else if ok {
		if parsed, convErr := strconv.Atoi(raw); convErr == nil {
			count = parsed
		}
	}

	return models.LoginAttemptStatus{
		AttemptsRemaining: g.remaining(count),
	}
}

// RecordFailure counts one failed attempt and issues a block once the
// threshold is reached. Issuing a block resets the counter.
func (g *LoginGuard) RecordFailure(ctx context.Context, key models.LoginClientKey) models.LoginAttemptStatus {
	count, err := g.store.Incr(ctx, attemptsKey(key), g.config.AttemptWindow)
	if err != nil {
		g.storeError("failed to increment login attempts", key, err)
		// assume this was the first failure
		count = 1
	}

	if int(count) < g.config.MaxAttempts {
		return models.LoginAttemptStatus{
			AttemptsRemaining: g.remaining(int(count)),
		}
	}

	if err := g.store.Set(ctx, blockKey(key), "1", g.config.BlockDuration); err != nil {
		g.storeError("failed to set login block", key, err)
	}
	if err := g.store.Delete(ctx, attemptsKey(key)); err != nil {
		g.storeError("failed to reset login attempts", key, err)
	}

	g.logger.Warn("login temporarily blocked",
		slog.String("ip_address", key.IPAddress),
		slog.String("username", pkglogger.MaskIdentifier(key.Username)),
		slog.Int64("failed_attempts", count),
		slog.Duration("block_duration", g.config.BlockDuration))

	return models.LoginAttemptStatus{
		Blocked:               true,
		BlockMinutesRemaining: g.minutesRemaining(g.config.BlockDuration),
	}
}

// RecordSuccess clears the failure counter. An active block is left alone.
func (g *LoginGuard) RecordSuccess(ctx context.Context, key models.LoginClientKey) {
	if err := g.store.Delete(ctx, attemptsKey(key)); err != nil {
		g.storeError("failed to clear login attempts", key, err)
	}
}

func (g *LoginGuard) remaining(count int) int {
	remaining := g.config.MaxAttempts - count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// minutesRemaining rounds a residual lifetime up to whole minutes. A block
// without an expiry reports the configured duration.
func (g *LoginGuard) minutesRemaining(ttl time.Duration) int {
	if ttl <= 0 {
		ttl = g.config.BlockDuration
	}
	return int((ttl + time.Minute - 1) / time.Minute)
}

func (g *LoginGuard) storeError(msg string, key models.LoginClientKey, err error) {
	g.logger.Error(msg,
		slog.String("ip_address", key.IPAddress),
		slog.String("username", pkglogger.MaskIdentifier(key.Username)),
		slog.Any("error", err))
}
