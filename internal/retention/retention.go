// Package retention runs the scheduled sweep that deletes read
// notifications older than the configured period. Unread notifications are
// never purged.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"

	"github.com/nft-socials/nft-socials-app-sub000/pkg/config"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/logger"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/store"
	"github.com/nft-socials/nft-socials-app-sub000/pkg/telemetry"
)

const defaultBatchSize = 500

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RetentionConfig) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Log.Info("retention_disabled")
		return func() {}, nil
	}
	if cfg.Period.Duration() <= 0 {
		return nil, fmt.Errorf("retention enabled but period is not set")
	}

	// map empty cron to default daily @02:00
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Log.Error("retention_invalid_cron", zap.String("cron", cfg.Cron))
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	logger.Log.Info("retention_enabled", zap.String("cron", cronExpr), zap.Duration("period", cfg.Period.Duration()))
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cfg, cronExpr)
	return cancel, nil
}

// runScheduler computes the next tick for the cron expression with gronx
// and sleeps until then. Full cron syntax is supported.
func runScheduler(ctx context.Context, cfg config.RetentionConfig, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Log.Error("retention_nexttick_failed", zap.String("cron", cronExpr), zap.Error(err))
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if _, err := RunOnce(cfg); err != nil {
				logger.Log.Error("retention_run_error", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Log.Info("retention_scheduler_stopping")
			return
		}
	}
}

// RunOnce performs a single sweep and returns how many notifications were
// deleted. Paused skips the sweep entirely; dry-run reports what would be
// deleted without deleting.
func RunOnce(cfg config.RetentionConfig) (int, error) {
	if cfg.Paused {
		logger.Log.Info("retention_paused")
		return 0, nil
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	cutoff := time.Now().UTC().Add(-cfg.Period.Duration()).UnixNano()

	total := 0
	for {
		ids, err := store.ListReadNotificationsBefore(cutoff, batch)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			break
		}
		if cfg.DryRun {
			logger.Log.Info("retention_dry_run", zap.Int("would_delete", len(ids)))
			return total, nil
		}
		for _, id := range ids {
			if err := store.DeleteNotification(id); err != nil {
				return total, err
			}
			total++
		}
		telemetry.NotificationsPurged.Add(float64(len(ids)))
		if len(ids) < batch {
			break
		}
	}
	logger.Log.Info("retention_run_complete", zap.Int("deleted", total))
	return total, nil
}
