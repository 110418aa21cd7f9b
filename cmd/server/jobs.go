// Package main provides the news questionnaire LINE bot server entry point.
package main

import (
	"context"
	"time"

	"github.com/newspick/newspick-linebot-go/internal/config"
	"github.com/newspick/newspick-linebot-go/internal/logger"
	"github.com/newspick/newspick-linebot-go/internal/metrics"
	"github.com/newspick/newspick-linebot-go/internal/storage"
)

// cleanupStaleRuns periodically removes questionnaire runs that were
// abandoned mid-sequence
func cleanupStaleRuns(ctx context.Context, db *storage.DB, log *logger.Logger) {
	// Run initial cleanup after configured delay to let server stabilize
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.StaleRunCleanupInitialDelay):
		performStaleRunCleanup(ctx, db, log)
	}

	// Then run cleanup at configured interval
	ticker := time.NewTicker(config.StaleRunCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performStaleRunCleanup(ctx, db, log)
		}
	}
}

// performStaleRunCleanup executes one cleanup pass
func performStaleRunCleanup(ctx context.Context, db *storage.DB, log *logger.Logger) {
	startTime := time.Now()
	log.Info("Starting stale run cleanup...")

	deleted, err := db.DeleteStaleRuns(ctx, config.StaleRunMaxAge)
	if err != nil {
		log.WithError(err).Error("Failed to cleanup stale runs")
		return
	}

	remaining, _ := db.CountAnswers(ctx)
	log.WithFields(map[string]interface{}{
		"deleted":     deleted,
		"remaining":   remaining,
		"duration_ms": time.Since(startTime).Milliseconds(),
	}).Info("Stale run cleanup complete")
}

// updateStorageMetrics periodically exports stored answer counts as
// gauge metrics
func updateStorageMetrics(ctx context.Context, db *storage.DB, m *metrics.Metrics, log *logger.Logger) {
	// Export once at startup so the gauge is populated immediately
	refreshStorageMetrics(ctx, db, m, log)

	ticker := time.NewTicker(config.StorageMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshStorageMetrics(ctx, db, m, log)
		}
	}
}

func refreshStorageMetrics(ctx context.Context, db *storage.DB, m *metrics.Metrics, log *logger.Logger) {
	count, err := db.CountAnswers(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to count stored answers")
		return
	}
	m.SetAnswersStored(count)
}
