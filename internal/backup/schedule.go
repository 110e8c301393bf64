package backup

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunScheduled takes a backup and prunes expired ones every interval until
// ctx is cancelled. A failed run is logged and retried on the next tick.
func (m *Manager) RunScheduled(ctx context.Context, interval time.Duration) {
	logger := log.With().Str("component", "backup").Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("scheduled backups started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("scheduled backups stopped")
			return
		case <-ticker.C:
			bi, err := m.BackupDatabase(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("scheduled backup failed")
				continue
			}
			removed := m.CleanOldBackups()
			logger.Info().Str("name", bi.Name).Str("size", FormatSize(bi.Size)).Int("removed", removed).Msg("scheduled backup created")
		}
	}
}
