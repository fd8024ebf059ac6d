package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/lifeline/bloodbank-backend/internal/models"
	"gorm.io/gorm"
)

// PurgeSystemLogs deletes system_logs older than retention.
func PurgeSystemLogs(ctx context.Context, db *gorm.DB, now time.Time, retention time.Duration) (int64, error) {
	cutoff := now.Add(-retention)
	result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge system logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
