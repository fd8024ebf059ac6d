package scheduler

import (
	"context"
	"time"

	"github.com/lifeline/bloodbank-backend/internal/logging"
	"gorm.io/gorm"
)

type eligibilityRefresher interface {
	RefreshEligibility(ctx context.Context, now time.Time, interval time.Duration) (int64, error)
}

type tokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// LogRetentionJob deletes system logs older than retention once a day.
func LogRetentionJob(db *gorm.DB, retention time.Duration) Job {
	return Job{
		Name: "log_retention",
		Spec: "@daily",
		Run: func(ctx context.Context, now time.Time) (int64, error) {
			return logging.PurgeSystemLogs(ctx, db, now, retention)
		},
	}
}

// EligibilityJob re-enables donors whose donation interval has passed.
func EligibilityJob(donors eligibilityRefresher, interval time.Duration) Job {
	return Job{
		Name: "donor_eligibility",
		Spec: "@hourly",
		Run: func(ctx context.Context, now time.Time) (int64, error) {
			return donors.RefreshEligibility(ctx, now, interval)
		},
	}
}

// TokenCleanupJob removes expired and revoked refresh tokens.
func TokenCleanupJob(tokens tokenPurger) Job {
	return Job{
		Name: "refresh_token_cleanup",
		Spec: "30 3 * * *",
		Run: func(ctx context.Context, now time.Time) (int64, error) {
			return tokens.PurgeExpiredTokens(ctx, now)
		},
	}
}
