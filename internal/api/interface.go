package api

import (
	"context"
	"time"

	"github.com/newsprism/analytics-server/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type AnalyticsService interface {
	MediaSupportScores(ctx context.Context) ([]service.SupportRatioRow, error)
	TopMediaBySupportRatio(ctx context.Context, limit int) ([]service.MediaSupportSummary, error)
	PoliticalTrendByDate(ctx context.Context, start, end time.Time) ([]service.TrendPoint, error)
	RecentIssues(ctx context.Context, limit int) ([]service.IssueSummary, error)
	UserActivityReport(ctx context.Context, userID string, days int, ref time.Time) (service.UserActivityReport, error)
}
