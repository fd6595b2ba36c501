package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/newsprism/analytics-server/internal/service"
)

// MockAnalyticsService is a mock implementation of the AnalyticsService
// interface for testing the handler layer. It uses function-based mocking
// for flexibility.
type MockAnalyticsService struct {
	MediaSupportScoresFunc     func(ctx context.Context) ([]service.SupportRatioRow, error)
	TopMediaBySupportRatioFunc func(ctx context.Context, limit int) ([]service.MediaSupportSummary, error)
	PoliticalTrendByDateFunc   func(ctx context.Context, start, end time.Time) ([]service.TrendPoint, error)
	RecentIssuesFunc           func(ctx context.Context, limit int) ([]service.IssueSummary, error)
	UserActivityReportFunc     func(ctx context.Context, userID string, days int, ref time.Time) (service.UserActivityReport, error)
}

// MediaSupportScores implements the AnalyticsService interface
func (m *MockAnalyticsService) MediaSupportScores(ctx context.Context) ([]service.SupportRatioRow, error) {
	if m.MediaSupportScoresFunc != nil {
		return m.MediaSupportScoresFunc(ctx)
	}
	return nil, errors.New("MediaSupportScoresFunc not implemented")
}

// TopMediaBySupportRatio implements the AnalyticsService interface
func (m *MockAnalyticsService) TopMediaBySupportRatio(ctx context.Context, limit int) ([]service.MediaSupportSummary, error) {
	if m.TopMediaBySupportRatioFunc != nil {
		return m.TopMediaBySupportRatioFunc(ctx, limit)
	}
	return nil, errors.New("TopMediaBySupportRatioFunc not implemented")
}

// PoliticalTrendByDate implements the AnalyticsService interface
func (m *MockAnalyticsService) PoliticalTrendByDate(ctx context.Context, start, end time.Time) ([]service.TrendPoint, error) {
	if m.PoliticalTrendByDateFunc != nil {
		return m.PoliticalTrendByDateFunc(ctx, start, end)
	}
	return nil, errors.New("PoliticalTrendByDateFunc not implemented")
}

// RecentIssues implements the AnalyticsService interface
func (m *MockAnalyticsService) RecentIssues(ctx context.Context, limit int) ([]service.IssueSummary, error) {
	if m.RecentIssuesFunc != nil {
		return m.RecentIssuesFunc(ctx, limit)
	}
	return nil, errors.New("RecentIssuesFunc not implemented")
}

// UserActivityReport implements the AnalyticsService interface
func (m *MockAnalyticsService) UserActivityReport(ctx context.Context, userID string, days int, ref time.Time) (service.UserActivityReport, error) {
	if m.UserActivityReportFunc != nil {
		return m.UserActivityReportFunc(ctx, userID, days, ref)
	}
	return service.UserActivityReport{}, errors.New("UserActivityReportFunc not implemented")
}
