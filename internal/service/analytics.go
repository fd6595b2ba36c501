package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	storeTimeout      = 5 * time.Second
	defaultReportDays = 30
)

var (
	ErrNoData         = errors.New("no data for the requested view")
	ErrStorageFailure = errors.New("snapshot storage failure")
)

// AnalyticsService computes dashboard metrics over a snapshot store. Every
// operation is a pure function of the store's tables; callers may invoke it
// concurrently.
type AnalyticsService struct {
	store  SnapshotStore
	logger *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(store SnapshotStore, logger *zap.Logger) *AnalyticsService {
	if store == nil {
		panic("store must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &AnalyticsService{
		store:  store,
		logger: logger,
	}
}

// MediaSupportScores returns the full rolling support-ratio table.
func (s *AnalyticsService) MediaSupportScores(ctx context.Context) ([]SupportRatioRow, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	issues, err := s.store.Issues(storeCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	evaluations, err := s.store.Evaluations(storeCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	rows := CalculateMediaSupportScores(issues, evaluations)
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	s.logger.Info("calculated media support scores",
		zap.Int("rows", len(rows)),
		zap.Int("issues", len(issues)),
		zap.Int("evaluations", len(evaluations)))

	return rows, nil
}

// TopMediaBySupportRatio returns the latest support ratio per (media,
// perspective) pair, highest ratio first, at most limit entries.
func (s *AnalyticsService) TopMediaBySupportRatio(ctx context.Context, limit int) ([]MediaSupportSummary, error) {
	rows, err := s.MediaSupportScores(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, ErrNoData
	}

	// Rows are sorted by (media, perspective, date), so the last row of each
	// group carries the latest ratio.
	latest := make(map[mediaGroup]SupportRatioRow)
	for _, row := range rows {
		latest[mediaGroup{row.MediaID, row.MediaName, row.Perspective}] = row
	}

	summaries := make([]MediaSupportSummary, 0, len(latest))
	for _, row := range latest {
		summaries = append(summaries, MediaSupportSummary{
			MediaID:          row.MediaID,
			MediaName:        row.MediaName,
			Perspective:      row.Perspective,
			Date:             row.Date,
			SupportRatio:     row.SupportRatio,
			WindowIssueCount: row.WindowIssueCount,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.SupportRatio != b.SupportRatio {
			return a.SupportRatio > b.SupportRatio
		}
		if a.WindowIssueCount != b.WindowIssueCount {
			return a.WindowIssueCount > b.WindowIssueCount
		}
		if a.MediaID != b.MediaID {
			return a.MediaID < b.MediaID
		}
		return a.Perspective < b.Perspective
	})

	if limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// PoliticalTrendByDate returns per-category daily score sums and proportions
// for the requested range.
func (s *AnalyticsService) PoliticalTrendByDate(ctx context.Context, start, end time.Time) ([]TrendPoint, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	entries, err := s.store.ScoreHistory(storeCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	points := AggregatePoliticalTrend(entries, start, end)
	if len(points) == 0 {
		return nil, ErrNoData
	}

	s.logger.Info("aggregated political trend",
		zap.Int("points", len(points)),
		zap.Time("start", start),
		zap.Time("end", end))

	return points, nil
}

// RecentIssues returns the newest issues, at most limit of them.
func (s *AnalyticsService) RecentIssues(ctx context.Context, limit int) ([]IssueSummary, error) {
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	issues, err := s.store.Issues(storeCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	summaries := RecentIssueSummaries(issues, limit)
	if len(summaries) == 0 {
		return nil, ErrNoData
	}
	return summaries, nil
}

// UserActivityReport summarizes one user's recent activity. days defaults to
// 30 and ref to the current time when unset.
func (s *AnalyticsService) UserActivityReport(ctx context.Context, userID string, days int, ref time.Time) (UserActivityReport, error) {
	if days <= 0 {
		days = defaultReportDays
	}
	if ref.IsZero() {
		ref = time.Now().UTC()
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	watch, err := s.store.WatchHistory(storeCtx)
	if err != nil {
		return UserActivityReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	evaluations, err := s.store.Evaluations(storeCtx)
	if err != nil {
		return UserActivityReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	issues, err := s.store.Issues(storeCtx)
	if err != nil {
		return UserActivityReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	media, err := s.store.MediaSources(storeCtx)
	if err != nil {
		return UserActivityReport{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	report := BuildUserActivityReport(userID, days, ref, watch, evaluations, issues, media)
	if len(report.WatchByDay) == 0 && len(report.EvaluationsByPerspective) == 0 {
		return UserActivityReport{}, ErrNoData
	}

	s.logger.Info("built user activity report",
		zap.String("user_id", userID),
		zap.Int("days", days),
		zap.Int("watched_issues", len(report.WatchByIssue)))

	return report, nil
}
