package service

import "time"

// SupportRatioRow is one (media, perspective, date) row of the rolling
// support-ratio table. Window counts are 3-day trailing sums; SupportRatio is
// a percentage and only rows with a positive window issue count are emitted.
type SupportRatioRow struct {
	MediaID                   string    `json:"media_id"`
	MediaName                 string    `json:"media_name"`
	Perspective               string    `json:"perspective"`
	Date                      time.Time `json:"date"`
	DailyIssueCount           int       `json:"daily_issue_count"`
	DailySupportedIssueCount  int       `json:"daily_supported_issue_count"`
	WindowIssueCount          int       `json:"window_issue_count"`
	WindowSupportedIssueCount int       `json:"window_supported_issue_count"`
	SupportRatio              float64   `json:"support_ratio"`
}

// MediaSupportSummary is the latest support ratio for one (media, perspective)
// pair, used for top-N views.
type MediaSupportSummary struct {
	MediaID          string    `json:"media_id"`
	MediaName        string    `json:"media_name"`
	Perspective      string    `json:"perspective"`
	Date             time.Time `json:"date"`
	SupportRatio     float64   `json:"support_ratio"`
	WindowIssueCount int       `json:"window_issue_count"`
}

// TrendPoint is one (date, category) aggregate of the political score history.
type TrendPoint struct {
	Date             time.Time `json:"date"`
	Category         string    `json:"category"`
	LeftScore        float64   `json:"left_score"`
	CenterScore      float64   `json:"center_score"`
	RightScore       float64   `json:"right_score"`
	TotalScore       float64   `json:"total_score"`
	LeftProportion   float64   `json:"left_proportion"`
	CenterProportion float64   `json:"center_proportion"`
	RightProportion  float64   `json:"right_proportion"`
}

// IssueSummary is a trimmed issue record for recent-issue listings.
type IssueSummary struct {
	IssueID     string    `json:"issue_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	SourceCount int       `json:"source_count"`
}

type DailyWatchCount struct {
	Date       time.Time `json:"date"`
	WatchCount int       `json:"watch_count"`
}

type IssueWatchCount struct {
	IssueID    string `json:"issue_id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	WatchCount int    `json:"watch_count"`
}

type CategoryWatchCount struct {
	Category   string `json:"category"`
	WatchCount int    `json:"watch_count"`
}

type PerspectiveCount struct {
	Perspective string `json:"perspective"`
	Count       int    `json:"count"`
}

// PerspectiveCoverage is watch-count-weighted media coverage for one
// perspective label. Each watched issue's weight is split evenly across its
// covering sources.
type PerspectiveCoverage struct {
	Perspective      string  `json:"perspective"`
	WeightedCoverage float64 `json:"weighted_coverage"`
}

// UserActivityReport summarizes one user's behavior over a look-back window.
type UserActivityReport struct {
	UserID                   string                `json:"user_id"`
	Days                     int                   `json:"days"`
	WatchByDay               []DailyWatchCount     `json:"watch_by_day"`
	WatchByIssue             []IssueWatchCount     `json:"watch_by_issue"`
	WatchByCategory          []CategoryWatchCount  `json:"watch_by_category"`
	EvaluationsByPerspective []PerspectiveCount    `json:"evaluations_by_perspective"`
	MediaCoverage            []PerspectiveCoverage `json:"media_coverage"`
}
