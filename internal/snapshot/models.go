package snapshot

import "time"

// Source is one media outlet covering an issue, embedded in the issue record
// of the export.
type Source struct {
	ID          string
	Name        string
	Perspective string
}

// Issue is a single aggregated news issue from the export.
type Issue struct {
	ID        string
	Title     string
	Category  string
	CreatedAt time.Time
	Sources   []Source
}

// Evaluation is one user's perspective verdict on an issue.
type Evaluation struct {
	UserID      string
	IssueID     string
	Perspective string
	EvaluatedAt time.Time
}

// MediaSource is a media outlet from the media collection, used for display
// enrichment and perspective overrides.
type MediaSource struct {
	ID          string
	Name        string
	Perspective string
}

// WatchEvent records a user watching an issue once.
type WatchEvent struct {
	UserID    string
	IssueID   string
	WatchedAt time.Time
}

// ScoreEntry is one category's political score snapshot for a user at a point
// in time. The export nests the six categories inside each history document;
// the loaders flatten them to one entry per category.
type ScoreEntry struct {
	UserID    string
	CreatedAt time.Time
	Category  string
	Left      float64
	Center    float64
	Right     float64
}

// ScoreCategories lists the categories tracked by the political score history,
// in the order trend results are reported.
var ScoreCategories = []string{"politics", "economy", "society", "culture", "technology", "international"}
