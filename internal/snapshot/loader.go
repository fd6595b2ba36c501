package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Export file names as produced by the platform's mongoexport job.
const (
	issuesFile       = "prod.issues.json"
	evaluationsFile  = "prod.userIssueEvaluations.json"
	mediaSourcesFile = "prod.mediaSources.json"
	watchHistoryFile = "prod.userWatchHistory.json"
	scoreHistoryFile = "prod.userPoliticalScoreHistory.json"
)

// Loader reads snapshot tables from a directory of JSON export files.
//
// A missing or unreadable file degrades to an empty table: the dashboard must
// keep serving whatever data is present. Individual records with a missing id
// or timestamp are dropped here so downstream computations only see valid rows.
type Loader struct {
	dir    string
	logger *zap.Logger
}

func NewLoader(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, logger: logger.Named("snapshot")}
}

func loadFile[T any](l *Loader, name string) []T {
	path := filepath.Join(l.dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("snapshot file missing", zap.String("file", name))
		} else {
			l.logger.Error("snapshot file unreadable", zap.String("file", name), zap.Error(err))
		}
		return nil
	}

	var docs []T
	if err := json.Unmarshal(data, &docs); err != nil {
		l.logger.Error("snapshot file is not valid JSON", zap.String("file", name), zap.Error(err))
		return nil
	}

	l.logger.Debug("snapshot file loaded", zap.String("file", name), zap.Int("records", len(docs)))
	return docs
}

type sourceDoc struct {
	ID          objectID `json:"_id"`
	Name        string   `json:"name"`
	Perspective string   `json:"perspective"`
}

type issueDoc struct {
	ID        objectID    `json:"_id"`
	Title     string      `json:"title"`
	Category  string      `json:"category"`
	CreatedAt extTime     `json:"createdAt"`
	Sources   []sourceDoc `json:"sources"`
}

func (l *Loader) Issues(_ context.Context) ([]Issue, error) {
	docs := loadFile[issueDoc](l, issuesFile)

	issues := make([]Issue, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		issue := Issue{
			ID:        string(d.ID),
			Title:     d.Title,
			Category:  d.Category,
			CreatedAt: d.CreatedAt.Time,
		}
		for _, s := range d.Sources {
			issue.Sources = append(issue.Sources, Source{
				ID:          string(s.ID),
				Name:        s.Name,
				Perspective: s.Perspective,
			})
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

type evaluationDoc struct {
	UserID      objectID `json:"userId"`
	IssueID     objectID `json:"issueId"`
	Perspective string   `json:"perspective"`
	EvaluatedAt extTime  `json:"evaluatedAt"`
}

func (l *Loader) Evaluations(_ context.Context) ([]Evaluation, error) {
	docs := loadFile[evaluationDoc](l, evaluationsFile)

	evals := make([]Evaluation, 0, len(docs))
	for _, d := range docs {
		if d.IssueID == "" || d.EvaluatedAt.IsZero() {
			continue
		}
		evals = append(evals, Evaluation{
			UserID:      string(d.UserID),
			IssueID:     string(d.IssueID),
			Perspective: d.Perspective,
			EvaluatedAt: d.EvaluatedAt.Time,
		})
	}
	return evals, nil
}

type mediaSourceDoc struct {
	ID          objectID `json:"_id"`
	Name        string   `json:"name"`
	Perspective string   `json:"perspective"`
}

func (l *Loader) MediaSources(_ context.Context) ([]MediaSource, error) {
	docs := loadFile[mediaSourceDoc](l, mediaSourcesFile)

	media := make([]MediaSource, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		media = append(media, MediaSource{
			ID:          string(d.ID),
			Name:        d.Name,
			Perspective: d.Perspective,
		})
	}
	return media, nil
}

type watchEventDoc struct {
	UserID    objectID `json:"userId"`
	IssueID   objectID `json:"issueId"`
	WatchedAt extTime  `json:"watchedAt"`
}

func (l *Loader) WatchHistory(_ context.Context) ([]WatchEvent, error) {
	docs := loadFile[watchEventDoc](l, watchHistoryFile)

	events := make([]WatchEvent, 0, len(docs))
	for _, d := range docs {
		if d.UserID == "" || d.IssueID == "" || d.WatchedAt.IsZero() {
			continue
		}
		events = append(events, WatchEvent{
			UserID:    string(d.UserID),
			IssueID:   string(d.IssueID),
			WatchedAt: d.WatchedAt.Time,
		})
	}
	return events, nil
}

// neutralScore fills score sides the export omits: the platform seeds every
// spectrum at the 50/50/50 midpoint.
const neutralScore = 50

type spectrumDoc struct {
	Left   *float64 `json:"left"`
	Center *float64 `json:"center"`
	Right  *float64 `json:"right"`
}

func scoreSide(v *float64) float64 {
	if v == nil {
		return neutralScore
	}
	return *v
}

type scoreHistoryDoc struct {
	UserID        objectID     `json:"userId"`
	CreatedAt     extTime      `json:"createdAt"`
	Politics      *spectrumDoc `json:"politics"`
	Economy       *spectrumDoc `json:"economy"`
	Society       *spectrumDoc `json:"society"`
	Culture       *spectrumDoc `json:"culture"`
	Technology    *spectrumDoc `json:"technology"`
	International *spectrumDoc `json:"international"`
}

func (d scoreHistoryDoc) spectrum(category string) *spectrumDoc {
	switch category {
	case "politics":
		return d.Politics
	case "economy":
		return d.Economy
	case "society":
		return d.Society
	case "culture":
		return d.Culture
	case "technology":
		return d.Technology
	case "international":
		return d.International
	}
	return nil
}

func (l *Loader) ScoreHistory(_ context.Context) ([]ScoreEntry, error) {
	docs := loadFile[scoreHistoryDoc](l, scoreHistoryFile)

	entries := make([]ScoreEntry, 0, len(docs)*len(ScoreCategories))
	for _, d := range docs {
		if d.UserID == "" || d.CreatedAt.IsZero() {
			continue
		}
		for _, category := range ScoreCategories {
			s := d.spectrum(category)
			if s == nil {
				// A record without the category block carries no scores for
				// it; within a present block, missing sides read as neutral.
				continue
			}
			entries = append(entries, ScoreEntry{
				UserID:    string(d.UserID),
				CreatedAt: d.CreatedAt.Time,
				Category:  category,
				Left:      scoreSide(s.Left),
				Center:    scoreSide(s.Center),
				Right:     scoreSide(s.Right),
			})
		}
	}
	return entries, nil
}
