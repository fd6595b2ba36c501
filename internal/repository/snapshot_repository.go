package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/newsprism/analytics-server/internal/snapshot"
)

// SnapshotRepository reads the export tables from a sqlite database produced
// by the snapshot import job. Timestamps are stored as RFC 3339 text; rows
// whose timestamp fails to parse are dropped, matching the JSON loader's
// row-level degradation.
type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func parseStoredTime(s sql.NullString) (time.Time, bool) {
	if !s.Valid {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func (r *SnapshotRepository) Issues(ctx context.Context) ([]snapshot.Issue, error) {
	const issueQuery = `
		SELECT id, title, category, created_at
		FROM issues
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, issueQuery)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer rows.Close()

	var issues []snapshot.Issue
	index := make(map[string]int)
	for rows.Next() {
		var (
			issue     snapshot.Issue
			title     sql.NullString
			category  sql.NullString
			createdAt sql.NullString
		)
		if err := rows.Scan(&issue.ID, &title, &category, &createdAt); err != nil {
			return nil, fmt.Errorf("scan issue row: %w", err)
		}
		issue.Title = title.String
		issue.Category = category.String
		if t, ok := parseStoredTime(createdAt); ok {
			issue.CreatedAt = t
		}
		index[issue.ID] = len(issues)
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issues: %w", err)
	}

	const sourceQuery = `
		SELECT issue_id, media_id, media_name, perspective
		FROM issue_sources
		ORDER BY issue_id
	`

	srcRows, err := r.db.QueryContext(ctx, sourceQuery)
	if err != nil {
		return nil, fmt.Errorf("query issue sources: %w", err)
	}
	defer srcRows.Close()

	for srcRows.Next() {
		var (
			issueID     string
			mediaID     string
			mediaName   sql.NullString
			perspective sql.NullString
		)
		if err := srcRows.Scan(&issueID, &mediaID, &mediaName, &perspective); err != nil {
			return nil, fmt.Errorf("scan issue source row: %w", err)
		}
		i, ok := index[issueID]
		if !ok {
			continue
		}
		issues[i].Sources = append(issues[i].Sources, snapshot.Source{
			ID:          mediaID,
			Name:        mediaName.String,
			Perspective: perspective.String,
		})
	}
	if err := srcRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issue sources: %w", err)
	}

	return issues, nil
}

func (r *SnapshotRepository) Evaluations(ctx context.Context) ([]snapshot.Evaluation, error) {
	const query = `
		SELECT user_id, issue_id, perspective, evaluated_at
		FROM evaluations
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}
	defer rows.Close()

	var evals []snapshot.Evaluation
	for rows.Next() {
		var (
			userID      sql.NullString
			issueID     string
			perspective sql.NullString
			evaluatedAt sql.NullString
		)
		if err := rows.Scan(&userID, &issueID, &perspective, &evaluatedAt); err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		t, ok := parseStoredTime(evaluatedAt)
		if !ok {
			continue
		}
		evals = append(evals, snapshot.Evaluation{
			UserID:      userID.String,
			IssueID:     issueID,
			Perspective: perspective.String,
			EvaluatedAt: t,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluations: %w", err)
	}
	return evals, nil
}

func (r *SnapshotRepository) MediaSources(ctx context.Context) ([]snapshot.MediaSource, error) {
	const query = `
		SELECT id, name, perspective
		FROM media_sources
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query media sources: %w", err)
	}
	defer rows.Close()

	var media []snapshot.MediaSource
	for rows.Next() {
		var (
			id          string
			name        sql.NullString
			perspective sql.NullString
		)
		if err := rows.Scan(&id, &name, &perspective); err != nil {
			return nil, fmt.Errorf("scan media source row: %w", err)
		}
		media = append(media, snapshot.MediaSource{
			ID:          id,
			Name:        name.String,
			Perspective: perspective.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media sources: %w", err)
	}
	return media, nil
}

func (r *SnapshotRepository) WatchHistory(ctx context.Context) ([]snapshot.WatchEvent, error) {
	const query = `
		SELECT user_id, issue_id, watched_at
		FROM watch_history
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var events []snapshot.WatchEvent
	for rows.Next() {
		var (
			userID    string
			issueID   string
			watchedAt sql.NullString
		)
		if err := rows.Scan(&userID, &issueID, &watchedAt); err != nil {
			return nil, fmt.Errorf("scan watch history row: %w", err)
		}
		t, ok := parseStoredTime(watchedAt)
		if !ok {
			continue
		}
		events = append(events, snapshot.WatchEvent{
			UserID:    userID,
			IssueID:   issueID,
			WatchedAt: t,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}
	return events, nil
}

func (r *SnapshotRepository) ScoreHistory(ctx context.Context) ([]snapshot.ScoreEntry, error) {
	const query = `
		SELECT user_id, created_at, category, left_score, center_score, right_score
		FROM political_score_history
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	var entries []snapshot.ScoreEntry
	for rows.Next() {
		var (
			userID    string
			createdAt sql.NullString
			category  string
			left      sql.NullFloat64
			center    sql.NullFloat64
			right     sql.NullFloat64
		)
		if err := rows.Scan(&userID, &createdAt, &category, &left, &center, &right); err != nil {
			return nil, fmt.Errorf("scan score history row: %w", err)
		}
		t, ok := parseStoredTime(createdAt)
		if !ok {
			continue
		}
		entries = append(entries, snapshot.ScoreEntry{
			UserID:    userID,
			CreatedAt: t,
			Category:  category,
			Left:      left.Float64,
			Center:    center.Float64,
			Right:     right.Float64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score history: %w", err)
	}
	return entries, nil
}
