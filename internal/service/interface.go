package service

import (
	"context"

	"github.com/newsprism/analytics-server/internal/snapshot"
)

// SnapshotStore provides the immutable export tables the analytics run over.
// Implementations load from the JSON export directory or an imported sqlite
// database.
type SnapshotStore interface {
	Issues(ctx context.Context) ([]snapshot.Issue, error)
	Evaluations(ctx context.Context) ([]snapshot.Evaluation, error)
	MediaSources(ctx context.Context) ([]snapshot.MediaSource, error)
	WatchHistory(ctx context.Context) ([]snapshot.WatchEvent, error)
	ScoreHistory(ctx context.Context) ([]snapshot.ScoreEntry, error)
}
