package mocks

import (
	"context"

	"github.com/newsprism/analytics-server/internal/snapshot"
)

// MockSnapshotStore is a mock implementation of the SnapshotStore interface
// for testing the service layer. It uses function-based mocking for
// flexibility; unset functions return empty tables.
type MockSnapshotStore struct {
	IssuesFunc       func(ctx context.Context) ([]snapshot.Issue, error)
	EvaluationsFunc  func(ctx context.Context) ([]snapshot.Evaluation, error)
	MediaSourcesFunc func(ctx context.Context) ([]snapshot.MediaSource, error)
	WatchHistoryFunc func(ctx context.Context) ([]snapshot.WatchEvent, error)
	ScoreHistoryFunc func(ctx context.Context) ([]snapshot.ScoreEntry, error)
}

func (m *MockSnapshotStore) Issues(ctx context.Context) ([]snapshot.Issue, error) {
	if m.IssuesFunc != nil {
		return m.IssuesFunc(ctx)
	}
	return nil, nil
}

func (m *MockSnapshotStore) Evaluations(ctx context.Context) ([]snapshot.Evaluation, error) {
	if m.EvaluationsFunc != nil {
		return m.EvaluationsFunc(ctx)
	}
	return nil, nil
}

func (m *MockSnapshotStore) MediaSources(ctx context.Context) ([]snapshot.MediaSource, error) {
	if m.MediaSourcesFunc != nil {
		return m.MediaSourcesFunc(ctx)
	}
	return nil, nil
}

func (m *MockSnapshotStore) WatchHistory(ctx context.Context) ([]snapshot.WatchEvent, error) {
	if m.WatchHistoryFunc != nil {
		return m.WatchHistoryFunc(ctx)
	}
	return nil, nil
}

func (m *MockSnapshotStore) ScoreHistory(ctx context.Context) ([]snapshot.ScoreEntry, error) {
	if m.ScoreHistoryFunc != nil {
		return m.ScoreHistoryFunc(ctx)
	}
	return nil, nil
}
