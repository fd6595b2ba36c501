package service

import (
	"testing"
	"time"

	"github.com/newsprism/analytics-server/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatePoliticalTrend(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 1, 31)

	t.Run("sums per category and day with proportions", func(t *testing.T) {
		entries := []snapshot.ScoreEntry{
			{UserID: "U1", CreatedAt: day(2024, 1, 5).Add(10 * time.Hour), Category: "politics", Left: 2, Center: 1, Right: 1},
			{UserID: "U2", CreatedAt: day(2024, 1, 5).Add(22 * time.Hour), Category: "politics", Left: 2, Center: 0, Right: 2},
			{UserID: "U1", CreatedAt: day(2024, 1, 5), Category: "economy", Left: 0, Center: 3, Right: 0},
			{UserID: "U1", CreatedAt: day(2024, 1, 6), Category: "politics", Left: 1, Center: 0, Right: 0},
		}

		points := AggregatePoliticalTrend(entries, start, end)

		require.Len(t, points, 3)
		// Sorted by date then category.
		assert.Equal(t, "economy", points[0].Category)
		assert.Equal(t, "politics", points[1].Category)
		assert.Equal(t, day(2024, 1, 5), points[1].Date)
		assert.Equal(t, 4.0, points[1].LeftScore)
		assert.Equal(t, 1.0, points[1].CenterScore)
		assert.Equal(t, 3.0, points[1].RightScore)
		assert.Equal(t, 8.0, points[1].TotalScore)
		assert.InDelta(t, 0.5, points[1].LeftProportion, 1e-9)
		assert.InDelta(t, 0.125, points[1].CenterProportion, 1e-9)
		assert.InDelta(t, 0.375, points[1].RightProportion, 1e-9)
		assert.Equal(t, day(2024, 1, 6), points[2].Date)
	})

	t.Run("zero totals keep zero proportions", func(t *testing.T) {
		entries := []snapshot.ScoreEntry{
			{UserID: "U1", CreatedAt: day(2024, 1, 5), Category: "culture"},
		}

		points := AggregatePoliticalTrend(entries, start, end)

		require.Len(t, points, 1)
		assert.Equal(t, 0.0, points[0].TotalScore)
		assert.Equal(t, 0.0, points[0].LeftProportion)
	})

	t.Run("entries outside the range are skipped", func(t *testing.T) {
		entries := []snapshot.ScoreEntry{
			{UserID: "U1", CreatedAt: day(2023, 12, 31), Category: "politics", Left: 1},
			{UserID: "U1", CreatedAt: day(2024, 2, 1), Category: "politics", Left: 1},
			{UserID: "U1", CreatedAt: time.Time{}, Category: "politics", Left: 1},
		}

		points := AggregatePoliticalTrend(entries, start, end)
		assert.Empty(t, points)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, AggregatePoliticalTrend(nil, start, end))
	})
}

func TestRecentIssueSummaries(t *testing.T) {
	issues := []snapshot.Issue{
		issueWith("I1", day(2024, 1, 1), snapshot.Source{ID: "M1", Perspective: "left"}),
		issueWith("I2", day(2024, 1, 3)),
		issueWith("I3", day(2024, 1, 2)),
	}

	t.Run("newest first with source counts", func(t *testing.T) {
		summaries := RecentIssueSummaries(issues, 10)

		require.Len(t, summaries, 3)
		assert.Equal(t, []string{"I2", "I3", "I1"}, []string{
			summaries[0].IssueID, summaries[1].IssueID, summaries[2].IssueID,
		})
		assert.Equal(t, 0, summaries[0].SourceCount)
		assert.Equal(t, 1, summaries[2].SourceCount)
	})

	t.Run("limit truncates", func(t *testing.T) {
		summaries := RecentIssueSummaries(issues, 2)

		require.Len(t, summaries, 2)
		assert.Equal(t, "I2", summaries[0].IssueID)
	})

	t.Run("non-positive limit", func(t *testing.T) {
		assert.Empty(t, RecentIssueSummaries(issues, 0))
	})

	t.Run("input order is preserved", func(t *testing.T) {
		_ = RecentIssueSummaries(issues, 1)
		assert.Equal(t, "I1", issues[0].ID)
	})
}
