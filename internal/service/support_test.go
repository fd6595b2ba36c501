package service

import (
	"testing"
	"time"

	"github.com/newsprism/analytics-server/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func issueWith(id string, created time.Time, sources ...snapshot.Source) snapshot.Issue {
	return snapshot.Issue{ID: id, CreatedAt: created, Sources: sources}
}

func TestMapPerspectiveBucket(t *testing.T) {
	cases := []struct {
		label  string
		bucket string
		ok     bool
	}{
		{"left", "left", true},
		{"center_left", "left", true},
		{"center", "center", true},
		{"center_right", "right", true},
		{"right", "right", true},
		{"far_left", "", false},
		{"", "", false},
		{"LEFT", "", false},
	}

	for _, c := range cases {
		t.Run("label "+c.label, func(t *testing.T) {
			bucket, ok := MapPerspectiveBucket(c.label)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.bucket, bucket)
		})
	}
}

func TestCalculateMediaSupportScores_EndToEnd(t *testing.T) {
	jan1 := day(2024, 1, 1)

	t.Run("single matching evaluation yields full support", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1, snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)

		require.Len(t, rows, 1)
		row := rows[0]
		assert.Equal(t, "M1", row.MediaID)
		assert.Equal(t, "Daily One", row.MediaName)
		assert.Equal(t, "left", row.Perspective)
		assert.Equal(t, jan1, row.Date)
		assert.Equal(t, 1, row.DailyIssueCount)
		assert.Equal(t, 1, row.DailySupportedIssueCount)
		assert.Equal(t, 1, row.WindowIssueCount)
		assert.Equal(t, 1, row.WindowSupportedIssueCount)
		assert.Equal(t, 100.0, row.SupportRatio)
	})

	t.Run("non-matching evaluation yields zero ratio", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1, snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "right", EvaluatedAt: jan1},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)

		require.Len(t, rows, 1)
		assert.Equal(t, 1, rows[0].WindowIssueCount)
		assert.Equal(t, 0, rows[0].WindowSupportedIssueCount)
		assert.Equal(t, 0.0, rows[0].SupportRatio)
	})

	t.Run("empty evaluations", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1, snapshot.Source{ID: "M1", Perspective: "left"}),
		}

		rows := CalculateMediaSupportScores(issues, nil)
		assert.Empty(t, rows)
	})

	t.Run("empty issues", func(t *testing.T) {
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1},
		}

		rows := CalculateMediaSupportScores(nil, evaluations)
		assert.Empty(t, rows)
	})

	t.Run("idempotent over identical inputs", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1,
				snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "left"},
				snapshot.Source{ID: "M2", Name: "Daily Two", Perspective: "center_right"}),
			issueWith("I2", day(2024, 1, 3),
				snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "center_left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: day(2024, 1, 2)},
			{UserID: "U2", IssueID: "I2", Perspective: "right", EvaluatedAt: day(2024, 1, 3)},
		}

		first := CalculateMediaSupportScores(issues, evaluations)
		second := CalculateMediaSupportScores(issues, evaluations)
		assert.Equal(t, first, second)
	})
}

func TestCalculateMediaSupportScores_BucketDrops(t *testing.T) {
	jan1 := day(2024, 1, 1)

	t.Run("unmapped source perspective drops the exposure", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1, snapshot.Source{ID: "M1", Perspective: "far_left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)
		assert.Empty(t, rows)
	})

	t.Run("source without id drops the exposure", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1, snapshot.Source{Perspective: "left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)
		assert.Empty(t, rows)
	})

	t.Run("issue without date drops all its exposures", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", time.Time{}, snapshot.Source{ID: "M1", Perspective: "left"}),
			issueWith("I2", jan1, snapshot.Source{ID: "M1", Perspective: "left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I2", Perspective: "left", EvaluatedAt: jan1},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)
		require.Len(t, rows, 1)
		assert.Equal(t, jan1, rows[0].Date)
		assert.Equal(t, 1, rows[0].DailyIssueCount)
	})

	t.Run("issue without sources contributes nothing", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)
		assert.Empty(t, rows)
	})
}

func TestCalculateMediaSupportScores_DistinctCounting(t *testing.T) {
	jan1 := day(2024, 1, 1)

	t.Run("duplicate source entries count the issue once", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1,
				snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "left"},
				snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "center_left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)

		require.Len(t, rows, 1)
		assert.Equal(t, 1, rows[0].DailyIssueCount)
		assert.Equal(t, 1, rows[0].DailySupportedIssueCount)
	})

	t.Run("repeat evaluations of one issue count it once per day", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1, snapshot.Source{ID: "M1", Perspective: "left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1.Add(9 * time.Hour)},
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1.Add(21 * time.Hour)},
			{UserID: "U2", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1.Add(12 * time.Hour)},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)

		require.Len(t, rows, 1)
		assert.Equal(t, 1, rows[0].DailySupportedIssueCount)
		assert.Equal(t, 100.0, rows[0].SupportRatio)
	})

	t.Run("support is attributed to every media sharing the bucket", func(t *testing.T) {
		issues := []snapshot.Issue{
			issueWith("I1", jan1,
				snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "left"},
				snapshot.Source{ID: "M2", Name: "Daily Two", Perspective: "center_left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: jan1},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)

		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, "left", row.Perspective)
			assert.Equal(t, 100.0, row.SupportRatio)
		}
		assert.Equal(t, "M1", rows[0].MediaID)
		assert.Equal(t, "M2", rows[1].MediaID)
	})
}

func TestCalculateMediaSupportScores_RollingWindow(t *testing.T) {
	t.Run("trailing sums use partial windows at the head", func(t *testing.T) {
		// Exposure counts 2,0,0,1 over four consecutive days. The window
		// covers the current day plus the two before it, and partial head
		// windows still emit, so the trailing sums are 2,2,2,1.
		issues := []snapshot.Issue{
			issueWith("I1", day(2024, 1, 1), snapshot.Source{ID: "M1", Perspective: "left"}),
			issueWith("I2", day(2024, 1, 1), snapshot.Source{ID: "M1", Perspective: "center_left"}),
			issueWith("I3", day(2024, 1, 4), snapshot.Source{ID: "M1", Perspective: "left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "right", EvaluatedAt: day(2024, 1, 1)},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)

		require.Len(t, rows, 4)
		assert.Equal(t, []int{2, 0, 0, 1}, []int{
			rows[0].DailyIssueCount, rows[1].DailyIssueCount,
			rows[2].DailyIssueCount, rows[3].DailyIssueCount,
		})
		assert.Equal(t, []int{2, 2, 2, 1}, []int{
			rows[0].WindowIssueCount, rows[1].WindowIssueCount,
			rows[2].WindowIssueCount, rows[3].WindowIssueCount,
		})
	})

	t.Run("window sums overlap across active days", func(t *testing.T) {
		// Exposures on days 1 and 3: trailing sums 1, 1, 2 and a gap-free
		// calendar in between.
		issues := []snapshot.Issue{
			issueWith("I1", day(2024, 1, 1), snapshot.Source{ID: "M1", Perspective: "left"}),
			issueWith("I2", day(2024, 1, 3), snapshot.Source{ID: "M1", Perspective: "left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I2", Perspective: "left", EvaluatedAt: day(2024, 1, 3)},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)

		require.Len(t, rows, 3)
		assert.Equal(t, day(2024, 1, 2), rows[1].Date)
		assert.Equal(t, 0, rows[1].DailyIssueCount)
		assert.Equal(t, 1, rows[1].WindowIssueCount)
		assert.Equal(t, 2, rows[2].WindowIssueCount)
		assert.Equal(t, 1, rows[2].WindowSupportedIssueCount)
		assert.Equal(t, 50.0, rows[2].SupportRatio)
	})

	t.Run("window resets after three inactive days", func(t *testing.T) {
		// Exposure on day 1 only, support on day 6: days 4 and 5 drain the
		// exposure window to zero and are filtered, as is day 6 even though
		// its support window is positive.
		issues := []snapshot.Issue{
			issueWith("I1", day(2024, 1, 1), snapshot.Source{ID: "M1", Perspective: "left"}),
		}
		evaluations := []snapshot.Evaluation{
			{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: day(2024, 1, 6)},
		}

		rows := CalculateMediaSupportScores(issues, evaluations)

		require.Len(t, rows, 3)
		assert.Equal(t, day(2024, 1, 1), rows[0].Date)
		assert.Equal(t, day(2024, 1, 3), rows[2].Date)
		for _, row := range rows {
			assert.Positive(t, row.WindowIssueCount)
		}
	})
}

func TestCalculateMediaSupportScores_Invariants(t *testing.T) {
	issues := []snapshot.Issue{
		issueWith("I1", day(2024, 1, 1),
			snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "left"},
			snapshot.Source{ID: "M2", Name: "Daily Two", Perspective: "right"}),
		issueWith("I2", day(2024, 1, 2),
			snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "center"}),
		issueWith("I3", day(2024, 1, 6),
			snapshot.Source{ID: "M1", Name: "Daily One", Perspective: "left"}),
	}
	evaluations := []snapshot.Evaluation{
		{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: day(2024, 1, 1)},
		{UserID: "U2", IssueID: "I1", Perspective: "right", EvaluatedAt: day(2024, 1, 2)},
		{UserID: "U3", IssueID: "I3", Perspective: "left", EvaluatedAt: day(2024, 1, 8)},
	}

	rows := CalculateMediaSupportScores(issues, evaluations)
	require.NotEmpty(t, rows)

	t.Run("no undefined ratios", func(t *testing.T) {
		for _, row := range rows {
			assert.Positive(t, row.WindowIssueCount)
			assert.GreaterOrEqual(t, row.SupportRatio, 0.0)
			assert.LessOrEqual(t, row.SupportRatio, 100.0)
		}
	})

	t.Run("dates are contiguous within each group", func(t *testing.T) {
		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			if prev.MediaID != cur.MediaID || prev.Perspective != cur.Perspective {
				continue
			}
			assert.Equal(t, prev.Date.AddDate(0, 0, 1), cur.Date,
				"gap between %s and %s in group %s/%s", prev.Date, cur.Date, cur.MediaID, cur.Perspective)
		}
	})

	t.Run("sorted by media, perspective, date", func(t *testing.T) {
		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			switch {
			case prev.MediaID != cur.MediaID:
				assert.Less(t, prev.MediaID, cur.MediaID)
			case prev.Perspective != cur.Perspective:
				assert.Less(t, prev.Perspective, cur.Perspective)
			default:
				assert.True(t, prev.Date.Before(cur.Date))
			}
		}
	})
}

func TestCalculateMediaSupportScores_LateSupport(t *testing.T) {
	// Support strictly after the last exposure extends the calendar, but the
	// trailing days with a drained exposure window are dropped.
	issues := []snapshot.Issue{
		issueWith("I1", day(2024, 1, 1), snapshot.Source{ID: "M1", Perspective: "left"}),
	}
	evaluations := []snapshot.Evaluation{
		{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: day(2024, 1, 2)},
	}

	rows := CalculateMediaSupportScores(issues, evaluations)

	require.Len(t, rows, 2)
	assert.Equal(t, day(2024, 1, 1), rows[0].Date)
	assert.Equal(t, 0.0, rows[0].SupportRatio)
	assert.Equal(t, day(2024, 1, 2), rows[1].Date)
	assert.Equal(t, 1, rows[1].WindowIssueCount)
	assert.Equal(t, 100.0, rows[1].SupportRatio)
}

func TestCalculateMediaSupportScores_TimezoneNormalization(t *testing.T) {
	// A late-evening timestamp east of UTC is the previous UTC day; both
	// sides of the match must truncate on the same calendar.
	seoul := time.FixedZone("KST", 9*3600)
	issues := []snapshot.Issue{
		issueWith("I1", time.Date(2024, 1, 2, 6, 0, 0, 0, seoul), // 2024-01-01T21:00Z
			snapshot.Source{ID: "M1", Perspective: "left"}),
	}
	evaluations := []snapshot.Evaluation{
		{UserID: "U1", IssueID: "I1", Perspective: "left", EvaluatedAt: time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)},
	}

	rows := CalculateMediaSupportScores(issues, evaluations)

	require.Len(t, rows, 1)
	assert.Equal(t, day(2024, 1, 1), rows[0].Date)
	assert.Equal(t, 100.0, rows[0].SupportRatio)
}
