package service

import (
	"sort"
	"time"

	"github.com/newsprism/analytics-server/internal/snapshot"
)

type trendKey struct {
	Day      time.Time
	Category string
}

// AggregatePoliticalTrend sums the political score history per category and
// day inside [start, end] and derives per-day left/center/right proportions.
// Entries outside the range or without a timestamp are skipped. Proportions
// are zero when a day's total is zero.
func AggregatePoliticalTrend(entries []snapshot.ScoreEntry, start, end time.Time) []TrendPoint {
	if len(entries) == 0 {
		return nil
	}

	sums := make(map[trendKey]*TrendPoint)
	for _, e := range entries {
		if e.CreatedAt.IsZero() || e.CreatedAt.Before(start) || e.CreatedAt.After(end) {
			continue
		}
		key := trendKey{Day: dayUTC(e.CreatedAt), Category: e.Category}
		p, ok := sums[key]
		if !ok {
			p = &TrendPoint{Date: key.Day, Category: key.Category}
			sums[key] = p
		}
		p.LeftScore += e.Left
		p.CenterScore += e.Center
		p.RightScore += e.Right
	}

	points := make([]TrendPoint, 0, len(sums))
	for _, p := range sums {
		p.TotalScore = p.LeftScore + p.CenterScore + p.RightScore
		if p.TotalScore > 0 {
			p.LeftProportion = p.LeftScore / p.TotalScore
			p.CenterProportion = p.CenterScore / p.TotalScore
			p.RightProportion = p.RightScore / p.TotalScore
		}
		points = append(points, *p)
	}

	sort.Slice(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		return points[i].Category < points[j].Category
	})
	return points
}

// RecentIssueSummaries returns the newest issues first, at most limit of them.
func RecentIssueSummaries(issues []snapshot.Issue, limit int) []IssueSummary {
	if len(issues) == 0 || limit <= 0 {
		return nil
	}

	sorted := make([]snapshot.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if limit > len(sorted) {
		limit = len(sorted)
	}
	summaries := make([]IssueSummary, 0, limit)
	for _, issue := range sorted[:limit] {
		summaries = append(summaries, IssueSummary{
			IssueID:     issue.ID,
			Title:       issue.Title,
			Category:    issue.Category,
			CreatedAt:   issue.CreatedAt,
			SourceCount: len(issue.Sources),
		})
	}
	return summaries
}
