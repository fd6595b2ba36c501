package service

import (
	"sort"
	"time"

	"github.com/newsprism/analytics-server/internal/snapshot"
)

// BuildUserActivityReport aggregates one user's watch history, evaluations,
// and watched-media perspective mix over the window [ref-days, ref].
//
// The report is assembled from whatever tables have data; a user with no
// activity in the window produces an empty report, which the service layer
// maps to the no-data state.
func BuildUserActivityReport(
	userID string,
	days int,
	ref time.Time,
	watch []snapshot.WatchEvent,
	evaluations []snapshot.Evaluation,
	issues []snapshot.Issue,
	media []snapshot.MediaSource,
) UserActivityReport {
	start := ref.AddDate(0, 0, -days)

	userWatch := filterUserWatch(watch, userID, start, ref)
	issueCounts := countWatchByIssue(userWatch, issues)

	return UserActivityReport{
		UserID:                   userID,
		Days:                     days,
		WatchByDay:               countWatchByDay(userWatch),
		WatchByIssue:             issueCounts,
		WatchByCategory:          countWatchByCategory(issueCounts),
		EvaluationsByPerspective: countEvaluationsByPerspective(evaluations, userID, start, ref),
		MediaCoverage:            summarizeMediaPerspectives(issueCounts, issues, media),
	}
}

func filterUserWatch(watch []snapshot.WatchEvent, userID string, start, end time.Time) []snapshot.WatchEvent {
	var filtered []snapshot.WatchEvent
	for _, w := range watch {
		if w.UserID != userID || w.WatchedAt.IsZero() {
			continue
		}
		if w.WatchedAt.Before(start) || w.WatchedAt.After(end) {
			continue
		}
		filtered = append(filtered, w)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].WatchedAt.After(filtered[j].WatchedAt)
	})
	return filtered
}

func countWatchByIssue(watch []snapshot.WatchEvent, issues []snapshot.Issue) []IssueWatchCount {
	if len(watch) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, w := range watch {
		counts[w.IssueID]++
	}

	meta := make(map[string]snapshot.Issue, len(issues))
	for _, issue := range issues {
		meta[issue.ID] = issue
	}

	result := make([]IssueWatchCount, 0, len(counts))
	for issueID, n := range counts {
		row := IssueWatchCount{IssueID: issueID, WatchCount: n, Category: "unknown"}
		if issue, ok := meta[issueID]; ok {
			row.Title = issue.Title
			if issue.Category != "" {
				row.Category = issue.Category
			}
		}
		result = append(result, row)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].WatchCount != result[j].WatchCount {
			return result[i].WatchCount > result[j].WatchCount
		}
		return result[i].IssueID < result[j].IssueID
	})
	return result
}

func countWatchByCategory(issueCounts []IssueWatchCount) []CategoryWatchCount {
	if len(issueCounts) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, row := range issueCounts {
		counts[row.Category] += row.WatchCount
	}

	result := make([]CategoryWatchCount, 0, len(counts))
	for category, n := range counts {
		result = append(result, CategoryWatchCount{Category: category, WatchCount: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].WatchCount != result[j].WatchCount {
			return result[i].WatchCount > result[j].WatchCount
		}
		return result[i].Category < result[j].Category
	})
	return result
}

func countWatchByDay(watch []snapshot.WatchEvent) []DailyWatchCount {
	if len(watch) == 0 {
		return nil
	}

	counts := make(map[time.Time]int)
	for _, w := range watch {
		counts[dayUTC(w.WatchedAt)]++
	}

	result := make([]DailyWatchCount, 0, len(counts))
	for day, n := range counts {
		result = append(result, DailyWatchCount{Date: day, WatchCount: n})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

func countEvaluationsByPerspective(evaluations []snapshot.Evaluation, userID string, start, end time.Time) []PerspectiveCount {
	counts := make(map[string]int)
	for _, e := range evaluations {
		if e.UserID != userID || e.EvaluatedAt.IsZero() {
			continue
		}
		if e.EvaluatedAt.Before(start) || e.EvaluatedAt.After(end) {
			continue
		}
		perspective := e.Perspective
		if perspective == "" {
			perspective = "unknown"
		}
		counts[perspective]++
	}
	if len(counts) == 0 {
		return nil
	}

	result := make([]PerspectiveCount, 0, len(counts))
	for perspective, n := range counts {
		result = append(result, PerspectiveCount{Perspective: perspective, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Perspective < result[j].Perspective
	})
	return result
}

// summarizeMediaPerspectives weights each watched issue by its watch count,
// splits the weight evenly over the issue's covering sources, and sums the
// weights per perspective label. The media table's perspective wins over the
// label embedded in the issue when both are present.
func summarizeMediaPerspectives(issueCounts []IssueWatchCount, issues []snapshot.Issue, media []snapshot.MediaSource) []PerspectiveCoverage {
	if len(issueCounts) == 0 || len(issues) == 0 {
		return nil
	}

	issueMeta := make(map[string]snapshot.Issue, len(issues))
	for _, issue := range issues {
		issueMeta[issue.ID] = issue
	}
	mediaMeta := make(map[string]snapshot.MediaSource, len(media))
	for _, m := range media {
		mediaMeta[m.ID] = m
	}

	weights := make(map[string]float64)
	for _, row := range issueCounts {
		issue, ok := issueMeta[row.IssueID]
		if !ok || len(issue.Sources) == 0 {
			continue
		}
		perSource := float64(row.WatchCount) / float64(len(issue.Sources))
		for _, src := range issue.Sources {
			perspective := src.Perspective
			if m, ok := mediaMeta[src.ID]; ok && m.Perspective != "" {
				perspective = m.Perspective
			}
			if perspective == "" {
				perspective = "unknown"
			}
			weights[perspective] += perSource
		}
	}
	if len(weights) == 0 {
		return nil
	}

	result := make([]PerspectiveCoverage, 0, len(weights))
	for perspective, w := range weights {
		result = append(result, PerspectiveCoverage{Perspective: perspective, WeightedCoverage: w})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].WeightedCoverage != result[j].WeightedCoverage {
			return result[i].WeightedCoverage > result[j].WeightedCoverage
		}
		return result[i].Perspective < result[j].Perspective
	})
	return result
}
