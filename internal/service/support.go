package service

import (
	"sort"
	"time"

	"github.com/newsprism/analytics-server/internal/snapshot"
)

// supportWindowDays is the trailing window for the rolling support ratio.
// Partial windows at the head of a series still produce a value, so a
// low-volume source shows a ratio from its first covered day.
const supportWindowDays = 3

type exposureRecord struct {
	MediaID     string
	MediaName   string
	Perspective string
	IssueID     string
	IssueDate   time.Time
}

type supportEvent struct {
	MediaID     string
	MediaName   string
	Perspective string
	IssueID     string
	SupportDate time.Time
}

type mediaGroup struct {
	MediaID     string
	MediaName   string
	Perspective string
}

// dayUTC truncates a timestamp to midnight UTC. All daily bucketing in the
// pipeline goes through this so exposures and support events land on the same
// calendar.
func dayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// extractExposures flattens issues into one record per (issue, covering
// source) pair. Issues without a usable date and sources without an id or a
// mappable perspective contribute nothing.
func extractExposures(issues []snapshot.Issue) []exposureRecord {
	var exposures []exposureRecord
	for _, issue := range issues {
		if issue.ID == "" || issue.CreatedAt.IsZero() {
			continue
		}
		day := dayUTC(issue.CreatedAt)
		for _, src := range issue.Sources {
			if src.ID == "" {
				continue
			}
			bucket, ok := MapPerspectiveBucket(src.Perspective)
			if !ok {
				continue
			}
			name := src.Name
			if name == "" {
				name = src.ID
			}
			exposures = append(exposures, exposureRecord{
				MediaID:     src.ID,
				MediaName:   name,
				Perspective: bucket,
				IssueID:     issue.ID,
				IssueDate:   day,
			})
		}
	}
	return exposures
}

// matchSupport joins evaluations against the exposure table on issue id and
// keeps rows where the user's perspective equals the exposure bucket. One
// evaluation yields one event per matching source, so agreement is attributed
// to every outlet that covered the issue under that bucket.
func matchSupport(evaluations []snapshot.Evaluation, exposures []exposureRecord) []supportEvent {
	byIssue := make(map[string][]int)
	for i, exp := range exposures {
		byIssue[exp.IssueID] = append(byIssue[exp.IssueID], i)
	}

	var events []supportEvent
	for _, eval := range evaluations {
		if eval.IssueID == "" || eval.EvaluatedAt.IsZero() {
			continue
		}
		day := dayUTC(eval.EvaluatedAt)
		for _, i := range byIssue[eval.IssueID] {
			exp := exposures[i]
			if exp.Perspective != eval.Perspective {
				continue
			}
			events = append(events, supportEvent{
				MediaID:     exp.MediaID,
				MediaName:   exp.MediaName,
				Perspective: exp.Perspective,
				IssueID:     exp.IssueID,
				SupportDate: day,
			})
		}
	}
	return events
}

// issueDaySet tracks distinct issue ids per day. Both exposure and support
// counts are distinct-issue counts: covering the same issue twice under the
// same bucket, or evaluating it twice in one day, still counts once.
type issueDaySet map[time.Time]map[string]struct{}

func (s issueDaySet) add(day time.Time, issueID string) {
	issues, ok := s[day]
	if !ok {
		issues = make(map[string]struct{})
		s[day] = issues
	}
	issues[issueID] = struct{}{}
}

// CalculateMediaSupportScores computes the rolling support-ratio table for
// every (media, perspective) pair present in the issues' covering sources.
//
// Per group it builds a contiguous daily calendar from the first exposure to
// the last exposure or support event, fills gaps with zero counts, takes
// 3-day trailing sums of both series, and derives the support ratio as a
// percentage wherever the trailing exposure sum is positive. Days with a zero
// trailing exposure sum are filtered out, so every emitted row has a defined
// ratio. Rows are sorted by (media id, perspective, date).
//
// Empty inputs and inputs that reduce to nothing after validation yield an
// empty table, never an error.
func CalculateMediaSupportScores(issues []snapshot.Issue, evaluations []snapshot.Evaluation) []SupportRatioRow {
	if len(issues) == 0 || len(evaluations) == 0 {
		return nil
	}

	exposures := extractExposures(issues)
	if len(exposures) == 0 {
		return nil
	}
	events := matchSupport(evaluations, exposures)

	exposed := make(map[mediaGroup]issueDaySet)
	for _, exp := range exposures {
		g := mediaGroup{exp.MediaID, exp.MediaName, exp.Perspective}
		if exposed[g] == nil {
			exposed[g] = make(issueDaySet)
		}
		exposed[g].add(exp.IssueDate, exp.IssueID)
	}

	supported := make(map[mediaGroup]issueDaySet)
	for _, ev := range events {
		g := mediaGroup{ev.MediaID, ev.MediaName, ev.Perspective}
		if supported[g] == nil {
			supported[g] = make(issueDaySet)
		}
		supported[g].add(ev.SupportDate, ev.IssueID)
	}

	var rows []SupportRatioRow
	for g, exposureDays := range exposed {
		rows = append(rows, buildGroupSeries(g, exposureDays, supported[g])...)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.MediaID != b.MediaID {
			return a.MediaID < b.MediaID
		}
		if a.Perspective != b.Perspective {
			return a.Perspective < b.Perspective
		}
		return a.Date.Before(b.Date)
	})
	return rows
}

// buildGroupSeries walks one group's daily calendar, maintaining trailing
// sums over a fixed-size window of the most recent daily counts.
func buildGroupSeries(g mediaGroup, exposureDays, supportDays issueDaySet) []SupportRatioRow {
	if len(exposureDays) == 0 {
		return nil
	}

	var start, end time.Time
	for day := range exposureDays {
		if start.IsZero() || day.Before(start) {
			start = day
		}
		if end.IsZero() || day.After(end) {
			end = day
		}
	}
	// Support events may land after the last exposure; the calendar extends
	// to cover them. Trailing days whose exposure window drains to zero are
	// removed by the final filter.
	for day := range supportDays {
		if day.After(end) {
			end = day
		}
	}

	var (
		rows              []SupportRatioRow
		expWindow         [supportWindowDays]int
		supWindow         [supportWindowDays]int
		winExp, winSup, i int
	)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		slot := i % supportWindowDays
		winExp -= expWindow[slot]
		winSup -= supWindow[slot]

		dailyExp := len(exposureDays[day])
		dailySup := len(supportDays[day])
		expWindow[slot] = dailyExp
		supWindow[slot] = dailySup
		winExp += dailyExp
		winSup += dailySup
		i++

		if winExp <= 0 {
			continue
		}
		rows = append(rows, SupportRatioRow{
			MediaID:                   g.MediaID,
			MediaName:                 g.MediaName,
			Perspective:               g.Perspective,
			Date:                      day,
			DailyIssueCount:           dailyExp,
			DailySupportedIssueCount:  dailySup,
			WindowIssueCount:          winExp,
			WindowSupportedIssueCount: winSup,
			SupportRatio:              float64(winSup) / float64(winExp) * 100,
		})
	}
	return rows
}
