package archive

import (
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/doorstep/internal/domain"
)

const (
	// TrendMinSessions is the fewest sessions a rep needs before a trend is reported.
	TrendMinSessions = 4
	// TopIssuesLimit caps the recent improvement notes shown per rep.
	TopIssuesLimit = 3
)

// Aggregate groups sessions by rep (case-insensitive on the trimmed name) and
// computes the manager statistics. Input order does not matter. Fields the
// model left out are skipped, never fatal. Results are ordered by average
// score, highest first.
func Aggregate(sessions []domain.SessionSummary) []domain.RepStats {
	groups := make(map[string][]domain.SessionSummary)
	var keys []string
	for _, s := range sessions {
		key := repKey(s.RepName)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], s)
	}

	stats := make([]domain.RepStats, 0, len(keys))
	for _, key := range keys {
		stats = append(stats, repStats(groups[key]))
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].AvgScore != stats[j].AvgScore {
			return stats[i].AvgScore > stats[j].AvgScore
		}
		return strings.ToLower(stats[i].Name) < strings.ToLower(stats[j].Name)
	})
	return stats
}

func repStats(sessions []domain.SessionSummary) domain.RepStats {
	sorted := make([]domain.SessionSummary, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	scores := make([]int, len(sorted))
	best, sum := 0, 0
	for i, s := range sorted {
		scores[i] = s.Analysis.Overall
		sum += scores[i]
		if i == 0 || scores[i] > best {
			best = scores[i]
		}
	}

	st := domain.RepStats{
		Name:             strings.TrimSpace(sorted[0].RepName),
		SessionCount:     len(sorted),
		AvgScore:         domain.RoundHalfUp(float64(sum) / float64(len(sorted))),
		BestScore:        best,
		LatestScore:      scores[0],
		LastActive:       sorted[0].CreatedAt,
		ImprovementTrend: Trend(scores),
		CategoryAverages: categoryAverages(sorted),
		TopIssues:        topIssues(sorted),
	}
	return st
}

// Trend compares the newer half of a newest-first score list with the older
// half. The middle score of an odd-length list belongs to neither half. It is
// nil below TrendMinSessions.
func Trend(newestFirst []int) *int {
	n := len(newestFirst)
	if n < TrendMinSessions {
		return nil
	}
	half := n / 2
	newer := mean(newestFirst[:half])
	older := mean(newestFirst[n-half:])
	trend := domain.RoundHalfUp(newer - older)
	return &trend
}

func categoryAverages(sessions []domain.SessionSummary) map[string]*int {
	out := make(map[string]*int, len(domain.Categories))
	for _, cat := range domain.Categories {
		var vals []int
		for _, s := range sessions {
			if score, ok := s.Analysis.CategoryScoreOf(cat); ok {
				vals = append(vals, score)
			}
		}
		if len(vals) == 0 {
			out[cat] = nil
			continue
		}
		avg := domain.RoundHalfUp(mean(vals))
		out[cat] = &avg
	}
	return out
}

func topIssues(newestFirst []domain.SessionSummary) []string {
	issues := make([]string, 0, TopIssuesLimit)
	for _, s := range newestFirst {
		issue := strings.TrimSpace(s.Analysis.KeyImprovement)
		if issue == "" {
			continue
		}
		issues = append(issues, issue)
		if len(issues) == TopIssuesLimit {
			break
		}
	}
	return issues
}

func mean(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

func repKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
