package engine

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/7h3v01c3/PhishBait/internal/domain"
)

const (
	reviewMinPercent = 65
	topicDisplayCap  = 3
)

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// Resolve computes the weighted score, percentage, tier title and optional
// review line for a finished answer set. A nil answer never matches, so
// force-finished questions count as missed. The two random draws (tier title)
// make this non-idempotent; the session freezes the returned summary so it is
// computed exactly once per run.
func Resolve(questions []domain.EngineQuestion, answers []*int, tiers []domain.RankingTier, rnd *rand.Rand) domain.ResultSummary {
	var score, maxScore, correctCount int
	var missed []domain.MissedQuestion
	var missedTopics []string

	for i, q := range questions {
		maxScore += q.Weight
		a := answers[i]
		if a != nil && *a == q.CorrectAnswer {
			score += q.Weight
			correctCount++
			continue
		}
		missed = append(missed, domain.MissedQuestion{Text: q.Text, NotReady: q.NotReady})
		if q.NotReady != "" {
			missedTopics = append(missedTopics, q.NotReady)
		}
	}

	percent := 0
	if maxScore > 0 {
		percent = int(math.Round(100 * float64(score) / float64(maxScore)))
	}

	res := domain.ResultSummary{
		Score:        score,
		MaxScore:     maxScore,
		CorrectCount: correctCount,
		MissedCount:  len(missed),
		Percent:      percent,
		Missed:       missed,
	}

	tier := resolveTier(tiers, percent)
	if tier == nil || len(tier.Titles) == 0 {
		res.Title = fmt.Sprintf("Score: %d%%", percent)
		return res
	}
	res.Title = tier.Titles[rnd.Intn(len(tier.Titles))]

	if shouldReview(tier, res.MissedCount, len(questions), percent) {
		res.ReviewLine = formatTemplate(tier.Review, map[string]string{
			"title":          res.Title,
			"missed":         fmt.Sprintf("%d", res.MissedCount),
			"not_ready_list": formatMissedTopics(missedTopics),
		})
	}
	return res
}

// resolveTier picks the tightest lower bound: the highest min_percent the
// percentage still clears.
func resolveTier(tiers []domain.RankingTier, percent int) *domain.RankingTier {
	sorted := make([]domain.RankingTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinPercent > sorted[j].MinPercent
	})
	for i := range sorted {
		if percent >= sorted[i].MinPercent {
			return &sorted[i]
		}
	}
	return nil
}

// shouldReview gates the review line: a template must exist, the player must
// have missed something but not everything, and the score must sit in the
// review band. A total sweep of misses suppresses the line even if the
// percentage somehow cleared the floor.
func shouldReview(tier *domain.RankingTier, missedCount, total, percent int) bool {
	return tier.Review != "" &&
		missedCount > 0 &&
		missedCount < total &&
		percent < 100 &&
		percent >= reviewMinPercent
}

// formatTemplate substitutes {key} placeholders; unknown keys render empty.
func formatTemplate(template string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := match[1 : len(match)-1]
		return vars[key]
	})
}

// formatMissedTopics joins up to topicDisplayCap remediation strings and
// summarizes the rest as "+N more".
func formatMissedTopics(topics []string) string {
	if len(topics) <= topicDisplayCap {
		return strings.Join(topics, " & ")
	}
	shown := strings.Join(topics[:topicDisplayCap], " & ")
	return fmt.Sprintf("%s +%d more", shown, len(topics)-topicDisplayCap)
}
