package resolver

import (
	"sort"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
)

type candidate struct {
	code  string
	score float64
}

// candidates builds the ranking input: score codes in input order, then bound
// codes that have no score (score 0) in bound order.
func candidates(scores models.ComponentScores, bound []string) []candidate {
	var allowed map[string]bool
	if len(bound) > 0 {
		allowed = make(map[string]bool, len(bound))
		for _, code := range bound {
			allowed[code] = true
		}
	}

	out := make([]candidate, 0, len(scores)+len(bound))
	seen := make(map[string]bool, len(scores)+len(bound))
	for _, cs := range scores {
		if seen[cs.Code] || (allowed != nil && !allowed[cs.Code]) {
			continue
		}
		seen[cs.Code] = true
		out = append(out, candidate{code: cs.Code, score: cs.Score})
	}
	for _, code := range bound {
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, candidate{code: code})
	}
	return out
}

// RankFlags orders codes by score in the configured direction and keeps the
// first FlagCount. Equal scores are ordered by position in PriorityOrder when
// PriorityRules is set (listed codes first), otherwise by input order.
func RankFlags(cfg *models.FlagConfiguration, scores models.ComponentScores, bound []string) []models.RankedFlag {
	list := candidates(scores, bound)

	var priority map[string]int
	if cfg.PriorityRules {
		priority = make(map[string]int, len(cfg.PriorityOrder))
		for i, code := range cfg.PriorityOrder {
			if _, dup := priority[code]; !dup {
				priority[code] = i
			}
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.score != b.score {
			if cfg.OrderDirection == models.LowToHigh {
				return a.score < b.score
			}
			return a.score > b.score
		}
		if priority == nil {
			return false
		}
		pa, okA := priority[a.code]
		pb, okB := priority[b.code]
		switch {
		case okA && okB:
			return pa < pb
		case okA:
			return true
		default:
			return false
		}
	})

	n := cfg.FlagCount
	if n > len(list) {
		n = len(list)
	}
	if n < 0 {
		n = 0
	}

	out := make([]models.RankedFlag, n)
	for i := 0; i < n; i++ {
		out[i] = models.RankedFlag{Code: list[i].code, Score: list[i].score, Rank: i + 1}
	}
	return out
}

// MatchRange returns the first range, in declaration order, containing score
// and how many ranges contain it.
func MatchRange(ranges []models.ScoreRange, score float64) (*models.ScoreRange, int) {
	var (
		first *models.ScoreRange
		count int
	)
	for i := range ranges {
		if !ranges[i].Contains(score) {
			continue
		}
		if first == nil {
			r := ranges[i]
			first = &r
		}
		count++
	}
	return first, count
}
