// Package shortlist implements the Decision Shortlist: hard filters,
// cross-source validation boosts, a log-scaled final score, and selection
// of a 3-5 item human-consumable list of micro-product opportunities.
package shortlist

import (
	"math"
	"strconv"
	"strings"

	"github.com/painminer/painminer/internal/config"
	"github.com/painminer/painminer/internal/domain"
)

// Boost levels, spec-mandated.
const (
	boostCrossSourceAligned = 2.0
	boostLargeMultiSub      = 1.0
	boostModerateMultiSub   = 0.5
	boostNone               = 0.0
)

// Diversity penalty multipliers applied during the optional diversity
// pass, spec-mandated.
const (
	penaltySameCluster  = 0.70
	penaltySamePainType = 0.85
	penaltyKeywordOverlap = 0.90
	keywordOverlapThreshold = 0.60
)

// Candidate bundles one opportunity with the cluster-derived context the
// hard filters, boost levels, and final score all need.
type Candidate struct {
	Opportunity        domain.Opportunity
	ClusterSize        int
	UniqueSubreddits   int
	TrustLevel         float64
	CrossSourceAligned bool // opportunity came from an AlignedProblem or its cluster appears in one
	PainType           string
	Keywords           map[string]bool // normalized words from title + problem statement
}

// FilterReason names the specific threshold that excluded every candidate
// a hard filter dropped, for the empty-shortlist report.
type FilterReason struct {
	Name    string
	Dropped int
}

// HardFilter applies the three non-negotiable thresholds plus the
// ignore-list, in the order spec.md §4.9 step 1 lists them, and reports
// how many candidates each filter excluded.
func HardFilter(candidates []Candidate, cfg config.ShortlistConfig) ([]Candidate, []FilterReason) {
	reasons := []FilterReason{
		{Name: "total_score < " + ftoa(cfg.MinTotalScore)},
		{Name: "cluster_size < " + itoa(cfg.MinClusterSize)},
		{Name: "trust_level < " + ftoa(cfg.MinTrustLevel)},
		{Name: "cluster on ignore-list"},
	}
	ignore := map[string]bool{}
	for _, name := range cfg.IgnoreList {
		ignore[name] = true
	}

	out := candidates
	out, reasons[0].Dropped = filterStep(out, func(c Candidate) bool {
		return c.Opportunity.ViabilityScore >= cfg.MinTotalScore
	})
	out, reasons[1].Dropped = filterStep(out, func(c Candidate) bool {
		return c.ClusterSize >= cfg.MinClusterSize
	})
	out, reasons[2].Dropped = filterStep(out, func(c Candidate) bool {
		return c.TrustLevel >= cfg.MinTrustLevel
	})
	out, reasons[3].Dropped = filterStep(out, func(c Candidate) bool {
		return !ignore[c.Opportunity.ClusterID]
	})
	return out, reasons
}

func filterStep(in []Candidate, keep func(Candidate) bool) ([]Candidate, int) {
	var out []Candidate
	dropped := 0
	for _, c := range in {
		if keep(c) {
			out = append(out, c)
		} else {
			dropped++
		}
	}
	return out, dropped
}

// ValidationBoost reports the cross-source corroboration bonus a
// candidate earns, per spec.md §4.9 step 2's three levels.
func ValidationBoost(c Candidate) float64 {
	switch {
	case c.CrossSourceAligned:
		return boostCrossSourceAligned
	case c.ClusterSize >= 10 && c.UniqueSubreddits >= 3:
		return boostLargeMultiSub
	case c.ClusterSize >= 8 && c.UniqueSubreddits >= 2:
		return boostModerateMultiSub
	default:
		return boostNone
	}
}

// FinalScore combines viability, a log10-scaled cluster-size term, trust
// level, and the validation boost into a single clamped 0-10 score.
func FinalScore(c Candidate, boost float64) float64 {
	size := c.ClusterSize
	if size < 1 {
		size = 1
	}
	score := c.Opportunity.ViabilityScore*1.0 + math.Log10(float64(size))*2.5 + c.TrustLevel*1.5
	if boost > 0 {
		score += 5.0 * boost * 0.1
	}
	if score > 10 {
		score = 10
	}
	if score < 0 {
		score = 0
	}
	return score
}

// scored pairs a candidate with its computed boost and final score, kept
// together through sorting and the diversity pass.
type scored struct {
	candidate Candidate
	boost     float64
	final     float64
}

// Select ranks candidates by final score descending and takes between
// MinCandidates and MaxCandidates, applying the optional diversity pass if
// enough candidates remain to make it meaningful.
func Select(candidates []Candidate, cfg config.ShortlistConfig, diversify bool) []domain.ShortlistEntry {
	if cfg.MinCandidates > 0 && len(candidates) < cfg.MinCandidates {
		return nil
	}

	scoredList := make([]scored, len(candidates))
	for i, c := range candidates {
		boost := ValidationBoost(c)
		scoredList[i] = scored{candidate: c, boost: boost, final: FinalScore(c, boost)}
	}

	if diversify {
		scoredList = diversityPass(scoredList)
	} else {
		sortByFinalDesc(scoredList)
	}

	max := cfg.MaxCandidates
	if max <= 0 || max > len(scoredList) {
		max = len(scoredList)
	}

	entries := make([]domain.ShortlistEntry, 0, max)
	for i := 0; i < max; i++ {
		s := scoredList[i]
		entries = append(entries, domain.ShortlistEntry{
			Opportunity:     s.candidate.Opportunity,
			ValidationBoost: s.boost,
			FinalScore:      s.final,
			Rank:            i + 1,
		})
	}
	return entries
}

func sortByFinalDesc(list []scored) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].final > list[j-1].final; j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}

// diversityPass greedily picks the highest-scoring remaining candidate at
// each step, penalizing anything still unselected that duplicates an
// already-picked candidate's cluster, pain type, or keyword set, then
// re-evaluating before the next pick (a simple maximal-marginal-relevance
// style selection).
func diversityPass(list []scored) []scored {
	sortByFinalDesc(list)
	var selected []scored
	remaining := append([]scored(nil), list...)

	for len(remaining) > 0 {
		bestIdx := 0
		bestEffective := effectiveScore(remaining[0], selected)
		for i := 1; i < len(remaining); i++ {
			eff := effectiveScore(remaining[i], selected)
			if eff > bestEffective {
				bestEffective = eff
				bestIdx = i
			}
		}
		picked := remaining[bestIdx]
		picked.final = bestEffective
		selected = append(selected, picked)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

func effectiveScore(s scored, selected []scored) float64 {
	penalty := 1.0
	for _, sel := range selected {
		if s.candidate.Opportunity.ClusterID != "" && s.candidate.Opportunity.ClusterID == sel.candidate.Opportunity.ClusterID {
			penalty *= penaltySameCluster
		} else if s.candidate.PainType != "" && s.candidate.PainType == sel.candidate.PainType {
			penalty *= penaltySamePainType
		} else if keywordOverlap(s.candidate.Keywords, sel.candidate.Keywords) >= keywordOverlapThreshold {
			penalty *= penaltyKeywordOverlap
		}
	}
	return s.final * penalty
}

func keywordOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for k := range a {
		if b[k] {
			shared++
		}
	}
	smaller := len(a)
	if len(b) < smaller {
		smaller = len(b)
	}
	return float64(shared) / float64(smaller)
}

// Keywords normalizes a title and problem statement into a lowercase word
// set for the diversity pass's overlap check.
func Keywords(title, problemStatement string) map[string]bool {
	out := map[string]bool{}
	for _, field := range []string{title, problemStatement} {
		for _, word := range strings.Fields(strings.ToLower(field)) {
			word = strings.Trim(word, ".,!?;:\"'()")
			if len(word) > 3 {
				out[word] = true
			}
		}
	}
	return out
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
