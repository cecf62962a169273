package confidence

import (
	"sort"

	"NewsCredibility/internal/domain"
)

// Fuse parameters (top-K dominance).
const (
	TopK                  = 20
	StrongRelevance       = 0.5
	CountSaturation       = 10.0
	AverageWeight         = 0.7
	CountWeight           = 0.3
	EmptyCorpusConfidence = 0.1
)

// Verdict thresholds.
const (
	TrueThreshold        = 0.7
	LikelyFalseThreshold = 0.4
)

// Fuse derives corpus confidence from the top articles and maps it to a verdict.
func Fuse(scored []domain.ScoredArticle) domain.ConfidenceResult {
	if len(scored) == 0 {
		return result(EmptyCorpusConfidence)
	}

	top := topByRelevance(scored, TopK)
	var (
		sum    float64
		strong int
	)
	for _, sa := range top {
		sum += sa.RelevanceScore
		if sa.RelevanceScore > StrongRelevance {
			strong++
		}
	}
	avg := sum / float64(len(top))
	countFactor := min(float64(strong)/CountSaturation, 1.0)
	return result(Combine(avg, countFactor))
}

// Combine weighs the mean top-K relevance against the strong-article count factor.
// It is non-decreasing in both arguments.
func Combine(avgScore, countFactor float64) float64 {
	return AverageWeight*avgScore + CountWeight*countFactor
}

// VerdictFor maps a confidence value to a verdict; higher confidence never yields a more false verdict.
func VerdictFor(confidence float64) domain.Verdict {
	switch {
	case confidence >= TrueThreshold:
		return domain.VerdictTrue
	case confidence >= LikelyFalseThreshold:
		return domain.VerdictLikelyFalse
	default:
		return domain.VerdictFalse
	}
}

func result(confidence float64) domain.ConfidenceResult {
	return domain.ConfidenceResult{CorpusConfidence: confidence, Verdict: VerdictFor(confidence)}
}

// topByRelevance returns the k highest-scoring articles without reordering the input.
func topByRelevance(scored []domain.ScoredArticle, k int) []domain.ScoredArticle {
	sorted := make([]domain.ScoredArticle, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})
	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}
