package confidence

import "NewsCredibility/internal/domain"

// AggregateConfidence parameters (broad corroboration).
const (
	AggregateRelevanceFloor       = 0.3
	AggregateEmptyConfidence      = 0.0
	AggregateNoRelevantConfidence = 0.2
	SourceDiversitySaturation     = 5.0

	ArticleCountWeight    = 0.3
	MeanRelevanceWeight   = 0.4
	SourceDiversityWeight = 0.2
	MeanRecencyWeight     = 0.1
)

// AggregateConfidence scores how broadly the corpus corroborates the input:
// article count, mean relevance, source diversity and mean recency over the
// articles above AggregateRelevanceFloor.
func AggregateConfidence(scored []domain.ScoredArticle, _ string) float64 {
	if len(scored) == 0 {
		return AggregateEmptyConfidence
	}

	var (
		relevant  int
		relevance float64
		recency   float64
		sources   = map[string]struct{}{}
	)
	for _, sa := range scored {
		if sa.RelevanceScore <= AggregateRelevanceFloor {
			continue
		}
		relevant++
		relevance += sa.RelevanceScore
		recency += sa.RecencyBonus
		if sa.Article.SourceName != "" {
			sources[sa.Article.SourceName] = struct{}{}
		}
	}
	if relevant == 0 {
		return AggregateNoRelevantConfidence
	}

	n := float64(relevant)
	confidence := ArticleCountWeight*min(n/CountSaturation, 1.0) +
		MeanRelevanceWeight*(relevance/n) +
		SourceDiversityWeight*min(float64(len(sources))/SourceDiversitySaturation, 1.0) +
		MeanRecencyWeight*(recency/n)
	return min(confidence, 1.0)
}
