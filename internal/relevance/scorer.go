package relevance

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"NewsCredibility/internal/domain"
)

// Relevance weights.
const (
	SimilarityWeight = 0.6
	KeywordWeight    = 0.2
	SourceWeight     = 0.1
	RecencyWeight    = 0.1
)

// NoiseThreshold drops articles whose relevance does not exceed it.
const NoiseThreshold = 0.1

// FallbackSimilarity is assigned to every article when the vector space cannot be built.
const FallbackSimilarity = 0.5

// Source bonuses.
const (
	TrustedSourceBonus = 1.0
	DefaultSourceBonus = 0.5
)

// Recency buckets, by age in whole days.
const (
	RecencyDayBonus     = 1.0
	RecencyWeekBonus    = 0.8
	RecencyMonthBonus   = 0.6
	RecencyStaleBonus   = 0.3
	RecencyUnknownBonus = 0.5

	recencyDayLimit   = 1
	recencyWeekLimit  = 7
	recencyMonthLimit = 30
)

// DefaultTrustedSources is the allowlist matched (case-insensitive substring) against source names.
var DefaultTrustedSources = []string{
	"reuters", "bbc", "associated press", "cnn", "npr", "the guardian",
	"the new york times", "the washington post", "abc news", "cbs news",
	"nbc news", "fox news", "usa today", "wall street journal",
}

// Result is the outcome of one scoring pass.
type Result struct {
	Articles           []domain.ScoredArticle
	SimilarityFallback bool
	Dropped            int
}

// Scorer ranks candidate articles against input text. It holds only
// configuration; every call builds its own vector space.
type Scorer struct {
	trusted []string
	now     func() time.Time
	logger  *slog.Logger
}

// Option customises a Scorer.
type Option func(*Scorer)

// WithTrustedSources replaces the trusted-source allowlist.
func WithTrustedSources(sources []string) Option {
	return func(s *Scorer) {
		if len(sources) == 0 {
			return
		}
		s.trusted = normalizeSources(sources)
	}
}

// WithClock sets the reference time for recency.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger for degradation events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) { s.logger = logger }
}

// NewScorer builds a scorer with the default allowlist and wall clock.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		trusted: normalizeSources(DefaultTrustedSources),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the articles that pass the noise threshold, sorted by
// descending relevance with fetch order kept on ties.
func (s *Scorer) Score(inputText string, keywords []string, articles []domain.Article) []domain.ScoredArticle {
	return s.Rank(inputText, keywords, articles).Articles
}

// Rank scores articles and reports whether the similarity fallback was used.
func (s *Scorer) Rank(inputText string, keywords []string, articles []domain.Article) Result {
	if len(articles) == 0 {
		return Result{Articles: []domain.ScoredArticle{}}
	}

	texts := make([]string, len(articles))
	for i, a := range articles {
		texts[i] = a.Text()
	}

	var res Result
	similarities, err := Similarities(inputText, texts)
	if err != nil {
		res.SimilarityFallback = true
		if s.logger != nil {
			s.logger.Warn("similarity degraded to uniform fallback", "error", err, "articles", len(articles))
		}
		similarities = make([]float64, len(articles))
		for i := range similarities {
			similarities[i] = FallbackSimilarity
		}
	}

	now := s.now()
	scored := make([]domain.ScoredArticle, 0, len(articles))
	for i, article := range articles {
		sa := domain.ScoredArticle{
			Article:         article,
			SimilarityScore: clamp01(similarities[i]),
			KeywordBonus:    KeywordBonus(article, keywords),
			SourceBonus:     s.SourceBonus(article.SourceName),
			RecencyBonus:    RecencyBonus(article.PublishedAt, now),
		}
		sa.RelevanceScore = clamp01(SimilarityWeight*sa.SimilarityScore +
			KeywordWeight*sa.KeywordBonus +
			SourceWeight*sa.SourceBonus +
			RecencyWeight*sa.RecencyBonus)

		if sa.RelevanceScore <= NoiseThreshold {
			res.Dropped++
			continue
		}
		scored = append(scored, sa)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	res.Articles = scored

	if s.logger != nil {
		s.logger.Debug("articles scored", "input", len(articles), "kept", len(scored), "dropped", res.Dropped)
	}
	return res
}

// KeywordBonus is the fraction of keywords found in the article's title and description.
func KeywordBonus(article domain.Article, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(article.Headline())
	matches := 0
	for _, kw := range keywords {
		if kw = strings.ToLower(kw); kw != "" && strings.Contains(haystack, kw) {
			matches++
		}
	}
	return math.Min(float64(matches)/float64(len(keywords)), 1)
}

// SourceBonus rewards sources on the trusted allowlist.
func (s *Scorer) SourceBonus(sourceName string) float64 {
	name := strings.ToLower(sourceName)
	if name == "" {
		return DefaultSourceBonus
	}
	for _, trusted := range s.trusted {
		if strings.Contains(name, trusted) {
			return TrustedSourceBonus
		}
	}
	return DefaultSourceBonus
}

// RecencyBonus buckets the article age relative to now. A missing date is unknown, not stale.
func RecencyBonus(publishedAt *time.Time, now time.Time) float64 {
	if publishedAt == nil || publishedAt.IsZero() {
		return RecencyUnknownBonus
	}
	days := int(math.Floor(now.Sub(*publishedAt).Hours() / 24))
	switch {
	case days <= recencyDayLimit:
		return RecencyDayBonus
	case days <= recencyWeekLimit:
		return RecencyWeekBonus
	case days <= recencyMonthLimit:
		return RecencyMonthBonus
	default:
		return RecencyStaleBonus
	}
}

func normalizeSources(sources []string) []string {
	out := make([]string, 0, len(sources))
	for _, src := range sources {
		if src = strings.ToLower(strings.TrimSpace(src)); src != "" {
			out = append(out, src)
		}
	}
	return out
}
