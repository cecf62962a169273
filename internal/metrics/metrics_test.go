package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NewsCredibility/internal/domain"
)

func TestCollectorsExposeMetrics(t *testing.T) {
	t.Parallel()

	c := New()
	c.ObserveAnalysis(domain.Analysis{
		Corpus: domain.ConfidenceResult{Verdict: domain.VerdictLikelyFalse},
		Flags:  []string{domain.FlagSimilarityFallback},
	}, 1500*time.Millisecond)
	c.ObserveFetch("newsapi", "error")
	c.ObserveFetch("googlenews", "ok")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`news_credibility_analyses_total{verdict="Likely False"} 1`,
		`news_credibility_article_fetch_total{outcome="error",provider="newsapi"} 1`,
		`news_credibility_article_fetch_total{outcome="ok",provider="googlenews"} 1`,
		`news_credibility_similarity_fallback_total 1`,
		`news_credibility_analysis_duration_seconds_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilCollectorsAreNoop(t *testing.T) {
	t.Parallel()

	var c *Collectors
	c.ObserveAnalysis(domain.Analysis{}, time.Second)
	c.ObserveFetch("newsapi", "ok")
	if c.Handler() == nil {
		t.Fatalf("nil collectors should still expose a handler")
	}
}
