package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NewsCredibility/internal/domain"
)

const namespace = "news_credibility"

// Collectors holds the pipeline metrics. A nil *Collectors is a no-op.
type Collectors struct {
	registry           *prometheus.Registry
	analyses           *prometheus.CounterVec
	articleFetches     *prometheus.CounterVec
	similarityFallback prometheus.Counter
	analysisDuration   prometheus.Histogram
	articlesScored     prometheus.Histogram
}

// New registers the collectors on a fresh registry together with the Go and process collectors.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	c := &Collectors{
		registry: reg,
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by corpus verdict.",
		}, []string{"verdict"}),
		articleFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "article_fetch_total",
			Help:      "Provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		similarityFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "similarity_fallback_total",
			Help:      "Analyses scored with the uniform similarity fallback.",
		}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		articlesScored: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "articles_scored",
			Help:      "Articles surviving the relevance threshold per analysis.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}),
	}
	reg.MustRegister(
		c.analyses,
		c.articleFetches,
		c.similarityFallback,
		c.analysisDuration,
		c.articlesScored,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveAnalysis records a finished analysis.
func (c *Collectors) ObserveAnalysis(a domain.Analysis, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.analyses.WithLabelValues(string(a.Corpus.Verdict)).Inc()
	c.analysisDuration.Observe(elapsed.Seconds())
	c.articlesScored.Observe(float64(len(a.Articles)))
	if a.HasFlag(domain.FlagSimilarityFallback) {
		c.similarityFallback.Inc()
	}
}

// ObserveFetch records one provider call.
func (c *Collectors) ObserveFetch(provider, outcome string) {
	if c == nil {
		return
	}
	c.articleFetches.WithLabelValues(provider, outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
