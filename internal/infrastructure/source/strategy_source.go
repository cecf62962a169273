package source

import (
	"context"
	"log/slog"
	"strings"

	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
	"NewsCredibility/internal/scanner"
)

// Fetch outcomes reported to the FetchObserver.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// FetchObserver is notified of every provider call.
type FetchObserver interface {
	ObserveFetch(provider, outcome string)
}

// StrategySource implements ArticleFetcher over an ordered list of registered
// providers. The first provider returning articles wins; failures never escape.
type StrategySource struct {
	registry  *scanner.Registry
	providers []string
	observer  FetchObserver
	logger    *slog.Logger
}

var _ ports.ArticleFetcher = (*StrategySource)(nil)

// NewStrategySource wires the provider registry with the configured provider order.
func NewStrategySource(reg *scanner.Registry, providers []string, observer FetchObserver, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry:  reg,
		providers: providers,
		observer:  observer,
		logger:    log,
	}
}

// FetchRelated returns up to max articles related to query, or an empty slice.
func (s *StrategySource) FetchRelated(ctx context.Context, query string, max int) []domain.Article {
	req := scanner.Request{Query: query, Max: max}
	return s.run(ctx, "related", req, scanner.Provider.Related)
}

// FetchHeadlines returns up to max top headlines, or an empty slice.
func (s *StrategySource) FetchHeadlines(ctx context.Context, country, category string, max int) []domain.Article {
	req := scanner.Request{Country: country, Category: category, Max: max}
	return s.run(ctx, "headlines", req, scanner.Provider.Headlines)
}

type providerCall func(scanner.Provider, context.Context, scanner.Request) ([]domain.Article, error)

func (s *StrategySource) run(ctx context.Context, kind string, req scanner.Request, call providerCall) []domain.Article {
	if s.registry == nil {
		s.warn("provider registry is not configured")
		return []domain.Article{}
	}

	for _, name := range s.providers {
		if ctx.Err() != nil {
			break
		}
		provider, err := s.registry.Resolve(name)
		if err != nil {
			s.warn("skip provider", "provider", name, "error", err)
			continue
		}

		articles, err := call(provider, ctx, req)
		if err != nil {
			s.observe(name, OutcomeError)
			s.warn("provider failed", "provider", name, "kind", kind, "error", err)
			continue
		}

		articles = dedupe(articles, req.Limit())
		if len(articles) == 0 {
			s.observe(name, OutcomeEmpty)
			s.debug("provider returned nothing", "provider", name, "kind", kind)
			continue
		}

		s.observe(name, OutcomeOK)
		s.debug("provider produced articles", "provider", name, "kind", kind, "count", len(articles))
		return articles
	}
	return []domain.Article{}
}

// dedupe drops repeated URLs (or titles when the URL is missing) keeping the first occurrence.
func dedupe(articles []domain.Article, limit int) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, min(len(articles), limit))
	for _, a := range articles {
		if len(out) >= limit {
			break
		}
		key := strings.TrimSpace(a.URL)
		if key == "" {
			key = "title:" + strings.ToLower(strings.TrimSpace(a.Title))
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

func (s *StrategySource) observe(provider, outcome string) {
	if s.observer != nil {
		s.observer.ObserveFetch(provider, outcome)
	}
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
