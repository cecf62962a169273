package usecase

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

const (
	MaxHeadlines       = 100
	DefaultHeadlineTTL = 30 * time.Minute
	DefaultCountry     = "us"
)

// HeadlineTarget names one country/category pair kept warm in the cache.
type HeadlineTarget struct {
	Country  string
	Category string
}

// HeadlineDeps wires the headline service.
type HeadlineDeps struct {
	Fetcher ports.ArticleFetcher
	Cache   ports.HeadlineCache
	Logger  *slog.Logger
	MaxAge  time.Duration
	Now     func() time.Time
}

// Headlines serves top headlines from the cache when fresh, otherwise live.
type Headlines struct {
	fetcher ports.ArticleFetcher
	cache   ports.HeadlineCache
	logger  *slog.Logger
	maxAge  time.Duration
	now     func() time.Time
}

// NewHeadlines constructs the headline service.
func NewHeadlines(deps HeadlineDeps) *Headlines {
	h := &Headlines{
		fetcher: deps.Fetcher,
		cache:   deps.Cache,
		logger:  deps.Logger,
		maxAge:  deps.MaxAge,
		now:     deps.Now,
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if h.maxAge <= 0 {
		h.maxAge = DefaultHeadlineTTL
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Get returns up to limit headlines for the target.
func (h *Headlines) Get(ctx context.Context, target HeadlineTarget, limit int) (domain.HeadlineBatch, error) {
	target = normalizeTarget(target)
	limit = clampHeadlines(limit)

	if h.cache != nil {
		batch, ok, err := h.cache.LoadHeadlines(ctx, target.Country, target.Category)
		switch {
		case err != nil:
			h.logger.Warn("headline cache read failed", "country", target.Country, "category", target.Category, "error", err)
		case ok && h.now().Sub(batch.FetchedAt) < h.maxAge:
			if len(batch.Articles) > limit {
				batch.Articles = batch.Articles[:limit]
			}
			return batch, nil
		}
	}

	batch, err := h.Refresh(ctx, target)
	if err != nil {
		return domain.HeadlineBatch{}, err
	}
	if len(batch.Articles) > limit {
		batch.Articles = batch.Articles[:limit]
	}
	return batch, nil
}

// Refresh fetches headlines live and stores them in the cache.
func (h *Headlines) Refresh(ctx context.Context, target HeadlineTarget) (domain.HeadlineBatch, error) {
	target = normalizeTarget(target)
	batch := domain.HeadlineBatch{
		Country:   target.Country,
		Category:  target.Category,
		FetchedAt: h.now(),
	}
	if h.fetcher == nil {
		return batch, nil
	}

	batch.Articles = h.fetcher.FetchHeadlines(ctx, target.Country, target.Category, MaxHeadlines)
	if h.cache != nil && len(batch.Articles) > 0 {
		if err := h.cache.StoreHeadlines(ctx, batch); err != nil {
			h.logger.Warn("headline cache write failed", "country", target.Country, "category", target.Category, "error", err)
		}
	}
	h.logger.Debug("headlines refreshed", "country", target.Country, "category", target.Category, "count", len(batch.Articles))
	return batch, nil
}

func normalizeTarget(t HeadlineTarget) HeadlineTarget {
	t.Country = strings.ToLower(strings.TrimSpace(t.Country))
	if t.Country == "" {
		t.Country = DefaultCountry
	}
	t.Category = strings.ToLower(strings.TrimSpace(t.Category))
	return t
}

func clampHeadlines(limit int) int {
	if limit <= 0 || limit > MaxHeadlines {
		return MaxHeadlines
	}
	return limit
}
