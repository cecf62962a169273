package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

const (
	defaultCacheTTL = 30 * time.Minute
	cacheKeyPrefix  = "newscred:"
)

// SearchCache stores raw fetched article lists per query. It never holds scoring state.
type SearchCache interface {
	StoreSearch(ctx context.Context, query string, max int, articles []domain.Article) error
	LoadSearch(ctx context.Context, query string, max int) ([]domain.Article, bool, error)
}

// RedisCache keeps headline batches and search results in Redis.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var (
	_ ports.HeadlineCache = (*RedisCache)(nil)
	_ SearchCache         = (*RedisCache)(nil)
)

// NewRedisCache wraps a redis client.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

type cachedArticle struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	SourceName  string     `json:"source,omitempty"`
	URL         string     `json:"url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type cachedBatch struct {
	Country   string          `json:"country"`
	Category  string          `json:"category"`
	FetchedAt time.Time       `json:"fetched_at"`
	Articles  []cachedArticle `json:"articles"`
}

// StoreHeadlines implements ports.HeadlineCache.
func (c *RedisCache) StoreHeadlines(ctx context.Context, batch domain.HeadlineBatch) error {
	data, err := json.Marshal(cachedBatch{
		Country:   batch.Country,
		Category:  batch.Category,
		FetchedAt: batch.FetchedAt,
		Articles:  toCached(batch.Articles),
	})
	if err != nil {
		return fmt.Errorf("marshal headlines: %w", err)
	}
	if err := c.client.Set(ctx, headlineKey(batch.Country, batch.Category), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("store headlines: %w", err)
	}
	return nil
}

// LoadHeadlines implements ports.HeadlineCache.
func (c *RedisCache) LoadHeadlines(ctx context.Context, country, category string) (domain.HeadlineBatch, bool, error) {
	data, err := c.client.Get(ctx, headlineKey(country, category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.HeadlineBatch{}, false, nil
	}
	if err != nil {
		return domain.HeadlineBatch{}, false, fmt.Errorf("load headlines: %w", err)
	}

	var cb cachedBatch
	if err := json.Unmarshal(data, &cb); err != nil {
		return domain.HeadlineBatch{}, false, fmt.Errorf("decode headlines: %w", err)
	}
	return domain.HeadlineBatch{
		Country:   cb.Country,
		Category:  cb.Category,
		FetchedAt: cb.FetchedAt,
		Articles:  fromCached(cb.Articles),
	}, true, nil
}

// StoreSearch implements SearchCache.
func (c *RedisCache) StoreSearch(ctx context.Context, query string, max int, articles []domain.Article) error {
	data, err := json.Marshal(toCached(articles))
	if err != nil {
		return fmt.Errorf("marshal search: %w", err)
	}
	if err := c.client.Set(ctx, searchKey(query, max), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("store search: %w", err)
	}
	return nil
}

// LoadSearch implements SearchCache.
func (c *RedisCache) LoadSearch(ctx context.Context, query string, max int) ([]domain.Article, bool, error) {
	data, err := c.client.Get(ctx, searchKey(query, max)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load search: %w", err)
	}

	var cached []cachedArticle
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("decode search: %w", err)
	}
	return fromCached(cached), true, nil
}

func headlineKey(country, category string) string {
	if category == "" {
		category = "all"
	}
	return cacheKeyPrefix + "headlines:" + strings.ToLower(country) + ":" + strings.ToLower(category)
}

func searchKey(query string, max int) string {
	return cacheKeyPrefix + "search:" + strconv.Itoa(max) + ":" + strings.ToLower(strings.TrimSpace(query))
}

func toCached(articles []domain.Article) []cachedArticle {
	out := make([]cachedArticle, len(articles))
	for i, a := range articles {
		out[i] = cachedArticle(a)
	}
	return out
}

func fromCached(cached []cachedArticle) []domain.Article {
	out := make([]domain.Article, len(cached))
	for i, a := range cached {
		out[i] = domain.Article(a)
	}
	return out
}

// CachedFetcher serves repeated related-article searches from a SearchCache.
// Headlines pass straight through; the headline service caches those.
type CachedFetcher struct {
	next   ports.ArticleFetcher
	cache  SearchCache
	logger *slog.Logger
}

var _ ports.ArticleFetcher = (*CachedFetcher)(nil)

// NewCachedFetcher decorates next with cache.
func NewCachedFetcher(next ports.ArticleFetcher, cache SearchCache, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache, logger: logger}
}

// FetchRelated implements ports.ArticleFetcher.
func (c *CachedFetcher) FetchRelated(ctx context.Context, query string, max int) []domain.Article {
	if articles, ok, err := c.cache.LoadSearch(ctx, query, max); err != nil {
		c.warn("search cache read failed", "error", err)
	} else if ok {
		return articles
	}

	articles := c.next.FetchRelated(ctx, query, max)
	if len(articles) > 0 {
		if err := c.cache.StoreSearch(ctx, query, max, articles); err != nil {
			c.warn("search cache write failed", "error", err)
		}
	}
	return articles
}

// FetchHeadlines implements ports.ArticleFetcher.
func (c *CachedFetcher) FetchHeadlines(ctx context.Context, country, category string, max int) []domain.Article {
	return c.next.FetchHeadlines(ctx, country, category, max)
}

func (c *CachedFetcher) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
