package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/scanner"
	"NewsCredibility/internal/textproc"
)

// ErrMissingAPIKey is returned by providers that cannot run without credentials.
var ErrMissingAPIKey = errors.New("api key is not configured")

const removedMarker = "[Removed]"

var truncatedContentExpr = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

// NewsAPI queries newsapi.org for related articles and top headlines.
type NewsAPI struct {
	endpoint     string
	apiKey       string
	pageSize     int
	lookbackDays int
	excluded     []string
	http         *http.Client
	limiter      *rate.Limiter
	now          func() time.Time
	logger       *slog.Logger
}

var _ scanner.Provider = (*NewsAPI)(nil)

// NewNewsAPI builds a provider from configuration.
func NewNewsAPI(cfg config.NewsConfig, logger *slog.Logger) *NewsAPI {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := max(cfg.RateBurst, 1)

	return &NewsAPI{
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:       cfg.APIKey,
		pageSize:     cfg.PageSize,
		lookbackDays: cfg.LookbackDays,
		excluded:     cfg.ExcludedDomains,
		http:         &http.Client{Timeout: timeout},
		limiter:      rate.NewLimiter(limit, burst),
		now:          time.Now,
		logger:       logger,
	}
}

// Name implements scanner.Provider.
func (n *NewsAPI) Name() string { return config.ProviderNewsAPI }

// Related searches the everything endpoint over the lookback window, sorted by relevancy.
func (n *NewsAPI) Related(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", req.Query)
	params.Set("pageSize", strconv.Itoa(n.limit(req)))
	params.Set("sortBy", "relevancy")
	params.Set("language", "en")
	if n.lookbackDays > 0 {
		params.Set("from", n.now().AddDate(0, 0, -n.lookbackDays).Format("2006-01-02"))
	}
	if len(n.excluded) > 0 {
		params.Set("excludeDomains", strings.Join(n.excluded, ","))
	}

	return n.get(ctx, "/everything", params)
}

// Headlines fetches top headlines for a country and optional category.
func (n *NewsAPI) Headlines(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	params := url.Values{}
	country := req.Country
	if country == "" {
		country = "us"
	}
	params.Set("country", country)
	if req.Category != "" {
		params.Set("category", req.Category)
	}
	params.Set("pageSize", strconv.Itoa(n.limit(req)))

	return n.get(ctx, "/top-headlines", params)
}

func (n *NewsAPI) limit(req scanner.Request) int {
	limit := req.Limit()
	if n.pageSize > 0 && n.pageSize < limit {
		limit = n.pageSize
	}
	return limit
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

func (n *NewsAPI) get(ctx context.Context, path string, params url.Values) ([]domain.Article, error) {
	if n.apiKey == "" {
		return nil, fmt.Errorf("newsapi: %w", ErrMissingAPIKey)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("newsapi rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-Api-Key", n.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var payload newsAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("newsapi error %s", resp.Status)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi error %s: %s %s", resp.Status, payload.Code, payload.Message)
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		if article, ok := convertNewsAPIArticle(raw); ok {
			articles = append(articles, article)
		}
	}
	if n.logger != nil {
		n.logger.Debug("newsapi response", "path", path, "received", len(payload.Articles), "kept", len(articles))
	}
	return articles, nil
}

func convertNewsAPIArticle(raw newsAPIArticle) (domain.Article, bool) {
	title := strings.TrimSpace(raw.Title)
	if title == removedMarker || (title == "" && strings.TrimSpace(raw.URL) == "") {
		return domain.Article{}, false
	}

	article := domain.Article{
		Title:       title,
		Description: textproc.StripHTML(raw.Description),
		Content:     textproc.StripHTML(truncatedContentExpr.ReplaceAllString(raw.Content, "")),
		SourceName:  strings.TrimSpace(raw.Source.Name),
		URL:         strings.TrimSpace(raw.URL),
	}
	if ts, err := time.Parse(time.RFC3339, raw.PublishedAt); err == nil && !ts.IsZero() {
		ts = ts.UTC()
		article.PublishedAt = &ts
	}
	return article, true
}
