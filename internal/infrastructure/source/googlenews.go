package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed/rss"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/scanner"
	"NewsCredibility/internal/textproc"
)

// googleTopics maps NewsAPI-style categories onto Google News topic sections.
var googleTopics = map[string]string{
	"business":      "BUSINESS",
	"entertainment": "ENTERTAINMENT",
	"health":        "HEALTH",
	"science":       "SCIENCE",
	"sports":        "SPORTS",
	"technology":    "TECHNOLOGY",
	"world":         "WORLD",
	"nation":        "NATION",
}

// GoogleNews reads the public Google News RSS feeds. It needs no credentials.
type GoogleNews struct {
	endpoint string
	language string
	region   string
	http     *http.Client
	logger   *slog.Logger
}

var _ scanner.Provider = (*GoogleNews)(nil)

// NewGoogleNews builds a provider from configuration.
func NewGoogleNews(cfg config.RSSConfig, logger *slog.Logger) *GoogleNews {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoogleNews{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		language: cfg.Language,
		region:   cfg.Region,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Name implements scanner.Provider.
func (g *GoogleNews) Name() string { return config.ProviderGoogleNews }

// Related runs a Google News search for the query.
func (g *GoogleNews) Related(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, nil
	}
	params := g.locale(g.region)
	params.Set("q", req.Query)
	return g.fetch(ctx, g.endpoint+"/search?"+params.Encode(), req.Limit())
}

// Headlines reads the top stories feed, or a topic section when the category maps to one.
func (g *GoogleNews) Headlines(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	region := g.region
	if req.Country != "" {
		region = strings.ToUpper(req.Country)
	}
	params := g.locale(region)

	feedURL := g.endpoint + "?" + params.Encode()
	if topic, ok := googleTopics[strings.ToLower(req.Category)]; ok {
		feedURL = g.endpoint + "/headlines/section/topic/" + topic + "?" + params.Encode()
	}
	return g.fetch(ctx, feedURL, req.Limit())
}

func (g *GoogleNews) locale(region string) url.Values {
	lang := g.language
	if lang == "" {
		lang = "en-US"
	}
	if region == "" {
		region = "US"
	}
	short, _, _ := strings.Cut(lang, "-")

	params := url.Values{}
	params.Set("hl", lang)
	params.Set("gl", region)
	params.Set("ceid", region+":"+short)
	return params
}

func (g *GoogleNews) fetch(ctx context.Context, feedURL string, limit int) ([]domain.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google news error %s", resp.Status)
	}

	parser := &rss.Parser{}
	feed, err := parser.Parse(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := make([]domain.Article, 0, min(len(feed.Items), limit))
	for _, item := range feed.Items {
		if len(articles) >= limit {
			break
		}
		if article, ok := convertRSSItem(item); ok {
			articles = append(articles, article)
		}
	}
	if g.logger != nil {
		g.logger.Debug("google news feed parsed", "items", len(feed.Items), "kept", len(articles))
	}
	return articles, nil
}

func convertRSSItem(item *rss.Item) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" && link == "" {
		return domain.Article{}, false
	}

	var sourceName string
	if item.Source != nil {
		sourceName = strings.TrimSpace(item.Source.Title)
	}
	title, sourceName = splitSourceSuffix(title, sourceName)

	description := textproc.StripHTML(item.Description)
	if description == title || strings.HasPrefix(description, title+" ") {
		description = ""
	}

	article := domain.Article{
		Title:       title,
		Description: description,
		SourceName:  sourceName,
		URL:         link,
	}
	if item.PubDateParsed != nil && !item.PubDateParsed.IsZero() {
		ts := item.PubDateParsed.UTC()
		article.PublishedAt = &ts
	}
	return article, true
}

// splitSourceSuffix strips the " - Publisher" suffix Google appends to titles.
func splitSourceSuffix(title, source string) (string, string) {
	if source != "" {
		return strings.TrimSpace(strings.TrimSuffix(title, " - "+source)), source
	}
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
