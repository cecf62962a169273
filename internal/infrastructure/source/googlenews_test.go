package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/scanner"
)

const googleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>"water on mars" - Google News</title>
    <item>
      <title>NASA rover finds water on Mars - Reuters</title>
      <link>https://news.google.com/articles/abc</link>
      <pubDate>Sun, 09 Mar 2025 08:30:00 GMT</pubDate>
      <description>&lt;a href="https://news.google.com/articles/abc"&gt;NASA rover finds water on Mars&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;Reuters&lt;/font&gt;</description>
      <source url="https://www.reuters.com">Reuters</source>
    </item>
    <item>
      <title>Ice confirmed near equator - Space Daily</title>
      <link>https://news.google.com/articles/def</link>
    </item>
  </channel>
</rss>`

func TestGoogleNewsRelated(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" || q.Get("q") != "water on mars" || q.Get("hl") != "en-US" || q.Get("ceid") != "US:en" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(googleFeed))
	}))
	defer server.Close()

	g := NewGoogleNews(config.RSSConfig{Endpoint: server.URL, Language: "en-US", Region: "US"}, nil)
	articles, err := g.Related(context.Background(), scanner.Request{Query: "water on mars", Max: 10})
	if err != nil {
		t.Fatalf("Related returned error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "NASA rover finds water on Mars" || first.SourceName != "Reuters" {
		t.Fatalf("unexpected first article %+v", first)
	}
	if first.Description != "" {
		t.Fatalf("description repeating the title should be dropped, got %q", first.Description)
	}
	if first.PublishedAt == nil || first.PublishedAt.Day() != 9 {
		t.Fatalf("unexpected published time %v", first.PublishedAt)
	}

	second := articles[1]
	if second.Title != "Ice confirmed near equator" || second.SourceName != "Space Daily" || second.PublishedAt != nil {
		t.Fatalf("unexpected second article %+v", second)
	}
}

func TestGoogleNewsHeadlinesTopic(t *testing.T) {
	t.Parallel()

	var gotPath, gotRegion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRegion = r.URL.Query().Get("gl")
		_, _ = w.Write([]byte(googleFeed))
	}))
	defer server.Close()

	g := NewGoogleNews(config.RSSConfig{Endpoint: server.URL}, nil)
	articles, err := g.Headlines(context.Background(), scanner.Request{Country: "gb", Category: "science", Max: 1})
	if err != nil {
		t.Fatalf("Headlines returned error: %v", err)
	}
	if gotPath != "/headlines/section/topic/SCIENCE" || gotRegion != "GB" {
		t.Fatalf("unexpected request path=%s gl=%s", gotPath, gotRegion)
	}
	if len(articles) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(articles))
	}
}

func TestSplitSourceSuffix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		title, source, wantTitle, wantSource string
	}{
		{"Headline - Reuters", "Reuters", "Headline", "Reuters"},
		{"Headline - Part two - AP News", "", "Headline - Part two", "AP News"},
		{"Plain headline", "", "Plain headline", ""},
	}
	for _, tc := range cases {
		title, source := splitSourceSuffix(tc.title, tc.source)
		if title != tc.wantTitle || source != tc.wantSource {
			t.Fatalf("splitSourceSuffix(%q, %q) = %q, %q", tc.title, tc.source, title, source)
		}
	}
}
