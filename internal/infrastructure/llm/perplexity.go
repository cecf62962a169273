package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

const (
	maxPromptInput    = 1000
	maxReportTitle    = 100
	maxCitations      = 5
	maxReportArticles = 5
	verifyMaxTokens   = 200
	reportMaxTokens   = 4000
	promptTemperature = 0.1
)

var defaultVerifyDomains = []string{"reuters.com", "bbc.com", "apnews.com", "cnn.com", "nytimes.com"}

var defaultReportDomains = []string{
	"reuters.com", "bbc.com", "apnews.com", "cnn.com", "nytimes.com",
	"washingtonpost.com", "theguardian.com", "npr.org", "pbs.org",
	"factcheck.org", "snopes.com", "politifact.com",
}

const systemPrompt = "You are an expert fact-checker and misinformation analyst. Provide accurate, well-sourced analysis based on current information from reliable sources."

// PerplexityClient implements the verdict provider and the report generator
// against an OpenAI-compatible chat completions API with web search.
type PerplexityClient struct {
	endpoint      string
	apiKey        string
	model         string
	reportModel   string
	verifyDomains []string
	httpClient    *http.Client
}

var (
	_ ports.VerdictProvider = (*PerplexityClient)(nil)
	_ ports.ReportGenerator = (*PerplexityClient)(nil)
)

// NewPerplexityClient builds a client from configuration.
func NewPerplexityClient(cfg config.VerifierConfig) *PerplexityClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	domains := cfg.DomainFilter
	if len(domains) == 0 {
		domains = defaultVerifyDomains
	}
	return &PerplexityClient{
		endpoint:      cfg.Endpoint,
		apiKey:        cfg.APIKey,
		model:         cfg.Model,
		reportModel:   cfg.ReportModel,
		verifyDomains: domains,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// Verify asks the verifier whether the text is true or fake. Failures are
// reported as Error or Not Available verdicts, never as Go errors.
func (c *PerplexityClient) Verify(ctx context.Context, text string) domain.ThirdPartyResult {
	if c == nil || c.apiKey == "" || c.endpoint == "" {
		return domain.ThirdPartyResult{
			Verdict:     domain.ThirdPartyNotAvailable,
			Explanation: "verifier API key not configured",
		}
	}
	if strings.TrimSpace(text) == "" {
		return domain.ThirdPartyResult{Verdict: domain.ThirdPartyError, Explanation: "invalid input text"}
	}

	prompt := fmt.Sprintf(`Analyze the following news content for factual accuracy and credibility.
Search the web for current information and cross-check it against reliable sources.
Judge factual accuracy, source credibility, current events and logical consistency.

News content: "%s"

Respond with only "TRUE" or "FAKE" followed by a brief 2-3 sentence explanation with citations.`, truncate(text, maxPromptInput))

	answer, err := c.complete(ctx, completionRequest{
		Model:           c.model,
		Prompt:          prompt,
		MaxTokens:       verifyMaxTokens,
		DomainFilter:    c.verifyDomains,
		RecencyFilter:   "month",
		ReturnCitations: true,
	})
	if err != nil {
		return domain.ThirdPartyResult{Verdict: domain.ThirdPartyError, Explanation: "verifier error: " + err.Error()}
	}

	return domain.ThirdPartyResult{Verdict: parseVerdict(answer), Explanation: answer}
}

// GenerateReport produces a long-form credibility report for the analysis.
func (c *PerplexityClient) GenerateReport(ctx context.Context, req ports.ReportRequest) (string, error) {
	if c == nil || c.apiKey == "" || c.endpoint == "" {
		return "", fmt.Errorf("verifier API key not configured")
	}
	if strings.TrimSpace(req.InputText) == "" {
		return "", fmt.Errorf("invalid input text")
	}

	return c.complete(ctx, completionRequest{
		Model:           c.reportModel,
		Prompt:          reportPrompt(req),
		MaxTokens:       reportMaxTokens,
		DomainFilter:    defaultReportDomains,
		RecencyFilter:   "week",
		ReturnCitations: true,
	})
}

func parseVerdict(answer string) domain.ThirdPartyVerdict {
	upper := strings.ToUpper(answer)
	switch {
	case strings.Contains(upper, "TRUE"):
		return domain.ThirdPartyTrue
	case strings.Contains(upper, "FAKE"):
		return domain.ThirdPartyFake
	default:
		return domain.ThirdPartyUncertain
	}
}

func reportPrompt(req ports.ReportRequest) string {
	var articles strings.Builder
	if len(req.TopArticles) == 0 {
		articles.WriteString("No related articles found in initial analysis")
	}
	for i, sa := range req.TopArticles {
		if i == maxReportArticles {
			break
		}
		source := sa.Article.SourceName
		if source == "" {
			source = "Unknown"
		}
		fmt.Fprintf(&articles, "- %s: %s... (Relevance: %.2f)\n", source, truncate(sa.Article.Title, maxReportTitle), sa.RelevanceScore)
	}

	return fmt.Sprintf(`Conduct a comprehensive fact-checking and credibility analysis of the following news content.
Use web search to gather current, authoritative information from multiple reliable sources.

NEWS CONTENT:
"%s"

INITIAL ANALYSIS:
- Classifier prediction: %s (confidence %.2f)
- News corpus confidence: %.2f
- System verdict: %s

RELATED ARTICLES:
%s

Cover factual verification of each claim, credibility of the sources involved,
dates and context, corroboration across independent sources, and common
misinformation patterns. Finish with an overall credibility rating on a 1-10 scale
and recommendations for readers. Cite your sources.`,
		truncate(req.InputText, maxPromptInput),
		req.Classifier.Label, req.Classifier.Confidence,
		req.Corpus.CorpusConfidence, req.Corpus.Verdict,
		strings.TrimRight(articles.String(), "\n"))
}

type completionRequest struct {
	Model           string
	Prompt          string
	MaxTokens       int
	DomainFilter    []string
	RecencyFilter   string
	ReturnCitations bool
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations []json.RawMessage `json:"citations"`
}

func (c *PerplexityClient) complete(ctx context.Context, in completionRequest) (string, error) {
	payload := map[string]any{
		"model": in.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": in.Prompt},
		},
		"max_tokens":               in.MaxTokens,
		"temperature":              promptTemperature,
		"return_citations":         in.ReturnCitations,
		"return_related_questions": false,
	}
	if len(in.DomainFilter) > 0 {
		payload["search_domain_filter"] = in.DomainFilter
	}
	if in.RecencyFilter != "" {
		payload["search_recency_filter"] = in.RecencyFilter
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("completion error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no response generated")
	}

	content := out.Choices[0].Message.Content
	if sources := formatCitations(out.Citations); sources != "" {
		content += "\n\nSources:\n" + sources
	}
	return content, nil
}

// formatCitations accepts both plain URL strings and {title, url} objects.
func formatCitations(raw []json.RawMessage) string {
	var b strings.Builder
	n := 0
	for _, item := range raw {
		if n == maxCitations {
			break
		}
		var title, link string
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			link = s
		} else {
			var obj struct {
				Title string `json:"title"`
				URL   string `json:"url"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				continue
			}
			title, link = obj.Title, obj.URL
		}
		if link == "" && title == "" {
			continue
		}
		if title == "" {
			title = "Source"
		}
		n++
		fmt.Fprintf(&b, "%d. %s - %s\n", n, title, link)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
