package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

func newTestClient(endpoint string) *PerplexityClient {
	return NewPerplexityClient(config.VerifierConfig{
		Endpoint:    endpoint,
		APIKey:      "pplx",
		Model:       "sonar-pro",
		ReportModel: "sonar-deep-research",
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer pplx" {
			t.Errorf("missing authorization header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{
		  "choices": [{"message": {"content": "FAKE. No agency reported this."}}],
		  "citations": ["https://reuters.com/a", {"title": "AP check", "url": "https://apnews.com/b"}]
		}`))
	}))
	defer server.Close()

	long := strings.Repeat("x", 1500)
	res := newTestClient(server.URL).Verify(context.Background(), long)
	if res.Verdict != domain.ThirdPartyFake {
		t.Fatalf("verdict = %q, want Fake", res.Verdict)
	}
	if !strings.Contains(res.Explanation, "Sources:\n1. Source - https://reuters.com/a\n2. AP check - https://apnews.com/b") {
		t.Fatalf("unexpected explanation %q", res.Explanation)
	}

	if captured["model"] != "sonar-pro" || captured["search_recency_filter"] != "month" {
		t.Fatalf("unexpected payload %v", captured)
	}
	messages := captured["messages"].([]any)
	user := messages[1].(map[string]any)["content"].(string)
	if strings.Contains(user, strings.Repeat("x", 1001)) || !strings.Contains(user, strings.Repeat("x", 1000)) {
		t.Fatalf("input should be truncated to 1000 characters")
	}
}

func TestVerifyDegrades(t *testing.T) {
	t.Parallel()

	res := NewPerplexityClient(config.VerifierConfig{Endpoint: "http://unused"}).Verify(context.Background(), "claim")
	if res.Verdict != domain.ThirdPartyNotAvailable {
		t.Fatalf("missing key verdict = %q", res.Verdict)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	res = newTestClient(server.URL).Verify(context.Background(), "claim")
	if res.Verdict != domain.ThirdPartyError || !strings.Contains(res.Explanation, "429") {
		t.Fatalf("unexpected error result %+v", res)
	}
}

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.ThirdPartyVerdict{
		"TRUE - confirmed by Reuters":   domain.ThirdPartyTrue,
		"This claim is fake.":           domain.ThirdPartyFake,
		"Partially true but misleading": domain.ThirdPartyTrue,
		"Cannot determine.":             domain.ThirdPartyUncertain,
	}
	for answer, want := range cases {
		if got := parseVerdict(answer); got != want {
			t.Fatalf("parseVerdict(%q) = %q, want %q", answer, got, want)
		}
	}
}

func TestGenerateReport(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "Credibility rating: 8/10"}}]}`))
	}))
	defer server.Close()

	articles := make([]domain.ScoredArticle, 7)
	for i := range articles {
		articles[i] = domain.ScoredArticle{
			Article:        domain.Article{Title: strings.Repeat("t", 150), SourceName: "Reuters"},
			RelevanceScore: 0.75,
		}
	}
	report, err := newTestClient(server.URL).GenerateReport(context.Background(), ports.ReportRequest{
		InputText:   "NASA rover finds water on Mars",
		Classifier:  domain.ClassifierResult{Label: domain.LabelReal, Confidence: 0.91},
		Corpus:      domain.ConfidenceResult{CorpusConfidence: 0.82, Verdict: domain.VerdictTrue},
		TopArticles: articles,
	})
	if err != nil {
		t.Fatalf("GenerateReport returned error: %v", err)
	}
	if report != "Credibility rating: 8/10" {
		t.Fatalf("unexpected report %q", report)
	}

	if captured["model"] != "sonar-deep-research" {
		t.Fatalf("unexpected model %v", captured["model"])
	}
	user := captured["messages"].([]any)[1].(map[string]any)["content"].(string)
	if got := strings.Count(user, "- Reuters: "); got != 5 {
		t.Fatalf("expected 5 article lines, got %d", got)
	}
	if strings.Contains(user, strings.Repeat("t", 101)) {
		t.Fatalf("article titles should be truncated to 100 characters")
	}
	if !strings.Contains(user, "Classifier prediction: real (confidence 0.91)") || !strings.Contains(user, "System verdict: True") {
		t.Fatalf("prompt is missing analysis context:\n%s", user)
	}
}

func TestGenerateReportRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewPerplexityClient(config.VerifierConfig{}).GenerateReport(context.Background(), ports.ReportRequest{InputText: "x"}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
