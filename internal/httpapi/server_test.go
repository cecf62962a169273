package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/relevance"
	"NewsCredibility/internal/usecase"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type stubFetcher struct{}

func (stubFetcher) FetchRelated(context.Context, string, int) []domain.Article {
	published := testNow.Add(-2 * time.Hour)
	return []domain.Article{{
		Title:       "NASA rover finds water on Mars",
		Description: "Scientists confirm water ice",
		SourceName:  "Reuters",
		URL:         "https://example.com/mars",
		PublishedAt: &published,
	}}
}

func (stubFetcher) FetchHeadlines(context.Context, string, string, int) []domain.Article {
	return []domain.Article{{Title: "Top story", SourceName: "BBC News", URL: "https://example.com/top"}}
}

type stubHistory struct {
	records []domain.AnalysisRecord
	err     error
	limit   int
}

func (s *stubHistory) RecentAnalyses(_ context.Context, limit int) ([]domain.AnalysisRecord, error) {
	s.limit = limit
	return s.records, s.err
}

func newTestServer(history AnalysisHistory) *Server {
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher: stubFetcher{},
		Scorer:  relevance.NewScorer(relevance.WithClock(func() time.Time { return testNow })),
		Now:     func() time.Time { return testNow },
		NewID:   func() string { return "id-1" },
	})
	headlines := usecase.NewHeadlines(usecase.HeadlineDeps{Fetcher: stubFetcher{}, Now: func() time.Time { return testNow }})
	return New(Deps{
		Pipeline:  pipeline,
		Headlines: headlines,
		History:   history,
		Metrics:   http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
	})
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(nil), http.MethodPost, "/api/analyze",
		`{"text":"NASA rover finds water on Mars","classifier":{"label":"real","confidence":0.9}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got analysisJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "id-1" || len(got.Articles) != 1 || got.TrustedSourceCount != 1 {
		t.Fatalf("unexpected analysis %+v", got)
	}
	if got.Classifier.Label != "real" || got.ThirdParty.Verdict != "Not Available" {
		t.Fatalf("unexpected collaborator fields %+v %+v", got.Classifier, got.ThirdParty)
	}
	if got.Articles[0].Source != "Reuters" || got.Articles[0].RelevanceScore <= 0.1 {
		t.Fatalf("unexpected article %+v", got.Articles[0])
	}
	if got.Verdict == "" || got.CorpusConfidence <= 0 {
		t.Fatalf("missing corpus result %+v", got)
	}
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	t.Parallel()

	s := newTestServer(nil)
	cases := []string{`{"text":"   "}`, `{"text":`}
	for _, body := range cases {
		rec := do(t, s, http.MethodPost, "/api/analyze", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Fatalf("expected JSON error body, got %s", rec.Body.String())
		}
	}
}

func TestReportEndpointWithoutGenerator(t *testing.T) {
	t.Parallel()

	rec := do(t, newTestServer(nil), http.MethodPost, "/api/report", `{"text":"NASA rover finds water on Mars"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got reportJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Report != usecase.ReportNotAvailable {
		t.Fatalf("report = %q", got.Report)
	}
}

func TestHeadlinesEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(nil)
	rec := do(t, s, http.MethodGet, "/api/headlines?country=GB&category=science&limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var got headlinesJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Country != "gb" || got.Category != "science" || len(got.Articles) != 1 {
		t.Fatalf("unexpected headlines %+v", got)
	}

	if rec := do(t, s, http.MethodGet, "/api/headlines?limit=abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid limit status = %d", rec.Code)
	}
}

func TestAnalysesEndpoint(t *testing.T) {
	t.Parallel()

	history := &stubHistory{records: []domain.AnalysisRecord{{ID: "a-1", FinalVerdict: domain.VerdictTrue, CreatedAt: testNow}}}
	rec := do(t, newTestServer(history), http.MethodGet, "/api/analyses?limit=500", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if history.limit != 100 {
		t.Fatalf("limit should be capped at 100, got %d", history.limit)
	}
	if !strings.Contains(rec.Body.String(), `"final_verdict":"True"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	failing := &stubHistory{err: errors.New("db down")}
	if rec := do(t, newTestServer(failing), http.MethodGet, "/api/analyses", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if rec := do(t, newTestServer(nil), http.MethodGet, "/api/analyses", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	s := newTestServer(nil)
	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec := do(t, s, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "# metrics") {
		t.Fatalf("metrics = %d %q", rec.Code, rec.Body.String())
	}
}

func TestEncodeAnalysis(t *testing.T) {
	t.Parallel()

	a := domain.Analysis{ID: "abc", Corpus: domain.ConfidenceResult{Verdict: domain.VerdictFalse}}

	var plain strings.Builder
	if err := EncodeAnalysis(&plain, a, ""); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(plain.String()), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["id"] != "abc" {
		t.Fatalf("unexpected id: %v", body["id"])
	}

	var wrapped strings.Builder
	if err := EncodeAnalysis(&wrapped, a, "long report"); err != nil {
		t.Fatalf("encode report: %v", err)
	}
	var withReport struct {
		Analysis map[string]any `json:"analysis"`
		Report   string         `json:"report"`
	}
	if err := json.Unmarshal([]byte(wrapped.String()), &withReport); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if withReport.Report != "long report" || withReport.Analysis["id"] != "abc" {
		t.Fatalf("unexpected report body: %+v", withReport)
	}
}
