package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/usecase"
)

const maxBodyBytes = "1M"

// AnalysisHistory lists stored analysis records.
type AnalysisHistory interface {
	RecentAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error)
}

// Deps wires the HTTP API to the use cases.
type Deps struct {
	Pipeline  *usecase.Pipeline
	Headlines *usecase.Headlines
	History   AnalysisHistory
	Metrics   http.Handler
	Logger    *slog.Logger
}

// Server exposes the analysis pipeline over JSON.
type Server struct {
	echo      *echo.Echo
	pipeline  *usecase.Pipeline
	headlines *usecase.Headlines
	history   AnalysisHistory
	logger    *slog.Logger
}

// New builds the echo router.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodyBytes))

	s := &Server{
		echo:      e,
		pipeline:  deps.Pipeline,
		headlines: deps.Headlines,
		history:   deps.History,
		logger:    logger,
	}
	e.HTTPErrorHandler = s.handleError

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics))
	}

	api := e.Group("/api")
	api.POST("/analyze", s.analyze)
	api.POST("/report", s.report)
	api.GET("/headlines", s.listHeadlines)
	api.GET("/analyses", s.listAnalyses)

	return s
}

// Handler returns the router for embedding or tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http api listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	case errors.Is(err, usecase.ErrEmptyInput):
		code = http.StatusBadRequest
	}

	req := c.Request()
	s.logger.Warn("request failed", "status", code, "method", req.Method, "path", req.URL.Path, "error", err)
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}

func (s *Server) analyze(c echo.Context) error {
	req, err := bindAnalyze(c)
	if err != nil {
		return err
	}
	if s.pipeline == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "analysis pipeline is not configured")
	}

	analysis, err := s.pipeline.Analyze(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAnalysisJSON(analysis))
}

func (s *Server) report(c echo.Context) error {
	req, err := bindAnalyze(c)
	if err != nil {
		return err
	}
	if s.pipeline == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "analysis pipeline is not configured")
	}

	analysis, report, err := s.pipeline.Report(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reportJSON{Analysis: toAnalysisJSON(analysis), Report: report})
}

func (s *Server) listHeadlines(c echo.Context) error {
	if s.headlines == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "headlines are not configured")
	}
	limit, err := queryInt(c, "limit", usecase.MaxHeadlines)
	if err != nil {
		return err
	}

	batch, err := s.headlines.Get(c.Request().Context(), usecase.HeadlineTarget{
		Country:  c.QueryParam("country"),
		Category: c.QueryParam("category"),
	}, limit)
	if err != nil {
		return err
	}

	out := headlinesJSON{
		Country:   batch.Country,
		Category:  batch.Category,
		FetchedAt: batch.FetchedAt,
		Articles:  make([]articleJSON, 0, len(batch.Articles)),
	}
	for _, a := range batch.Articles {
		out.Articles = append(out.Articles, toArticleJSON(a))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) listAnalyses(c echo.Context) error {
	if s.history == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "analysis history is not configured")
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return err
	}

	records, err := s.history.RecentAnalyses(c.Request().Context(), min(limit, 100))
	if err != nil {
		return fmt.Errorf("list analyses: %w", err)
	}

	out := make([]recordJSON, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordJSON(r))
	}
	return c.JSON(http.StatusOK, map[string]any{"analyses": out})
}

func bindAnalyze(c echo.Context) (usecase.AnalyzeRequest, error) {
	var body analyzeRequestJSON
	if err := c.Bind(&body); err != nil {
		return usecase.AnalyzeRequest{}, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return body.toRequest(), nil
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return v, nil
}

type analyzeRequestJSON struct {
	Text       string          `json:"text"`
	Classifier *classifierJSON `json:"classifier,omitempty"`
	ThirdParty *thirdPartyJSON `json:"third_party,omitempty"`
}

func (r analyzeRequestJSON) toRequest() usecase.AnalyzeRequest {
	req := usecase.AnalyzeRequest{Text: r.Text}
	if r.Classifier != nil {
		req.Classifier = &domain.ClassifierResult{
			Label:      domain.ClassifierLabel(r.Classifier.Label),
			Confidence: r.Classifier.Confidence,
		}
	}
	if r.ThirdParty != nil {
		req.ThirdParty = &domain.ThirdPartyResult{
			Verdict:     domain.ThirdPartyVerdict(r.ThirdParty.Verdict),
			Explanation: r.ThirdParty.Explanation,
		}
	}
	return req
}

type classifierJSON struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type thirdPartyJSON struct {
	Verdict     string `json:"verdict"`
	Explanation string `json:"explanation"`
}

type articleJSON struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source,omitempty"`
	URL         string     `json:"url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type scoredArticleJSON struct {
	articleJSON
	SimilarityScore float64 `json:"similarity_score"`
	KeywordBonus    float64 `json:"keyword_bonus"`
	SourceBonus     float64 `json:"source_bonus"`
	RecencyBonus    float64 `json:"recency_bonus"`
	RelevanceScore  float64 `json:"relevance_score"`
}

type analysisJSON struct {
	ID                  string              `json:"id"`
	InputText           string              `json:"input_text"`
	Keywords            []string            `json:"keywords"`
	Query               string              `json:"query"`
	Classifier          classifierJSON      `json:"classifier"`
	CorpusConfidence    float64             `json:"corpus_confidence"`
	Verdict             string              `json:"verdict"`
	AggregateConfidence float64             `json:"aggregate_confidence"`
	ThirdParty          thirdPartyJSON      `json:"third_party"`
	ArticlesFetched     int                 `json:"articles_fetched"`
	TrustedSourceCount  int                 `json:"trusted_source_count"`
	Articles            []scoredArticleJSON `json:"articles"`
	Flags               []string            `json:"flags"`
	CreatedAt           time.Time           `json:"created_at"`
}

type reportJSON struct {
	Analysis analysisJSON `json:"analysis"`
	Report   string       `json:"report"`
}

type headlinesJSON struct {
	Country   string        `json:"country"`
	Category  string        `json:"category,omitempty"`
	FetchedAt time.Time     `json:"fetched_at"`
	Articles  []articleJSON `json:"articles"`
}

type recordJSON struct {
	ID                    string    `json:"id"`
	InputText             string    `json:"input_text"`
	ClassifierLabel       string    `json:"classifier_label"`
	ClassifierConfidence  float64   `json:"classifier_confidence"`
	CorpusConfidence      float64   `json:"corpus_confidence"`
	FinalVerdict          string    `json:"final_verdict"`
	ThirdPartyVerdict     string    `json:"third_party_verdict"`
	ArticlesAnalyzedCount int       `json:"articles_analyzed_count"`
	TrustedSourceCount    int       `json:"trusted_source_count"`
	CreatedAt             time.Time `json:"created_at"`
}

// EncodeAnalysis writes the same JSON body the API returns for an analysis,
// wrapped with the report text when one is given.
func EncodeAnalysis(w io.Writer, a domain.Analysis, report string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if report != "" {
		return enc.Encode(reportJSON{Analysis: toAnalysisJSON(a), Report: report})
	}
	return enc.Encode(toAnalysisJSON(a))
}

func toArticleJSON(a domain.Article) articleJSON {
	return articleJSON{
		Title:       a.Title,
		Description: a.Description,
		Source:      a.SourceName,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
	}
}

func toAnalysisJSON(a domain.Analysis) analysisJSON {
	out := analysisJSON{
		ID:                  a.ID,
		InputText:           a.InputText,
		Keywords:            append([]string{}, a.Keywords...),
		Query:               a.Query,
		Classifier:          classifierJSON{Label: string(a.Classifier.Label), Confidence: a.Classifier.Confidence},
		CorpusConfidence:    a.Corpus.CorpusConfidence,
		Verdict:             string(a.Corpus.Verdict),
		AggregateConfidence: a.AggregateConfidence,
		ThirdParty:          thirdPartyJSON{Verdict: string(a.ThirdParty.Verdict), Explanation: a.ThirdParty.Explanation},
		ArticlesFetched:     a.ArticlesFetched,
		TrustedSourceCount:  a.TrustedSourceCount,
		Articles:            make([]scoredArticleJSON, 0, len(a.Articles)),
		Flags:               append([]string{}, a.Flags...),
		CreatedAt:           a.CreatedAt,
	}
	for _, sa := range a.Articles {
		out.Articles = append(out.Articles, scoredArticleJSON{
			articleJSON:     toArticleJSON(sa.Article),
			SimilarityScore: sa.SimilarityScore,
			KeywordBonus:    sa.KeywordBonus,
			SourceBonus:     sa.SourceBonus,
			RecencyBonus:    sa.RecencyBonus,
			RelevanceScore:  sa.RelevanceScore,
		})
	}
	return out
}

func toRecordJSON(r domain.AnalysisRecord) recordJSON {
	return recordJSON{
		ID:                    r.ID,
		InputText:             r.InputText,
		ClassifierLabel:       string(r.ClassifierLabel),
		ClassifierConfidence:  r.ClassifierConfidence,
		CorpusConfidence:      r.CorpusConfidence,
		FinalVerdict:          string(r.FinalVerdict),
		ThirdPartyVerdict:     string(r.ThirdPartyVerdict),
		ArticlesAnalyzedCount: r.ArticlesAnalyzedCount,
		TrustedSourceCount:    r.TrustedSourceCount,
		CreatedAt:             r.CreatedAt,
	}
}
