package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"NewsCredibility/internal/confidence"
	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
	"NewsCredibility/internal/relevance"
	"NewsCredibility/internal/textproc"
)

// ErrEmptyInput is returned when the input has no analysable text.
var ErrEmptyInput = errors.New("input text is empty")

const (
	DefaultMaxArticles     = 100
	DefaultFetchTimeout    = 15 * time.Second
	DefaultClassifyTimeout = 15 * time.Second
	DefaultVerifyTimeout   = 60 * time.Second
	reportTopArticles      = 5
)

// ReportNotAvailable is returned as the report body when no report could be produced.
const ReportNotAvailable = "report not available"

// Recorder observes finished analyses, e.g. for metrics.
type Recorder interface {
	ObserveAnalysis(analysis domain.Analysis, elapsed time.Duration)
}

// PipelineDeps wires the collaborators into the analysis pipeline.
// Every collaborator is optional; missing ones degrade the result.
type PipelineDeps struct {
	Fetcher    ports.ArticleFetcher
	Classifier ports.Classifier
	Verifier   ports.VerdictProvider
	Reporter   ports.ReportGenerator
	Repository ports.AnalysisRepository
	Notifier   ports.Notifier
	Scorer     *relevance.Scorer
	Recorder   Recorder
	Logger     *slog.Logger

	MaxArticles     int
	FetchTimeout    time.Duration
	ClassifyTimeout time.Duration
	VerifyTimeout   time.Duration

	Now   func() time.Time
	NewID func() string
}

// Pipeline sequences normalization, keyword extraction, article fetch,
// relevance scoring and confidence fusion for one request at a time.
// It keeps no per-request state between calls.
type Pipeline struct {
	fetcher    ports.ArticleFetcher
	classifier ports.Classifier
	verifier   ports.VerdictProvider
	reporter   ports.ReportGenerator
	repository ports.AnalysisRepository
	notifier   ports.Notifier
	scorer     *relevance.Scorer
	recorder   Recorder
	logger     *slog.Logger

	maxArticles     int
	fetchTimeout    time.Duration
	classifyTimeout time.Duration
	verifyTimeout   time.Duration

	now   func() time.Time
	newID func() string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		fetcher:         deps.Fetcher,
		classifier:      deps.Classifier,
		verifier:        deps.Verifier,
		reporter:        deps.Reporter,
		repository:      deps.Repository,
		notifier:        deps.Notifier,
		scorer:          deps.Scorer,
		recorder:        deps.Recorder,
		logger:          deps.Logger,
		maxArticles:     deps.MaxArticles,
		fetchTimeout:    deps.FetchTimeout,
		classifyTimeout: deps.ClassifyTimeout,
		verifyTimeout:   deps.VerifyTimeout,
		now:             deps.Now,
		newID:           deps.NewID,
	}
	if p.scorer == nil {
		p.scorer = relevance.NewScorer(relevance.WithLogger(deps.Logger))
	}
	if p.maxArticles <= 0 {
		p.maxArticles = DefaultMaxArticles
	}
	if p.fetchTimeout <= 0 {
		p.fetchTimeout = DefaultFetchTimeout
	}
	if p.classifyTimeout <= 0 {
		p.classifyTimeout = DefaultClassifyTimeout
	}
	if p.verifyTimeout <= 0 {
		p.verifyTimeout = DefaultVerifyTimeout
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = func() string { return uuid.NewString() }
	}
	return p
}

// AnalyzeRequest is the input of one analysis. Classifier and ThirdParty may
// carry results computed by the caller; otherwise the configured collaborators are asked.
type AnalyzeRequest struct {
	Text       string
	Classifier *domain.ClassifierResult
	ThirdParty *domain.ThirdPartyResult
}

// Analyze runs the full pipeline, persists the record and notifies subscribers.
// Only ErrEmptyInput is returned as an error; collaborator failures degrade the result.
func (p *Pipeline) Analyze(ctx context.Context, req AnalyzeRequest) (domain.Analysis, error) {
	started := time.Now()

	analysis, err := p.evaluate(ctx, req)
	if err != nil {
		return domain.Analysis{}, err
	}

	if p.repository != nil {
		if err := p.repository.SaveAnalysis(ctx, analysis.Record()); err != nil {
			p.warn("persist analysis failed", "id", analysis.ID, "error", err)
			analysis.Flags = append(analysis.Flags, domain.FlagPersistFailed)
		}
	}

	if p.notifier != nil {
		if err := p.notifier.PublishAnalysis(ctx, analysis); err != nil {
			p.warn("publish analysis failed", "id", analysis.ID, "error", err)
		}
	}

	if p.recorder != nil {
		p.recorder.ObserveAnalysis(analysis, time.Since(started))
	}

	p.info("analysis finished",
		"id", analysis.ID,
		"verdict", analysis.Corpus.Verdict,
		"corpus_confidence", analysis.Corpus.CorpusConfidence,
		"articles", len(analysis.Articles),
		"flags", strings.Join(analysis.Flags, ","))
	return analysis, nil
}

// Report runs the pipeline without persisting and asks the report generator
// for a long-form credibility report built on the results.
func (p *Pipeline) Report(ctx context.Context, req AnalyzeRequest) (domain.Analysis, string, error) {
	analysis, err := p.evaluate(ctx, req)
	if err != nil {
		return domain.Analysis{}, "", err
	}

	if p.reporter == nil {
		analysis.Flags = append(analysis.Flags, domain.FlagReportUnavailable)
		return analysis, ReportNotAvailable, nil
	}

	top := analysis.Articles
	if len(top) > reportTopArticles {
		top = top[:reportTopArticles]
	}

	rctx, cancel := context.WithTimeout(ctx, p.verifyTimeout)
	defer cancel()
	report, err := p.reporter.GenerateReport(rctx, ports.ReportRequest{
		InputText:   analysis.InputText,
		Classifier:  analysis.Classifier,
		Corpus:      analysis.Corpus,
		TopArticles: top,
	})
	if err != nil {
		p.warn("report generation failed", "id", analysis.ID, "error", err)
		analysis.Flags = append(analysis.Flags, domain.FlagReportUnavailable)
		return analysis, ReportNotAvailable, nil
	}
	return analysis, report, nil
}

func (p *Pipeline) evaluate(ctx context.Context, req AnalyzeRequest) (domain.Analysis, error) {
	text := strings.TrimSpace(strings.ToValidUTF8(req.Text, ""))
	if text == "" {
		return domain.Analysis{}, ErrEmptyInput
	}

	analysis := domain.Analysis{
		ID:        p.newID(),
		InputText: text,
		CreatedAt: p.now(),
	}

	basic := textproc.Normalize(text, textproc.LevelBasic)
	analysis.Keywords = textproc.ExtractPhrases(basic, textproc.DefaultMaxKeywords)
	analysis.Query = textproc.BuildSearchQuery(analysis.Keywords, text)

	articles := p.fetchRelated(ctx, analysis.Query)
	analysis.ArticlesFetched = len(articles)
	if p.fetcher == nil {
		analysis.Flags = append(analysis.Flags, domain.FlagFetchUnavailable)
	}

	ranked := p.scorer.Rank(text, analysis.Keywords, articles)
	if ranked.SimilarityFallback {
		analysis.Flags = append(analysis.Flags, domain.FlagSimilarityFallback)
	}
	analysis.Articles = ranked.Articles
	if len(ranked.Articles) == 0 {
		analysis.Flags = append(analysis.Flags, domain.FlagNoRelevantArticles)
	}
	for _, sa := range ranked.Articles {
		if sa.SourceBonus == relevance.TrustedSourceBonus {
			analysis.TrustedSourceCount++
		}
	}

	analysis.Corpus = confidence.Fuse(ranked.Articles)
	analysis.AggregateConfidence = confidence.AggregateConfidence(ranked.Articles, text)

	analysis.Classifier = p.classify(ctx, req, &analysis)
	analysis.ThirdParty = p.verify(ctx, req, &analysis)

	return analysis, nil
}

func (p *Pipeline) fetchRelated(ctx context.Context, query string) []domain.Article {
	if p.fetcher == nil || query == "" {
		return nil
	}
	fctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	articles := p.fetcher.FetchRelated(fctx, query, p.maxArticles)
	p.debug("related articles fetched", "query", query, "count", len(articles))
	return articles
}

func (p *Pipeline) classify(ctx context.Context, req AnalyzeRequest, analysis *domain.Analysis) domain.ClassifierResult {
	if req.Classifier != nil {
		return sanitizeClassifier(*req.Classifier)
	}
	unknown := domain.ClassifierResult{Label: domain.LabelUnknown}
	if p.classifier == nil {
		analysis.Flags = append(analysis.Flags, domain.FlagClassifierUnavailable)
		return unknown
	}

	cctx, cancel := context.WithTimeout(ctx, p.classifyTimeout)
	defer cancel()
	res, err := p.classifier.Classify(cctx, analysis.InputText)
	if err != nil {
		p.warn("classifier unavailable", "error", err)
		analysis.Flags = append(analysis.Flags, domain.FlagClassifierUnavailable)
		return unknown
	}
	return sanitizeClassifier(res)
}

func (p *Pipeline) verify(ctx context.Context, req AnalyzeRequest, analysis *domain.Analysis) domain.ThirdPartyResult {
	res := domain.ThirdPartyResult{
		Verdict:     domain.ThirdPartyNotAvailable,
		Explanation: "third-party verification not configured",
	}
	switch {
	case req.ThirdParty != nil:
		res = sanitizeThirdParty(*req.ThirdParty)
	case p.verifier != nil:
		vctx, cancel := context.WithTimeout(ctx, p.verifyTimeout)
		res = p.verifier.Verify(vctx, analysis.InputText)
		cancel()
	}

	if res.Verdict == domain.ThirdPartyNotAvailable || res.Verdict == domain.ThirdPartyError || res.Verdict == "" {
		if res.Verdict == "" {
			res.Verdict = domain.ThirdPartyNotAvailable
		}
		analysis.Flags = append(analysis.Flags, domain.FlagVerdictUnavailable)
	}
	return res
}

func sanitizeThirdParty(res domain.ThirdPartyResult) domain.ThirdPartyResult {
	switch res.Verdict {
	case domain.ThirdPartyTrue, domain.ThirdPartyFake, domain.ThirdPartyUncertain,
		domain.ThirdPartyError, domain.ThirdPartyNotAvailable:
		return res
	}
	return domain.ThirdPartyResult{Verdict: domain.ThirdPartyNotAvailable, Explanation: res.Explanation}
}

func sanitizeClassifier(res domain.ClassifierResult) domain.ClassifierResult {
	switch res.Label {
	case domain.LabelReal, domain.LabelFake, domain.LabelUncertain:
	default:
		return domain.ClassifierResult{Label: domain.LabelUnknown}
	}
	res.Confidence = min(max(res.Confidence, 0), 1)
	return res
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

// Summary renders a one-line summary of an analysis for notifications and CLI output.
func Summary(a domain.Analysis) string {
	return fmt.Sprintf("verdict=%s corpus=%.2f aggregate=%.2f classifier=%s(%.2f) third_party=%s articles=%d/%d trusted=%d",
		a.Corpus.Verdict, a.Corpus.CorpusConfidence, a.AggregateConfidence,
		a.Classifier.Label, a.Classifier.Confidence, a.ThirdParty.Verdict,
		len(a.Articles), a.ArticlesFetched, a.TrustedSourceCount)
}
