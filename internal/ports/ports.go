package ports

import (
	"context"
	"time"

	"NewsCredibility/internal/domain"
)

// ArticleFetcher pulls candidate articles from upstream news providers.
// Implementations must return an empty slice instead of transport errors.
type ArticleFetcher interface {
	FetchRelated(ctx context.Context, query string, maxResults int) []domain.Article
	FetchHeadlines(ctx context.Context, country, category string, maxResults int) []domain.Article
}

// Classifier labels text with a pretrained model.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.ClassifierResult, error)
}

// VerdictProvider asks a third-party AI service whether the text is credible.
type VerdictProvider interface {
	Verify(ctx context.Context, text string) domain.ThirdPartyResult
}

// ReportRequest carries the pipeline results a deep-research report is built from.
type ReportRequest struct {
	InputText   string
	Classifier  domain.ClassifierResult
	Corpus      domain.ConfidenceResult
	TopArticles []domain.ScoredArticle
}

// ReportGenerator produces a long-form credibility report.
type ReportGenerator interface {
	GenerateReport(ctx context.Context, req ReportRequest) (string, error)
}

// AnalysisRepository persists analysis records. The core never reads them back.
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, record domain.AnalysisRecord) error
}

// Notifier streams verdict summaries to Telegram or other channels.
type Notifier interface {
	PublishAnalysis(ctx context.Context, analysis domain.Analysis) error
}

// HeadlineCache keeps the latest headline batches between scheduler runs.
type HeadlineCache interface {
	StoreHeadlines(ctx context.Context, batch domain.HeadlineBatch) error
	LoadHeadlines(ctx context.Context, country, category string) (domain.HeadlineBatch, bool, error)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
