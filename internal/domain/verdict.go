package domain

import "time"

// Verdict is the categorical result of thresholding corpus confidence.
type Verdict string

const (
	VerdictTrue        Verdict = "True"
	VerdictLikelyFalse Verdict = "Likely False"
	VerdictFalse       Verdict = "False"
)

// ConfidenceResult is derived purely from the scored article set.
type ConfidenceResult struct {
	CorpusConfidence float64
	Verdict          Verdict
}

// ClassifierLabel enumerates labels produced by the text classifier.
type ClassifierLabel string

const (
	LabelReal      ClassifierLabel = "real"
	LabelFake      ClassifierLabel = "fake"
	LabelUncertain ClassifierLabel = "uncertain"
	LabelUnknown   ClassifierLabel = "unknown"
)

// ClassifierResult is the label/confidence tuple from the classifier collaborator.
type ClassifierResult struct {
	Label      ClassifierLabel
	Confidence float64
}

// ThirdPartyVerdict enumerates verdicts from the external AI verifier.
type ThirdPartyVerdict string

const (
	ThirdPartyTrue         ThirdPartyVerdict = "True"
	ThirdPartyFake         ThirdPartyVerdict = "Fake"
	ThirdPartyUncertain    ThirdPartyVerdict = "Uncertain"
	ThirdPartyError        ThirdPartyVerdict = "Error"
	ThirdPartyNotAvailable ThirdPartyVerdict = "Not Available"
)

// ThirdPartyResult is the verifier's verdict with its free-text explanation.
type ThirdPartyResult struct {
	Verdict     ThirdPartyVerdict
	Explanation string
}

// Degradation flags attached to an Analysis.
const (
	FlagSimilarityFallback    = "similarity_fallback"
	FlagFetchUnavailable      = "fetch_unavailable"
	FlagNoRelevantArticles    = "no_relevant_articles"
	FlagClassifierUnavailable = "classifier_unavailable"
	FlagVerdictUnavailable    = "verdict_unavailable"
	FlagReportUnavailable     = "report_unavailable"
	FlagPersistFailed         = "persist_failed"
)

// Analysis is the unified result of one analysis request. The classifier,
// corpus and third-party signals are reported side by side and never blended.
type Analysis struct {
	ID                  string
	InputText           string
	Keywords            KeywordSet
	Query               string
	Classifier          ClassifierResult
	Corpus              ConfidenceResult
	AggregateConfidence float64
	ThirdParty          ThirdPartyResult
	ArticlesFetched     int
	Articles            []ScoredArticle
	TrustedSourceCount  int
	Flags               []string
	CreatedAt           time.Time
}

// HasFlag reports whether the analysis was marked with the given degradation flag.
func (a Analysis) HasFlag(flag string) bool {
	for _, f := range a.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AnalysisRecord is the flat row handed to the persistence collaborator.
type AnalysisRecord struct {
	ID                    string
	InputText             string
	ClassifierLabel       ClassifierLabel
	ClassifierConfidence  float64
	CorpusConfidence      float64
	FinalVerdict          Verdict
	ThirdPartyVerdict     ThirdPartyVerdict
	ArticlesAnalyzedCount int
	TrustedSourceCount    int
	CreatedAt             time.Time
}

// Record flattens an analysis for storage.
func (a Analysis) Record() AnalysisRecord {
	return AnalysisRecord{
		ID:                    a.ID,
		InputText:             a.InputText,
		ClassifierLabel:       a.Classifier.Label,
		ClassifierConfidence:  a.Classifier.Confidence,
		CorpusConfidence:      a.Corpus.CorpusConfidence,
		FinalVerdict:          a.Corpus.Verdict,
		ThirdPartyVerdict:     a.ThirdParty.Verdict,
		ArticlesAnalyzedCount: a.ArticlesFetched,
		TrustedSourceCount:    a.TrustedSourceCount,
		CreatedAt:             a.CreatedAt,
	}
}
