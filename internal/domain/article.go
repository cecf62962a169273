package domain

import "time"

// Article is a news record returned by a fetch provider. It is read-only to the scoring core.
type Article struct {
	Title       string
	Description string
	Content     string
	SourceName  string
	URL         string
	PublishedAt *time.Time
}

// Text concatenates the fields used for similarity: title, description and content.
func (a Article) Text() string {
	return a.Title + " " + a.Description + " " + a.Content
}

// Headline is the title+description pair used for keyword matching.
func (a Article) Headline() string {
	return a.Title + " " + a.Description
}

// ScoredArticle carries the relevance breakdown computed for a single article.
type ScoredArticle struct {
	Article         Article
	SimilarityScore float64
	KeywordBonus    float64
	SourceBonus     float64
	RecencyBonus    float64
	RelevanceScore  float64
}

// KeywordSet is ordered by extraction rank, not alphabetically.
type KeywordSet []string

// HeadlineBatch is a cached set of top headlines for a country/category pair.
type HeadlineBatch struct {
	Country   string
	Category  string
	Articles  []Article
	FetchedAt time.Time
}
