package relevance

import (
	"errors"
	"math"
	"sort"
	"strings"

	"NewsCredibility/internal/textproc"
)

// MaxVocabulary caps the number of terms kept across a scoring batch.
const MaxVocabulary = 1000

// ErrEmptyVocabulary is returned when no document contributes a usable term.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stop-words")

// vectorSpace is a TF-IDF model fitted on a single batch. It is never shared
// between requests because its vocabulary depends on the batch.
type vectorSpace struct {
	index map[string]int
	idf   []float64
}

func fitVectorSpace(docs [][]string, maxTerms int) (*vectorSpace, error) {
	totals := map[string]int{}
	docFreq := map[string]int{}
	for _, doc := range docs {
		seen := map[string]struct{}{}
		for _, term := range doc {
			totals[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}
	if len(totals) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] != totals[terms[j]] {
			return totals[terms[i]] > totals[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if maxTerms > 0 && len(terms) > maxTerms {
		terms = terms[:maxTerms]
	}

	n := float64(len(docs))
	vs := &vectorSpace{index: make(map[string]int, len(terms)), idf: make([]float64, len(terms))}
	for i, term := range terms {
		vs.index[term] = i
		vs.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return vs, nil
}

// vector returns the L2-normalised TF-IDF weights of doc as a sparse map.
func (vs *vectorSpace) vector(doc []string) map[int]float64 {
	vec := map[int]float64{}
	for _, term := range doc {
		if i, ok := vs.index[term]; ok {
			vec[i]++
		}
	}
	var norm float64
	for i, tf := range vec {
		w := tf * vs.idf[i]
		vec[i] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func cosine(a, b map[int]float64) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var dot float64
	for i, w := range a {
		dot += w * b[i]
	}
	return clamp01(dot)
}

// Similarities returns the cosine similarity of query against every document,
// computed in a TF-IDF space fitted on query and documents together.
func Similarities(query string, documents []string) ([]float64, error) {
	docs := make([][]string, 0, len(documents)+1)
	docs = append(docs, terms(query))
	for _, d := range documents {
		docs = append(docs, terms(d))
	}

	vs, err := fitVectorSpace(docs, MaxVocabulary)
	if err != nil {
		return nil, err
	}

	q := vs.vector(docs[0])
	out := make([]float64, len(documents))
	for i := range documents {
		out[i] = cosine(q, vs.vector(docs[i+1]))
	}
	return out, nil
}

// terms tokenizes simplified text into tokens of two or more characters
// that are not English stop-words.
func terms(text string) []string {
	fields := strings.Fields(textproc.Simplify(text))
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 || textproc.IsEnglishStopWord(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
