package textproc

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

const (
	DefaultMaxKeywords  = 10
	DefaultMinLength    = 3
	MaxPhraseWords      = 3
	phraseMinWordLength = 4
	queryTerms          = 5
)

// ExtractKeywords returns up to maxKeywords distinct lowercase words ranked by
// descending frequency, ties broken by first occurrence.
func ExtractKeywords(text string, maxKeywords, minLength int) []string {
	if maxKeywords <= 0 {
		return nil
	}
	var words []string
	for _, token := range wordTokens(strings.ToLower(text)) {
		if len([]rune(token)) < minLength || !isAlpha(token) || IsStopWord(token) {
			continue
		}
		words = append(words, token)
	}
	return topByFrequency(words, maxKeywords)
}

// ExtractPhrases builds search keywords: short runs of adjacent content words
// (two to three words) followed by frequency-ranked single words, deduplicated
// and capped at maxKeywords.
func ExtractPhrases(text string, maxKeywords int) []string {
	if maxKeywords <= 0 {
		return nil
	}
	lower := strings.ToLower(text)

	var phrases []string
	for _, sentence := range SplitSentences(lower) {
		for _, clause := range strings.FieldsFunc(sentence, isClauseBreak) {
			var run []string
			emit := func() {
				for len(run) >= 2 {
					n := min(len(run), MaxPhraseWords)
					phrases = append(phrases, strings.Join(run[:n], " "))
					run = run[n:]
				}
				run = run[:0]
			}
			for _, token := range wordTokens(clause) {
				if !isAlpha(token) || len([]rune(token)) < DefaultMinLength || IsStopWord(token) {
					emit()
					continue
				}
				run = append(run, token)
			}
			emit()
		}
	}

	out := make([]string, 0, maxKeywords)
	seen := map[string]struct{}{}
	add := func(term string) {
		if len(out) >= maxKeywords {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	for _, phrase := range topByFrequency(phrases, maxKeywords) {
		add(phrase)
	}
	for _, word := range ExtractKeywords(lower, maxKeywords, DefaultMinLength) {
		if len([]rune(word)) >= phraseMinWordLength {
			add(word)
		}
	}
	return out
}

// BuildSearchQuery OR-joins the top keywords, quoting multi-word phrases.
// Without keywords it falls back to the first words of the raw text.
func BuildSearchQuery(keywords []string, rawText string) string {
	if len(keywords) == 0 {
		words := strings.Fields(rawText)
		if len(words) > queryTerms {
			words = words[:queryTerms]
		}
		return strings.Join(words, " ")
	}

	terms := keywords
	if len(terms) > queryTerms {
		terms = terms[:queryTerms]
	}
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		if strings.Contains(term, " ") {
			term = fmt.Sprintf(`"%s"`, term)
		}
		quoted = append(quoted, term)
	}
	return strings.Join(quoted, " OR ")
}

func topByFrequency(items []string, limit int) []string {
	counts := map[string]int{}
	var order []string
	for _, item := range items {
		if counts[item] == 0 {
			order = append(order, item)
		}
		counts[item]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func wordTokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-')
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'-"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func isClauseBreak(r rune) bool {
	return strings.ContainsRune(",;:()\"", r)
}

func isAlpha(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
