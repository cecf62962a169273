package textproc

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Level selects how aggressively Normalize cleans text.
type Level int

const (
	LevelBasic Level = iota
	LevelModerate
	LevelAdvanced
)

func (l Level) String() string {
	switch l {
	case LevelModerate:
		return "moderate"
	case LevelAdvanced:
		return "advanced"
	default:
		return "basic"
	}
}

// ParseLevel maps a level name to its Level.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "basic":
		return LevelBasic, nil
	case "moderate":
		return LevelModerate, nil
	case "advanced":
		return LevelAdvanced, nil
	default:
		return LevelBasic, fmt.Errorf("unknown normalization level %q", value)
	}
}

var (
	urlExpr         = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailExpr       = regexp.MustCompile(`\S+@\S+`)
	handleExpr      = regexp.MustCompile(`[@#]\w+`)
	disallowedExpr  = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:'"()\-]`)
	repeatedEndExpr = regexp.MustCompile(`([.!?]){2,}`)
	simplifyExpr    = regexp.MustCompile(`[^a-z0-9\s]`)

	quoteReplacer = strings.NewReplacer(
		"‘", "'", "’", "'", "‚", "'", "‛", "'",
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
		"–", "-", "—", "-", "‒", "-", "―", "-",
	)
)

// Normalize cleans raw input into a canonical form. It never fails:
// empty or invalid input yields an empty string.
func Normalize(text string, level Level) string {
	text = strings.ToValidUTF8(text, "")
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = basicClean(text)
	if level >= LevelModerate {
		text = moderateClean(text)
	}
	if level >= LevelAdvanced {
		text = advancedClean(text)
	}
	return strings.TrimSpace(text)
}

func basicClean(text string) string {
	text = norm.NFKD.String(text)
	text = strings.ToLower(text)
	text = collapseSpaces(text)

	// Stripping one pattern can expose another (www#tag.example -> www.example),
	// so repeat until nothing changes.
	for {
		next := urlExpr.ReplaceAllString(text, " ")
		next = emailExpr.ReplaceAllString(next, " ")
		next = handleExpr.ReplaceAllString(next, "")
		next = collapseSpaces(next)
		if next == text {
			return next
		}
		text = next
	}
}

func moderateClean(text string) string {
	text = stripTags(text)
	text = quoteReplacer.Replace(text)
	text = disallowedExpr.ReplaceAllString(text, "")
	text = repeatedEndExpr.ReplaceAllString(text, "$1")
	return collapseSpaces(text)
}

func advancedClean(text string) string {
	sentences := SplitSentences(text)
	kept := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		sentence = strings.TrimRight(sentence, ".!? ")
		var words []string
		for _, token := range tokenize(sentence) {
			if !hasWordRune(token) {
				continue
			}
			if len([]rune(token)) <= 2 || !IsStopWord(strings.ToLower(token)) {
				words = append(words, token)
			}
		}
		if len(words) > 0 {
			kept = append(kept, strings.Join(words, " "))
		}
	}
	return strings.Join(kept, ". ")
}

// stripTags removes markup and decodes entities. Plain text passes through.
func stripTags(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return doc.Text()
}

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
func StripHTML(fragment string) string {
	return collapseSpaces(stripTags(fragment))
}

// SplitSentences splits text after terminal punctuation followed by whitespace.
func SplitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if strings.ContainsRune(".!?", runes[i]) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// tokenize splits a sentence into word tokens and single punctuation tokens.
func tokenize(sentence string) []string {
	var (
		tokens []string
		word   strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range sentence {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'' || r == '-':
			word.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

func hasWordRune(token string) bool {
	return strings.IndexFunc(token, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0
}

// Simplify lowercases text, replaces everything but ASCII letters, digits and
// whitespace with spaces, and collapses whitespace. Scoring compares texts in this form.
func Simplify(text string) string {
	text = simplifyExpr.ReplaceAllString(strings.ToLower(text), " ")
	return collapseSpaces(text)
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
