package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsCredibility/internal/domain"
	"NewsCredibility/internal/ports"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	maxExcerpt     = 280
)

// Notifier sends analysis summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishAnalysis posts a plain-text summary of the analysis.
func (n *Notifier) PublishAnalysis(ctx context.Context, analysis domain.Analysis) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatAnalysis(analysis))
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatAnalysis renders the message body.
func FormatAnalysis(a domain.Analysis) string {
	excerpt := []rune(a.InputText)
	text := string(excerpt)
	if len(excerpt) > maxExcerpt {
		text = string(excerpt[:maxExcerpt]) + "…"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "News credibility: %s\n", a.Corpus.Verdict)
	fmt.Fprintf(&b, "Corpus confidence: %.2f (aggregate %.2f)\n", a.Corpus.CorpusConfidence, a.AggregateConfidence)
	fmt.Fprintf(&b, "Classifier: %s (%.2f)\n", a.Classifier.Label, a.Classifier.Confidence)
	fmt.Fprintf(&b, "Third party: %s\n", a.ThirdParty.Verdict)
	fmt.Fprintf(&b, "Articles: %d relevant of %d fetched, %d trusted\n", len(a.Articles), a.ArticlesFetched, a.TrustedSourceCount)
	if len(a.Flags) > 0 {
		fmt.Fprintf(&b, "Flags: %s\n", strings.Join(a.Flags, ", "))
	}
	b.WriteString("\n")
	b.WriteString(text)
	return b.String()
}
