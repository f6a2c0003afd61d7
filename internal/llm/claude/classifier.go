// Package claude classifies complaint sentiment with a Claude model.
package claude

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

const (
	DefaultModel   = "claude-sonnet-4-20250514"
	defaultTimeout = 15 * time.Second
	maxTokens      = 128
	maxInputLen    = 8000
)

const systemPrompt = `You label the sentiment of citizen complaints written in Indonesian.
Answer with a single JSON object and nothing else:
{"label": "negatif" | "positif" | "netral", "confidence": <number 0-100>}
confidence is your probability for the chosen label, as a percentage.`

var errNoText = errors.New("claude: reply has no text block")

// Config configures a Classifier.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Classifier implements complaint.Classifier. API failures and unusable
// replies degrade to complaint.Unknown.
type Classifier struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	logger  log.Logger
}

// New creates a Classifier.
func New(cfg Config, logger log.Logger) *Classifier {
	if logger == nil {
		logger = log.Nop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}

	return &Classifier{
		client:  anthropic.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

// Classify implements complaint.Classifier.
func (c *Classifier) Classify(ctx context.Context, normalized string) complaint.Sentiment {
	if len(normalized) > maxInputLen {
		normalized = normalized[:maxInputLen]
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(normalized)),
		},
	})
	if err != nil {
		c.logger.Warn(ctx, "claude classify failed", "error", err.Error())
		return complaint.Unknown()
	}

	s, err := parseReply(replyText(msg))
	if err != nil {
		c.logger.Warn(ctx, "claude reply unusable", "error", err.Error())
		return complaint.Unknown()
	}
	return s
}

func replyText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

type reply struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
}

// parseReply extracts the JSON object from a model reply, tolerating code
// fences and surrounding prose.
func parseReply(text string) (complaint.Sentiment, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		if strings.TrimSpace(text) == "" {
			return complaint.Sentiment{}, errNoText
		}
		return complaint.Sentiment{}, fmt.Errorf("claude: no json object in reply %q", truncate(text, 80))
	}

	var r reply
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return complaint.Sentiment{}, fmt.Errorf("claude: decode reply: %w", err)
	}

	label, ok := canonicalLabel(r.Label)
	if !ok {
		return complaint.Sentiment{}, fmt.Errorf("claude: unexpected label %q", r.Label)
	}
	if r.Confidence == nil {
		return complaint.Sentiment{}, errors.New("claude: reply missing confidence")
	}

	conf := *r.Confidence
	if conf > 0 && conf <= 1 {
		conf *= 100
	}
	return complaint.Sentiment{Label: label, Confidence: conf}, nil
}

func canonicalLabel(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "negatif", "negative":
		return "negatif", true
	case "positif", "positive":
		return "positif", true
	case "netral", "neutral":
		return "netral", true
	}
	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
