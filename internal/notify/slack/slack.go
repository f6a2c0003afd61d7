// Package slack mirrors urgent complaints to an operations channel via
// Slack incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

const (
	maxDescriptionLen = 3000
	httpTimeout       = 10 * time.Second
)

// Notifier posts complaints at or above a priority threshold to a Slack
// webhook. It implements complaint.Notifier; delivery errors are logged.
type Notifier struct {
	webhookURL string
	minRank    int
	client     *http.Client
	logger     log.Logger
}

// New creates a Slack notifier that mirrors very urgent complaints. If
// webhookURL is empty, Send is a no-op.
func New(webhookURL string, logger log.Logger) *Notifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &Notifier{
		webhookURL: webhookURL,
		minRank:    complaint.PriorityVeryUrgent.Rank(),
		client:     &http.Client{Timeout: httpTimeout},
		logger:     logger,
	}
}

// WithThreshold returns n mirroring complaints at priority p or above.
func (n *Notifier) WithThreshold(p complaint.Priority) *Notifier {
	n.minRank = p.Rank()
	return n
}

// ComplaintReceived implements complaint.Notifier.
func (n *Notifier) ComplaintReceived(ctx context.Context, c *complaint.Complaint) {
	if c.Priority.Rank() < n.minRank {
		return
	}
	if err := n.Send(ctx, c); err != nil {
		n.logger.Error(ctx, err, "slack mirror failed", "tracking_id", c.TrackingID)
	}
}

// StatusChanged implements complaint.Notifier. Status changes are not mirrored.
func (n *Notifier) StatusChanged(context.Context, *complaint.Complaint) {}

// Send posts a complaint to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, c *complaint.Complaint) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(buildMessage(c))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(c *complaint.Complaint) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(c),
			{"type": "divider"},
			fieldsBlock(c),
			{"type": "divider"},
			descriptionBlock(c),
			{"type": "divider"},
			contextBlock(c),
		},
	}
}

func headerBlock(c *complaint.Complaint) map[string]any {
	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": fmt.Sprintf("%s %s: %s", priorityEmoji(c.Priority), c.Priority.Label(), c.TrackingID),
		},
	}
}

func fieldsBlock(c *complaint.Complaint) map[string]any {
	field := func(name, value string) map[string]any {
		return map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*%s:* %s", name, value)}
	}
	return map[string]any{
		"type": "section",
		"fields": []map[string]any{
			field("Kategori", c.Category),
			field("Lokasi", c.Location),
			field("Prioritas", c.Priority.Label()),
			field("Sentimen", fmt.Sprintf("%s (%.1f%%)", c.Sentiment, c.Confidence)),
			field("Status", c.Status.Label()),
			field("Pelapor", orDash(c.ReporterName)),
		},
	}
}

func descriptionBlock(c *complaint.Complaint) map[string]any {
	text := truncate(c.Description, maxDescriptionLen)
	if text == "" {
		text = "_Tanpa deskripsi._"
	}
	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Deskripsi*\n\n%s", text),
		},
	}
}

func contextBlock(c *complaint.Complaint) map[string]any {
	return map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{
				"type": "mrkdwn",
				"text": fmt.Sprintf("tanggap • %s • %s", c.TrackingID, c.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")),
			},
		},
	}
}

func priorityEmoji(p complaint.Priority) string {
	switch p {
	case complaint.PriorityVeryUrgent:
		return "\U0001f534" // red circle
	case complaint.PriorityHigh:
		return "\U0001f7e0" // orange circle
	case complaint.PriorityMedium:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
