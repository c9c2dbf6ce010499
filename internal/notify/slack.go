// Package notify sends best-effort notifications about completed runs.
// Notification failures are logged and never fail the command that
// triggered them.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"

	"github.com/amanverma-wsu/cicd-tool/internal/provider"
)

// Notifier posts run completion messages to a Slack incoming webhook.
// A Notifier with an empty webhook URL is a no-op.
type Notifier struct {
	webhookURL string
	log        *slog.Logger
	post       func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

// NewSlack creates a Notifier for the given webhook URL. An empty URL
// disables notification entirely.
func NewSlack(webhookURL string, log *slog.Logger) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		log:        log,
		post:       slack.PostWebhookContext,
	}
}

// RunCompleted announces the terminal state of a run. Errors are logged at
// warn level and swallowed.
func (n *Notifier) RunCompleted(ctx context.Context, repository string, run provider.Run) {
	if n.webhookURL == "" {
		return
	}

	text := fmt.Sprintf("CI for %s finished: %s (%s)", repository, run.Conclusion, run.URL)
	if err := n.post(ctx, n.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		n.log.Warn("slack notification failed", "error", err)
	}
}
