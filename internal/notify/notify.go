// Package notify posts a Slack digest of unfilled slots and rule
// violations after each planning run.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goslack "github.com/slack-go/slack"

	"github.com/wisbric/dutyplan/internal/telemetry"
	"github.com/wisbric/dutyplan/pkg/rule"
	"github.com/wisbric/dutyplan/pkg/scheduler"
)

// Notifier sends run digests to a Slack channel.
type Notifier struct {
	client  *goslack.Client
	channel string
	logger  *slog.Logger
}

// New creates a Notifier. If botToken is empty, the notifier is a noop
// that only logs what it would have sent.
func New(botToken, channel string, logger *slog.Logger) *Notifier {
	var client *goslack.Client
	if botToken != "" {
		client = goslack.New(botToken)
	}
	return &Notifier{client: client, channel: channel, logger: logger}
}

// IsEnabled reports whether the notifier has a usable Slack client.
func (n *Notifier) IsEnabled() bool {
	return n.client != nil && n.channel != ""
}

// Digest sends a summary of a run's unfilled slots and rule violations.
// It is a no-op, other than logging, when there is nothing to report or
// the notifier is disabled.
func (n *Notifier) Digest(ctx context.Context, result scheduler.Result, violations []scheduler.Violation) error {
	if len(result.Unfilled) == 0 && len(violations) == 0 {
		n.logger.Debug("planning run clean, skipping digest")
		return nil
	}

	text := formatDigest(result, violations)

	if !n.IsEnabled() {
		n.logger.Info("slack notifier disabled, would have sent digest", "text", text)
		return nil
	}

	_, _, err := n.client.PostMessageContext(ctx, n.channel, goslack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting run digest to slack: %w", err)
	}
	telemetry.NotificationsSentTotal.WithLabelValues("digest").Inc()
	return nil
}

func formatDigest(result scheduler.Result, violations []scheduler.Violation) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Planning run: %d unfilled slot(s), %d rule violation(s).\n",
		len(result.Unfilled), len(violations)))

	for _, u := range result.Unfilled {
		b.WriteString(fmt.Sprintf("- unfilled: %s / %s\n", u.Date.Format("2006-01-02"), u.Duty))
	}
	for _, v := range violations {
		b.WriteString(fmt.Sprintf("- violation: rule %s on %s (%s)\n", v.RuleID, v.Date.Format("2006-01-02"), statusText(v.Status)))
	}
	return b.String()
}

func statusText(s rule.Status) string {
	switch s {
	case rule.CombinationMissing:
		return "required combination missing"
	case rule.ForbiddenViolated:
		return "forbidden pairing occurred"
	default:
		return "unknown"
	}
}
