package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/KrikINS/floor-ready/internal/core/eventbus"
	"github.com/KrikINS/floor-ready/internal/core/notify"
)

// SlackNotifier posts notifications to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	timeout    time.Duration
	log        zerolog.Logger
}

// NewSlackNotifier creates a notifier for webhookURL.
func NewSlackNotifier(webhookURL string, log zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		timeout:    10 * time.Second,
		log:        log.With().Str("component", "slack-notifier").Logger(),
	}
}

// Register forwards every published notification to Slack. Delivery errors
// are logged; the bus never blocks on Slack for longer than the timeout.
func (n *SlackNotifier) Register(bus *eventbus.EventBus) {
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.Send(ctx, p.Notification); err != nil {
			n.log.Warn().Err(err).Str("task_id", p.Notification.TaskID).Msg("slack delivery failed")
		}
	})
}

// Send posts one notification.
func (n *SlackNotifier) Send(ctx context.Context, msg notify.Notification) error {
	err := slack.PostWebhookContext(ctx, n.webhookURL, &slack.WebhookMessage{
		Text: fmt.Sprintf("%s %s", levelEmoji(msg.Level), msg.Message),
	})
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}

func levelEmoji(l notify.Level) string {
	switch l {
	case notify.LevelWarning:
		return ":warning:"
	case notify.LevelError:
		return ":x:"
	default:
		return ":information_source:"
	}
}
