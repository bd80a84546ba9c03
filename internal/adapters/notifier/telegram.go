// Package notifier forwards new notification entries to a Telegram chat.
package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/pkg/logger"
	"github.com/okian/goalcast/pkg/metrics"
)

const (
	sinkName        = "telegram"
	defaultBuffer   = 100
	defaultInterval = 2 * time.Second // the Bot API throttles at about 30 messages a minute per chat
)

// Sender is the part of the Bot API used here. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram is an asynchronous sink. Notify never blocks the refresh cycle;
// Run delivers queued messages with a minimum interval between them.
type Telegram struct {
	sender   Sender
	chatID   int64
	queue    chan model.Notification
	buffer   int
	interval time.Duration
	log      logger.Logger
}

// Dial connects to the Bot API at endpoint (tgbotapi.APIEndpoint when empty)
// and verifies the token.
func Dial(token string, chatID int64, endpoint string, opts ...Option) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return nil, ErrNotConfigured
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = false
	return New(bot, chatID, opts...), nil
}

// New creates a sink sending through s.
func New(s Sender, chatID int64, opts ...Option) *Telegram {
	t := &Telegram{
		sender:   s,
		chatID:   chatID,
		buffer:   defaultBuffer,
		interval: defaultInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.Get().Named("notifier")
	}
	t.queue = make(chan model.Notification, t.buffer)
	return t
}

// Notify queues entries for delivery. Entries that do not fit are dropped
// and reported with ErrQueueFull.
func (t *Telegram) Notify(ctx context.Context, entries []model.Notification) error {
	dropped := 0
	for _, n := range entries {
		select {
		case t.queue <- n:
		default:
			dropped++
			metrics.RecordNotifierMessage(sinkName, "dropped")
		}
	}
	if dropped > 0 {
		t.log.Warn(ctx, "telegram queue full", logger.Int("dropped", dropped))
		return fmt.Errorf("%w: %d dropped", ErrQueueFull, dropped)
	}
	return nil
}

// Pending returns the number of queued messages.
func (t *Telegram) Pending() int { return len(t.queue) }

// Run sends queued messages until ctx is done.
func (t *Telegram) Run(ctx context.Context) {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-t.queue:
			if wait := t.interval - time.Since(last); !last.IsZero() && wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			last = time.Now()
			t.send(ctx, n)
		}
	}
}

func (t *Telegram) send(ctx context.Context, n model.Notification) { //nolint:gocritic // hugeParam: read-only copy
	msg := tgbotapi.NewMessage(t.chatID, Format(n))
	msg.DisableWebPagePreview = true
	if _, err := t.sender.Send(msg); err != nil {
		metrics.RecordNotifierMessage(sinkName, "error")
		t.log.Error(ctx, "telegram send failed", logger.String("match_id", n.MatchID), logger.Error(err))
		return
	}
	metrics.RecordNotifierMessage(sinkName, "sent")
	t.log.Debug(ctx, "telegram message sent", logger.String("match_id", n.MatchID))
}

// Format renders one notification as a plain-text message.
func Format(n model.Notification) string { //nolint:gocritic // hugeParam: read-only copy
	var b strings.Builder
	fmt.Fprintf(&b, "⚽ %s vs %s (%s, %d')\n", n.HomeTeam, n.AwayTeam, n.Score, n.Minute)
	if n.League != "" {
		b.WriteString(n.League)
		b.WriteByte('\n')
	}
	if r := n.Recommendation; r != nil {
		fmt.Fprintf(&b, "Pick: %s at %.0f%%\n", r.Market, r.Probability*100)
	}
	fmt.Fprintf(&b, "Confidence: %d", n.Confidence)
	if len(n.Alert.Reasons) > 0 {
		b.WriteString("\nWhy: ")
		b.WriteString(strings.Join(n.Alert.Reasons, "; "))
	}
	return b.String()
}
