package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gift_watcher/internal/domain"
)

// Broadcaster fans a discovery summary out to all subscribers plus the fixed
// notification channel. Delivery failures are logged, never raised: one
// unreachable recipient must not block the rest.
type Broadcaster struct {
	sender    MessageSender
	channelID int64
	logger    *slog.Logger
}

func NewBroadcaster(sender MessageSender, channelID int64, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		sender:    sender,
		channelID: channelID,
		logger:    logger,
	}
}

func (b *Broadcaster) Broadcast(ctx context.Context, gifts []domain.Gift, subscriberIDs []int64) (delivered, failed int) {
	if len(gifts) == 0 {
		return 0, 0
	}

	text := FormatSummary(gifts)

	recipients := make([]int64, 0, len(subscriberIDs)+1)
	seen := make(map[int64]struct{}, len(subscriberIDs)+1)
	for _, id := range subscriberIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	if b.channelID != 0 {
		if _, ok := seen[b.channelID]; !ok {
			recipients = append(recipients, b.channelID)
		}
	}

	for _, chatID := range recipients {
		if ctx.Err() != nil {
			break
		}
		if err := b.sender.SendMessage(ctx, chatID, text); err != nil {
			failed++
			b.logger.Warn("notification delivery failed", "chat_id", chatID, "error", err)
			continue
		}
		delivered++
	}

	b.logger.Info("broadcast finished", "delivered", delivered, "failed", failed)
	return delivered, failed
}

// FormatSummary renders one human-readable summary, most expensive gift first.
func FormatSummary(gifts []domain.Gift) string {
	ordered := make([]domain.Gift, len(gifts))
	copy(ordered, gifts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Price > ordered[j].Price
	})

	var sb strings.Builder
	sb.WriteString("New gifts available!")
	for _, g := range ordered {
		sb.WriteString(fmt.Sprintf("\n  🎁 - %d ★", g.Price))
	}
	return sb.String()
}
