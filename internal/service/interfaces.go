package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"gift_watcher/internal/domain"
)

// CatalogClient is the remote gift catalog: listing what is currently for
// sale and buying a single copy for a recipient.
type CatalogClient interface {
	ListAvailableGifts(ctx context.Context) ([]domain.Gift, error)
	SendGift(ctx context.Context, recipientID, giftID int64) error
}

// MessageSender delivers notification text to a chat.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// GiftStore is the dedup ledger of previously observed gifts.
type GiftStore interface {
	ListKnownIDs(ctx context.Context) (map[int64]struct{}, error)
	RecordNew(ctx context.Context, gifts []domain.Gift) error
}

// SubscriberStore holds subscriber accounts and star balances.
type SubscriberStore interface {
	List(ctx context.Context) ([]domain.Subscriber, error)
	SetBalance(ctx context.Context, userID, balance int64) error
	Add(ctx context.Context, userID int64) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher pushes discovery events to downstream consumers. Optional;
// the engine tolerates a nil publisher.
type EventPublisher interface {
	PublishDiscovery(ctx context.Context, gifts []domain.Gift) error
	Close() error
}
