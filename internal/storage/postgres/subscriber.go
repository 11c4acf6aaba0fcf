package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gift_watcher/internal/domain"
)

// SubscriberStore persists subscriber accounts and their star balances.
type SubscriberStore struct {
	db *sqlx.DB
}

func NewSubscriberStore(db *sqlx.DB) *SubscriberStore {
	return &SubscriberStore{db: db}
}

func (s *SubscriberStore) List(ctx context.Context) ([]domain.Subscriber, error) {
	var subs []domain.Subscriber
	query := `SELECT user_id, star_balance FROM telegram_users ORDER BY user_id`
	if err := s.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, err
	}
	return subs, nil
}

// SetBalance upserts the subscriber's balance, creating the row if absent.
// Negative values are accepted; validation is the caller's concern (an
// operator override may legitimately go negative).
func (s *SubscriberStore) SetBalance(ctx context.Context, userID, balance int64) error {
	query := `
		INSERT INTO telegram_users (user_id, star_balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET star_balance = EXCLUDED.star_balance`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, userID, balance)
	return err
}

// Add creates the subscriber with a zero balance; existing rows are untouched.
func (s *SubscriberStore) Add(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO telegram_users (user_id, star_balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, userID)
	return err
}
