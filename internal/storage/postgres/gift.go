package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"gift_watcher/internal/domain"
)

// GiftStore persists the dedup ledger: every gift ID ever observed, with its
// price captured at first sight. Rows are never updated or deleted.
type GiftStore struct {
	db *sqlx.DB
}

func NewGiftStore(db *sqlx.DB) *GiftStore {
	return &GiftStore{db: db}
}

func (s *GiftStore) ListKnownIDs(ctx context.Context) (map[int64]struct{}, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids, "SELECT gift_id FROM known_gifts"); err != nil {
		return nil, err
	}

	known := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	return known, nil
}

// RecordNew inserts each gift once. A gift that is already known is a no-op,
// not an error, so a crash between recording and purchasing never double-counts.
func (s *GiftStore) RecordNew(ctx context.Context, gifts []domain.Gift) error {
	if len(gifts) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO known_gifts (gift_id, price) VALUES ")
	args := make([]interface{}, 0, len(gifts)*2)

	for i, g := range gifts {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("($")
		sb.WriteString(strconv.Itoa(i*2 + 1))
		sb.WriteString(", $")
		sb.WriteString(strconv.Itoa(i*2 + 2))
		sb.WriteString(")")
		args = append(args, g.ID, g.Price)
	}
	sb.WriteString(" ON CONFLICT (gift_id) DO NOTHING")

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, sb.String(), args...)
	return err
}
