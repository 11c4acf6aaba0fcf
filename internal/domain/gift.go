package domain

// Gift is a purchasable catalog entry. Immutable once observed; ID is stable
// across polls and acts as the dedup key.
type Gift struct {
	ID    int64
	Price int64 // cost in stars, always > 0 once inside the pipeline
}

// Subscriber is an account eligible to receive purchased gifts.
type Subscriber struct {
	UserID      int64 `db:"user_id"`
	StarBalance int64 `db:"star_balance"`
}
