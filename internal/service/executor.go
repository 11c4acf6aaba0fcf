package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gift_watcher/internal/domain"
)

// Executor carries out purchase plans. Purchases for one subscriber are
// strictly sequential: accounting stays simple and the remote rate limits are
// respected.
type Executor struct {
	client      CatalogClient
	subscribers SubscriberStore
	pacing      time.Duration
	logger      *slog.Logger
}

func NewExecutor(client CatalogClient, subscribers SubscriberStore, pacing time.Duration, logger *slog.Logger) *Executor {
	return &Executor{
		client:      client,
		subscribers: subscribers,
		pacing:      pacing,
		logger:      logger,
	}
}

// Execute walks the plan item by item. A failing item is abandoned, never the
// whole plan. After the walk the subscriber is debited by what was actually
// spent, which may be less than the planned cost.
func (e *Executor) Execute(ctx context.Context, plan domain.PurchasePlan, sub domain.Subscriber) (domain.ExecutionResult, error) {
	var result domain.ExecutionResult

	for _, item := range plan.Items {
		if ctx.Err() != nil {
			break
		}
		outcome := e.executeItem(ctx, item, sub.UserID)
		result.ActualSpend += outcome.Sent * outcome.Price
		result.Outcomes = append(result.Outcomes, outcome)
	}

	newBalance := sub.StarBalance - result.ActualSpend

	// The debit has to land even when shutdown interrupted the plan: spend was
	// actually incurred.
	debitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := e.subscribers.SetBalance(debitCtx, sub.UserID, newBalance); err != nil {
		return result, fmt.Errorf("debit balance for %d: %w", sub.UserID, err)
	}

	e.logger.Info("purchase plan finished",
		"user_id", sub.UserID,
		"planned_cost", plan.TotalCost,
		"actual_spend", result.ActualSpend,
		"new_balance", newBalance,
	)

	return result, nil
}

// executeItem issues Quantity sequential purchases of one gift. On a
// rate-limit signal it sleeps the indicated duration and retries that purchase
// exactly once; a second failure, or any other rejection, abandons the
// remaining quantity.
func (e *Executor) executeItem(ctx context.Context, item domain.PlanItem, recipientID int64) domain.GiftOutcome {
	outcome := domain.GiftOutcome{
		GiftID:    item.Gift.ID,
		Price:     item.Gift.Price,
		Requested: item.Quantity,
	}

	for i := int64(0); i < item.Quantity; i++ {
		if ctx.Err() != nil {
			outcome.Abandoned = true
			outcome.Reason = "shutdown"
			return outcome
		}

		err := e.client.SendGift(ctx, recipientID, item.Gift.ID)

		var rateLimited *domain.RateLimitedError
		if errors.As(err, &rateLimited) {
			e.logger.Warn("rate limited while sending gift",
				"gift_id", item.Gift.ID,
				"user_id", recipientID,
				"retry_after", rateLimited.RetryAfter,
			)
			if !sleepCtx(ctx, rateLimited.RetryAfter) {
				outcome.Abandoned = true
				outcome.Reason = "shutdown"
				return outcome
			}
			err = e.client.SendGift(ctx, recipientID, item.Gift.ID)
		}

		if err != nil {
			outcome.Abandoned = true
			outcome.Reason = err.Error()
			e.logger.Warn("abandoning remaining quantity",
				"gift_id", item.Gift.ID,
				"user_id", recipientID,
				"sent", outcome.Sent,
				"requested", outcome.Requested,
				"error", err,
			)
			return outcome
		}

		outcome.Sent++
		e.logger.Debug("gift sent",
			"gift_id", item.Gift.ID,
			"user_id", recipientID,
			"progress", fmt.Sprintf("%d/%d", outcome.Sent, outcome.Requested),
		)

		// Pacing courtesy between sends, not correctness-critical.
		if outcome.Sent < outcome.Requested && !sleepCtx(ctx, e.pacing) {
			outcome.Abandoned = true
			outcome.Reason = "shutdown"
			return outcome
		}
	}

	return outcome
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
