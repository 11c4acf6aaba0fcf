package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gift_watcher/internal/domain"
)

// Engine runs one full poll/notify/purchase cycle. Cycles are serialized by
// the scheduler: a cycle fully completes (or fails) before the next begins, so
// nothing here needs per-subscriber locking.
type Engine struct {
	catalog     CatalogClient
	gifts       GiftStore
	subscribers SubscriberStore
	txManager   TransactionManager
	events      EventPublisher
	broadcaster *Broadcaster
	executor    *Executor
	logger      *slog.Logger
}

func NewEngine(
	catalog CatalogClient,
	gifts GiftStore,
	subscribers SubscriberStore,
	txManager TransactionManager,
	events EventPublisher,
	broadcaster *Broadcaster,
	executor *Executor,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		catalog:     catalog,
		gifts:       gifts,
		subscribers: subscribers,
		txManager:   txManager,
		events:      events,
		broadcaster: broadcaster,
		executor:    executor,
		logger:      logger,
	}
}

// RunCycle polls the catalog, records unseen priced gifts, notifies everyone
// and spends each positive balance. The ledger write strictly precedes
// notification and purchasing: a crash after it never reprocesses the same
// gifts as new.
func (e *Engine) RunCycle(ctx context.Context) (*domain.CycleStats, error) {
	start := time.Now()

	catalog, err := e.catalog.ListAvailableGifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available gifts: %w", err)
	}

	known, err := e.gifts.ListKnownIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list known gifts: %w", err)
	}

	// New means unseen and priced; free gifts never enter the pipeline.
	var batch []domain.Gift
	for _, g := range catalog {
		if g.Price <= 0 {
			continue
		}
		if _, ok := known[g.ID]; ok {
			continue
		}
		batch = append(batch, g)
	}

	stats := &domain.CycleStats{
		Fetched: len(catalog),
		New:     len(batch),
	}

	if len(batch) == 0 {
		stats.Duration = time.Since(start)
		return stats, nil
	}

	e.logger.Info("new gifts discovered", "count", len(batch))

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return e.gifts.RecordNew(txCtx, batch)
	})
	if err != nil {
		return nil, fmt.Errorf("record new gifts: %w", err)
	}

	subs, err := e.subscribers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	if e.events != nil {
		if err := e.events.PublishDiscovery(ctx, batch); err != nil {
			e.logger.Error("publish discovery event failed", "error", err)
		}
	}

	ids := make([]int64, len(subs))
	for i, sub := range subs {
		ids[i] = sub.UserID
	}
	stats.Notified, stats.NotifyErrors = e.broadcaster.Broadcast(ctx, batch, ids)

	for _, sub := range subs {
		// Shutdown: never start another subscriber's plan.
		if ctx.Err() != nil {
			break
		}
		if sub.StarBalance <= 0 {
			continue
		}

		plan := BuildPlan(sub.StarBalance, batch)
		if plan.Empty() {
			continue
		}

		e.logger.Info("executing purchase plan",
			"user_id", sub.UserID,
			"items", len(plan.Items),
			"planned_cost", plan.TotalCost,
			"balance", sub.StarBalance,
		)

		result, err := e.executor.Execute(ctx, plan, sub)
		stats.StarsSpent += result.ActualSpend
		for _, o := range result.Outcomes {
			stats.Sent += o.Sent
			if o.Abandoned {
				stats.Abandoned += o.Requested - o.Sent
			}
		}
		if err != nil {
			// Contained: one subscriber's debit failure must not abort siblings.
			e.logger.Error("purchase execution failed", "user_id", sub.UserID, "error", err)
		}
	}

	stats.Duration = time.Since(start)

	e.logger.Info("cycle completed",
		"fetched", stats.Fetched,
		"new", stats.New,
		"notified", stats.Notified,
		"notify_errors", stats.NotifyErrors,
		"sent", stats.Sent,
		"abandoned", stats.Abandoned,
		"stars_spent", stats.StarsSpent,
		"duration", stats.Duration,
	)

	return stats, nil
}
