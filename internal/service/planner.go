package service

import (
	"sort"

	"gift_watcher/internal/domain"
)

// BuildPlan computes a purchase plan for one subscriber: greedy,
// price-descending, ties broken by catalog order. The most expensive gifts are
// bought first as a priority policy; this is not an optimal knapsack solution,
// it is a deterministic approximation. The plan's TotalCost never exceeds
// balance. Performs no I/O.
func BuildPlan(balance int64, gifts []domain.Gift) domain.PurchasePlan {
	if balance <= 0 || len(gifts) == 0 {
		return domain.PurchasePlan{}
	}

	ordered := make([]domain.Gift, len(gifts))
	copy(ordered, gifts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Price > ordered[j].Price
	})

	var plan domain.PurchasePlan
	remaining := balance

	for _, g := range ordered {
		if g.Price <= 0 || remaining < g.Price {
			continue
		}
		qty := remaining / g.Price
		plan.Items = append(plan.Items, domain.PlanItem{Gift: g, Quantity: qty})
		remaining -= qty * g.Price
	}

	plan.TotalCost = balance - remaining
	return plan
}
