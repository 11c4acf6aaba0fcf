package domain

// PlanItem is one entry of a purchase plan: buy Quantity copies of Gift.
type PlanItem struct {
	Gift     Gift
	Quantity int64
}

// PurchasePlan is the ordered result of the greedy allocation for one
// subscriber. Items are kept in execution order (price descending, catalog
// order on ties). TotalCost never exceeds the balance the plan was built for.
type PurchasePlan struct {
	Items     []PlanItem
	TotalCost int64
}

// Empty reports whether the plan contains nothing to buy.
func (p PurchasePlan) Empty() bool {
	return len(p.Items) == 0
}

// GiftOutcome records how one plan item fared during execution.
type GiftOutcome struct {
	GiftID    int64
	Price     int64
	Requested int64
	Sent      int64
	Abandoned bool
	Reason    string
}

// ExecutionResult is the accounting of one executed plan. ActualSpend reflects
// purchases that actually went through, not the planned cost.
type ExecutionResult struct {
	ActualSpend int64
	Outcomes    []GiftOutcome
}
