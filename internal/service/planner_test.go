package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift_watcher/internal/domain"
)

func TestBuildPlan_BuysExpensiveFirst(t *testing.T) {
	// balance 100, gifts 30 and 45: two of the 45 leave 10, not enough for
	// the 30.
	gifts := []domain.Gift{
		{ID: 1, Price: 30},
		{ID: 2, Price: 45},
	}

	plan := BuildPlan(100, gifts)

	require.Len(t, plan.Items, 1)
	assert.Equal(t, int64(2), plan.Items[0].Gift.ID)
	assert.Equal(t, int64(2), plan.Items[0].Quantity)
	assert.Equal(t, int64(90), plan.TotalCost)
}

func TestBuildPlan_SpendsRemainderOnCheaperGifts(t *testing.T) {
	gifts := []domain.Gift{
		{ID: 1, Price: 10},
		{ID: 2, Price: 45},
	}

	plan := BuildPlan(100, gifts)

	require.Len(t, plan.Items, 2)
	assert.Equal(t, int64(2), plan.Items[0].Gift.ID)
	assert.Equal(t, int64(2), plan.Items[0].Quantity)
	assert.Equal(t, int64(1), plan.Items[1].Gift.ID)
	assert.Equal(t, int64(1), plan.Items[1].Quantity)
	assert.Equal(t, int64(100), plan.TotalCost)
}

func TestBuildPlan_ZeroBalance(t *testing.T) {
	plan := BuildPlan(0, []domain.Gift{{ID: 1, Price: 30}})
	assert.True(t, plan.Empty())
	assert.Equal(t, int64(0), plan.TotalCost)
}

func TestBuildPlan_NoGifts(t *testing.T) {
	plan := BuildPlan(100, nil)
	assert.True(t, plan.Empty())
	assert.Equal(t, int64(0), plan.TotalCost)
}

func TestBuildPlan_NothingAffordable(t *testing.T) {
	plan := BuildPlan(5, []domain.Gift{{ID: 1, Price: 30}, {ID: 2, Price: 10}})
	assert.True(t, plan.Empty())
	assert.Equal(t, int64(0), plan.TotalCost)
}

func TestBuildPlan_TieBreaksByCatalogOrder(t *testing.T) {
	gifts := []domain.Gift{
		{ID: 9, Price: 40},
		{ID: 3, Price: 40},
	}

	plan := BuildPlan(40, gifts)

	require.Len(t, plan.Items, 1)
	assert.Equal(t, int64(9), plan.Items[0].Gift.ID)
}

func TestBuildPlan_Deterministic(t *testing.T) {
	gifts := []domain.Gift{
		{ID: 1, Price: 25},
		{ID: 2, Price: 25},
		{ID: 3, Price: 60},
	}

	first := BuildPlan(110, gifts)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildPlan(110, gifts))
	}
}

func TestBuildPlan_NeverExceedsBalance(t *testing.T) {
	gifts := []domain.Gift{
		{ID: 1, Price: 7},
		{ID: 2, Price: 13},
		{ID: 3, Price: 29},
		{ID: 4, Price: 101},
	}

	for balance := int64(0); balance <= 500; balance++ {
		plan := BuildPlan(balance, gifts)

		require.LessOrEqual(t, plan.TotalCost, balance, "balance %d", balance)

		var sum int64
		for _, item := range plan.Items {
			require.Greater(t, item.Quantity, int64(0))
			sum += item.Quantity * item.Gift.Price
		}
		require.Equal(t, plan.TotalCost, sum, "balance %d", balance)
	}
}

func TestBuildPlan_DoesNotMutateInput(t *testing.T) {
	gifts := []domain.Gift{
		{ID: 1, Price: 10},
		{ID: 2, Price: 45},
	}

	BuildPlan(100, gifts)

	assert.Equal(t, int64(1), gifts[0].ID)
	assert.Equal(t, int64(2), gifts[1].ID)
}
