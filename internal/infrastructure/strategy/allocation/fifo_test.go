package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/ceemowww/comtrack2/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liabilities() []strategy.Liability {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []strategy.Liability{
		{ID: uuid.New(), OrderNumber: "PO-3", OrderDate: base.AddDate(0, 0, 2), Outstanding: decimal.NewFromInt(50)},
		{ID: uuid.New(), OrderNumber: "PO-1", OrderDate: base, Outstanding: decimal.NewFromInt(25)},
		{ID: uuid.New(), OrderNumber: "PO-2", OrderDate: base, Outstanding: decimal.NewFromInt(15)},
		{ID: uuid.New(), OrderNumber: "PO-0", OrderDate: base, Outstanding: decimal.Zero},
	}
}

func TestFIFOAllocationStrategy_Plan(t *testing.T) {
	s := NewFIFOAllocationStrategy()
	ls := liabilities()

	plan, err := s.Plan(context.Background(), decimal.NewFromInt(60), ls)
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 3)
	assert.Equal(t, "PO-1", plan.Allocations[0].OrderNumber)
	assert.True(t, plan.Allocations[0].Amount.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "PO-2", plan.Allocations[1].OrderNumber)
	assert.True(t, plan.Allocations[1].Amount.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "PO-3", plan.Allocations[2].OrderNumber)
	assert.True(t, plan.Allocations[2].Amount.Equal(decimal.NewFromInt(20)))
	assert.True(t, plan.Allocations[2].OutstandingAfter.Equal(decimal.NewFromInt(30)))
	assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(60)))
	assert.True(t, plan.Remaining.IsZero())

	// input order is untouched
	assert.Equal(t, "PO-3", ls[0].OrderNumber)
}

func TestFIFOAllocationStrategy_PlanLeavesRemainder(t *testing.T) {
	plan, err := NewFIFOAllocationStrategy().Plan(context.Background(), decimal.NewFromInt(100), liabilities())
	require.NoError(t, err)

	assert.True(t, plan.TotalAllocated.Equal(decimal.NewFromInt(90)))
	assert.True(t, plan.Remaining.Equal(decimal.NewFromInt(10)))
}

func TestLargestFirstAllocationStrategy_Plan(t *testing.T) {
	plan, err := NewLargestFirstAllocationStrategy().Plan(context.Background(), decimal.NewFromInt(60), liabilities())
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "PO-3", plan.Allocations[0].OrderNumber)
	assert.True(t, plan.Allocations[0].Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "PO-1", plan.Allocations[1].OrderNumber)
	assert.True(t, plan.Allocations[1].Amount.Equal(decimal.NewFromInt(10)))
}

func TestFIFOAllocationStrategy_PlanKeepsStoredScale(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ls := []strategy.Liability{
		{ID: uuid.New(), OrderNumber: "PO-1", OrderDate: base, Outstanding: decimal.RequireFromString("0.33333333")},
		{ID: uuid.New(), OrderNumber: "PO-2", OrderDate: base.AddDate(0, 0, 1), Outstanding: decimal.RequireFromString("0.00003333")},
		{ID: uuid.New(), OrderNumber: "PO-3", OrderDate: base.AddDate(0, 0, 2), Outstanding: decimal.NewFromInt(5)},
	}

	plan, err := NewFIFOAllocationStrategy().Plan(context.Background(), decimal.NewFromInt(1), ls)
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "PO-1", plan.Allocations[0].OrderNumber)
	assert.True(t, plan.Allocations[0].Amount.Equal(decimal.RequireFromString("0.3333")))
	assert.True(t, plan.Allocations[0].OutstandingAfter.Equal(decimal.RequireFromString("0.00003333")))
	assert.Equal(t, "PO-3", plan.Allocations[1].OrderNumber)
	assert.True(t, plan.Allocations[1].Amount.Equal(decimal.RequireFromString("0.6667")))
	assert.True(t, plan.Remaining.IsZero())
}
