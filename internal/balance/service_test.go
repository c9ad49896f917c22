package balance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderweb/tripkit/internal/expense"
)

type fakeExpenseSource struct {
	byGroup map[int64][]*expense.Expense
	byUser  map[int64][]*expense.Expense
}

func (f *fakeExpenseSource) ListByGroupWithSplits(_ context.Context, groupID int64) ([]*expense.Expense, error) {
	return f.byGroup[groupID], nil
}

func (f *fakeExpenseSource) ListByUserWithSplits(_ context.Context, userID int64) ([]*expense.Expense, error) {
	return f.byUser[userID], nil
}

func TestServiceGroupBalances(t *testing.T) {
	source := &fakeExpenseSource{
		byGroup: map[int64][]*expense.Expense{
			5: {testExpense(1, 1, 10000, "USD", share{1, 5000}, share{2, 5000})},
		},
	}

	svc := NewService(source)
	balances, integrity, err := svc.GroupBalances(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, integrity)
	require.Len(t, balances, 2)
	assert.Equal(t, int64(5000), balances[0].Amount)
	assert.Equal(t, int64(-5000), balances[1].Amount)
}

func TestServiceUserBalancesFiltersToUser(t *testing.T) {
	source := &fakeExpenseSource{
		byUser: map[int64][]*expense.Expense{
			2: {
				testExpense(1, 1, 10000, "USD", share{1, 5000}, share{2, 5000}),
				testExpense(2, 2, 3000, "EUR", share{1, 1500}, share{2, 1500}),
			},
		},
	}

	svc := NewService(source)
	balances, integrity, err := svc.UserBalances(context.Background(), 2)
	require.NoError(t, err)
	require.Empty(t, integrity)

	// the computation sees every participant, the result only user 2
	require.Len(t, balances, 2)
	for _, b := range balances {
		assert.Equal(t, int64(2), b.UserID)
	}
	assert.Equal(t, int64(1500), balanceOf(t, balances, 2, "EUR"))
	assert.Equal(t, int64(-5000), balanceOf(t, balances, 2, "USD"))
}

func TestServiceGroupSummarySurfacesIntegrity(t *testing.T) {
	source := &fakeExpenseSource{
		byGroup: map[int64][]*expense.Expense{
			9: {
				testExpense(1, 1, 5000, "USD", share{1, 2500}, share{2, 2500}),
				testExpense(2, 1, 5000, "USD", share{1, 1}),
			},
		},
	}

	svc := NewService(source)
	summaries, integrity, err := svc.GroupSummary(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, integrity, 1)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(5000), summaries[0].TotalExpenses)
}
