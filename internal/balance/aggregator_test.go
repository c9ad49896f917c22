package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderweb/tripkit/internal/expense"
)

type share struct {
	userID int64
	amount int64
}

func testExpense(id, paidBy, amount int64, currency string, shares ...share) *expense.Expense {
	e := &expense.Expense{
		ID:       id,
		PaidBy:   paidBy,
		Amount:   amount,
		Currency: currency,
		Category: expense.CategoryOther,
	}
	for _, s := range shares {
		e.Splits = append(e.Splits, &expense.Split{
			ExpenseID: id,
			UserID:    s.userID,
			Amount:    s.amount,
		})
	}
	return e
}

func balanceOf(t *testing.T, balances []Balance, userID int64, currency string) int64 {
	t.Helper()
	for _, b := range balances {
		if b.UserID == userID && b.Currency == currency {
			return b.Amount
		}
	}
	t.Fatalf("no balance for user %d in %s", userID, currency)
	return 0
}

func assertZeroSum(t *testing.T, balances []Balance) {
	t.Helper()
	sums := make(map[string]int64)
	for _, b := range balances {
		sums[b.Currency] += b.Amount
	}
	for currency, sum := range sums {
		assert.Zerof(t, sum, "balances in %s must sum to zero", currency)
	}
}

func TestComputeBalancesBasic(t *testing.T) {
	// user 1 pays 100, split evenly with user 2
	expenses := []*expense.Expense{
		testExpense(1, 1, 10000, "USD", share{1, 5000}, share{2, 5000}),
	}

	balances, integrity := ComputeBalances(expenses)
	require.Empty(t, integrity)
	require.Len(t, balances, 2)

	assert.Equal(t, int64(5000), balanceOf(t, balances, 1, "USD"))
	assert.Equal(t, int64(-5000), balanceOf(t, balances, 2, "USD"))
	assertZeroSum(t, balances)
}

func TestComputeBalancesPayerNotInSplit(t *testing.T) {
	// user 1 pays for users 2 and 3 and owes nothing themselves
	expenses := []*expense.Expense{
		testExpense(1, 1, 9000, "USD", share{2, 4500}, share{3, 4500}),
	}

	balances, integrity := ComputeBalances(expenses)
	require.Empty(t, integrity)

	assert.Equal(t, int64(9000), balanceOf(t, balances, 1, "USD"))
	assert.Equal(t, int64(-4500), balanceOf(t, balances, 2, "USD"))
	assert.Equal(t, int64(-4500), balanceOf(t, balances, 3, "USD"))
	assertZeroSum(t, balances)
}

func TestComputeBalancesOffsettingExpenses(t *testing.T) {
	// two expenses that cancel out keep both users at zero, and the zero
	// rows are still reported
	expenses := []*expense.Expense{
		testExpense(1, 1, 6000, "USD", share{1, 3000}, share{2, 3000}),
		testExpense(2, 2, 6000, "USD", share{1, 3000}, share{2, 3000}),
	}

	balances, integrity := ComputeBalances(expenses)
	require.Empty(t, integrity)
	require.Len(t, balances, 2)

	assert.Equal(t, int64(0), balanceOf(t, balances, 1, "USD"))
	assert.Equal(t, int64(0), balanceOf(t, balances, 2, "USD"))
}

func TestComputeBalancesCurrenciesNeverMix(t *testing.T) {
	expenses := []*expense.Expense{
		testExpense(1, 1, 10000, "USD", share{1, 5000}, share{2, 5000}),
		testExpense(2, 2, 3000, "EUR", share{1, 1500}, share{2, 1500}),
		testExpense(3, 1, 500, "JPY", share{2, 500}),
	}

	balances, integrity := ComputeBalances(expenses)
	require.Empty(t, integrity)
	require.Len(t, balances, 6)

	assert.Equal(t, int64(5000), balanceOf(t, balances, 1, "USD"))
	assert.Equal(t, int64(-1500), balanceOf(t, balances, 1, "EUR"))
	assert.Equal(t, int64(500), balanceOf(t, balances, 1, "JPY"))
	assert.Equal(t, int64(-500), balanceOf(t, balances, 2, "JPY"))
	assertZeroSum(t, balances)
}

func TestComputeBalancesExcludesInconsistentExpenses(t *testing.T) {
	tests := []struct {
		name   string
		broken *expense.Expense
		reason string
	}{
		{
			name:   "splits not covering amount",
			broken: testExpense(99, 1, 10000, "USD", share{1, 4000}, share{2, 4000}),
			reason: "splits sum to 8000, expense amount is 10000",
		},
		{
			name:   "no splits",
			broken: testExpense(99, 1, 10000, "USD"),
			reason: "no splits",
		},
		{
			name:   "non-positive amount",
			broken: testExpense(99, 1, 0, "USD", share{1, 0}),
			reason: "non-positive amount",
		},
		{
			name:   "negative split",
			broken: testExpense(99, 1, 100, "USD", share{1, 200}, share{2, -100}),
			reason: "negative split amount for user 2",
		},
		{
			name:   "duplicate split user",
			broken: testExpense(99, 1, 100, "USD", share{1, 50}, share{1, 50}),
			reason: "duplicate split for user 1",
		},
		{
			name:   "invalid currency",
			broken: testExpense(99, 1, 100, "usd", share{1, 100}),
			reason: `invalid currency "usd"`,
		},
	}

	good := testExpense(1, 1, 10000, "USD", share{1, 5000}, share{2, 5000})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances, integrity := ComputeBalances([]*expense.Expense{good, tt.broken})

			require.Len(t, integrity, 1)
			assert.Equal(t, int64(99), integrity[0].ExpenseID)
			assert.Equal(t, tt.reason, integrity[0].Reason)

			// the good expense still counts and the invariant holds
			assert.Equal(t, int64(5000), balanceOf(t, balances, 1, "USD"))
			assertZeroSum(t, balances)
		})
	}
}

func TestComputeBalancesIdempotent(t *testing.T) {
	expenses := []*expense.Expense{
		testExpense(1, 1, 10000, "USD", share{1, 3334}, share{2, 3333}, share{3, 3333}),
		testExpense(2, 2, 4500, "EUR", share{1, 1500}, share{2, 1500}, share{3, 1500}),
		testExpense(3, 3, 700, "USD", share{1, 700}),
	}

	first, firstIntegrity := ComputeBalances(expenses)
	for i := 0; i < 5; i++ {
		again, integrity := ComputeBalances(expenses)
		assert.Equal(t, first, again)
		assert.Equal(t, firstIntegrity, integrity)
	}
}

func TestComputeBalancesSortedOutput(t *testing.T) {
	expenses := []*expense.Expense{
		testExpense(1, 3, 100, "USD", share{2, 50}, share{1, 50}),
		testExpense(2, 2, 100, "EUR", share{3, 100}),
	}

	balances, _ := ComputeBalances(expenses)
	require.Len(t, balances, 5)

	assert.Equal(t, "EUR", balances[0].Currency)
	assert.Equal(t, int64(2), balances[0].UserID)
	assert.Equal(t, "EUR", balances[1].Currency)
	assert.Equal(t, int64(3), balances[1].UserID)
	assert.Equal(t, "USD", balances[2].Currency)
	assert.Equal(t, int64(1), balances[2].UserID)
}

func TestComputeGroupSummary(t *testing.T) {
	food := testExpense(1, 1, 6000, "USD", share{1, 3000}, share{2, 3000})
	food.Category = expense.CategoryFood
	transport := testExpense(2, 2, 2000, "USD", share{1, 1000}, share{2, 1000})
	transport.Category = expense.CategoryTransport
	moreFood := testExpense(3, 1, 2000, "USD", share{1, 1000}, share{2, 1000})
	moreFood.Category = expense.CategoryFood

	summaries, integrity := ComputeGroupSummary(42, []*expense.Expense{food, transport, moreFood})
	require.Empty(t, integrity)
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, int64(42), s.GroupID)
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, int64(10000), s.TotalExpenses)

	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, expense.CategoryFood, s.ByCategory[0].Category)
	assert.Equal(t, int64(8000), s.ByCategory[0].Amount)
	assert.Equal(t, 80.0, s.ByCategory[0].Percent)
	assert.Equal(t, expense.CategoryTransport, s.ByCategory[1].Category)
	assert.Equal(t, 20.0, s.ByCategory[1].Percent)

	require.Len(t, s.ByMember, 2)
	assert.Equal(t, int64(8000), s.ByMember[0].Paid)
	assert.Equal(t, int64(4000), s.ByMember[0].Owes)
	assert.Equal(t, int64(4000), s.ByMember[0].Net)
	assert.Equal(t, int64(-4000), s.ByMember[1].Net)
}

func TestComputeGroupSummaryPerCurrency(t *testing.T) {
	usd := testExpense(1, 1, 5000, "USD", share{1, 2500}, share{2, 2500})
	eur := testExpense(2, 2, 3000, "EUR", share{1, 1500}, share{2, 1500})

	summaries, integrity := ComputeGroupSummary(7, []*expense.Expense{usd, eur})
	require.Empty(t, integrity)
	require.Len(t, summaries, 2)

	assert.Equal(t, "EUR", summaries[0].Currency)
	assert.Equal(t, int64(3000), summaries[0].TotalExpenses)
	assert.Equal(t, "USD", summaries[1].Currency)
	assert.Equal(t, int64(5000), summaries[1].TotalExpenses)
}

func TestComputeGroupSummaryExcludesInconsistentExpenses(t *testing.T) {
	good := testExpense(1, 1, 5000, "USD", share{1, 2500}, share{2, 2500})
	broken := testExpense(2, 1, 5000, "USD", share{1, 100})

	summaries, integrity := ComputeGroupSummary(7, []*expense.Expense{good, broken})
	require.Len(t, integrity, 1)
	assert.Equal(t, int64(2), integrity[0].ExpenseID)

	require.Len(t, summaries, 1)
	assert.Equal(t, int64(5000), summaries[0].TotalExpenses)
}
