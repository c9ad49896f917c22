package balance

import (
	"fmt"
	"math"
	"sort"

	"github.com/wanderweb/tripkit/internal/expense"
	"github.com/wanderweb/tripkit/internal/money"
)

// userCurrency keys accumulators per currency so amounts never mix
type userCurrency struct {
	currency string
	userID   int64
}

// ComputeBalances folds a snapshot of expenses into net balances, one per
// user per currency. The payer is credited the full amount and every split
// user is debited their share, so each expense contributes zero net and the
// balances of a currency always sum to zero. Expenses with inconsistent
// stored data are excluded and reported, never silently dropped and never
// fatal to the rest of the computation.
func ComputeBalances(expenses []*expense.Expense) ([]Balance, []*IntegrityError) {
	amounts := make(map[userCurrency]int64)
	usernames := make(map[int64]string)
	var integrity []*IntegrityError

	for _, e := range expenses {
		if ie := checkExpense(e); ie != nil {
			integrity = append(integrity, ie)
			continue
		}

		payerKey := userCurrency{currency: e.Currency, userID: e.PaidBy}
		amounts[payerKey] += e.Amount
		if e.PayerUsername != "" {
			usernames[e.PaidBy] = e.PayerUsername
		}

		for _, s := range e.Splits {
			key := userCurrency{currency: e.Currency, userID: s.UserID}
			amounts[key] -= s.Amount
			if s.Username != "" {
				usernames[s.UserID] = s.Username
			}
		}
	}

	balances := make([]Balance, 0, len(amounts))
	for key, amount := range amounts {
		balances = append(balances, Balance{
			UserID:   key.userID,
			Username: usernames[key.userID],
			Amount:   amount,
			Currency: key.currency,
		})
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Currency != balances[j].Currency {
			return balances[i].Currency < balances[j].Currency
		}
		return balances[i].UserID < balances[j].UserID
	})

	return balances, integrity
}

// ComputeGroupSummary builds per-currency spending breakdowns for a group
// from the same snapshot shape ComputeBalances consumes. Category percentages
// are display values rounded to two decimals; the minor-unit amounts stay
// exact.
func ComputeGroupSummary(groupID int64, expenses []*expense.Expense) ([]*Summary, []*IntegrityError) {
	type memberAcc struct {
		paid int64
		owes int64
	}

	totals := make(map[string]int64)
	categories := make(map[string]map[expense.Category]int64)
	members := make(map[string]map[int64]*memberAcc)
	usernames := make(map[int64]string)
	var integrity []*IntegrityError

	for _, e := range expenses {
		if ie := checkExpense(e); ie != nil {
			integrity = append(integrity, ie)
			continue
		}

		totals[e.Currency] += e.Amount

		if categories[e.Currency] == nil {
			categories[e.Currency] = make(map[expense.Category]int64)
		}
		categories[e.Currency][e.Category] += e.Amount

		if members[e.Currency] == nil {
			members[e.Currency] = make(map[int64]*memberAcc)
		}
		byUser := members[e.Currency]

		if byUser[e.PaidBy] == nil {
			byUser[e.PaidBy] = &memberAcc{}
		}
		byUser[e.PaidBy].paid += e.Amount
		if e.PayerUsername != "" {
			usernames[e.PaidBy] = e.PayerUsername
		}

		for _, s := range e.Splits {
			if byUser[s.UserID] == nil {
				byUser[s.UserID] = &memberAcc{}
			}
			byUser[s.UserID].owes += s.Amount
			if s.Username != "" {
				usernames[s.UserID] = s.Username
			}
		}
	}

	summaries := make([]*Summary, 0, len(totals))
	for currency, total := range totals {
		summary := &Summary{
			GroupID:       groupID,
			Currency:      currency,
			TotalExpenses: total,
		}

		for category, amount := range categories[currency] {
			percent := 0.0
			if total > 0 {
				percent = math.Round(float64(amount)/float64(total)*10000) / 100
			}
			summary.ByCategory = append(summary.ByCategory, CategoryTotal{
				Category: category,
				Amount:   amount,
				Percent:  percent,
			})
		}
		sort.Slice(summary.ByCategory, func(i, j int) bool {
			if summary.ByCategory[i].Amount != summary.ByCategory[j].Amount {
				return summary.ByCategory[i].Amount > summary.ByCategory[j].Amount
			}
			return summary.ByCategory[i].Category < summary.ByCategory[j].Category
		})

		for userID, acc := range members[currency] {
			summary.ByMember = append(summary.ByMember, MemberTotal{
				UserID:   userID,
				Username: usernames[userID],
				Paid:     acc.paid,
				Owes:     acc.owes,
				Net:      acc.paid - acc.owes,
			})
		}
		sort.Slice(summary.ByMember, func(i, j int) bool {
			return summary.ByMember[i].UserID < summary.ByMember[j].UserID
		})

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Currency < summaries[j].Currency
	})

	return summaries, integrity
}

// checkExpense validates the stored invariants an expense must hold before it
// may enter an aggregation
func checkExpense(e *expense.Expense) *IntegrityError {
	if e.Amount <= 0 {
		return &IntegrityError{ExpenseID: e.ID, Reason: "non-positive amount"}
	}
	if !money.ValidCurrency(e.Currency) {
		return &IntegrityError{ExpenseID: e.ID, Reason: fmt.Sprintf("invalid currency %q", e.Currency)}
	}
	if len(e.Splits) == 0 {
		return &IntegrityError{ExpenseID: e.ID, Reason: "no splits"}
	}

	seen := make(map[int64]bool, len(e.Splits))
	for _, s := range e.Splits {
		if s.Amount < 0 {
			return &IntegrityError{ExpenseID: e.ID, Reason: fmt.Sprintf("negative split amount for user %d", s.UserID)}
		}
		if seen[s.UserID] {
			return &IntegrityError{ExpenseID: e.ID, Reason: fmt.Sprintf("duplicate split for user %d", s.UserID)}
		}
		seen[s.UserID] = true
	}

	if total := e.SplitsTotal(); total != e.Amount {
		return &IntegrityError{ExpenseID: e.ID, Reason: fmt.Sprintf("splits sum to %d, expense amount is %d", total, e.Amount)}
	}

	return nil
}
