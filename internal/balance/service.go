package balance

import (
	"context"
	"log/slog"

	"github.com/wanderweb/tripkit/internal/expense"
)

// ExpenseSource provides the expense snapshots balances are computed from.
// Satisfied by the expense repository.
type ExpenseSource interface {
	ListByGroupWithSplits(ctx context.Context, groupID int64) ([]*expense.Expense, error)
	ListByUserWithSplits(ctx context.Context, userID int64) ([]*expense.Expense, error)
}

// Service computes balances on demand. Nothing is stored; every call folds
// the current expense snapshot, so a repeated call over unchanged data
// returns identical results.
type Service struct {
	expenses ExpenseSource
}

// NewService creates a new balance service
func NewService(expenses ExpenseSource) *Service {
	return &Service{expenses: expenses}
}

// GroupBalances returns the net position of every member of a group, per
// currency, alongside any expenses excluded for integrity reasons
func (s *Service) GroupBalances(ctx context.Context, groupID int64) ([]Balance, []*IntegrityError, error) {
	snapshot, err := s.expenses.ListByGroupWithSplits(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	balances, integrity := ComputeBalances(snapshot)
	logIntegrity(integrity, "group_id", groupID)
	return balances, integrity, nil
}

// GroupSummary returns the per-currency spending breakdown of a group
func (s *Service) GroupSummary(ctx context.Context, groupID int64) ([]*Summary, []*IntegrityError, error) {
	snapshot, err := s.expenses.ListByGroupWithSplits(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	summaries, integrity := ComputeGroupSummary(groupID, snapshot)
	logIntegrity(integrity, "group_id", groupID)
	return summaries, integrity, nil
}

// UserBalances returns one user's net position per currency across every
// expense they pay for or participate in
func (s *Service) UserBalances(ctx context.Context, userID int64) ([]Balance, []*IntegrityError, error) {
	snapshot, err := s.expenses.ListByUserWithSplits(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	all, integrity := ComputeBalances(snapshot)
	logIntegrity(integrity, "user_id", userID)

	balances := make([]Balance, 0, len(all))
	for _, b := range all {
		if b.UserID == userID {
			balances = append(balances, b)
		}
	}

	return balances, integrity, nil
}

func logIntegrity(integrity []*IntegrityError, key string, id int64) {
	for _, ie := range integrity {
		slog.Warn("expense excluded from balance computation", key, id, "expense_id", ie.ExpenseID, "reason", ie.Reason)
	}
}
