package balance

import (
	"fmt"

	"github.com/wanderweb/tripkit/internal/expense"
	"github.com/wanderweb/tripkit/internal/money"
)

// Balance is one user's net position in one currency. Amount is in minor
// units: positive means the group owes the user, negative means the user owes
// the group. Within a currency the amounts of all balances sum to zero.
type Balance struct {
	UserID   int64
	Username string
	Amount   int64
	Currency string
}

// CategoryTotal is the spend in one category within one currency
type CategoryTotal struct {
	Category expense.Category
	Amount   int64
	Percent  float64
}

// MemberTotal is one member's paid/owed totals within one currency
type MemberTotal struct {
	UserID   int64
	Username string
	Paid     int64
	Owes     int64
	Net      int64
}

// Summary is the spending breakdown for a group in one currency
type Summary struct {
	GroupID       int64
	Currency      string
	TotalExpenses int64
	ByCategory    []CategoryTotal
	ByMember      []MemberTotal
}

// IntegrityError records an expense excluded from a computation because its
// stored data is inconsistent. The computation carries on without it.
type IntegrityError struct {
	ExpenseID int64
	Reason    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("expense %d excluded: %s", e.ExpenseID, e.Reason)
}

// BalanceResponse represents one balance on the wire
type BalanceResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// CategoryTotalResponse represents one category total on the wire
type CategoryTotalResponse struct {
	Category expense.Category `json:"category"`
	Amount   string           `json:"amount"`
	Percent  float64          `json:"percent"`
}

// MemberTotalResponse represents one member total on the wire
type MemberTotalResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Paid     string `json:"paid"`
	Owes     string `json:"owes"`
	Net      string `json:"net"`
}

// SummaryResponse represents a group summary on the wire
type SummaryResponse struct {
	GroupID       int64                    `json:"group_id"`
	Currency      string                   `json:"currency"`
	TotalExpenses string                   `json:"total_expenses"`
	ByCategory    []*CategoryTotalResponse `json:"by_category"`
	ByMember      []*MemberTotalResponse   `json:"by_member"`
}

// ToResponse converts a Balance to its wire form
func (b Balance) ToResponse() *BalanceResponse {
	return &BalanceResponse{
		UserID:   b.UserID,
		Username: b.Username,
		Amount:   money.Format(b.Amount, b.Currency),
		Currency: b.Currency,
	}
}

// ToResponse converts a Summary to its wire form
func (s *Summary) ToResponse() *SummaryResponse {
	resp := &SummaryResponse{
		GroupID:       s.GroupID,
		Currency:      s.Currency,
		TotalExpenses: money.Format(s.TotalExpenses, s.Currency),
		ByCategory:    make([]*CategoryTotalResponse, len(s.ByCategory)),
		ByMember:      make([]*MemberTotalResponse, len(s.ByMember)),
	}
	for i, c := range s.ByCategory {
		resp.ByCategory[i] = &CategoryTotalResponse{
			Category: c.Category,
			Amount:   money.Format(c.Amount, s.Currency),
			Percent:  c.Percent,
		}
	}
	for i, m := range s.ByMember {
		resp.ByMember[i] = &MemberTotalResponse{
			UserID:   m.UserID,
			Username: m.Username,
			Paid:     money.Format(m.Paid, s.Currency),
			Owes:     money.Format(m.Owes, s.Currency),
			Net:      money.Format(m.Net, s.Currency),
		}
	}
	return resp
}
