package expense

import (
	"time"

	"github.com/wanderweb/tripkit/internal/expense/split"
	"github.com/wanderweb/tripkit/internal/money"
)

// SplitParticipant is one participant entry in a create/update request.
// Amount is a decimal string ("12.50") for FIXED entries; Percentage is set
// for PERCENTAGE entries; EQUAL entries carry neither.
type SplitParticipant struct {
	UserID     int64    `json:"user_id" validate:"required"`
	SplitType  string   `json:"split_type" validate:"required,oneof=EQUAL PERCENTAGE FIXED"`
	Percentage *float64 `json:"percentage,omitempty"`
	Amount     *string  `json:"amount,omitempty"`
}

// ToSplitRequest converts the wire entry to the resolver's input type,
// parsing the fixed amount into minor units of the expense currency.
func (p *SplitParticipant) ToSplitRequest(currency string) (split.Request, error) {
	req := split.Request{
		UserID:     p.UserID,
		Type:       split.SplitType(p.SplitType),
		Percentage: p.Percentage,
	}
	if p.Amount != nil {
		minor, err := money.Parse(*p.Amount, currency)
		if err != nil {
			return split.Request{}, err
		}
		req.Amount = &minor
	}
	return req, nil
}

// CreateExpenseRequest represents the request to create an expense.
// Amount is a decimal string converted to minor units at the boundary.
type CreateExpenseRequest struct {
	GroupID      *int64              `json:"group_id,omitempty"`
	Description  string              `json:"description" validate:"required,min=1,max=255"`
	Amount       string              `json:"amount" validate:"required"`
	Currency     string              `json:"currency"`
	Category     string              `json:"category"`
	Date         *string             `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Participants []*SplitParticipant `json:"participants" validate:"required,min=1"`
}

// UpdateExpenseRequest represents the request to update an expense.
// Updating the amount, currency or participants replaces the whole split set
// after re-validation; metadata-only updates leave the splits untouched.
type UpdateExpenseRequest struct {
	Description  *string             `json:"description,omitempty" validate:"omitempty,min=1,max=255"`
	Amount       *string             `json:"amount,omitempty"`
	Currency     *string             `json:"currency,omitempty"`
	Category     *string             `json:"category,omitempty"`
	Date         *string             `json:"date,omitempty"`
	Participants []*SplitParticipant `json:"participants,omitempty"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID            int64            `json:"id"`
	GroupID       *int64           `json:"group_id,omitempty"`
	PaidBy        int64            `json:"paid_by"`
	PayerUsername string           `json:"payer_username,omitempty"`
	Description   string           `json:"description"`
	Amount        string           `json:"amount"`
	Currency      string           `json:"currency"`
	Category      Category         `json:"category"`
	Date          string           `json:"date"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
	Splits        []*SplitResponse `json:"splits,omitempty"`
}

// SplitResponse represents the response for a split
type SplitResponse struct {
	ID        int64  `json:"id"`
	ExpenseID int64  `json:"expense_id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	Amount    string `json:"amount"`
	IsPaid    bool   `json:"is_paid"`
	UpdatedAt string `json:"updated_at"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:            e.ID,
		GroupID:       e.GroupID,
		PaidBy:        e.PaidBy,
		PayerUsername: e.PayerUsername,
		Description:   e.Description,
		Amount:        money.Format(e.Amount, e.Currency),
		Currency:      e.Currency,
		Category:      e.Category,
		Date:          e.Date.Format("2006-01-02"),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     e.UpdatedAt.Format(time.RFC3339),
	}
	if len(e.Splits) > 0 {
		resp.Splits = make([]*SplitResponse, len(e.Splits))
		for i, s := range e.Splits {
			resp.Splits[i] = s.ToResponse(e.Currency)
		}
	}
	return resp
}

// ToResponse converts a Split model to a SplitResponse DTO
func (s *Split) ToResponse(currency string) *SplitResponse {
	return &SplitResponse{
		ID:        s.ID,
		ExpenseID: s.ExpenseID,
		UserID:    s.UserID,
		Username:  s.Username,
		Amount:    money.Format(s.Amount, currency),
		IsPaid:    s.IsPaid,
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}
