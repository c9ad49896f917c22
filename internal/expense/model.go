package expense

import "time"

// Category is an enumerated tag on an expense
type Category string

const (
	CategoryFood          Category = "FOOD"
	CategoryTransport     Category = "TRANSPORT"
	CategoryAccommodation Category = "ACCOMMODATION"
	CategoryActivity      Category = "ACTIVITY"
	CategoryShopping      Category = "SHOPPING"
	CategoryOther         Category = "OTHER"
)

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryAccommodation,
		CategoryActivity, CategoryShopping, CategoryOther:
		return true
	}
	return false
}

// Expense represents one shared cost. Amount is in minor units of Currency.
// GroupID is nil for personal expenses recorded outside any trip group.
type Expense struct {
	ID          int64     `json:"id"`
	GroupID     *int64    `json:"group_id,omitempty"`
	PaidBy      int64     `json:"paid_by"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Category    Category  `json:"category"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Populated via JOIN
	PayerUsername string `json:"payer_username,omitempty"`

	// Owned splits; loaded with the expense, never queried on their own
	Splits []*Split `json:"splits,omitempty"`
}

// Split is one member's share of an expense, in the expense's currency.
// IsPaid tracks settlement of this share independently of the expense.
type Split struct {
	ID        int64     `json:"id"`
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	IsPaid    bool      `json:"is_paid"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated via JOIN
	Username string `json:"username,omitempty"`
}

// SplitsTotal sums the split amounts of the expense
func (e *Expense) SplitsTotal() int64 {
	var total int64
	for _, s := range e.Splits {
		total += s.Amount
	}
	return total
}
