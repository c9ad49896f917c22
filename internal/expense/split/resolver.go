package split

import (
	"errors"
	"fmt"
)

// SplitType defines how a single participant's share is derived
type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeFixed      SplitType = "FIXED"
)

// Valid reports whether t is a known split type
func (t SplitType) Valid() bool {
	switch t {
	case SplitTypeEqual, SplitTypePercentage, SplitTypeFixed:
		return true
	}
	return false
}

// Request describes one participant in a split request. Percentage is set for
// PERCENTAGE entries, Amount (minor units) for FIXED entries; EQUAL entries
// carry neither. Types may be mixed within a single request.
type Request struct {
	UserID     int64     `json:"user_id"`
	Type       SplitType `json:"split_type"`
	Percentage *float64  `json:"percentage,omitempty"`
	Amount     *int64    `json:"amount,omitempty"`
}

// Resolved is one participant's computed share, in minor units
type Resolved struct {
	UserID int64 `json:"user_id"`
	Amount int64 `json:"amount"`
	IsPaid bool  `json:"is_paid"`
}

// Policy holds per-call business rules. Passed explicitly so behavior is
// deterministic per invocation; there is no package-level configuration.
type Policy struct {
	// RequirePayerInSplit rejects requests where the payer is not
	// among the participants
	RequirePayerInSplit bool
}

var (
	ErrInvalidSplitData    = errors.New("invalid split data")
	ErrSplitAmountMismatch = errors.New("split amounts do not sum to expense total")
	ErrPayerNotInSplit     = errors.New("payer must be one of the split participants")
)

// invalidf wraps ErrInvalidSplitData so callers can dispatch with errors.Is
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSplitData, fmt.Sprintf(format, args...))
}

// Resolve turns a split request into per-participant shares that sum exactly
// to total. FIXED entries are taken verbatim; PERCENTAGE entries are computed
// against the total remaining after FIXED; EQUAL entries divide whatever is
// left, earliest-listed participants absorbing the integer remainder. Output
// preserves input order. The payer's own share, if present, is created
// already settled.
func Resolve(total int64, payerID int64, requests []Request, policy Policy) ([]Resolved, error) {
	if total <= 0 {
		return nil, invalidf("expense amount must be positive")
	}
	if len(requests) == 0 {
		return nil, invalidf("at least one participant is required")
	}

	seen := make(map[int64]bool, len(requests))
	payerInSplit := false
	equalCount, fixedCount := 0, 0
	for _, req := range requests {
		if !req.Type.Valid() {
			return nil, invalidf("unknown split type %q for user %d", req.Type, req.UserID)
		}
		if seen[req.UserID] {
			return nil, invalidf("duplicate participant %d", req.UserID)
		}
		seen[req.UserID] = true
		if req.UserID == payerID {
			payerInSplit = true
		}
		switch req.Type {
		case SplitTypeEqual:
			equalCount++
		case SplitTypeFixed:
			fixedCount++
		}
	}

	if policy.RequirePayerInSplit && !payerInSplit {
		return nil, ErrPayerNotInSplit
	}

	amounts := make([]int64, len(requests))

	fixedSum, err := applyFixed(total, requests, amounts)
	if err != nil {
		return nil, err
	}
	if fixedCount == len(requests) && fixedSum != total {
		return nil, invalidf("fixed amounts sum to %d, expense total is %d", fixedSum, total)
	}
	remainder := total - fixedSum

	percentSum, err := applyPercentage(remainder, requests, amounts, equalCount == 0)
	if err != nil {
		return nil, err
	}

	if err := applyEqual(remainder-percentSum, requests, amounts); err != nil {
		return nil, err
	}

	resolved := make([]Resolved, len(requests))
	var sum int64
	for i, req := range requests {
		resolved[i] = Resolved{
			UserID: req.UserID,
			Amount: amounts[i],
			IsPaid: req.UserID == payerID,
		}
		sum += amounts[i]
	}

	// Unreachable given the remainder distribution above; kept as a guard
	// on the sum invariant.
	if sum != total {
		return nil, fmt.Errorf("%w: computed %d, expected %d", ErrSplitAmountMismatch, sum, total)
	}

	return resolved, nil
}
