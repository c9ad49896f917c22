package expense

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wanderweb/tripkit/internal/expense/split"
	"github.com/wanderweb/tripkit/internal/money"
)

// Common errors
var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrSplitNotFound    = errors.New("split not found")
	ErrNotPayer         = errors.New("only the payer can modify this expense")
	ErrNotSplitOwner    = errors.New("only the split owner can mark it as paid")
	ErrSplitAlreadyPaid = errors.New("split is already marked as paid")
	ErrCannotDelete     = errors.New("cannot delete an expense with paid splits")
	ErrInvalidExpense   = errors.New("invalid expense")
)

// Notifier fans out stored notifications for expense events. Implemented by
// the notification service; failures are logged, never fatal to the expense
// operation itself.
type Notifier interface {
	NotifyExpenseAdded(ctx context.Context, recipientID int64, payerName, amount string, expenseID int64) error
	NotifySplitAssigned(ctx context.Context, recipientID int64, amount string, splitID int64) error
	NotifySplitPaid(ctx context.Context, recipientID int64, username string, splitID int64) error
}

// Service handles expense business logic
type Service struct {
	repo            *Repository
	notifier        Notifier
	policy          split.Policy
	defaultCurrency string
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, notifier Notifier, policy split.Policy, defaultCurrency string) *Service {
	return &Service{
		repo:            repo,
		notifier:        notifier,
		policy:          policy,
		defaultCurrency: defaultCurrency,
	}
}

// CreateExpense validates the request, resolves the splits and persists the
// expense aggregate
func (s *Service) CreateExpense(ctx context.Context, payerID int64, req *CreateExpenseRequest) (*Expense, error) {
	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	amount, category, date, err := s.validateFields(req.Amount, req.Category, req.Date, currency, req.Description)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolveSplits(amount, payerID, currency, req.Participants)
	if err != nil {
		return nil, err
	}

	expense := &Expense{
		GroupID:     req.GroupID,
		PaidBy:      payerID,
		Description: req.Description,
		Amount:      amount,
		Currency:    currency,
		Category:    category,
		Date:        date,
		Splits:      toSplits(resolved),
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, err
	}

	s.notifySplitUsers(ctx, expense)

	return expense, nil
}

// resolveSplits converts the wire participants and runs the split resolver
func (s *Service) resolveSplits(amount, payerID int64, currency string, participants []*SplitParticipant) ([]split.Resolved, error) {
	requests := make([]split.Request, len(participants))
	for i, p := range participants {
		req, err := p.ToSplitRequest(currency)
		if err != nil {
			return nil, err
		}
		requests[i] = req
	}

	return split.Resolve(amount, payerID, requests, s.policy)
}

func toSplits(resolved []split.Resolved) []*Split {
	splits := make([]*Split, len(resolved))
	for i, r := range resolved {
		splits[i] = &Split{
			UserID: r.UserID,
			Amount: r.Amount,
			IsPaid: r.IsPaid,
		}
	}
	return splits
}

func (s *Service) validateFields(amountStr, categoryStr string, dateStr *string, currency, description string) (int64, Category, time.Time, error) {
	if description == "" || len(description) > 255 {
		return 0, "", time.Time{}, errors.Join(ErrInvalidExpense, errors.New("description must be 1-255 characters"))
	}

	if !money.ValidCurrency(currency) {
		return 0, "", time.Time{}, errors.Join(ErrInvalidExpense, errors.New("currency must be an ISO 4217 code"))
	}

	amount, err := money.Parse(amountStr, currency)
	if err != nil {
		return 0, "", time.Time{}, err
	}

	category := Category(categoryStr)
	if categoryStr == "" {
		category = CategoryOther
	}
	if !category.Valid() {
		return 0, "", time.Time{}, errors.Join(ErrInvalidExpense, errors.New("unknown category"))
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if dateStr != nil {
		date, err = time.Parse("2006-01-02", *dateStr)
		if err != nil {
			return 0, "", time.Time{}, errors.Join(ErrInvalidExpense, errors.New("date must be YYYY-MM-DD"))
		}
	}

	return amount, category, date, nil
}

// notifySplitUsers tells each non-payer participant about their new share
func (s *Service) notifySplitUsers(ctx context.Context, expense *Expense) {
	if s.notifier == nil {
		return
	}
	amount := money.Format(expense.Amount, expense.Currency)
	for _, sp := range expense.Splits {
		if sp.UserID == expense.PaidBy {
			continue
		}
		if err := s.notifier.NotifyExpenseAdded(ctx, sp.UserID, expense.PayerUsername, amount, expense.ID); err != nil {
			slog.Error("failed to notify split user", "user_id", sp.UserID, "expense_id", expense.ID, "error", err)
		}
	}
}

// GetExpenseByID retrieves an expense with its splits
func (s *Service) GetExpenseByID(ctx context.Context, id int64) (*Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	return expense, nil
}

// ListExpensesByGroupID retrieves a page of expenses for a group
func (s *Service) ListExpensesByGroupID(ctx context.Context, groupID int64, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByGroupID(ctx, groupID, perPage, offset)
}

// UpdateExpense replaces an expense. Changing the amount, currency or
// participant set re-runs split resolution and replaces the whole split set;
// metadata-only changes keep the existing splits.
func (s *Service) UpdateExpense(ctx context.Context, id, userID int64, req *UpdateExpenseRequest) (*Expense, error) {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	if expense.PaidBy != userID {
		return nil, ErrNotPayer
	}

	description := expense.Description
	if req.Description != nil {
		description = *req.Description
	}
	currency := expense.Currency
	if req.Currency != nil {
		currency = *req.Currency
	}
	amountStr := money.Format(expense.Amount, expense.Currency)
	if req.Amount != nil {
		amountStr = *req.Amount
	}
	categoryStr := string(expense.Category)
	if req.Category != nil {
		categoryStr = *req.Category
	}

	amount, category, date, err := s.validateFields(amountStr, categoryStr, req.Date, currency, description)
	if err != nil {
		return nil, err
	}
	if req.Date == nil {
		date = expense.Date
	}

	splitsChanged := req.Amount != nil || req.Currency != nil || req.Participants != nil
	if splitsChanged && req.Participants == nil {
		return nil, errors.Join(ErrInvalidExpense, errors.New("participants must be resupplied when amount or currency changes"))
	}

	expense.Description = description
	expense.Currency = currency
	expense.Amount = amount
	expense.Category = category
	expense.Date = date

	if splitsChanged {
		resolved, err := s.resolveSplits(amount, expense.PaidBy, currency, req.Participants)
		if err != nil {
			return nil, err
		}
		expense.Splits = toSplits(resolved)
	} else {
		// nil tells the repository to leave the split rows alone
		expense.Splits = nil
	}

	if err := s.repo.Update(ctx, expense); err != nil {
		return nil, err
	}

	if splitsChanged {
		s.notifySplitAssignments(ctx, expense)
	}

	return s.GetExpenseByID(ctx, id)
}

// notifySplitAssignments tells non-payer participants about their recomputed
// share after an update
func (s *Service) notifySplitAssignments(ctx context.Context, expense *Expense) {
	if s.notifier == nil {
		return
	}
	for _, sp := range expense.Splits {
		if sp.UserID == expense.PaidBy {
			continue
		}
		amount := money.Format(sp.Amount, expense.Currency)
		if err := s.notifier.NotifySplitAssigned(ctx, sp.UserID, amount, sp.ID); err != nil {
			slog.Error("failed to notify split user", "user_id", sp.UserID, "expense_id", expense.ID, "error", err)
		}
	}
}

// DeleteExpense deletes an expense if no one has settled a share yet
func (s *Service) DeleteExpense(ctx context.Context, id, userID int64) error {
	expense, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if expense == nil {
		return ErrExpenseNotFound
	}
	if expense.PaidBy != userID {
		return ErrNotPayer
	}

	for _, sp := range expense.Splits {
		if sp.IsPaid && sp.UserID != expense.PaidBy {
			return ErrCannotDelete
		}
	}

	return s.repo.Delete(ctx, id)
}

// MarkSplitPaid lets the split owner record that they settled their share
func (s *Service) MarkSplitPaid(ctx context.Context, splitID, userID int64) (*Split, error) {
	sp, err := s.repo.GetSplitByID(ctx, splitID)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, ErrSplitNotFound
	}
	if sp.UserID != userID {
		return nil, ErrNotSplitOwner
	}
	if sp.IsPaid {
		return nil, ErrSplitAlreadyPaid
	}

	updated, err := s.repo.MarkSplitPaid(ctx, splitID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if expense, err := s.repo.GetByID(ctx, sp.ExpenseID); err == nil && expense != nil {
			if err := s.notifier.NotifySplitPaid(ctx, expense.PaidBy, sp.Username, splitID); err != nil {
				slog.Error("failed to notify payer", "split_id", splitID, "error", err)
			}
		}
	}

	return updated, nil
}
