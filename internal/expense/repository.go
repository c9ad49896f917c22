package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles expense and split data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an expense and its splits in one transaction. The expense
// and split structs are filled in with generated ids and timestamps.
func (r *Repository) Create(ctx context.Context, e *Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (group_id, paid_by, description, amount, currency, category, expense_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		e.GroupID,
		e.PaidBy,
		e.Description,
		e.Amount,
		e.Currency,
		e.Category,
		e.Date,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	if err := insertSplits(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}

	return nil
}

// insertSplits writes the expense's split rows within tx
func insertSplits(ctx context.Context, tx *sql.Tx, e *Expense) error {
	query := `
		INSERT INTO expense_splits (expense_id, user_id, amount, is_paid)
		VALUES ($1, $2, $3, $4)
		RETURNING id, updated_at
	`

	for _, s := range e.Splits {
		s.ExpenseID = e.ID
		if err := tx.QueryRowContext(ctx, query, e.ID, s.UserID, s.Amount, s.IsPaid).Scan(&s.ID, &s.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create split: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an expense with its splits
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.paid_by, e.description, e.amount, e.currency, e.category,
		       e.expense_date, e.created_at, e.updated_at, u.username
		FROM expenses e
		JOIN users u ON e.paid_by = u.id
		WHERE e.id = $1
	`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PaidBy,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.Category,
		&expense.Date,
		&expense.CreatedAt,
		&expense.UpdatedAt,
		&expense.PayerUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	splitsByExpense, err := r.getSplits(ctx, []int64{expense.ID})
	if err != nil {
		return nil, err
	}
	expense.Splits = splitsByExpense[expense.ID]

	return expense, nil
}

// getSplits loads the splits for a set of expenses, keyed by expense id
func (r *Repository) getSplits(ctx context.Context, expenseIDs []int64) (map[int64][]*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.user_id, s.amount, s.is_paid, s.updated_at, u.username
		FROM expense_splits s
		JOIN users u ON s.user_id = u.id
		WHERE s.expense_id = ANY($1)
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(expenseIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[int64][]*Split)
	for rows.Next() {
		split := &Split{}
		if err := rows.Scan(
			&split.ID,
			&split.ExpenseID,
			&split.UserID,
			&split.Amount,
			&split.IsPaid,
			&split.UpdatedAt,
			&split.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits[split.ExpenseID] = append(splits[split.ExpenseID], split)
	}

	return splits, rows.Err()
}

// ListByGroupID retrieves a page of expenses for a group, without splits
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT e.id, e.group_id, e.paid_by, e.description, e.amount, e.currency, e.category,
		       e.expense_date, e.created_at, e.updated_at, u.username
		FROM expenses e
		JOIN users u ON e.paid_by = u.id
		WHERE e.group_id = $1
		ORDER BY e.expense_date DESC, e.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

// ListByGroupWithSplits retrieves every expense of a group, splits included.
// Balance and summary computations consume this as their snapshot.
func (r *Repository) ListByGroupWithSplits(ctx context.Context, groupID int64) ([]*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.paid_by, e.description, e.amount, e.currency, e.category,
		       e.expense_date, e.created_at, e.updated_at, u.username
		FROM expenses e
		JOIN users u ON e.paid_by = u.id
		WHERE e.group_id = $1
		ORDER BY e.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}

	return r.attachSplits(ctx, expenses)
}

// ListByUserWithSplits retrieves every expense the user pays for or
// participates in, across all groups and personal expenses
func (r *Repository) ListByUserWithSplits(ctx context.Context, userID int64) ([]*Expense, error) {
	query := `
		SELECT DISTINCT e.id, e.group_id, e.paid_by, e.description, e.amount, e.currency, e.category,
		       e.expense_date, e.created_at, e.updated_at, u.username
		FROM expenses e
		JOIN users u ON e.paid_by = u.id
		LEFT JOIN expense_splits s ON s.expense_id = e.id
		WHERE e.paid_by = $1 OR s.user_id = $1
		ORDER BY e.id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}

	return r.attachSplits(ctx, expenses)
}

// attachSplits loads and attaches split rows for the given expenses
func (r *Repository) attachSplits(ctx context.Context, expenses []*Expense) ([]*Expense, error) {
	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]int64, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}

	splits, err := r.getSplits(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Splits = splits[e.ID]
	}

	return expenses, nil
}

func scanExpenses(rows *sql.Rows) ([]*Expense, error) {
	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.PaidBy,
			&expense.Description,
			&expense.Amount,
			&expense.Currency,
			&expense.Category,
			&expense.Date,
			&expense.CreatedAt,
			&expense.UpdatedAt,
			&expense.PayerUsername,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

// Update replaces an expense and, when e.Splits is non-nil, its whole split
// set in one transaction
func (r *Repository) Update(ctx context.Context, e *Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE expenses
		SET description = $2, amount = $3, currency = $4, category = $5,
		    expense_date = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		e.ID,
		e.Description,
		e.Amount,
		e.Currency,
		e.Category,
		e.Date,
	).Scan(&e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	if e.Splits != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = $1`, e.ID); err != nil {
			return fmt.Errorf("failed to clear splits: %w", err)
		}
		if err := insertSplits(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense update: %w", err)
	}

	return nil
}

// Delete removes an expense; splits go with it via ON DELETE CASCADE
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// GetSplitByID retrieves a single split
func (r *Repository) GetSplitByID(ctx context.Context, id int64) (*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.user_id, s.amount, s.is_paid, s.updated_at, u.username
		FROM expense_splits s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = $1
	`

	split := &Split{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&split.ID,
		&split.ExpenseID,
		&split.UserID,
		&split.Amount,
		&split.IsPaid,
		&split.UpdatedAt,
		&split.Username,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get split: %w", err)
	}

	return split, nil
}

// MarkSplitPaid flips a split's settlement flag
func (r *Repository) MarkSplitPaid(ctx context.Context, id int64) (*Split, error) {
	query := `
		UPDATE expense_splits
		SET is_paid = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING id, expense_id, user_id, amount, is_paid, updated_at
	`

	split := &Split{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&split.ID,
		&split.ExpenseID,
		&split.UserID,
		&split.Amount,
		&split.IsPaid,
		&split.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark split paid: %w", err)
	}

	return split, nil
}
