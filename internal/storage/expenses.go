package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/service"
)

// InsertExpenses saves a batch of expenses atomically. All rows are written
// inside one transaction; any failure leaves zero rows committed.
func (s *SQLiteStorage) InsertExpenses(ctx context.Context, expenses []model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpenses(expenses); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.insertExpensesTx(ctx, tx, expenses); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expenses: %w", err)
	}

	slog.Info("inserted expense batch", "count", len(expenses))
	return nil
}

func (s *SQLiteStorage) insertExpensesTx(ctx context.Context, tx *sql.Tx, expenses []model.Expense) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO expenses (
			id, date, amount, comment, category_id, payment_method_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range expenses {
		_, err = stmt.ExecContext(ctx,
			e.ID,
			e.Date,
			e.Amount,
			e.Comment,
			e.CategoryID,
			e.PaymentMethodID,
			e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense %s: %w", e.ID, err)
		}
	}

	return nil
}

// GetExpenses returns expenses matching the filter, newest first.
func (s *SQLiteStorage) GetExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getExpenses(ctx, s.db, filter)
}

func (s *SQLiteStorage) getExpensesTx(ctx context.Context, tx *sql.Tx, filter service.ExpenseFilter) ([]model.Expense, error) {
	return s.getExpenses(ctx, tx, filter)
}

func (s *SQLiteStorage) getExpenses(ctx context.Context, q queryable, filter service.ExpenseFilter) ([]model.Expense, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, ErrInvalidDateRange
	}

	query := `
		SELECT id, date, amount, COALESCE(comment, ''), category_id, payment_method_id, created_at
		FROM expenses
		WHERE 1=1`
	args := make([]any, 0, 4)

	if filter.StartDate != nil {
		query += ` AND date >= ?`
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += ` AND date <= ?`
		args = append(args, *filter.EndDate)
	}

	query += ` ORDER BY date DESC, created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &e.Comment, &e.CategoryID, &e.PaymentMethodID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// DeleteExpense removes a single expense by id.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteExpense(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteExpenseTx(ctx context.Context, tx *sql.Tx, id string) error {
	return s.deleteExpense(ctx, tx, id)
}

func (s *SQLiteStorage) deleteExpense(ctx context.Context, q queryable, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}

	return nil
}
