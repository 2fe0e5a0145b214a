package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
	"github.com/google/uuid"
)

// GetPaymentMethods returns all payment methods in creation order. The
// import engine defaults new candidates to the first method in this list,
// so the ordering must be stable.
func (s *SQLiteStorage) GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getPaymentMethods(ctx, s.db)
}

func (s *SQLiteStorage) getPaymentMethodsTx(ctx context.Context, tx *sql.Tx) ([]model.PaymentMethod, error) {
	return s.getPaymentMethods(ctx, tx)
}

func (s *SQLiteStorage) getPaymentMethods(ctx context.Context, q queryable) ([]model.PaymentMethod, error) {
	query := `
		SELECT id, name, type, created_at
		FROM payment_methods
		ORDER BY rowid`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment methods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var methods []model.PaymentMethod
	for rows.Next() {
		var m model.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		methods = append(methods, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment methods: %w", err)
	}

	return methods, nil
}

// CreatePaymentMethod creates a new payment method.
func (s *SQLiteStorage) CreatePaymentMethod(ctx context.Context, name, methodType string) (*model.PaymentMethod, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.createPaymentMethod(ctx, s.db, name, methodType)
}

func (s *SQLiteStorage) createPaymentMethodTx(ctx context.Context, tx *sql.Tx, name, methodType string) (*model.PaymentMethod, error) {
	return s.createPaymentMethod(ctx, tx, name, methodType)
}

func (s *SQLiteStorage) createPaymentMethod(ctx context.Context, q queryable, name, methodType string) (*model.PaymentMethod, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if err := validateString(methodType, "type"); err != nil {
		return nil, err
	}

	m := model.PaymentMethod{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      methodType,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO payment_methods (id, name, type, created_at)
		VALUES (?, ?, ?, ?)`

	if _, err := q.ExecContext(ctx, query, m.ID, m.Name, m.Type, m.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create payment method: %w", err)
	}

	slog.Info("created payment method", "name", name, "type", methodType)
	return &m, nil
}

// DeletePaymentMethod removes a payment method. Referencing expenses keep
// their rows with a null payment method.
func (s *SQLiteStorage) DeletePaymentMethod(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deletePaymentMethod(ctx, s.db, id)
}

func (s *SQLiteStorage) deletePaymentMethodTx(ctx context.Context, tx *sql.Tx, id string) error {
	return s.deletePaymentMethod(ctx, tx, id)
}

func (s *SQLiteStorage) deletePaymentMethod(ctx context.Context, q queryable, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment method: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("payment method %s: %w", id, common.ErrNotFound)
	}

	return nil
}
