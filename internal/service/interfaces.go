// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/centsible/centsible/internal/model"
)

// ExpenseFilter defines filtering options for expense queries.
type ExpenseFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	CreateCategory(ctx context.Context, name, icon, color string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Payment method operations
	GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, name, methodType string) (*model.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id string) error

	// Import rule operations. GetImportRules returns rules in stored order;
	// rule matching depends on that order being stable.
	GetImportRules(ctx context.Context) ([]model.ImportRule, error)
	CreateImportRule(ctx context.Context, keyword, categoryID string) (*model.ImportRule, error)
	DeleteImportRule(ctx context.Context, id string) error

	// Expense operations. InsertExpenses is atomic: either every row is
	// persisted or none are.
	InsertExpenses(ctx context.Context, expenses []model.Expense) error
	GetExpenses(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// ImportStats shows the results of an import session.
type ImportStats struct {
	Imported int
	Skipped  int
	Duration time.Duration
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
