package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the main storage with the transaction.
func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	return t.storage.getCategoriesTx(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, name, icon, color string) (*model.Category, error) {
	return t.storage.createCategoryTx(ctx, t.tx, name, icon, color)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id string) error {
	return t.storage.deleteCategoryTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return t.storage.getPaymentMethodsTx(ctx, t.tx)
}

func (t *sqliteTransaction) CreatePaymentMethod(ctx context.Context, name, methodType string) (*model.PaymentMethod, error) {
	return t.storage.createPaymentMethodTx(ctx, t.tx, name, methodType)
}

func (t *sqliteTransaction) DeletePaymentMethod(ctx context.Context, id string) error {
	return t.storage.deletePaymentMethodTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetImportRules(ctx context.Context) ([]model.ImportRule, error) {
	return t.storage.getImportRulesTx(ctx, t.tx)
}

func (t *sqliteTransaction) CreateImportRule(ctx context.Context, keyword, categoryID string) (*model.ImportRule, error) {
	return t.storage.createImportRuleTx(ctx, t.tx, keyword, categoryID)
}

func (t *sqliteTransaction) DeleteImportRule(ctx context.Context, id string) error {
	return t.storage.deleteImportRuleTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) InsertExpenses(ctx context.Context, expenses []model.Expense) error {
	if err := validateExpenses(expenses); err != nil {
		return err
	}
	return t.storage.insertExpensesTx(ctx, t.tx, expenses)
}

func (t *sqliteTransaction) GetExpenses(ctx context.Context, filter service.ExpenseFilter) ([]model.Expense, error) {
	return t.storage.getExpensesTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) DeleteExpense(ctx context.Context, id string) error {
	return t.storage.deleteExpenseTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
