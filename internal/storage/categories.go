package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
	"github.com/google/uuid"
)

// GetCategories returns all categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategories(ctx, s.db)
}

func (s *SQLiteStorage) getCategoriesTx(ctx context.Context, tx *sql.Tx) ([]model.Category, error) {
	return s.getCategories(ctx, tx)
}

func (s *SQLiteStorage) getCategories(ctx context.Context, q queryable) ([]model.Category, error) {
	query := `
		SELECT id, name, COALESCE(icon, ''), COALESCE(color, ''), is_default, created_at
		FROM categories
		ORDER BY name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Icon, &cat.Color, &cat.IsDefault, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByID returns a category by its id, or common.ErrNotFound.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getCategoryByID(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Category, error) {
	return s.getCategoryByID(ctx, tx, id)
}

func (s *SQLiteStorage) getCategoryByID(ctx context.Context, q queryable, id string) (*model.Category, error) {
	query := `
		SELECT id, name, COALESCE(icon, ''), COALESCE(color, ''), is_default, created_at
		FROM categories
		WHERE id = ?`

	var cat model.Category
	err := q.QueryRowContext(ctx, query, id).Scan(
		&cat.ID, &cat.Name, &cat.Icon, &cat.Color, &cat.IsDefault, &cat.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// CreateCategory creates a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, icon, color string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.createCategory(ctx, s.db, name, icon, color)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, tx *sql.Tx, name, icon, color string) (*model.Category, error) {
	return s.createCategory(ctx, tx, name, icon, color)
}

func (s *SQLiteStorage) createCategory(ctx context.Context, q queryable, name, icon, color string) (*model.Category, error) {
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	cat := model.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Icon:      icon,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO categories (id, name, icon, color, is_default, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`

	if _, err := q.ExecContext(ctx, query, cat.ID, cat.Name, cat.Icon, cat.Color, cat.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("created category", "name", name, "id", cat.ID)
	return &cat, nil
}

// DeleteCategory removes a category. Referencing expenses keep their rows
// with a null category; dependent import rules are deleted by the schema's
// cascade.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteCategory(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteCategoryTx(ctx context.Context, tx *sql.Tx, id string) error {
	return s.deleteCategory(ctx, tx, id)
}

func (s *SQLiteStorage) deleteCategory(ctx context.Context, q queryable, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}

	return nil
}
