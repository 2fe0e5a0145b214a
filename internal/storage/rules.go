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

// GetImportRules returns all import rules in stored order. Rule matching is
// first-match-wins, so callers must not reorder the result.
func (s *SQLiteStorage) GetImportRules(ctx context.Context) ([]model.ImportRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getImportRules(ctx, s.db)
}

func (s *SQLiteStorage) getImportRulesTx(ctx context.Context, tx *sql.Tx) ([]model.ImportRule, error) {
	return s.getImportRules(ctx, tx)
}

func (s *SQLiteStorage) getImportRules(ctx context.Context, q queryable) ([]model.ImportRule, error) {
	query := `
		SELECT id, keyword, category_id, created_at
		FROM import_rules
		ORDER BY rowid`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query import rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.ImportRule
	for rows.Next() {
		var r model.ImportRule
		if err := rows.Scan(&r.ID, &r.Keyword, &r.CategoryID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import rule: %w", err)
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import rules: %w", err)
	}

	slog.Debug("retrieved import rules", "count", len(rules))
	return rules, nil
}

// CreateImportRule creates a new keyword-to-category rule.
func (s *SQLiteStorage) CreateImportRule(ctx context.Context, keyword, categoryID string) (*model.ImportRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.createImportRule(ctx, s.db, keyword, categoryID)
}

func (s *SQLiteStorage) createImportRuleTx(ctx context.Context, tx *sql.Tx, keyword, categoryID string) (*model.ImportRule, error) {
	return s.createImportRule(ctx, tx, keyword, categoryID)
}

func (s *SQLiteStorage) createImportRule(ctx context.Context, q queryable, keyword, categoryID string) (*model.ImportRule, error) {
	if err := validateString(keyword, "keyword"); err != nil {
		return nil, err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return nil, err
	}

	r := model.ImportRule{
		ID:         uuid.NewString(),
		Keyword:    keyword,
		CategoryID: categoryID,
		CreatedAt:  time.Now().UTC(),
	}

	query := `
		INSERT INTO import_rules (id, keyword, category_id, created_at)
		VALUES (?, ?, ?, ?)`

	if _, err := q.ExecContext(ctx, query, r.ID, r.Keyword, r.CategoryID, r.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create import rule: %w", err)
	}

	slog.Info("created import rule", "keyword", keyword, "category_id", categoryID)
	return &r, nil
}

// DeleteImportRule removes an import rule.
func (s *SQLiteStorage) DeleteImportRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteImportRule(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteImportRuleTx(ctx context.Context, tx *sql.Tx, id string) error {
	return s.deleteImportRule(ctx, tx, id)
}

func (s *SQLiteStorage) deleteImportRule(ctx context.Context, q queryable, id string) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `DELETE FROM import_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete import rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("import rule %s: %w", id, common.ErrNotFound)
	}

	return nil
}
