// Package testutil provides shared fixtures for centsible tests.
package testutil

import (
	"context"
	"testing"

	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/service"
	"github.com/centsible/centsible/internal/storage"
)

// TestDB wraps an in-memory migrated store plus the reference data it was
// seeded with.
type TestDB struct {
	Storage    service.Storage
	t          *testing.T
	Categories []model.Category
	Methods    []model.PaymentMethod
	Rules      []model.ImportRule
}

// SeedSpec declares reference data to create before a test runs. Rules
// reference categories by name and are created in declaration order, which
// is also their match order.
type SeedSpec struct {
	Categories []string
	Methods    []string
	Rules      []SeedRule
}

// SeedRule is one keyword-to-category seed entry.
type SeedRule struct {
	Keyword  string
	Category string
}

// SetupTestDB creates a migrated in-memory database with the given seed
// data and registers cleanup. Note the migrations also seed the default
// category set; seeded categories are created in addition to those.
func SetupTestDB(t *testing.T, seed SeedSpec) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db := &TestDB{Storage: store, t: t}

	byName := make(map[string]string)
	for _, name := range seed.Categories {
		cat, createErr := store.CreateCategory(ctx, name, "", "")
		if createErr != nil {
			t.Fatalf("failed to seed category %q: %v", name, createErr)
		}
		byName[name] = cat.ID
		db.Categories = append(db.Categories, *cat)
	}

	for _, name := range seed.Methods {
		m, createErr := store.CreatePaymentMethod(ctx, name, "credit_card")
		if createErr != nil {
			t.Fatalf("failed to seed payment method %q: %v", name, createErr)
		}
		db.Methods = append(db.Methods, *m)
	}

	for _, r := range seed.Rules {
		categoryID, ok := byName[r.Category]
		if !ok {
			t.Fatalf("seed rule %q references unseeded category %q", r.Keyword, r.Category)
		}
		rule, createErr := store.CreateImportRule(ctx, r.Keyword, categoryID)
		if createErr != nil {
			t.Fatalf("failed to seed rule %q: %v", r.Keyword, createErr)
		}
		db.Rules = append(db.Rules, *rule)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return db
}

// CategoryID returns the id of a seeded category by name or fails the test.
func (db *TestDB) CategoryID(name string) string {
	db.t.Helper()
	for _, cat := range db.Categories {
		if cat.Name == name {
			return cat.ID
		}
	}
	db.t.Fatalf("category %q was not seeded", name)
	return ""
}
