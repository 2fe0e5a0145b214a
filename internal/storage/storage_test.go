package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/service"
	"github.com/centsible/centsible/internal/storage"
	"github.com/centsible/centsible/internal/testutil"
)

func date(s string) time.Time {
	d, err := time.Parse(model.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return d
}

func expense(id, day string, amount float64, categoryID, methodID *string) model.Expense {
	return model.Expense{
		ID:              id,
		Date:            date(day),
		Amount:          amount,
		Comment:         "test expense " + id,
		CategoryID:      categoryID,
		PaymentMethodID: methodID,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestMigrate(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{})
	ctx := context.Background()

	categories, err := db.Storage.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories() error = %v", err)
	}
	if len(categories) != 8 {
		t.Fatalf("got %d seeded categories, want 8", len(categories))
	}
	for _, cat := range categories {
		if !cat.IsDefault {
			t.Errorf("seeded category %q is not marked default", cat.Name)
		}
	}

	// Re-running migrations is a no-op: no duplicate seeds, no errors.
	if err := db.Storage.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	categories, err = db.Storage.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories() after re-migrate error = %v", err)
	}
	if len(categories) != 8 {
		t.Errorf("got %d categories after re-migrate, want 8", len(categories))
	}
}

func TestCategoryCRUD(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{})
	ctx := context.Background()

	cat, err := db.Storage.CreateCategory(ctx, "Travel", "plane", "#123456")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if cat.IsDefault {
		t.Error("user-created category must not be marked default")
	}

	got, err := db.Storage.GetCategoryByID(ctx, cat.ID)
	if err != nil {
		t.Fatalf("GetCategoryByID() error = %v", err)
	}
	if got.Name != "Travel" || got.Icon != "plane" || got.Color != "#123456" {
		t.Errorf("GetCategoryByID() = %+v, want created values", got)
	}

	// Category names are unique.
	if _, err := db.Storage.CreateCategory(ctx, "Travel", "", ""); err == nil {
		t.Error("CreateCategory() with duplicate name succeeded, want error")
	}

	if err := db.Storage.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if _, err := db.Storage.GetCategoryByID(ctx, cat.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetCategoryByID() after delete error = %v, want ErrNotFound", err)
	}
	if err := db.Storage.DeleteCategory(ctx, cat.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("second DeleteCategory() error = %v, want ErrNotFound", err)
	}
}

func TestPaymentMethodOrder(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{
		Methods: []string{"Visa", "Amex", "Cash"},
	})
	ctx := context.Background()

	methods, err := db.Storage.GetPaymentMethods(ctx)
	if err != nil {
		t.Fatalf("GetPaymentMethods() error = %v", err)
	}
	if len(methods) != 3 {
		t.Fatalf("got %d methods, want 3", len(methods))
	}
	for i, want := range []string{"Visa", "Amex", "Cash"} {
		if methods[i].Name != want {
			t.Errorf("methods[%d].Name = %q, want %q (creation order)", i, methods[i].Name, want)
		}
	}
}

func TestImportRuleOrder(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{
		Categories: []string{"Coffee", "Subscriptions"},
		Rules: []testutil.SeedRule{
			{Keyword: "amazon", Category: "Coffee"},
			{Keyword: "amazon prime", Category: "Subscriptions"},
			{Keyword: "starbucks", Category: "Coffee"},
		},
	})
	ctx := context.Background()

	rules, err := db.Storage.GetImportRules(ctx)
	if err != nil {
		t.Fatalf("GetImportRules() error = %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(rules))
	}
	for i, want := range []string{"amazon", "amazon prime", "starbucks"} {
		if rules[i].Keyword != want {
			t.Errorf("rules[%d].Keyword = %q, want %q (creation order)", i, rules[i].Keyword, want)
		}
	}

	if err := db.Storage.DeleteImportRule(ctx, rules[1].ID); err != nil {
		t.Fatalf("DeleteImportRule() error = %v", err)
	}
	rules, err = db.Storage.GetImportRules(ctx)
	if err != nil {
		t.Fatalf("GetImportRules() after delete error = %v", err)
	}
	if len(rules) != 2 || rules[0].Keyword != "amazon" || rules[1].Keyword != "starbucks" {
		t.Errorf("rules after delete = %v, want amazon then starbucks", rules)
	}
}

func TestDeleteCategoryCascadesRules(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{
		Categories: []string{"Coffee"},
		Rules: []testutil.SeedRule{
			{Keyword: "starbucks", Category: "Coffee"},
		},
	})
	ctx := context.Background()

	if err := db.Storage.DeleteCategory(ctx, db.CategoryID("Coffee")); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}

	rules, err := db.Storage.GetImportRules(ctx)
	if err != nil {
		t.Fatalf("GetImportRules() error = %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("got %d rules after category delete, want 0 (cascade)", len(rules))
	}
}

func TestInsertExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{
		Categories: []string{"Coffee"},
		Methods:    []string{"Visa"},
	})
	ctx := context.Background()

	categoryID := db.CategoryID("Coffee")
	methodID := db.Methods[0].ID

	batch := []model.Expense{
		expense("e1", "2024-01-05", 4.50, &categoryID, &methodID),
		expense("e2", "2024-01-06", 32.18, nil, &methodID),
		expense("e3", "2024-01-06", 55.00, &categoryID, nil),
	}
	if err := db.Storage.InsertExpenses(ctx, batch); err != nil {
		t.Fatalf("InsertExpenses() error = %v", err)
	}

	got, err := db.Storage.GetExpenses(ctx, service.ExpenseFilter{})
	if err != nil {
		t.Fatalf("GetExpenses() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d expenses, want 3", len(got))
	}
	// Newest first.
	if got[len(got)-1].ID != "e1" {
		t.Errorf("oldest expense = %q, want e1", got[len(got)-1].ID)
	}
}

func TestInsertExpenses_Atomicity(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{})
	ctx := context.Background()

	// The third row reuses e1's primary key, so the whole batch must fail
	// and leave zero rows behind.
	batch := []model.Expense{
		expense("e1", "2024-01-05", 4.50, nil, nil),
		expense("e2", "2024-01-06", 32.18, nil, nil),
		expense("e1", "2024-01-07", 55.00, nil, nil),
	}
	if err := db.Storage.InsertExpenses(ctx, batch); err == nil {
		t.Fatal("InsertExpenses() with duplicate id succeeded, want error")
	}

	got, err := db.Storage.GetExpenses(ctx, service.ExpenseFilter{})
	if err != nil {
		t.Fatalf("GetExpenses() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d expenses after failed batch, want 0", len(got))
	}
}

func TestInsertExpenses_EmptyBatch(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{})
	ctx := context.Background()

	if err := db.Storage.InsertExpenses(ctx, []model.Expense{}); err == nil {
		t.Error("InsertExpenses() with empty slice succeeded, want error")
	}
	if err := db.Storage.InsertExpenses(ctx, nil); err == nil {
		t.Error("InsertExpenses() with nil slice succeeded, want error")
	}
}

func TestGetExpenses_DateFilter(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{})
	ctx := context.Background()

	batch := []model.Expense{
		expense("e1", "2024-01-05", 1, nil, nil),
		expense("e2", "2024-02-05", 2, nil, nil),
		expense("e3", "2024-03-05", 3, nil, nil),
	}
	if err := db.Storage.InsertExpenses(ctx, batch); err != nil {
		t.Fatalf("InsertExpenses() error = %v", err)
	}

	start := date("2024-01-10")
	end := date("2024-02-10")
	got, err := db.Storage.GetExpenses(ctx, service.ExpenseFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatalf("GetExpenses() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "e2" {
		t.Errorf("filtered expenses = %v, want just e2", got)
	}

	limited, err := db.Storage.GetExpenses(ctx, service.ExpenseFilter{Limit: 2})
	if err != nil {
		t.Fatalf("GetExpenses() with limit error = %v", err)
	}
	if len(limited) != 2 || limited[0].ID != "e3" {
		t.Errorf("limited expenses = %v, want e3 then e2", limited)
	}

	if _, err := db.Storage.GetExpenses(ctx, service.ExpenseFilter{StartDate: &end, EndDate: &start}); !errors.Is(err, storage.ErrInvalidDateRange) {
		t.Errorf("inverted range error = %v, want ErrInvalidDateRange", err)
	}
}

func TestDeleteCategorySetNullOnExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{
		Categories: []string{"Coffee"},
	})
	ctx := context.Background()

	categoryID := db.CategoryID("Coffee")
	if err := db.Storage.InsertExpenses(ctx, []model.Expense{
		expense("e1", "2024-01-05", 4.50, &categoryID, nil),
	}); err != nil {
		t.Fatalf("InsertExpenses() error = %v", err)
	}

	if err := db.Storage.DeleteCategory(ctx, categoryID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}

	got, err := db.Storage.GetExpenses(ctx, service.ExpenseFilter{})
	if err != nil {
		t.Fatalf("GetExpenses() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d expenses, want 1 (delete must not remove expenses)", len(got))
	}
	if got[0].CategoryID != nil {
		t.Errorf("CategoryID = %v, want nil after category delete", got[0].CategoryID)
	}
}

func TestDeleteExpense(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{})
	ctx := context.Background()

	if err := db.Storage.InsertExpenses(ctx, []model.Expense{
		expense("e1", "2024-01-05", 4.50, nil, nil),
	}); err != nil {
		t.Fatalf("InsertExpenses() error = %v", err)
	}

	if err := db.Storage.DeleteExpense(ctx, "e1"); err != nil {
		t.Fatalf("DeleteExpense() error = %v", err)
	}
	if err := db.Storage.DeleteExpense(ctx, "e1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("second DeleteExpense() error = %v, want ErrNotFound", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	db := testutil.SetupTestDB(t, testutil.SeedSpec{})
	ctx := context.Background()

	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if _, err := tx.CreateCategory(ctx, "Ephemeral", "", ""); err != nil {
		t.Fatalf("CreateCategory() in tx error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	categories, err := db.Storage.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories() error = %v", err)
	}
	for _, cat := range categories {
		if cat.Name == "Ephemeral" {
			t.Error("rolled back category is visible")
		}
	}
}
