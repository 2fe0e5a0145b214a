package testutil

import (
	"context"
	"fmt"

	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/service"
)

// MockStorage is a scriptable service.Storage for tests that must observe
// or fail persistence calls without a real database. Only the members a
// test configures do anything useful; unconfigured write methods succeed
// and reads return the canned slices.
type MockStorage struct {
	InsertErr      error
	CategoriesData []model.Category
	MethodsData    []model.PaymentMethod
	RulesData      []model.ImportRule
	Inserted       [][]model.Expense
	InsertCalls    int
}

var _ service.Storage = (*MockStorage)(nil)

// InsertExpenses records the batch, or fails with InsertErr if set.
func (m *MockStorage) InsertExpenses(_ context.Context, expenses []model.Expense) error {
	m.InsertCalls++
	if m.InsertErr != nil {
		return m.InsertErr
	}
	batch := make([]model.Expense, len(expenses))
	copy(batch, expenses)
	m.Inserted = append(m.Inserted, batch)
	return nil
}

func (m *MockStorage) GetExpenses(_ context.Context, _ service.ExpenseFilter) ([]model.Expense, error) {
	var all []model.Expense
	for _, batch := range m.Inserted {
		all = append(all, batch...)
	}
	return all, nil
}

func (m *MockStorage) DeleteExpense(_ context.Context, _ string) error { return nil }

func (m *MockStorage) GetCategories(_ context.Context) ([]model.Category, error) {
	return m.CategoriesData, nil
}

func (m *MockStorage) GetCategoryByID(_ context.Context, id string) (*model.Category, error) {
	for i := range m.CategoriesData {
		if m.CategoriesData[i].ID == id {
			return &m.CategoriesData[i], nil
		}
	}
	return nil, fmt.Errorf("category %s not found", id)
}

func (m *MockStorage) CreateCategory(_ context.Context, name, icon, color string) (*model.Category, error) {
	cat := model.Category{ID: fmt.Sprintf("cat-%d", len(m.CategoriesData)+1), Name: name, Icon: icon, Color: color}
	m.CategoriesData = append(m.CategoriesData, cat)
	return &cat, nil
}

func (m *MockStorage) DeleteCategory(_ context.Context, _ string) error { return nil }

func (m *MockStorage) GetPaymentMethods(_ context.Context) ([]model.PaymentMethod, error) {
	return m.MethodsData, nil
}

func (m *MockStorage) CreatePaymentMethod(_ context.Context, name, methodType string) (*model.PaymentMethod, error) {
	pm := model.PaymentMethod{ID: fmt.Sprintf("pm-%d", len(m.MethodsData)+1), Name: name, Type: methodType}
	m.MethodsData = append(m.MethodsData, pm)
	return &pm, nil
}

func (m *MockStorage) DeletePaymentMethod(_ context.Context, _ string) error { return nil }

func (m *MockStorage) GetImportRules(_ context.Context) ([]model.ImportRule, error) {
	return m.RulesData, nil
}

func (m *MockStorage) CreateImportRule(_ context.Context, keyword, categoryID string) (*model.ImportRule, error) {
	rule := model.ImportRule{ID: fmt.Sprintf("rule-%d", len(m.RulesData)+1), Keyword: keyword, CategoryID: categoryID}
	m.RulesData = append(m.RulesData, rule)
	return &rule, nil
}

func (m *MockStorage) DeleteImportRule(_ context.Context, _ string) error { return nil }

func (m *MockStorage) Migrate(_ context.Context) error { return nil }

func (m *MockStorage) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("transactions not supported by mock storage")
}

func (m *MockStorage) Close() error { return nil }
