package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/centsible/centsible/internal/config"
	"github.com/centsible/centsible/internal/service"
	"github.com/centsible/centsible/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/centsible/centsible.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// resolveCategory maps a category name (case-insensitive) to its id.
func resolveCategory(cmd *cobra.Command, store service.Storage, name string) (string, error) {
	categories, err := store.GetCategories(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("failed to load categories: %w", err)
	}

	available := make([]string, 0, len(categories))
	for _, cat := range categories {
		if strings.EqualFold(cat.Name, name) {
			return cat.ID, nil
		}
		available = append(available, cat.Name)
	}

	return "", fmt.Errorf("unknown category %q (available: %s)", name, strings.Join(available, ", "))
}

// resolveMethod maps a payment method name (case-insensitive) to its id.
func resolveMethod(cmd *cobra.Command, store service.Storage, name string) (string, error) {
	methods, err := store.GetPaymentMethods(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("failed to load payment methods: %w", err)
	}

	available := make([]string, 0, len(methods))
	for _, m := range methods {
		if strings.EqualFold(m.Name, name) {
			return m.ID, nil
		}
		available = append(available, m.Name)
	}

	return "", fmt.Errorf("unknown payment method %q (available: %s)", name, strings.Join(available, ", "))
}
