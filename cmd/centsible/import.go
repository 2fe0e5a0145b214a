package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/centsible/centsible/internal/cli"
	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/extract"
	"github.com/centsible/centsible/internal/reconcile"
	"github.com/centsible/centsible/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	var extractionModel string

	cmd := &cobra.Command{
		Use:   "import <statement-image>",
		Short: "Import expenses from a statement image",
		Long: `Extract transactions from a bank statement photo or screenshot, match them
against your import rules, review the result interactively, and commit the
selected rows as expenses in one atomic batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			imagePath := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			image, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("failed to read statement image: %w", err)
			}

			extractor, err := extract.NewExtractor(extract.Config{
				Provider: viper.GetString("extraction.provider"),
				APIKey:   viper.GetString("extraction.api_key"),
				Model:    extractionModel,
			})
			if err != nil {
				return err
			}

			items, err := extractStatement(ctx, extractor, image, mimeTypeFor(imagePath))
			if err != nil {
				common.LogError(err, "statement extraction failed", common.Fields{"image": imagePath})
				return common.NewUserError("could not extract transactions from the statement", err)
			}

			// Reference data is loaded once; rule edits made elsewhere do
			// not affect this session.
			rules, err := store.GetImportRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to load import rules: %w", err)
			}
			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			methods, err := store.GetPaymentMethods(ctx)
			if err != nil {
				return fmt.Errorf("failed to load payment methods: %w", err)
			}

			session := reconcile.NewSession(items, rules, categories, methods)
			reviewer := cli.NewReviewer(os.Stdin, os.Stdout, reconcile.NewCommitter(store))

			stats, err := reviewer.Run(ctx, session)
			if err != nil {
				return err
			}

			if stats.Imported > 0 {
				common.LogInfo("import session finished", common.Fields{
					"imported": stats.Imported,
					"skipped":  stats.Skipped,
				})
				fmt.Println(cli.FormatSuccess(fmt.Sprintf(
					"Done: %d imported, %d skipped in %s.",
					stats.Imported, stats.Skipped, stats.Duration.Round(time.Millisecond))))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&extractionModel, "model", "", "extraction model override")

	return cmd
}

// extractStatement runs the vision call with a spinner and retries on
// transient API failures.
func extractStatement(ctx context.Context, extractor extract.Extractor, image []byte, mimeType string) ([]extract.ExtractedItem, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Reading statement..."),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)
	defer func() { _ = bar.Finish() }()

	var items []extract.ExtractedItem
	err := common.WithRetry(ctx, func() error {
		var extractErr error
		items, extractErr = extractor.ExtractTransactions(ctx, image, mimeType)
		return extractErr
	}, service.RetryOptions{MaxAttempts: 3})

	return items, err
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
