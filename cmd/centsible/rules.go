package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/centsible/centsible/internal/cli"
	"github.com/centsible/centsible/internal/reconcile"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage import rules",
		Long: `Import rules auto-categorize extracted statement rows: the first rule whose
keyword appears in a transaction's description (case-insensitive) assigns its
category. Rules apply in the order they were created.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())
	cmd.AddCommand(deleteRuleCmd())
	cmd.AddCommand(testRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List import rules in match order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetImportRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get import rules: %w", err)
			}

			if len(rules) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No import rules found. Use 'centsible rules add' to create one."))
				return nil
			}

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to load categories: %w", err)
			}
			names := make(map[string]string, len(categories))
			for _, cat := range categories {
				names[cat.ID] = cat.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "#\tID\tKeyword\tCategory")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 3), strings.Repeat("-", 8),
				strings.Repeat("-", 20), strings.Repeat("-", 16))

			for i, rule := range rules {
				category := rule.CategoryID
				if name, ok := names[rule.CategoryID]; ok {
					category = name
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, shortID(rule.ID), rule.Keyword, category)
			}

			return nil
		},
	}
}

func addRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <keyword> <category>",
		Short: "Add an import rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categoryID, err := resolveCategory(cmd, store, args[1])
			if err != nil {
				return err
			}

			rule, err := store.CreateImportRule(ctx, args[0], categoryID)
			if err != nil {
				return fmt.Errorf("failed to create import rule: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Rule created: descriptions containing %q → %s.", rule.Keyword, args[1])))
			return nil
		},
	}
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an import rule by id (or unambiguous id prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id := args[0]
			if len(id) < 36 {
				rules, listErr := store.GetImportRules(ctx)
				if listErr != nil {
					return fmt.Errorf("failed to list import rules: %w", listErr)
				}
				var matches []string
				for _, rule := range rules {
					if strings.HasPrefix(rule.ID, id) {
						matches = append(matches, rule.ID)
					}
				}
				switch len(matches) {
				case 1:
					id = matches[0]
				case 0:
					return fmt.Errorf("no import rule matches id %q", id)
				default:
					return fmt.Errorf("id prefix %q is ambiguous (%d matches)", id, len(matches))
				}
			}

			if err := store.DeleteImportRule(ctx, id); err != nil {
				return fmt.Errorf("failed to delete import rule: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Import rule deleted."))
			return nil
		},
	}
}

func testRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <description>",
		Short: "Show which rule (if any) would match a description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetImportRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get import rules: %w", err)
			}

			categoryID := reconcile.MatchRule(rules, args[0])
			if categoryID == nil {
				fmt.Println(cli.FormatWarning("No rule matches; the row would need manual categorization."))
				return nil
			}

			category, err := store.GetCategoryByID(ctx, *categoryID)
			if err != nil {
				return fmt.Errorf("failed to load category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Matches → %s.", category.Name)))
			return nil
		},
	}
}
