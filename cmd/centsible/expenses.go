package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/centsible/centsible/internal/cli"
	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/reconcile"
	"github.com/centsible/centsible/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Manage logged expenses",
	}

	cmd.AddCommand(listExpensesCmd())
	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())

	return cmd
}

func listExpensesCmd() *cobra.Command {
	var (
		from  string
		to    string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			filter := service.ExpenseFilter{Limit: limit}
			if from != "" {
				start, parseErr := time.Parse(model.DateFormat, from)
				if parseErr != nil {
					return fmt.Errorf("invalid --from date %q: %w", from, parseErr)
				}
				filter.StartDate = &start
			}
			if to != "" {
				end, parseErr := time.Parse(model.DateFormat, to)
				if parseErr != nil {
					return fmt.Errorf("invalid --to date %q: %w", to, parseErr)
				}
				filter.EndDate = &end
			}

			expenses, err := store.GetExpenses(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}

			if len(expenses) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No expenses found."))
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

			fmt.Fprintln(w, "ID\tDate\tAmount\tCategory\tComment")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 8), strings.Repeat("-", 10),
				strings.Repeat("-", 8), strings.Repeat("-", 16), strings.Repeat("-", 30))

			var total float64
			for _, e := range expenses {
				category := "(none)"
				if e.CategoryID != nil {
					if name, ok := names[*e.CategoryID]; ok {
						category = name
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
					shortID(e.ID), e.Date.Format(model.DateFormat), e.Amount, category, e.Comment)
				total += e.Amount
			}
			fmt.Fprintf(w, "\t\t%.2f\t\t(%d expenses)\n", total, len(expenses))

			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to show")

	return cmd
}

func addExpenseCmd() *cobra.Command {
	var (
		date     string
		category string
		method   string
		comment  string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Log a single expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			when := time.Now().UTC().Truncate(24 * time.Hour)
			if date != "" {
				when, err = time.Parse(model.DateFormat, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
			}

			expense := model.Expense{
				ID:        uuid.NewString(),
				Date:      when,
				Amount:    amount,
				Comment:   comment,
				CreatedAt: time.Now().UTC(),
			}

			if category != "" {
				id, resolveErr := resolveCategory(cmd, store, category)
				if resolveErr != nil {
					return resolveErr
				}
				expense.CategoryID = &id
			} else {
				// Fall back to keyword rules against the comment, same as
				// statement import.
				rules, rulesErr := store.GetImportRules(ctx)
				if rulesErr != nil {
					return fmt.Errorf("failed to load import rules: %w", rulesErr)
				}
				expense.CategoryID = reconcile.MatchRule(rules, comment)
			}

			if method != "" {
				id, resolveErr := resolveMethod(cmd, store, method)
				if resolveErr != nil {
					return resolveErr
				}
				expense.PaymentMethodID = &id
			}

			if err := store.InsertExpenses(ctx, []model.Expense{expense}); err != nil {
				return fmt.Errorf("failed to save expense: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Logged %.2f on %s.", amount, when.Format(model.DateFormat))))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&category, "category", "", "category name")
	cmd.Flags().StringVar(&method, "method", "", "payment method name")
	cmd.Flags().StringVar(&comment, "comment", "", "free-text comment")

	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense by id (or unambiguous id prefix)",
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
				expenses, listErr := store.GetExpenses(ctx, service.ExpenseFilter{})
				if listErr != nil {
					return fmt.Errorf("failed to list expenses: %w", listErr)
				}
				var matches []string
				for _, e := range expenses {
					if strings.HasPrefix(e.ID, id) {
						matches = append(matches, e.ID)
					}
				}
				switch len(matches) {
				case 1:
					id = matches[0]
				case 0:
					return fmt.Errorf("no expense matches id %q", id)
				default:
					return fmt.Errorf("id prefix %q is ambiguous (%d matches)", id, len(matches))
				}
			}

			if err := store.DeleteExpense(ctx, id); err != nil {
				return fmt.Errorf("failed to delete expense: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Expense deleted."))
			return nil
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
