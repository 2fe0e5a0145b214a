package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/centsible/centsible/internal/cli"
	"github.com/spf13/cobra"
)

func methodsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "methods",
		Short: "Manage payment methods",
		Long: `List, add, and delete payment methods. The first method you create is the
default assigned to imported transactions.`,
	}

	cmd.AddCommand(listMethodsCmd())
	cmd.AddCommand(addMethodCmd())
	cmd.AddCommand(deleteMethodCmd())

	return cmd
}

func listMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all payment methods",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			methods, err := store.GetPaymentMethods(ctx)
			if err != nil {
				return fmt.Errorf("failed to get payment methods: %w", err)
			}

			if len(methods) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No payment methods found. Use 'centsible methods add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintln(w, "ID\tName\tType")
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 8), strings.Repeat("-", 20), strings.Repeat("-", 12))

			for _, m := range methods {
				fmt.Fprintf(w, "%s\t%s\t%s\n", shortID(m.ID), m.Name, m.Type)
			}

			return nil
		},
	}
}

func addMethodCmd() *cobra.Command {
	var methodType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new payment method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			m, err := store.CreatePaymentMethod(ctx, args[0], methodType)
			if err != nil {
				return fmt.Errorf("failed to create payment method: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created payment method %q (%s).", m.Name, m.Type)))
			return nil
		},
	}

	cmd.Flags().StringVar(&methodType, "type", "credit_card", "method type (credit_card, debit_card, cash, ...)")

	return cmd
}

func deleteMethodCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a payment method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id, err := resolveMethod(cmd, store, args[0])
			if err != nil {
				return err
			}

			if err := store.DeletePaymentMethod(ctx, id); err != nil {
				return fmt.Errorf("failed to delete payment method: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted payment method %q.", args[0])))
			return nil
		},
	}
}
