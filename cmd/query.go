/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var receiptLimit int

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Prints the custodied and deployed balance of every asset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := defaultDependencyInject(cmd.Context(), false); err != nil {
			return err
		}
		defer closeDependencies()

		entries, err := treasuryInteractor.Balances(cmd.Context())
		if err != nil {
			return err
		}
		views := entryViews(registry, entries)
		return render(os.Stdout, outputFormat, views, func(out io.Writer) {
			printEntries(out, views)
		})
	},
}

var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Prints the latest committed operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := defaultDependencyInject(cmd.Context(), false); err != nil {
			return err
		}
		defer closeDependencies()

		receipts, err := treasuryInteractor.Receipts(cmd.Context(), receiptLimit)
		if err != nil {
			return err
		}
		views := make([]receiptView, 0, len(receipts))
		for _, receipt := range receipts {
			views = append(views, receiptViewOf(registry, receipt))
		}
		return render(os.Stdout, outputFormat, views, func(out io.Writer) {
			printReceipts(out, views)
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compares the ledger with the on-chain balances of the treasury account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := defaultDependencyInject(cmd.Context(), false); err != nil {
			return err
		}
		defer closeDependencies()

		drifts, err := reconcileInteractor.Reconcile(cmd.Context())
		if err != nil {
			return err
		}
		views := driftViews(drifts)
		return render(os.Stdout, outputFormat, views, func(out io.Writer) {
			printDrifts(out, views)
		})
	},
}

func init() {
	receiptsCmd.Flags().IntVarP(&receiptLimit, "limit", "n", 20, "number of receipts to print")

	rootCmd.AddCommand(balancesCmd)
	rootCmd.AddCommand(receiptsCmd)
	rootCmd.AddCommand(reconcileCmd)
}
