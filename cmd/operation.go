/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"treasury/domain"
)

var callerAddress string

var depositCmd = &cobra.Command{
	Use:   "deposit <asset> <amount>",
	Short: "Pulls an amount of an asset from the caller into the treasury",
	Long: `Pulls an amount of an asset from the caller into the treasury. The caller must
have approved the treasury account for at least the amount.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, func(ctx context.Context, caller string) (*domain.Receipt, error) {
			asset, amount, err := parseAssetAmount(registry, args[0], args[1])
			if err != nil {
				return nil, err
			}
			from, err := parseCaller(caller, treasuryInteractor.Owner())
			if err != nil {
				return nil, err
			}
			return treasuryInteractor.Deposit(ctx, from, asset.Address, amount)
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <asset> <amount>",
	Short: "Sends an amount of a custodied asset to the owner",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, func(ctx context.Context, caller string) (*domain.Receipt, error) {
			asset, amount, err := parseAssetAmount(registry, args[0], args[1])
			if err != nil {
				return nil, err
			}
			from, err := parseCaller(caller, treasuryInteractor.Owner())
			if err != nil {
				return nil, err
			}
			return treasuryInteractor.Withdraw(ctx, from, asset.Address, amount)
		})
	},
}

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance <asset-in> <asset-out> <amount-in> <min-amount-out>",
	Short: "Swaps custodied balance of one asset for another",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, func(ctx context.Context, caller string) (*domain.Receipt, error) {
			assetIn, amountIn, err := parseAssetAmount(registry, args[0], args[2])
			if err != nil {
				return nil, err
			}
			assetOut, minAmountOut, err := parseAssetAmount(registry, args[1], args[3])
			if err != nil {
				return nil, err
			}
			from, err := parseCaller(caller, treasuryInteractor.Owner())
			if err != nil {
				return nil, err
			}
			return treasuryInteractor.Rebalance(ctx, from, assetIn.Address, assetOut.Address, amountIn, minAmountOut)
		})
	},
}

var allocateCmd = &cobra.Command{
	Use:   "allocate <asset> <amount>",
	Short: "Supplies custodied balance to the lending pool",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, func(ctx context.Context, caller string) (*domain.Receipt, error) {
			asset, amount, err := parseAssetAmount(registry, args[0], args[1])
			if err != nil {
				return nil, err
			}
			from, err := parseCaller(caller, treasuryInteractor.Owner())
			if err != nil {
				return nil, err
			}
			return treasuryInteractor.AllocateToYield(ctx, from, asset.Address, amount)
		})
	},
}

var reclaimCmd = &cobra.Command{
	Use:   "reclaim <asset> <amount>",
	Short: "Withdraws principal from the lending pool back into custody",
	Long: `Withdraws principal from the lending pool back into custody. Interest paid on top
of the principal is realized as yield. If the pool has not enough liquidity, what it
pays is kept and the receipt is marked partial.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOperation(cmd, func(ctx context.Context, caller string) (*domain.Receipt, error) {
			asset, amount, err := parseAssetAmount(registry, args[0], args[1])
			if err != nil {
				return nil, err
			}
			from, err := parseCaller(caller, treasuryInteractor.Owner())
			if err != nil {
				return nil, err
			}
			return treasuryInteractor.ReclaimFromYield(ctx, from, asset.Address, amount)
		})
	},
}

func runOperation(cmd *cobra.Command, operation func(ctx context.Context, caller string) (*domain.Receipt, error)) error {
	ctx := cmd.Context()
	if err := defaultDependencyInject(ctx, false); err != nil {
		return err
	}
	defer closeDependencies()

	// A pending operation is committed, so its receipt is shown along with the error.
	receipt, err := operation(ctx, callerAddress)
	if receipt == nil {
		return err
	}

	view := receiptViewOf(registry, *receipt)
	if renderErr := render(os.Stdout, outputFormat, view, func(out io.Writer) {
		printReceipt(out, view)
	}); renderErr != nil {
		return renderErr
	}
	return err
}

func init() {
	for _, command := range []*cobra.Command{depositCmd, withdrawCmd, rebalanceCmd, allocateCmd, reclaimCmd} {
		command.Flags().StringVar(&callerAddress, "caller", "", "address of the caller, defaults to the owner")
		rootCmd.AddCommand(command)
	}
}
