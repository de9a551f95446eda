/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"treasury/domain"
	"treasury/domain/config"
	"treasury/infrastructure/logger"
)

var (
	configFile   string
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treasury",
	Short: "Multi-asset treasury",
	Long: `Custodies several ERC-20 balances for a single owner, and routes idle
balance through a swap router and a lending pool.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg(".env file not found, relying on OS environment variables")
		}
		if err := config.ReadConfig(configFile); err != nil {
			return err
		}
		logger.Initialize(config.GetLogLevel())
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

func errorMessage(err error) string {
	if errors.Is(err, domain.ErrorTxPending) {
		return fmt.Sprintf("⏳ %v\n"+
			"The ledger was committed as if the transaction will be mined. Do not retry this\n"+
			"operation: run 'treasury reconcile' first and retry only if the drift shows the\n"+
			"transaction never landed.", err)
	}
	return fmt.Sprintf("⛔️ %v", err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "path of the config file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json or yaml")
}
