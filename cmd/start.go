/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"treasury/domain/config"
	"treasury/infrastructure/logger"
	"treasury/interface/exporter"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the reconcile monitor and the metrics endpoint",
	Long: `Starts the reconcile monitor and the metrics endpoint. The ledger is compared with
the on-chain balances of the treasury account on every reconcile interval. To stop it,
send SIGINT or SIGTERM. This is the only command that accepts the memory store, which
starts empty and is lost when the process exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.GetForComponent("monitor")

		if err := defaultDependencyInject(cmd.Context(), true); err != nil {
			return err
		}
		defer closeDependencies()

		exporter.Init()
		server := serveMetrics(config.GetMetricsAddr())
		log.Info().Str("addr", config.GetMetricsAddr()).Msg("🚀 Metrics endpoint is up")

		done := make(chan bool)
		reconcileTicker := schedule(reconcile, config.GetReconcileInterval(), done)
		reconcile()

		signal.Ignore()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		s := <-stop
		log.Info().Str("signal", s.String()).Msg("Got signal, stopping")

		reconcileTicker.Stop()
		close(done)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func schedule(task func(), interval time.Duration, done chan bool) *time.Ticker {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {

			case <-ticker.C:
				ticker.Stop()
				task()
				ticker.Reset(interval)

			case <-done:
				return
			}
		}
	}()
	return ticker
}

func reconcile() {
	log := logger.GetForComponent("monitor")

	ctx, cancel := context.WithTimeout(context.Background(), config.GetTxTimeout())
	defer cancel()

	drifts, err := reconcileInteractor.Reconcile(ctx)
	if err != nil {
		exporter.IncErrorCount("reconcile")
		log.Error().Err(err).Msg("❌ Reconcile failed")
		return
	}

	unbalanced := 0
	for _, item := range drifts {
		if !item.Balanced() {
			unbalanced++
		}
	}
	log.Info().Int("assets", len(drifts)).Int("unbalanced", unbalanced).Msg("reconciled")
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log := logger.GetForComponent("monitor")
			log.Error().Err(err).Msg("❌ Metrics endpoint stopped")
		}
	}()
	return server
}

func init() {
	rootCmd.AddCommand(startCmd)
}
