package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nspcc-dev/lp-staking-contract/monitor"
	"github.com/nspcc-dev/lp-staking-contract/rpc/staking"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cmdExporter = &cobra.Command{
	Use:   "exporter",
	Short: "Export Staking contract state as Prometheus metrics",
	Args:  cobra.NoArgs,
	RunE:  runExporter,
}

func init() {
	flags := cmdExporter.Flags()
	flags.String(cfgExporterListen, defaultExporterListen, "Metrics HTTP server listen address")
	flags.Duration(cfgExporterInterval, defaultExporterInterval, "Contract polling interval")
	flags.Bool(cfgExporterAccounts, false, "Export per-account stake and rewards")

	bindFlags(viper.GetViper(), flags, cfgExporterListen, cfgExporterInterval, cfgExporterAccounts)
}

func runExporter(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()

	log, err := newLogger(v)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	endpoint, err := rpcEndpoint(v)
	if err != nil {
		return err
	}

	contract, err := stakingContract(v)
	if err != nil {
		return err
	}

	interval := v.GetDuration(cfgExporterInterval)
	if interval <= 0 {
		return fmt.Errorf("invalid %s: must be positive", cfgExporterInterval)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	b, err := newRemoteBlockchain(ctx, endpoint, v.GetDuration(cfgRPCTimeout))
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := monitor.New(monitor.Prm{
		Logger:     log,
		Reader:     staking.NewReader(b.invoker(), contract),
		Registerer: reg,
		Accounts:   v.GetBool(cfgExporterAccounts),
	})
	if err != nil {
		return fmt.Errorf("init monitor: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              v.GetString(cfgExporterListen),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("serving metrics", zap.String("address", srv.Addr))
		srvErr <- srv.ListenAndServe()
	}()

	monErr := make(chan error, 1)
	go func() {
		monErr <- m.Run(ctx, interval)
	}()

	select {
	case err = <-srvErr:
		cancel()
		<-monErr
		return fmt.Errorf("metrics server: %w", err)
	case err = <-monErr:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if sErr := srv.Shutdown(shutdownCtx); sErr != nil {
		log.Warn("metrics server shutdown", zap.Error(sErr))
	}

	if errors.Is(err, context.Canceled) {
		log.Info("exporter stopped")
		return nil
	}

	return err
}
