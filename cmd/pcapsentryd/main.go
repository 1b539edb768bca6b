// Command pcapsentryd watches a directory for pcap captures, parses each
// file, folds per-file and cumulative network statistics, and publishes
// them as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/netwatch/pcapsentry/pkg/config"
	"github.com/netwatch/pcapsentry/pkg/supervisor"
)

func newLogger() (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.EncoderConfig.TimeKey = "timestamp"
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return loggerConfig.Build()
}

func main() {
	configFile := flag.String("config", "configs/properties.json", "Path to the pipeline configuration file")
	alertingFile := flag.String("alerting-config", "configs/alerting.yaml", "Path to the optional alerting configuration file")
	flag.Parse()

	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	alertingCfg, alertingEnabled, err := config.LoadAlerting(*alertingFile)
	if err != nil {
		logger.Fatal("failed to load alerting configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sup, err := supervisor.New(ctx, cfg, logger, alertingCfg, alertingEnabled)
	if err != nil {
		logger.Fatal("failed to construct supervisor", zap.Error(err))
	}

	logger.Info("starting pcapsentryd",
		zap.String("watch_dir", cfg.WatchDir),
		zap.String("output_dir", cfg.OutputDir),
		zap.Int("parallelism", cfg.Parallelism),
		zap.Bool("history_enabled", cfg.HistoryDSN != ""),
		zap.Bool("alerting_enabled", alertingEnabled),
		zap.Bool("status_api_enabled", cfg.StatusAddr != ""),
	)

	runErr := make(chan error, 1)
	go func() {
		runErr <- sup.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("received shutdown signal, stopping pcapsentryd")
		cancel()
		<-runErr
	case err := <-runErr:
		if err != nil {
			logger.Error("pipeline exited with error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("pcapsentryd stopped")
}
