// Package supervisor constructs the pipeline's channels and goroutines and
// drives shutdown in the strict order spec.md §4.I requires: dispatcher
// returns, then every worker job channel is closed and joined, then the
// aggregator's inbound channel is closed and joined, then the watcher is
// joined. This ordering guarantees no batch is dropped and total_stats.json
// reflects every file the pipeline finished processing.
//
// The wiring here follows the same shape as the teacher's
// cmd/telemetry-agent/main.go TelemetryAgent: a struct holding the
// long-lived dependencies plus a context/cancel pair, and a Run that starts
// goroutines and, once the dispatcher returns, cancels and joins them.
package supervisor

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/netwatch/pcapsentry/pkg/aggregate"
	"github.com/netwatch/pcapsentry/pkg/alert"
	"github.com/netwatch/pcapsentry/pkg/config"
	"github.com/netwatch/pcapsentry/pkg/dispatch"
	"github.com/netwatch/pcapsentry/pkg/historystore"
	"github.com/netwatch/pcapsentry/pkg/netmodel"
	"github.com/netwatch/pcapsentry/pkg/pcapjob"
	"github.com/netwatch/pcapsentry/pkg/statusapi"
	"github.com/netwatch/pcapsentry/pkg/watch"
	"github.com/netwatch/pcapsentry/pkg/workerpool"
)

// Supervisor owns the pipeline's whole lifecycle for one run.
type Supervisor struct {
	cfg    config.Config
	logger *zap.Logger

	aggregator *aggregate.Aggregator
	history    *historystore.Store
	alerter    *alert.Publisher
	status     *statusapi.Server
}

// New wires up the optional components named by cfg; history, alerting,
// and the status server are all nil unless their config fields are set.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, alerting config.AlertingConfig, alertingEnabled bool) (*Supervisor, error) {
	s := &Supervisor{cfg: cfg, logger: logger}

	if cfg.HistoryDSN != "" {
		store, err := historystore.Open(ctx, cfg.HistoryDSN)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		s.history = store
	}

	if alertingEnabled && alerting.AMQPURL != "" {
		pub, err := alert.New(alerting.AMQPURL, alerting.Exchange, alerting.RateThreshold, logger)
		if err != nil {
			if s.history != nil {
				s.history.Close()
			}
			return nil, fmt.Errorf("open alert publisher: %w", err)
		}
		s.alerter = pub
	}

	var historySink aggregate.HistorySink
	if s.history != nil {
		historySink = s.history
	}
	var alertSink aggregate.AlertSink
	if s.alerter != nil {
		alertSink = s.alerter
	}

	totalStatsPath := filepath.Join(cfg.OutputDir, "total_stats.json")
	s.aggregator = aggregate.New(totalStatsPath, logger, historySink, alertSink)

	if cfg.StatusAddr != "" {
		s.status = statusapi.New(cfg.StatusAddr, cfg.Parallelism, s.aggregator)
	}

	return s, nil
}

// Run builds the channels, spawns every goroutine, and runs the dispatcher
// inline until the watcher's output channel closes (construction order,
// spec.md §4.I), then drives the shutdown order described in the package
// doc. Run blocks until shutdown completes.
func (s *Supervisor) Run(ctx context.Context) error {
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	paths, watchDone, err := watch.Watch(watchCtx, s.cfg.WatchDir, s.logger)
	if err != nil {
		return fmt.Errorf("start directory watcher: %w", err)
	}

	batches := make(chan []netmodel.PacketRecord)

	jobQueues := make([]chan pcapjob.Job, s.cfg.Parallelism)
	recvQueues := make([]<-chan pcapjob.Job, s.cfg.Parallelism)
	sendQueues := make([]chan<- pcapjob.Job, s.cfg.Parallelism)
	for i := range jobQueues {
		jobQueues[i] = make(chan pcapjob.Job)
		recvQueues[i] = jobQueues[i]
		sendQueues[i] = jobQueues[i]
	}

	aggregatorDone := make(chan struct{})
	go func() {
		s.aggregator.Run(batches)
		close(aggregatorDone)
	}()

	workersDone := make(chan struct{})
	go func() {
		workerpool.Run(recvQueues, batches, s.logger)
		close(workersDone)
	}()

	if s.status != nil {
		go func() {
			if err := s.status.Run(); err != nil {
				s.logger.Error("status server stopped", zap.Error(err))
			}
		}()
	}

	// Dispatcher runs inline; it returns (and closes every worker job
	// queue) once paths closes, i.e. once the watcher is canceled.
	dispatch.Run(paths, sendQueues, s.cfg.OutputDir, s.logger)

	<-workersDone
	close(batches)
	<-aggregatorDone

	cancelWatch()
	<-watchDone

	if s.status != nil {
		if err := s.status.Shutdown(); err != nil {
			s.logger.Error("status server shutdown error", zap.Error(err))
		}
	}
	if s.history != nil {
		s.history.Close()
	}
	if s.alerter != nil {
		s.alerter.Close()
	}

	return nil
}
