// Package aggregate implements the single-threaded cumulative aggregator:
// it owns the growing sequence of every PacketRecord produced by every
// worker batch and atomically republishes the cumulative NetworkStats after
// each one.
package aggregate

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/netwatch/pcapsentry/pkg/jsonfile"
	"github.com/netwatch/pcapsentry/pkg/netmodel"
	"github.com/netwatch/pcapsentry/pkg/netstats"
)

// HistorySink persists one NetworkStats snapshot per successful publish.
// Implemented by pkg/historystore; nil means the supplement is disabled.
type HistorySink interface {
	Insert(stats netmodel.NetworkStats) error
}

// AlertSink inspects one worker batch for per-source-IP rate anomalies and
// publishes alerts for any IP at or above the threshold. Implemented by pkg/alert;
// nil means the supplement is disabled.
type AlertSink interface {
	CheckBatch(batch []netmodel.PacketRecord) error
}

// Aggregator owns the cumulative record sequence. It is not safe for
// concurrent use — spec.md §4.H specifies it as single-threaded.
type Aggregator struct {
	outputPath string
	logger     *zap.Logger
	history    HistorySink
	alerts     AlertSink

	allRecords []netmodel.PacketRecord
	last       atomic.Pointer[netmodel.NetworkStats]
}

// New creates an Aggregator that publishes to outputPath. history and
// alerts may both be nil to disable their respective supplements.
func New(outputPath string, logger *zap.Logger, history HistorySink, alerts AlertSink) *Aggregator {
	a := &Aggregator{
		outputPath: outputPath,
		logger:     logger,
		history:    history,
		alerts:     alerts,
	}
	zero := netmodel.Zero()
	a.last.Store(&zero)
	return a
}

// Run receives batches until the channel is closed, folding the full
// cumulative sequence and republishing total_stats.json after each one
// (spec.md §4.H). Recomputing the full fold per batch is O(total); this is
// acceptable per spec.md §4.H's cost note, since the observable JSON is
// what matters, not the update strategy.
func (a *Aggregator) Run(batches <-chan []netmodel.PacketRecord) {
	for batch := range batches {
		a.allRecords = append(a.allRecords, batch...)

		stats := netstats.Fold(a.allRecords)
		if err := jsonfile.Update(a.outputPath, stats); err != nil {
			// UpdateFileError: logged, rollback already handled by jsonfile.Update,
			// in-memory allRecords is NOT rolled back (spec.md §7/§9).
			a.logger.Error("failed to publish cumulative stats", zap.Error(err))
		} else {
			statsCopy := stats
			a.last.Store(&statsCopy)

			if a.history != nil {
				if err := a.history.Insert(stats); err != nil {
					a.logger.Error("failed to record stats history", zap.Error(err))
				}
			}
		}

		if a.alerts != nil {
			if err := a.alerts.CheckBatch(batch); err != nil {
				a.logger.Error("failed to publish rate alert", zap.Error(err))
			}
		}
	}
}

// Last returns the most recently successfully published cumulative stats,
// for the optional status server (pkg/statusapi).
func (a *Aggregator) Last() netmodel.NetworkStats {
	return *a.last.Load()
}
