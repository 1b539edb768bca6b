// Package dispatch deduplicates watcher paths and distributes PCAP jobs to
// a fixed set of per-worker queues, round-robin.
package dispatch

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/netwatch/pcapsentry/pkg/pcapjob"
)

// Run consumes paths until it is closed, deduplicating by canonical path
// string and sending each distinct .pcap path to exactly one worker queue
// in jobQueues, round-robin (job k goes to worker k % len(jobQueues)).
// When paths closes, Run closes every channel in jobQueues and returns —
// this is the first step of the supervisor's shutdown order (spec.md §4.I).
func Run(paths <-chan string, jobQueues []chan<- pcapjob.Job, outputDir string, logger *zap.Logger) {
	seen := make(map[string]struct{})
	index := 0

	defer func() {
		for _, q := range jobQueues {
			close(q)
		}
	}()

	for p := range paths {
		if filepath.Ext(p) != ".pcap" {
			continue
		}

		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if resolved, err := filepath.EvalSymlinks(key); err == nil {
			key = resolved
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		job := pcapjob.Job{
			InputPath:  p,
			OutputPath: filepath.Join(outputDir, filepath.Base(p)+".json"),
		}

		worker := index % len(jobQueues)
		index++

		logger.Debug("dispatching job", zap.String("input", job.InputPath), zap.Int("worker", worker))
		jobQueues[worker] <- job
	}
}
