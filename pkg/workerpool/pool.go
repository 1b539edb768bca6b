// Package workerpool runs a fixed number of workers, each draining its own
// job queue and forwarding successfully parsed batches to a single shared
// aggregator channel. Workers never share mutable state with each other.
package workerpool

import (
	"sync"

	"go.uber.org/zap"

	"github.com/netwatch/pcapsentry/pkg/netmodel"
	"github.com/netwatch/pcapsentry/pkg/pcapjob"
)

// Run starts one worker per entry in jobQueues, each consuming from its own queue and
// sending parsed batches on the shared batches channel. Run blocks until
// every worker's queue is closed and every worker has returned.
func Run(jobQueues []<-chan pcapjob.Job, batches chan<- []netmodel.PacketRecord, logger *zap.Logger) {
	var wg sync.WaitGroup
	wg.Add(len(jobQueues))

	for i, queue := range jobQueues {
		go func(id int, queue <-chan pcapjob.Job) {
			defer wg.Done()
			work(id, queue, batches, logger)
		}(i, queue)
	}

	wg.Wait()
}

func work(id int, queue <-chan pcapjob.Job, batches chan<- []netmodel.PacketRecord, logger *zap.Logger) {
	for job := range queue {
		batch, err := pcapjob.Run(job)
		if err != nil {
			logger.Error("pcap job failed", zap.Int("worker", id), zap.String("input", job.InputPath), zap.Error(err))
			continue
		}

		batches <- batch
	}
}
