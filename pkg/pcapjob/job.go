// Package pcapjob reads one PCAP file end to end: parse every frame,
// fold per-file statistics, publish the per-file JSON report, and hand the
// parsed batch back to the caller for aggregation.
package pcapjob

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/pcapgo"

	"github.com/netwatch/pcapsentry/pkg/jsonfile"
	"github.com/netwatch/pcapsentry/pkg/netmodel"
	"github.com/netwatch/pcapsentry/pkg/netparse"
	"github.com/netwatch/pcapsentry/pkg/netstats"
)

// Job names the input PCAP and the per-file JSON report it produces.
type Job struct {
	InputPath  string
	OutputPath string
}

// Run executes spec.md §4.D: open the PCAP, parse every frame, fold the
// stats, write the per-file JSON, and return the batch so the caller can
// forward it to the aggregator. The per-file JSON is written before Run
// returns, so an observer of the output directory never sees a per-file
// report that is inconsistent with what is about to reach the aggregate.
func Run(job Job) ([]netmodel.PacketRecord, error) {
	f, err := os.Open(job.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open pcap %s: %w", job.InputPath, err)
	}
	defer f.Close()

	reader, err := pcapgo.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read pcap header %s: %w", job.InputPath, err)
	}

	var batch []netmodel.PacketRecord
	for {
		data, _, err := reader.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame from %s: %w", job.InputPath, err)
		}

		if rec, ok := netparse.Parse(data); ok {
			batch = append(batch, rec)
		}
	}

	stats := netstats.Fold(batch)
	if err := jsonfile.Write(job.OutputPath, stats); err != nil {
		return nil, fmt.Errorf("write per-file report for %s: %w", job.InputPath, err)
	}

	return batch, nil
}
