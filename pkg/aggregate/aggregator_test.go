package aggregate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/netwatch/pcapsentry/pkg/netmodel"
)

func record(srcIP, dstIP string, length uint64) netmodel.PacketRecord {
	return netmodel.PacketRecord{Internet: netmodel.InternetIPv4, SourceIP: srcIP, DestinationIP: dstIP, Length: length}
}

func TestAggregator_PublishesCumulativeTotals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "total_stats.json")
	agg := New(path, zap.NewNop(), nil, nil)

	batches := make(chan []netmodel.PacketRecord)
	done := make(chan struct{})
	go func() {
		agg.Run(batches)
		close(done)
	}()

	batches <- []netmodel.PacketRecord{record("10.0.0.1", "10.0.0.2", 100)}
	batches <- []netmodel.PacketRecord{record("10.0.0.3", "10.0.0.4", 200)}
	close(batches)
	<-done

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var stats netmodel.NetworkStats
	if err := json.Unmarshal(data, &stats); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if stats.TotalPackets != 2 {
		t.Errorf("TotalPackets = %d, want 2", stats.TotalPackets)
	}
	if stats.TotalBytesPacket != 300 {
		t.Errorf("TotalBytesPacket = %d, want 300", stats.TotalBytesPacket)
	}

	if agg.Last().TotalPackets != 2 {
		t.Errorf("Last().TotalPackets = %d, want 2", agg.Last().TotalPackets)
	}
}

func TestAggregator_NoBatchesLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "total_stats.json")
	agg := New(path, zap.NewNop(), nil, nil)

	batches := make(chan []netmodel.PacketRecord)
	done := make(chan struct{})
	go func() {
		agg.Run(batches)
		close(done)
	}()
	close(batches)
	<-done

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("total_stats.json exists with no batches published, want absent (scenario S1)")
	}
	if agg.Last().TotalPackets != 0 {
		t.Errorf("Last().TotalPackets = %d, want 0", agg.Last().TotalPackets)
	}
}
