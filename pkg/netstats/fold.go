// Package netstats folds a sequence of netmodel.PacketRecords into a
// netmodel.NetworkStats document: protocol histograms and stable top-10
// frequency rankings over IPs and ports.
package netstats

import (
	"sort"

	"github.com/netwatch/pcapsentry/pkg/netmodel"
)

const topN = 10

// Fold is a pure function: the same multiset of records always produces a
// byte-identical NetworkStats (determinism is a contract, spec.md §4.B).
func Fold(records []netmodel.PacketRecord) netmodel.NetworkStats {
	stats := netmodel.Zero()
	stats.TotalPackets = len(records)

	ipFreq := make(map[string]int)
	portFreq := make(map[uint16]int)

	for _, rec := range records {
		stats.TotalBytesPacket += rec.Length

		stats.ByProtocol[netmodel.InternetKey(rec.Internet)]++
		if rec.Transport != "" {
			stats.ByProtocol[netmodel.TransportKey(rec.Transport)]++
		}
		if rec.Application != "" {
			stats.ByProtocol[netmodel.ApplicationKey(rec.Application)]++
		}

		ipFreq[rec.SourceIP]++
		ipFreq[rec.DestinationIP]++
		portFreq[rec.SourcePort]++
		portFreq[rec.DestPort]++
	}

	stats.Top10IPs = topIPs(ipFreq)
	stats.Top10Ports = topPorts(portFreq)

	return stats
}

// topIPs and topPorts both implement "stable top-N by frequency": sort the
// keys by descending count, break ties by ascending key so the order is
// deterministic, and keep the first N (spec.md §4.B).

func topIPs(freq map[string]int) []string {
	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > topN {
		keys = keys[:topN]
	}
	return keys
}

func topPorts(freq map[uint16]int) []uint16 {
	keys := make([]uint16, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > topN {
		keys = keys[:topN]
	}
	return keys
}
