package netstats

import (
	"reflect"
	"testing"

	"github.com/netwatch/pcapsentry/pkg/netmodel"
)

func TestFold_Empty(t *testing.T) {
	got := Fold(nil)
	want := netmodel.Zero()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fold(nil) = %+v, want %+v", got, want)
	}
}

func TestFold_SingleHTTPOverTCP(t *testing.T) {
	records := []netmodel.PacketRecord{
		{
			Internet: netmodel.InternetIPv4, Transport: netmodel.TransportTCP, Application: netmodel.ApplicationHTTP,
			SourceIP: "10.0.0.1", DestinationIP: "10.0.0.2",
			SourcePort: 12345, DestPort: 80,
			Length: 74,
		},
	}

	got := Fold(records)

	if got.TotalPackets != 1 {
		t.Errorf("TotalPackets = %d, want 1", got.TotalPackets)
	}
	if got.TotalBytesPacket != 74 {
		t.Errorf("TotalBytesPacket = %d, want 74", got.TotalBytesPacket)
	}
	wantProto := map[netmodel.ProtocolKey]int{"IPv4": 1, "Tcp": 1, "Http": 1}
	if !reflect.DeepEqual(got.ByProtocol, wantProto) {
		t.Errorf("ByProtocol = %v, want %v", got.ByProtocol, wantProto)
	}
	if !reflect.DeepEqual(got.Top10IPs, []string{"10.0.0.1", "10.0.0.2"}) {
		t.Errorf("Top10IPs = %v, want [10.0.0.1 10.0.0.2]", got.Top10IPs)
	}
	if !reflect.DeepEqual(got.Top10Ports, []uint16{80, 12345}) {
		t.Errorf("Top10Ports = %v, want [80 12345]", got.Top10Ports)
	}
}

func TestFold_DNSOverUDP(t *testing.T) {
	records := []netmodel.PacketRecord{
		{
			Internet: netmodel.InternetIPv4, Transport: netmodel.TransportUDP, Application: netmodel.ApplicationDNS,
			SourceIP: "10.0.0.1", DestinationIP: "8.8.8.8",
			SourcePort: 54321, DestPort: 53,
			Length: 60,
		},
	}

	got := Fold(records)
	wantProto := map[netmodel.ProtocolKey]int{"IPv4": 1, "Udp": 1, "Dns": 1}
	if !reflect.DeepEqual(got.ByProtocol, wantProto) {
		t.Errorf("ByProtocol = %v, want %v", got.ByProtocol, wantProto)
	}
}

func TestFold_TopNCapsAtTen(t *testing.T) {
	var records []netmodel.PacketRecord
	for i := 0; i < 15; i++ {
		records = append(records, netmodel.PacketRecord{
			Internet: netmodel.InternetIPv4,
			SourceIP: string(rune('a' + i)), DestinationIP: string(rune('A' + i)),
			Length: 1,
		})
	}

	got := Fold(records)
	if len(got.Top10IPs) != 10 {
		t.Errorf("len(Top10IPs) = %d, want 10", len(got.Top10IPs))
	}
}

func TestFold_TieBreakAscending(t *testing.T) {
	records := []netmodel.PacketRecord{
		{Internet: netmodel.InternetIPv4, SourceIP: "10.0.0.9", DestinationIP: "10.0.0.9", Length: 1},
		{Internet: netmodel.InternetIPv4, SourceIP: "10.0.0.2", DestinationIP: "10.0.0.2", Length: 1},
		{Internet: netmodel.InternetIPv4, SourceIP: "10.0.0.5", DestinationIP: "10.0.0.5", Length: 1},
	}

	got := Fold(records)
	want := []string{"10.0.0.2", "10.0.0.5", "10.0.0.9"}
	if !reflect.DeepEqual(got.Top10IPs, want) {
		t.Errorf("Top10IPs = %v, want %v (ascending tie-break, all freq 2)", got.Top10IPs, want)
	}
}

func TestFold_TotalBytesIsSumOfLengths(t *testing.T) {
	records := []netmodel.PacketRecord{
		{Internet: netmodel.InternetIPv4, SourceIP: "a", DestinationIP: "b", Length: 100},
		{Internet: netmodel.InternetIPv4, SourceIP: "c", DestinationIP: "d", Length: 250},
	}

	got := Fold(records)
	if got.TotalBytesPacket != 350 {
		t.Errorf("TotalBytesPacket = %d, want 350", got.TotalBytesPacket)
	}
	if got.TotalPackets != len(records) {
		t.Errorf("TotalPackets = %d, want %d", got.TotalPackets, len(records))
	}
}
