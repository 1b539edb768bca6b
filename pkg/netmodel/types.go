// Package netmodel holds the value types shared by the parser, the stats
// engine, and the JSON reports: packet records, protocol keys, and the
// cumulative statistics document.
package netmodel

// InternetLayer identifies the network layer protocol of a parsed packet.
// Only IPv4 is decoded today; the type is kept open for future layers.
type InternetLayer string

const (
	InternetIPv4 InternetLayer = "IPv4"
)

// TransportLayer identifies the transport protocol of a parsed packet, when present.
type TransportLayer string

const (
	TransportTCP TransportLayer = "Tcp"
	TransportUDP TransportLayer = "Udp"
)

// ApplicationLayer identifies the heuristically classified application
// protocol of a parsed packet, when one was recognized.
type ApplicationLayer string

const (
	ApplicationDNS  ApplicationLayer = "Dns"
	ApplicationHTTP ApplicationLayer = "Http"
)

// PacketRecord is one successfully decoded Ethernet frame.
//
// Invariant: if Application is non-empty, Transport is non-empty.
// Invariant: Internet is always InternetIPv4 in this version.
// Invariant: Length >= 34.
type PacketRecord struct {
	Internet    InternetLayer
	Transport   TransportLayer   // empty if no transport layer was recognized
	Application ApplicationLayer // empty if no application layer was recognized

	SourceIP      string
	DestinationIP string
	SourcePort    uint16 // 0 when Transport is empty
	DestPort      uint16 // 0 when Transport is empty

	Length uint64 // byte length of the original frame
}

// ProtocolKey is the stable textual label used both as a by_protocol map key
// and as its own JSON value. Each key holds the label of exactly one
// InternetLayer, TransportLayer or ApplicationLayer value, matching the Rust
// original's tagged union (model.rs ProtocolKey).
type ProtocolKey string

// InternetKey, TransportKey and ApplicationKey build a ProtocolKey from the matching
// layer value. Keeping three constructors instead of one mirrors the three
// enum variants the Rust model used as the union's arms.
func InternetKey(l InternetLayer) ProtocolKey     { return ProtocolKey(l) }
func TransportKey(l TransportLayer) ProtocolKey   { return ProtocolKey(l) }
func ApplicationKey(l ApplicationLayer) ProtocolKey { return ProtocolKey(l) }

// NetworkStats is the JSON-serializable result of folding a sequence of
// PacketRecords, per-file or cumulative.
type NetworkStats struct {
	TotalPackets      int                    `json:"total_packets"`
	TotalBytesPacket  uint64                 `json:"total_bytes_packet"`
	ByProtocol        map[ProtocolKey]int    `json:"by_protocol"`
	Top10IPs          []string               `json:"top_10_ips"`
	Top10Ports        []uint16               `json:"top_10_ports"`
}

// Zero returns the NetworkStats document for an empty record sequence,
// matching the S1 scenario's expected JSON.
func Zero() NetworkStats {
	return NetworkStats{
		ByProtocol: map[ProtocolKey]int{},
		Top10IPs:   []string{},
		Top10Ports: []uint16{},
	}
}
