// Package netparse decodes a raw Ethernet frame into a netmodel.PacketRecord.
//
// Decoding never returns an error: malformed or uninteresting frames are
// expected in real capture traffic and must not interrupt processing of the
// rest of a PCAP file, so every rejection path simply returns ok == false.
package netparse

import (
	"encoding/binary"
	"fmt"

	"github.com/netwatch/pcapsentry/pkg/netmodel"
)

// EtherType and protocol-number constants used during classification.
const (
	etherTypeIPv4 = 0x0800

	ipProtoTCP = 0x06
	ipProtoUDP = 0x11

	minFrameLen    = 34 // Ethernet header (14) + minimum IPv4 header (20)
	ethernetHdrLen = 14
)

// Application-layer destination-port heuristics (spec.md §4.A step 10).
const (
	portHTTP1 = 80
	portHTTPS = 443
	portDNS   = 53
)

// Parse decodes one Ethernet-II frame. It returns ok == false for any frame
// that is too short, not IPv4, not version 4, or not TCP/UDP at the
// transport layer — never an error, per the package doc.
func Parse(frame []byte) (rec netmodel.PacketRecord, ok bool) {
	if len(frame) < minFrameLen {
		return netmodel.PacketRecord{}, false
	}

	etherType := binary.BigEndian.Uint16(frame[12:14])
	if etherType != etherTypeIPv4 {
		return netmodel.PacketRecord{}, false
	}

	versionAndIHL := frame[ethernetHdrLen]
	version := versionAndIHL >> 4
	if version != 4 {
		return netmodel.PacketRecord{}, false
	}

	ihl := int(versionAndIHL&0x0f) * 4
	transportOffset := ethernetHdrLen + ihl
	if len(frame) < transportOffset+4 {
		return netmodel.PacketRecord{}, false
	}

	nextProto := frame[ethernetHdrLen+9]
	srcIP := formatIPv4(frame[ethernetHdrLen+12 : ethernetHdrLen+16])
	dstIP := formatIPv4(frame[ethernetHdrLen+16 : ethernetHdrLen+20])

	srcPort := binary.BigEndian.Uint16(frame[transportOffset : transportOffset+2])
	dstPort := binary.BigEndian.Uint16(frame[transportOffset+2 : transportOffset+4])

	var transport netmodel.TransportLayer
	switch nextProto {
	case ipProtoTCP:
		transport = netmodel.TransportTCP
	case ipProtoUDP:
		transport = netmodel.TransportUDP
	default:
		return netmodel.PacketRecord{}, false
	}

	rec = netmodel.PacketRecord{
		Internet:      netmodel.InternetIPv4,
		Transport:     transport,
		SourceIP:      srcIP,
		DestinationIP: dstIP,
		SourcePort:    srcPort,
		DestPort:      dstPort,
		Length:        uint64(len(frame)),
	}
	rec.Application = classifyApplication(transport, dstPort)

	return rec, true
}

// classifyApplication applies the destination-port heuristic from
// spec.md §4.A step 10. Classification by destination port only is lossy
// (reply packets are never classified); that is intentional, not a bug.
func classifyApplication(transport netmodel.TransportLayer, dstPort uint16) netmodel.ApplicationLayer {
	switch transport {
	case netmodel.TransportTCP:
		switch dstPort {
		case portHTTP1, portHTTPS:
			return netmodel.ApplicationHTTP
		case portDNS:
			return netmodel.ApplicationDNS
		}
	case netmodel.TransportUDP:
		if dstPort == portDNS {
			return netmodel.ApplicationDNS
		}
	}
	return ""
}

func formatIPv4(b []byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}
