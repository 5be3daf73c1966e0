package codec

import (
	"fmt"
)

const (
	ipHeaderMinLen  = 20
	tcpHeaderLen    = 20
	udpHeaderLen    = 8
	icmpHeaderLen   = 8
	destUnreachType = 3
	redirectType    = 5
	paramProbType   = 12
	echoReplyType   = 0
	echoRequestType = 8
	timestampType   = 13
	timestampRepTyp = 14
	addressType     = 17
	addressRepType  = 18

	tcpOptEOL          = 0
	tcpOptNOP          = 1
	tcpOptMaxSeg       = 2
	tcpOptWindow       = 3
	tcpOptSackPermit   = 4
	tcpOptSack         = 5
	tcpOptTimestamp    = 8
	tcpOptLenMaxSeg    = 4
	tcpOptLenWindow    = 3
	tcpOptLenSackPerm  = 2
	tcpOptLenTimestamp = 10
)

// SerializePacket renders a raw IPv4 datagram as a structured-text record
// through w. A packet too short to hold an IPv4 header, or whose IHL field
// is below the minimum of 5, is recorded as an empty object rather than
// raising an error; once an IP header is readable, a transport header and
// trailing payload are each included only as far as the packet's length
// actually reaches.
func SerializePacket(w *Writer, packet []byte) {
	w.BeginObject()

	if len(packet) >= ipHeaderMinLen {
		ihl := int(packet[0] & 0x0f)
		if ihl >= 5 {
			w.WritePropertyName("ip")
			nextHeaderOffset := writeIPHeader(w, packet)

			header2Size := 0
			protocol := packet[9]
			switch {
			case protocol == protocolTCP && len(packet) >= nextHeaderOffset+tcpHeaderLen:
				w.WritePropertyName("tcp")
				header2Size = writeTCPHeader(w, packet[nextHeaderOffset:], len(packet)-nextHeaderOffset)

			case protocol == protocolUDP && len(packet) >= nextHeaderOffset+udpHeaderLen:
				w.WritePropertyName("udp")
				header2Size = writeUDPHeader(w, packet[nextHeaderOffset:])

			case protocol == protocolICMP && len(packet) >= nextHeaderOffset+icmpHeaderLen:
				w.WritePropertyName("icmp")
				header2Size = writeICMPHeader(w, packet[nextHeaderOffset:])
			}

			dataOffset := nextHeaderOffset + header2Size
			if len(packet) > dataOffset {
				w.WritePropertyName("data")
				serializeBytes(w, packet[dataOffset:])
			}
		}
	}

	w.EndObject()
}

func writeIPHeader(w *Writer, packet []byte) int {
	version := packet[0] >> 4
	ihl := int(packet[0] & 0x0f)
	tos := packet[1]
	id := uint16(packet[4])<<8 | uint16(packet[5])
	fragOff := uint16(packet[6])<<8 | uint16(packet[7])
	ttl := packet[8]
	protocol := packet[9]
	srcIP := fmt.Sprintf("%d.%d.%d.%d", packet[12], packet[13], packet[14], packet[15])
	dstIP := fmt.Sprintf("%d.%d.%d.%d", packet[16], packet[17], packet[18], packet[19])

	w.BeginObject()
	w.WritePropertyName("version")
	w.BeginPack()
	w.WriteInteger(int64(version))
	w.WritePropertyName("tos")
	w.WriteInteger(int64(tos))
	w.WritePropertyName("id")
	w.WriteInteger(int64(id))
	w.WritePropertyName("flags")
	writeIPFlags(w, fragOff)
	w.EndPack()

	w.WritePropertyName("fragmentOffset")
	w.BeginPack()
	w.WriteInteger(int64(fragOff & 0x1fff))
	w.WritePropertyName("ttl")
	w.WriteInteger(int64(ttl))
	w.WritePropertyName("protocol")
	writeFriendlyStringOrInt(w, protocolNames[:], protocol)
	w.EndPack()

	w.WritePropertyName("source")
	w.BeginPack()
	w.WriteString(srcIP)
	w.WritePropertyName("destination")
	w.WriteString(dstIP)
	w.EndPack()

	w.EndObject()
	return ihl * 4
}

func writeIPFlags(w *Writer, fragOff uint16) {
	w.BeginArray()
	if fragOff&ipFlagDF != 0 {
		w.WriteString("DF")
	}
	if fragOff&ipFlagMF != 0 {
		w.WriteString("MF")
	}
	w.EndArray()
}

func writeFriendlyStringOrInt(w *Writer, names []string, v uint8) {
	if name := friendlyNameOrInt(names, v); name != "" {
		w.WriteString(name)
	} else {
		w.WriteInteger(int64(v))
	}
}

func writeTCPFlags(w *Writer, flagByte byte) {
	w.BeginArray()
	if flagByte&tcpFlagUrg != 0 {
		w.WriteString("URG")
	}
	if flagByte&tcpFlagAck != 0 {
		w.WriteString("ACK")
	}
	if flagByte&tcpFlagPsh != 0 {
		w.WriteString("PSH")
	}
	if flagByte&tcpFlagRst != 0 {
		w.WriteString("RST")
	}
	if flagByte&tcpFlagSyn != 0 {
		w.WriteString("SYN")
	}
	if flagByte&tcpFlagFin != 0 {
		w.WriteString("FIN")
	}
	w.EndArray()
}

// writeTCPHeader returns the TCP header's wire length (including options),
// per the doff field — not the number of bytes it actually read, mirroring
// the original's return-by-declared-size contract.
func writeTCPHeader(w *Writer, seg []byte, sizeLimit int) int {
	srcPort := uint16(seg[0])<<8 | uint16(seg[1])
	dstPort := uint16(seg[2])<<8 | uint16(seg[3])
	seq := uint32(seg[4])<<24 | uint32(seg[5])<<16 | uint32(seg[6])<<8 | uint32(seg[7])
	ackSeq := uint32(seg[8])<<24 | uint32(seg[9])<<16 | uint32(seg[10])<<8 | uint32(seg[11])
	doff := int(seg[12] >> 4)
	flagByte := seg[13]
	window := uint16(seg[14])<<8 | uint16(seg[15])
	urgPtr := uint16(seg[18])<<8 | uint16(seg[19])

	hasAck := flagByte&tcpFlagAck != 0
	hasUrg := flagByte&tcpFlagUrg != 0

	w.BeginObject()
	w.WritePropertyName("sourcePort")
	w.BeginPack()
	w.WriteInteger(int64(srcPort))
	w.WritePropertyName("destPort")
	w.WriteInteger(int64(dstPort))
	w.EndPack()

	w.WritePropertyName("seqNumber")
	w.BeginPack()
	w.WriteInteger(int64(seq))
	if hasAck {
		w.WritePropertyName("ackNumber")
		w.WriteInteger(int64(ackSeq))
	}
	w.EndPack()

	w.WritePropertyName("flags")
	w.BeginPack()
	writeTCPFlags(w, flagByte)
	w.WritePropertyName("windowSize")
	w.BeginPack()
	w.WriteInteger(int64(window))
	if hasUrg {
		w.WritePropertyName("urgentPointer")
		w.WriteInteger(int64(urgPtr))
	}
	w.EndPack()
	w.EndPack()

	totalHeaderSize := doff * 4
	optionsSize := sizeLimit - tcpHeaderLen
	if max(ipHeaderMinLen, totalHeaderSize)-20 < optionsSize {
		optionsSize = max(ipHeaderMinLen, totalHeaderSize) - 20
	}

	if optionsSize > 0 && len(seg) >= tcpHeaderLen+optionsSize {
		writeTCPOptions(w, seg[tcpHeaderLen:tcpHeaderLen+optionsSize])
	}
	w.EndObject()
	return totalHeaderSize
}

func writeTCPOptions(w *Writer, options []byte) {
	w.WritePropertyName("options")
	w.BeginPack()
	w.BeginArray()

	for p := 0; p < len(options); {
		optType := options[p]

		if optType == tcpOptNOP {
			w.BeginArray()
			w.WriteString("NOP")
			w.EndArray()
			p++
			continue
		}
		if optType == tcpOptEOL {
			w.BeginArray()
			w.WriteString("EOL")
			w.EndArray()
			break
		}
		if p+1 >= len(options) {
			break
		}
		optSize := int(options[p+1])
		if p+optSize > len(options) || optSize < 2 {
			break
		}

		switch optType {
		case tcpOptMaxSeg:
			if optSize == tcpOptLenMaxSeg {
				writeTCPOption(w, "maxSegmentSize", uint32(options[p+2])<<8|uint32(options[p+3]))
			}
		case tcpOptWindow:
			if optSize == tcpOptLenWindow {
				writeTCPOption(w, "windowScale", uint32(options[p+2]))
			}
		case tcpOptSackPermit:
			if optSize == tcpOptLenSackPerm {
				w.BeginArray()
				w.WriteString("sackPermitted")
				w.EndArray()
			}
		case tcpOptTimestamp:
			if optSize == tcpOptLenTimestamp {
				v1 := uint32(options[p+2])<<24 | uint32(options[p+3])<<16 | uint32(options[p+4])<<8 | uint32(options[p+5])
				v2 := uint32(options[p+6])<<24 | uint32(options[p+7])<<16 | uint32(options[p+8])<<8 | uint32(options[p+9])
				w.BeginArray()
				w.WriteString("timestamp")
				w.WriteInteger(int64(v1))
				w.WriteInteger(int64(v2))
				w.EndArray()
			}
		}

		p += optSize
	}
	w.EndArray()
	w.EndPack()
}

func writeTCPOption(w *Writer, name string, value uint32) {
	w.BeginArray()
	w.WriteString(name)
	w.WriteInteger(int64(value))
	w.EndArray()
}

func writeUDPHeader(w *Writer, seg []byte) int {
	srcPort := uint16(seg[0])<<8 | uint16(seg[1])
	dstPort := uint16(seg[2])<<8 | uint16(seg[3])

	w.BeginObject()
	w.WritePropertyName("sourcePort")
	w.WriteInteger(int64(srcPort))
	w.WritePropertyName("destPort")
	w.WriteInteger(int64(dstPort))
	w.EndObject()
	return udpHeaderLen
}

func writeICMPCode(w *Writer, icmpType, code uint8) {
	switch icmpType {
	case destUnreachType:
		writeFriendlyStringOrInt(w, icmpDestinationUnreachableCodeNames[:], code)
	case redirectType:
		writeFriendlyStringOrInt(w, icmpRedirectMessageCodeNames[:], code)
	case paramProbType:
		writeFriendlyStringOrInt(w, icmpBadIpHeaderCodeNames[:], code)
	default:
		w.WriteInteger(int64(code))
	}
}

func writeICMPHeader(w *Writer, seg []byte) int {
	icmpType := seg[0]
	code := seg[1]

	w.BeginObject()
	w.WritePropertyName("type")
	w.BeginPack()
	writeFriendlyStringOrInt(w, icmpTypeNames[:], icmpType)
	w.WritePropertyName("code")
	writeICMPCode(w, icmpType, code)
	w.EndPack()

	switch icmpType {
	case echoRequestType, echoReplyType, timestampType, timestampRepTyp, addressType, addressRepType:
		id := uint16(seg[4])<<8 | uint16(seg[5])
		seq := uint16(seg[6])<<8 | uint16(seg[7])
		w.WritePropertyName("identifier")
		w.BeginPack()
		w.WriteInteger(int64(id))
		w.WritePropertyName("sequenceNumber")
		w.WriteInteger(int64(seq))
		w.EndPack()

	case destUnreachType:
		mtu := uint16(seg[6])<<8 | uint16(seg[7])
		w.WritePropertyName("nextHopMtu")
		w.WriteInteger(int64(mtu))

	case redirectType:
		gw := fmt.Sprintf("%d.%d.%d.%d", seg[4], seg[5], seg[6], seg[7])
		w.WritePropertyName("gateway")
		w.WriteString(gw)
	}
	w.EndObject()
	return icmpHeaderLen
}

func isPlainText(b []byte) bool {
	for _, c := range b {
		if c < ' ' && c != '\r' && c != '\n' && c != '\t' {
			return false
		}
	}
	return true
}

func serializeBytes(w *Writer, b []byte) {
	if isPlainText(b) {
		serializeBytesAsText(w, b)
	} else {
		serializeBytesAsHex(w, b)
	}
}

func serializeBytesAsText(w *Writer, b []byte) {
	w.BeginObject()
	w.WritePropertyName("type")
	w.WriteString("text")
	w.WritePropertyName("data")
	w.BeginArray()
	var line []byte
	for _, c := range b {
		line = append(line, c)
		if c == '\n' {
			w.WriteString(string(line))
			line = line[:0]
		}
	}
	if len(line) > 0 {
		w.WriteString(string(line))
	}
	w.EndArray()
	w.EndObject()
}

func serializeBytesAsHex(w *Writer, b []byte) {
	const bytesPerLine = 16
	w.BeginObject()
	w.WritePropertyName("type")
	w.WriteString("hex")
	w.WritePropertyName("data")
	w.BeginArray()
	for p := 0; p < len(b); p += bytesPerLine {
		end := p + bytesPerLine
		if end > len(b) {
			end = len(b)
		}
		w.WriteString(formatHexLine(b[p:end]))
	}
	w.EndArray()
	w.EndObject()
}

