package codec

import (
	"fmt"
	"net"
)

// DeserializePacket reads one structured-text record from r (already
// positioned at its opening StartObject token) and renders it as a raw
// IPv4 datagram, patching in the length and checksum fields that the
// record format leaves implicit. r.Next must have already been called once
// to produce the StartObject token that begins the record.
func DeserializePacket(r *Reader) ([]byte, error) {
	if r.Token() != TokenStartObject {
		return nil, fmt.Errorf("unexpected token '%s', expected token '%s'", r.Token(), TokenStartObject)
	}
	if err := expectNextPropertyName(r, "ip"); err != nil {
		return nil, err
	}

	var buf []byte
	buf, err := deserializeIP4Header(r, buf)
	if err != nil {
		return nil, err
	}

	protocol := buf[9]
	switch protocol {
	case protocolTCP:
		if err := expectNextPropertyName(r, "tcp"); err != nil {
			return nil, err
		}
		buf, err = deserializeTCPHeader(r, buf)
		if err != nil {
			return nil, err
		}

	case protocolUDP:
		if err := expectNextPropertyName(r, "udp"); err != nil {
			return nil, err
		}
		buf, err = deserializeUDPHeader(r, buf)
		if err != nil {
			return nil, err
		}

	case protocolICMP:
		if err := expectNextPropertyName(r, "icmp"); err != nil {
			return nil, err
		}
		buf, err = deserializeICMPHeader(r, buf)
		if err != nil {
			return nil, err
		}
	}

	if !r.Next() {
		return nil, unexpectedEOF()
	}

	if r.Token() != TokenEndObject {
		if err := expectCurrentPropertyName(r, "data"); err != nil {
			return nil, err
		}
		if err := expectNextToken(r, TokenStartObject); err != nil {
			return nil, err
		}
		if err := expectNextPropertyName(r, "type"); err != nil {
			return nil, err
		}
		if err := expectNextToken(r, TokenString); err != nil {
			return nil, err
		}
		dataType := r.StringValue()
		if dataType != "text" && dataType != "hex" {
			return nil, fmt.Errorf("data type must be 'text' or 'hex', was '%s'", dataType)
		}
		if err := expectNextPropertyName(r, "data"); err != nil {
			return nil, err
		}
		if err := expectNextToken(r, TokenStartArray); err != nil {
			return nil, err
		}

		var dataStr []byte
		for {
			if !r.Next() {
				return nil, unexpectedEOF()
			}
			if r.Token() == TokenEndArray {
				break
			}
			if r.Token() != TokenString {
				return nil, fmt.Errorf("unexpected token '%s', expected 'String'", r.Token())
			}
			dataStr = append(dataStr, r.StringValue()...)
		}

		switch dataType {
		case "text":
			buf = append(buf, dataStr...)
		case "hex":
			hexBytes, err := parseHex(string(dataStr))
			if err != nil {
				return nil, err
			}
			buf = append(buf, hexBytes...)
		}

		if err := expectNextToken(r, TokenEndObject); err != nil {
			return nil, err
		}
		if err := expectNextToken(r, TokenEndObject); err != nil {
			return nil, err
		}
	}

	patchLengthsAndChecksums(buf)
	return buf, nil
}

// patchLengthsAndChecksums fills in the length and checksum fields the
// record format doesn't carry explicitly. The IPv4 total-length field is
// patched with only its low byte set and the high byte zeroed — this
// reproduces a truncation present in the original tool's patch step rather
// than computing the field correctly; records describing packets over 255
// bytes round-trip with a wire-wrong tot_len, matching historical behavior.
func patchLengthsAndChecksums(buf []byte) {
	packetSize := len(buf)
	buf[2] = 0
	buf[3] = byte(packetSize)

	ihl := int(buf[0] & 0x0f)
	ipHeaderSize := ihl * 4

	buf[10] = 0
	buf[11] = 0
	sum := checksum16(buf[:ipHeaderSize])
	buf[10] = byte(sum >> 8)
	buf[11] = byte(sum)

	protocol := buf[9]
	subHdr := buf[ipHeaderSize:]

	switch protocol {
	case protocolICMP:
		subHdr[2] = 0
		subHdr[3] = 0
		sum := checksum16(subHdr)
		subHdr[2] = byte(sum >> 8)
		subHdr[3] = byte(sum)

	case protocolTCP:
		subHdr[16] = 0
		subHdr[17] = 0
		var srcIP, dstIP [4]byte
		copy(srcIP[:], buf[12:16])
		copy(dstIP[:], buf[16:20])
		sum := checksumWithPseudoHeader(srcIP, dstIP, protocolTCP, subHdr)
		subHdr[16] = byte(sum >> 8)
		subHdr[17] = byte(sum)

	case protocolUDP:
		segLen := len(subHdr)
		subHdr[4] = byte(segLen >> 8)
		subHdr[5] = byte(segLen)
		subHdr[6] = 0
		subHdr[7] = 0
		var srcIP, dstIP [4]byte
		copy(srcIP[:], buf[12:16])
		copy(dstIP[:], buf[16:20])
		sum := checksumWithPseudoHeader(srcIP, dstIP, protocolUDP, subHdr)
		subHdr[6] = byte(sum >> 8)
		subHdr[7] = byte(sum)
	}
}

func unexpectedEOF() error {
	return fmt.Errorf("unexpected end of file")
}

func expectNextToken(r *Reader, expected Token) error {
	if !r.Next() {
		return unexpectedEOF()
	}
	if r.Token() != expected {
		return fmt.Errorf("unexpected token '%s', expected token '%s'", r.Token(), expected)
	}
	return nil
}

func expectCurrentPropertyName(r *Reader, name string) error {
	if r.Token() != TokenPropertyName {
		return fmt.Errorf("expected property named %s, was token %s", name, r.Token())
	}
	if r.StringValue() != name {
		return fmt.Errorf("expected property named '%s', instead it was named '%s'", name, r.StringValue())
	}
	return nil
}

func expectNextPropertyName(r *Reader, name string) error {
	if !r.Next() {
		return unexpectedEOF()
	}
	return expectCurrentPropertyName(r, name)
}

func expectNextEnumProperty(r *Reader, name string, lookup map[string]uint8) (uint8, error) {
	if err := expectNextPropertyName(r, name); err != nil {
		return 0, err
	}
	v, err := expectNextEnumValue(r, lookup)
	if err != nil {
		return 0, fmt.Errorf("error with property '%s': %w", name, err)
	}
	return v, nil
}

func expectNextEnumValue(r *Reader, lookup map[string]uint8) (uint8, error) {
	if !r.Next() {
		return 0, unexpectedEOF()
	}
	v, ok := lookup[r.StringValue()]
	if !ok {
		return 0, fmt.Errorf("unknown value '%s'", r.StringValue())
	}
	return v, nil
}

func expectNextIntProperty(r *Reader, name string, min, max int64) (int64, error) {
	if err := expectNextPropertyName(r, name); err != nil {
		return 0, err
	}
	if !r.Next() {
		if r.ErrorCode() != ErrorNone {
			return 0, fmt.Errorf("error parsing property %s: %s", name, r.ErrorCode())
		}
		return 0, unexpectedEOF()
	}
	if r.Token() != TokenInteger {
		return 0, fmt.Errorf("error parsing property %s: unexpected token '%s', expected token '%s'", name, r.Token(), TokenInteger)
	}
	v := r.IntValue()
	if v < min || v > max {
		return 0, fmt.Errorf("error parsing property %s: expected integer between %d and %d; was %d", name, min, max, v)
	}
	return v, nil
}

func expectIP4Value(r *Reader) ([4]byte, error) {
	var out [4]byte
	if !r.Next() {
		return out, unexpectedEOF()
	}
	if r.Token() != TokenString {
		return out, fmt.Errorf("unexpected token '%s', expected token '%s'", r.Token(), TokenString)
	}
	ip := net.ParseIP(r.StringValue())
	ip4 := ip.To4()
	if ip4 == nil {
		return out, fmt.Errorf("unable to parse IPv4 address '%s'", r.StringValue())
	}
	copy(out[:], ip4)
	return out, nil
}

// deserializeFlags reads a JSON-array-like span of flag-name strings,
// OR-ing each one's bit value together.
func deserializeFlags(r *Reader, lookup map[string]int) (int, error) {
	if err := expectNextToken(r, TokenStartArray); err != nil {
		return 0, err
	}
	result := 0
	for {
		if !r.Next() {
			return 0, unexpectedEOF()
		}
		if r.Token() == TokenEndArray {
			break
		}
		if r.Token() != TokenString {
			return 0, fmt.Errorf("unexpected token while deserializing flags")
		}
		bit, ok := lookup[r.StringValue()]
		if !ok {
			return 0, fmt.Errorf("unknown flag %s", r.StringValue())
		}
		result |= bit
	}
	return result, nil
}

func deserializeIP4Header(r *Reader, buf []byte) ([]byte, error) {
	if err := expectNextToken(r, TokenStartObject); err != nil {
		return nil, err
	}

	hdr := make([]byte, ipHeaderMinLen)

	version, err := expectNextIntProperty(r, "version", 4, 4)
	if err != nil {
		return nil, err
	}
	hdr[0] = (byte(version) << 4) | 5

	tos, err := expectNextIntProperty(r, "tos", 0, 255)
	if err != nil {
		return nil, err
	}
	hdr[1] = byte(tos)

	id, err := expectNextIntProperty(r, "id", 0, 65535)
	if err != nil {
		return nil, err
	}
	hdr[4] = byte(id >> 8)
	hdr[5] = byte(id)

	if err := expectNextPropertyName(r, "flags"); err != nil {
		return nil, err
	}
	flags, err := deserializeFlags(r, ipFlagLookupTable)
	if err != nil {
		return nil, fmt.Errorf("while reading property 'flags' in ip header: %w", err)
	}

	fragOffset, err := expectNextIntProperty(r, "fragmentOffset", 0, 8191)
	if err != nil {
		return nil, err
	}
	fragField := uint16(fragOffset) | uint16(flags)
	hdr[6] = byte(fragField >> 8)
	hdr[7] = byte(fragField)

	ttl, err := expectNextIntProperty(r, "ttl", 0, 255)
	if err != nil {
		return nil, err
	}
	hdr[8] = byte(ttl)

	protocol, err := expectNextEnumProperty(r, "protocol", protocolNameTable)
	if err != nil {
		return nil, err
	}
	hdr[9] = protocol

	if err := expectNextPropertyName(r, "source"); err != nil {
		return nil, err
	}
	src, err := expectIP4Value(r)
	if err != nil {
		return nil, fmt.Errorf("in property 'source': %w", err)
	}
	copy(hdr[12:16], src[:])

	if err := expectNextPropertyName(r, "destination"); err != nil {
		return nil, err
	}
	dst, err := expectIP4Value(r)
	if err != nil {
		return nil, fmt.Errorf("in property 'destination': %w", err)
	}
	copy(hdr[16:20], dst[:])

	if err := expectNextToken(r, TokenEndObject); err != nil {
		return nil, fmt.Errorf("while reading IP header: %w", err)
	}

	return append(buf, hdr...), nil
}

func deserializeTCPHeaderOptions(r *Reader, buf []byte) ([]byte, error) {
	if r.Token() == TokenEndObject {
		return buf, nil
	}

	if err := expectCurrentPropertyName(r, "options"); err != nil {
		return nil, err
	}
	if err := expectNextToken(r, TokenStartArray); err != nil {
		return nil, err
	}
	if !r.Next() {
		return nil, unexpectedEOF()
	}

	for r.Token() != TokenEndArray {
		if r.Token() != TokenStartArray {
			return nil, fmt.Errorf("unexpected token '%s', expected token '%s'", r.Token(), TokenStartArray)
		}

		optionType, err := expectNextEnumValue(r, tcpOptionLookup)
		if err != nil {
			return nil, err
		}

		switch optionType {
		case tcpOptEOL, tcpOptNOP:
			buf = append(buf, optionType)

		case tcpOptSackPermit:
			buf = append(buf, optionType, tcpOptLenSackPerm)

		case tcpOptMaxSeg:
			buf = append(buf, optionType, tcpOptLenMaxSeg)
			value, err := expectNextIntProperty2(r, 0, 65535)
			if err != nil {
				return nil, err
			}
			buf = append(buf, byte(value>>8), byte(value))

		case tcpOptWindow:
			// windowScale is serialized here with the RFC-1323-correct
			// 3-byte option length (kind, length, shift count) rather
			// than the 4-byte layout used elsewhere for maxSegmentSize,
			// so serializer and deserializer agree on its wire size.
			buf = append(buf, optionType, tcpOptLenWindow)
			value, err := expectNextIntProperty2(r, 0, 255)
			if err != nil {
				return nil, err
			}
			buf = append(buf, byte(value))

		case tcpOptSack:
			return nil, fmt.Errorf("Selective acknowledgements are not supported")

		case tcpOptTimestamp:
			buf = append(buf, optionType, tcpOptLenTimestamp)
			v1, err := expectNextIntProperty2(r, 0, 4294967295)
			if err != nil {
				return nil, err
			}
			v2, err := expectNextIntProperty2(r, 0, 4294967295)
			if err != nil {
				return nil, err
			}
			buf = append(buf,
				byte(v1>>24), byte(v1>>16), byte(v1>>8), byte(v1),
				byte(v2>>24), byte(v2>>16), byte(v2>>8), byte(v2))
		}

		if err := expectNextToken(r, TokenEndArray); err != nil {
			return nil, err
		}
		if !r.Next() {
			return nil, unexpectedEOF()
		}
	}
	if err := expectNextToken(r, TokenEndObject); err != nil {
		return nil, err
	}
	return buf, nil
}

func expectNextIntProperty2(r *Reader, min, max int64) (int64, error) {
	if !r.Next() {
		if r.ErrorCode() != ErrorNone {
			return 0, fmt.Errorf("%s", r.ErrorCode())
		}
		return 0, unexpectedEOF()
	}
	if r.Token() != TokenInteger {
		return 0, fmt.Errorf("unexpected token '%s', expected token '%s'", r.Token(), TokenInteger)
	}
	v := r.IntValue()
	if v < min || v > max {
		return 0, fmt.Errorf("expected integer between %d and %d; was %d", min, max, v)
	}
	return v, nil
}

func deserializeTCPHeader(r *Reader, buf []byte) ([]byte, error) {
	if err := expectNextToken(r, TokenStartObject); err != nil {
		return nil, err
	}

	hdr := make([]byte, tcpHeaderLen)

	srcPort, err := expectNextIntProperty(r, "sourcePort", 0, 65535)
	if err != nil {
		return nil, err
	}
	hdr[0], hdr[1] = byte(srcPort>>8), byte(srcPort)

	dstPort, err := expectNextIntProperty(r, "destPort", 0, 65535)
	if err != nil {
		return nil, err
	}
	hdr[2], hdr[3] = byte(dstPort>>8), byte(dstPort)

	seq, err := expectNextIntProperty(r, "seqNumber", 0, 4294967295)
	if err != nil {
		return nil, err
	}
	hdr[4], hdr[5], hdr[6], hdr[7] = byte(seq>>24), byte(seq>>16), byte(seq>>8), byte(seq)

	if err := expectNextToken(r, TokenPropertyName); err != nil {
		return nil, err
	}

	hadAckNumber := false
	if r.StringValue() == "ackNumber" {
		ackSeq, err := expectCurrentIntProperty(r, "ackNumber", 0, 4294967295)
		if err != nil {
			return nil, err
		}
		hdr[8], hdr[9], hdr[10], hdr[11] = byte(ackSeq>>24), byte(ackSeq>>16), byte(ackSeq>>8), byte(ackSeq)
		hadAckNumber = true
		if err := expectNextToken(r, TokenPropertyName); err != nil {
			return nil, err
		}
	}

	if err := expectCurrentPropertyName(r, "flags"); err != nil {
		return nil, err
	}
	tcpFlags, err := deserializeFlags(r, tcpFlagLookupTable)
	if err != nil {
		return nil, err
	}
	var flagByte byte
	if tcpFlags&tcpFlagFin != 0 {
		flagByte |= tcpFlagFin
	}
	if tcpFlags&tcpFlagSyn != 0 {
		flagByte |= tcpFlagSyn
	}
	if tcpFlags&tcpFlagRst != 0 {
		flagByte |= tcpFlagRst
	}
	if tcpFlags&tcpFlagPsh != 0 {
		flagByte |= tcpFlagPsh
	}
	if tcpFlags&tcpFlagAck != 0 {
		flagByte |= tcpFlagAck
	}
	if tcpFlags&tcpFlagUrg != 0 {
		flagByte |= tcpFlagUrg
	}
	if tcpFlags&tcpFlagEce != 0 {
		flagByte |= tcpFlagEce
	}
	if tcpFlags&tcpFlagCwr != 0 {
		flagByte |= tcpFlagCwr
	}
	if flagByte&tcpFlagAck != 0 && !hadAckNumber {
		return nil, fmt.Errorf("tcp header has ACK flag set but no ackNumber property")
	}
	hdr[13] = flagByte

	window, err := expectNextIntProperty(r, "windowSize", 0, 65535)
	if err != nil {
		return nil, err
	}
	hdr[14], hdr[15] = byte(window>>8), byte(window)

	if flagByte&tcpFlagUrg != 0 {
		urgPtr, err := expectNextIntProperty(r, "urgentPointer", 0, 65535)
		if err != nil {
			return nil, err
		}
		hdr[18], hdr[19] = byte(urgPtr>>8), byte(urgPtr)
	}

	if !r.Next() {
		return nil, unexpectedEOF()
	}

	tcpHeaderOffset := len(buf)
	buf = append(buf, hdr...)

	optionsOffset := len(buf)
	buf, err = deserializeTCPHeaderOptions(r, buf)
	if err != nil {
		return nil, err
	}
	optionsSize := len(buf) - optionsOffset

	if optionsSize%4 != 0 {
		return nil, fmt.Errorf("tcp header options are not padded correctly")
	}

	buf[tcpHeaderOffset+12] = byte((5+optionsSize/4)&0x0f)<<4 | byte(tcpFlags>>8)&0x01

	return buf, nil
}

func expectCurrentIntProperty(r *Reader, name string, min, max int64) (int64, error) {
	if err := expectCurrentPropertyName(r, name); err != nil {
		return 0, err
	}
	return expectNextIntProperty2(r, min, max)
}

func deserializeUDPHeader(r *Reader, buf []byte) ([]byte, error) {
	if err := expectNextToken(r, TokenStartObject); err != nil {
		return nil, err
	}

	hdr := make([]byte, udpHeaderLen)

	srcPort, err := expectNextIntProperty(r, "sourcePort", 0, 65535)
	if err != nil {
		return nil, err
	}
	hdr[0], hdr[1] = byte(srcPort>>8), byte(srcPort)

	dstPort, err := expectNextIntProperty(r, "destPort", 0, 65535)
	if err != nil {
		return nil, err
	}
	hdr[2], hdr[3] = byte(dstPort>>8), byte(dstPort)

	if err := expectNextToken(r, TokenEndObject); err != nil {
		return nil, err
	}

	return append(buf, hdr...), nil
}

func deserializeICMPHeader(r *Reader, buf []byte) ([]byte, error) {
	if err := expectNextToken(r, TokenStartObject); err != nil {
		return nil, err
	}

	hdr := make([]byte, icmpHeaderLen)

	icmpType, err := expectNextEnumProperty(r, "type", icmpTypeLookupTable)
	if err != nil {
		return nil, err
	}
	hdr[0] = icmpType

	var code int64
	switch icmpType {
	case destUnreachType:
		v, err := expectNextEnumProperty(r, "code", icmpDestUnreachLookupTable)
		if err != nil {
			return nil, err
		}
		code = int64(v)
	case redirectType:
		v, err := expectNextEnumProperty(r, "code", icmpRedirectLookupTable)
		if err != nil {
			return nil, err
		}
		code = int64(v)
	case paramProbType:
		v, err := expectNextEnumProperty(r, "code", icmpBadIPHeaderLookupTable)
		if err != nil {
			return nil, err
		}
		code = int64(v)
	default:
		v, err := expectNextIntProperty(r, "code", 0, 255)
		if err != nil {
			return nil, err
		}
		code = v
	}
	hdr[1] = byte(code)

	switch icmpType {
	case echoRequestType, echoReplyType, timestampType, timestampRepTyp, addressType, addressRepType:
		id, err := expectNextIntProperty(r, "identifier", 0, 65535)
		if err != nil {
			return nil, err
		}
		hdr[4], hdr[5] = byte(id>>8), byte(id)
		seq, err := expectNextIntProperty(r, "sequenceNumber", 0, 65535)
		if err != nil {
			return nil, err
		}
		hdr[6], hdr[7] = byte(seq>>8), byte(seq)

	case destUnreachType:
		mtu, err := expectNextIntProperty(r, "nextHopMtu", 0, 65535)
		if err != nil {
			return nil, err
		}
		hdr[6], hdr[7] = byte(mtu>>8), byte(mtu)

	case redirectType:
		if err := expectNextPropertyName(r, "gateway"); err != nil {
			return nil, err
		}
		gw, err := expectIP4Value(r)
		if err != nil {
			return nil, err
		}
		copy(hdr[4:8], gw[:])
	}

	if err := expectNextToken(r, TokenEndObject); err != nil {
		return nil, err
	}

	return append(buf, hdr...), nil
}
