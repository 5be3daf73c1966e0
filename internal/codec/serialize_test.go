package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func serialize(t *testing.T, packet []byte) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	SerializePacket(w, packet)
	require.NoError(t, w.Flush())
	return buf.String()
}

func buildIPHeader(protocol byte, totalLen uint16) []byte {
	hdr := make([]byte, 20)
	hdr[0] = 0x45 // version 4, ihl 5
	hdr[2] = byte(totalLen >> 8)
	hdr[3] = byte(totalLen)
	hdr[6] = 0x40 // DF
	hdr[8] = 64   // ttl
	hdr[9] = protocol
	copy(hdr[12:16], []byte{10, 0, 0, 1})
	copy(hdr[16:20], []byte{10, 0, 0, 2})
	return hdr
}

func TestSerializePacketUDP(t *testing.T) {
	pkt := buildIPHeader(protocolUDP, 20+8+2)
	pkt = append(pkt, 0x04, 0xd2, 0x00, 0x50) // ports
	pkt = append(pkt, 0x00, 0x0a, 0x00, 0x00) // length, checksum
	pkt = append(pkt, 'h', 'i')

	out := serialize(t, pkt)
	require.Contains(t, out, `"protocol":"UDP"`)
	require.Contains(t, out, `"sourcePort":1234`)
	require.Contains(t, out, `"destPort":80`)
	require.Contains(t, out, `"data":{"type":"text","data":["hi"]}`)
}

func TestSerializePacketTCPFlagsAndOptions(t *testing.T) {
	pkt := buildIPHeader(protocolTCP, 0)
	tcp := make([]byte, 24) // header + 4 bytes options (NOP, NOP, then a windowScale cut short by the region's end)
	tcp[0], tcp[1] = 0x00, 0x50
	tcp[2], tcp[3] = 0x04, 0xd2
	tcp[13] = tcpFlagSyn
	tcp[12] = byte(6 << 4) // doff = 6 (24 bytes)
	tcp[14], tcp[15] = 0xff, 0xff
	tcp[20] = tcpOptNOP
	tcp[21] = tcpOptNOP
	tcp[22] = tcpOptWindow
	tcp[23] = tcpOptLenWindow
	pkt = append(pkt, tcp...)
	pkt = append(pkt, 7) // one byte past doff*4; serialized as the hex data payload

	out := serialize(t, pkt)
	require.Contains(t, out, `"sourcePort":80`)
	require.Contains(t, out, `"destPort":1234`)
	require.Contains(t, out, `["SYN"]`)
	require.Contains(t, out, `"options":[["NOP"],["NOP"]]`)
}

func TestSerializePacketTCPHeaderLeavesWriterPackBalanced(t *testing.T) {
	pkt := buildIPHeader(protocolTCP, 0)
	tcp := make([]byte, 20)
	tcp[0], tcp[1] = 0x00, 0x50
	tcp[2], tcp[3] = 0x04, 0xd2
	tcp[13] = tcpFlagSyn
	tcp[12] = byte(5 << 4) // doff = 5, no options
	tcp[14], tcp[15] = 0xff, 0xff
	pkt = append(pkt, tcp...)

	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	SerializePacket(w, pkt)
	SerializePacket(w, pkt)
	require.NoError(t, w.Flush())

	// If writeTCPHeader leaves an unmatched BeginPack, indentation on the
	// second record collapses because the writer still thinks it's inside
	// a packed span.
	require.Contains(t, buf.String(), "\n  \"ip\": {")
	require.Equal(t, 2, strings.Count(buf.String(), "\n  \"ip\": {"))
}

func TestSerializePacketICMPEcho(t *testing.T) {
	pkt := buildIPHeader(protocolICMP, 0)
	icmp := []byte{8, 0, 0, 0, 0x00, 0x01, 0x00, 0x02}
	pkt = append(pkt, icmp...)

	out := serialize(t, pkt)
	require.Contains(t, out, `"type":"echoRequest"`)
	require.Contains(t, out, `"identifier":1`)
	require.Contains(t, out, `"sequenceNumber":2`)
}

func TestSerializePacketBinaryPayloadIsHex(t *testing.T) {
	pkt := buildIPHeader(protocolUDP, 0)
	pkt = append(pkt, 0x00, 0x35, 0x00, 0x35)
	pkt = append(pkt, 0x00, 0x0c, 0x00, 0x00) // length, checksum
	pkt = append(pkt, 0x00, 0x01, 0x02, 0x03)

	out := serialize(t, pkt)
	require.Contains(t, out, `"type":"hex"`)
}

func TestSerializePacketTooShortForIPHeaderYieldsEmptyObject(t *testing.T) {
	out := serialize(t, []byte{0x45, 0x00})
	require.Equal(t, `{}`, out)
}
