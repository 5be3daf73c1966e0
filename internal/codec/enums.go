package codec

const (
	protocolTCP  = 6
	protocolUDP  = 17
	protocolICMP = 1
)

// protocolNames maps an IPv4 protocol number to the friendly name the
// serializer prefers to emit; numbers with no entry fall back to their raw
// integer value.
var protocolNames = [256]string{
	0: "HOPOPT", 1: "ICMP", 2: "IGMP", 3: "GGP", 4: "IP", 5: "ST", 6: "TCP", 7: "CBT",
	8: "EGP", 9: "IGP", 10: "BBN-RCC-MON", 11: "NVP-II", 12: "PUP", 13: "ARGUS", 14: "EMCON", 15: "XNET",
	16: "CHAOS", 17: "UDP", 18: "MUX", 19: "DCN-MEAS", 20: "HMP", 21: "PRM", 22: "XNS-IDP", 23: "TRUNK-1",
	24: "TRUNK-2", 25: "LEAF-1", 26: "LEAF-2", 27: "RDP", 28: "IRTP", 29: "ISO-TP4", 30: "NETBLT", 31: "MFE-NSP",
	32: "MERIT-INP", 33: "DCCP", 34: "3PC", 35: "IDPR", 36: "XTP", 37: "DDP", 38: "IDPR-CMTP", 39: "TP++",
	40: "IL", 41: "IPv6", 42: "SDRP", 43: "IPv6-Route", 44: "IPv6-Frag", 45: "IDRP", 46: "RSVP", 47: "GRE",
	48: "MHRP", 49: "BNA", 50: "ESP", 51: "AH", 52: "I-NLSP", 53: "SWIPE", 54: "NARP", 55: "MOBILE",
	56: "TLSP", 57: "SKIP", 58: "IPv6-ICMP", 59: "IPv6-NoNxt", 60: "IPv6-Opts", 62: "CFTP",
	64: "SAT-EXPAK", 65: "KRYPTOLAN", 66: "RVD", 67: "IPPC", 69: "SAT-MON", 70: "VISA", 71: "IPCV",
	72: "CPNX", 73: "CPHB", 74: "WSN", 75: "PVP", 76: "BR-SAT-MON", 77: "SUN-ND", 78: "WB-MON", 79: "WB-EXPAK",
	80: "ISO-IP", 81: "VMTP", 82: "SECURE-VMTP", 83: "VINES", 84: "TTP", 85: "NSFNET-IGP", 86: "DGP", 87: "TCF",
	88: "EIGRP", 89: "OSPF", 90: "Sprite-RPC", 91: "LARP", 92: "MTP", 93: "AX.25", 94: "IPIP", 95: "MICP",
	96: "SCC-SP", 97: "ETHERIP", 98: "ENCAP", 100: "GMTP", 101: "IFMP", 102: "PNNI", 103: "PIM",
	104: "ARIS", 105: "SCPS", 106: "QNX", 107: "A/N", 108: "IPComp", 109: "SNP", 110: "Compaq-Peer", 111: "IPX-in-IP",
	112: "VRRP", 113: "PGM", 115: "L2TP", 116: "DDX", 117: "IATP", 118: "STP", 119: "SRP",
	120: "UTI", 121: "SMP", 122: "SM", 123: "PTP", 125: "FIRE", 126: "CRTP", 127: "CRUDP",
	128: "SSCOPMCE", 129: "IPLT", 130: "SPS", 131: "PIPE", 132: "SCTP", 133: "FC",
	138: "manet", 139: "HIP", 140: "Shim6",
}

const (
	tcpFlagFin = 1 << 0
	tcpFlagSyn = 1 << 1
	tcpFlagRst = 1 << 2
	tcpFlagPsh = 1 << 3
	tcpFlagAck = 1 << 4
	tcpFlagUrg = 1 << 5
	tcpFlagEce = 1 << 6
	tcpFlagCwr = 1 << 7
	tcpFlagNs  = 1 << 8
)

// tcpFlagNames is ordered by bit position; index i names bit (1 << i) of
// the 9-bit TCP flag field. The serializer only ever emits the first six
// flags; the deserializer recognizes all nine names and writes every one of
// them into the header, so ECE/CWR/NS in a hand-authored record reach the
// packet but are not emitted when that packet is serialized again.
var tcpFlagNames = [...]string{
	"FIN", "SYN", "RST", "PSH", "ACK", "URG", "ECE", "CWR", "NS",
}

// tcpOptionNames maps a TCP option kind byte to its friendly name; kinds 6
// and 7 have no entry, matching the gap left by a NULL entry in the source
// table, so a record cannot name them.
var tcpOptionNames = map[uint8]string{
	0: "EOL", 1: "NOP", 2: "maxSegmentSize", 3: "windowScale", 4: "sackPermitted",
	5: "selectedAck", 8: "timestamp",
}

var icmpTypeNames = [32]string{
	0: "echoReply", 3: "destinationUnreachable", 4: "sourceQuench",
	5: "redirectMessage",
	8: "echoRequest", 9: "routerAdvertisement", 10: "routerSolicitation", 11: "timeExceeded",
	12: "badIpHeader", 13: "timestamp", 14: "timestampReply", 15: "infoRequest",
	16: "infoReply", 17: "addressMaskRequest", 18: "addressMaskReply",
	30: "traceroute",
}

var icmpDestinationUnreachableCodeNames = [...]string{
	"destinationNetworkUnreachable", "destinationHostUnreachable",
	"destinationProtocolUnreachable", "destinationPortUnreachable",
	"fragmentationRequired", "sourceRouteFailed",
	"destinationNetworkUnknown", "destinationHostUnknown",
	"sourceHostIsolated", "networkAdministrativelyProhibited",
	"hostAdministrativelyProhibited", "networkUnreachableForTos",
	"communicationAdministrativelyProhibited",
}

var icmpRedirectMessageCodeNames = [...]string{
	"redirectDatagramForHost", "redirectDatagramForNetwork",
	"redirectDatagramForTosAndNetwork", "redirectDatagramForTosAndHost",
}

var icmpBadIpHeaderCodeNames = [...]string{
	"pointerIndicatesTheError", "missingARequiredOption", "badLength",
}

const (
	ipFlagDF = 0x4000
	ipFlagMF = 0x2000
)

// friendlyNameOrInt returns names[v] when that entry exists and is
// non-empty, and "" otherwise; writeFriendlyStringOrInt emits the decimal
// integer in the "" case — together they are the serializer side of the
// original's WriteFriendlyStringOrInt.
func friendlyNameOrInt(names []string, v uint8) string {
	if int(v) < len(names) && names[v] != "" {
		return names[v]
	}
	return ""
}

// buildLookupTable inverts a name table the way the original's
// CreateLookupTable does: empty slots contribute no entry, so looking an
// empty name up fails rather than colliding on index 0.
func buildLookupTable(names []string) map[string]uint8 {
	m := make(map[string]uint8, len(names))
	for i, name := range names {
		if name != "" {
			m[name] = uint8(i)
		}
	}
	return m
}

// buildFlagLookupTable inverts a flag-bit name table: buildFlagLookupTable
// (kTcpFlags) -> {"FIN":1, "SYN":2, "RST":4, ...}, mirroring the original's
// CreateFlagLookupTable.
func buildFlagLookupTable(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for i, name := range names {
		if name != "" {
			m[name] = 1 << uint(i)
		}
	}
	return m
}

var (
	protocolNameTable   = buildLookupTable(protocolNames[:])
	tcpFlagLookupTable  = buildFlagLookupTable(tcpFlagNames[:])
	tcpOptionLookup     = invertUint8Map(tcpOptionNames)
	icmpTypeLookupTable = buildLookupTable(icmpTypeNames[:])
	icmpDestUnreachLookupTable = buildLookupTable(icmpDestinationUnreachableCodeNames[:])
	icmpRedirectLookupTable    = buildLookupTable(icmpRedirectMessageCodeNames[:])
	icmpBadIPHeaderLookupTable = buildLookupTable(icmpBadIPHeaderCodeNamesSlice())
	ipFlagLookupTable          = map[string]int{"DF": ipFlagDF, "MF": ipFlagMF}
)

func icmpBadIPHeaderCodeNamesSlice() []string {
	return icmpBadIpHeaderCodeNames[:]
}

func invertUint8Map(m map[uint8]string) map[string]uint8 {
	out := make(map[string]uint8, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
