package codec

import "fmt"

const hexChars = "0123456789abcdef"

// formatHexLine renders up to 16 bytes as two space-separated groups of 8,
// a single space between bytes within a group and two spaces between the
// groups — the payload hex-dump layout used by the packet serializer.
func formatHexLine(b []byte) string {
	buf := make([]byte, 0, len(b)*3)
	for i, by := range b {
		if i > 0 {
			if i == 8 {
				buf = append(buf, ' ', ' ')
			} else {
				buf = append(buf, ' ')
			}
		}
		buf = append(buf, hexChars[by>>4], hexChars[by&0x0f])
	}
	return string(buf)
}

// parseHex decodes whitespace-tolerant hex text (as produced by
// formatHexLine, possibly across several concatenated lines) into bytes.
// Whitespace (space, tab, CR, LF) is skipped; any other non-hex-digit byte,
// or an odd number of hex digits, is an error.
func parseHex(s string) ([]byte, error) {
	var out []byte
	haveHigh := false
	var high byte
	for i := 0; i < len(s); i++ {
		v := hexDigitValue(s[i])
		if v == -1 {
			switch s[i] {
			case ' ', '\t', '\r', '\n':
				continue
			default:
				return nil, fmt.Errorf("invalid hex character %q", s[i])
			}
		}
		if !haveHigh {
			high = byte(v)
			haveHigh = true
		} else {
			out = append(out, (high<<4)|byte(v))
			haveHigh = false
		}
	}
	if haveHigh {
		return nil, fmt.Errorf("odd number of hex digits")
	}
	return out, nil
}
