package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatHexLineGrouping(t *testing.T) {
	require.Equal(t, "00 01 02", formatHexLine([]byte{0, 1, 2}))

	full := make([]byte, 16)
	for i := range full {
		full[i] = byte(i)
	}
	require.Equal(t, "00 01 02 03 04 05 06 07  08 09 0a 0b 0c 0d 0e 0f", formatHexLine(full))
}

func TestParseHexRoundTrip(t *testing.T) {
	in := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x7f}
	line := formatHexLine(in)
	out, err := parseHex(line)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestParseHexToleratesWhitespace(t *testing.T) {
	out, err := parseHex("de ad\nbe\tef")
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, out)
}

func TestParseHexOddDigitsIsAnError(t *testing.T) {
	_, err := parseHex("abc")
	require.Error(t, err)
}

func TestParseHexInvalidCharacterIsAnError(t *testing.T) {
	_, err := parseHex("zz")
	require.Error(t, err)
}
