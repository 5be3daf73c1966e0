package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestReader(json string) *Reader {
	return NewReader(strings.NewReader(json))
}

func expectToken(t *testing.T, r *Reader, expected Token) {
	t.Helper()
	require.True(t, r.Next())
	require.Equal(t, expected, r.Token())
}

func expectString(t *testing.T, r *Reader, expected string) {
	t.Helper()
	expectToken(t, r, TokenString)
	require.Equal(t, expected, r.StringValue())
}

func expectInteger(t *testing.T, r *Reader, expected int64) {
	t.Helper()
	expectToken(t, r, TokenInteger)
	require.Equal(t, expected, r.IntValue())
}

func expectFloat(t *testing.T, r *Reader, expected float64) {
	t.Helper()
	expectToken(t, r, TokenFloat)
	require.Equal(t, expected, r.FloatValue())
}

func expectError(t *testing.T, expected ErrorCode, json string) {
	t.Helper()
	r := newTestReader(json)
	for r.Next() {
	}
	require.Equal(t, expected, r.ErrorCode())
}

func TestReaderBasicString(t *testing.T) {
	expectString(t, newTestReader(`""`), "")
	expectString(t, newTestReader(`" "`), " ")
	expectString(t, newTestReader(`"a string"`), "a string")
	expectString(t, newTestReader(`  "a string"`), "a string")
	expectString(t, newTestReader(`"a string"  `), "a string")
	expectString(t, newTestReader("\n\"a string\"  "), "a string")
	expectString(t, newTestReader(`"a \"string\""`), `a "string"`)
	expectString(t, newTestReader(`"backslash: \\"`), `backslash: \`)
}

func TestReaderStringError(t *testing.T) {
	expectError(t, ErrorUnexpectedCharacter, `"`)
	expectError(t, ErrorUnexpectedCharacter, `"\`)
	expectError(t, ErrorUnexpectedCharacter, `"asd`)
	expectError(t, ErrorInvalidUnicodeEscape, `"\u123X"`)
	expectError(t, ErrorInvalidEscape, `"\v"`)
}

func TestReaderSimpleEscapeSequences(t *testing.T) {
	expectString(t, newTestReader(`"\r\n\t\f\b\"\\\/"`), "\r\n\t\f\b\"\\/")
}

func TestReaderUnicodeStringEscaping(t *testing.T) {
	expectString(t, newTestReader(`"¡hola!"`), "¡hola!")
	expectString(t, newTestReader("\"\\u00a1hola!\""), "¡hola!")
}

func TestReaderSingleQuotedStrings(t *testing.T) {
	expectString(t, newTestReader(`'a string'`), "a string")
}

func TestReaderMismatchedQuoteError(t *testing.T) {
	expectError(t, ErrorUnexpectedCharacter, `"mismatched'`)
}

func TestReaderIntegers(t *testing.T) {
	expectInteger(t, newTestReader(`0`), 0)
	expectInteger(t, newTestReader(`-0`), 0)
	expectInteger(t, newTestReader(`42`), 42)
	expectInteger(t, newTestReader(`-42`), -42)
	expectInteger(t, newTestReader(`  42 `), 42)
}

func TestReaderLeadingZeroIsAnError(t *testing.T) {
	expectError(t, ErrorUnexpectedCharacter, `01`)
}

func TestReaderFloats(t *testing.T) {
	expectFloat(t, newTestReader(`1.5`), 1.5)
	expectFloat(t, newTestReader(`-1.5`), -1.5)
	expectFloat(t, newTestReader(`1e3`), 1000)
	expectFloat(t, newTestReader(`1.5e2`), 150)
}

func TestReaderSecondExponentMarkerIsAnError(t *testing.T) {
	expectError(t, ErrorUnexpectedCharacter, `1e2e3`)
}

func TestReaderKeywords(t *testing.T) {
	r := newTestReader(`true false null`)
	expectToken(t, r, TokenBoolean)
	require.True(t, r.BoolValue())
	expectToken(t, r, TokenBoolean)
	require.False(t, r.BoolValue())
	expectToken(t, r, TokenNull)
}

func TestReaderObject(t *testing.T) {
	r := newTestReader(`{"a": 1, "b": "two"}`)
	expectToken(t, r, TokenStartObject)
	expectToken(t, r, TokenPropertyName)
	require.Equal(t, "a", r.StringValue())
	expectInteger(t, r, 1)
	expectToken(t, r, TokenPropertyName)
	require.Equal(t, "b", r.StringValue())
	expectString(t, r, "two")
	expectToken(t, r, TokenEndObject)
	require.False(t, r.Next())
}

func TestReaderArray(t *testing.T) {
	r := newTestReader(`[1, 2, 3]`)
	expectToken(t, r, TokenStartArray)
	expectInteger(t, r, 1)
	expectInteger(t, r, 2)
	expectInteger(t, r, 3)
	expectToken(t, r, TokenEndArray)
}

func TestReaderNestedStructures(t *testing.T) {
	r := newTestReader(`{"a": [1, {"b": 2}]}`)
	expectToken(t, r, TokenStartObject)
	expectToken(t, r, TokenPropertyName)
	expectToken(t, r, TokenStartArray)
	expectInteger(t, r, 1)
	expectToken(t, r, TokenStartObject)
	expectToken(t, r, TokenPropertyName)
	expectInteger(t, r, 2)
	expectToken(t, r, TokenEndObject)
	expectToken(t, r, TokenEndArray)
	expectToken(t, r, TokenEndObject)
}

func TestReaderTrailingTerminatorIsNotConsumed(t *testing.T) {
	// A number immediately followed by a structural character must leave
	// that character in the stream for the next Next() call to see.
	r := newTestReader(`[1,2]`)
	expectToken(t, r, TokenStartArray)
	expectInteger(t, r, 1)
	expectInteger(t, r, 2)
	expectToken(t, r, TokenEndArray)
}
