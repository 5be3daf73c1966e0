// Package codec implements a structured-text tokeniser/emitter and the
// IPv4/TCP/UDP/ICMP packet record codec layered on top of it. It translates
// between raw IPv4 datagrams and an ordered, human readable textual record
// of their header fields, options, and payload.
package codec

// Token identifies the kind of the value the Reader last produced.
type Token int

const (
	TokenNone Token = iota
	TokenStartArray
	TokenEndArray
	TokenStartObject
	TokenEndObject
	TokenPropertyName
	TokenString
	TokenInteger
	TokenFloat
	TokenBoolean
	TokenNull
)

var tokenNames = [...]string{
	"None", "StartArray", "EndArray", "StartObject", "EndObject",
	"PropertyName", "String", "Integer", "Float", "Boolean", "Null",
}

// String renders a token the way diagnostic messages expect to see it.
func (t Token) String() string {
	if int(t) >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "Unknown"
}

// ErrorCode classifies why Reader.Next returned false.
type ErrorCode int

const (
	ErrorNone ErrorCode = iota
	ErrorInvalidUnicodeEscape
	ErrorInvalidEscape
	ErrorUnexpectedCharacter
	ErrorOutOfRange
)

var errorCodeMessages = [...]string{
	"", "invalid unicode escape", "invalid escape sequence",
	"unexpected character", "integer out of range",
}

// String renders an ErrorCode the way diagnostic messages expect to see it.
func (e ErrorCode) String() string {
	if int(e) >= 0 && int(e) < len(errorCodeMessages) {
		return errorCodeMessages[e]
	}
	return "unknown error"
}

// mode tracks the structural context the reader/writer is nested in.
type mode int

const (
	modeDocumentStart mode = iota
	modeArray
	modeObject
)
