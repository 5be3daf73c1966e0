package codec

import (
	"bufio"
	"io"
	"strconv"
)

type writerMode int

const (
	writerDocumentStart writerMode = iota
	writerStartObject
	writerObjectPropertyName
	writerObjectPropertyValue
	writerStartArray
	writerMiddleArray
)

// Writer is a state-driven emitter for the structured-text record format:
// indentation and line-packing are both optional and independent of the
// value-writing calls below.
type Writer struct {
	dst *bufio.Writer

	indentEnabled bool
	mode          writerMode
	indent        int
	pack          int
	modeStack     []writerMode
}

// NewWriter wraps w. When indent is true, each value starts on its own
// line with 2-space-per-depth indentation; otherwise output is packed
// onto a single line throughout.
func NewWriter(w io.Writer, indent bool) *Writer {
	return &Writer{
		dst:           bufio.NewWriter(w),
		indentEnabled: indent,
		mode:          writerDocumentStart,
	}
}

// Flush writes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.dst.Flush()
}

func (w *Writer) shouldIndent() bool {
	return w.indentEnabled
}

// WritePropertyName emits a property name; valid only inside an object,
// before its value.
func (w *Writer) WritePropertyName(name string) {
	if w.mode != writerStartObject && w.mode != writerObjectPropertyName {
		panic("codec: WritePropertyName called outside an object")
	}
	if w.mode == writerObjectPropertyName {
		w.dst.WriteByte(',')
		if w.shouldIndent() && w.pack > 0 {
			w.dst.WriteByte(' ')
		}
	}
	w.beginNewLineIfNecessary()
	w.mode = writerObjectPropertyValue
	w.writeRawString(name)
	w.dst.WriteByte(':')
	if w.shouldIndent() {
		w.dst.WriteByte(' ')
	}
}

// WriteString emits a value string, with the same escaping rules as
// property names.
func (w *Writer) WriteString(s string) {
	w.beginValue()
	w.writeRawString(s)
}

var specialEscapeEmit = [0x20]byte{
	'\b': 'b', '\t': 't', '\n': 'n', '\f': 'f', '\r': 'r',
}

func (w *Writer) writeRawString(s string) {
	w.dst.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '"' || ch == '\\':
			w.dst.WriteByte('\\')
			w.dst.WriteByte(ch)
		case ch < 0x20:
			if esc := specialEscapeEmit[ch]; esc != 0 {
				w.dst.WriteByte('\\')
				w.dst.WriteByte(esc)
			} else {
				w.dst.WriteString(`\u00`)
				w.dst.WriteByte(hexChars[(ch&0xf0)>>4])
				w.dst.WriteByte(hexChars[ch&0x0f])
			}
		default:
			w.dst.WriteByte(ch)
		}
	}
	w.dst.WriteByte('"')
}

// WriteInteger emits an integer value. Any Go integer type that fits in
// int64 is accepted.
func (w *Writer) WriteInteger(v int64) {
	w.beginValue()
	w.dst.WriteString(strconv.FormatInt(v, 10))
}

// WriteUint emits an unsigned integer value.
func (w *Writer) WriteUint(v uint64) {
	w.beginValue()
	w.dst.WriteString(strconv.FormatUint(v, 10))
}

// WriteBoolean emits a boolean literal.
func (w *Writer) WriteBoolean(v bool) {
	w.beginValue()
	if v {
		w.dst.WriteString("true")
	} else {
		w.dst.WriteString("false")
	}
}

// WriteNull emits the null literal.
func (w *Writer) WriteNull() {
	w.beginValue()
	w.dst.WriteString("null")
}

// BeginArray opens a new array as the current value.
func (w *Writer) BeginArray() {
	w.beginValue()
	w.dst.WriteByte('[')
	w.modeStack = append(w.modeStack, w.mode)
	w.mode = writerStartArray
	w.indent += 2
}

// EndArray closes the innermost open array.
func (w *Writer) EndArray() {
	if w.mode != writerStartArray && w.mode != writerMiddleArray {
		panic("codec: EndArray called without a matching BeginArray")
	}
	w.indent -= 2
	w.beginNewLineIfNecessary()
	w.dst.WriteByte(']')
	w.popMode()
}

// BeginObject opens a new object as the current value.
func (w *Writer) BeginObject() {
	w.beginValue()
	w.dst.WriteByte('{')
	w.modeStack = append(w.modeStack, w.mode)
	w.mode = writerStartObject
	w.indent += 2
}

// EndObject closes the innermost open object.
func (w *Writer) EndObject() {
	if w.mode != writerObjectPropertyName && w.mode != writerStartObject {
		panic("codec: EndObject called without a matching BeginObject")
	}
	w.indent -= 2
	w.beginNewLineIfNecessary()
	w.dst.WriteByte('}')
	w.popMode()
}

// BeginPack suppresses newline/indentation within the values that follow,
// until a matching EndPack — used to keep a small group of related fields
// on one line even while the surrounding document is indented. Nested
// packs compose via a counter.
func (w *Writer) BeginPack() { w.pack++ }

// EndPack closes the innermost BeginPack span.
func (w *Writer) EndPack() { w.pack-- }

func (w *Writer) popMode() {
	w.mode = w.modeStack[len(w.modeStack)-1]
	w.modeStack = w.modeStack[:len(w.modeStack)-1]
}

func (w *Writer) beginValue() {
	if w.mode == writerObjectPropertyName {
		panic("codec: value written where a property name was expected")
	}
	if w.mode == writerObjectPropertyValue {
		w.mode = writerObjectPropertyName
	}
	if w.mode == writerMiddleArray {
		w.dst.WriteByte(',')
		if w.shouldIndent() && w.pack > 0 {
			w.dst.WriteByte(' ')
		}
	}
	if w.mode == writerStartArray {
		w.mode = writerMiddleArray
	}
	if w.mode == writerStartArray || w.mode == writerMiddleArray {
		w.beginNewLineIfNecessary()
	}
}

func (w *Writer) beginNewLineIfNecessary() {
	if w.shouldIndent() && w.pack == 0 {
		w.dst.WriteByte('\n')
		for i := 0; i < w.indent; i++ {
			w.dst.WriteByte(' ')
		}
	}
}
