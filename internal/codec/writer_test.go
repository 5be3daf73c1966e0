package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeAndFlush(t *testing.T, indent bool, fn func(w *Writer)) string {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf, indent)
	fn(w)
	require.NoError(t, w.Flush())
	return buf.String()
}

func TestWriterPackedScalars(t *testing.T) {
	out := writeAndFlush(t, false, func(w *Writer) {
		w.WriteString("hello")
	})
	require.Equal(t, `"hello"`, out)
}

func TestWriterEscaping(t *testing.T) {
	out := writeAndFlush(t, false, func(w *Writer) {
		w.WriteString("a \"quote\"\nand\ttab")
	})
	require.Equal(t, `"a \"quote\"\nand\ttab"`, out)
}

func TestWriterPackedObject(t *testing.T) {
	out := writeAndFlush(t, false, func(w *Writer) {
		w.BeginObject()
		w.WritePropertyName("a")
		w.WriteInteger(1)
		w.WritePropertyName("b")
		w.WriteBoolean(true)
		w.EndObject()
	})
	require.Equal(t, `{"a":1,"b":true}`, out)
}

func TestWriterPackedArray(t *testing.T) {
	out := writeAndFlush(t, false, func(w *Writer) {
		w.BeginArray()
		w.WriteInteger(1)
		w.WriteInteger(2)
		w.WriteInteger(3)
		w.EndArray()
	})
	require.Equal(t, `[1,2,3]`, out)
}

func TestWriterNestedPackedStructures(t *testing.T) {
	out := writeAndFlush(t, false, func(w *Writer) {
		w.BeginObject()
		w.WritePropertyName("values")
		w.BeginArray()
		w.WriteInteger(1)
		w.BeginObject()
		w.WritePropertyName("x")
		w.WriteNull()
		w.EndObject()
		w.EndArray()
		w.EndObject()
	})
	require.Equal(t, `{"values":[1,{"x":null}]}`, out)
}

func TestWriterIndentedObject(t *testing.T) {
	out := writeAndFlush(t, true, func(w *Writer) {
		w.BeginObject()
		w.WritePropertyName("a")
		w.WriteInteger(1)
		w.EndObject()
	})
	require.Equal(t, "{\n  \"a\": 1\n}", out)
}

func TestWriterBeginPackSuppressesIndentWithinASpan(t *testing.T) {
	out := writeAndFlush(t, true, func(w *Writer) {
		w.BeginObject()
		w.WritePropertyName("version")
		w.BeginPack()
		w.WriteInteger(4)
		w.WritePropertyName("ttl")
		w.WriteInteger(64)
		w.EndPack()
		w.EndObject()
	})
	require.Equal(t, "{\n  \"version\": 4, \"ttl\": 64\n}", out)
}
