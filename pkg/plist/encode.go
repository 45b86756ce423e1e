package plist

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// header identifies the document encoding for OpenStep plist consumers.
const header = "// !$*UTF8*$!\n"

// indentUnit is one level of indentation in encoded output.
const indentUnit = "  "

// =============================================================================
// Encoding API
// =============================================================================

// Marshal encodes a value tree to OpenStep plist bytes.
// Dict keys are sorted for deterministic output.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes a value tree to a plist file.
// The file is created with 0644 permissions.
func WriteFile(v Value, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(v, f)
}

// Write encodes a value tree as an OpenStep plist to an io.Writer.
// Use Marshal for in-memory serialization or WriteFile for files.
func Write(v Value, w io.Writer) error {
	return writeTo(v, w)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeTo(v Value, w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteString(header)
	encodeValue(&buf, v, 0)
	buf.WriteByte('\n')
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func encodeValue(buf *bytes.Buffer, v Value, depth int) {
	switch t := v.(type) {
	case String:
		buf.WriteString(quote(string(t)))
	case Ref:
		buf.WriteString(quote(string(t)))
	case Array:
		encodeArray(buf, t, depth)
	case Dict:
		encodeDict(buf, t, depth)
	case nil:
		buf.WriteString(`""`)
	}
}

func encodeArray(buf *bytes.Buffer, a Array, depth int) {
	if len(a) == 0 {
		buf.WriteString("()")
		return
	}
	buf.WriteString("(\n")
	inner := strings.Repeat(indentUnit, depth+1)
	for _, item := range a {
		buf.WriteString(inner)
		encodeValue(buf, item, depth+1)
		buf.WriteString(",\n")
	}
	buf.WriteString(strings.Repeat(indentUnit, depth))
	buf.WriteByte(')')
}

func encodeDict(buf *bytes.Buffer, d Dict, depth int) {
	if len(d) == 0 {
		buf.WriteString("{}")
		return
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteString("{\n")
	inner := strings.Repeat(indentUnit, depth+1)
	for _, k := range keys {
		buf.WriteString(inner)
		buf.WriteString(quote(k))
		buf.WriteString(" = ")
		encodeValue(buf, d[k], depth+1)
		buf.WriteString(";\n")
	}
	buf.WriteString(strings.Repeat(indentUnit, depth))
	buf.WriteByte('}')
}

// quote wraps s in double quotes, escaping backslashes, quotes, and the
// control characters that would otherwise break the line-oriented format.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
