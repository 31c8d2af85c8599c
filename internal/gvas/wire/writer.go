package wire

import (
	"encoding/binary"
	"math"
	"strings"
)

// Writer builds a GVAS buffer. All multi-byte writes are little-endian.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 4096)}
}

// WriteU8 writes 1 byte.
func (w *Writer) WriteU8(v byte) {
	w.buf = append(w.buf, v)
}

// WriteU16 writes 2 bytes little-endian.
func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteU32 writes 4 bytes little-endian.
func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteI32 writes 4 bytes little-endian (signed via cast).
func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

// WriteU64 writes 8 bytes little-endian.
func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *Writer) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
		return
	}
	w.WriteU8(0)
}

// WriteString writes the canonical length-prefixed form: empty strings as a
// bare zero length, ASCII as NUL-terminated UTF-8 behind 4 reserved bytes,
// everything else as NUL-terminated UTF-16LE with a negative length.
func (w *Writer) WriteString(s string) {
	if s == "" {
		w.WriteI32(0)
		return
	}
	if isASCII(s) {
		w.WriteI32(int32(len(s) + 1))
		w.WriteU32(0)
		w.buf = append(w.buf, s...)
		w.buf = append(w.buf, 0)
		return
	}
	encoded, err := utf16le.NewEncoder().Bytes([]byte(s + "\x00"))
	if err != nil {
		// invalid UTF-8 input; keep the bytes rather than drop the field
		w.WriteI32(int32(len(s) + 1))
		w.WriteU32(0)
		w.buf = append(w.buf, s...)
		w.buf = append(w.buf, 0)
		return
	}
	w.WriteI32(-int32(len(encoded)))
	w.buf = append(w.buf, encoded...)
}

// WriteStringForm writes s in a layout recorded by ReadStringForm. The zero
// form is WriteString.
func (w *Writer) WriteStringForm(s string, f StringForm) {
	if !f.Explicit {
		w.WriteString(s)
		return
	}
	body := s + strings.Repeat("\x00", f.Nuls)
	if f.Wide {
		encoded, err := utf16le.NewEncoder().Bytes([]byte(body))
		if err != nil {
			w.WriteString(s)
			return
		}
		w.WriteI32(-int32(len(encoded)))
		w.buf = append(w.buf, encoded...)
		return
	}
	if body == "" {
		w.WriteI32(0)
		return
	}
	w.WriteI32(int32(len(body)))
	w.WriteU32(f.Reserved)
	w.buf = append(w.buf, body...)
}

func (w *Writer) WriteGUID(g GUID) {
	w.buf = append(w.buf, g[:]...)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Reserve writes a zero int32 placeholder and returns its offset for PatchI32.
func (w *Writer) Reserve() int {
	off := len(w.buf)
	w.WriteI32(0)
	return off
}

// PatchI32 overwrites the int32 at off.
func (w *Writer) PatchI32(off int, v int32) {
	binary.LittleEndian.PutUint32(w.buf[off:], uint32(v))
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// StringForm is the on-disk layout of a string that WriteString would not
// reproduce. The zero value means the canonical layout.
type StringForm struct {
	Explicit bool
	Wide     bool   // UTF-16LE with a negative length
	Nuls     int    // trailing NULs after the value
	Reserved uint32 // the 4 bytes ahead of a UTF-8 body
}

func canonicalForm(s string) StringForm {
	if s == "" {
		return StringForm{}
	}
	return StringForm{Wide: !isASCII(s), Nuls: 1}
}

// Holds reports whether s can be written in form f without turning
// non-ASCII text into a UTF-8 body.
func (f StringForm) Holds(s string) bool {
	return !f.Explicit || f.Wide || isASCII(s)
}
