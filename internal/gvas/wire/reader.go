package wire

import (
	"encoding/binary"
	"math"
	"strings"

	"golang.org/x/text/encoding/unicode"

	perr "github.com/paledit/paledit/internal/errors"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Reader reads little-endian GVAS fields from an inflated buffer.
// Every read is bounds checked; a short buffer yields a format error and
// leaves the offset untouched.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderAt starts reading at off.
func NewReaderAt(data []byte, off int) *Reader {
	return &Reader{data: data, off: off}
}

// Offset returns the position of the next unread byte.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) need(n int) error {
	if n < 0 || r.off+n > len(r.data) {
		return perr.Formatf("need %d bytes at offset %d, buffer has %d", n, r.off, len(r.data)).
			WithMeta("offset", r.off)
	}
	return nil
}

// ReadU8 reads 1 unsigned byte.
func (r *Reader) ReadU8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

// ReadU16 reads 2 bytes as little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

// ReadU32 reads 4 bytes as little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

// ReadI32 reads 4 bytes as little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadU64 reads 8 bytes as one little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

// ReadF32 reads an IEEE-754 single.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadBool reads 1 byte; any nonzero value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	return v != 0, err
}

// ReadString reads a length-prefixed string.
//
//	len == 0: empty, nothing follows
//	len <  0: |len| bytes of UTF-16LE
//	len >  0: 4 reserved bytes, then len bytes of UTF-8
//
// Trailing NULs are trimmed in both encodings.
func (r *Reader) ReadString() (string, error) {
	s, _, err := r.ReadStringForm()
	return s, err
}

// ReadStringForm is ReadString that also reports the layout it found.
func (r *Reader) ReadStringForm() (string, StringForm, error) {
	start := r.off
	n, err := r.ReadI32()
	if err != nil {
		return "", StringForm{}, err
	}
	var (
		raw string
		f   StringForm
	)
	switch {
	case n == 0:
		return "", StringForm{}, nil
	case n < 0:
		size := -int(n)
		if err := r.need(size); err != nil {
			r.off = start
			return "", StringForm{}, err
		}
		decoded, err := utf16le.NewDecoder().Bytes(r.data[r.off : r.off+size])
		if err != nil {
			r.off = start
			return "", StringForm{}, perr.WrapWithCode(err, perr.CodeFormat, "decode utf-16 string")
		}
		r.off += size
		raw, f.Wide = string(decoded), true
	default:
		size := int(n)
		if err := r.need(4 + size); err != nil {
			r.off = start
			return "", StringForm{}, err
		}
		f.Reserved = binary.LittleEndian.Uint32(r.data[r.off:])
		r.off += 4
		raw = string(r.data[r.off : r.off+size])
		r.off += size
	}
	s := strings.TrimRight(raw, "\x00")
	f.Nuls = len(raw) - len(s)
	if f == canonicalForm(s) {
		return s, StringForm{}, nil
	}
	f.Explicit = true
	return s, f, nil
}

// ReadGUID reads 16 raw bytes.
func (r *Reader) ReadGUID() (GUID, error) {
	var g GUID
	if err := r.need(16); err != nil {
		return g, err
	}
	copy(g[:], r.data[r.off:r.off+16])
	r.off += 16
	return g, nil
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b, nil
}

// Skip advances past n bytes.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}
