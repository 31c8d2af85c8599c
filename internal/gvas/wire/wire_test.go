package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas/wire"
)

func TestReadStringZeroLength(t *testing.T) {
	r := wire.NewReader([]byte{0, 0, 0, 0, 0xAA})
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "", s)
	assert.Equal(t, 4, r.Offset())
}

func TestReadStringUTF16(t *testing.T) {
	// "ヒ" + NUL as UTF-16LE, length -4
	buf := []byte{0xFC, 0xFF, 0xFF, 0xFF, 0xD2, 0x30, 0x00, 0x00}
	r := wire.NewReader(buf)
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "ヒ", s)
	assert.Equal(t, 8, r.Offset())
}

func TestReadStringUTF8(t *testing.T) {
	buf := []byte{5, 0, 0, 0, 0, 0, 0, 0, 'N', 'o', 'n', 'e', 0}
	r := wire.NewReader(buf)
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "None", s)
	assert.Equal(t, 0, r.Remaining())
}

func TestReadStringOverrun(t *testing.T) {
	buf := []byte{40, 0, 0, 0, 0, 0, 0, 0, 'a'}
	r := wire.NewReader(buf)
	_, err := r.ReadString()
	require.Error(t, err)
	assert.True(t, perr.IsFormat(err))
	assert.Equal(t, 0, r.Offset())
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "SaveParameter", "ピンクキャット", "Ünïcode"} {
		w := wire.NewWriter()
		w.WriteString(s)
		r := wire.NewReader(w.Bytes())
		got, err := r.ReadString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.Zero(t, r.Remaining())
	}
}

func TestStringFormRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want string
	}{
		// "Bob" + NUL as UTF-16LE, length -8
		{"wide ascii", []byte{0xF8, 0xFF, 0xFF, 0xFF, 'B', 0, 'o', 0, 'b', 0, 0, 0}, "Bob"},
		{"narrow without nul", []byte{3, 0, 0, 0, 0, 0, 0, 0, 'B', 'o', 'b'}, "Bob"},
		{"extra nuls", []byte{5, 0, 0, 0, 0, 0, 0, 0, 'B', 'o', 'b', 0, 0}, "Bob"},
		{"reserved bytes", []byte{4, 0, 0, 0, 1, 2, 3, 4, 'B', 'o', 'b', 0}, "Bob"},
		{"nul only", []byte{1, 0, 0, 0, 0, 0, 0, 0, 0}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := wire.NewReader(tc.buf)
			s, form, err := r.ReadStringForm()
			require.NoError(t, err)
			assert.Equal(t, tc.want, s)
			assert.True(t, form.Explicit)
			assert.Zero(t, r.Remaining())

			w := wire.NewWriter()
			w.WriteStringForm(s, form)
			assert.Equal(t, tc.buf, w.Bytes())
		})
	}
}

func TestCanonicalStringsHaveNoForm(t *testing.T) {
	for _, s := range []string{"", "SaveParameter", "ピンクキャット"} {
		w := wire.NewWriter()
		w.WriteString(s)
		_, form, err := wire.NewReader(w.Bytes()).ReadStringForm()
		require.NoError(t, err)
		assert.Equal(t, wire.StringForm{}, form, s)
	}
}

func TestStringFormHolds(t *testing.T) {
	narrow := wire.StringForm{Explicit: true, Nuls: 0}
	assert.True(t, narrow.Holds("Bob"))
	assert.False(t, narrow.Holds("ボブ"))
	assert.True(t, wire.StringForm{Explicit: true, Wide: true}.Holds("ボブ"))
	assert.True(t, wire.StringForm{}.Holds("ボブ"))
}

func TestNumericRoundTrip(t *testing.T) {
	w := wire.NewWriter()
	w.WriteI32(-7)
	w.WriteU64(0x0102030405060708)
	w.WriteF32(1.5)
	w.WriteBool(true)
	w.WriteU16(513)

	r := wire.NewReader(w.Bytes())
	i, err := r.ReadI32()
	require.NoError(t, err)
	assert.Equal(t, int32(-7), i)
	u, err := r.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), u)
	f, err := r.ReadF32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)
	b, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, b)
	h, err := r.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(513), h)

	_, err = r.ReadU8()
	assert.True(t, perr.IsFormat(err))
}

func TestBackpatch(t *testing.T) {
	w := wire.NewWriter()
	off := w.Reserve()
	w.WriteBytes([]byte{1, 2, 3})
	w.PatchI32(off, 3)
	assert.Equal(t, []byte{3, 0, 0, 0, 1, 2, 3}, w.Bytes())
}

func TestGUID(t *testing.T) {
	g := wire.NewGUID()
	assert.False(t, g.IsZero())
	parsed, err := wire.ParseGUID(g.String())
	require.NoError(t, err)
	assert.Equal(t, g, parsed)

	parsed, err = wire.ParseGUID(g.UUID().String())
	require.NoError(t, err)
	assert.Equal(t, g, parsed)

	_, err = wire.ParseGUID("nope")
	assert.True(t, perr.IsValidation(err))
	assert.True(t, wire.Zero.IsZero())
}
