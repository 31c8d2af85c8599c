package gvas

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas/wire"
)

const (
	// Magic opens every compressed save file (little-endian u32 at offset 0).
	Magic uint32 = 0x014B0622

	// MaxRounds bounds nested inflation.
	MaxRounds = 16

	// DefaultInflateLimit caps a single inflated buffer.
	DefaultInflateLimit int64 = 1 << 30

	containerHeaderSize = 12
	scanWindow          = 4096
)

// Tag marks the start of the inner buffer.
var Tag = []byte("GVAS")

// Container records everything needed to recompress an inner buffer the
// way it was found.
type Container struct {
	DeclaredSize uint32
	ChunkMagic   uint32
	Rounds       int
	// Prefix holds bytes that preceded the tag when it had to be located
	// by scanning rather than at the start of an inflated round.
	Prefix []byte
}

// Decompress unwraps the outer container and returns the inner buffer, which
// always starts with Tag. limit caps each inflated round; zero or negative
// means DefaultInflateLimit.
func Decompress(data []byte, limit int64) ([]byte, Container, error) {
	var c Container
	if limit <= 0 {
		limit = DefaultInflateLimit
	}

	r := wire.NewReader(data)
	magic, err := r.ReadU32()
	if err != nil {
		return nil, c, perr.Wrap(err, "read container magic")
	}
	if magic != Magic {
		return nil, c, perr.Formatf("invalid save file magic: %#08x", magic)
	}
	if c.DeclaredSize, err = r.ReadU32(); err != nil {
		return nil, c, perr.Wrap(err, "read declared size")
	}
	if c.ChunkMagic, err = r.ReadU32(); err != nil {
		return nil, c, perr.Wrap(err, "read chunk magic")
	}

	cur := data[containerHeaderSize:]
	for c.Rounds < MaxRounds {
		out, err := inflate(cur, limit)
		if err != nil {
			if c.Rounds == 0 {
				return nil, c, perr.WrapWithCode(err, perr.CodeFormat, "inflate payload")
			}
			break
		}
		c.Rounds++
		cur = out
		if bytes.HasPrefix(cur, Tag) {
			return cur, c, nil
		}
	}

	idx := scanForTag(cur)
	if idx < 0 {
		return nil, c, perr.Formatf("inner tag %q not found after %d rounds", Tag, c.Rounds)
	}
	c.Prefix = append([]byte(nil), cur[:idx]...)
	return cur[idx:], c, nil
}

// Compress rebuilds the outer container around inner, deflating it as many
// times as c records.
func Compress(inner []byte, c Container) ([]byte, error) {
	rounds := c.Rounds
	if rounds < 1 {
		rounds = 1
	}
	payload := inner
	if len(c.Prefix) > 0 {
		payload = append(append([]byte(nil), c.Prefix...), inner...)
	}
	size := uint32(len(payload))
	for i := 0; i < rounds; i++ {
		out, err := deflate(payload)
		if err != nil {
			return nil, fmt.Errorf("deflate round %d: %w", i+1, err)
		}
		payload = out
	}

	w := wire.NewWriter()
	w.WriteU32(Magic)
	w.WriteU32(size)
	w.WriteU32(c.ChunkMagic)
	w.WriteBytes(payload)
	return w.Bytes(), nil
}

func inflate(data []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, perr.Formatf("inflated size exceeds limit of %d bytes", limit)
	}
	if len(out) == 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return out, nil
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scanForTag searches fixed-size windows; windows overlap by len(Tag)-1 bytes
// so a tag straddling a boundary is still found.
func scanForTag(buf []byte) int {
	for start := 0; start < len(buf); start += scanWindow {
		end := min(start+scanWindow+len(Tag)-1, len(buf))
		if i := bytes.Index(buf[start:end], Tag); i >= 0 {
			return start + i
		}
	}
	return -1
}
