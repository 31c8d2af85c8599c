package gvas

import (
	"bytes"

	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas/wire"
)

// HeaderSize is the offset of the first property.
const HeaderSize = 28

// Header holds the fixed-offset fields after the tag. Values are kept
// opaque and written back unchanged.
type Header struct {
	Version         uint32 // @4
	PackageFlags    uint32 // @8
	EngineMajor     uint16 // @12
	EngineMinor     uint16 // @14
	EnginePatch     uint16 // @16
	EngineReserved  uint16 // @18
	CustomVersion   uint32 // @20
	SaveGameVersion uint32 // @24
}

// ParseHeader reads the header from an inner buffer.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if !bytes.HasPrefix(data, Tag) {
		return h, perr.Formatf("inner tag %q missing at offset 0", Tag)
	}
	if len(data) < HeaderSize {
		return h, perr.Formatf("header truncated: %d of %d bytes", len(data), HeaderSize)
	}
	r := wire.NewReaderAt(data, len(Tag))
	// bounds were checked above, so the reads cannot fail
	h.Version, _ = r.ReadU32()
	h.PackageFlags, _ = r.ReadU32()
	h.EngineMajor, _ = r.ReadU16()
	h.EngineMinor, _ = r.ReadU16()
	h.EnginePatch, _ = r.ReadU16()
	h.EngineReserved, _ = r.ReadU16()
	h.CustomVersion, _ = r.ReadU32()
	h.SaveGameVersion, _ = r.ReadU32()
	return h, nil
}

func (h Header) encode(w *wire.Writer) {
	w.WriteBytes(Tag)
	w.WriteU32(h.Version)
	w.WriteU32(h.PackageFlags)
	w.WriteU16(h.EngineMajor)
	w.WriteU16(h.EngineMinor)
	w.WriteU16(h.EnginePatch)
	w.WriteU16(h.EngineReserved)
	w.WriteU32(h.CustomVersion)
	w.WriteU32(h.SaveGameVersion)
}
