package gvas

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/gvas/wire"
)

// Document is a decoded inner buffer.
type Document struct {
	Header     Header
	Properties *Properties
	// Trailer holds the bytes after the top-level terminator.
	Trailer []byte
}

// Encode serializes the document back into an inner buffer.
func (doc *Document) Encode() ([]byte, error) {
	e := &encoder{w: wire.NewWriter()}
	doc.Header.encode(e.w)
	if err := e.writeList(doc.Properties); err != nil {
		return nil, err
	}
	e.w.WriteBytes(doc.Trailer)
	return e.w.Bytes(), nil
}

// Save is a whole save file: the container parameters and the decoded tree.
type Save struct {
	Container Container
	Doc       *Document
}

// Load decompresses and decodes a save file.
func Load(raw []byte, inflateLimit int64, log *zap.Logger) (*Save, error) {
	inner, c, err := Decompress(raw, inflateLimit)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(inner, log)
	if err != nil {
		return nil, err
	}
	return &Save{Container: c, Doc: doc}, nil
}

// Marshal encodes and recompresses with the captured round count.
func (s *Save) Marshal() ([]byte, error) {
	inner, err := s.Doc.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out, err := Compress(inner, s.Container)
	if err != nil {
		return nil, fmt.Errorf("compress document: %w", err)
	}
	return out, nil
}
