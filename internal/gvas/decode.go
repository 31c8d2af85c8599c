package gvas

import (
	"go.uber.org/zap"

	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas/wire"
)

// maxDepth bounds struct/array/map nesting.
const maxDepth = 64

type decoder struct {
	r   *wire.Reader
	log *zap.Logger
}

// Decode parses an inner buffer (header, properties, trailer).
func Decode(inner []byte, log *zap.Logger) (*Document, error) {
	h, err := ParseHeader(inner)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &decoder{r: wire.NewReaderAt(inner, HeaderSize), log: log}
	props, err := d.readList(0)
	if err != nil {
		return nil, err
	}
	doc := &Document{Header: h, Properties: props}
	if d.r.Remaining() > 0 {
		doc.Trailer, _ = d.r.ReadBytes(d.r.Remaining())
	}
	return doc, nil
}

// DecodeProperties parses one property list from data and returns it with
// the number of bytes consumed.
func DecodeProperties(data []byte, log *zap.Logger) (*Properties, int, error) {
	if log == nil {
		log = zap.NewNop()
	}
	d := &decoder{r: wire.NewReader(data), log: log}
	props, err := d.readList(0)
	if err != nil {
		return nil, d.r.Offset(), err
	}
	return props, d.r.Offset(), nil
}

func (d *decoder) readList(depth int) (*Properties, error) {
	if depth > maxDepth {
		return nil, perr.Formatf("property nesting deeper than %d at offset %d", maxDepth, d.r.Offset())
	}
	p := NewProperties()
	for {
		if d.r.Remaining() == 0 {
			p.End = EndEOF
			return p, nil
		}
		name, err := d.r.ReadString()
		if err != nil {
			return nil, perr.Wrap(err, "read property name")
		}
		switch name {
		case "":
			p.End = EndEmpty
			return p, nil
		case sentinel:
			p.End = EndNone
			return p, nil
		}
		typ, err := d.r.ReadString()
		if err != nil {
			return nil, perr.Wrapf(err, "read type of %q", name)
		}
		node, err := d.readValue(name, typ, depth)
		if err != nil {
			return nil, perr.Wrapf(err, "%s %q", typ, name)
		}
		if node != nil {
			p.Set(name, node)
		}
	}
}

// readValue returns a nil node for skipped unknown types.
func (d *decoder) readValue(name, typ string, depth int) (Node, error) {
	switch typ {
	case PropBool:
		v, err := d.r.ReadBool()
		return Bool(v), err
	case PropInt32:
		v, err := d.r.ReadI32()
		return Int32(v), err
	case PropInt64:
		v, err := d.r.ReadU64()
		return Int64(v), err
	case PropFloat:
		v, err := d.r.ReadF32()
		return Float(v), err
	case PropName:
		v, form, err := d.r.ReadStringForm()
		return Name{Value: v, Form: form}, err
	case PropEnum:
		v, form, err := d.r.ReadStringForm()
		if err != nil {
			return nil, err
		}
		e := NewEnum(v)
		e.Form = form
		return e, nil
	case PropStr:
		if _, err := d.readSize(); err != nil {
			return nil, err
		}
		v, form, err := d.r.ReadStringForm()
		return Str{Value: v, Form: form}, err
	case PropStruct:
		return d.readStruct(depth)
	case PropArray:
		return d.readArray(depth)
	case PropMap:
		return d.readMap(depth)
	default:
		size, err := d.readSize()
		if err != nil {
			return nil, perr.Wrap(err, "unknown property type without size")
		}
		if err := d.r.Skip(size); err != nil {
			return nil, perr.Wrap(err, "skip unknown property")
		}
		d.log.Debug("跳過未知屬性",
			zap.String("name", name),
			zap.String("type", typ),
			zap.Int("size", size))
		return nil, nil
	}
}

func (d *decoder) readSize() (int, error) {
	size, err := d.r.ReadI32()
	if err != nil {
		return 0, err
	}
	if size < 0 {
		return 0, perr.Formatf("negative property size %d at offset %d", size, d.r.Offset()-4)
	}
	return int(size), nil
}

func (d *decoder) readCount() (int, error) {
	n, err := d.r.ReadI32()
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n) > d.r.Remaining() {
		return 0, perr.Formatf("element count %d out of range at offset %d", n, d.r.Offset()-4)
	}
	return int(n), nil
}

func (d *decoder) readStruct(depth int) (Node, error) {
	if _, err := d.readSize(); err != nil {
		return nil, err
	}
	structType, err := d.r.ReadString()
	if err != nil {
		return nil, err
	}
	guid, err := d.r.ReadGUID()
	if err != nil {
		return nil, err
	}
	fields, err := d.readList(depth + 1)
	if err != nil {
		return nil, err
	}
	return &Struct{StructType: structType, GUID: guid, Fields: fields}, nil
}

func (d *decoder) readArray(depth int) (Node, error) {
	if _, err := d.readSize(); err != nil {
		return nil, err
	}
	elemType, err := d.r.ReadString()
	if err != nil {
		return nil, err
	}
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	a := &Array{ElementType: elemType, Items: make([]*Properties, 0, n)}
	for i := 0; i < n; i++ {
		item, err := d.readList(depth + 1)
		if err != nil {
			return nil, perr.Wrapf(err, "item %d", i)
		}
		a.Items = append(a.Items, item)
	}
	return a, nil
}

func (d *decoder) readMap(depth int) (Node, error) {
	if _, err := d.readSize(); err != nil {
		return nil, err
	}
	keyType, err := d.r.ReadString()
	if err != nil {
		return nil, err
	}
	valueType, err := d.r.ReadString()
	if err != nil {
		return nil, err
	}
	n, err := d.readCount()
	if err != nil {
		return nil, err
	}
	m := &Map{KeyType: keyType, ValueType: valueType, Entries: make([]MapEntry, 0, n)}
	for i := 0; i < n; i++ {
		key, keyForm, err := d.r.ReadStringForm()
		if err != nil {
			return nil, perr.Wrapf(err, "key %d", i)
		}
		value, err := d.readList(depth + 1)
		if err != nil {
			return nil, perr.Wrapf(err, "entry %q", key)
		}
		m.Entries = append(m.Entries, MapEntry{Key: key, KeyForm: keyForm, Value: value})
	}
	return m, nil
}
