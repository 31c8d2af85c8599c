package gvas

import (
	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas/wire"
)

type encoder struct {
	w *wire.Writer
}

// EncodeProperties serializes one property list including its terminator.
func EncodeProperties(p *Properties) ([]byte, error) {
	e := &encoder{w: wire.NewWriter()}
	if err := e.writeList(p); err != nil {
		return nil, err
	}
	return e.w.Bytes(), nil
}

func (e *encoder) writeList(p *Properties) error {
	for name, v := range p.All() {
		if err := e.writeProperty(name, v); err != nil {
			return perr.Wrapf(err, "encode %q", name)
		}
	}
	end := EndNone
	if p != nil {
		end = p.End
	}
	switch end {
	case EndNone:
		e.w.WriteString(sentinel)
	case EndEmpty:
		e.w.WriteString("")
	}
	return nil
}

// sized writes a backpatched size covering everything fn emits.
func (e *encoder) sized(fn func() error) error {
	off := e.w.Reserve()
	start := e.w.Len()
	if err := fn(); err != nil {
		return err
	}
	e.w.PatchI32(off, int32(e.w.Len()-start))
	return nil
}

func (e *encoder) writeProperty(name string, v Node) error {
	if v == nil {
		return perr.Newf(perr.CodeInternal, "nil value")
	}
	e.w.WriteString(name)
	e.w.WriteString(v.TypeName())

	switch n := v.(type) {
	case Bool:
		e.w.WriteBool(bool(n))
	case Int32:
		e.w.WriteI32(int32(n))
	case Int64:
		e.w.WriteU64(uint64(n))
	case Float:
		e.w.WriteF32(float32(n))
	case Name:
		e.w.WriteStringForm(n.Value, n.Form)
	case *Enum:
		e.w.WriteStringForm(n.Value, n.Form)
	case Str:
		return e.sized(func() error {
			e.w.WriteStringForm(n.Value, n.Form)
			return nil
		})
	case *Struct:
		return e.sized(func() error {
			e.w.WriteString(n.StructType)
			e.w.WriteGUID(n.GUID)
			return e.writeList(n.Fields)
		})
	case *Array:
		return e.sized(func() error {
			e.w.WriteString(n.ElementType)
			e.w.WriteI32(int32(len(n.Items)))
			for _, it := range n.Items {
				if err := e.writeList(it); err != nil {
					return err
				}
			}
			return nil
		})
	case *Map:
		return e.sized(func() error {
			e.w.WriteString(n.KeyType)
			e.w.WriteString(n.ValueType)
			e.w.WriteI32(int32(len(n.Entries)))
			for _, ent := range n.Entries {
				e.w.WriteStringForm(ent.Key, ent.KeyForm)
				if err := e.writeList(ent.Value); err != nil {
					return perr.Wrapf(err, "entry %q", ent.Key)
				}
			}
			return nil
		})
	default:
		return perr.Newf(perr.CodeInternal, "unsupported node %T", v)
	}
	return nil
}
