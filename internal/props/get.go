package props

import (
	"github.com/paledit/paledit/internal/gvas"
)

func get[T gvas.Node](p *gvas.Properties, name string) (T, bool) {
	var zero T
	n, ok := p.Get(name)
	if !ok {
		return zero, false
	}
	v, ok := n.(T)
	return v, ok
}

func GetBool(p *gvas.Properties, name string) (bool, bool) {
	v, ok := get[gvas.Bool](p, name)
	return bool(v), ok
}

func GetInt32(p *gvas.Properties, name string) (int32, bool) {
	v, ok := get[gvas.Int32](p, name)
	return int32(v), ok
}

func GetInt64(p *gvas.Properties, name string) (uint64, bool) {
	v, ok := get[gvas.Int64](p, name)
	return uint64(v), ok
}

func GetFloat(p *gvas.Properties, name string) (float32, bool) {
	v, ok := get[gvas.Float](p, name)
	return float32(v), ok
}

func GetStr(p *gvas.Properties, name string) (string, bool) {
	v, ok := get[gvas.Str](p, name)
	return v.Value, ok
}

func GetName(p *gvas.Properties, name string) (string, bool) {
	v, ok := get[gvas.Name](p, name)
	return v.Value, ok
}

// GetText accepts either a Str or a Name.
func GetText(p *gvas.Properties, name string) (string, bool) {
	if s, ok := GetStr(p, name); ok {
		return s, true
	}
	return GetName(p, name)
}

// GetEnum returns the full "Type::Member" value.
func GetEnum(p *gvas.Properties, name string) (string, bool) {
	v, ok := get[*gvas.Enum](p, name)
	if !ok {
		return "", false
	}
	return v.Value, true
}

// GetGUID reads a Guid struct.
func GetGUID(p *gvas.Properties, name string) (gvas.GUID, bool) {
	s, ok := get[*gvas.Struct](p, name)
	if !ok || s.StructType != StructGUID {
		return gvas.GUID{}, false
	}
	return s.GUID, true
}

func GetFixedPoint64(p *gvas.Properties, name string) (uint64, bool) {
	s, ok := get[*gvas.Struct](p, name)
	if !ok || s.StructType != StructFixedPoint64 {
		return 0, false
	}
	return GetInt64(s.Fields, ValueKey)
}

// GetStruct returns the field list of a struct property.
func GetStruct(p *gvas.Properties, name string) (*gvas.Properties, bool) {
	s, ok := get[*gvas.Struct](p, name)
	if !ok || s.Fields == nil {
		return nil, false
	}
	return s.Fields, true
}

func GetArray(p *gvas.Properties, name string) (*gvas.Array, bool) {
	return get[*gvas.Array](p, name)
}

func GetMap(p *gvas.Properties, name string) (*gvas.Map, bool) {
	return get[*gvas.Map](p, name)
}

// GetSlotID reads a PalCharacterSlotId.
func GetSlotID(p *gvas.Properties, name string) (container gvas.GUID, index int32, ok bool) {
	fields, ok := GetStruct(p, name)
	if !ok {
		return container, 0, false
	}
	cid, ok := GetStruct(fields, "ContainerId")
	if !ok {
		return container, 0, false
	}
	container, ok = GetGUID(cid, "ID")
	if !ok {
		return container, 0, false
	}
	index, _ = GetInt32(fields, "SlotIndex")
	return container, index, true
}

// Path descends through nested struct fields.
func Path(p *gvas.Properties, names ...string) (*gvas.Properties, bool) {
	cur := p
	for _, n := range names {
		next, ok := GetStruct(cur, n)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Values returns the scalar element of every item, skipping items without one.
func Values(a *gvas.Array) []gvas.Node {
	if a == nil {
		return nil
	}
	out := make([]gvas.Node, 0, len(a.Items))
	for _, it := range a.Items {
		if v, ok := it.Get(ValueKey); ok {
			out = append(out, v)
		}
	}
	return out
}

// Names reads a NameProperty array.
func Names(p *gvas.Properties, name string) ([]string, bool) {
	a, ok := GetArray(p, name)
	if !ok {
		return nil, false
	}
	var out []string
	for _, v := range Values(a) {
		if s, ok := v.(gvas.Name); ok {
			out = append(out, s.Value)
		}
	}
	return out, true
}

// Enums reads an EnumProperty array as full values.
func Enums(p *gvas.Properties, name string) ([]string, bool) {
	a, ok := GetArray(p, name)
	if !ok {
		return nil, false
	}
	var out []string
	for _, v := range Values(a) {
		if e, ok := v.(*gvas.Enum); ok {
			out = append(out, e.Value)
		}
	}
	return out, true
}

// Entry finds a map entry by key.
func Entry(m *gvas.Map, key string) (*gvas.Properties, bool) {
	if m == nil {
		return nil, false
	}
	for _, e := range m.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}
