package props

import (
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/gvas/wire"
)

func SetBool(p *gvas.Properties, name string, v bool)     { p.Set(name, gvas.Bool(v)) }
func SetInt32(p *gvas.Properties, name string, v int32)   { p.Set(name, gvas.Int32(v)) }
func SetInt64(p *gvas.Properties, name string, v uint64)  { p.Set(name, gvas.Int64(v)) }
func SetFloat(p *gvas.Properties, name string, v float32) { p.Set(name, gvas.Float(v)) }

// SetStr, SetName and SetEnum keep the on-disk layout of the value they
// replace when it can carry the new text.
func SetStr(p *gvas.Properties, name string, v string) {
	old, _ := get[gvas.Str](p, name)
	p.Set(name, gvas.Str{Value: v, Form: keepForm(old.Form, v)})
}

func SetName(p *gvas.Properties, name string, v string) {
	old, _ := get[gvas.Name](p, name)
	p.Set(name, gvas.Name{Value: v, Form: keepForm(old.Form, v)})
}

func SetEnum(p *gvas.Properties, name string, value string) {
	e := gvas.NewEnum(value)
	if old, ok := get[*gvas.Enum](p, name); ok {
		e.Form = keepForm(old.Form, value)
	}
	p.Set(name, e)
}

func keepForm(f wire.StringForm, s string) wire.StringForm {
	if f.Holds(s) {
		return f
	}
	return wire.StringForm{}
}

// SetGUID updates an existing Guid struct in place or creates one.
func SetGUID(p *gvas.Properties, name string, g gvas.GUID) {
	if s, ok := get[*gvas.Struct](p, name); ok && s.StructType == StructGUID {
		s.GUID = g
		return
	}
	p.Set(name, GUID(g))
}

// SetFixedPoint64 updates an existing FixedPoint64 in place or creates one.
func SetFixedPoint64(p *gvas.Properties, name string, v uint64) {
	if s, ok := get[*gvas.Struct](p, name); ok && s.StructType == StructFixedPoint64 && s.Fields != nil {
		s.Fields.Set(ValueKey, gvas.Int64(v))
		return
	}
	p.Set(name, FixedPoint64(v))
}

// SetNames replaces a NameProperty array.
func SetNames(p *gvas.Properties, name string, values []string) {
	p.Set(name, NameArray(values))
}

// SetEnums replaces an EnumProperty array.
func SetEnums(p *gvas.Properties, name string, values []string) {
	p.Set(name, EnumArray(values))
}

// Remove deletes name and reports whether it existed.
func Remove(p *gvas.Properties, name string) bool {
	return p.Delete(name)
}

// EnsureStruct returns the fields of struct name, creating it when absent.
func EnsureStruct(p *gvas.Properties, name, structType string) *gvas.Properties {
	if fields, ok := GetStruct(p, name); ok {
		return fields
	}
	s := Struct(structType, nil)
	p.Set(name, s)
	return s.Fields
}

// EnsureMap returns map name, creating it when absent.
func EnsureMap(p *gvas.Properties, name, keyType, valueType string) *gvas.Map {
	if m, ok := GetMap(p, name); ok {
		return m
	}
	m := MapOf(keyType, valueType)
	p.Set(name, m)
	return m
}

// EnsureStructArray returns array name, creating an empty struct array when absent.
func EnsureStructArray(p *gvas.Properties, name string) *gvas.Array {
	if a, ok := GetArray(p, name); ok {
		return a
	}
	a := StructArray()
	p.Set(name, a)
	return a
}

// Put replaces the value of key or appends a new entry.
func Put(m *gvas.Map, key string, value *gvas.Properties) {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			m.Entries[i].Value = value
			return
		}
	}
	m.Entries = append(m.Entries, gvas.MapEntry{Key: key, Value: value})
}

// Drop removes key and reports whether it existed.
func Drop(m *gvas.Map, key string) bool {
	for i := range m.Entries {
		if m.Entries[i].Key == key {
			m.Entries = append(m.Entries[:i], m.Entries[i+1:]...)
			return true
		}
	}
	return false
}
