package gvas

import (
	"strings"

	"github.com/paledit/paledit/internal/gvas/wire"
)

// GUID is re-exported so callers rarely need the wire package.
type GUID = wire.GUID

// Property type tags as they appear on disk.
const (
	PropBool   = "BoolProperty"
	PropInt32  = "IntProperty"
	PropInt64  = "Int64Property"
	PropFloat  = "FloatProperty"
	PropName   = "NameProperty"
	PropStr    = "StrProperty"
	PropEnum   = "EnumProperty"
	PropStruct = "StructProperty"
	PropArray  = "ArrayProperty"
	PropMap    = "MapProperty"
)

// Node is one value of the property tree. The set of implementations is
// closed; higher layers go through package props rather than switching on
// these types themselves.
type Node interface {
	TypeName() string
	clone() Node
}

type (
	Bool  bool
	Int32 int32
	Int64 uint64
	Float float32
)

// Str and Name keep the layout their text was read in, so an untouched
// value encodes to the same bytes. Constructed values use the canonical
// layout.
type (
	Str struct {
		Value string
		Form  wire.StringForm
	}
	Name struct {
		Value string
		Form  wire.StringForm
	}
)

func NewStr(s string) Str   { return Str{Value: s} }
func NewName(s string) Name { return Name{Value: s} }

func (Bool) TypeName() string  { return PropBool }
func (Int32) TypeName() string { return PropInt32 }
func (Int64) TypeName() string { return PropInt64 }
func (Float) TypeName() string { return PropFloat }
func (Name) TypeName() string  { return PropName }
func (Str) TypeName() string   { return PropStr }

func (v Bool) clone() Node  { return v }
func (v Int32) clone() Node { return v }
func (v Int64) clone() Node { return v }
func (v Float) clone() Node { return v }
func (v Name) clone() Node  { return v }
func (v Str) clone() Node   { return v }

// Enum carries the full "Type::Member" value; Type is derived from it.
type Enum struct {
	Type  string
	Value string
	Form  wire.StringForm
}

// NewEnum derives the enum type from the value prefix.
func NewEnum(value string) *Enum {
	typ, _, ok := strings.Cut(value, "::")
	if !ok {
		typ = ""
	}
	return &Enum{Type: typ, Value: value}
}

func (*Enum) TypeName() string { return PropEnum }
func (e *Enum) clone() Node {
	c := *e
	return &c
}

// Struct is a typed nested property list. Id-like structs ("Guid") keep
// their payload in GUID and have no fields.
type Struct struct {
	StructType string
	GUID       GUID
	Fields     *Properties
}

func (*Struct) TypeName() string { return PropStruct }
func (s *Struct) clone() Node {
	return &Struct{StructType: s.StructType, GUID: s.GUID, Fields: s.Fields.Clone()}
}

// Array items are complete property lists.
type Array struct {
	ElementType string
	Items       []*Properties
}

func (*Array) TypeName() string { return PropArray }
func (a *Array) clone() Node {
	c := &Array{ElementType: a.ElementType, Items: make([]*Properties, len(a.Items))}
	for i, it := range a.Items {
		c.Items[i] = it.Clone()
	}
	return c
}

// MapEntry pairs a raw key string with a property list.
type MapEntry struct {
	Key     string
	KeyForm wire.StringForm
	Value   *Properties
}

// Map preserves entry order exactly as read.
type Map struct {
	KeyType   string
	ValueType string
	Entries   []MapEntry
}

func (*Map) TypeName() string { return PropMap }
func (m *Map) clone() Node {
	c := &Map{KeyType: m.KeyType, ValueType: m.ValueType, Entries: make([]MapEntry, len(m.Entries))}
	for i, e := range m.Entries {
		c.Entries[i] = MapEntry{Key: e.Key, KeyForm: e.KeyForm, Value: e.Value.Clone()}
	}
	return c
}

// CloneNode returns a deep copy of n.
func CloneNode(n Node) Node {
	if n == nil {
		return nil
	}
	return n.clone()
}
