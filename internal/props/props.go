// Package props builds and reads property nodes in the exact shapes the save
// format uses. Entity code never switches on gvas node types directly.
//
// Conventions:
//   - a scalar array element or map value is a list with one property named "Value"
//   - a struct array element is a list holding the struct's fields
//   - a GUID is a "Guid" struct whose payload is the struct GUID slot
package props

import (
	"github.com/paledit/paledit/internal/gvas"
)

// ValueKey names the single property of a scalar element list.
const ValueKey = "Value"

// Struct type names used by the save.
const (
	StructGUID         = "Guid"
	StructFixedPoint64 = "FixedPoint64"
	StructSlotID       = "PalCharacterSlotId"
	StructContainerID  = "PalContainerId"
)

func Bool(v bool) gvas.Node     { return gvas.Bool(v) }
func Int32(v int32) gvas.Node   { return gvas.Int32(v) }
func Int64(v uint64) gvas.Node  { return gvas.Int64(v) }
func Float(v float32) gvas.Node { return gvas.Float(v) }
func Str(s string) gvas.Node    { return gvas.NewStr(s) }
func Name(s string) gvas.Node   { return gvas.NewName(s) }

// Enum builds "typ::member".
func Enum(typ, member string) *gvas.Enum {
	return gvas.NewEnum(typ + "::" + member)
}

// EnumValue builds an enum from a full "Type::Member" value.
func EnumValue(value string) *gvas.Enum {
	return gvas.NewEnum(value)
}

// GUID builds a Guid struct.
func GUID(g gvas.GUID) *gvas.Struct {
	return &gvas.Struct{StructType: StructGUID, GUID: g, Fields: gvas.NewProperties()}
}

// FixedPoint64 builds {Value: Int64}.
func FixedPoint64(v uint64) *gvas.Struct {
	fields := gvas.NewProperties()
	fields.Set(ValueKey, gvas.Int64(v))
	return &gvas.Struct{StructType: StructFixedPoint64, Fields: fields}
}

// Struct wraps fields; nil fields become an empty list.
func Struct(structType string, fields *gvas.Properties) *gvas.Struct {
	if fields == nil {
		fields = gvas.NewProperties()
	}
	return &gvas.Struct{StructType: structType, Fields: fields}
}

// Element wraps a scalar as an array item or map value.
func Element(v gvas.Node) *gvas.Properties {
	p := gvas.NewProperties()
	p.Set(ValueKey, v)
	return p
}

// ArrayOf builds an array of scalar elements.
func ArrayOf(elemType string, values ...gvas.Node) *gvas.Array {
	a := &gvas.Array{ElementType: elemType, Items: make([]*gvas.Properties, 0, len(values))}
	for _, v := range values {
		a.Items = append(a.Items, Element(v))
	}
	return a
}

// StructArray builds an array whose items are struct field lists.
func StructArray(items ...*gvas.Properties) *gvas.Array {
	return &gvas.Array{ElementType: gvas.PropStruct, Items: items}
}

func NameArray(names []string) *gvas.Array {
	nodes := make([]gvas.Node, len(names))
	for i, n := range names {
		nodes[i] = gvas.NewName(n)
	}
	return ArrayOf(gvas.PropName, nodes...)
}

// EnumArray builds an array of full "Type::Member" values.
func EnumArray(values []string) *gvas.Array {
	nodes := make([]gvas.Node, len(values))
	for i, v := range values {
		nodes[i] = gvas.NewEnum(v)
	}
	return ArrayOf(gvas.PropEnum, nodes...)
}

// MapOf builds an empty map.
func MapOf(keyType, valueType string) *gvas.Map {
	return &gvas.Map{KeyType: keyType, ValueType: valueType}
}

// SlotID builds PalCharacterSlotId{ContainerId: PalContainerId{ID}, SlotIndex}.
func SlotID(container gvas.GUID, index int32) *gvas.Struct {
	cid := gvas.NewProperties()
	cid.Set("ID", GUID(container))
	fields := gvas.NewProperties()
	fields.Set("ContainerId", &gvas.Struct{StructType: StructContainerID, Fields: cid})
	fields.Set("SlotIndex", gvas.Int32(index))
	return &gvas.Struct{StructType: StructSlotID, Fields: fields}
}

// StatusPoint builds one GotStatusPointList item.
func StatusPoint(name string, points int32) *gvas.Properties {
	p := gvas.NewProperties()
	p.Set("StatusName", gvas.NewName(name))
	p.Set("StatusPoint", gvas.Int32(points))
	return p
}

// WorkSuitability builds one GotWorkSuitabilityAddRankList item.
func WorkSuitability(value string, rank int32) *gvas.Properties {
	p := gvas.NewProperties()
	p.Set("WorkSuitability", gvas.NewEnum(value))
	p.Set("Rank", gvas.Int32(rank))
	return p
}
