package gvas_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/gvas/wire"
)

var fixtureHeader = gvas.Header{
	Version:         3,
	PackageFlags:    522,
	EngineMajor:     5,
	EngineMinor:     1,
	EnginePatch:     1,
	CustomVersion:   0x2C,
	SaveGameVersion: 7,
}

func sampleTree() *gvas.Properties {
	guidStruct := gvas.NewProperties()

	param := gvas.NewProperties()
	param.Set("CharacterID", gvas.NewName("SheepBall"))
	param.Set("Level", gvas.Int32(12))
	param.Set("Exp", gvas.Int64(1<<40))
	param.Set("Gender", gvas.NewEnum("EPalGenderType::Female"))
	param.Set("IsRarePal", gvas.Bool(true))
	param.Set("SanityValue", gvas.Float(87.5))
	param.Set("NickName", gvas.NewStr("ふわふわ"))

	skill := gvas.NewProperties()
	skill.Set("Value", gvas.NewName("Rare"))
	param.Set("PassiveSkillList", &gvas.Array{ElementType: gvas.PropName, Items: []*gvas.Properties{skill}})

	value := gvas.NewProperties()
	value.Set("SaveParameter", &gvas.Struct{StructType: "PalIndividualCharacterSaveParameter", Fields: param})
	value.Set("Owner", &gvas.Struct{StructType: "Guid", GUID: wire.NewGUID(), Fields: guidStruct})

	empty := gvas.NewProperties()
	empty.End = gvas.EndEmpty

	world := gvas.NewProperties()
	world.Set("CharacterSaveParameterMap", &gvas.Map{
		KeyType:   gvas.PropStruct,
		ValueType: gvas.PropStruct,
		Entries: []gvas.MapEntry{
			{Key: "b", Value: value},
			{Key: "a", Value: empty},
		},
	})

	root := gvas.NewProperties()
	root.Set("Version", gvas.Int32(1))
	root.Set("worldSaveData", &gvas.Struct{StructType: "PalWorldSaveData", Fields: world})
	return root
}

func sampleDoc() *gvas.Document {
	return &gvas.Document{Header: fixtureHeader, Properties: sampleTree(), Trailer: []byte{0, 0, 0, 0}}
}

func TestDocumentRoundTrip(t *testing.T) {
	first, err := sampleDoc().Encode()
	require.NoError(t, err)

	doc, err := gvas.Decode(first, nil)
	require.NoError(t, err)
	assert.Equal(t, fixtureHeader, doc.Header)
	assert.Equal(t, []byte{0, 0, 0, 0}, doc.Trailer)

	second, err := doc.Encode()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	world, ok := doc.Properties.Get("worldSaveData")
	require.True(t, ok)
	m, ok := world.(*gvas.Struct).Fields.Get("CharacterSaveParameterMap")
	require.True(t, ok)
	entries := m.(*gvas.Map).Entries
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Key)
	assert.Equal(t, "a", entries[1].Key)
	assert.Equal(t, gvas.EndEmpty, entries[1].Value.End)

	param, _ := entries[0].Value.Get("SaveParameter")
	gender, _ := param.(*gvas.Struct).Fields.Get("Gender")
	assert.Equal(t, "EPalGenderType", gender.(*gvas.Enum).Type)
	nick, _ := param.(*gvas.Struct).Fields.Get("NickName")
	assert.Equal(t, gvas.NewStr("ふわふわ"), nick)
}

func TestDecompressRounds(t *testing.T) {
	inner, err := sampleDoc().Encode()
	require.NoError(t, err)

	for rounds := 1; rounds <= 5; rounds++ {
		raw, err := gvas.Compress(inner, gvas.Container{Rounds: rounds, ChunkMagic: 0x325A6C50})
		require.NoError(t, err)

		got, c, err := gvas.Decompress(raw, 0)
		require.NoError(t, err)
		assert.Equal(t, rounds, c.Rounds)
		assert.Equal(t, uint32(0x325A6C50), c.ChunkMagic)
		assert.Equal(t, uint32(len(inner)), c.DeclaredSize)
		assert.True(t, bytes.HasPrefix(got, gvas.Tag))
		assert.Equal(t, inner, got)
	}
}

func TestTwoRoundScenario(t *testing.T) {
	inner, err := sampleDoc().Encode()
	require.NoError(t, err)
	raw, err := gvas.Compress(inner, gvas.Container{Rounds: 2})
	require.NoError(t, err)

	save, err := gvas.Load(raw, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, save.Container.Rounds)
	assert.Equal(t, uint32(3), save.Doc.Header.Version)

	out, err := save.Marshal()
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestDecompressScanFallback(t *testing.T) {
	inner, err := sampleDoc().Encode()
	require.NoError(t, err)

	// tag straddles the first 4096-byte window
	junk := bytes.Repeat([]byte{'x'}, 4094)
	raw, err := gvas.Compress(append(append([]byte(nil), junk...), inner...), gvas.Container{Rounds: 1})
	require.NoError(t, err)

	got, c, err := gvas.Decompress(raw, 0)
	require.NoError(t, err)
	assert.Equal(t, inner, got)
	assert.Equal(t, junk, c.Prefix)

	again, err := gvas.Compress(got, c)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestDecompressErrors(t *testing.T) {
	_, _, err := gvas.Decompress([]byte{1, 2, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0}, 0)
	assert.True(t, perr.IsFormat(err))

	noTag, err := gvas.Compress([]byte("no inner tag here"), gvas.Container{Rounds: 1})
	require.NoError(t, err)
	_, _, err = gvas.Decompress(noTag, 0)
	assert.True(t, perr.IsFormat(err))

	_, _, err = gvas.Decompress([]byte{0x22, 0x06, 0x4B, 0x01, 0, 0, 0, 0, 0, 0, 0, 0, 0xFF}, 0)
	assert.True(t, perr.IsFormat(err))

	big, err := gvas.Compress(bytes.Repeat([]byte{'G'}, 1<<16), gvas.Container{Rounds: 1})
	require.NoError(t, err)
	_, _, err = gvas.Decompress(big, 1024)
	assert.True(t, perr.IsFormat(err))
}

func TestParseHeaderRequiresTag(t *testing.T) {
	_, err := gvas.ParseHeader(bytes.Repeat([]byte{0}, gvas.HeaderSize))
	assert.True(t, perr.IsFormat(err))

	_, err = gvas.ParseHeader([]byte("GVAS\x01"))
	assert.True(t, perr.IsFormat(err))
}

func TestEmptyMapAdvancesByCount(t *testing.T) {
	w := wire.NewWriter()
	w.WriteString("Empty")
	w.WriteString(gvas.PropMap)
	w.WriteI32(0) // size, ignored
	w.WriteString(gvas.PropStr)
	w.WriteString(gvas.PropStruct)
	beforeCount := w.Len()
	w.WriteI32(0)
	afterCount := w.Len()
	w.WriteString("None")

	data := w.Bytes()
	r := wire.NewReaderAt(data, afterCount)
	term, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "None", term)

	props, consumed, err := gvas.DecodeProperties(data, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, afterCount-beforeCount)
	assert.Equal(t, len(data), consumed)

	node, ok := props.Get("Empty")
	require.True(t, ok)
	m := node.(*gvas.Map)
	assert.Empty(t, m.Entries)
	assert.Equal(t, gvas.PropStr, m.KeyType)
	assert.Equal(t, gvas.PropStruct, m.ValueType)
}

func TestStrPropertyKeepsWireForm(t *testing.T) {
	w := wire.NewWriter()
	w.WriteString("NickName")
	w.WriteString(gvas.PropStr)
	w.WriteI32(12) // size
	// "Bob" + NUL as UTF-16LE, length -8
	w.WriteBytes([]byte{0xF8, 0xFF, 0xFF, 0xFF, 'B', 0, 'o', 0, 'b', 0, 0, 0})
	w.WriteString("CharacterID")
	w.WriteString(gvas.PropName)
	w.WriteBytes([]byte{9, 0, 0, 0, 0, 0, 0, 0, 'S', 'h', 'e', 'e', 'p', 'B', 'a', 'l', 'l'})
	w.WriteString("None")
	data := w.Bytes()

	p, consumed, err := gvas.DecodeProperties(data, nil)
	require.NoError(t, err)
	require.Equal(t, len(data), consumed)
	nick, _ := p.Get("NickName")
	assert.Equal(t, "Bob", nick.(gvas.Str).Value)
	assert.True(t, nick.(gvas.Str).Form.Wide)

	out, err := gvas.EncodeProperties(p)
	require.NoError(t, err)
	assert.Equal(t, data, out)

	// a cloned tree encodes the same bytes
	out, err = gvas.EncodeProperties(p.Clone())
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestWideMapKeyRoundTrip(t *testing.T) {
	inner := wire.NewWriter()
	inner.WriteString(gvas.PropStr)
	inner.WriteString(gvas.PropInt32)
	inner.WriteI32(1)
	inner.WriteBytes([]byte{0xF8, 0xFF, 0xFF, 0xFF, 'k', 0, 'e', 0, 'y', 0, 0, 0})
	inner.WriteString("V")
	inner.WriteString(gvas.PropInt32)
	inner.WriteI32(3)
	inner.WriteString("None")

	w := wire.NewWriter()
	w.WriteString("M")
	w.WriteString(gvas.PropMap)
	w.WriteI32(int32(inner.Len()))
	w.WriteBytes(inner.Bytes())
	w.WriteString("None")
	data := w.Bytes()

	p, _, err := gvas.DecodeProperties(data, nil)
	require.NoError(t, err)
	out, err := gvas.EncodeProperties(p)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestUnknownTypeSkipped(t *testing.T) {
	w := wire.NewWriter()
	w.WriteString("Mystery")
	w.WriteString("SoftObjectProperty")
	w.WriteI32(12)
	w.WriteBytes(bytes.Repeat([]byte{0xEE}, 12))
	w.WriteString("Next")
	w.WriteString(gvas.PropInt32)
	w.WriteI32(7)
	w.WriteString("None")

	props, consumed, err := gvas.DecodeProperties(w.Bytes(), nil)
	require.NoError(t, err)
	assert.Equal(t, w.Len(), consumed)
	assert.False(t, props.Has("Mystery"))
	next, ok := props.Get("Next")
	require.True(t, ok)
	assert.Equal(t, gvas.Int32(7), next)
}

func TestUnknownTypeWithoutSize(t *testing.T) {
	w := wire.NewWriter()
	w.WriteString("Mystery")
	w.WriteString("SoftObjectProperty")
	w.WriteU16(1)

	_, _, err := gvas.DecodeProperties(w.Bytes(), nil)
	assert.True(t, perr.IsFormat(err))
}

func TestMalformedKnownTypeIsFatal(t *testing.T) {
	w := wire.NewWriter()
	w.WriteString("Items")
	w.WriteString(gvas.PropArray)
	w.WriteI32(100)
	w.WriteString(gvas.PropInt32)
	w.WriteI32(1 << 20)

	_, _, err := gvas.DecodeProperties(w.Bytes(), nil)
	assert.True(t, perr.IsFormat(err))
}

func TestDuplicateNamesLastWriteWins(t *testing.T) {
	w := wire.NewWriter()
	for _, v := range []int32{1, 2} {
		w.WriteString("Level")
		w.WriteString(gvas.PropInt32)
		w.WriteI32(v)
	}
	w.WriteString("None")

	props, _, err := gvas.DecodeProperties(w.Bytes(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, props.Len())
	v, _ := props.Get("Level")
	assert.Equal(t, gvas.Int32(2), v)
}

func TestPropertiesOrderAndDelete(t *testing.T) {
	p := gvas.NewProperties()
	p.Set("a", gvas.Int32(1))
	p.Set("b", gvas.Int32(2))
	p.Set("c", gvas.Int32(3))
	p.Set("a", gvas.Int32(4))
	assert.Equal(t, []string{"a", "b", "c"}, p.Names())

	assert.True(t, p.Delete("b"))
	assert.False(t, p.Delete("b"))
	v, ok := p.Get("c")
	require.True(t, ok)
	assert.Equal(t, gvas.Int32(3), v)

	c := p.Clone()
	c.Set("a", gvas.Int32(9))
	v, _ = p.Get("a")
	assert.Equal(t, gvas.Int32(4), v)
}

func TestCloneNodeIsDeep(t *testing.T) {
	tree := sampleTree()
	world, _ := tree.Get("worldSaveData")
	cp := gvas.CloneNode(world).(*gvas.Struct)
	cp.Fields.Delete("CharacterSaveParameterMap")
	assert.True(t, world.(*gvas.Struct).Fields.Has("CharacterSaveParameterMap"))
}
