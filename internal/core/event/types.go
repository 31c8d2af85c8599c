package event

// EntityKind names the entity a change belongs to.
type EntityKind string

const (
	EntityPal    EntityKind = "pal"
	EntityPlayer EntityKind = "player"
)

// FieldChanged is emitted by every entity mutator that writes the tree.
// Old and New are rendered with fmt.Sprint.
type FieldChanged struct {
	Entity EntityKind
	ID     string
	Field  string
	Old    string
	New    string
}

type PalCloned struct {
	Source string
	Clone  string
}

type PalDeleted struct {
	ID string
}

// SaveLoaded is emitted after a Level.sav has been decoded.
type SaveLoaded struct {
	Path   string
	Size   int
	Rounds int
	Digest string // blake2b-256 of the compressed file, hex
}

// SaveWritten is emitted after a save has been encoded and written.
type SaveWritten struct {
	Path   string
	Size   int
	Rounds int
	Digest string
}
