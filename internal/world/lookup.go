package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/core/event"
	"github.com/paledit/paledit/internal/data"
)

// Lookup is the read-only reference data the entity layer queries.
// *data.Tables implements it.
type Lookup interface {
	Pal(key string) (*data.PalInfo, bool)
	ActiveSkill(id string) (*data.ActiveSkill, bool)
	PassiveSkill(id string) (*data.PassiveSkill, bool)
	HasTechnology(id string) bool
	PalLevelExp(level int) uint64
	PlayerLevelExp(level int) uint64
	PalName(key string) (string, bool)
	Language() string
}

// env is shared by every entity of one loaded save.
type env struct {
	lookup Lookup
	log    *zap.Logger
	bus    *event.Bus
}

func newEnv(lookup Lookup, log *zap.Logger, bus *event.Bus) *env {
	if log == nil {
		log = zap.NewNop()
	}
	return &env{lookup: lookup, log: log, bus: bus}
}

// changed queues a FieldChanged event when a bus is attached.
func (e *env) changed(kind event.EntityKind, id, field string, oldV, newV any) {
	if e.bus == nil {
		return
	}
	event.Emit(e.bus, event.FieldChanged{
		Entity: kind,
		ID:     id,
		Field:  field,
		Old:    fmt.Sprint(oldV),
		New:    fmt.Sprint(newV),
	})
}

var _ Lookup = (*data.Tables)(nil)
