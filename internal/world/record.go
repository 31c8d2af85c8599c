package world

import (
	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/props"
)

// Record is one resolved CharacterSaveParameterMap entry. The property
// lists are references into the document tree; writing through them
// mutates the save.
type Record struct {
	MapKey string
	Entry  *gvas.Properties // map entry value
	Key    *gvas.Properties // Key struct fields
	Raw    *gvas.Properties // RawData struct fields
	Param  *gvas.Properties // SaveParameter struct fields

	PlayerUId  gvas.GUID
	InstanceId gvas.GUID
	Owner      gvas.GUID // zero for players and ownerless pals
	IsPlayer   bool
}

// ID is the InstanceId in hex.
func (r *Record) ID() string { return r.InstanceId.String() }

// ResolveRecord locates the Key/RawData/SaveParameter structs of one map
// entry. Missing identity fields are validation errors.
func ResolveRecord(mapKey string, entry *gvas.Properties) (*Record, error) {
	if entry == nil {
		return nil, perr.Validationf("record %q has no value", mapKey)
	}
	key, ok := props.GetStruct(entry, keyRecordKey)
	if !ok {
		return nil, perr.Validationf("record %q missing %s", mapKey, keyRecordKey)
	}
	instanceID, ok := props.GetGUID(key, keyInstanceID)
	if !ok {
		return nil, perr.Validationf("record %q missing %s", mapKey, keyInstanceID).
			WithMeta("record", mapKey)
	}
	raw, ok := props.GetStruct(entry, keyRawData)
	if !ok {
		return nil, perr.Validationf("record %q missing %s", mapKey, keyRawData)
	}
	param, ok := props.GetStruct(raw, keySaveParameter)
	if !ok {
		return nil, perr.Validationf("record %q missing %s", mapKey, keySaveParameter)
	}

	rec := &Record{
		MapKey:     mapKey,
		Entry:      entry,
		Key:        key,
		Raw:        raw,
		Param:      param,
		InstanceId: instanceID,
		IsPlayer:   isPlayerParam(param),
	}
	uid, hasUID := props.GetGUID(key, keyPlayerUID)
	rec.PlayerUId = uid
	if rec.IsPlayer {
		if !hasUID || uid.IsZero() {
			return nil, perr.Validationf("player record %q missing %s", mapKey, keyPlayerUID)
		}
		return rec, nil
	}
	rec.Owner, _ = props.GetGUID(param, fieldOwnerPlayerUID)
	return rec, nil
}

// isPlayerParam reads the CharacterType enum, falling back to the IsPlayer
// flag older saves carry.
func isPlayerParam(param *gvas.Properties) bool {
	if ct, ok := props.GetEnum(param, fieldCharacterType); ok {
		return ct == enumCharacterType
	}
	v, _ := props.GetBool(param, fieldIsPlayer)
	return v
}
