package wire

import (
	"encoding/hex"

	"github.com/google/uuid"

	perr "github.com/paledit/paledit/internal/errors"
)

// GUID is a 16-byte identifier stored verbatim on disk.
type GUID [16]byte

// Zero is the all-zero GUID carried by pal records as PlayerUId.
var Zero GUID

// String returns the 32-digit lowercase hex form of the raw bytes.
func (g GUID) String() string {
	return hex.EncodeToString(g[:])
}

// IsZero reports whether every byte is zero.
func (g GUID) IsZero() bool {
	return g == Zero
}

// UUID reinterprets the raw bytes as a uuid.UUID.
func (g GUID) UUID() uuid.UUID {
	return uuid.UUID(g)
}

// NewGUID returns a random version 4 GUID.
func NewGUID() GUID {
	return GUID(uuid.New())
}

// ParseGUID accepts the 32-digit hex form as well as any form uuid.Parse does.
func ParseGUID(s string) (GUID, error) {
	var g GUID
	if len(s) == 32 {
		if _, err := hex.Decode(g[:], []byte(s)); err == nil {
			return g, nil
		}
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return g, perr.WrapWithCode(err, perr.CodeValidation, "parse guid "+s)
	}
	return GUID(u), nil
}
