package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser      = "user"
	PrefixProject   = "proj"
	PrefixSnapshot  = "snap"
	PrefixOp        = "op"
	PrefixFloor     = "floor"
	PrefixRoom      = "room"
	PrefixDoor      = "door"
	PrefixWindow    = "win"
	PrefixPlacement = "dev"
	PrefixStair     = "stair"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewUserID() string      { return New(PrefixUser) }
func NewProjectID() string   { return New(PrefixProject) }
func NewSnapshotID() string  { return New(PrefixSnapshot) }
func NewOpID() string        { return New(PrefixOp) }
func NewFloorID() string     { return New(PrefixFloor) }
func NewRoomID() string      { return New(PrefixRoom) }
func NewDoorID() string      { return New(PrefixDoor) }
func NewWindowID() string    { return New(PrefixWindow) }
func NewPlacementID() string { return New(PrefixPlacement) }
func NewStairID() string     { return New(PrefixStair) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
