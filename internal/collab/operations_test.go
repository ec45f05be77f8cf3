package collab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siteplan/siteplan/backend-go/internal/drop"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/geometry"
)

func testFloorplan() floorplan.FloorplanWithStairs {
	hall := floorplan.NewRoom("room-1", "Hall", geometry.Rect{X: 0, Y: 0, W: 200, H: 100})
	hall.Doors = []floorplan.Door{floorplan.NewDoor("d1", geometry.WallSouth, 0.5, true)}
	office := floorplan.NewRoom("room-2", "Office", geometry.Rect{X: 200, Y: 0, W: 100, H: 100})
	loft := floorplan.NewRoom("room-3", "Loft", geometry.Rect{X: 0, Y: 0, W: 300, H: 100})

	return floorplan.FloorplanWithStairs{
		Floorplan: floorplan.Floorplan{
			Version: floorplan.CurrentVersion,
			Floors: []floorplan.Floor{
				{ID: "floor-1", Label: "Ground", Rooms: []floorplan.Room{hall, office}},
				{ID: "floor-2", Label: "Upper", Rooms: []floorplan.Room{loft}},
			},
			Placements: []floorplan.DevicePlacement{},
		},
		Stairs: []floorplan.Stair{},
	}
}

func newTestState() *DocumentState {
	ids := 0
	resolver := drop.NewResolver(nil).WithIDs(func() string {
		ids++
		return "dev_" + string(rune('0'+ids))
	})
	return NewDocumentState(testFloorplan(), resolver)
}

func dropOp(id, payload string, x, y float64, floor int) Operation {
	return Operation{
		ID:   id,
		Type: OpDeviceDrop,
		Drop: &drop.Event{Payload: json.RawMessage(payload), X: x, Y: y, Floor: floor},
	}
}

func TestApplyPlacementUpsert(t *testing.T) {
	ds := newTestState()
	p := floorplan.DevicePlacement{ID: "p1", Type: "siren", Floor: 1, RoomID: "room-1", X: 50, Y: 50}

	applied, err := ds.ApplyOperation(Operation{ID: "op1", Type: OpPlacementUpsert, Placement: &p})
	require.NoError(t, err)
	assert.Equal(t, int64(1), applied.ServerSeq)
	require.NotNil(t, applied.Broadcast)
	assert.Equal(t, OpPlacementUpsert, applied.Broadcast.Type)

	fp, seq := ds.Floorplan()
	assert.Equal(t, int64(1), seq)
	require.Len(t, fp.Placements, 1)
	assert.Equal(t, p, fp.Placements[0])
}

func TestApplyRejectsBadOperations(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want error
	}{
		{"unknown type", Operation{Type: "object.transform"}, ErrUnknownOperation},
		{"upsert without placement", Operation{Type: OpPlacementUpsert}, ErrMissingField},
		{"upsert dangling room", Operation{Type: OpPlacementUpsert, Placement: &floorplan.DevicePlacement{
			ID: "p1", Type: "siren", Floor: 1, RoomID: "room-9",
		}}, floorplan.ErrUnknownRoom},
		{"upsert wall of other room", Operation{Type: OpPlacementUpsert, Placement: &floorplan.DevicePlacement{
			ID: "p1", Type: "doorbell", Floor: 1, RoomID: "room-1", WallID: "room-2-s",
		}}, floorplan.ErrBadWallRef},
		{"remove without id", Operation{Type: OpPlacementRemove}, ErrMissingField},
		{"room on wrong floor", Operation{Type: OpRoomRemove, FloorID: "floor-2", RoomID: "room-1"}, ErrNotFound},
		{"stairs on unknown floor", Operation{Type: OpStairsAdd, Stair: &floorplan.Stair{
			ID: "s1", FloorID: "floor-9", Direction: floorplan.StairsUp,
		}}, floorplan.ErrUnknownFloor},
		{"drop without event", Operation{Type: OpDeviceDrop}, ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := newTestState()
			before, _ := ds.Floorplan()

			_, err := ds.ApplyOperation(tt.op)
			assert.ErrorIs(t, err, tt.want)

			after, seq := ds.Floorplan()
			assert.Equal(t, before, after)
			assert.Equal(t, int64(0), seq)
			_, dirty := ds.TakeDirty()
			assert.False(t, dirty)
		})
	}
}

func TestApplyRemoveUnknownIsAcceptedWithoutBroadcast(t *testing.T) {
	ds := newTestState()

	applied, err := ds.ApplyOperation(Operation{Type: OpPlacementRemove, PlacementID: "nope"})
	require.NoError(t, err)
	assert.Nil(t, applied.Broadcast)
	assert.Equal(t, int64(1), applied.ServerSeq)

	applied, err = ds.ApplyOperation(Operation{Type: OpStairsRemove, StairID: "nope"})
	require.NoError(t, err)
	assert.Nil(t, applied.Broadcast)

	_, dirty := ds.TakeDirty()
	assert.False(t, dirty)
}

func TestApplyRoomRemoveCascades(t *testing.T) {
	ds := newTestState()
	for _, p := range []floorplan.DevicePlacement{
		{ID: "p1", Type: "siren", Floor: 1, RoomID: "room-1", X: 50, Y: 50},
		{ID: "p2", Type: "siren", Floor: 1, RoomID: "room-2", X: 250, Y: 50},
	} {
		p := p
		_, err := ds.ApplyOperation(Operation{Type: OpPlacementUpsert, Placement: &p})
		require.NoError(t, err)
	}

	applied, err := ds.ApplyOperation(Operation{Type: OpRoomRemove, FloorID: "floor-1", RoomID: "room-1"})
	require.NoError(t, err)
	require.NotNil(t, applied.Broadcast)

	fp, _ := ds.Floorplan()
	require.Len(t, fp.Placements, 1)
	assert.Equal(t, "p2", fp.Placements[0].ID)
	assert.Len(t, fp.Floors[0].Rooms, 1)
}

func TestApplyStairs(t *testing.T) {
	ds := newTestState()

	applied, err := ds.ApplyOperation(Operation{Type: OpStairsAdd, Stair: &floorplan.Stair{
		ID: "s1", FloorID: "floor-2", FloorIndex: 7, Position: geometry.Point{X: 10, Y: 10}, Direction: floorplan.StairsDown,
	}})
	require.NoError(t, err)
	require.NotNil(t, applied.Broadcast)
	assert.Equal(t, 2, applied.Broadcast.Stair.FloorIndex, "floor index follows the floor id")

	fp, _ := ds.Floorplan()
	require.Len(t, fp.Stairs, 1)
	assert.Equal(t, 2, fp.Stairs[0].FloorIndex)

	_, err = ds.ApplyOperation(Operation{Type: OpStairsRemove, StairID: "s1"})
	require.NoError(t, err)
	fp, _ = ds.Floorplan()
	assert.Empty(t, fp.Stairs)
}

func TestApplyDeviceDrop(t *testing.T) {
	ds := newTestState()

	applied, err := ds.ApplyOperation(dropOp("op1", `{"type":"doorbell"}`, 100, 97, 1))
	require.NoError(t, err)
	require.NotNil(t, applied.Drop)
	assert.Equal(t, drop.OutcomePlaced, applied.Drop.Outcome)

	require.NotNil(t, applied.Broadcast)
	assert.Equal(t, OpPlacementUpsert, applied.Broadcast.Type, "drops replay as upserts")
	assert.Equal(t, "op1", applied.Broadcast.ID)
	require.NotNil(t, applied.Broadcast.Placement)
	assert.Equal(t, "dev_1", applied.Broadcast.Placement.ID)
	assert.Equal(t, "room-1-s", applied.Broadcast.Placement.WallID)

	// Move it into the office.
	applied, err = ds.ApplyOperation(dropOp("op2", `{"placementId":"dev_1"}`, 297, 50, 1))
	require.NoError(t, err)
	assert.Equal(t, drop.OutcomeMoved, applied.Drop.Outcome)

	fp, _ := ds.Floorplan()
	require.Len(t, fp.Placements, 1)
	assert.Equal(t, "room-2", fp.Placements[0].RoomID)
	assert.Equal(t, "room-2-e", fp.Placements[0].WallID)
}

func TestApplyIgnoredDrop(t *testing.T) {
	ds := newTestState()
	before, _ := ds.Floorplan()

	applied, err := ds.ApplyOperation(dropOp("op1", `{"type":"siren"}`, 900, 900, 1))
	require.NoError(t, err)
	assert.Nil(t, applied.Broadcast)
	require.NotNil(t, applied.Drop)
	assert.Equal(t, drop.OutcomeIgnoredNoRoom, applied.Drop.Outcome)

	after, _ := ds.Floorplan()
	assert.Equal(t, before, after)
}

func TestSnapshotsAreNotModified(t *testing.T) {
	ds := newTestState()
	_, err := ds.ApplyOperation(dropOp("op1", `{"type":"siren"}`, 50, 50, 1))
	require.NoError(t, err)

	held, _ := ds.Floorplan()
	_, err = ds.ApplyOperation(Operation{Type: OpRoomRemove, FloorID: "floor-1", RoomID: "room-1"})
	require.NoError(t, err)

	assert.Len(t, held.Placements, 1)
	assert.Len(t, held.Floors[0].Rooms, 2)
}

func TestTakeDirty(t *testing.T) {
	ds := newTestState()
	_, dirty := ds.TakeDirty()
	assert.False(t, dirty)

	_, err := ds.ApplyOperation(dropOp("op1", `{"type":"siren"}`, 50, 50, 1))
	require.NoError(t, err)

	fp, dirty := ds.TakeDirty()
	assert.True(t, dirty)
	assert.Len(t, fp.Placements, 1)

	_, dirty = ds.TakeDirty()
	assert.False(t, dirty)

	ds.MarkDirty()
	_, dirty = ds.TakeDirty()
	assert.True(t, dirty)
}

func TestClearSelections(t *testing.T) {
	pm := NewPresenceManager()
	pm.Update("user_a", &PresencePayload{Selection: "p1"})
	pm.Update("user_b", &PresencePayload{Selection: "p2"})
	pm.Update("user_c", &PresencePayload{})

	changed := pm.ClearSelections(func(id string) bool { return id == "p2" })
	assert.Equal(t, []string{"user_a"}, changed)

	a, ok := pm.Get("user_a")
	require.True(t, ok)
	assert.Empty(t, a.Selection)
	b, _ := pm.Get("user_b")
	assert.Equal(t, "p2", b.Selection)
}
