package collab

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/siteplan/siteplan/backend-go/internal/drop"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
)

var (
	ErrUnknownOperation = errors.New("unknown operation type")
	ErrMissingField     = errors.New("missing field")
	ErrNotFound         = errors.New("not found")
	ErrNoSession        = errors.New("project session not open")
)

// Applied describes an accepted operation.
type Applied struct {
	ServerSeq int64

	// Broadcast is the operation other clients replay, or nil when the
	// operation left the floorplan unchanged. A device.drop is resolved on
	// the server and broadcast as the placement.upsert it produced.
	Broadcast *Operation

	// Drop is the resolution of a device.drop.
	Drop *drop.Result
}

// DocumentState holds the authoritative floorplan of one project session.
// Operations are applied in arrival order; the last write wins.
type DocumentState struct {
	mu        sync.RWMutex
	fp        floorplan.FloorplanWithStairs
	resolver  *drop.Resolver
	serverSeq int64
	dirty     bool
}

// NewDocumentState creates a document state from a loaded floorplan.
func NewDocumentState(fp floorplan.FloorplanWithStairs, resolver *drop.Resolver) *DocumentState {
	if resolver == nil {
		resolver = drop.NewResolver(nil)
	}
	return &DocumentState{
		fp:       floorplan.EnsureFloorplanStairs(fp),
		resolver: resolver,
	}
}

// Floorplan returns the current snapshot. Snapshots are never modified in
// place, so the caller may keep it.
func (ds *DocumentState) Floorplan() (floorplan.FloorplanWithStairs, int64) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.fp, ds.serverSeq
}

// TakeDirty returns the snapshot and clears the dirty flag if there are
// unsaved changes.
func (ds *DocumentState) TakeDirty() (floorplan.FloorplanWithStairs, bool) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if !ds.dirty {
		return floorplan.FloorplanWithStairs{}, false
	}
	ds.dirty = false
	return ds.fp, true
}

// MarkDirty flags the state for the next save, after a failed one.
func (ds *DocumentState) MarkDirty() {
	ds.mu.Lock()
	ds.dirty = true
	ds.mu.Unlock()
}

// ApplyOperation applies op and advances the server sequence. Operations that
// leave the floorplan unchanged (an ignored drop, removing a missing id) are
// accepted without a broadcast.
func (ds *DocumentState) ApplyOperation(op Operation) (Applied, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	next, broadcast, res, err := ds.applyOperationLocked(op)
	if err != nil {
		return Applied{}, err
	}

	ds.serverSeq++
	applied := Applied{ServerSeq: ds.serverSeq, Drop: res}
	if broadcast != nil {
		ds.fp = next
		ds.dirty = true
		applied.Broadcast = broadcast
	}
	return applied, nil
}

// applyOperationLocked computes the next snapshot without committing it
// (caller must hold lock). A nil broadcast means nothing changed.
func (ds *DocumentState) applyOperationLocked(op Operation) (floorplan.FloorplanWithStairs, *Operation, *drop.Result, error) {
	fp := ds.fp
	switch op.Type {
	case OpPlacementUpsert:
		if op.Placement == nil {
			return fp, nil, nil, fmt.Errorf("%w: placement", ErrMissingField)
		}
		if err := floorplan.CheckPlacementRefs(fp.Floorplan, *op.Placement); err != nil {
			return fp, nil, nil, err
		}
		fp.Floorplan = floorplan.PlaceDevice(fp.Floorplan, *op.Placement)
		return fp, &op, nil, nil

	case OpPlacementRemove:
		if op.PlacementID == "" {
			return fp, nil, nil, fmt.Errorf("%w: placementId", ErrMissingField)
		}
		if _, ok := fp.FindPlacement(op.PlacementID); !ok {
			return fp, nil, nil, nil
		}
		fp.Floorplan = floorplan.RemovePlacementByID(fp.Floorplan, op.PlacementID)
		return fp, &op, nil, nil

	case OpRoomRemove:
		if op.FloorID == "" || op.RoomID == "" {
			return fp, nil, nil, fmt.Errorf("%w: floorId and roomId", ErrMissingField)
		}
		if !hasRoom(fp.Floorplan, op.FloorID, op.RoomID) {
			return fp, nil, nil, fmt.Errorf("%w: room %s on floor %s", ErrNotFound, op.RoomID, op.FloorID)
		}
		fp.Floorplan = floorplan.RemoveRoomByID(fp.Floorplan, op.FloorID, op.RoomID)
		return fp, &op, nil, nil

	case OpStairsAdd:
		if op.Stair == nil {
			return fp, nil, nil, fmt.Errorf("%w: stair", ErrMissingField)
		}
		if err := floorplan.CheckStairRefs(fp.Floorplan, *op.Stair); err != nil {
			return fp, nil, nil, err
		}
		stair := *op.Stair
		stair.FloorIndex = fp.FloorIndex(stair.FloorID)
		op.Stair = &stair
		return floorplan.AddStairs(fp, stair), &op, nil, nil

	case OpStairsRemove:
		if op.StairID == "" {
			return fp, nil, nil, fmt.Errorf("%w: stairId", ErrMissingField)
		}
		if !hasStair(fp, op.StairID) {
			return fp, nil, nil, nil
		}
		return floorplan.RemoveStairsByID(fp, op.StairID), &op, nil, nil

	case OpDeviceDrop:
		if op.Drop == nil {
			return fp, nil, nil, fmt.Errorf("%w: drop", ErrMissingField)
		}
		next, res := ds.resolver.Resolve(fp.Floorplan, *op.Drop)
		if !res.Outcome.Committed() {
			return fp, nil, &res, nil
		}
		fp.Floorplan = next
		placement := res.Placement
		return fp, &Operation{
			ID:        op.ID,
			Type:      OpPlacementUpsert,
			Timestamp: op.Timestamp,
			ClientSeq: op.ClientSeq,
			Placement: &placement,
		}, &res, nil

	default:
		return fp, nil, nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op.Type)
	}
}

func hasRoom(fp floorplan.Floorplan, floorID, roomID string) bool {
	floor, ok := fp.FloorByIndex(fp.FloorIndex(floorID))
	if !ok {
		return false
	}
	for _, r := range floor.Rooms {
		if r.ID == roomID {
			return true
		}
	}
	return false
}

func hasStair(fp floorplan.FloorplanWithStairs, id string) bool {
	for _, s := range fp.Stairs {
		if s.ID == id {
			return true
		}
	}
	return false
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
