package collab

import (
	"encoding/json"

	"github.com/siteplan/siteplan/backend-go/internal/drop"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
)

type Message struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"projectId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// PresencePayload is what one editor shows the others: pointer, active
// floor and the placement they have selected.
type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Floor       int        `json:"floor,omitempty"`
	Selection   string     `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

// DocSyncPayload carries the authoritative floorplan to a joining client.
type DocSyncPayload struct {
	Floorplan floorplan.FloorplanWithStairs `json:"floorplan"`
	ServerSeq int64                         `json:"serverSeq"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Document sync
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Operation types
const (
	OpPlacementUpsert = "placement.upsert"
	OpPlacementRemove = "placement.remove"
	OpRoomRemove      = "room.remove"
	OpStairsAdd       = "stairs.add"
	OpStairsRemove    = "stairs.remove"
	OpDeviceDrop      = "device.drop"
)

// Operation is one floorplan edit. Which fields are read depends on Type.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`

	// For placement.upsert
	Placement *floorplan.DevicePlacement `json:"placement,omitempty"`

	// For placement.remove
	PlacementID string `json:"placementId,omitempty"`

	// For room.remove
	FloorID string `json:"floorId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`

	// For stairs.add
	Stair *floorplan.Stair `json:"stair,omitempty"`

	// For stairs.remove
	StairID string `json:"stairId,omitempty"`

	// For device.drop
	Drop *drop.Event `json:"drop,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages. Drop is set for
// device.drop so the sender learns the outcome and the placement id.
type OperationAckPayload struct {
	OperationID     string       `json:"operationId"`
	ServerSeq       int64        `json:"serverSeq"`
	ServerTimestamp int64        `json:"serverTimestamp"`
	Drop            *drop.Result `json:"drop,omitempty"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}
