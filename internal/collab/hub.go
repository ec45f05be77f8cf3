package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/siteplan/siteplan/backend-go/internal/drop"
	"github.com/siteplan/siteplan/backend-go/internal/floorplan"
	"github.com/siteplan/siteplan/backend-go/internal/metrics"
	"github.com/siteplan/siteplan/backend-go/internal/typeid"
)

const (
	defaultSaveInterval = 30 * time.Second
	storeTimeout        = 10 * time.Second
)

// Loader reads the stored floorplan of a project when its first editor joins.
type Loader func(ctx context.Context, projectID string) (floorplan.FloorplanWithStairs, error)

// Saver persists a session's floorplan.
type Saver func(ctx context.Context, projectID string, fp floorplan.FloorplanWithStairs) error

// Session is one open project: its connected clients, their presence and
// the authoritative floorplan.
type Session struct {
	projectID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *DocumentState
}

func NewSession(projectID string, state *DocumentState) *Session {
	return &Session{
		projectID: projectID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		state:     state,
	}
}

type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*Session // projectID -> session
	register   chan *Client
	unregister chan *Client

	load         Loader
	save         Saver
	resolver     *drop.Resolver
	saveInterval time.Duration

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type Option func(*Hub)

// WithSaveInterval sets how often dirty sessions are written back.
func WithSaveInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.saveInterval = d
		}
	}
}

// WithResolver sets the drop resolver shared by all sessions.
func WithResolver(r *drop.Resolver) Option {
	return func(h *Hub) { h.resolver = r }
}

func NewHub(load Loader, save Saver, opts ...Option) *Hub {
	h := &Hub{
		sessions:     make(map[string]*Session),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		load:         load,
		save:         save,
		resolver:     drop.NewResolver(nil),
		saveInterval: defaultSaveInterval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes joins and leaves and saves dirty sessions periodically until
// Stop is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(h.saveInterval)
	defer func() {
		ticker.Stop()
		close(h.done)
	}()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.saveDirty()
		case <-h.stop:
			h.saveDirty()
			return
		}
	}
}

// Stop ends Run after saving every dirty session. Run must be running.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	session, ok := h.sessions[client.ProjectID]
	if !ok {
		fp, err := h.loadFloorplan(client.ProjectID)
		if err != nil {
			h.mu.Unlock()
			slog.Error("load floorplan", "error", err, "project", client.ProjectID)
			client.Send(errorMessage("failed to load floorplan"))
			client.closeSend()
			return
		}
		session = NewSession(client.ProjectID, NewDocumentState(fp, h.resolver))
		h.sessions[client.ProjectID] = session
	}
	session.clients[client.ClientID] = client
	h.reportCountsLocked()
	h.mu.Unlock()

	// Send the authoritative floorplan to the new client
	fp, seq := session.state.Floorplan()
	client.Send(newMessage(TypeDocSync, "", DocSyncPayload{Floorplan: fp, ServerSeq: seq}))

	// Send current presence state to new client
	if stateMsg := session.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	// Broadcast join to other clients
	h.broadcastToSession(client.ProjectID, newMessage(TypePresenceJoin, client.UserID, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	}), client.ClientID)

	slog.Info("client joined", "user", client.UserID, "project", client.ProjectID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	session, ok := h.sessions[client.ProjectID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := session.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(session.clients, client.ClientID)
	client.closeSend()
	session.presence.Remove(client.UserID)

	empty := len(session.clients) == 0
	if empty {
		delete(h.sessions, client.ProjectID)
	}
	h.reportCountsLocked()
	h.mu.Unlock()

	slog.Info("client left", "user", client.UserID, "project", client.ProjectID)

	if empty {
		// Last editor gone; write back before the session is dropped
		h.saveSession(session)
		return
	}

	h.broadcastToSession(client.ProjectID, newMessage(TypePresenceLeave, client.UserID, PresenceLeavePayload{
		UserID: client.UserID,
	}), "")
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}
	presence.DisplayName = sender.DisplayName

	session := h.session(sender.ProjectID)
	if session == nil {
		return
	}
	session.presence.Update(sender.UserID, &presence)

	h.broadcastToSession(sender.ProjectID, newMessage(TypePresenceUpdate, sender.UserID, presence), sender.ClientID)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid operation payload", "error", err, "user", sender.UserID)
		sender.Send(errorMessage("invalid operation payload"))
		return
	}
	op := submit.Operation
	if op.ID == "" {
		op.ID = typeid.NewOpID()
	}

	session := h.session(sender.ProjectID)
	if session == nil {
		// Joined but not yet registered, or already removed
		metrics.ObserveOperation(op.Type, metrics.ResultRejected)
		sender.Send(newMessage(TypeOpNack, "", OperationNackPayload{
			OperationID: op.ID,
			Reason:      ErrNoSession.Error(),
		}))
		return
	}

	applied, err := session.state.ApplyOperation(op)
	if err != nil {
		metrics.ObserveOperation(op.Type, metrics.ResultRejected)
		slog.Debug("operation rejected", "type", op.Type, "error", err, "user", sender.UserID)
		sender.Send(newMessage(TypeOpNack, "", OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		}))
		return
	}

	metrics.ObserveOperation(op.Type, metrics.ResultApplied)
	if applied.Drop != nil {
		metrics.ObserveDrop(string(applied.Drop.Outcome))
	}

	ack := newMessage(TypeOpAck, "", OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       applied.ServerSeq,
		ServerTimestamp: GetServerTimestamp(),
		Drop:            applied.Drop,
	})
	ack.Seq = applied.ServerSeq
	sender.Send(ack)

	if applied.Broadcast == nil {
		return
	}

	out := newMessage(TypeOpBroadcast, sender.UserID, OperationBroadcastPayload{
		Operation: *applied.Broadcast,
		UserID:    sender.UserID,
		ServerSeq: applied.ServerSeq,
	})
	out.Seq = applied.ServerSeq
	h.broadcastToSession(sender.ProjectID, out, sender.ClientID)

	if op.Type == OpPlacementRemove || op.Type == OpRoomRemove {
		h.clearStaleSelections(session)
	}
}

// clearStaleSelections resets presence selections of deleted placements and
// resends the presence state when any changed.
func (h *Hub) clearStaleSelections(session *Session) {
	fp, _ := session.state.Floorplan()
	changed := session.presence.ClearSelections(func(id string) bool {
		_, ok := fp.FindPlacement(id)
		return ok
	})
	if len(changed) == 0 {
		return
	}
	if stateMsg := session.presence.StateMessage(); stateMsg != nil {
		h.broadcastToSession(session.projectID, stateMsg, "")
	}
}

func (h *Hub) session(projectID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[projectID]
}

// broadcastToSession sends under the read lock so removeClient cannot close a
// send channel mid-broadcast. Send never blocks.
func (h *Hub) broadcastToSession(projectID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[projectID]
	if !ok {
		return
	}
	for _, c := range session.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}

func (h *Hub) loadFloorplan(projectID string) (floorplan.FloorplanWithStairs, error) {
	if h.load == nil {
		return floorplan.NewEmpty(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return h.load(ctx, projectID)
}

func (h *Hub) saveDirty() {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		h.saveSession(s)
	}
}

func (h *Hub) saveSession(s *Session) {
	if h.save == nil {
		return
	}
	fp, ok := s.state.TakeDirty()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := h.save(ctx, s.projectID, fp); err != nil {
		s.state.MarkDirty()
		metrics.ObserveSnapshotSave(metrics.ResultError)
		slog.Error("save floorplan", "error", err, "project", s.projectID)
		return
	}
	metrics.ObserveSnapshotSave(metrics.ResultSuccess)
	slog.Info("floorplan saved", "project", s.projectID, "placements", len(fp.Placements))
}

// reportCountsLocked publishes session and client gauges (caller must hold
// lock).
func (h *Hub) reportCountsLocked() {
	clients := 0
	for _, s := range h.sessions {
		clients += len(s.clients)
	}
	metrics.SetSessions(len(h.sessions))
	metrics.SetClients(clients)
}

func newMessage(msgType, userID string, payload interface{}) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", msgType, "error", err)
		data = []byte("null")
	}
	return &Message{Type: msgType, UserID: userID, Payload: data}
}

func errorMessage(text string) *Message {
	return newMessage(TypeError, "", ErrorPayload{Message: text})
}
