// Package collab hosts shared canvas sessions over websockets. Each canvas
// ID gets a room holding one live canvas; the hub goroutine applies every
// request to it in arrival order and fans the resulting notifications out
// to the room's clients.
package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/skycanvas/internal/document"
	"github.com/inamate/skycanvas/internal/shape"
	"github.com/inamate/skycanvas/internal/viewer"
)

// ErrHubStopped is returned by calls made after Stop.
var ErrHubStopped = errors.New("hub stopped")

// Loader fetches the stored document of a canvas. It returns nil, nil for
// a canvas that has never been saved.
type Loader func(ctx context.Context, canvasID string) (*document.Document, error)

// Saver persists a canvas document.
type Saver func(ctx context.Context, canvasID string, doc *document.Document) error

type HubOptions struct {
	Registry *shape.Registry
	Viewer   viewer.Options
	Load     Loader
	Save     Saver
	// IOTimeout bounds each Load and Save call.
	IOTimeout time.Duration
}

type Room struct {
	canvasID string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	session  *Session
}

func NewRoom(canvasID string, session *Session) *Room {
	return &Room{
		canvasID: canvasID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		session:  session,
	}
}

type inbound struct {
	client *Client
	msg    *Message
}

type call struct {
	canvasID string
	fn       func(*Session)
	found    chan bool
}

type Hub struct {
	opts HubOptions

	mu    sync.RWMutex
	rooms map[string]*Room // canvasID -> room

	register   chan *Client
	unregister chan *Client
	incoming   chan inbound
	calls      chan call
	quit       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(opts HubOptions) *Hub {
	if opts.Registry == nil {
		opts.Registry = shape.NewRegistry()
	}
	if opts.IOTimeout <= 0 {
		opts.IOTimeout = 10 * time.Second
	}
	return &Hub{
		opts:       opts,
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan inbound, 64),
		calls:      make(chan call),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run processes hub traffic until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case in := <-h.incoming:
			h.handleMessage(in.client, in.msg)
		case c := <-h.calls:
			room, ok := h.room(c.canvasID)
			if ok {
				c.fn(room.session)
				h.flush(room)
			}
			c.found <- ok
		case <-h.quit:
			h.shutdown()
			return
		}
	}
}

// Stop saves every unsaved canvas, disconnects all clients and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Submit queues a client request for the hub goroutine.
func (h *Hub) Submit(client *Client, msg *Message) {
	select {
	case h.incoming <- inbound{client: client, msg: msg}:
	case <-h.done:
	}
}

// WithSession runs fn on the hub goroutine against the live session of
// canvasID. It reports false when no room is open for the canvas.
func (h *Hub) WithSession(ctx context.Context, canvasID string, fn func(*Session)) (bool, error) {
	c := call{canvasID: canvasID, fn: fn, found: make(chan bool, 1)}
	select {
	case h.calls <- c:
	case <-h.done:
		return false, ErrHubStopped
	case <-ctx.Done():
		return false, ctx.Err()
	}
	return <-c.found, nil
}

// RoomCount returns the number of open rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) room(canvasID string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[canvasID]
	return r, ok
}

func (h *Hub) openRoom(canvasID string) (*Room, error) {
	if room, ok := h.room(canvasID); ok {
		return room, nil
	}
	var doc *document.Document
	if h.opts.Load != nil {
		ctx, cancel := context.WithTimeout(context.Background(), h.opts.IOTimeout)
		d, err := h.opts.Load(ctx, canvasID)
		cancel()
		if err != nil {
			return nil, err
		}
		doc = d
	}
	session, err := NewSession(canvasID, h.opts.Registry, h.opts.Viewer, doc)
	if err != nil {
		return nil, err
	}
	room := NewRoom(canvasID, session)
	h.mu.Lock()
	h.rooms[canvasID] = room
	h.mu.Unlock()
	slog.Info("room opened", "canvas", canvasID, "objects", session.Canvas().Len())
	return room, nil
}

func (h *Hub) addClient(client *Client) {
	room, err := h.openRoom(client.CanvasID)
	if err != nil {
		slog.Error("open room", "canvas", client.CanvasID, "error", err)
		client.Send(errorMessage("join", err))
		close(client.send)
		return
	}
	room.clients[client.ClientID] = client

	if msg, err := room.session.Welcome(client); err == nil {
		client.Send(msg)
	}
	if msg, err := room.session.DocSync(); err != nil {
		slog.Error("snapshot for new client", "canvas", client.CanvasID, "error", err)
	} else {
		client.Send(msg)
	}
	// Send current presence state to new client
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}
	if msg, err := room.session.Render(); err == nil {
		client.Send(msg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg := &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}
	h.broadcastToRoom(room, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "canvas", client.CanvasID)
}

func (h *Hub) removeClient(client *Client) {
	room, ok := h.room(client.CanvasID)
	if !ok {
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}
	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.UserID)

	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		UserID: client.UserID,
	})
	leaveMsg := &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}
	h.broadcastToRoom(room, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "canvas", client.CanvasID)

	if len(room.clients) == 0 {
		h.closeRoom(room)
	}
}

func (h *Hub) closeRoom(room *Room) {
	h.save(room)
	room.session.Close()
	h.mu.Lock()
	delete(h.rooms, room.canvasID)
	h.mu.Unlock()
	slog.Info("room closed", "canvas", room.canvasID)
}

func (h *Hub) save(room *Room) {
	if h.opts.Save == nil || !room.session.Dirty() {
		return
	}
	doc, err := room.session.Document()
	if err != nil {
		slog.Error("snapshot canvas", "canvas", room.canvasID, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.IOTimeout)
	defer cancel()
	if err := h.opts.Save(ctx, room.canvasID, doc); err != nil {
		slog.Error("save canvas", "canvas", room.canvasID, "error", err)
		return
	}
	room.session.MarkSaved()
	slog.Info("canvas saved", "canvas", room.canvasID, "objects", len(doc.Objects))
}

func (h *Hub) shutdown() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()
	for _, room := range rooms {
		for id, c := range room.clients {
			delete(room.clients, id)
			close(c.send)
		}
		h.closeRoom(room)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room, ok := h.room(sender.CanvasID)
	if !ok {
		return
	}
	if _, ok := room.clients[sender.ClientID]; !ok {
		return
	}
	if msg.Type == TypePresenceUpdate {
		h.handlePresenceUpdate(room, sender, msg)
		return
	}

	reply, err := room.session.Handle(msg)
	if err != nil {
		slog.Warn("request failed", "type", msg.Type, "user", sender.UserID, "error", err)
		sender.Send(errorMessage(msg.Type, err))
	}
	if reply != nil {
		sender.Send(reply)
	}
	h.flush(room)
}

func (h *Hub) flush(room *Room) {
	for _, m := range room.session.Flush() {
		h.broadcastToRoom(room, m, "")
	}
}

func (h *Hub) handlePresenceUpdate(room *Room, sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName
	room.presence.Update(sender.UserID, &presence)

	outMsg := &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: encodePresence(&presence),
	}
	h.broadcastToRoom(room, outMsg, sender.ClientID)
}

func (h *Hub) broadcastToRoom(room *Room, msg *Message, excludeClientID string) {
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.Send(msg)
		}
	}
}

func errorMessage(request string, err error) *Message {
	msg, mErr := newMessage(TypeError, ErrorPayload{Request: request, Message: err.Error()})
	if mErr != nil {
		return &Message{Type: TypeError, Payload: json.RawMessage(`{}`)}
	}
	return msg
}
