package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay-server/internal/store"
)

const saveTimeout = 5 * time.Second

// Hub is the single serialization point for all registry state. Connections
// feed commands in through their Client; the hub goroutine routes them,
// mutates the session store and room catalog, and fans events back out.
// Every send to a client is best-effort: slow consumers lose events rather
// than blocking the loop.
type Hub struct {
	sessions *SessionStore
	catalog  *Catalog
	store    store.RoomStore
	log      zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	snapshots  chan chan []RoomInfo

	// clients tracks every live connection; the session is nil until the
	// connection registers an identity.
	clients map[*Client]*Session
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub over the given registries. The room store may be nil
// (snapshots are then skipped); a nil logger disables logging.
func NewHub(sessions *SessionStore, catalog *Catalog, st store.RoomStore, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		sessions:   sessions,
		catalog:    catalog,
		store:      st,
		log:        *logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand),
		snapshots:  make(chan chan []RoomInfo),
		clients:    make(map[*Client]*Session),
	}
}

// RegisterClient hands a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient runs cascade cleanup for a dropped connection. Calling it
// twice is a no-op.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-c.done:
	}
}

// Rooms returns the current room-list snapshot, serialized through the loop.
func (h *Hub) Rooms(ctx context.Context) ([]RoomInfo, error) {
	reply := make(chan []RoomInfo, 1)
	select {
	case h.snapshots <- reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case infos := <-reply:
		return infos, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run processes commands until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = nil
			go h.forward(ctx, c)
		case c := <-h.unregister:
			h.disconnect(c)
		case cc := <-h.commands:
			h.route(cc.client, cc.cmd)
		case reply := <-h.snapshots:
			reply <- h.catalog.Snapshot()
		case <-ctx.Done():
			for c := range h.clients {
				close(c.done)
			}
			return
		}
	}
}

// forward pumps one client's command channel into the central loop.
func (h *Hub) forward(ctx context.Context, c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) route(c *Client, cmd *Command) {
	sess, tracked := h.clients[c]
	if !tracked {
		return
	}

	if sess == nil {
		if cmd.Kind != CommandRegister {
			h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeNotRegistered, "not registered")})
			return
		}
		h.handleRegister(c, cmd)
		return
	}

	switch cmd.Kind {
	case CommandRegister:
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeConflict, "already registered")})
	case CommandJoinRoom:
		h.handleJoin(sess, cmd.Room)
	case CommandTextMessage:
		h.handleText(sess, cmd.Text)
	case CommandCreateRoom:
		h.handleCreate(sess, cmd.Room)
	case CommandDeleteRoom:
		h.handleDelete(sess, cmd.Room)
	case CommandRenameRoom:
		h.handleRename(sess, cmd.Room, cmd.NewName)
	case CommandSignal:
		h.handleSignal(sess, cmd.Signal)
	}
}

func (h *Hub) handleRegister(c *Client, cmd *Command) {
	sess, cerr := h.sessions.Register(cmd.DisplayName, cmd.RoleToken, c)
	if cerr != nil {
		h.send(c, &Event{Kind: EventError, Error: cerr})
		return
	}
	h.clients[c] = sess

	h.log.Info().
		Str("session_id", sess.ID).
		Str("display_name", sess.DisplayName).
		Str("role", string(sess.Role)).
		Msg("session registered")

	h.send(c, &Event{
		Kind:   EventRegistered,
		Member: sess.Member(),
		Role:   sess.Role,
		Info:   "registered as " + sess.DisplayName,
	})
	h.send(c, h.roomListEvent())
}

func (h *Hub) handleJoin(sess *Session, room string) {
	prev, remaining, cerr := h.catalog.Join(room, sess.ID)
	if cerr != nil {
		if cerr.Code == ErrCodeAlreadyInRoom {
			h.send(sess.Client, &Event{Kind: EventInfo, Info: cerr.Message})
		} else {
			h.send(sess.Client, &Event{Kind: EventError, Error: cerr})
		}
		return
	}

	member := sess.Member()
	if prev != "" {
		h.notifySessions(remaining, &Event{Kind: EventUserLeft, Room: prev, Member: member})
	}
	h.multicastRoom(room, &Event{Kind: EventUserJoined, Room: room, Member: member}, sess)
	h.send(sess.Client, &Event{Kind: EventJoinedRoom, Room: room, Members: h.roster(room)})
	h.broadcastAll(h.roomListEvent())

	h.log.Debug().Str("session_id", sess.ID).Str("room", room).Msg("session joined room")
}

func (h *Hub) handleText(sess *Session, text string) {
	if sess.CurrentRoom == "" {
		h.send(sess.Client, &Event{Kind: EventError, Error: coreError(ErrCodeNotInRoom, "join a room first")})
		return
	}
	if strings.TrimSpace(text) == "" {
		h.send(sess.Client, &Event{Kind: EventError, Error: coreError(ErrCodeValidation, "message content is required")})
		return
	}
	h.multicastRoom(sess.CurrentRoom, &Event{
		Kind:   EventTextMessage,
		Room:   sess.CurrentRoom,
		Member: sess.Member(),
		Text:   text,
		At:     time.Now(),
	}, nil)
}

func (h *Hub) handleCreate(sess *Session, room string) {
	if cerr := h.requireAdmin(sess); cerr != nil {
		h.send(sess.Client, &Event{Kind: EventError, Error: cerr})
		return
	}
	created, cerr := h.catalog.Create(room)
	if cerr != nil {
		h.send(sess.Client, &Event{Kind: EventError, Error: cerr})
		return
	}

	h.log.Info().Str("room", created.Name).Str("by", sess.ID).Msg("room created")
	h.send(sess.Client, &Event{Kind: EventInfo, Info: "room " + created.Name + " created"})
	h.broadcastAll(h.roomListEvent())
	h.persistRooms()
}

func (h *Hub) handleDelete(sess *Session, room string) {
	if cerr := h.requireAdmin(sess); cerr != nil {
		h.send(sess.Client, &Event{Kind: EventError, Error: cerr})
		return
	}
	evicted, cerr := h.catalog.Delete(room)
	if cerr != nil {
		h.send(sess.Client, &Event{Kind: EventError, Error: cerr})
		return
	}

	// Members are migrated to the fallback room one by one, so sessions
	// already moved see later migrants arrive like any other join.
	fallback := h.catalog.Fallback()
	for _, id := range evicted {
		moved := h.sessions.Find(id)
		if moved == nil {
			continue
		}
		if _, _, joinErr := h.catalog.Join(fallback, id); joinErr != nil {
			continue
		}
		h.send(moved.Client, &Event{
			Kind: EventInfo,
			Info: "room " + room + " was deleted, you were moved to " + fallback,
		})
		h.multicastRoom(fallback, &Event{Kind: EventUserJoined, Room: fallback, Member: moved.Member()}, moved)
		h.send(moved.Client, &Event{Kind: EventJoinedRoom, Room: fallback, Members: h.roster(fallback)})
	}

	h.log.Info().Str("room", room).Int("migrated", len(evicted)).Str("by", sess.ID).Msg("room deleted")
	h.send(sess.Client, &Event{Kind: EventInfo, Info: "room " + room + " deleted"})
	h.broadcastAll(h.roomListEvent())
	h.persistRooms()
}

func (h *Hub) handleRename(sess *Session, oldName, newName string) {
	if cerr := h.requireAdmin(sess); cerr != nil {
		h.send(sess.Client, &Event{Kind: EventError, Error: cerr})
		return
	}
	renamed, cerr := h.catalog.Rename(oldName, newName)
	if cerr != nil {
		h.send(sess.Client, &Event{Kind: EventError, Error: cerr})
		return
	}

	notice := &Event{
		Kind:    EventRoomRenamed,
		Room:    oldName,
		NewName: renamed.Name,
		Info:    "room " + oldName + " is now " + renamed.Name,
	}
	h.notifySessions(renamed.MemberIDs(), notice)

	h.log.Info().Str("old", oldName).Str("new", renamed.Name).Str("by", sess.ID).Msg("room renamed")
	h.broadcastAll(h.roomListEvent())
	h.persistRooms()
}

func (h *Hub) handleSignal(sess *Session, sig *Signal) {
	if sig == nil {
		return
	}
	target := h.sessions.Find(sig.TargetID)
	if target == nil {
		// The sender already committed to sending; negotiation failures
		// surface client-side through ICE state changes.
		h.log.Debug().Str("target", sig.TargetID).Msg("signal target gone, dropping")
		return
	}
	h.send(target.Client, &Event{Kind: EventSignal, From: sess.ID, Signal: sig})
}

func (h *Hub) disconnect(c *Client) {
	sess, tracked := h.clients[c]
	if !tracked {
		return
	}
	delete(h.clients, c)
	close(c.done)

	if sess == nil {
		return
	}
	member := sess.Member()
	room, remaining, wasInRoom := h.catalog.Leave(sess.ID)
	h.sessions.Remove(sess.ID)

	h.log.Info().Str("session_id", sess.ID).Str("display_name", sess.DisplayName).Msg("session disconnected")

	if wasInRoom {
		h.notifySessions(remaining, &Event{Kind: EventUserLeft, Room: room, Member: member})
		h.broadcastAll(h.roomListEvent())
	}
}

func (h *Hub) requireAdmin(sess *Session) *CoreError {
	if sess.Role != RoleAdmin {
		return coreError(ErrCodeUnauthorized, "admin role required")
	}
	return nil
}

func (h *Hub) roomListEvent() *Event {
	return &Event{Kind: EventRoomList, Rooms: h.catalog.Snapshot()}
}

func (h *Hub) roster(room string) []Member {
	r := h.catalog.Get(room)
	if r == nil {
		return nil
	}
	members := make([]Member, 0, r.Len())
	for _, id := range r.MemberIDs() {
		if sess := h.sessions.Find(id); sess != nil {
			members = append(members, sess.Member())
		}
	}
	return members
}

// send delivers an event to one client, dropping it if the consumer is slow.
func (h *Hub) send(c *Client, ev *Event) {
	if c == nil {
		return
	}
	select {
	case c.Events <- ev:
	default:
		h.log.Debug().Int("kind", int(ev.Kind)).Msg("slow consumer, event dropped")
	}
}

func (h *Hub) notifySessions(ids []string, ev *Event) {
	for _, id := range ids {
		if sess := h.sessions.Find(id); sess != nil {
			h.send(sess.Client, ev)
		}
	}
}

func (h *Hub) multicastRoom(room string, ev *Event, except *Session) {
	r := h.catalog.Get(room)
	if r == nil {
		return
	}
	for _, id := range r.MemberIDs() {
		sess := h.sessions.Find(id)
		if sess == nil || sess == except {
			continue
		}
		h.send(sess.Client, ev)
	}
}

func (h *Hub) broadcastAll(ev *Event) {
	h.sessions.ForEach(func(sess *Session) {
		h.send(sess.Client, ev)
	})
}

// persistRooms snapshots room names off the hub goroutine. Failures are
// logged and swallowed: the catalog in memory stays the source of truth.
func (h *Hub) persistRooms() {
	if h.store == nil {
		return
	}
	names := h.catalog.Names()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := h.store.SaveRoomNames(ctx, names); err != nil {
			h.log.Warn().Err(err).Msg("failed to persist room names")
		}
	}()
}
