package core

import (
	"sort"
	"strings"
)

// FallbackRoom always exists, cannot be deleted, and cannot be renamed away.
const FallbackRoom = "General"

// Room groups sessions subscribed to the same channel.
type Room struct {
	Name    string
	members map[string]struct{}
}

func newRoom(name string) *Room {
	return &Room{Name: name, members: make(map[string]struct{})}
}

// MemberIDs returns the ids of all joined sessions.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of joined sessions.
func (r *Room) Len() int {
	return len(r.members)
}

// RoomInfo is one entry of a room-list snapshot.
type RoomInfo struct {
	Name        string
	MemberCount int
}

// Catalog is the registry of named rooms. Like SessionStore it carries no
// lock; the hub loop is the single serialization point. Every mutation that
// touches membership also updates the affected sessions' CurrentRoom in the
// same step, so the two structures are never observably inconsistent.
type Catalog struct {
	fallback string
	rooms    map[string]*Room
	sessions *SessionStore
}

// NewCatalog creates a catalog holding only the fallback room.
func NewCatalog(sessions *SessionStore, fallback string) *Catalog {
	if fallback == "" {
		fallback = FallbackRoom
	}
	c := &Catalog{
		fallback: fallback,
		rooms:    make(map[string]*Room),
		sessions: sessions,
	}
	c.rooms[fallback] = newRoom(fallback)
	return c
}

// Fallback returns the name of the fallback room.
func (c *Catalog) Fallback() string {
	return c.fallback
}

// Seed creates empty rooms for every given name that does not exist yet.
// Used at startup for defaults and names reloaded from persistence;
// membership is transient connection state and is never restored.
func (c *Catalog) Seed(names []string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, exists := c.rooms[name]; !exists {
			c.rooms[name] = newRoom(name)
		}
	}
}

// Create adds an empty room. Blank names and duplicates are rejected.
func (c *Catalog) Create(name string) (*Room, *CoreError) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, coreError(ErrCodeValidation, "room name is required")
	}
	if _, exists := c.rooms[name]; exists {
		return nil, coreError(ErrCodeConflict, "room "+name+" already exists")
	}
	room := newRoom(name)
	c.rooms[name] = room
	return room, nil
}

// Delete removes a room and returns the evicted member ids so the caller
// can migrate them. The evicted sessions' CurrentRoom is cleared as part of
// the same step. Deleting the fallback room is forbidden.
func (c *Catalog) Delete(name string) ([]string, *CoreError) {
	if name == c.fallback {
		return nil, coreError(ErrCodeForbidden, "room "+c.fallback+" cannot be deleted")
	}
	room, ok := c.rooms[name]
	if !ok {
		return nil, coreError(ErrCodeNotFound, "room "+name+" not found")
	}

	evicted := room.MemberIDs()
	for _, id := range evicted {
		if sess := c.sessions.Find(id); sess != nil {
			sess.CurrentRoom = ""
		}
	}
	delete(c.rooms, name)
	return evicted, nil
}

// Rename moves a room to a new key, carrying membership unchanged and
// updating every member's CurrentRoom atomically. Renaming the fallback room
// to anything else is forbidden.
func (c *Catalog) Rename(oldName, newName string) (*Room, *CoreError) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, coreError(ErrCodeValidation, "room name is required")
	}
	if oldName == c.fallback && newName != c.fallback {
		return nil, coreError(ErrCodeForbidden, "room "+c.fallback+" cannot be renamed")
	}
	room, ok := c.rooms[oldName]
	if !ok {
		return nil, coreError(ErrCodeNotFound, "room "+oldName+" not found")
	}
	if _, exists := c.rooms[newName]; exists {
		return nil, coreError(ErrCodeConflict, "room "+newName+" already exists")
	}

	delete(c.rooms, oldName)
	room.Name = newName
	c.rooms[newName] = room
	for id := range room.members {
		if sess := c.sessions.Find(id); sess != nil {
			sess.CurrentRoom = newName
		}
	}
	return room, nil
}

// Join moves a session into the named room, removing it from its previous
// room first. It returns the previous room's name and remaining member ids
// so the caller can notify them. A join to the current room is an idempotent
// no-op reported as ErrCodeAlreadyInRoom.
func (c *Catalog) Join(name, sessionID string) (prev string, remaining []string, cerr *CoreError) {
	room, ok := c.rooms[name]
	if !ok {
		return "", nil, coreError(ErrCodeNotFound, "room "+name+" not found")
	}
	sess := c.sessions.Find(sessionID)
	if sess == nil {
		return "", nil, coreError(ErrCodeNotFound, "session not found")
	}
	if sess.CurrentRoom == name {
		return "", nil, coreError(ErrCodeAlreadyInRoom, "already in room "+name)
	}

	if sess.CurrentRoom != "" {
		if old, ok := c.rooms[sess.CurrentRoom]; ok {
			delete(old.members, sessionID)
			prev = old.Name
			remaining = old.MemberIDs()
		}
	}
	room.members[sessionID] = struct{}{}
	sess.CurrentRoom = name
	return prev, remaining, nil
}

// Leave removes the session from whatever room it is in. Used on disconnect;
// leaving while not in a room is a no-op.
func (c *Catalog) Leave(sessionID string) (room string, remaining []string, ok bool) {
	sess := c.sessions.Find(sessionID)
	if sess == nil || sess.CurrentRoom == "" {
		return "", nil, false
	}
	r, exists := c.rooms[sess.CurrentRoom]
	if !exists {
		sess.CurrentRoom = ""
		return "", nil, false
	}
	delete(r.members, sessionID)
	sess.CurrentRoom = ""
	return r.Name, r.MemberIDs(), true
}

// Get returns the room with the given name, or nil.
func (c *Catalog) Get(name string) *Room {
	return c.rooms[name]
}

// Names returns all room names, fallback first then sorted. This is the
// order persisted and broadcast.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.rooms))
	for name := range c.rooms {
		if name != c.fallback {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{c.fallback}, names...)
}

// Snapshot returns the ordered (name, memberCount) sequence for room-list
// broadcasts.
func (c *Catalog) Snapshot() []RoomInfo {
	names := c.Names()
	infos := make([]RoomInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, RoomInfo{Name: name, MemberCount: c.rooms[name].Len()})
	}
	return infos
}
