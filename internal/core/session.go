package core

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
)

// Role is the privilege level fixed at registration.
type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// Session is one registered, connected identity.
type Session struct {
	ID          string
	DisplayName string
	Role        Role

	// CurrentRoom is empty while registered but not joined. It is mutated
	// only by the Catalog so membership and CurrentRoom never diverge.
	CurrentRoom string

	// Client is a non-owning handle used only for addressed sends.
	Client *Client
}

// Member is the identity pair exposed to other sessions.
type Member struct {
	ID          string
	DisplayName string
}

// Member returns the session's public identity.
func (s *Session) Member() Member {
	return Member{ID: s.ID, DisplayName: s.DisplayName}
}

// SessionStore holds one record per connected identity. It carries no lock:
// all access is serialized through the hub loop.
type SessionStore struct {
	adminSecret []byte
	byID        map[string]*Session
	byName      map[string]*Session
}

// NewSessionStore creates an empty store. Sessions registering with a role
// token equal to adminSecret become admins; an empty secret disables the
// admin role entirely.
func NewSessionStore(adminSecret string) *SessionStore {
	return &SessionStore{
		adminSecret: []byte(adminSecret),
		byID:        make(map[string]*Session),
		byName:      make(map[string]*Session),
	}
}

// Register creates a session for the given display name. The name must be
// non-blank and unique among currently registered sessions. An unknown role
// token is not an error: the session simply comes out standard.
func (s *SessionStore) Register(displayName, roleToken string, client *Client) (*Session, *CoreError) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, coreError(ErrCodeValidation, "display name is required")
	}
	if _, taken := s.byName[displayName]; taken {
		return nil, coreError(ErrCodeConflict, "display name "+displayName+" is already taken")
	}

	sess := &Session{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Role:        s.roleFor(roleToken),
		Client:      client,
	}
	s.byID[sess.ID] = sess
	s.byName[displayName] = sess
	return sess, nil
}

// Find returns the session with the given id, or nil.
func (s *SessionStore) Find(id string) *Session {
	return s.byID[id]
}

// Remove deletes and returns the session so the caller can run cascade
// cleanup. Returns nil if the id is unknown.
func (s *SessionStore) Remove(id string) *Session {
	sess, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	delete(s.byName, sess.DisplayName)
	return sess
}

// ForEach calls fn for every registered session.
func (s *SessionStore) ForEach(fn func(*Session)) {
	for _, sess := range s.byID {
		fn(sess)
	}
}

// Len returns the number of registered sessions.
func (s *SessionStore) Len() int {
	return len(s.byID)
}

func (s *SessionStore) roleFor(token string) Role {
	if len(s.adminSecret) == 0 || token == "" {
		return RoleStandard
	}
	if subtle.ConstantTimeCompare(s.adminSecret, []byte(token)) == 1 {
		return RoleAdmin
	}
	return RoleStandard
}
