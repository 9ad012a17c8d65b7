package core

import (
	"context"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// ensureNoEvent fails if an event of the given kind arrives within the window.
func ensureNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, window time.Duration) {
	t.Helper()

	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

const testAdminSecret = "hub-test-secret"

// startHub runs a hub with an empty catalog (fallback room only) and no
// persistence. The hub stops when the test finishes.
func startHub(t *testing.T) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sessions := NewSessionStore(testAdminSecret)
	catalog := NewCatalog(sessions, FallbackRoom)
	hub := NewHub(sessions, catalog, nil, nil)
	go hub.Run(ctx)
	return hub
}

// connect registers a fresh client under the given name and returns it with
// the identity the hub assigned.
func connect(t *testing.T, hub *Hub, name, roleToken string) (*Client, Member) {
	t.Helper()

	c := NewClient()
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandRegister, DisplayName: name, RoleToken: roleToken}
	ev := mustEvent(t, c.Events, EventRegistered)
	return c, ev.Member
}

func join(t *testing.T, c *Client, room string) *Event {
	t.Helper()

	c.Commands <- &Command{Kind: CommandJoinRoom, Room: room}
	return mustEvent(t, c.Events, EventJoinedRoom)
}

func roomCount(t *testing.T, hub *Hub, name string) (int, bool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	infos, err := hub.Rooms(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	for _, info := range infos {
		if info.Name == name {
			return info.MemberCount, true
		}
	}
	return 0, false
}
