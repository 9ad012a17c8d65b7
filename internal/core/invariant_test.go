package core

import (
	"testing"

	"pgregory.net/rapid"
)

// checkRegistryConsistent asserts the bidirectional membership invariant:
// every room member's CurrentRoom points back at the room, and every session
// claiming a room is listed in it.
func checkRegistryConsistent(t *rapid.T, sessions *SessionStore, catalog *Catalog) {
	for name, room := range catalog.rooms {
		for id := range room.members {
			sess := sessions.Find(id)
			if sess == nil {
				t.Fatalf("room %q lists unknown session %q", name, id)
			}
			if sess.CurrentRoom != name {
				t.Fatalf("room %q lists %q but its CurrentRoom is %q", name, id, sess.CurrentRoom)
			}
		}
	}
	sessions.ForEach(func(sess *Session) {
		if sess.CurrentRoom == "" {
			return
		}
		room := catalog.Get(sess.CurrentRoom)
		if room == nil {
			t.Fatalf("session %q claims missing room %q", sess.ID, sess.CurrentRoom)
		}
		if _, ok := room.members[sess.ID]; !ok {
			t.Fatalf("session %q claims room %q but is not a member", sess.ID, sess.CurrentRoom)
		}
	})
}

func TestRegistryInvariantUnderRandomOps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sessions := NewSessionStore("secret")
		catalog := NewCatalog(sessions, FallbackRoom)

		var ids []string
		pickID := func() string {
			if len(ids) == 0 {
				return "missing"
			}
			return ids[rapid.IntRange(0, len(ids)-1).Draw(t, "id_index")]
		}
		pickRoom := func() string {
			names := catalog.Names()
			return names[rapid.IntRange(0, len(names)-1).Draw(t, "room_index")]
		}

		numOps := rapid.IntRange(1, 80).Draw(t, "num_ops")
		for i := 0; i < numOps; i++ {
			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0: // register
				name := rapid.StringMatching(`[a-z]{1,6}`).Draw(t, "name")
				if sess, cerr := sessions.Register(name, "", NewClient()); cerr == nil {
					ids = append(ids, sess.ID)
				}
			case 1: // join
				catalog.Join(pickRoom(), pickID())
			case 2: // create
				catalog.Create(rapid.StringMatching(`[A-Z][a-z]{0,4}`).Draw(t, "room"))
			case 3: // delete + migrate, the way the router does it
				if evicted, cerr := catalog.Delete(pickRoom()); cerr == nil {
					for _, id := range evicted {
						catalog.Join(catalog.Fallback(), id)
					}
				}
			case 4: // rename
				catalog.Rename(pickRoom(), rapid.StringMatching(`[A-Z][a-z]{0,4}`).Draw(t, "new_name"))
			case 5: // disconnect
				id := pickID()
				catalog.Leave(id)
				if sessions.Remove(id) != nil {
					for j, known := range ids {
						if known == id {
							ids = append(ids[:j], ids[j+1:]...)
							break
						}
					}
				}
			}
			checkRegistryConsistent(t, sessions, catalog)
		}
	})
}
