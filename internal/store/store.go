// Package store defines the persistence boundary of the server. Only room
// identities survive a restart: membership is transient connection state and
// every room comes back empty after a reload.
package store

import "context"

// RoomStore persists the ordered set of room names.
type RoomStore interface {
	// SaveRoomNames overwrites the snapshot with the given names.
	SaveRoomNames(ctx context.Context, names []string) error

	// LoadRoomNames returns previously saved names. When no snapshot
	// exists, or it cannot be read, it returns the configured default set
	// (along with the read error, which callers may log and ignore).
	LoadRoomNames(ctx context.Context) ([]string, error)

	// Close releases the underlying storage.
	Close() error
}
