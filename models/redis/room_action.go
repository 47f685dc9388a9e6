package redis

import "time"

// RoomActionEntry is one entry of a room's audit trail, mirrored as an
// append-only Redis list.
type RoomActionEntry struct {
	Type      string    `json:"type"`
	Actor     string    `json:"actor,omitempty"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
