package redis

import "time"

// RoomPlayer is the public view of one room member. Role assignments
// are secret and never reach the snapshot.
type RoomPlayer struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	AvatarKey int    `json:"avatar_key"`
	Status    string `json:"status"`
	Alive     bool   `json:"alive"`
	Ready     bool   `json:"ready"`
}

// RoomSnapshot is the read model of a live room, mirrored into Redis
// after every state change so the HTTP API can serve room info without
// touching the live session.
type RoomSnapshot struct {
	Code        string       `json:"code"`
	HostId      string       `json:"host_id"`
	Phase       string       `json:"phase"`
	Round       int          `json:"round"`
	PlayerCount int          `json:"player_count"`
	Players     []RoomPlayer `json:"players"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
