package redis

import (
	redis_models "Howler/models/redis"
	"Howler/services/game"
	"log"
	"time"
)

// RoomMirror adapts the Redis client to the coordinator's StateMirror
// boundary. Mirroring is best effort: a Redis hiccup is logged and the
// game goes on.
type RoomMirror struct {
	rc *RedisClient
}

func NewRoomMirror(rc *RedisClient) *RoomMirror {
	return &RoomMirror{rc: rc}
}

// SaveSnapshot writes the room's public read model. Phase and round
// come from the live session when one exists, the lobby room otherwise.
func (m *RoomMirror) SaveSnapshot(room *game.Room, state *game.GameState) {
	snapshot := &redis_models.RoomSnapshot{
		Code:      room.Code,
		HostId:    room.HostID,
		Phase:     string(room.Phase),
		Round:     room.Round,
		UpdatedAt: time.Now(),
	}
	if state != nil {
		snapshot.Phase = string(state.Phase)
		snapshot.Round = state.Round
	}
	for _, p := range room.Players {
		snapshot.Players = append(snapshot.Players, redis_models.RoomPlayer{
			Id:        p.ID,
			Username:  p.Username,
			AvatarKey: p.AvatarKey,
			Status:    string(p.Status),
			Alive:     p.Alive,
			Ready:     p.Ready,
		})
	}
	snapshot.PlayerCount = len(snapshot.Players)

	if err := m.rc.SaveRoomSnapshot(snapshot); err != nil {
		log.Printf("[MIRROR-ERROR] Could not save snapshot for room %s: %v", room.Code, err)
	}
}

// AppendAction mirrors one audit entry onto the room's action list.
func (m *RoomMirror) AppendAction(roomCode string, action game.RoomAction) {
	entry := &redis_models.RoomActionEntry{
		Type:      action.Type,
		Actor:     action.Actor,
		Target:    action.Target,
		Timestamp: action.Timestamp,
	}
	if err := m.rc.AppendRoomAction(roomCode, entry); err != nil {
		log.Printf("[MIRROR-ERROR] Could not append action for room %s: %v", roomCode, err)
	}
}
