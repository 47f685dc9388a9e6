package sync

import (
	"Howler/services/game"
	"Howler/services/redis"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SyncManager moves finished-game state from the live layer into
// PostgreSQL and cleans up the Redis read model afterwards. It
// implements the coordinator's Archiver boundary.
type SyncManager struct {
	redisClient *redis.RedisClient
	db          *sql.DB
}

// NewSyncManager creates a new instance of the synchronization manager
func NewSyncManager(redisClient *redis.RedisClient, db *sql.DB) *SyncManager {
	return &SyncManager{
		redisClient: redisClient,
		db:          db,
	}
}

// ArchiveGame writes the outcome of a finished game and its
// participants in one transaction, then drops the room's Redis keys.
func (sm *SyncManager) ArchiveGame(roomCode string, winner string, rounds int, players []*game.Player) error {
	roles := make([]string, 0, len(players))
	for _, p := range players {
		roles = append(roles, string(p.Role))
	}
	roleSetup, err := json.Marshal(roles)
	if err != nil {
		return fmt.Errorf("error marshaling role setup: %v", err)
	}

	// Start transaction
	tx, err := sm.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %v", err)
	}
	defer tx.Rollback()

	recordQuery := `
		INSERT INTO game_records (room_code, winner, rounds, role_setup, finished_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id
	`

	var recordID uint
	if err := tx.QueryRow(recordQuery, roomCode, winner, rounds, roleSetup).Scan(&recordID); err != nil {
		return fmt.Errorf("error inserting game record: %v", err)
	}

	participantQuery := `
		INSERT INTO game_participants (game_record_id, player_id, username, role, survived)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, p := range players {
		if _, err := tx.Exec(participantQuery, recordID, p.ID, p.Username, string(p.Role), p.Alive); err != nil {
			return fmt.Errorf("error inserting participant %s: %v", p.ID, err)
		}
	}

	// Confirm transaction
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %v", err)
	}

	return sm.CleanupGameData(roomCode)
}

// CleanupGameData removes the finished room's Redis read model. When no
// Redis client is wired the cleanup is a no-op.
func (sm *SyncManager) CleanupGameData(roomCode string) error {
	if sm.redisClient == nil {
		return nil
	}
	if err := sm.redisClient.DeleteRoomSnapshot(roomCode); err != nil {
		return fmt.Errorf("error cleaning up room data: %v", err)
	}
	return nil
}
