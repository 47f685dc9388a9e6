package postgres

import (
	"time"

	"gorm.io/datatypes"
)

/*
 * 'GameRecord' is the archived outcome of one finished game. It is
 * written once, when the session ends, and never updated.
 */
type GameRecord struct {
	ID         uint           `gorm:"primaryKey;autoIncrement"`
	RoomCode   string         `gorm:"size:10;not null;index:idx_game_records_room"`
	Winner     string         `gorm:"size:20;not null"`
	Rounds     int            `gorm:"default:0"`
	RoleSetup  datatypes.JSON `gorm:"type:jsonb;default:'[]'"` // dealt role multiset, e.g. ["werewolf","seer",...]
	FinishedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationship with the participants of the game
	Participants []*GameParticipant `gorm:"foreignKey:GameRecordID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
