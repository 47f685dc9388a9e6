package postgres

/*
 * 'GameParticipant' represents one player of an archived game,
 * including the role they held and whether they survived.
 */
type GameParticipant struct {
	// NOTE: composite primary key definition
	GameRecordID uint   `gorm:"primaryKey;not null"`
	PlayerID     string `gorm:"primaryKey;size:64;not null"`
	Username     string `gorm:"size:50;not null;index"`
	Role         string `gorm:"size:20;not null"`
	Survived     bool   `gorm:"default:false"`

	// Relationship with the archived game
	GameRecord GameRecord `gorm:"foreignKey:GameRecordID"`
}
