package controllers

import (
	models "Howler/models/postgres"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary List the archived games of a room
// @Description Returns the finished games recorded under a room code, participants included. Roles are public once a game has ended.
// @Tags records
// @Produce json
// @Param Authorization header string true "Bearer connection ticket"
// @Param room_code path string true "Room code"
// @Success 200 {array} postgres.GameRecord
// @Failure 500 {object} object{error=string}
// @Router /auth/records/{room_code} [get]
// @Security ApiKeyAuth
func GetGameRecords(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomCode := c.Param("room_code")

		var records []models.GameRecord
		result := db.Preload("Participants").
			Where("room_code = ?", roomCode).
			Order("finished_at DESC").
			Find(&records)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching game records"})
			return
		}
		c.JSON(http.StatusOK, records)
	}
}
