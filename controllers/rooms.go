package controllers

import (
	"Howler/services/redis"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Get the public state of a room
// @Description Returns the room's read model: phase, round and the player roster. Role assignments are never included.
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer connection ticket"
// @Param room_code path string true "Room code"
// @Success 200 {object} redis.RoomSnapshot
// @Failure 404 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/rooms/{room_code} [get]
// @Security ApiKeyAuth
func GetRoomInfo(redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomCode := c.Param("room_code")

		snapshot, err := redisClient.GetRoomSnapshot(roomCode)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching room info"})
			return
		}
		if snapshot == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

// @Summary Get a room's audit trail
// @Description Returns the room's recorded actions in chronological order
// @Tags rooms
// @Produce json
// @Param Authorization header string true "Bearer connection ticket"
// @Param room_code path string true "Room code"
// @Success 200 {array} redis.RoomActionEntry
// @Failure 500 {object} object{error=string}
// @Router /auth/rooms/{room_code}/actions [get]
// @Security ApiKeyAuth
func GetRoomActions(redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomCode := c.Param("room_code")

		actions, err := redisClient.GetRoomActions(roomCode)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching room actions"})
			return
		}
		c.JSON(http.StatusOK, actions)
	}
}
