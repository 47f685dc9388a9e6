package socketio_utils

import (
	"Howler/middleware"
	"Howler/services/game"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// Function that verifies a socket.io client connection using JWT
// authentication. The ticket binds a username; the socket id becomes
// the player id for everything that follows.
func VerifyPlayerConnection(client *socket.Socket) (success bool, username string) {
	authData, ok := client.Handshake().Auth.(map[string]interface{})
	if !ok {
		fmt.Println("No auth data provided in handshake!")
		client.Emit("error", gin.H{"error": "Authentication failed: missing auth data"})
		return false, ""
	}

	username, err := middleware.Socketio_JWT_decoder(authData)
	if err != nil {
		fmt.Println("Error decoding JWT:", err)
		client.Emit("error", gin.H{
			"error": "Authentication failed: invalid ticket. Remember to set it on the 'authorization' field with the 'Bearer ' prefix.",
		})
		return false, ""
	}

	return true, username
}

// ValidateRoom resolves a room code, emitting the error to the client
// when it does not exist.
func ValidateRoom(registry *game.Registry, client *socket.Socket, roomCode string) (*game.Room, error) {
	room, ok := registry.Room(roomCode)
	if !ok {
		log.Printf("[CHECK-ERROR] Room does not exist: %s", roomCode)
		client.Emit("error", gin.H{"error": "Room does not exist"})
		return nil, game.ErrRoomNotFound
	}
	return room, nil
}

// ValidateRoomHost resolves a room and checks the acting player is its
// host. Host-only operations go through here.
func ValidateRoomHost(registry *game.Registry, client *socket.Socket, roomCode, playerID string) (*game.Room, error) {
	room, err := ValidateRoom(registry, client, roomCode)
	if err != nil {
		return nil, err
	}
	if room.HostID != playerID {
		log.Printf("[CHECK-ERROR] Player %s is not the host of room %s", playerID, roomCode)
		client.Emit("error", gin.H{"error": "Only the host can do that"})
		return nil, fmt.Errorf("player %s is not the host", playerID)
	}
	return room, nil
}

// PlayersRoster builds the public player list broadcast with
// players_updated. Roles never leave the server through this payload.
func PlayersRoster(room *game.Room) []gin.H {
	roster := make([]gin.H, 0, len(room.Players))
	for _, p := range room.Players {
		roster = append(roster, gin.H{
			"id":         p.ID,
			"username":   p.Username,
			"avatar_key": p.AvatarKey,
			"status":     p.Status,
			"alive":      p.Alive,
			"ready":      p.Ready,
		})
	}
	return roster
}
