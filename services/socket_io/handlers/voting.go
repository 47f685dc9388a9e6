package handlers

import (
	"Howler/services/game"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleCastVote records a ballot during the voting window. An empty
// target id is an abstention; it marks the voter as having voted but
// elects nobody.
func HandleCastVote(coordinator *game.Coordinator, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		playerID := string(client.Id())
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}
		roomCode, _ := args[0].(string)
		targetID := ""
		if len(args) > 1 {
			targetID, _ = args[1].(string)
		}

		accepted, err := coordinator.SubmitVote(roomCode, playerID, targetID)
		switch err {
		case nil:
		case game.ErrGameStateNotFound:
			client.Emit("error", gin.H{"error": "No running game in this room"})
			return
		case game.ErrWrongPhase:
			client.Emit("error", gin.H{"error": "Voting is not open"})
			return
		default:
			client.Emit("error", gin.H{"error": "Could not record the vote"})
			return
		}

		if !accepted {
			log.Printf("[VOTING] Ignored ballot from %s in room %s (dead or duplicate)", playerID, roomCode)
		}
		client.Emit("vote_ack", gin.H{
			"room_code": roomCode,
			"accepted":  accepted,
		})
	}
}
