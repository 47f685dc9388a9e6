package handlers

import (
	"Howler/services/game"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// parseNightAction maps a client's role_action payload onto the typed
// action for that role.
func parseNightAction(payload map[string]interface{}) (game.NightAction, bool) {
	role, _ := payload["role"].(string)
	targetID, _ := payload["target_id"].(string)

	switch game.Role(role) {
	case game.RoleWerewolf:
		return game.WerewolfVote{TargetID: targetID}, true
	case game.RoleSeer:
		return game.SeerCheck{TargetID: targetID}, true
	case game.RoleWitch:
		heal, _ := payload["heal"].(bool)
		poisonTargetID, _ := payload["poison_target_id"].(string)
		return game.WitchAction{Heal: heal, PoisonTargetID: poisonTargetID}, true
	case game.RoleBodyguard:
		return game.BodyguardProtect{TargetID: targetID}, true
	case game.RoleHunter:
		return game.HunterShot{TargetID: targetID}, true
	}
	return nil, false
}

// HandleNightAction feeds a player's night response into the room's
// open barrier. Out-of-turn and duplicate submissions are acknowledged
// as ignored rather than erroring, so retransmissions stay quiet.
func HandleNightAction(coordinator *game.Coordinator, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		playerID := string(client.Id())
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing room code or action payload"})
			return
		}
		roomCode, _ := args[0].(string)
		payload, ok := args[1].(map[string]interface{})
		if !ok {
			client.Emit("error", gin.H{"error": "Action payload must be an object"})
			return
		}

		action, ok := parseNightAction(payload)
		if !ok {
			log.Printf("[NIGHT-ERROR] Unknown role action from %s in room %s: %v", playerID, roomCode, payload)
			client.Emit("error", gin.H{"error": "Unknown role action"})
			return
		}

		accepted, err := coordinator.SubmitNightAction(roomCode, playerID, action)
		if err != nil {
			client.Emit("error", gin.H{"error": "No running game in this room"})
			return
		}
		if !accepted {
			log.Printf("[NIGHT] Ignored action from %s in room %s (closed or duplicate)", playerID, roomCode)
		}
		client.Emit("night_action_ack", gin.H{
			"room_code": roomCode,
			"accepted":  accepted,
		})
	}
}
