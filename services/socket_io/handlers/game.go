package handlers

import (
	"Howler/services/game"
	socketio_types "Howler/services/socket_io/types"
	socketio_utils "Howler/services/socket_io/utils"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// GMRoom is the narration channel bound to a room. Only the host joins
// it, so GM-only events never reach the players.
func GMRoom(roomCode string) string {
	return "gm_" + roomCode
}

// HandleConnectGM joins the host to the room's private narration
// channel.
func HandleConnectGM(registry *game.Registry, coordinator *game.Coordinator,
	client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		hostID := string(client.Id())
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}
		roomCode, _ := args[0].(string)
		if _, err := socketio_utils.ValidateRoomHost(registry, client, roomCode, hostID); err != nil {
			return
		}

		gmRoom := GMRoom(roomCode)
		client.Join(socket.Room(gmRoom))
		coordinator.SetGMRoom(roomCode, gmRoom)
		log.Printf("[GM] Host %s connected to narration channel %s", hostID, gmRoom)
		client.Emit("gm_connected", gin.H{"gm_room": gmRoom})
	}
}

// HandleAssignRoles shuffles and deals the host's role list to the
// approved players. Each player learns only their own role.
func HandleAssignRoles(registry *game.Registry, mirror game.StateMirror, client *socket.Socket,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		hostID := string(client.Id())
		log.Printf("[ROLES] HandleAssignRoles started - Host: %s, Args: %v", hostID, args)

		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing room code or role list"})
			return
		}
		roomCode, _ := args[0].(string)
		rawRoles, ok := args[1].([]interface{})
		if !ok {
			client.Emit("error", gin.H{"error": "Role list must be an array"})
			return
		}

		room, err := socketio_utils.ValidateRoomHost(registry, client, roomCode, hostID)
		if err != nil {
			return
		}

		roles := make([]game.Role, 0, len(rawRoles))
		for _, raw := range rawRoles {
			name, _ := raw.(string)
			roles = append(roles, game.Role(name))
		}

		if !registry.AssignRoles(roomCode, roles) {
			log.Printf("[ROLES-ERROR] Invalid role assignment for room %s: %v", roomCode, roles)
			client.Emit("error", gin.H{"error": "Invalid role assignment: check the role names and the player count"})
			return
		}

		// Deal privately; the roster broadcast never carries roles.
		for _, p := range room.ApprovedPlayers() {
			if conn, exists := sio.GetConnection(p.ID); exists {
				conn.Emit("assigned_role", gin.H{"role": p.Role})
			}
		}
		if mirror != nil {
			mirror.SaveSnapshot(room, nil)
		}
		log.Printf("[ROLES-SUCCESS] Roles dealt in room %s", roomCode)
		sio.Sio_server.To(socket.Room(roomCode)).Emit("roles_assigned", gin.H{"room_code": roomCode})
	}
}

// HandlePlayerReady marks the player ready; when the last approved
// player readies up, the game session is created.
func HandlePlayerReady(registry *game.Registry, coordinator *game.Coordinator, mirror game.StateMirror,
	client *socket.Socket, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		playerID := string(client.Id())
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}
		roomCode, _ := args[0].(string)

		allReady, ok := registry.PlayerReady(roomCode, playerID)
		if !ok {
			client.Emit("error", gin.H{"error": "You are not an approved player of this room"})
			return
		}

		room, _ := registry.Room(roomCode)
		if mirror != nil {
			mirror.SaveSnapshot(room, nil)
		}
		sio.Sio_server.To(socket.Room(roomCode)).Emit("players_updated", gin.H{
			"room_code": roomCode,
			"players":   socketio_utils.PlayersRoster(room),
		})

		if !allReady {
			return
		}

		if err := coordinator.InitSession(roomCode, GMRoom(roomCode)); err != nil {
			log.Printf("[READY-ERROR] Could not init session for room %s: %v", roomCode, err)
			client.Emit("error", gin.H{"error": "Could not start the game session"})
			return
		}
		log.Printf("[READY] All players ready in room %s, session created", roomCode)
		sio.Sio_server.To(socket.Room(roomCode)).Emit("game_ready", gin.H{
			"room_code": roomCode,
			"message":   "Everyone is ready. The host can start the first night.",
		})
	}
}

// HandleAdvancePhase is the host's phase trigger.
func HandleAdvancePhase(registry *game.Registry, coordinator *game.Coordinator,
	client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		hostID := string(client.Id())
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}
		roomCode, _ := args[0].(string)
		if _, err := socketio_utils.ValidateRoomHost(registry, client, roomCode, hostID); err != nil {
			return
		}

		if err := coordinator.AdvancePhase(roomCode); err != nil {
			log.Printf("[PHASE-ERROR] Could not advance phase for room %s: %v", roomCode, err)
			client.Emit("error", gin.H{"error": err.Error()})
		}
	}
}
