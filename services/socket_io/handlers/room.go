package handlers

import (
	"Howler/services/game"
	socketio_types "Howler/services/socket_io/types"
	socketio_utils "Howler/services/socket_io/utils"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// toInt converts a JSON-decoded number argument. socket.io delivers
// numbers as float64.
func toInt(v interface{}) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}

func HandleCreateRoom(registry *game.Registry, mirror game.StateMirror, client *socket.Socket,
	username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		playerID := string(client.Id())
		log.Printf("[ROOM] HandleCreateRoom started - Player: %s (%s), Args: %v", username, playerID, args)

		avatarKey := 0
		passcode := ""
		if len(args) > 0 {
			if options, ok := args[0].(map[string]interface{}); ok {
				avatarKey = toInt(options["avatar_key"])
				passcode, _ = options["passcode"].(string)
			}
		}

		room, err := registry.CreateRoom(playerID, avatarKey, username, passcode)
		if err != nil {
			log.Printf("[ROOM-ERROR] Could not create room for %s: %v", username, err)
			client.Emit("error", gin.H{"error": "Could not create the room"})
			return
		}

		client.Join(socket.Room(room.Code))
		if mirror != nil {
			mirror.SaveSnapshot(room, nil)
		}

		log.Printf("[ROOM-SUCCESS] Room %s created by %s", room.Code, username)
		client.Emit("room_created", gin.H{
			"room_code": room.Code,
			"host_id":   room.HostID,
			"locked":    passcode != "",
		})
	}
}

func HandleJoinRoom(registry *game.Registry, mirror game.StateMirror, client *socket.Socket,
	username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		playerID := string(client.Id())
		log.Printf("[JOIN] HandleJoinRoom started - Player: %s (%s), Args: %v", username, playerID, args)

		if len(args) < 1 {
			log.Printf("[JOIN-ERROR] Missing room code from %s", username)
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}
		roomCode, _ := args[0].(string)
		avatarKey := 0
		passcode := ""
		if len(args) > 1 {
			if options, ok := args[1].(map[string]interface{}); ok {
				avatarKey = toInt(options["avatar_key"])
				passcode, _ = options["passcode"].(string)
			}
		}

		player := &game.Player{ID: playerID, Username: username, AvatarKey: avatarKey}
		err := registry.AddPlayer(roomCode, player, passcode)
		switch err {
		case nil:
		case game.ErrRoomNotFound:
			client.Emit("error", gin.H{"error": "Room does not exist"})
			return
		case game.ErrBadPasscode:
			client.Emit("error", gin.H{"error": "Wrong passcode"})
			return
		case game.ErrDuplicatePlayer:
			client.Emit("error", gin.H{"error": "You are already in this room"})
			return
		default:
			client.Emit("error", gin.H{"error": "Could not join the room"})
			return
		}

		room, _ := registry.Room(roomCode)
		client.Join(socket.Room(roomCode))
		if mirror != nil {
			mirror.SaveSnapshot(room, nil)
		}

		log.Printf("[JOIN-SUCCESS] Player %s (%s) asked to join room %s", username, playerID, roomCode)
		client.Emit("room_joined", gin.H{
			"room_code": roomCode,
			"status":    game.StatusPending,
			"message":   "Waiting for the host to approve you.",
		})

		// The host decides on pending joins.
		if host, exists := sio.GetConnection(room.HostID); exists {
			host.Emit("join_requested", gin.H{
				"room_code":  roomCode,
				"player_id":  playerID,
				"username":   username,
				"avatar_key": avatarKey,
			})
		}
		sio.Sio_server.To(socket.Room(roomCode)).Emit("players_updated", gin.H{
			"room_code": roomCode,
			"players":   socketio_utils.PlayersRoster(room),
		})
	}
}

func HandleApprovePlayer(registry *game.Registry, mirror game.StateMirror, client *socket.Socket,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return decidePendingPlayer(registry, mirror, client, sio, true)
}

func HandleRejectPlayer(registry *game.Registry, mirror game.StateMirror, client *socket.Socket,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return decidePendingPlayer(registry, mirror, client, sio, false)
}

func decidePendingPlayer(registry *game.Registry, mirror game.StateMirror, client *socket.Socket,
	sio *socketio_types.SocketServer, approve bool) func(args ...interface{}) {
	return func(args ...interface{}) {
		hostID := string(client.Id())
		if len(args) < 2 {
			client.Emit("error", gin.H{"error": "Missing room code or player id"})
			return
		}
		roomCode, _ := args[0].(string)
		targetID, _ := args[1].(string)

		room, err := socketio_utils.ValidateRoomHost(registry, client, roomCode, hostID)
		if err != nil {
			return
		}

		var ok bool
		event := "join_rejected"
		if approve {
			ok = registry.ApprovePlayer(roomCode, targetID)
			event = "join_approved"
		} else {
			ok = registry.RejectPlayer(roomCode, targetID)
		}
		if !ok {
			log.Printf("[ROOM-ERROR] Player %s is not pending in room %s", targetID, roomCode)
			client.Emit("error", gin.H{"error": "Player is not pending approval"})
			return
		}

		if mirror != nil {
			mirror.SaveSnapshot(room, nil)
		}
		log.Printf("[ROOM] Host decision on %s in room %s: %s", targetID, roomCode, event)

		if target, exists := sio.GetConnection(targetID); exists {
			target.Emit(event, gin.H{"room_code": roomCode})
		}
		sio.Sio_server.To(socket.Room(roomCode)).Emit("players_updated", gin.H{
			"room_code": roomCode,
			"players":   socketio_utils.PlayersRoster(room),
		})
	}
}

// GetRoomInfo returns the public view of a room to the requesting
// client.
func GetRoomInfo(registry *game.Registry, client *socket.Socket) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) < 1 {
			client.Emit("error", gin.H{"error": "Missing room code"})
			return
		}
		roomCode, _ := args[0].(string)
		room, err := socketio_utils.ValidateRoom(registry, client, roomCode)
		if err != nil {
			return
		}
		client.Emit("room_info", gin.H{
			"room_code": room.Code,
			"host_id":   room.HostID,
			"phase":     room.Phase,
			"round":     room.Round,
			"players":   socketio_utils.PlayersRoster(room),
		})
	}
}
