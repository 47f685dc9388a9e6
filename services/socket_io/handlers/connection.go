package handlers

import (
	socketio_types "Howler/services/socket_io/types"

	"log"
)

// Function to handle socket.io client disconnections.
func HandleDisconnecting(playerID string, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] Player %s (%s) disconnecting", username, playerID)

		// The membership itself stays: a dropped connection during a game
		// must not mutate the session, and night steps force-resolve on
		// their timeout if the player never returns.
		sio.RemoveConnection(playerID)
		log.Printf("[DISCONNECT-DONE] Player disconnected: %s", playerID)
	}
}
