package socket_io

import (
	socketio_types "Howler/services/socket_io/types"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// SioBroadcaster routes the coordinator's outbound events through the
// socket.io server. Room events hit every connection joined to the
// room (the GM narration room included, it is just another room);
// player events resolve through the connection map.
type SioBroadcaster struct {
	sio *socketio_types.SocketServer
}

func NewSioBroadcaster(sio *socketio_types.SocketServer) *SioBroadcaster {
	return &SioBroadcaster{sio: sio}
}

func (b *SioBroadcaster) ToRoom(roomCode string, event string, payload gin.H) {
	b.sio.Sio_server.To(socket.Room(roomCode)).Emit(event, payload)
}

func (b *SioBroadcaster) ToPlayer(playerID string, event string, payload gin.H) {
	if client, exists := b.sio.GetConnection(playerID); exists {
		client.Emit(event, payload)
	}
}
