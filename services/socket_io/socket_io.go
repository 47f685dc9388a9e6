package socket_io

import (
	"Howler/services/game"
	"Howler/services/socket_io/handlers"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	socketio_types "Howler/services/socket_io/types"
	socketio_utils "Howler/services/socket_io/utils"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

// Start wires the socket.io server into the gin router and registers
// the event handlers for every authenticated connection.
func (sio *MySocketServer) Start(router *gin.Engine, registry *game.Registry,
	coordinator *game.Coordinator, mirror game.StateMirror) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.PlayerConnections = make(map[string]*socket.Socket)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, username := socketio_utils.VerifyPlayerConnection(client)
		if !success {
			return
		}

		playerID := string(client.Id())
		(*socketio_types.SocketServer)(sio).AddConnection(playerID, client)
		fmt.Println("An individual just connected!: ", username, playerID)

		typedSio := (*socketio_types.SocketServer)(sio)

		// Room lifecycle
		client.On("create_room", handlers.HandleCreateRoom(registry, mirror, client, username))
		client.On("join_room", handlers.HandleJoinRoom(registry, mirror, client, username, typedSio))
		client.On("approve_player", handlers.HandleApprovePlayer(registry, mirror, client, typedSio))
		client.On("reject_player", handlers.HandleRejectPlayer(registry, mirror, client, typedSio))
		client.On("get_room_info", handlers.GetRoomInfo(registry, client))

		// Game setup
		client.On("connect_gm", handlers.HandleConnectGM(registry, coordinator, client))
		client.On("assign_roles", handlers.HandleAssignRoles(registry, mirror, client, typedSio))
		client.On("player_ready", handlers.HandlePlayerReady(registry, coordinator, mirror, client, typedSio))

		// Game flow
		client.On("advance_phase", handlers.HandleAdvancePhase(registry, coordinator, client))
		client.On("night_action", handlers.HandleNightAction(coordinator, client))
		client.On("cast_vote", handlers.HandleCastVote(coordinator, client))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(playerID, username, typedSio))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}
