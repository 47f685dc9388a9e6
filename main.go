package main

import (
	"Howler/config"
	_ "Howler/config/swagger"
	"Howler/middleware"
	"Howler/routes"
	"Howler/services/game"
	"Howler/services/redis"
	"Howler/services/socket_io"
	socketio_types "Howler/services/socket_io/types"
	"Howler/services/sync"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Howler API
// @version 1.0
// @description Gin-Gonic server for the "Howler" werewolf game backend
// @host localhost:8080
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Connection to Redis successful")
	defer redis.CloseRedis(redisClient)

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, gormDB, redisClient)

	// Game wiring: the socket layer broadcasts for the coordinator, the
	// mirror keeps the Redis read model fresh and the sync manager
	// archives finished games.
	sio := &socket_io.MySocketServer{}
	registry := game.NewRegistry()
	broadcaster := socket_io.NewSioBroadcaster((*socketio_types.SocketServer)(sio))
	coordinator := game.NewCoordinator(registry, broadcaster)

	mirror := redis.NewRoomMirror(redisClient)
	coordinator.Mirror = mirror
	coordinator.Archiver = sync.NewSyncManager(redisClient, sqlDB)

	sio.Start(r, registry, coordinator, mirror)

	// Configure port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if os.Getenv("USE_HTTPS") == "true" {
		certFile := os.Getenv("TLS_CERT_FILE")
		keyFile := os.Getenv("TLS_KEY_FILE")

		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
}
