package routes

import (
	"Howler/controllers"
	"Howler/middleware"
	"Howler/services/redis"
	utils "Howler/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, redisClient *redis.RedisClient) {
	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/ticket", controllers.IssueTicket)

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.GET("/rooms/:room_code", controllers.GetRoomInfo(redisClient))

		authentication.GET("/rooms/:room_code/actions", controllers.GetRoomActions(redisClient))

		authentication.GET("/records/:room_code", controllers.GetGameRecords(db))
	}
}
