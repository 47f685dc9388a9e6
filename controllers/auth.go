package controllers

import (
	"Howler/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Issue a connection ticket
// @Description Returns a signed ticket binding the given username. The ticket goes on the Authorization header of API requests and on the socket handshake auth data.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body object{username=string} true "Ticket request"
// @Success 200 {object} object{ticket=string}
// @Failure 400 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /ticket [post]
func IssueTicket(c *gin.Context) {
	var request struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	ticket, err := middleware.SignConnectionTicket(request.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not sign the ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}
