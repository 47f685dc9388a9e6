package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidTicket = errors.New("invalid connection ticket")

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// SignConnectionTicket issues the short-lived JWT a client presents on
// both the REST API and the socket handshake. It binds a username to
// the connection; the in-game player id is the socket id assigned when
// the connection is established.
func SignConnectionTicket(username string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

func decodeTicket(tokenString string) (username string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidTicket
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidTicket
	}
	username, _ = claims["username"].(string)
	if username == "" {
		return "", ErrInvalidTicket
	}
	return username, nil
}

// JWT_decoder extracts the username from a request's
// "Authorization: Bearer <ticket>" header.
func JWT_decoder(c *gin.Context) (username string, err error) {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" || tokenString == header {
		return "", ErrInvalidTicket
	}
	return decodeTicket(tokenString)
}

// Socketio_JWT_decoder extracts the username from a socket.io
// handshake's auth data.
func Socketio_JWT_decoder(authData map[string]interface{}) (username string, err error) {
	raw, exists := authData["authorization"].(string)
	if !exists {
		return "", ErrInvalidTicket
	}
	return decodeTicket(strings.TrimPrefix(raw, "Bearer "))
}

// AuthRequired guards REST routes with the connection ticket. The
// decoded identity is stored on the context for the handler.
func AuthRequired(c *gin.Context) {
	username, err := JWT_decoder(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set("username", username)
	c.Next()
}
