package handlers

import (
	"errors"
	"net/http"

	"guesswho_backend/internal/repository"
	"guesswho_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler держит сервисы matchmaking и матча; хендлеры - тонкие
// адаптеры запрос -> сервис -> gin.H
type Handler struct {
	Lobbies *service.LobbyService
	Games   *service.GameService
	Users   *repository.UserRepository
}

func NewHandler(lobbies *service.LobbyService, games *service.GameService, users *repository.UserRepository) *Handler {
	return &Handler{Lobbies: lobbies, Games: games, Users: users}
}

// getUserID достает id пользователя, положенный auth middleware
func getUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// fail переводит ошибки сервисного слоя в HTTP статусы
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary failure"})
	}
}
