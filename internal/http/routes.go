package http

import (
	"guesswho_backend/internal/http/handlers"
	"guesswho_backend/internal/http/middleware"
	"guesswho_backend/internal/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes собирает все маршруты приложения
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, hub *ws.Hub, allowedOrigin string) {
	r.GET("/ws", h.WS(hub, allowedOrigin))

	api := r.Group("/api", middleware.JWTAuth(), middleware.RateLimit())

	api.GET("/profile", h.MyProfile)

	api.GET("/lobbies", h.ListLobbies)
	api.GET("/lobby/:id", h.ShowLobby)
	api.POST("/lobby", h.CreateLobby)
	api.POST("/lobby/join", h.JoinLobby)
	api.POST("/lobby/ready", h.ReadyLobby)
	api.POST("/lobby/exit", h.ExitLobby)
	api.DELETE("/lobby/:id", h.DeleteLobby)
	api.POST("/lobby/timer", h.LobbyTimer)

	api.POST("/game/start", h.StartGame)
	api.GET("/game/:id/characters", h.GameCharacters)
	api.POST("/game/loading", h.EndLoading)
	api.POST("/game/character", h.ChooseCharacter)
	api.POST("/game/question", h.ChooseQuestion)
	api.POST("/game/response", h.AnswerQuestion)
	api.POST("/game/closure", h.EndClosure)
	api.POST("/game/skip", h.SkipTurn)
	api.POST("/game/guess", h.Guess)
	api.POST("/game/guess-character", h.GuessCharacter)
	api.POST("/game/guess-response", h.GuessResponse)
	api.POST("/game/timer", h.GameTimer)
	api.POST("/game/exit", h.ExitGame)

	api.POST("/game/hints/questions", h.HintQuestions)
	api.POST("/game/hints/closure", h.HintClosure)
}
