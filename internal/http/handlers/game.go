package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type gameRef struct {
	GameID int `json:"game_id"`
}

// bindGame: общий разбор тела с id игры
func bindGame(c *gin.Context) (int64, int, bool) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, 0, false
	}
	var req gameRef
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return 0, 0, false
	}
	return userID, req.GameID, true
}

func (h *Handler) StartGame(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		LobbyID int `json:"lobby_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	res, err := h.Games.Start(c.Request.Context(), userID, req.LobbyID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ростер персонажей текущего матча
func (h *Handler) GameCharacters(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad game id"})
		return
	}

	roster, err := h.Games.Characters(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"characters": roster})
}

func (h *Handler) EndLoading(c *gin.Context) {
	userID, gameID, ok := bindGame(c)
	if !ok {
		return
	}
	if err := h.Games.EndLoading(c.Request.Context(), userID, gameID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ChooseCharacter(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		GameID    int `json:"game_id"`
		Character int `json:"character"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.Games.ChooseCharacter(c.Request.Context(), userID, req.GameID, req.Character); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ChooseQuestion(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		GameID   int `json:"game_id"`
		Question int `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.Games.ChooseQuestion(c.Request.Context(), userID, req.GameID, req.Question); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) AnswerQuestion(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		GameID   int  `json:"game_id"`
		Response bool `json:"response"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.Games.Answer(c.Request.Context(), userID, req.GameID, req.Response); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) EndClosure(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		GameID    int `json:"game_id"`
		Remaining int `json:"remaining"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.Games.EndClosure(c.Request.Context(), userID, req.GameID, req.Remaining); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) SkipTurn(c *gin.Context) {
	userID, gameID, ok := bindGame(c)
	if !ok {
		return
	}
	if err := h.Games.Skip(c.Request.Context(), userID, gameID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Guess(c *gin.Context) {
	userID, gameID, ok := bindGame(c)
	if !ok {
		return
	}
	if err := h.Games.Guess(c.Request.Context(), userID, gameID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GuessCharacter(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		GameID    int `json:"game_id"`
		Character int `json:"character"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.Games.GuessCharacter(c.Request.Context(), userID, req.GameID, req.Character); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GuessResponse(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		GameID   int  `json:"game_id"`
		Response bool `json:"response"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if err := h.Games.GuessResponse(c.Request.Context(), userID, req.GameID, req.Response); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GameTimer(c *gin.Context) {
	userID, gameID, ok := bindGame(c)
	if !ok {
		return
	}
	if err := h.Games.EndTimer(c.Request.Context(), userID, gameID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// выход из матча: вышедший проигрывает
func (h *Handler) ExitGame(c *gin.Context) {
	userID, gameID, ok := bindGame(c)
	if !ok {
		return
	}
	if err := h.Games.Forfeit(c.Request.Context(), userID, gameID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
