package handlers

import (
	"net/http"

	"guesswho_backend/internal/game"

	"github.com/gin-gonic/gin"
)

// Клиент присылает своих оставшихся кандидатов с предрасчитанными
// ответами; сервер лишь считает деление и ничего не хранит
type hintAnswer struct {
	QuestionID int64 `json:"question_id"`
	Answer     bool  `json:"answer"`
	// доля дробная, округление исказило бы ранжирование
	Percentage float64 `json:"percentage"`
}

type hintCandidate struct {
	ID      int64        `json:"id"`
	Answers []hintAnswer `json:"answers"`
}

func toCandidates(in []hintCandidate) []game.Candidate {
	out := make([]game.Candidate, 0, len(in))
	for _, c := range in {
		answers := make([]game.QuestionAnswer, 0, len(c.Answers))
		for _, a := range c.Answers {
			answers = append(answers, game.QuestionAnswer{
				QuestionID: a.QuestionID,
				Answer:     a.Answer,
				Percentage: a.Percentage,
			})
		}
		out = append(out, game.Candidate{ID: c.ID, Answers: answers})
	}
	return out
}

// ранжирование неотвеченных вопросов по качеству деления кандидатов
func (h *Handler) HintQuestions(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		GameID     int             `json:"game_id"`
		Candidates []hintCandidate `json:"candidates"`
		Answered   []int64         `json:"answered"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	ranked, err := h.Games.HintQuestions(c.Request.Context(), userID, req.GameID, toCandidates(req.Candidates), req.Answered)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": ranked})
}

// кандидаты, несовместимые с услышанным ответом
func (h *Handler) HintClosure(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req struct {
		GameID     int             `json:"game_id"`
		Candidates []hintCandidate `json:"candidates"`
		QuestionID int64           `json:"question_id"`
		Answer     bool            `json:"answer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	eliminated, err := h.Games.HintClosure(c.Request.Context(), userID, req.GameID, toCandidates(req.Candidates), req.QuestionID, req.Answer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"eliminated": eliminated})
}
