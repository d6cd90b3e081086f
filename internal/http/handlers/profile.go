package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Текущий профиль пользователя
func (h *Handler) MyProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                   user.ID,
		"username":             user.Username,
		"profile_picture_path": user.ProfilePicturePath,
		"profile_picture_mime": user.ProfilePictureMime,
	})
}
