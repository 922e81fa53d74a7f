package handler

import (
	"net/http"

	"github.com/nureesan1/taawoon-sub000/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe returns the currently logged-in staff account.
func GetMe(c *gin.Context) {
	staff, ok := currentStaff(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	util.Success(c, util.Response{
		"staff": gin.H{
			"id":           staff.ID,
			"username":     staff.Username,
			"display_name": staff.DisplayName,
			"role":         staff.Role,
			"created_at":   staff.CreatedAt,
		},
	})
}
