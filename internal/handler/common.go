package handler

import (
	"github.com/nureesan1/taawoon-sub000/internal/middleware"
	"github.com/nureesan1/taawoon-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

// currentStaff fetches the authenticated staff account placed into the
// context by the auth middleware.
func currentStaff(c *gin.Context) (*models.Staff, bool) {
	v, ok := c.Get(middleware.CurrentStaffKey)
	if !ok {
		return nil, false
	}
	staff, ok := v.(*models.Staff)
	if !ok || staff == nil {
		return nil, false
	}
	return staff, true
}
