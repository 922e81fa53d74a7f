package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/models"
	"github.com/nureesan1/taawoon-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CurrentStaffKey is the gin context key holding the authenticated staff.
const CurrentStaffKey = "currentStaff"

// authenticate validates the request's JWT and puts the staff account into
// the context. On failure it writes the error response, aborts and returns
// false.
func authenticate(c *gin.Context, jwtSecret string, db *gorm.DB) bool {
	var tokenStr string

	// 1) Header: Authorization: Bearer xxx
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenStr = parts[1]
		}
	}

	// 2) URL query ?token=xxx (for downloads where headers are awkward)
	if tokenStr == "" {
		tokenStr = c.Query("token")
	}

	// 3) Cookie
	if tokenStr == "" {
		if cookie, err := c.Cookie("twn_token"); err == nil {
			tokenStr = cookie
		}
	}

	if tokenStr == "" {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		c.Abort()
		return false
	}

	claims, err := util.ParseToken(jwtSecret, tokenStr)
	if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "session expired, please log in again")
		c.Abort()
		return false
	}

	var staff models.Staff
	if err := db.First(&staff, claims.StaffID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "account no longer exists")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load account")
		}
		c.Abort()
		return false
	}

	c.Set(CurrentStaffKey, &staff)
	return true
}

// AuthMiddleware validates the JWT and puts the staff account into the
// request context.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, jwtSecret, db) {
			return
		}
		c.Next()
	}
}

// RequireAdminAfterBootstrap guards staff registration. While the staff
// table is empty the request passes unauthenticated, so the first admin
// account can be created. From then on only a logged-in admin may create
// further accounts.
func RequireAdminAfterBootstrap(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var total int64
		if err := db.Model(&models.Staff{}).Count(&total).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to check accounts")
			c.Abort()
			return
		}
		if total == 0 {
			c.Next()
			return
		}

		if !authenticate(c, jwtSecret, db) {
			return
		}
		staff, _ := c.MustGet(CurrentStaffKey).(*models.Staff)
		if staff == nil || !staff.IsAdmin() {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole gates a route group to one role. Run it after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CurrentStaffKey)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
			c.Abort()
			return
		}
		staff, ok := v.(*models.Staff)
		if !ok || staff == nil || staff.Role != role {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
