package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/nureesan1/taawoon-sub000/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxAuditBody = 2000

// Request bodies on these routes carry passwords and are never stored.
var credentialPaths = map[string]struct{}{
	"/api/auth/register":    {},
	"/api/auth/login":       {},
	"/api/profile/password": {},
}

// AuditMiddleware records mutating requests from logged-in staff into the
// audit log. Reads are not recorded, and credential routes are logged
// without their body.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var staffID uint
		if v, ok := c.Get(CurrentStaffKey); ok {
			if staff, ok := v.(*models.Staff); ok && staff != nil {
				staffID = staff.ID
			}
		}

		_, credential := credentialPaths[c.Request.URL.Path]

		var bodyBytes []byte
		if c.Request.Body != nil && !credential {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		if staffID == 0 || c.Request.Method == http.MethodGet {
			return
		}

		meta := ""
		if len(bodyBytes) > 0 && len(bodyBytes) < maxAuditBody {
			meta = string(bodyBytes)
		}

		entry := models.AuditLog{
			StaffID:  &staffID,
			Method:   c.Request.Method,
			Path:     c.Request.URL.Path,
			Action:   c.Request.Method + " " + c.Request.URL.Path,
			Metadata: meta,
			IP:       c.ClientIP(),
		}
		_ = db.Create(&entry).Error
	}
}
