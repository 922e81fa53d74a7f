package router

import (
	"net/http"

	"github.com/nureesan1/taawoon-sub000/internal/billing"
	"github.com/nureesan1/taawoon-sub000/internal/config"
	"github.com/nureesan1/taawoon-sub000/internal/handler"
	"github.com/nureesan1/taawoon-sub000/internal/middleware"
	"github.com/nureesan1/taawoon-sub000/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine := billing.NewEngine(db)
	pageSize := cfg.App.PageSize

	// ====== API ======
	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.Issuer, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	// open only for the very first account; admin-only afterwards
	api.POST("/auth/register",
		middleware.RequireAdminAfterBootstrap(jwtSecret, db),
		authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// routes that require a logged-in staff account
	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db, cfg.Security.BcryptCost))

	memberHandler := handler.NewMemberHandler(db, engine, pageSize)
	protected.GET("/members", memberHandler.ListMembers)
	protected.GET("/members/:id", memberHandler.GetMember)
	protected.POST("/members", memberHandler.CreateMember)
	protected.PUT("/members/:id", memberHandler.UpdateMember)

	paymentHandler := handler.NewPaymentHandler(db, engine)
	protected.GET("/members/:id/payments", paymentHandler.ListPayments)
	protected.POST("/members/:id/payments", paymentHandler.CreatePayment)
	protected.DELETE("/members/:id/payments/:paymentID", paymentHandler.DeletePayment)

	statementHandler := handler.NewStatementHandler(db)
	protected.GET("/members/:id/statement", statementHandler.GetStatement)

	ledgerHandler := handler.NewLedgerHandler(db, pageSize)
	protected.GET("/ledger", ledgerHandler.ListLedger)

	importExportHandler := handler.NewImportExportHandler(db)
	protected.GET("/export/csv", importExportHandler.ExportCSV)
	protected.GET("/export/xlsx", importExportHandler.ExportXLSX)

	// administrative operations
	admin := protected.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	admin.PATCH("/members/:id/balances", memberHandler.OverrideBalances)
	admin.DELETE("/members/:id", memberHandler.DeleteMember)
	admin.POST("/import/members", importExportHandler.ImportMembers)

	admin.POST("/ledger", ledgerHandler.CreateLedger)
	admin.PUT("/ledger/:id", ledgerHandler.UpdateLedger)
	admin.DELETE("/ledger/:id", ledgerHandler.DeleteLedger)

	auditHandler := handler.NewAuditHandler(db, pageSize)
	admin.GET("/logs", auditHandler.ListAuditLogs)

	backupHandler := handler.NewBackupHandler(db, cfg.Backup.Dir)
	admin.POST("/backups", backupHandler.CreateBackup)
	admin.GET("/backups", backupHandler.ListBackups)
	admin.GET("/backups/:id/download", backupHandler.DownloadBackup)
	admin.DELETE("/backups/:id", backupHandler.DeleteBackup)

	return r
}
