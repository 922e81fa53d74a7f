package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nureesan1/taawoon-sub000/internal/models"
	"github.com/nureesan1/taawoon-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler manages database backup files.
type BackupHandler struct {
	DB        *gorm.DB
	BackupDir string
}

func NewBackupHandler(db *gorm.DB, backupDir string) *BackupHandler {
	return &BackupHandler{DB: db, BackupDir: backupDir}
}

// CreateBackup snapshots the database into the backup directory.
// VACUUM INTO produces a consistent copy even under WAL mode.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	staff, ok := currentStaff(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create backup dir")
		return
	}

	fileName := fmt.Sprintf("backup-%s-%s.db", time.Now().Format("20060102"), uuid.NewString())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := h.DB.Exec("VACUUM INTO ?", filePath).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write backup")
		return
	}

	info, err := os.Stat(filePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to stat backup")
		return
	}

	backup := models.Backup{
		FileName:  fileName,
		FilePath:  filePath,
		Size:      info.Size(),
		CreatedBy: staff.Username,
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save backup record")
		return
	}

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"created_by": backup.CreatedBy,
			"created_at": backup.CreatedAt,
		},
	})
}

// ListBackups returns all recorded backups, newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	var backups []models.Backup
	if err := h.DB.Order("created_at DESC").Find(&backups).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}

	items := make([]gin.H, 0, len(backups))
	for _, b := range backups {
		items = append(items, gin.H{
			"id":         b.ID,
			"file_name":  b.FileName,
			"size":       b.Size,
			"created_by": b.CreatedBy,
			"created_at": b.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
	})
}

// DownloadBackup streams a backup file.
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	backup, ok := h.findBackup(c)
	if !ok {
		return
	}
	if _, err := os.Stat(backup.FilePath); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup file missing on disk")
		return
	}
	c.FileAttachment(backup.FilePath, backup.FileName)
}

// DeleteBackup removes the backup file and its record.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	backup, ok := h.findBackup(c)
	if !ok {
		return
	}

	if err := os.Remove(backup.FilePath); err != nil && !os.IsNotExist(err) {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to remove backup file")
		return
	}
	if err := h.DB.Delete(backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to remove backup record")
		return
	}

	util.Success(c, util.Response{
		"message": "backup deleted",
	})
}

func (h *BackupHandler) findBackup(c *gin.Context) (*models.Backup, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return nil, false
	}
	var backup models.Backup
	if err := h.DB.First(&backup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return nil, false
	}
	return &backup, true
}
