package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/services"
)

// BackupHandler handles backup, validation, restore, and scheduling
// HTTP requests
type BackupHandler struct {
	backupService  services.BackupService
	restoreService services.RestoreService
	scheduler      services.BackupScheduler
	officeInfo     models.OfficeInfo
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(
	backupService services.BackupService,
	restoreService services.RestoreService,
	scheduler services.BackupScheduler,
	officeInfo models.OfficeInfo,
) *BackupHandler {
	return &BackupHandler{
		backupService:  backupService,
		restoreService: restoreService,
		scheduler:      scheduler,
		officeInfo:     officeInfo,
	}
}

// @Summary Create a full backup
// @Description Snapshot all data, write it to the export directory, and return the file as a download
// @Tags backup
// @Produce application/octet-stream
// @Success 200 {file} file
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/full [post]
func (h *BackupHandler) CreateFullBackup(c *gin.Context) {
	createdBy := c.GetString("username")

	snapshot, err := h.backupService.CreateSnapshot(c.Request.Context(), createdBy, models.BackupManual)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to create backup",
			Message: err.Error(),
		})
		return
	}

	path, err := h.backupService.ExportFile(c.Request.Context(), snapshot)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to write backup file",
			Message: err.Error(),
		})
		return
	}

	// The backup itself succeeded; a stale recency marker only risks
	// an extra reminder
	_ = h.scheduler.RecordBackup(c.Request.Context(), snapshot.Timestamp)

	c.FileAttachment(path, filepath.Base(path))
}

// @Summary Export a single record kind
// @Description Write one record kind (invoices, customers, users, settings) as JSON and return it as a download
// @Tags backup
// @Produce application/octet-stream
// @Param kind path string true "Record kind" Enums(invoices, customers, users, settings)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/export/{kind} [post]
func (h *BackupHandler) ExportEntity(c *gin.Context) {
	kind := c.Param("kind")

	path, err := h.backupService.ExportEntity(c.Request.Context(), kind)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Unknown record kind",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to export",
			Message: err.Error(),
		})
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

// @Summary Backup history
// @Description Get the retained backup history, newest first
// @Tags backup
// @Produce json
// @Success 200 {array} models.BackupHistoryEntry
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/history [get]
func (h *BackupHandler) GetHistory(c *gin.Context) {
	history, err := h.backupService.History(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to load backup history",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, history)
}

// @Summary Backup stats
// @Description Get the scheduler's view of backup recency and reminders
// @Tags backup
// @Produce json
// @Success 200 {object} services.SchedulerStats
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/stats [get]
func (h *BackupHandler) GetStats(c *gin.Context) {
	stats, err := h.scheduler.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to load backup stats",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Summary Validate a backup file
// @Description Check an uploaded backup file without restoring anything
// @Tags backup
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Backup file"
// @Success 200 {object} services.ValidationResult
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/validate [post]
func (h *BackupHandler) ValidateBackup(c *gin.Context) {
	payload, ok := h.readUpload(c)
	if !ok {
		return
	}

	raw, err := services.ParseSnapshot(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Unreadable backup file",
			Message: err.Error(),
		})
		return
	}

	result := services.ValidateSnapshot(raw, h.officeInfo, time.Now())
	c.JSON(http.StatusOK, result)
}

// @Summary Restore from a backup file
// @Description Replace all data from an uploaded backup. Requires confirm=true.
// @Tags backup
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Backup file"
// @Param confirm query bool true "Must be true to proceed"
// @Success 200 {object} services.RestoreResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/restore [post]
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if !confirmed {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Confirmation required",
			Message: "restoring replaces all data; repeat the request with confirm=true",
		})
		return
	}

	payload, ok := h.readUpload(c)
	if !ok {
		return
	}

	// Stage the upload so the restore pipeline reads it the same way
	// an offline restore would
	staged := filepath.Join(os.TempDir(), models.BackupFileName(time.Now()))
	if err := os.WriteFile(staged, payload, 0600); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to stage backup file",
			Message: err.Error(),
		})
		return
	}
	defer os.Remove(staged)

	result, err := h.restoreService.RestoreFromFile(c.Request.Context(), staged)
	if err != nil {
		status := http.StatusBadRequest
		if h.restoreService.Status().Phase != services.PhaseFailed {
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{
			Error:   "Restore failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Restore status
// @Description Get the progress of the current or last restore run
// @Tags backup
// @Produce json
// @Success 200 {object} services.RestoreProgress
// @Security BearerAuth
// @Router /backup/restore/status [get]
func (h *BackupHandler) GetRestoreStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.restoreService.Status())
}

// @Summary Dismiss the backup reminder
// @Description Silence backup reminders for the rest of the calendar day
// @Tags backup
// @Produce json
// @Success 204 "No Content"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/reminder/dismiss [post]
func (h *BackupHandler) DismissReminder(c *gin.Context) {
	if err := h.scheduler.DismissReminder(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to dismiss reminder",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// AutoBackupRequest toggles the automatic backup setting
type AutoBackupRequest struct {
	Enabled bool `json:"enabled"`
}

// @Summary Toggle automatic backups
// @Description Enable or disable the daily automatic backup
// @Tags backup
// @Accept json
// @Produce json
// @Param setting body AutoBackupRequest true "Auto backup setting"
// @Success 200 {object} services.SchedulerStats
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /backup/auto [put]
func (h *BackupHandler) SetAutoBackup(c *gin.Context) {
	var req AutoBackupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if err := h.scheduler.SetAutoBackup(c.Request.Context(), req.Enabled); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to update auto backup setting",
			Message: err.Error(),
		})
		return
	}

	stats, err := h.scheduler.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to load backup stats",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// readUpload pulls the uploaded backup file out of the multipart form
func (h *BackupHandler) readUpload(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Missing backup file",
			Message: "multipart field 'file' is required",
		})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Unreadable upload",
			Message: err.Error(),
		})
		return nil, false
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Unreadable upload",
			Message: err.Error(),
		})
		return nil, false
	}

	return payload, true
}
