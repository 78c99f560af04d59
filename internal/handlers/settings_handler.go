package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fireforce-invoice-api/internal/models"
	"fireforce-invoice-api/internal/services"
)

// SettingsHandler handles application settings and office info requests
type SettingsHandler struct {
	dataService services.DataService
	officeInfo  models.OfficeInfo
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(dataService services.DataService, officeInfo models.OfficeInfo) *SettingsHandler {
	return &SettingsHandler{
		dataService: dataService,
		officeInfo:  officeInfo,
	}
}

// @Summary Get settings
// @Description Get the application settings
// @Tags settings
// @Produce json
// @Success 200 {object} models.Settings
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.dataService.GetSettings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get settings",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// @Summary Update settings
// @Description Update the application settings
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body services.UpdateSettingsRequest true "Fields to update"
// @Success 200 {object} models.Settings
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	settings, err := h.dataService.UpdateSettings(c.Request.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Validation failed",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to update settings",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// @Summary Get office info
// @Description Get the fixed company contact details
// @Tags settings
// @Produce json
// @Success 200 {object} models.OfficeInfo
// @Security BearerAuth
// @Router /office-info [get]
func (h *SettingsHandler) GetOfficeInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.officeInfo)
}
