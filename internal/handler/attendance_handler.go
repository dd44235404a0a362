package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/teamdesk/console/internal/models"
	"github.com/teamdesk/console/internal/service"
	"github.com/teamdesk/console/pkg/errors"
	"github.com/teamdesk/console/pkg/export"
	"github.com/teamdesk/console/pkg/response"
)

type attendanceService interface {
	Records() []models.AttendanceRecord
	Submit(ctx context.Context, req service.SubmitRequest) (*models.AttendanceRecord, error)
	SetStatus(ctx context.Context, id string, status models.AttendanceStatus) (*models.AttendanceRecord, error)
	PersistenceDegraded() bool
}

// AttendanceHandler exposes the attendance cache over the local console API.
type AttendanceHandler struct {
	service     attendanceService
	exportTitle string
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService, exportTitle string) *AttendanceHandler {
	return &AttendanceHandler{service: svc, exportTitle: exportTitle}
}

// List returns the display-ordered attendance log.
func (h *AttendanceHandler) List(c *gin.Context) {
	projected := service.Project(h.service.Records())
	response.JSON(c, http.StatusOK, projected, h.meta(map[string]interface{}{"count": len(projected)}))
}

// Submit records one attendance mark through the optimistic path.
func (h *AttendanceHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.Clone(errors.ErrValidation, "invalid request body"))
		return
	}
	if req.Status == "" {
		req.Status = string(models.AttendanceStatusPresent)
	}

	record, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, record, h.meta(nil))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus applies a local-only status edit to a cached record.
func (h *AttendanceHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errors.Clone(errors.ErrValidation, "invalid request body"))
		return
	}

	record, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), models.AttendanceStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, h.meta(nil))
}

// Export renders the attendance log as CSV or PDF.
func (h *AttendanceHandler) Export(c *gin.Context) {
	projected := service.Project(h.service.Records())
	stamp := time.Now().Format("2006-01-02")

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := export.CSV(projected)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.csv", stamp))
		c.Data(http.StatusOK, "text/csv", data)
	case "pdf":
		data, err := export.PDF(projected, h.exportTitle)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.pdf", stamp))
		c.Data(http.StatusOK, "application/pdf", data)
	default:
		response.Error(c, errors.Clone(errors.ErrValidation, "format must be csv or pdf"))
	}
}

// meta attaches the persistence degradation warning when the last durable
// write failed, so the console can show a non-blocking banner.
func (h *AttendanceHandler) meta(base map[string]interface{}) map[string]interface{} {
	if !h.service.PersistenceDegraded() {
		return base
	}
	if base == nil {
		base = map[string]interface{}{}
	}
	base["warning"] = errors.ErrPersistence.Message
	return base
}
