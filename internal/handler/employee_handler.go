package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teamdesk/console/internal/models"
	"github.com/teamdesk/console/pkg/response"
)

type employeeSnapshot interface {
	Employees() []models.Employee
}

// EmployeeHandler exposes the session's read-only employee snapshot.
type EmployeeHandler struct {
	service employeeSnapshot
}

// NewEmployeeHandler constructs the handler.
func NewEmployeeHandler(svc employeeSnapshot) *EmployeeHandler {
	return &EmployeeHandler{service: svc}
}

// List returns the snapshot fetched at session start.
func (h *EmployeeHandler) List(c *gin.Context) {
	employees := h.service.Employees()
	response.JSON(c, http.StatusOK, employees, map[string]interface{}{"count": len(employees)})
}
