package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamdesk/console/internal/models"
	"github.com/teamdesk/console/internal/service"
	appErrors "github.com/teamdesk/console/pkg/errors"
	"github.com/teamdesk/console/pkg/response"
)

type attendanceServiceMock struct {
	records    []models.AttendanceRecord
	submitted  *models.AttendanceRecord
	submitErr  error
	setErr     error
	degraded   bool
	lastSubmit *service.SubmitRequest
}

func (m *attendanceServiceMock) Records() []models.AttendanceRecord {
	return m.records
}

func (m *attendanceServiceMock) Submit(ctx context.Context, req service.SubmitRequest) (*models.AttendanceRecord, error) {
	m.lastSubmit = &req
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return m.submitted, nil
}

func (m *attendanceServiceMock) SetStatus(ctx context.Context, id string, status models.AttendanceStatus) (*models.AttendanceRecord, error) {
	if m.setErr != nil {
		return nil, m.setErr
	}
	for _, rec := range m.records {
		if rec.ID == id {
			rec.Status = status
			return &rec, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (m *attendanceServiceMock) PersistenceDegraded() bool {
	return m.degraded
}

func performRequest(t *testing.T, register func(*gin.Engine), method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAttendanceHandlerListProjectsByDate(t *testing.T) {
	mock := &attendanceServiceMock{records: []models.AttendanceRecord{
		{ID: "a", EmployeeID: "EMP-1", Date: "2024-01-01", Status: models.AttendanceStatusPresent},
		{ID: "b", EmployeeID: "EMP-2", Date: "2024-01-03", Status: models.AttendanceStatusPresent},
		{ID: "c", EmployeeID: "EMP-3", Date: "2024-01-02", Status: models.AttendanceStatusAbsent},
	}}
	h := NewAttendanceHandler(mock, "Attendance log")

	w := performRequest(t, func(r *gin.Engine) { r.GET("/attendance", h.List) }, http.MethodGet, "/attendance", "")
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.AttendanceRecord `json:"data"`
		Meta map[string]interface{}    `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 3)
	assert.Equal(t, "b", envelope.Data[0].ID)
	assert.Equal(t, "c", envelope.Data[1].ID)
	assert.Equal(t, "a", envelope.Data[2].ID)
	assert.EqualValues(t, 3, envelope.Meta["count"])
}

func TestAttendanceHandlerSubmitDefaultsStatus(t *testing.T) {
	mock := &attendanceServiceMock{submitted: &models.AttendanceRecord{ID: "srv-1"}}
	h := NewAttendanceHandler(mock, "Attendance log")

	w := performRequest(t, func(r *gin.Engine) { r.POST("/attendance", h.Submit) },
		http.MethodPost, "/attendance", `{"employeeId":"EMP-1","date":"2024-02-01"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mock.lastSubmit)
	assert.Equal(t, string(models.AttendanceStatusPresent), mock.lastSubmit.Status)
}

func TestAttendanceHandlerSubmitConflict(t *testing.T) {
	mock := &attendanceServiceMock{submitErr: appErrors.ErrConflict}
	h := NewAttendanceHandler(mock, "Attendance log")

	w := performRequest(t, func(r *gin.Engine) { r.POST("/attendance", h.Submit) },
		http.MethodPost, "/attendance", `{"employeeId":"EMP-1","date":"2024-02-01","status":"Present"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrConflict.Code, envelope.Error.Code)
}

func TestAttendanceHandlerSubmitMalformedBody(t *testing.T) {
	mock := &attendanceServiceMock{}
	h := NewAttendanceHandler(mock, "Attendance log")

	w := performRequest(t, func(r *gin.Engine) { r.POST("/attendance", h.Submit) },
		http.MethodPost, "/attendance", `{not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, mock.lastSubmit)
}

func TestAttendanceHandlerSetStatus(t *testing.T) {
	mock := &attendanceServiceMock{records: []models.AttendanceRecord{
		{ID: "srv-1", EmployeeID: "EMP-1", Date: "2024-01-01", Status: models.AttendanceStatusPresent},
	}}
	h := NewAttendanceHandler(mock, "Attendance log")

	w := performRequest(t, func(r *gin.Engine) { r.PATCH("/attendance/:id/status", h.SetStatus) },
		http.MethodPatch, "/attendance/srv-1/status", `{"status":"Absent"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.AttendanceRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.AttendanceStatusAbsent, envelope.Data.Status)
}

func TestAttendanceHandlerDegradationWarning(t *testing.T) {
	mock := &attendanceServiceMock{degraded: true}
	h := NewAttendanceHandler(mock, "Attendance log")

	w := performRequest(t, func(r *gin.Engine) { r.GET("/attendance", h.List) }, http.MethodGet, "/attendance", "")
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, appErrors.ErrPersistence.Message, envelope.Meta["warning"])
}

func TestAttendanceHandlerExportCSV(t *testing.T) {
	mock := &attendanceServiceMock{records: []models.AttendanceRecord{
		{ID: "srv-1", EmployeeID: "EMP-1", EmployeeName: "Jane Doe", Date: "2024-01-01", Status: models.AttendanceStatusPresent},
	}}
	h := NewAttendanceHandler(mock, "Attendance log")

	w := performRequest(t, func(r *gin.Engine) { r.GET("/attendance/export", h.Export) },
		http.MethodGet, "/attendance/export?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Jane Doe")
}

func TestAttendanceHandlerExportUnknownFormat(t *testing.T) {
	mock := &attendanceServiceMock{}
	h := NewAttendanceHandler(mock, "Attendance log")

	w := performRequest(t, func(r *gin.Engine) { r.GET("/attendance/export", h.Export) },
		http.MethodGet, "/attendance/export?format=xlsx", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
