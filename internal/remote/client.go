package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/teamdesk/console/internal/models"
	"github.com/teamdesk/console/pkg/config"
)

// Error is a failed remote call. StatusCode is zero when the request never
// reached the backend; Detail carries the backend's human-readable message
// when it sent one.
type Error struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote call failed: %v", e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("remote call failed (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("remote call failed (%d)", e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ClientFailure reports whether the backend rejected the request with a
// 400-class status, as opposed to a network or server fault.
func (e *Error) ClientFailure() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Client talks to the HR backend over its fixed request/response contract.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient constructs a client against the configured backend.
func NewClient(cfg config.RemoteConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// ListEmployees fetches the employee roster. The backend may answer with a
// bare array or with an object wrapping an "employees" array; null entries
// are filtered out before use.
func (c *Client) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/employees/", nil)
	if err != nil {
		return nil, &Error{Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{StatusCode: resp.StatusCode, Detail: detailMessage(body)}
	}

	var entries []*models.Employee
	if err := json.Unmarshal(body, &entries); err != nil {
		var wrapped struct {
			Employees []*models.Employee `json:"employees"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode employees: %w", err)}
		}
		entries = wrapped.Employees
	}

	employees := make([]models.Employee, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		employees = append(employees, *entry)
	}
	return employees, nil
}

// CreateAttendanceRequest is the POST /attendance payload.
type CreateAttendanceRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

// CreateAttendanceResult is the confirmed identity and status of a stored
// attendance record. The backend does not echo the display name.
type CreateAttendanceResult struct {
	ID     string
	Status models.AttendanceStatus
}

// CreateAttendance submits one attendance mark.
func (c *Client) CreateAttendance(ctx context.Context, payload CreateAttendanceRequest) (*CreateAttendanceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/attendance", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("attendance rejected by backend",
			zap.Int("status", resp.StatusCode),
			zap.String("employee_id", payload.EmployeeID),
			zap.String("date", payload.Date))
		return nil, &Error{StatusCode: resp.StatusCode, Detail: detailMessage(respBody)}
	}

	var confirmed struct {
		ID     json.RawMessage `json:"id"`
		Status string          `json:"status"`
	}
	if err := json.Unmarshal(respBody, &confirmed); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode attendance response: %w", err)}
	}
	id, err := serverID(confirmed.ID)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode attendance response: %w", err)}
	}
	return &CreateAttendanceResult{
		ID:     id,
		Status: models.AttendanceStatus(confirmed.Status),
	}, nil
}

// serverID accepts both identifier forms the backend is known to emit: a
// string or a number.
func serverID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("unsupported id %s", string(raw))
}

// detailMessage extracts the backend's "detail" field from an error body.
func detailMessage(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
