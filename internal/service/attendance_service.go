package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/teamdesk/console/internal/models"
	"github.com/teamdesk/console/internal/remote"
	appErrors "github.com/teamdesk/console/pkg/errors"
)

// provisionalIDPrefix distinguishes client-generated identifiers from server
// ones while a submission is in flight.
const provisionalIDPrefix = "temp-"

type cacheStore interface {
	Load(ctx context.Context) []models.AttendanceRecord
	Save(ctx context.Context, records []models.AttendanceRecord) error
}

type remoteTransport interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	CreateAttendance(ctx context.Context, payload remote.CreateAttendanceRequest) (*remote.CreateAttendanceResult, error)
}

// AttendanceService reconciles the durable local attendance cache against the
// remote backend: optimistic insert, remote commit, replace-or-rollback. At
// most one submission is in flight at a time; the savingID token is the lock.
type AttendanceService struct {
	store     cacheStore
	transport remoteTransport
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	now       func() time.Time

	mu            sync.Mutex
	records       []models.AttendanceRecord
	employees     []models.Employee
	employeeIndex map[string]models.Employee
	savingID      string

	degraded atomic.Bool
}

// NewAttendanceService constructs the service.
func NewAttendanceService(store cacheStore, transport remoteTransport, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{
		store:         store,
		transport:     transport,
		validator:     validate,
		logger:        logger,
		metrics:       metrics,
		now:           time.Now,
		employeeIndex: map[string]models.Employee{},
	}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// StartSession loads the cached attendance list and fetches the employee
// snapshot. The snapshot is immutable for the rest of the session. A transport
// failure leaves the snapshot empty and is returned for the caller to surface;
// the cached records are available either way.
func (s *AttendanceService) StartSession(ctx context.Context) error {
	records := s.store.Load(ctx)

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	employees, err := s.transport.ListEmployees(ctx)
	if err != nil {
		s.logger.Warn("failed to load employee snapshot", zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "failed to load employees for attendance")
	}

	index := make(map[string]models.Employee, len(employees))
	for _, emp := range employees {
		index[emp.EmployeeID] = emp
	}

	s.mu.Lock()
	s.employees = employees
	s.employeeIndex = index
	s.mu.Unlock()

	s.logger.Info("session started",
		zap.Int("cached_records", len(records)),
		zap.Int("employees", len(employees)))
	return nil
}

// Records returns a copy of the current cache contents in cache order.
func (s *AttendanceService) Records() []models.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AttendanceRecord(nil), s.records...)
}

// Employees returns the session's employee snapshot.
func (s *AttendanceService) Employees() []models.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Employee(nil), s.employees...)
}

// PersistenceDegraded reports whether the last slot write failed. It clears on
// the next successful write.
func (s *AttendanceService) PersistenceDegraded() bool {
	return s.degraded.Load()
}

// SubmitRequest is one attendance mark to record.
type SubmitRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Status     string `json:"status" validate:"required,attendance_status"`
}

// Submit runs the full submission lifecycle: validate, insert an optimistic
// pending record, call the backend, then settle or roll back. While a
// submission is in flight further submissions are rejected outright, but
// status edits on other records proceed.
func (s *AttendanceService) Submit(ctx context.Context, req SubmitRequest) (*models.AttendanceRecord, error) {
	s.mu.Lock()
	if s.savingID != "" {
		s.mu.Unlock()
		s.countSubmission("rejected")
		return nil, appErrors.Clone(appErrors.ErrSubmissionInFlight, "")
	}
	s.mu.Unlock()

	if err := s.validator.Struct(req); err != nil {
		s.countSubmission("invalid")
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "employee and date are required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		s.countSubmission("invalid")
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}

	s.mu.Lock()
	if s.savingID != "" {
		s.mu.Unlock()
		s.countSubmission("rejected")
		return nil, appErrors.Clone(appErrors.ErrSubmissionInFlight, "")
	}
	employee, ok := s.employeeIndex[req.EmployeeID]
	if !ok {
		s.mu.Unlock()
		s.countSubmission("invalid")
		return nil, appErrors.Clone(appErrors.ErrUnknownEmployee, "")
	}

	// Optimistic insertion: the provisional record is prepended and persisted
	// before the backend has seen it, and savingID locks out further submits.
	provisionalID := fmt.Sprintf("%s%d", provisionalIDPrefix, s.now().UnixNano())
	optimistic := models.AttendanceRecord{
		ID:           provisionalID,
		EmployeeID:   req.EmployeeID,
		EmployeeName: employee.FullName,
		Date:         req.Date,
		Status:       models.AttendanceStatus(req.Status),
		Pending:      true,
	}
	s.records = append([]models.AttendanceRecord{optimistic}, s.records...)
	s.savingID = provisionalID
	s.persistLocked(ctx)
	s.mu.Unlock()

	result, err := s.transport.CreateAttendance(ctx, remote.CreateAttendanceRequest{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Status:     req.Status,
	})
	if err != nil {
		s.rollback(ctx, provisionalID)
		return nil, s.classifyRemoteError(err)
	}

	settled := s.settle(ctx, provisionalID, result)
	if settled == nil {
		// The provisional record vanished mid-flight; nothing in this core
		// deletes records, so treat it as an internal fault.
		s.countSubmission("lost")
		return nil, appErrors.Clone(appErrors.ErrInternal, "optimistic record disappeared before settlement")
	}
	s.countSubmission("settled")
	return settled, nil
}

// settle replaces the provisional record in place with the server-confirmed
// identity and status. EmployeeName and EmployeeID are retained from the
// optimistic write; the backend does not echo the display name. The record is
// located by identity, never by position, so interleaved status edits on other
// records are preserved.
func (s *AttendanceService) settle(ctx context.Context, provisionalID string, result *remote.CreateAttendanceResult) *models.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savingID = ""
	for i := range s.records {
		if s.records[i].ID != provisionalID {
			continue
		}
		s.records[i].ID = result.ID
		s.records[i].Status = result.Status
		s.records[i].Pending = false
		s.persistLocked(ctx)
		settled := s.records[i]
		return &settled
	}
	return nil
}

// rollback removes the provisional record entirely. The cache holds only what
// the server has accepted, plus at most the one in-flight record; a rejected
// write leaves no placeholder behind.
func (s *AttendanceService) rollback(ctx context.Context, provisionalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savingID = ""
	kept := s.records[:0]
	for _, rec := range s.records {
		if rec.ID != provisionalID {
			kept = append(kept, rec)
		}
	}
	s.records = kept
	s.persistLocked(ctx)
}

// SetStatus replaces the status of the record with the given id, leaving every
// other field untouched, and persists the cache. It is a purely local edit: no
// remote call, no pending change. Editing a still-pending record is allowed;
// settlement will overwrite its status from the server response.
func (s *AttendanceService) SetStatus(ctx context.Context, id string, status models.AttendanceStatus) (*models.AttendanceRecord, error) {
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		s.records[i].Status = status
		s.persistLocked(ctx)
		updated := s.records[i]
		return &updated, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
}

// persistLocked writes the full cache to the durable slot. Callers hold s.mu.
// A failed write never rolls back in-memory state; it flips the degradation
// flag so the surface can warn that local durability is compromised.
func (s *AttendanceService) persistLocked(ctx context.Context) {
	err := s.store.Save(ctx, append([]models.AttendanceRecord(nil), s.records...))
	if err != nil {
		s.logger.Warn("failed to persist attendance cache", zap.Error(err))
		s.degraded.Store(true)
		if s.metrics != nil {
			s.metrics.RecordSlotWriteFailure()
		}
		return
	}
	s.degraded.Store(false)
}

// classifyRemoteError maps a failed backend call onto the error taxonomy. A
// 400-class rejection means a duplicate mark for the employee/date unless the
// backend sent an explicit detail message, which takes precedence.
func (s *AttendanceService) classifyRemoteError(err error) error {
	var rerr *remote.Error
	if errors.As(err, &rerr) && rerr.StatusCode != 0 {
		if rerr.ClientFailure() {
			s.countSubmission("conflict")
			return appErrors.Clone(appErrors.ErrConflict, rerr.Detail)
		}
		s.countSubmission("transport_error")
		return appErrors.Clone(appErrors.ErrTransport, rerr.Detail)
	}
	s.countSubmission("transport_error")
	return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
}

func (s *AttendanceService) countSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(outcome)
	}
}
