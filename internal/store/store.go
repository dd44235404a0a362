package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/teamdesk/console/internal/models"
	appErrors "github.com/teamdesk/console/pkg/errors"
)

// CacheStore owns the durable attendance slot. It holds the entire attendance
// list, not a delta: every mutation cycle is "compute next full list, persist
// full list", which keeps the persistence boundary free of partial updates.
type CacheStore struct {
	slot   Slot
	logger *zap.Logger
}

// NewCacheStore constructs the store.
func NewCacheStore(slot Slot, logger *zap.Logger) *CacheStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheStore{slot: slot, logger: logger}
}

// Load reads the slot, drops malformed entries and normalises the legacy
// employee_id spelling to employeeId. Corrupt or absent slot contents are a
// recoverable bootstrap condition: Load logs a warning and returns an empty
// list, never an error.
func (s *CacheStore) Load(ctx context.Context) []models.AttendanceRecord {
	raw, err := s.slot.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			s.logger.Warn("failed to read attendance slot", zap.Error(err))
		}
		return []models.AttendanceRecord{}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []RawRecord
	if err := dec.Decode(&items); err != nil {
		s.logger.Warn("failed to decode attendance slot", zap.Error(err))
		return []models.AttendanceRecord{}
	}

	kept := Sanitize(items)
	records := make([]models.AttendanceRecord, 0, len(kept))
	for _, item := range kept {
		records = append(records, toRecord(item))
	}
	if dropped := len(items) - len(kept); dropped > 0 {
		s.logger.Warn("dropped malformed attendance entries", zap.Int("dropped", dropped))
	}
	return records
}

// Save serialises the full record list into the slot, replacing prior
// contents. Failures are reported as a persistence error; the in-memory list
// stays the source of truth for the session.
func (s *CacheStore) Save(ctx context.Context, records []models.AttendanceRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	if err := s.slot.Put(ctx, data); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, appErrors.ErrPersistence.Message)
	}
	return nil
}

// toRecord maps a sanitised raw entry onto the canonical record shape.
// Records loaded from the slot are settled by definition: an in-flight
// submission cannot outlive the session that started it, so a persisted
// pending flag is not carried over.
func toRecord(item RawRecord) models.AttendanceRecord {
	employeeID := stringify(item[fieldEmployeeID])
	if employeeID == "" {
		employeeID = stringify(item[fieldEmployeeIDLegacy])
	}
	return models.AttendanceRecord{
		ID:           stringify(item[fieldID]),
		EmployeeID:   employeeID,
		EmployeeName: stringify(item[fieldEmployeeName]),
		Date:         stringify(item[fieldDate]),
		Status:       models.AttendanceStatus(stringify(item[fieldStatus])),
	}
}

func stringify(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case json.Number:
		return value.String()
	default:
		return ""
	}
}
