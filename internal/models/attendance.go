package models

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "Present"
	AttendanceStatusAbsent  AttendanceStatus = "Absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a single cached attendance mark. The JSON shape is the
// durable slot schema: dates are ISO 8601 strings, EmployeeName is captured
// once at insertion time and never re-derived, and Pending is true only while
// an optimistic record awaits server confirmation.
type AttendanceRecord struct {
	ID           string           `json:"id"`
	EmployeeID   string           `json:"employeeId"`
	EmployeeName string           `json:"employeeName"`
	Date         string           `json:"date"`
	Status       AttendanceStatus `json:"status"`
	Pending      bool             `json:"pending,omitempty"`
}
