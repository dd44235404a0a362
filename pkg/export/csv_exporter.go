package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/teamdesk/console/internal/models"
)

var columns = []string{"Employee", "Employee ID", "Date", "Status", "State"}

// CSV renders the attendance log, one row per record in the given order.
func CSV(records []models.AttendanceRecord) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		if err := writer.Write(row(rec)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func row(rec models.AttendanceRecord) []string {
	state := "Saved"
	if rec.Pending {
		state = "Pending"
	}
	return []string{rec.EmployeeName, rec.EmployeeID, rec.Date, string(rec.Status), state}
}
