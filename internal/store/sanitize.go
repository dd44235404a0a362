package store

import "encoding/json"

// RawRecord is an attendance entry as it comes off the durable slot: untyped,
// because the slot contents may have been written by older versions or edited
// out-of-band.
type RawRecord map[string]interface{}

// Slot field names. The employee reference has two historical spellings; the
// camel-cased one is canonical.
const (
	fieldID               = "id"
	fieldEmployeeID       = "employeeId"
	fieldEmployeeIDLegacy = "employee_id"
	fieldEmployeeName     = "employeeName"
	fieldDate             = "date"
	fieldStatus           = "status"
)

// Sanitize admits only records carrying a non-empty employee reference (either
// spelling), date and status. It is a pure filter: surviving records pass
// through untouched and in order, so running it twice yields the same result.
// Malformed entries are dropped, never repaired.
func Sanitize(items []RawRecord) []RawRecord {
	out := make([]RawRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if !present(item[fieldEmployeeID]) && !present(item[fieldEmployeeIDLegacy]) {
			continue
		}
		if !present(item[fieldDate]) || !present(item[fieldStatus]) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// present reports whether a decoded JSON value is a usable, non-empty field.
// Only string and number forms count: anything else (booleans, objects,
// arrays) has no canonical record representation, so admitting it would leave
// a record that fails this same predicate after mapping.
func present(v interface{}) bool {
	switch value := v.(type) {
	case string:
		return value != ""
	case json.Number:
		return value.String() != "" && value.String() != "0"
	case float64:
		return value != 0
	default:
		return false
	}
}
