package models

// Employee mirrors the remote HR backend's employee resource. The set is
// fetched once per session and treated as an immutable snapshot; EmployeeID
// is the business key attendance records reference, ID the storage identity.
type Employee struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}
