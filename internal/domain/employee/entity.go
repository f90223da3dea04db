package employee

import "time"

// Employee is the read-only projection of the master-data employee record
// that the attendance pipeline needs. The full entity is owned by the
// surrounding HR product.
type Employee struct {
	ID           string
	EmployeeCode string
	FullName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Joined master-data names, for report rows
	DepartmentName  *string
	DesignationName *string
	BranchName      *string
}
