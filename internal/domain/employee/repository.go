package employee

import "context"

// Directory is the employee-directory collaborator consumed by the compute
// pipeline. It never writes employee data.
type Directory interface {
	ListActive(ctx context.Context) ([]Employee, error)
}
