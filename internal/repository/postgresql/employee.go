package postgresql

import (
	"context"
	"fmt"

	"github.com/clockwise-hr/attendance-backend-go/internal/domain/employee"
	"github.com/clockwise-hr/attendance-backend-go/internal/pkg/database"
)

type employeeDirectory struct {
	db *database.DB
}

// ListActive implements employee.Directory.
func (e *employeeDirectory) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT e.id, e.employee_code, e.full_name, e.is_active,
		       e.created_at, e.updated_at,
		       d.name  AS department_name,
		       g.title AS designation_title,
		       b.name  AS branch_name
		FROM employees e
		LEFT JOIN departments d  ON d.id = e.department_id
		LEFT JOIN designations g ON g.id = e.designation_id
		LEFT JOIN branches b     ON b.id = e.branch_id
		WHERE e.is_active = true
		ORDER BY e.full_name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var emp employee.Employee
		err := rows.Scan(
			&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.IsActive,
			&emp.CreatedAt, &emp.UpdatedAt,
			&emp.DepartmentName, &emp.DesignationName, &emp.BranchName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}

func NewEmployeeDirectory(db *database.DB) employee.Directory {
	return &employeeDirectory{db: db}
}
