package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moritamo/pos-backend/internal/domain/employee"
)

const getEmployeeByCodeSQL = `SELECT enp_cd, name, COALESCE(role, ''), is_active
	FROM employees WHERE enp_cd = $1`

var _ employee.Repository = (*EmployeeRepository)(nil)

// EmployeeRepository implements employee.Repository backed by PostgreSQL.
type EmployeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository returns an EmployeeRepository that uses the given pool.
func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// GetByCode looks up an employee by code. Returns employee.ErrNotFound
// when no matching employee exists.
func (r *EmployeeRepository) GetByCode(ctx context.Context, code string) (*employee.Employee, error) {
	var e employee.Employee
	err := r.pool.QueryRow(ctx, getEmployeeByCodeSQL, code).Scan(
		&e.Code, &e.Name, &e.Role, &e.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrNotFound
		}
		return nil, fmt.Errorf("getting employee %q: %w", code, err)
	}
	return &e, nil
}
