package employee

import (
	"context"

	"github.com/go-faster/errors"
)

// GuestCode is the well-known fallback actor used when no employee code is
// presented. It is seeded at provisioning time and must always exist.
const GuestCode = "GUEST00001"

// ErrNotFound is returned when a requested employee does not exist.
var ErrNotFound = errors.New("employee not found")

// Employee represents a store employee who can record transactions.
type Employee struct {
	Code   string
	Name   string
	Role   string
	Active bool
}

// Repository defines read operations for employees.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*Employee, error)
}
