package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer represents a loyalty program member.
type Customer struct {
	ID        int64
	Email     string
	Name      string
	Point     int64
	Active    bool
	SyncedAt  *time.Time
	CreatedAt time.Time
}

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) (int64, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	UpdatePoints(ctx context.Context, id int64, points int64) (*Customer, error)
}
