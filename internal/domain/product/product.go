package product

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for sale. Price is in
// integer yen.
type Product struct {
	ID    int64
	Code  string
	Name  string
	Price int64
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)
}
