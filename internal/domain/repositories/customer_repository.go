package repositories

import (
	"context"

	"github.com/beaesthetic/analytics/internal/domain/entities"
)

// CustomerRepository reads the customer registry
type CustomerRepository interface {
	// FindAll returns every customer
	FindAll(ctx context.Context) ([]entities.Customer, error)
}
