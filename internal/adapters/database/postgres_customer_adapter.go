package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/domain/repositories"
	"github.com/beaesthetic/analytics/internal/infrastructure/clients/postgres"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

// PostgresCustomerAdapter reads the customers table
type PostgresCustomerAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostgresCustomerAdapter creates a new Postgres customer adapter
func NewPostgresCustomerAdapter(client *postgres.Client) repositories.CustomerRepository {
	return &PostgresCustomerAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// FindAll returns every customer ordered by id
func (a *PostgresCustomerAdapter) FindAll(ctx context.Context) ([]entities.Customer, error) {
	query, args, err := a.db.From(customersCollection).
		Select("id", "name", "surname").
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build customers query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to query customers", err)
	}
	defer rows.Close()

	var customers []entities.Customer
	for rows.Next() {
		var (
			c       entities.Customer
			name    sql.NullString
			surname sql.NullString
		)
		if err := rows.Scan(&c.ID, &name, &surname); err != nil {
			return nil, apperrors.NewExternalError("failed to scan customer row", err)
		}
		c.Name = name.String
		c.Surname = surname.String
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read customer rows", err)
	}

	return customers, nil
}
