package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/domain/repositories"
	"github.com/beaesthetic/analytics/internal/infrastructure/clients/postgres"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

// PostgresAppointmentAdapter reads appointments from a relational agenda replica
type PostgresAppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostgresAppointmentAdapter creates a new Postgres appointment adapter
func NewPostgresAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &PostgresAppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// FindByCreatedRange returns appointment entries created in [start, end)
func (a *PostgresAppointmentAdapter) FindByCreatedRange(ctx context.Context, start, end time.Time) ([]entities.AppointmentRecord, error) {
	query, args, err := a.db.From(agendaCollection).
		Prepared(true).
		Select("id", "attendee_id", "start_at", "end_at", "created_at", "is_cancelled", "cancel_reason", "services").
		Where(
			goqu.C("created_at").Gte(start.UTC()),
			goqu.C("created_at").Lt(end.UTC()),
			goqu.C("entry_type").Eq(appointmentType),
		).
		Order(goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build agenda query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to query agenda", err)
	}
	defer rows.Close()

	var records []entities.AppointmentRecord
	for rows.Next() {
		var (
			r            entities.AppointmentRecord
			attendeeID   sql.NullString
			cancelReason sql.NullString
			services     []string
		)
		if err := rows.Scan(&r.ID, &attendeeID, &r.Start, &r.End, &r.CreatedAt, &r.IsCancelled, &cancelReason, pq.Array(&services)); err != nil {
			return nil, apperrors.NewExternalError("failed to scan agenda row", err)
		}
		r.AttendeeID = attendeeID.String
		r.CancelReason = entities.ParseCancelReason(cancelReason.String)
		r.Services = services
		r.Start = r.Start.UTC()
		r.End = r.End.UTC()
		r.CreatedAt = r.CreatedAt.UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to read agenda rows", err)
	}

	return records, nil
}
