package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/domain/repositories"
	mongoclient "github.com/beaesthetic/analytics/internal/infrastructure/clients/mongo"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

const (
	agendaCollection    = "agenda"
	customersCollection = "customers"
	appointmentType     = "appointment"
)

// agendaDocument is the subset of an agenda entry the analytics read
type agendaDocument struct {
	ID           any       `bson:"_id"`
	Start        time.Time `bson:"start"`
	End          time.Time `bson:"end"`
	CreatedAt    time.Time `bson:"createdAt"`
	IsCancelled  bool      `bson:"isCancelled"`
	CancelReason string    `bson:"cancelReason"`
	Attendee     struct {
		ID any `bson:"id"`
	} `bson:"attendee"`
	Data struct {
		Type     string   `bson:"type"`
		Services []string `bson:"services"`
	} `bson:"data"`
}

var agendaProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "start", Value: 1},
	{Key: "end", Value: 1},
	{Key: "createdAt", Value: 1},
	{Key: "isCancelled", Value: 1},
	{Key: "cancelReason", Value: 1},
	{Key: "attendee.id", Value: 1},
	{Key: "data.type", Value: 1},
	{Key: "data.services", Value: 1},
}

// MongoAppointmentAdapter reads appointments from the agenda collection
type MongoAppointmentAdapter struct {
	collection *mongo.Collection
}

// NewMongoAppointmentAdapter creates a new Mongo appointment adapter
func NewMongoAppointmentAdapter(client *mongoclient.Client) repositories.AppointmentRepository {
	return &MongoAppointmentAdapter{collection: client.Collection(agendaCollection)}
}

// FindByCreatedRange returns appointment entries created in [start, end)
func (a *MongoAppointmentAdapter) FindByCreatedRange(ctx context.Context, start, end time.Time) ([]entities.AppointmentRecord, error) {
	filter := appointmentFilter(start, end)
	opts := options.Find().SetProjection(agendaProjection)

	cur, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to query agenda", err)
	}

	var docs []agendaDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.NewExternalError("failed to read agenda", err)
	}

	records := make([]entities.AppointmentRecord, 0, len(docs))
	for i := range docs {
		records = append(records, docs[i].toRecord())
	}
	return records, nil
}

func appointmentFilter(start, end time.Time) bson.D {
	return bson.D{
		{Key: "createdAt", Value: bson.D{
			{Key: "$gte", Value: start.UTC()},
			{Key: "$lt", Value: end.UTC()},
		}},
		{Key: "data.type", Value: appointmentType},
	}
}

func (d agendaDocument) toRecord() entities.AppointmentRecord {
	return entities.AppointmentRecord{
		ID:           idString(d.ID),
		AttendeeID:   idString(d.Attendee.ID),
		Start:        d.Start.UTC(),
		End:          d.End.UTC(),
		CreatedAt:    d.CreatedAt.UTC(),
		IsCancelled:  d.IsCancelled,
		CancelReason: entities.ParseCancelReason(d.CancelReason),
		Services:     d.Data.Services,
	}
}

// idString normalizes ObjectID and string identifiers
func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
