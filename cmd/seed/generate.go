package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	seedServices = []string{"laser", "peeling", "manicure", "pedicure", "massage", "facial", "waxing"}
	firstNames   = []string{"Anna", "Luca", "Giulia", "Marco", "Sara", "Paolo", "Elena", "Davide"}
	lastNames    = []string{"Rossi", "Bianchi", "Verdi", "Russo", "Ferrari", "Esposito", "Romano"}
)

// dataset is a generated batch of customers and agenda entries
type dataset struct {
	customers []bson.M
	agenda    []bson.M
	earliest  time.Time
}

// generate builds a reproducible dataset of appointments created over the
// months before until. Every tenth entry is a non-appointment block so the
// type filter has something to skip.
func generate(seed uint64, customers, months int, until time.Time) dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	until = until.UTC().Truncate(time.Hour)
	from := until.AddDate(0, -months, 0)
	span := until.Sub(from)

	ds := dataset{earliest: until}
	ids := make([]string, customers)
	for i := range customers {
		ids[i] = fmt.Sprintf("cust-%04d", i+1)
		ds.customers = append(ds.customers, bson.M{
			"_id":     ids[i],
			"name":    firstNames[rng.IntN(len(firstNames))],
			"surname": lastNames[rng.IntN(len(lastNames))],
		})
	}
	if customers == 0 {
		return ds
	}

	// Activity is skewed so a handful of customers fall below the 25th percentile.
	entries := customers * months * 2
	for i := range entries {
		created := from.Add(time.Duration(rng.Int64N(int64(span)))).Truncate(time.Minute)
		if created.Before(ds.earliest) {
			ds.earliest = created
		}
		start := created.Add(time.Duration(1+rng.IntN(14*24)) * time.Hour)
		attendee := ids[int(float64(customers)*rng.Float64()*rng.Float64())]

		entryType := "appointment"
		if i%10 == 9 {
			entryType = "block"
		}

		services := bson.A{}
		for range 1 + rng.IntN(3) {
			services = append(services, seedServices[rng.IntN(len(seedServices))])
		}

		doc := bson.M{
			"_id":         fmt.Sprintf("agenda-%06d", i+1),
			"start":       start,
			"end":         start.Add(time.Duration(30+15*rng.IntN(4)) * time.Minute),
			"createdAt":   created,
			"isCancelled": false,
			"attendee":    bson.M{"id": attendee},
			"data":        bson.M{"type": entryType, "services": services},
		}
		switch n := rng.IntN(100); {
		case n < 12:
			doc["isCancelled"] = true
			doc["cancelReason"] = "CUSTOMER_CANCEL"
		case n < 15:
			doc["isCancelled"] = true
			doc["cancelReason"] = "NO_REASON"
		}
		ds.agenda = append(ds.agenda, doc)
	}
	return ds
}
