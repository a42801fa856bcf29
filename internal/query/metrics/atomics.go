package metrics

import "github.com/beaesthetic/analytics/internal/domain/entities"

// Atomic names shared by the standard metric derivations
const (
	AtomicTotal         = "_total"
	AtomicCancelled     = "_cancelled"
	AtomicServicesTotal = "_services_total"
)

// Atomic is a base aggregation computed at most once per group
type Atomic struct {
	Name      string
	Aggregate func(rows []entities.AppointmentRecord) float64
}

// DefaultAtomics returns the atomic catalog
func DefaultAtomics() []Atomic {
	return []Atomic{
		{Name: AtomicTotal, Aggregate: countRows},
		{Name: AtomicCancelled, Aggregate: countCustomerCancellations},
		{Name: AtomicServicesTotal, Aggregate: countServices},
	}
}

func countRows(rows []entities.AppointmentRecord) float64 {
	return float64(len(rows))
}

func countCustomerCancellations(rows []entities.AppointmentRecord) float64 {
	n := 0
	for i := range rows {
		if rows[i].IsCustomerCancellation() {
			n++
		}
	}
	return float64(n)
}

func countServices(rows []entities.AppointmentRecord) float64 {
	n := 0
	for i := range rows {
		n += len(rows[i].Services)
	}
	return float64(n)
}
