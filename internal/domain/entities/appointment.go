package entities

import "time"

// CancelReason represents why an appointment was cancelled
type CancelReason string

const (
	CancelReasonNone           CancelReason = ""
	CancelReasonCustomerCancel CancelReason = "CUSTOMER_CANCEL"
	CancelReasonNoReason       CancelReason = "NO_REASON"
)

// ParseCancelReason maps the spellings found in the agenda store. Only
// "CUSTOMER_CANCEL" and "CustomerCancel" denote a customer cancellation;
// any other value is kept as is.
func ParseCancelReason(raw string) CancelReason {
	switch raw {
	case "":
		return CancelReasonNone
	case "CUSTOMER_CANCEL", "CustomerCancel":
		return CancelReasonCustomerCancel
	case "NO_REASON", "NoReason":
		return CancelReasonNoReason
	default:
		return CancelReason(raw)
	}
}

// AppointmentRecord is one appointment-type agenda entry as read from the
// store. Records are read-only for the analytics core.
type AppointmentRecord struct {
	ID           string       `json:"id" db:"id"`
	AttendeeID   string       `json:"attendee_id" db:"attendee_id"`
	Start        time.Time    `json:"start" db:"start_at"`
	End          time.Time    `json:"end" db:"end_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	IsCancelled  bool         `json:"is_cancelled" db:"is_cancelled"`
	CancelReason CancelReason `json:"cancel_reason,omitempty" db:"cancel_reason"`
	Services     []string     `json:"services" db:"services"`
}

// IsCustomerCancellation reports whether the record counts toward the
// cancellation rate: cancelled and cancelled by the customer.
func (a AppointmentRecord) IsCustomerCancellation() bool {
	return a.IsCancelled && a.CancelReason == CancelReasonCustomerCancel
}

// Customer is a customer as listed in the customer store
type Customer struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Surname string `json:"surname" db:"surname"`
}
