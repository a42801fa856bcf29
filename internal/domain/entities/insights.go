package entities

// InactiveCustomer is a customer ranked by low appointment frequency
type InactiveCustomer struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Surname           string  `json:"surname"`
	TotalAppointments int     `json:"total_appointments"`
	LastAppointment   *string `json:"last_appointment,omitempty"`
}

// InactiveCustomers is the inactivity insight over a rolling window
type InactiveCustomers struct {
	Period         PeriodRange        `json:"period"`
	Threshold      int                `json:"threshold"`
	TotalCustomers int                `json:"total_customers"`
	InactiveCount  int                `json:"inactive_count"`
	Customers      []InactiveCustomer `json:"customers"`
}
