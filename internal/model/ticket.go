package model

import "time"

// TicketStatus represents where a ticket is in the support workflow.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// IsValid checks if the status is one of the known values.
func (s TicketStatus) IsValid() bool {
	return s == TicketOpen || s == TicketInProgress || s == TicketClosed
}

// Ticket is a contact-form submission.
type Ticket struct {
	ID        string       `json:"id"`
	Reference string       `json:"reference"`
	UserID    *string      `json:"user_id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Subject   string       `json:"subject"`
	Message   string       `json:"message"`
	Status    TicketStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
