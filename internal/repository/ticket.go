package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cleanexit/cleanexit/internal/model"
)

// Common errors for support ticket repository operations.
var (
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTicketReferenceExists = errors.New("ticket reference already exists")
)

// CreateTicket inserts a new support ticket.
func (r *Repository) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	query := `
		INSERT INTO support_tickets (id, reference, user_id, name, email, subject, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Reference,
		ticket.UserID,
		ticket.Name,
		ticket.Email,
		ticket.Subject,
		ticket.Message,
		ticket.Status,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "support_tickets_reference_key") {
			return ErrTicketReferenceExists
		}
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

// GetTicketByReference retrieves a ticket by its public reference.
func (r *Repository) GetTicketByReference(ctx context.Context, reference string) (*model.Ticket, error) {
	query := `
		SELECT id, reference, user_id, name, email, subject, message, status, created_at, updated_at
		FROM support_tickets
		WHERE reference = $1
	`

	var t model.Ticket
	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&t.ID,
		&t.Reference,
		&t.UserID,
		&t.Name,
		&t.Email,
		&t.Subject,
		&t.Message,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return &t, nil
}
