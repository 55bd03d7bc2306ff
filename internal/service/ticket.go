package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cleanexit/cleanexit/internal/metrics"
	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/repository"
)

// emailRegex accepts anything shaped like local@domain.tld.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	maxNameLength    = 200
	maxEmailLength   = 254
	maxSubjectLength = 200
	maxMessageLength = 5000
)

// TicketService accepts support requests.
type TicketService struct {
	store   TicketStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewTicketService creates a new TicketService.
func NewTicketService(store TicketStore, recorder metrics.Recorder) *TicketService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TicketService{store: store, metrics: recorder, now: time.Now}
}

// CreateTicketInput defines input for opening a ticket. UserID is optional.
type CreateTicketInput struct {
	Name    string
	Email   string
	Subject string
	Message string
	UserID  string
}

// Create validates and stores a new ticket with status open.
func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*model.Ticket, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)

	if err := validateTicket(input); err != nil {
		return nil, err
	}

	var userID *string
	if input.UserID != "" && input.UserID != model.GuestUserID {
		id := input.UserID
		userID = &id
	}

	var (
		ticket *model.Ticket
		err    error
	)
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		now := s.now().UTC()
		ticket = &model.Ticket{
			ID:        newID(),
			Reference: newTicketReference(now),
			UserID:    userID,
			Name:      input.Name,
			Email:     input.Email,
			Subject:   input.Subject,
			Message:   input.Message,
			Status:    model.TicketOpen,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err = s.store.CreateTicket(ctx, ticket)
		if !errors.Is(err, repository.ErrTicketReferenceExists) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrTicketReferenceExists) {
			err = fmt.Errorf("no unique ticket reference after %d attempts: %w", maxIDRetries, err)
		}
		return nil, storageErr("create ticket", err)
	}

	s.metrics.IncTicketCreated()
	return ticket, nil
}

// GetByReference returns a ticket by its public reference.
func (s *TicketService) GetByReference(ctx context.Context, reference string) (*model.Ticket, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrTicketNotFound
	}

	ticket, err := s.store.GetTicketByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, storageErr("get ticket", err)
	}
	return ticket, nil
}

func validateTicket(input CreateTicketInput) error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"name", input.Name, maxNameLength},
		{"email", input.Email, maxEmailLength},
		{"subject", input.Subject, maxSubjectLength},
		{"message", input.Message, maxMessageLength},
	}

	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return invalid("Missing required fields: %s", strings.Join(missing, ", "))
	}

	if !emailRegex.MatchString(input.Email) {
		return invalid("Invalid email format")
	}

	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			return invalid("Field %s must be at most %d characters", f.name, f.max)
		}
	}
	return nil
}
