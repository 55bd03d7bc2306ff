// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/cleanexit/cleanexit/internal/model"
)

// LoginRequest represents the request body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
}

// CreateSessionRequest represents the request body for POST /api/sessions.
type CreateSessionRequest struct {
	Code string `json:"code"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse is returned by login and OAuth session creation.
type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// MeResponse is returned by GET /api/users/me.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// OAuthRedirectResponse carries the provider login URL.
type OAuthRedirectResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

// CreateCertificateRequest represents the request body for POST /api/certificate.
type CreateCertificateRequest struct {
	DeviceType string `json:"deviceType"`
	UserID     string `json:"userId,omitempty"`
}

// CertificateResponse represents a certificate in API responses.
type CertificateResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CertificateID string    `json:"certificate_id"`
	DeviceType    string    `json:"device_type"`
	Standard      string    `json:"standard"`
	Signature     string    `json:"signature"`
	WipedAt       time.Time `json:"wiped_at"`
	CreatedAt     time.Time `json:"created_at"`
	PDFURL        string    `json:"pdf_url"`
}

// IssueCertificateResponse is returned by POST /api/certificate. Subscription
// is present for signed-in requesters.
type IssueCertificateResponse struct {
	Certificate  CertificateResponse   `json:"certificate"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
}

// CertificateListResponse represents a page of certificates.
type CertificateListResponse struct {
	Certificates []CertificateResponse `json:"certificates"`
	Pagination   Pagination            `json:"pagination"`
}

// Pagination provides cursor-based pagination info.
type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// DownloadURLResponse carries a presigned archive link.
type DownloadURLResponse struct {
	CertificateID string `json:"certificate_id"`
	URL           string `json:"url"`
}

// SubscriptionResponse is the dashboard view of a subscription.
// DevicesRemaining is null for unlimited plans.
type SubscriptionResponse struct {
	PlanName         string `json:"plan_name"`
	Price            int    `json:"price"`
	Currency         string `json:"currency"`
	DevicesLimit     int    `json:"devices_limit"`
	DevicesUsed      int    `json:"devices_used"`
	DevicesRemaining *int   `json:"devices_remaining"`
	Unlimited        bool   `json:"unlimited"`
	Status           string `json:"status"`
}

// PlanResponse represents a plan in the catalog.
type PlanResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        int      `json:"price"`
	Currency     string   `json:"currency"`
	DevicesLimit int      `json:"devices_limit"`
	Features     []string `json:"features"`
}

// CreateTicketRequest represents the request body for POST /api/support/ticket.
type CreateTicketRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

// TicketResponse is returned to the submitter of a ticket.
type TicketResponse struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketStatusResponse is the public status view of a ticket. It leaves out
// contact details.
type TicketStatusResponse struct {
	Reference string    `json:"reference"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatRequest represents the request body for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant's answer.
type ChatResponse struct {
	Response string `json:"response"`
	Topic    string `json:"topic"`
	User     string `json:"user"`
}

// ToUserResponse converts a model.User to UserResponse.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToCertificateResponse converts a model.Certificate to CertificateResponse.
func ToCertificateResponse(c *model.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:            c.ID,
		UserID:        certificateUserID(c),
		CertificateID: c.CertificateID,
		DeviceType:    c.DeviceType,
		Standard:      c.Standard,
		Signature:     c.Signature,
		WipedAt:       c.WipedAt,
		CreatedAt:     c.CreatedAt,
		PDFURL:        "/api/certificates/" + c.CertificateID + "/pdf",
	}
}

// certificateUserID reports guest certificates as model.GuestUserID.
func certificateUserID(c *model.Certificate) string {
	if c.IsGuest() {
		return model.GuestUserID
	}
	return c.UserID
}

// ToCertificateListResponse converts a page of certificates.
func ToCertificateListResponse(certs []*model.Certificate, nextCursor string, hasMore bool) CertificateListResponse {
	items := make([]CertificateResponse, len(certs))
	for i, c := range certs {
		items[i] = ToCertificateResponse(c)
	}
	return CertificateListResponse{
		Certificates: items,
		Pagination:   Pagination{NextCursor: nextCursor, HasMore: hasMore},
	}
}

// ToSubscriptionResponse converts a model.Subscription to SubscriptionResponse.
func ToSubscriptionResponse(s *model.Subscription) SubscriptionResponse {
	resp := SubscriptionResponse{
		DevicesLimit: s.DevicesLimit,
		DevicesUsed:  s.DevicesUsed,
		Unlimited:    s.IsUnlimited(),
		Status:       string(s.Status),
	}
	if !resp.Unlimited {
		remaining := s.DevicesRemaining()
		resp.DevicesRemaining = &remaining
	}
	if s.Plan != nil {
		resp.PlanName = s.Plan.Name
		resp.Price = s.Plan.Price
		resp.Currency = s.Plan.Currency
	}
	return resp
}

// ToPlanResponses converts the plan catalog.
func ToPlanResponses(plans []*model.Plan) []PlanResponse {
	out := make([]PlanResponse, len(plans))
	for i, p := range plans {
		features := p.Features
		if features == nil {
			features = []string{}
		}
		out[i] = PlanResponse{
			ID:           p.ID,
			Name:         p.Name,
			Price:        p.Price,
			Currency:     p.Currency,
			DevicesLimit: p.DevicesLimit,
			Features:     features,
		}
	}
	return out
}

// ToTicketResponse converts a model.Ticket to TicketResponse.
func ToTicketResponse(t *model.Ticket) TicketResponse {
	return TicketResponse{
		ID:        t.ID,
		Reference: t.Reference,
		Name:      t.Name,
		Email:     t.Email,
		Subject:   t.Subject,
		Message:   t.Message,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

// ToTicketStatusResponse converts a model.Ticket to its public status view.
func ToTicketStatusResponse(t *model.Ticket) TicketStatusResponse {
	return TicketStatusResponse{
		Reference: t.Reference,
		Subject:   t.Subject,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
