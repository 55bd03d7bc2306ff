package model

import "time"

// GuestUserID stands in for certificates issued without a signed-in user.
const GuestUserID = "guest"

// DefaultStandard is the erasure standard certificates attest to.
const DefaultStandard = "NIST 800-88"

// Certificate records a completed wipe. It is immutable once issued.
type Certificate struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CertificateID string    `json:"certificate_id"`
	DeviceType    string    `json:"device_type"`
	Standard      string    `json:"standard"`
	Signature     string    `json:"signature"`
	WipedAt       time.Time `json:"wiped_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// IsGuest reports whether the certificate has no owning user.
func (c *Certificate) IsGuest() bool {
	return c.UserID == "" || c.UserID == GuestUserID
}

// Holder returns the name printed on the certificate.
func (c *Certificate) Holder() string {
	if c.IsGuest() {
		return "Guest"
	}
	return c.UserID
}

// Filename returns the download name of the rendered certificate.
func (c *Certificate) Filename() string {
	return c.CertificateID + ".pdf"
}
