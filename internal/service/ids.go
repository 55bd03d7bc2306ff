package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	upperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	certificateSuffixLen = 9
	signatureLen         = 10
	ticketSuffixLen      = 6
	maxIDRetries         = 3
)

// newID returns a ULID for entity primary keys.
func newID() string {
	return ulid.Make().String()
}

// newCertificateID returns CERT-<unix ms>-<9 upper alphanumerics>.
func newCertificateID(now time.Time) string {
	return fmt.Sprintf("CERT-%d-%s", now.UnixMilli(), randomUpper(certificateSuffixLen))
}

// newSignature returns the cosmetic signature printed on certificates.
func newSignature() string {
	return "SIG-" + randomUpper(signatureLen)
}

// newTicketReference returns TICKET-<unix ms>-<6 upper alphanumerics>.
func newTicketReference(now time.Time) string {
	return fmt.Sprintf("TICKET-%d-%s", now.UnixMilli(), randomUpper(ticketSuffixLen))
}

// randomUpper generates n characters from upperAlnum using crypto/rand.
func randomUpper(n int) string {
	b := make([]byte, n)
	for i := range b {
		idx, err := cryptoRandInt(len(upperAlnum))
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(fmt.Sprintf("crypto/rand: %v", err))
		}
		b[i] = upperAlnum[idx]
	}
	return string(b)
}

// cryptoRandInt returns a cryptographically secure random integer in [0, max).
func cryptoRandInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
