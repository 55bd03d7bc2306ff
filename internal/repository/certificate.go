package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cleanexit/cleanexit/internal/model"
)

// Common errors for certificate repository operations.
var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCertificateIDExists = errors.New("certificate id already exists")
	ErrInvalidCursor       = errors.New("invalid pagination cursor")
)

// PaginationCursor represents decoded cursor for pagination.
type PaginationCursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

const certificateColumns = `id, user_id, certificate_id, device_type, standard, signature, wiped_at, created_at`

// CreateCertificate persists a certificate. Guest certificates are inserted
// as-is. For a user-owned certificate the user's active subscription is
// provisioned from p when missing, one device of quota is consumed and the
// certificate is inserted, all in one transaction. ErrQuotaExceeded is
// returned, and nothing is written, when a capped plan has no devices left.
// The updated subscription is returned for user-owned certificates.
func (r *Repository) CreateCertificate(ctx context.Context, cert *model.Certificate, p Provision) (*model.Subscription, error) {
	if cert.IsGuest() {
		if err := insertCertificate(ctx, r.pool, cert); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var sub *model.Subscription
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := provisionSubscription(ctx, tx, cert.UserID, p); err != nil {
			return err
		}

		var err error
		sub, err = consumeDevice(ctx, tx, cert.UserID)
		if err != nil {
			return err
		}

		return insertCertificate(ctx, tx, cert)
	})
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// consumeDevice increments devices_used on the active subscription. The
// guarded update serializes concurrent issuers on the row lock.
func consumeDevice(ctx context.Context, q dbtx, userID string) (*model.Subscription, error) {
	query := `
		WITH consumed AS (
			UPDATE user_subscriptions
			SET devices_used = devices_used + 1, updated_at = NOW()
			WHERE user_id = $1
			  AND status = 'active'
			  AND (devices_limit < 0 OR devices_used < devices_limit)
			RETURNING id, user_id, plan_id, devices_limit, devices_used, status, created_at, updated_at
		)
		SELECT s.id, s.user_id, s.plan_id, s.devices_limit, s.devices_used, s.status, s.created_at, s.updated_at,
		       p.id, p.name, p.price, p.currency, p.devices_limit, p.features, p.sort_order
		FROM consumed s
		JOIN subscription_plans p ON p.id = s.plan_id
	`

	sub, err := scanSubscription(q.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuotaExceeded
		}
		if isCheckViolation(err, "user_subscriptions_quota") {
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("failed to consume device quota: %w", err)
	}
	return sub, nil
}

func insertCertificate(ctx context.Context, q dbtx, cert *model.Certificate) error {
	query := `
		INSERT INTO certificates (id, user_id, certificate_id, device_type, standard, signature, wiped_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q.Exec(ctx, query,
		cert.ID,
		nullableUserID(cert),
		cert.CertificateID,
		cert.DeviceType,
		cert.Standard,
		cert.Signature,
		cert.WipedAt,
		cert.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "certificates_certificate_id_key") {
			return ErrCertificateIDExists
		}
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	return nil
}

// GetCertificateByCertificateID retrieves a certificate by its business key.
func (r *Repository) GetCertificateByCertificateID(ctx context.Context, certificateID string) (*model.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE certificate_id = $1`

	cert, err := scanCertificate(r.pool.QueryRow(ctx, query, certificateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return cert, nil
}

// ListCertificatesByUser retrieves a user's certificates, newest first.
func (r *Repository) ListCertificatesByUser(ctx context.Context, userID, cursor string, limit int) ([]*model.Certificate, string, error) {
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1) // Fetch one extra to determine hasMore

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list certificates: %w", err)
	}
	defer rows.Close()

	var certs []*model.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating certificates: %w", err)
	}

	var nextCursor string
	if len(certs) > limit {
		certs = certs[:limit]
		last := certs[len(certs)-1]
		nextCursor = EncodeCursor(&PaginationCursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}

	return certs, nextCursor, nil
}

func scanCertificate(row pgx.Row) (*model.Certificate, error) {
	var cert model.Certificate
	var userID *string
	err := row.Scan(
		&cert.ID,
		&userID,
		&cert.CertificateID,
		&cert.DeviceType,
		&cert.Standard,
		&cert.Signature,
		&cert.WipedAt,
		&cert.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	cert.UserID = model.GuestUserID
	if userID != nil {
		cert.UserID = *userID
	}
	return &cert, nil
}

func nullableUserID(cert *model.Certificate) *string {
	if cert.IsGuest() {
		return nil
	}
	return &cert.UserID
}

// EncodeCursor encodes pagination cursor to base64.
func EncodeCursor(cursor *PaginationCursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes base64 pagination cursor.
func decodeCursor(s string) (*PaginationCursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	var cursor PaginationCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}

// DecodeCursor exposes cursor decoding to alternative store implementations.
func DecodeCursor(s string) (*PaginationCursor, error) {
	c, err := decodeCursor(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return c, nil
}
