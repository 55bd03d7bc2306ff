package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cleanexit/cleanexit/internal/certpdf"
	"github.com/cleanexit/cleanexit/internal/metrics"
	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/repository"
)

const (
	maxDeviceTypeLength = 100
	defaultPageLimit    = 20
	maxPageLimit        = 100
)

// Archiver keeps a copy of each rendered certificate outside the database.
type Archiver interface {
	Put(ctx context.Context, name string, pdf []byte) error
	PresignGet(ctx context.Context, name string) (string, error)
}

// CertificateService issues, looks up and renders certificates of erasure.
type CertificateService struct {
	store    CertificateStore
	archive  Archiver
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
	standard string
}

// NewCertificateService creates a new CertificateService. archive may be nil.
func NewCertificateService(store CertificateStore, archive Archiver, recorder metrics.Recorder, logger *slog.Logger) *CertificateService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CertificateService{
		store:    store,
		archive:  archive,
		metrics:  recorder,
		logger:   logger,
		now:      time.Now,
		standard: model.DefaultStandard,
	}
}

// IssueInput defines input for issuing a certificate. An empty UserID issues
// a guest certificate.
type IssueInput struct {
	DeviceType string
	UserID     string
}

// IssueResult is the new certificate and, for signed-in users, the
// subscription after the device was counted.
type IssueResult struct {
	Certificate  *model.Certificate
	Subscription *model.Subscription
}

// Issue creates a certificate for a completed wipe. For a signed-in user one
// device of plan quota is consumed in the same transaction; ErrQuotaExceeded
// is returned when none is left.
func (s *CertificateService) Issue(ctx context.Context, input IssueInput) (*IssueResult, error) {
	deviceType := strings.TrimSpace(input.DeviceType)
	if deviceType == "" {
		return nil, invalid("Missing required fields: deviceType")
	}
	if utf8.RuneCountInString(deviceType) > maxDeviceTypeLength {
		return nil, invalid("Device type must be at most %d characters", maxDeviceTypeLength)
	}

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		userID = model.GuestUserID
	}

	var (
		cert *model.Certificate
		sub  *model.Subscription
		err  error
	)
	for attempt := 0; attempt < maxIDRetries; attempt++ {
		now := s.now().UTC()
		cert = &model.Certificate{
			ID:            newID(),
			UserID:        userID,
			CertificateID: newCertificateID(now),
			DeviceType:    deviceType,
			Standard:      s.standard,
			Signature:     newSignature(),
			WipedAt:       now,
			CreatedAt:     now,
		}

		sub, err = s.store.CreateCertificate(ctx, cert, repository.Provision{
			SubscriptionID: newID(),
			PlanName:       model.PlanStarter,
		})
		if !errors.Is(err, repository.ErrCertificateIDExists) {
			break
		}
	}

	if err != nil {
		switch {
		case errors.Is(err, repository.ErrQuotaExceeded):
			s.metrics.IncQuotaRejected()
			return nil, ErrQuotaExceeded
		case errors.Is(err, repository.ErrCertificateIDExists):
			return nil, storageErr("create certificate", fmt.Errorf("no unique certificate id after %d attempts: %w", maxIDRetries, err))
		default:
			return nil, storageErr("create certificate", err)
		}
	}

	s.metrics.IncCertificateIssued(cert.IsGuest())
	s.archiveCertificate(ctx, cert)

	return &IssueResult{Certificate: cert, Subscription: sub}, nil
}

// archiveCertificate uploads the rendered PDF. The certificate is already
// committed, so a failed upload is only logged.
func (s *CertificateService) archiveCertificate(ctx context.Context, cert *model.Certificate) {
	if s.archive == nil {
		return
	}
	pdf, err := s.render(cert)
	if err != nil {
		s.logger.Warn("certificate_archive_failed", "certificate_id", cert.CertificateID, "error", err.Error())
		return
	}
	if err := s.archive.Put(ctx, cert.Filename(), pdf); err != nil {
		s.logger.Warn("certificate_archive_failed", "certificate_id", cert.CertificateID, "error", err.Error())
		return
	}
	s.logger.Debug("certificate_archived", "certificate_id", cert.CertificateID)
}

// Get returns a certificate by its public id.
func (s *CertificateService) Get(ctx context.Context, certificateID string) (*model.Certificate, error) {
	certificateID = strings.TrimSpace(certificateID)
	if certificateID == "" {
		return nil, ErrCertificateNotFound
	}

	cert, err := s.store.GetCertificateByCertificateID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, repository.ErrCertificateNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, storageErr("get certificate", err)
	}
	return cert, nil
}

// ListInput defines input for listing a user's certificates.
type ListInput struct {
	UserID string
	Cursor string
	Limit  int
}

// ListResult is one page of certificates, newest first.
type ListResult struct {
	Certificates []*model.Certificate
	NextCursor   string
	HasMore      bool
}

// List returns the user's certificates, newest first.
func (s *CertificateService) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.UserID == "" || input.UserID == model.GuestUserID {
		return nil, ErrUnauthenticated
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	certs, next, err := s.store.ListCertificatesByUser(ctx, input.UserID, input.Cursor, limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, storageErr("list certificates", err)
	}
	if certs == nil {
		certs = []*model.Certificate{}
	}

	return &ListResult{Certificates: certs, NextCursor: next, HasMore: next != ""}, nil
}

// RenderPDF returns the printable certificate for a public id.
func (s *CertificateService) RenderPDF(ctx context.Context, certificateID string) ([]byte, *model.Certificate, error) {
	cert, err := s.Get(ctx, certificateID)
	if err != nil {
		return nil, nil, err
	}

	pdf, err := s.render(cert)
	if err != nil {
		return nil, nil, err
	}
	return pdf, cert, nil
}

// DownloadURL returns a time-limited link to the archived copy of a
// certificate.
func (s *CertificateService) DownloadURL(ctx context.Context, certificateID string) (string, error) {
	if s.archive == nil {
		return "", &NotConfiguredError{Service: "Certificate archive"}
	}

	cert, err := s.Get(ctx, certificateID)
	if err != nil {
		return "", err
	}

	url, err := s.archive.PresignGet(ctx, cert.Filename())
	if err != nil {
		return "", storageErr("presign certificate", err)
	}
	return url, nil
}

func (s *CertificateService) render(cert *model.Certificate) ([]byte, error) {
	start := time.Now()
	pdf, err := certpdf.Bytes(cert)
	s.metrics.ObserveRenderDuration(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return pdf, nil
}
