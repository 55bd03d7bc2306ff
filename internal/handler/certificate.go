package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/handler/dto"
	"github.com/cleanexit/cleanexit/internal/middleware"
	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/service"
)

// CertificateHandler handles certificate endpoints.
type CertificateHandler struct {
	certificates *service.CertificateService
	logger       *slog.Logger
}

// NewCertificateHandler creates a new CertificateHandler.
func NewCertificateHandler(certificates *service.CertificateService, logger *slog.Logger) *CertificateHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CertificateHandler{certificates: certificates, logger: logger}
}

// Issue handles POST /api/certificate.
// The holder is the userId in the body, else the signed-in user, else guest.
func (h *CertificateHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCertificateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = auth.UserIDFromContext(r.Context())
	}

	result, err := h.certificates.Issue(r.Context(), service.IssueInput{
		DeviceType: req.DeviceType,
		UserID:     userID,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	cert := result.Certificate
	h.logger.Info("certificate_issued",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("certificate_id", cert.CertificateID),
		slog.String("user_id", cert.UserID),
		slog.String("device_type", cert.DeviceType),
	)

	resp := dto.IssueCertificateResponse{Certificate: dto.ToCertificateResponse(cert)}
	if result.Subscription != nil {
		sub := dto.ToSubscriptionResponse(result.Subscription)
		resp.Subscription = &sub
	}
	writeSuccess(w, http.StatusCreated, resp)
}

// List handles GET /api/certificates.
func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	session := auth.MustSessionFromContext(r.Context())

	input := service.ListInput{
		UserID: session.UserID,
		Cursor: r.URL.Query().Get("cursor"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		input.Limit = limit
	}

	result, err := h.certificates.List(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToCertificateListResponse(result.Certificates, result.NextCursor, result.HasMore))
}

// Get handles GET /api/certificates/{certificateId}.
func (h *CertificateHandler) Get(w http.ResponseWriter, r *http.Request) {
	cert, err := h.certificates.Get(r.Context(), chi.URLParam(r, "certificateId"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]dto.CertificateResponse{"certificate": dto.ToCertificateResponse(cert)})
}

// PDF handles GET /api/certificates/{certificateId}/pdf.
func (h *CertificateHandler) PDF(w http.ResponseWriter, r *http.Request) {
	pdf, cert, err := h.certificates.RenderPDF(r.Context(), chi.URLParam(r, "certificateId"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writePDF(w, cert, pdf)
}

// DownloadURL handles GET /api/certificates/{certificateId}/download_url.
func (h *CertificateHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	certificateID := chi.URLParam(r, "certificateId")

	url, err := h.certificates.DownloadURL(r.Context(), certificateID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.DownloadURLResponse{CertificateID: certificateID, URL: url})
}

func writePDF(w http.ResponseWriter, cert *model.Certificate, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+cert.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("Cache-Control", "private, max-age=0, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
