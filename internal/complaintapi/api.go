// Package complaintapi exposes the complaint service over HTTP.
package complaintapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/tanggap/internal/authmw"
	"github.com/linnemanlabs/tanggap/internal/complaint"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// ComplaintService defines the business operations complaintapi needs.
type ComplaintService interface {
	Submit(ctx context.Context, req *complaint.SubmitRequest) (*complaint.TriageResult, error)
	Get(ctx context.Context, trackingID string) (*complaint.Complaint, bool, error)
	Search(ctx context.Context, q string) ([]*complaint.Complaint, error)
	List(ctx context.Context, f complaint.ListFilter) ([]*complaint.Complaint, error)
	SetStatus(ctx context.Context, trackingID, status, notes string) (*complaint.Complaint, error)
	Analyze(ctx context.Context, text string) *complaint.Analysis
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger     log.Logger
	svc        ComplaintService
	adminToken string
}

// Option customises an API.
type Option func(*API)

// WithAdminToken protects the admin routes with a bearer token.
func WithAdminToken(token string) Option {
	return func(a *API) { a.adminToken = token }
}

// New creates a new API handler.
func New(logger log.Logger, svc ComplaintService, opts ...Option) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("complaint service is required"))
	}
	a := &API{
		logger: logger,
		svc:    svc,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/complaints", a.handleSubmit)
		r.Get("/complaints", a.handleSearch)
		r.Get("/complaints/{id}", a.handleGet)
		r.Get("/reporters/{reporterID}/complaints", a.handleReporterComplaints)
		r.Post("/analyze", a.handleAnalyze)

		r.Route("/admin", func(r chi.Router) {
			if a.adminToken != "" {
				r.Use(authmw.BearerToken(a.adminToken, authmw.WithLogger(a.logger)))
			}
			r.Get("/complaints", a.handleAdminList)
			r.Put("/complaints/{id}", a.handleSetStatus)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// nothing to do with errors here
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// writeServiceError maps service errors onto status codes.
func (a *API) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string, kv ...any) {
	var ve *complaint.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, complaint.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		a.logger.Error(r.Context(), err, msg, kv...)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
