package complaintapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

// summaryLen bounds descriptions in search results.
const summaryLen = 100

type submitBody struct {
	ReporterID      string `json:"reporter_id"`
	ReporterName    string `json:"reporter_name"`
	ReporterContact string `json:"reporter_contact"`
	ReporterEmail   string `json:"reporter_email"`
	Category        string `json:"category"`
	Location        string `json:"location"`
	Description     string `json:"description"`
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	res, err := a.svc.Submit(r.Context(), &complaint.SubmitRequest{
		ReporterID:      body.ReporterID,
		ReporterName:    body.ReporterName,
		ReporterContact: body.ReporterContact,
		ReporterEmail:   body.ReporterEmail,
		Category:        body.Category,
		Location:        body.Location,
		Description:     body.Description,
	})
	if err != nil {
		a.writeServiceError(w, r, err, "failed to submit complaint")
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("tanggap.complaint.id", res.TrackingID),
		attribute.String("tanggap.complaint.priority", string(res.Priority)),
		attribute.String("tanggap.complaint.sentiment", res.Sentiment),
	)

	writeJSON(w, http.StatusCreated, res)
}

func (a *API) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("tanggap.complaint.id", id))

	c, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get complaint", "tracking_id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	span.SetAttributes(attribute.String("tanggap.complaint.status", string(c.Status)))
	writeJSON(w, http.StatusOK, toPublic(c))
}

// publicComplaint is what unauthenticated routes return. Reporter identity
// stays behind the admin routes.
type publicComplaint struct {
	TrackingID  string             `json:"tracking_id"`
	Category    string             `json:"category"`
	Location    string             `json:"location"`
	Description string             `json:"description"`
	Sentiment   string             `json:"sentiment"`
	Confidence  float64            `json:"sentiment_confidence"`
	Priority    complaint.Priority `json:"priority"`
	Status      complaint.Status   `json:"status"`
	AdminNotes  string             `json:"admin_notes,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func toPublic(c *complaint.Complaint) publicComplaint {
	return publicComplaint{
		TrackingID:  c.TrackingID,
		Category:    c.Category,
		Location:    c.Location,
		Description: c.Description,
		Sentiment:   c.Sentiment,
		Confidence:  c.Confidence,
		Priority:    c.Priority,
		Status:      c.Status,
		AdminNotes:  c.AdminNotes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toPublicList(cs []*complaint.Complaint) []publicComplaint {
	out := make([]publicComplaint, 0, len(cs))
	for _, c := range cs {
		out = append(out, toPublic(c))
	}
	return out
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	cs, err := a.svc.Search(r.Context(), q)
	if err != nil {
		a.writeServiceError(w, r, err, "failed to search complaints")
		return
	}

	out := toPublicList(cs)
	for i := range out {
		out[i].Description = summarize(out[i].Description, summaryLen)
	}

	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int("tanggap.search.results", len(out)))
	writeJSON(w, http.StatusOK, map[string]any{"complaints": out})
}

func (a *API) handleReporterComplaints(w http.ResponseWriter, r *http.Request) {
	reporter := chi.URLParam(r, "reporterID")

	cs, err := a.svc.List(r.Context(), complaint.ListFilter{ReporterID: reporter})
	if err != nil {
		a.writeServiceError(w, r, err, "failed to list reporter complaints", "reporter_id", reporter)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"complaints": toPublicList(cs)})
}

type analyzeBody struct {
	Text string `json:"text"`
}

func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	writeJSON(w, http.StatusOK, a.svc.Analyze(r.Context(), body.Text))
}

func (a *API) handleAdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := complaint.ListFilter{ReporterID: q.Get("reporter_id")}

	if s := q.Get("status"); s != "" {
		st, err := complaint.ParseStatus(s)
		if err != nil {
			a.writeServiceError(w, r, err, "bad status filter")
			return
		}
		f.Status = st
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = n
	}

	cs, err := a.svc.List(r.Context(), f)
	if err != nil {
		a.writeServiceError(w, r, err, "failed to list complaints")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"complaints": nonNil(cs)})
}

type statusBody struct {
	Status     string `json:"status"`
	AdminNotes string `json:"admin_notes"`
}

func (a *API) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body statusBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	c, err := a.svc.SetStatus(r.Context(), id, body.Status, body.AdminNotes)
	if err != nil {
		a.writeServiceError(w, r, err, "failed to update status", "tracking_id", id)
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("tanggap.complaint.id", id),
		attribute.String("tanggap.complaint.status", string(c.Status)),
	)
	writeJSON(w, http.StatusOK, c)
}

func nonNil(cs []*complaint.Complaint) []*complaint.Complaint {
	if cs == nil {
		return []*complaint.Complaint{}
	}
	return cs
}

// summarize cuts s to at most n runes, marking the cut with "...".
func summarize(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}
