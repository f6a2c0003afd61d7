package complaint

import (
	"fmt"
	"strings"
	"time"
)

// Status tracks where a complaint is in its lifecycle.
type Status string

const (
	// StatusReceived is assigned at submission
	StatusReceived Status = "received"

	// StatusInProgress means an officer is working on it
	StatusInProgress Status = "in_progress"

	// StatusResolved means the complaint has been handled
	StatusResolved Status = "resolved"
)

// Label returns the reporter-facing wording used in notifications.
func (s Status) Label() string {
	switch s {
	case StatusReceived:
		return "Diterima"
	case StatusInProgress:
		return "Sedang Diproses"
	case StatusResolved:
		return "Telah Selesai"
	}
	return string(s)
}

// ParseStatus accepts canonical values and the admin dashboard's Indonesian ones.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "received", "diterima":
		return StatusReceived, nil
	case "in_progress", "in progress", "diproses", "sedang diproses":
		return StatusInProgress, nil
	case "resolved", "selesai", "telah selesai":
		return StatusResolved, nil
	}
	return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", s)}
}

// Priority is the operational severity tier of a complaint.
type Priority string

const (
	PriorityVeryUrgent Priority = "very_urgent"
	PriorityHigh       Priority = "high"
	PriorityMedium     Priority = "medium"
	PriorityLow        Priority = "low"
)

// Rank orders priorities; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityVeryUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Label returns the Indonesian display label.
func (p Priority) Label() string {
	switch p {
	case PriorityVeryUrgent:
		return "Sangat Mendesak"
	case PriorityHigh:
		return "Tinggi"
	case PriorityMedium:
		return "Sedang"
	case PriorityLow:
		return "Rendah"
	}
	return string(p)
}

// Complaint is a single citizen report.
//
// TrackingID, Sentiment, Confidence, Priority and CreatedAt are written once at
// submission. Status, AdminNotes and UpdatedAt change through Service.SetStatus.
type Complaint struct {
	TrackingID      string    `json:"tracking_id"`
	ReporterID      string    `json:"reporter_id,omitempty"`
	ReporterName    string    `json:"reporter_name,omitempty"`
	ReporterContact string    `json:"reporter_contact,omitempty"`
	ReporterEmail   string    `json:"reporter_email,omitempty"`
	Category        string    `json:"category"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	Sentiment       string    `json:"sentiment"`
	Confidence      float64   `json:"sentiment_confidence"`
	Priority        Priority  `json:"priority"`
	Status          Status    `json:"status"`
	AdminNotes      string    `json:"admin_notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TriageResult is what a submitter gets back.
type TriageResult struct {
	TrackingID string   `json:"tracking_id"`
	Sentiment  string   `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Priority   Priority `json:"priority"`
}

// Analysis is a triage preview that is never persisted.
type Analysis struct {
	Sentiment  string   `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Priority   Priority `json:"priority"`
}

// SubmitRequest carries reporter input for a new complaint.
type SubmitRequest struct {
	ReporterID      string
	ReporterName    string
	ReporterContact string
	ReporterEmail   string
	Category        string
	Location        string
	Description     string
}

// ListFilter narrows Service.List. The zero value lists everything.
type ListFilter struct {
	ReporterID string
	Status     Status
	Limit      int
}
