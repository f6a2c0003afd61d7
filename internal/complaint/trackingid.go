package complaint

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const trackingPrefix = "TG"

// SequenceStore inserts complaints under per-year sequence numbers.
// CreateNext must allocate and insert atomically: concurrent callers for the
// same year never share a sequence, and a failed insert consumes nothing, so
// the sequences of a year stay 1..n for n stored complaints.
type SequenceStore interface {
	CreateNext(ctx context.Context, year int, build func(seq int) *Complaint) (*Complaint, error)
}

// FormatTrackingID renders TG-<year>-<seq padded to 4 digits>.
func FormatTrackingID(year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", trackingPrefix, year, seq)
}

// ParseTrackingID splits a tracking id into its year and sequence.
func ParseTrackingID(id string) (year, seq int, err error) {
	parts := strings.Split(strings.TrimSpace(id), "-")
	if len(parts) != 3 || parts[0] != trackingPrefix || len(parts[1]) != 4 || len(parts[2]) < 4 {
		return 0, 0, fmt.Errorf("malformed tracking id %q", id)
	}
	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed tracking id %q: year: %w", id, err)
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil || seq <= 0 {
		return 0, 0, fmt.Errorf("malformed tracking id %q: sequence", id)
	}
	return year, seq, nil
}

// IDGenerator assigns tracking ids for the current calendar year.
type IDGenerator struct {
	store SequenceStore
	now   func() time.Time
	loc   *time.Location
}

// NewIDGenerator creates a generator over store. A nil loc means UTC.
func NewIDGenerator(store SequenceStore, now func() time.Time, loc *time.Location) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &IDGenerator{store: store, now: now, loc: loc}
}

// Create stores the complaint built for the next tracking id of the current year.
func (g *IDGenerator) Create(ctx context.Context, build func(trackingID string) *Complaint) (*Complaint, error) {
	return g.CreateAt(ctx, g.now(), build)
}

// CreateAt stores the complaint built for the next tracking id in the
// calendar year of t.
func (g *IDGenerator) CreateAt(ctx context.Context, t time.Time, build func(trackingID string) *Complaint) (*Complaint, error) {
	year := t.In(g.loc).Year()
	return g.store.CreateNext(ctx, year, func(seq int) *Complaint {
		return build(FormatTrackingID(year, seq))
	})
}
