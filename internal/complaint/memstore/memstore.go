// Package memstore provides an in-memory implementation of complaint.Store.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linnemanlabs/tanggap/internal/complaint"
)

// Store holds complaints in memory. Suitable for dev/testing.
type Store struct {
	mu         sync.RWMutex
	complaints map[string]*complaint.Complaint // tracking ID -> complaint
	sequences  map[int]int                     // year -> last stored sequence
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		complaints: make(map[string]*complaint.Complaint),
		sequences:  make(map[int]int),
	}
}

// CreateNext stores the complaint built for year's next sequence. Allocation
// and insert share one critical section, so a rejected insert leaves the
// sequence untouched.
func (s *Store) CreateNext(_ context.Context, year int, build func(seq int) *complaint.Complaint) (*complaint.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.sequences[year]
	if !ok {
		last = s.maxSeqLocked(year)
	}
	c := build(last + 1)
	if err := s.insertLocked(c); err != nil {
		return nil, err
	}
	s.sequences[year] = last + 1
	cp := *c
	return &cp, nil
}

// Create stores a copy of c under the tracking ID it carries.
func (s *Store) Create(_ context.Context, c *complaint.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertLocked(c); err != nil {
		return err
	}
	// keep an already seeded counter ahead of imported ids
	if year, seq, err := complaint.ParseTrackingID(c.TrackingID); err == nil {
		if last, ok := s.sequences[year]; ok && seq > last {
			s.sequences[year] = seq
		}
	}
	return nil
}

func (s *Store) insertLocked(c *complaint.Complaint) error {
	if _, exists := s.complaints[c.TrackingID]; exists {
		return fmt.Errorf("create %s: %w", c.TrackingID, complaint.ErrIdentifierCollision)
	}
	cp := *c
	s.complaints[c.TrackingID] = &cp
	return nil
}

// Get retrieves a complaint by tracking ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*complaint.Complaint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, false, nil
	}
	cp := *c
	return &cp, true, nil
}

// UpdateStatus changes the mutable lifecycle fields of a complaint.
func (s *Store) UpdateStatus(_ context.Context, id string, status complaint.Status, notes string, at time.Time) (*complaint.Complaint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.complaints[id]
	if !ok {
		return nil, false, nil
	}
	c.Status = status
	c.AdminNotes = notes
	c.UpdatedAt = at
	cp := *c
	return &cp, true, nil
}

// CountInYear counts complaints whose tracking ID belongs to year.
func (s *Store) CountInYear(_ context.Context, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countInYearLocked(year), nil
}

// List returns copies of matching complaints, newest first.
func (s *Store) List(_ context.Context, f complaint.ListFilter) ([]*complaint.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*complaint.Complaint, 0, len(s.complaints))
	for _, c := range s.complaints {
		if f.ReporterID != "" && c.ReporterID != f.ReporterID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Search matches an exact tracking ID or a reporter contact fragment.
func (s *Store) Search(_ context.Context, q string) ([]*complaint.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*complaint.Complaint
	for _, c := range s.complaints {
		if c.TrackingID == q || strings.Contains(c.ReporterContact, q) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) countInYearLocked(year int) int {
	n := 0
	for id := range s.complaints {
		if y, _, err := complaint.ParseTrackingID(id); err == nil && y == year {
			n++
		}
	}
	return n
}

// maxSeqLocked is the highest sequence stored for year, 0 if none.
func (s *Store) maxSeqLocked(year int) int {
	highest := 0
	for id := range s.complaints {
		if y, seq, err := complaint.ParseTrackingID(id); err == nil && y == year && seq > highest {
			highest = seq
		}
	}
	return highest
}

// sortNewestFirst orders by creation time, ties broken by the numeric
// year and sequence so TG-2025-10000 sorts above TG-2025-9999.
func sortNewestFirst(cs []*complaint.Complaint) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		yi, si, erri := complaint.ParseTrackingID(cs[i].TrackingID)
		yj, sj, errj := complaint.ParseTrackingID(cs[j].TrackingID)
		if erri != nil || errj != nil {
			return cs[i].TrackingID > cs[j].TrackingID
		}
		if yi != yj {
			return yi > yj
		}
		return si > sj
	})
}
