package pgstore_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/tanggap/internal/complaint"
	"github.com/linnemanlabs/tanggap/internal/complaint/pgstore"
	"github.com/linnemanlabs/tanggap/internal/postgres"
)

// Each test claims its own year so tests do not share sequence rows.
func openStore(t *testing.T, year int) (*pgstore.Store, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("TANGGAP_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TANGGAP_TEST_DATABASE_URL not set, skipping integration test")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{MaxConns: 8})
	if err != nil {
		t.Fatalf("postgres.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	s, err := pgstore.New(ctx, pool)
	if err != nil {
		t.Fatalf("pgstore.New: %v", err)
	}

	clean := func() {
		_, _ = pool.Exec(ctx, `DELETE FROM complaints WHERE seq_year = $1`, year)
		_, _ = pool.Exec(ctx, `DELETE FROM tracking_sequences WHERE year = $1`, year)
	}
	clean()
	t.Cleanup(clean)
	return s, pool
}

func newComplaint(year, seq int, contact string, at time.Time) *complaint.Complaint {
	return &complaint.Complaint{
		TrackingID:      complaint.FormatTrackingID(year, seq),
		ReporterID:      "u-1",
		ReporterName:    "Budi",
		ReporterContact: contact,
		Category:        "Jalan",
		Location:        "Medan",
		Description:     "Jalan berlubang",
		Sentiment:       "negatif",
		Confidence:      81.5,
		Priority:        complaint.PriorityMedium,
		Status:          complaint.StatusReceived,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

func TestCreateAndGet(t *testing.T) {
	s, _ := openStore(t, 3001)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond).UTC()
	c := newComplaint(3001, 1, "081234567890", now)
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, ok, err := s.Get(ctx, c.TrackingID)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Description != c.Description || got.Priority != c.Priority || got.Confidence != c.Confidence {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}

	if _, ok, err := s.Get(ctx, "TG-3001-9999"); err != nil || ok {
		t.Errorf("missing Get: ok=%v err=%v", ok, err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	s, _ := openStore(t, 3002)
	ctx := context.Background()

	c := newComplaint(3002, 1, "", time.Now().UTC())
	if err := s.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, c); !errors.Is(err, complaint.ErrIdentifierCollision) {
		t.Errorf("err = %v, want ErrIdentifierCollision", err)
	}
}

func buildAt(year int, at time.Time) func(seq int) *complaint.Complaint {
	return func(seq int) *complaint.Complaint {
		return newComplaint(year, seq, "", at)
	}
}

func TestCreateNext_SeedsAndIncrements(t *testing.T) {
	s, _ := openStore(t, 3003)
	ctx := context.Background()

	now := time.Now().UTC()
	_ = s.Create(ctx, newComplaint(3003, 1, "", now))
	_ = s.Create(ctx, newComplaint(3003, 2, "", now))

	for want := 3; want <= 5; want++ {
		c, err := s.CreateNext(ctx, 3003, buildAt(3003, now))
		if err != nil {
			t.Fatalf("CreateNext: %v", err)
		}
		if c.TrackingID != complaint.FormatTrackingID(3003, want) {
			t.Errorf("CreateNext = %s, want sequence %d", c.TrackingID, want)
		}
	}
	if n, err := s.CountInYear(ctx, 3003); err != nil || n != 5 {
		t.Errorf("CountInYear = %d, %v", n, err)
	}
}

func TestCreateNext_Concurrent(t *testing.T) {
	s, _ := openStore(t, 3004)
	ctx := context.Background()
	now := time.Now().UTC()

	const n = 40
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.CreateNext(ctx, 3004, buildAt(3004, now))
			if err != nil {
				t.Errorf("CreateNext: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			seen[c.TrackingID] = true
		}()
	}
	wg.Wait()

	for i := 1; i <= n; i++ {
		if !seen[complaint.FormatTrackingID(3004, i)] {
			t.Errorf("sequence %d never issued", i)
		}
	}
}

func TestCreateNext_FailedInsertKeepsSequence(t *testing.T) {
	s, _ := openStore(t, 3007)
	ctx := context.Background()
	now := time.Now().UTC()

	if _, err := s.CreateNext(ctx, 3007, buildAt(3007, now)); err != nil {
		t.Fatalf("CreateNext: %v", err)
	}

	// reuse the first tracking id so the insert hits the primary key
	_, err := s.CreateNext(ctx, 3007, func(seq int) *complaint.Complaint {
		c := newComplaint(3007, seq, "", now)
		c.TrackingID = complaint.FormatTrackingID(3007, 1)
		return c
	})
	if !errors.Is(err, complaint.ErrIdentifierCollision) {
		t.Fatalf("err = %v, want ErrIdentifierCollision", err)
	}

	c, err := s.CreateNext(ctx, 3007, buildAt(3007, now))
	if err != nil {
		t.Fatalf("CreateNext: %v", err)
	}
	if c.TrackingID != "TG-3007-0002" {
		t.Errorf("after rollback got %s, want TG-3007-0002", c.TrackingID)
	}
}

func TestCreateNext_SeedsPastGaps(t *testing.T) {
	s, _ := openStore(t, 3008)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = s.Create(ctx, newComplaint(3008, 1, "", now))
	_ = s.Create(ctx, newComplaint(3008, 3, "", now))

	c, err := s.CreateNext(ctx, 3008, buildAt(3008, now))
	if err != nil {
		t.Fatalf("CreateNext: %v", err)
	}
	if c.TrackingID != "TG-3008-0004" {
		t.Errorf("seeded %s, want TG-3008-0004", c.TrackingID)
	}

	// an explicit import above the counter pushes it forward
	if err := s.Create(ctx, newComplaint(3008, 10, "", now)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	c, err = s.CreateNext(ctx, 3008, buildAt(3008, now))
	if err != nil {
		t.Fatalf("CreateNext: %v", err)
	}
	if c.TrackingID != "TG-3008-0011" {
		t.Errorf("after import got %s, want TG-3008-0011", c.TrackingID)
	}
}

func TestList_TiesOrderNumerically(t *testing.T) {
	s, _ := openStore(t, 3009)
	ctx := context.Background()
	at := time.Now().Truncate(time.Microsecond).UTC()

	for _, seq := range []int{9999, 10000} {
		c := newComplaint(3009, seq, "", at)
		c.ReporterID = "u-3009"
		_ = s.Create(ctx, c)
	}

	got, err := s.List(ctx, complaint.ListFilter{ReporterID: "u-3009"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, c := range got {
		ids = append(ids, c.TrackingID)
	}
	if len(ids) != 2 || ids[0] != "TG-3009-10000" {
		t.Errorf("tie order = %v, want TG-3009-10000 first", ids)
	}
}

func TestUpdateStatus(t *testing.T) {
	s, pool := openStore(t, 3005)
	ctx := context.Background()

	now := time.Now().Truncate(time.Microsecond).UTC()
	c := newComplaint(3005, 1, "", now)
	_ = s.Create(ctx, c)

	later := now.Add(time.Hour)
	got, ok, err := s.UpdateStatus(ctx, c.TrackingID, complaint.StatusResolved, "selesai", later)
	if err != nil || !ok {
		t.Fatalf("UpdateStatus: ok=%v err=%v", ok, err)
	}
	if got.Status != complaint.StatusResolved || got.AdminNotes != "selesai" || !got.UpdatedAt.Equal(later) {
		t.Errorf("updated = %+v", got)
	}

	if _, ok, err := s.UpdateStatus(ctx, "TG-3005-0404", complaint.StatusResolved, "", later); err != nil || ok {
		t.Errorf("missing update: ok=%v err=%v", ok, err)
	}

	// classification columns are write-once at the database level
	if _, err := pool.Exec(ctx, `UPDATE complaints SET priority = 'low' WHERE tracking_id = $1`, c.TrackingID); err == nil {
		t.Error("expected write-once trigger to reject priority change")
	}
}

func TestListAndSearch(t *testing.T) {
	s, _ := openStore(t, 3006)
	ctx := context.Background()

	base := time.Now().Truncate(time.Microsecond).UTC()
	a := newComplaint(3006, 1, "081111110000", base)
	b := newComplaint(3006, 2, "082222220000", base.Add(time.Minute))
	b.ReporterID = "u-2"
	b.Status = complaint.StatusResolved
	_ = s.Create(ctx, a)
	_ = s.Create(ctx, b)

	mine, err := s.List(ctx, complaint.ListFilter{ReporterID: "u-2"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mine) != 1 || mine[0].TrackingID != b.TrackingID {
		t.Errorf("List(u-2) = %v", mine)
	}

	resolved, _ := s.List(ctx, complaint.ListFilter{Status: complaint.StatusResolved, Limit: 10})
	found := false
	for _, c := range resolved {
		if c.Status != complaint.StatusResolved {
			t.Errorf("status filter leaked %s", c.Status)
		}
		if c.TrackingID == b.TrackingID {
			found = true
		}
	}
	if !found {
		t.Error("resolved complaint missing from list")
	}

	byID, _ := s.Search(ctx, a.TrackingID)
	if len(byID) != 1 || byID[0].TrackingID != a.TrackingID {
		t.Errorf("Search(id) = %v", byID)
	}
	byPhone, _ := s.Search(ctx, "22222")
	if len(byPhone) != 1 || byPhone[0].TrackingID != b.TrackingID {
		t.Errorf("Search(phone) = %v", byPhone)
	}
}
