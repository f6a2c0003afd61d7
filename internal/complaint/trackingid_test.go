package complaint

import (
	"context"
	"errors"
	"testing"
	"time"
)

// seqFunc hands build the sequence it returns for year.
type seqFunc func(ctx context.Context, year int) (int, error)

func (f seqFunc) CreateNext(ctx context.Context, year int, build func(int) *Complaint) (*Complaint, error) {
	seq, err := f(ctx, year)
	if err != nil {
		return nil, err
	}
	return build(seq), nil
}

func byID(id string) *Complaint { return &Complaint{TrackingID: id} }

func TestFormatTrackingID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year, seq int
		want      string
	}{
		{2025, 1, "TG-2025-0001"},
		{2025, 42, "TG-2025-0042"},
		{2026, 9999, "TG-2026-9999"},
		{2026, 10000, "TG-2026-10000"},
	}
	for _, tt := range tests {
		if got := FormatTrackingID(tt.year, tt.seq); got != tt.want {
			t.Errorf("FormatTrackingID(%d, %d) = %q, want %q", tt.year, tt.seq, got, tt.want)
		}
	}
}

func TestParseTrackingID(t *testing.T) {
	t.Parallel()

	year, seq, err := ParseTrackingID("TG-2025-0042")
	if err != nil || year != 2025 || seq != 42 {
		t.Fatalf("got (%d, %d, %v)", year, seq, err)
	}
	if _, seq, err := ParseTrackingID("TG-2025-10000"); err != nil || seq != 10000 {
		t.Errorf("overflowed sequence: (%d, %v)", seq, err)
	}

	for _, bad := range []string{"", "TG-2025", "XX-2025-0001", "TG-25-0001", "TG-2025-001", "TG-2025-0000", "TG-abcd-0001", "TG-2025-00x1"} {
		if _, _, err := ParseTrackingID(bad); err == nil {
			t.Errorf("ParseTrackingID(%q) should fail", bad)
		}
	}
}

func TestIDGenerator_UsesLocationYear(t *testing.T) {
	t.Parallel()

	jakarta := time.FixedZone("WIB", 7*3600)
	var gotYear int
	g := NewIDGenerator(seqFunc(func(_ context.Context, year int) (int, error) {
		gotYear = year
		return 3, nil
	}), nil, jakarta)

	// 2025-12-31 20:00 UTC is already 2026 in Jakarta
	c, err := g.CreateAt(context.Background(), time.Date(2025, 12, 31, 20, 0, 0, 0, time.UTC), byID)
	if err != nil {
		t.Fatalf("CreateAt: %v", err)
	}
	if gotYear != 2026 || c.TrackingID != "TG-2026-0003" {
		t.Errorf("got year %d id %q", gotYear, c.TrackingID)
	}
}

func TestIDGenerator_Create(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	g := NewIDGenerator(seqFunc(func(context.Context, int) (int, error) { return 1, nil }), now, nil)

	c, err := g.Create(context.Background(), byID)
	if err != nil || c.TrackingID != "TG-2024-0001" {
		t.Errorf("Create = (%+v, %v)", c, err)
	}
}

func TestIDGenerator_AllocatorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	g := NewIDGenerator(seqFunc(func(context.Context, int) (int, error) { return 0, boom }), nil, nil)

	if _, err := g.Create(context.Background(), byID); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
