package complaint

import (
	"errors"
	"math"
	"testing"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Status
	}{
		{"received", StatusReceived},
		{"Diterima", StatusReceived},
		{"in_progress", StatusInProgress},
		{" Diproses ", StatusInProgress},
		{"Sedang Diproses", StatusInProgress},
		{"RESOLVED", StatusResolved},
		{"Selesai", StatusResolved},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseStatus(%q) = (%s, %v), want %s", tt.in, got, err, tt.want)
		}
	}

	_, err := ParseStatus("archived")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "status" {
		t.Errorf("validation error = %#v", err)
	}
}

func TestStatusLabel(t *testing.T) {
	t.Parallel()

	if StatusReceived.Label() != "Diterima" || StatusResolved.Label() != "Telah Selesai" {
		t.Error("unexpected status labels")
	}
	if Status("x").Label() != "x" {
		t.Error("unknown status should label as itself")
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Sentiment
		want Sentiment
	}{
		{"empty label", Sentiment{Confidence: 80}, Unknown()},
		{"negative", Sentiment{Label: "negatif", Confidence: -2}, Sentiment{Label: "negatif"}},
		{"nan", Sentiment{Label: "negatif", Confidence: math.NaN()}, Sentiment{Label: "negatif"}},
		{"over", Sentiment{Label: "positif", Confidence: 250}, Sentiment{Label: "positif", Confidence: 100}},
		{"ok", Sentiment{Label: "netral", Confidence: 42.5}, Sentiment{Label: "netral", Confidence: 42.5}},
	}
	for _, tt := range tests {
		if got := clamp(tt.in); got != tt.want {
			t.Errorf("%s: clamp(%+v) = %+v, want %+v", tt.name, tt.in, got, tt.want)
		}
	}
}
