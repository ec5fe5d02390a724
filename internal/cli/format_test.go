package cli

import (
	"testing"
	"time"
)

func ptr(f float64) *float64 { return &f }

func TestFormatKg(t *testing.T) {
	tests := []struct {
		in   *float64
		want string
	}{
		{nil, Placeholder},
		{ptr(0), "0 kg"},
		{ptr(0.42), "420 g"},
		{ptr(4.2), "4.20 kg"},
		{ptr(126), "126 kg"},
		{ptr(1234), "1.23 t"},
	}
	for _, tt := range tests {
		if got := FormatKg(tt.in); got != tt.want {
			t.Errorf("FormatKg(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(ptr(140)); got != "140%" {
		t.Errorf("FormatPercent(140) = %q", got)
	}
	if got := FormatPercent(nil); got != Placeholder {
		t.Errorf("FormatPercent(nil) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1234567, "1,234,567"},
		{-1000, "-1,000"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(10, 7.5); got != "+2.50 kg" {
		t.Errorf("FormatDelta = %q", got)
	}
	if got := FormatDelta(7.5, 10); got != "-2.50 kg" {
		t.Errorf("FormatDelta = %q", got)
	}
}

func TestFormatDateAndAge(t *testing.T) {
	if got := FormatDate("2026-03-07"); got != "Sat Mar 07" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate("soon"); got != "soon" {
		t.Errorf("FormatDate passthrough = %q", got)
	}

	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	if got := FormatAge(now.Add(-3*time.Minute), now); got != "3m ago" {
		t.Errorf("FormatAge = %q", got)
	}
	if got := FormatAge(time.Time{}, now); got != "never" {
		t.Errorf("FormatAge zero = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Cycle to work", 6); got != "Cycle…" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}
