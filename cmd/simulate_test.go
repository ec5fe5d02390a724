package cmd

import (
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/ccoach/internal/simulate"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		in    string
		key   string
		value any
	}{
		{"days_per_week=3", "days_per_week", 3},
		{"reduction_percent = 12.5", "reduction_percent", 12.5},
		{"strict=true", "strict", true},
		{"to_mode=public_transit", "to_mode", "public_transit"},
		{"note=", "note", ""},
	}
	for _, tt := range tests {
		k, v, err := parseParam(tt.in)
		if err != nil {
			t.Fatalf("parseParam(%q): %v", tt.in, err)
		}
		if k != tt.key || v != tt.value {
			t.Errorf("parseParam(%q) = %q, %#v; want %q, %#v", tt.in, k, v, tt.key, tt.value)
		}
	}

	for _, bad := range []string{"no-equals", "=5"} {
		if _, _, err := parseParam(bad); err == nil {
			t.Errorf("parseParam(%q) should fail", bad)
		}
	}
}

func TestSimulationParams(t *testing.T) {
	defer func() {
		flagSimPercent, flagSimSet, flagSimFrom, flagSimDays = -1, nil, "", 0
	}()

	flagSimPercent = 40
	got, err := simulationParams(simulate.ChangeEnergy)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, map[string]any{"efficiency_improvement_percent": 40}) {
		t.Errorf("energy params = %v", got)
	}

	flagSimPercent = -1
	flagSimFrom = "carpool"
	flagSimDays = 2
	flagSimSet = []string{"days_per_week=4"}
	got, err = simulationParams(simulate.ChangeCommute)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"from_mode": "carpool", "days_per_week": 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("commute params = %v, want %v", got, want)
	}

	// Defaults are filled only for missing keys.
	filled := simulate.WithDefaults(simulate.ChangeCommute, got)
	if filled["to_mode"] != "bike" || filled["from_mode"] != "carpool" || filled["days_per_week"] != 4 {
		t.Errorf("filled = %v", filled)
	}

	flagSimDays = 9
	if _, err := simulationParams(simulate.ChangeCommute); err == nil {
		t.Error("days_per_week 9 should be rejected")
	}
}

func TestFormatWindow(t *testing.T) {
	if got := formatWindow(7 * 24 * time.Hour); got != "7d" {
		t.Errorf("formatWindow(7d) = %q", got)
	}
	if got := formatWindow(90 * time.Minute); got != "1h30m0s" {
		t.Errorf("formatWindow(90m) = %q", got)
	}
}
