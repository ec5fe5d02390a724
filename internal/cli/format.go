// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Placeholder is shown for values the service did not report.
const Placeholder = "—"

// FormatKg formats an optional CO2e mass. Nil renders as Placeholder; a reported 0 as "0 kg".
func FormatKg(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return FormatKgValue(*v)
}

// FormatKgValue formats a CO2e mass with a unit suited to its magnitude.
// e.g., 0.42 -> "420 g", 4.2 -> "4.20 kg", 1234 -> "1.23 t"
func FormatKgValue(kg float64) string {
	abs := math.Abs(kg)
	switch {
	case abs == 0:
		return "0 kg"
	case abs >= 1000:
		return fmt.Sprintf("%.2f t", kg/1000)
	case abs >= 100:
		return fmt.Sprintf("%.0f kg", kg)
	case abs >= 1:
		return fmt.Sprintf("%.2f kg", kg)
	default:
		return fmt.Sprintf("%.0f g", kg*1000)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats an optional percentage value (already in 0-100 scale, unclamped).
func FormatPercent(p *float64) string {
	if p == nil {
		return Placeholder
	}
	return fmt.Sprintf("%.0f%%", *p)
}

// FormatDelta formats the change between two masses with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatKgValue(delta)
	}
	return "-" + FormatKgValue(-delta)
}

// FormatDate shortens an ISO date for tables. Unparseable input is returned as-is.
// e.g., "2026-03-07" -> "Sat Mar 07"
func FormatDate(iso string) string {
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return t.Format("Mon Jan 02")
}

// FormatAge formats how long ago t was, relative to now.
// e.g., 45s -> "45s ago", 3m -> "3m ago", 2h5m -> "2h ago"
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Truncate shortens s to max runes, adding an ellipsis when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
