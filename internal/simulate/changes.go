// Package simulate runs what-if lifestyle simulations against the carbon service.
package simulate

import (
	"fmt"
	"strings"
)

// ChangeType is the kind of lifestyle change being simulated.
type ChangeType string

const (
	ChangeDiet     ChangeType = "diet"
	ChangeCommute  ChangeType = "commute"
	ChangeShopping ChangeType = "shopping"
	ChangeEnergy   ChangeType = "energy"
)

// ChangeTypes lists the supported change types in display order.
var ChangeTypes = []ChangeType{ChangeDiet, ChangeCommute, ChangeShopping, ChangeEnergy}

// CommuteModes lists the commute modes the service prices, in display order.
var CommuteModes = []string{"car", "public_transit", "carpool", "bike", "walk"}

// ParseChangeType validates a change type name.
func ParseChangeType(s string) (ChangeType, error) {
	ct := ChangeType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ChangeTypes {
		if ct == known {
			return ct, nil
		}
	}
	return "", fmt.Errorf("unknown change type %q (want diet, commute, shopping or energy)", s)
}

// Label is the human-readable name of a change type.
func (ct ChangeType) Label() string {
	switch ct {
	case ChangeDiet:
		return "Diet"
	case ChangeCommute:
		return "Commute"
	case ChangeShopping:
		return "Shopping"
	case ChangeEnergy:
		return "Energy"
	default:
		return string(ct)
	}
}

// Defaults returns a fresh copy of the form defaults for ct. Unknown types get an empty map.
func Defaults(ct ChangeType) map[string]any {
	switch ct {
	case ChangeDiet:
		return map[string]any{"reduction_percent": 30, "removed_items": []string{}}
	case ChangeCommute:
		return map[string]any{"from_mode": "car", "to_mode": "bike", "days_per_week": 5}
	case ChangeShopping:
		return map[string]any{"reduction_percent": 30}
	case ChangeEnergy:
		return map[string]any{"efficiency_improvement_percent": 20}
	default:
		return map[string]any{}
	}
}

// WithDefaults fills in any default key missing from params. Keys in params win.
// params is not modified.
func WithDefaults(ct ChangeType, params map[string]any) map[string]any {
	out := Defaults(ct)
	for k, v := range params {
		out[k] = v
	}
	return out
}
