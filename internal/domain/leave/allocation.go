package leave

import (
	"fmt"
	"strconv"
	"strings"
)

// Allocations is the number of days granted per leave type when a balance
// row is first created. Types missing from the map get 0.
type Allocations map[Type]float64

func DefaultAllocations() Allocations {
	return Allocations{
		TypeSick:         12,
		TypeCasual:       12,
		TypeEarned:       15,
		TypeCompensatory: 0,
		TypeMaternity:    180,
		TypePaternity:    7,
		TypeBereavement:  5,
		TypeUnpaid:       999,
	}
}

func (a Allocations) For(t Type) float64 {
	return a[t]
}

// Clone returns an independent copy.
func (a Allocations) Clone() Allocations {
	out := make(Allocations, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ParseAllocations reads overrides in the form "Sick Leave=10;Casual Leave=8"
// and applies them on top of base.
func ParseAllocations(base Allocations, s string) (Allocations, error) {
	out := base.Clone()
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid allocation %q: expected <type>=<days>", pair)
		}
		t := Type(strings.TrimSpace(name))
		if !t.Valid() {
			return nil, fmt.Errorf("invalid allocation %q: unknown leave type", pair)
		}
		days, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid allocation %q: days must be a non-negative number", pair)
		}
		out[t] = days
	}
	return out, nil
}
