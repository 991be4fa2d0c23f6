package labor

import (
	"fmt"
	"strings"
)

// RevenueCenter is a named operational area with its own sales figure and
// efficiency divisor. Name is the lookup key everywhere.
type RevenueCenter struct {
	ID      string  `yaml:"id" json:"id"`
	Name    string  `yaml:"name" json:"name"`
	Sales   float64 `yaml:"sales" json:"sales"`
	Divisor float64 `yaml:"divisor" json:"divisor"`
}

// NewRevenueCenter creates a validated RevenueCenter.
func NewRevenueCenter(id, name string, sales, divisor float64) (RevenueCenter, error) {
	if id == "" {
		return RevenueCenter{}, fmt.Errorf("revenue center ID must not be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return RevenueCenter{}, fmt.Errorf("revenue center name must not be empty")
	}
	if err := ValidateSales(sales); err != nil {
		return RevenueCenter{}, err
	}
	if err := ValidateDivisor(divisor); err != nil {
		return RevenueCenter{}, err
	}
	return RevenueCenter{ID: id, Name: name, Sales: sales, Divisor: divisor}, nil
}

// PerfectHours is the ideal labor hours for the center's current sales.
func (c RevenueCenter) PerfectHours() float64 {
	return PerfectHours(c.Sales, c.Divisor)
}

// Kind maps the center name onto the closed set of known centers.
func (c RevenueCenter) Kind() CenterKind {
	return ParseCenterKind(c.Name)
}

func ValidateSales(sales float64) error {
	if sales < 0 || !isFinite(sales) {
		return ErrInvalidSales
	}
	return nil
}

func ValidateDivisor(divisor float64) error {
	if !positive(divisor) {
		return ErrInvalidDivisor
	}
	return nil
}

// CenterKind is the closed set of revenue center identities the dashboard knows.
type CenterKind string

const (
	CenterDining  CenterKind = "dining"
	CenterLounge  CenterKind = "lounge"
	CenterPatio   CenterKind = "patio"
	CenterUnknown CenterKind = "unknown"
)

// KnownCenterKinds lists the seeded centers in display order.
func KnownCenterKinds() []CenterKind {
	return []CenterKind{CenterDining, CenterLounge, CenterPatio}
}

// ParseCenterKind maps a center name to its kind, falling back to CenterUnknown.
func ParseCenterKind(name string) CenterKind {
	switch CenterKind(strings.ToLower(strings.TrimSpace(name))) {
	case CenterDining:
		return CenterDining
	case CenterLounge:
		return CenterLounge
	case CenterPatio:
		return CenterPatio
	default:
		return CenterUnknown
	}
}

func (k CenterKind) IsKnown() bool {
	return k != CenterUnknown && ParseCenterKind(string(k)) == k
}

func (k CenterKind) String() string {
	return string(k)
}

// Display is the presentation config attached to a center kind.
type Display struct {
	Label string `yaml:"label" json:"label"`
	Icon  string `yaml:"icon" json:"icon"`
	Color string `yaml:"color" json:"color"`
}

var defaultDisplays = map[CenterKind]Display{
	CenterDining:  {Label: "Dining Room", Icon: "utensils", Color: "#2e7d32"},
	CenterLounge:  {Label: "Lounge", Icon: "martini", Color: "#6a1b9a"},
	CenterPatio:   {Label: "Patio", Icon: "sun", Color: "#ef6c00"},
	CenterUnknown: {Label: "Other", Icon: "store", Color: "#607d8b"},
}

// DisplayTable resolves display config per kind. Overrides replace individual
// non-empty fields of the defaults.
type DisplayTable struct {
	entries map[CenterKind]Display
}

// NewDisplayTable validates overrides and merges them over the defaults.
func NewDisplayTable(overrides map[string]Display) (*DisplayTable, error) {
	entries := make(map[CenterKind]Display, len(defaultDisplays))
	for k, d := range defaultDisplays {
		entries[k] = d
	}
	for name, o := range overrides {
		kind := CenterKind(strings.ToLower(strings.TrimSpace(name)))
		if kind != CenterUnknown && !kind.IsKnown() {
			return nil, fmt.Errorf("%w: %q has no display config", ErrUnknownCenter, name)
		}
		d := entries[kind]
		if o.Label != "" {
			d.Label = o.Label
		}
		if o.Icon != "" {
			d.Icon = o.Icon
		}
		if o.Color != "" {
			d.Color = o.Color
		}
		entries[kind] = d
	}
	return &DisplayTable{entries: entries}, nil
}

// For returns the display config of the center name, never an empty value.
func (t *DisplayTable) For(name string) Display {
	kind := ParseCenterKind(name)
	if t == nil {
		return defaultDisplays[kind]
	}
	if d, ok := t.entries[kind]; ok {
		return d
	}
	return t.entries[CenterUnknown]
}
