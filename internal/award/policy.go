// Package award maps a completed marker to point deltas for the reporter
// and the claimant. The category→points table is configuration, loadable
// from a TOML file; a compiled-in default covers deployments without one.
package award

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"github.com/cleanmap/cleanmap/internal/domain"
)

// Tier is one row of the category table. Keywords are matched by
// normalized substring containment against the marker category; the first
// tier with a hit wins, so table order is priority order.
type Tier struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
	Points   int      `toml:"points"`
}

// Table is the full award policy: a fixed reporter amount plus the ordered
// claimant tiers.
type Table struct {
	Reporter int    `toml:"reporter"`
	Tiers    []Tier `toml:"tier"`
}

// DefaultTable returns the built-in policy. Tier order encodes priority:
// hazardous > recyclable > general > small-item. A category matching
// nothing pays the claimant zero.
func DefaultTable() Table {
	return Table{
		Reporter: 10,
		Tiers: []Tier{
			{Name: "hazardous", Keywords: []string{"위험", "유해", "오염", "hazard", "contaminat"}, Points: 50},
			{Name: "recyclable", Keywords: []string{"재활용", "recycl"}, Points: 30},
			{Name: "general", Keywords: []string{"일반", "general"}, Points: 20},
			{Name: "small-item", Keywords: []string{"소형", "small"}, Points: 10},
		},
	}
}

// LoadTable reads a policy table from a TOML file.
func LoadTable(path string) (Table, error) {
	var t Table
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return Table{}, fmt.Errorf("load award table %s: %w", path, err)
	}
	if err := t.validate(); err != nil {
		return Table{}, fmt.Errorf("award table %s: %w", path, err)
	}
	return t, nil
}

func (t Table) validate() error {
	if t.Reporter < 0 {
		return fmt.Errorf("reporter amount %d is negative", t.Reporter)
	}
	for _, tier := range t.Tiers {
		if tier.Points < 0 {
			return fmt.Errorf("tier %q points %d is negative", tier.Name, tier.Points)
		}
		if len(tier.Keywords) == 0 {
			return fmt.Errorf("tier %q has no keywords", tier.Name)
		}
	}
	return nil
}

// ComputeAwards returns the point deltas for the marker's reporter and
// claimant. The reporter amount is fixed and applies whenever the reporter
// is addressable, regardless of category. The claimant amount applies only
// when the marker was actually claimed (status pending at approval time)
// and its category matches a tier.
func (t Table) ComputeAwards(m domain.Marker) (reporter, claimant int) {
	if m.ReporterKey() != "" {
		reporter = t.Reporter
	}
	if m.Status == domain.StatusPending {
		claimant = t.categoryPoints(m.Category)
	}
	return reporter, claimant
}

func (t Table) categoryPoints(category string) int {
	c := normalize(category)
	for _, tier := range t.Tiers {
		for _, kw := range tier.Keywords {
			if k := normalize(kw); k != "" && strings.Contains(c, k) {
				return tier.Points
			}
		}
	}
	return 0
}

// normalize lowercases and strips all whitespace so "재활용 쓰레기" and
// "Recyclable Waste" both match their keywords.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
