package optics

import (
	"fmt"
	"strings"
)

// Atom of a unit cell at fractional coordinates.
type Atom struct {
	Element   string
	Position  [3]float64
	Occupancy float64 // 1 when zero
}

func (a Atom) occupancy() float64 {
	if a.Occupancy == 0 {
		return 1
	}
	return a.Occupancy
}

var fccSites = [][3]float64{
	{0, 0, 0},
	{0, 0.5, 0.5},
	{0.5, 0, 0.5},
	{0.5, 0.5, 0},
}

// FCC is the four-atom face-centred cubic cell.
func FCC(symbol string) []Atom {
	cell := make([]Atom, 0, len(fccSites))
	for _, r := range fccSites {
		cell = append(cell, Atom{Element: symbol, Position: r})
	}
	return cell
}

// ZincBlende is two FCC sublattices shifted by (1/4, 1/4, 1/4).
func ZincBlende(first, second string) []Atom {
	cell := FCC(first)
	for _, r := range fccSites {
		cell = append(cell, Atom{Element: second, Position: [3]float64{r[0] + 0.25, r[1] + 0.25, r[2] + 0.25}})
	}
	return cell
}

// Diamond is the eight-atom cell of Si, Ge and C (diamond).
func Diamond(symbol string) []Atom {
	return ZincBlende(symbol, symbol)
}

// Cell returns a named cubic cell: "fcc", "diamond" or "zincblende" (two symbols).
func Cell(structure string, symbols ...string) ([]Atom, error) {
	want := 1
	s := strings.ToLower(strings.TrimSpace(structure))
	if s == "zincblende" {
		want = 2
	}
	if len(symbols) != want {
		return nil, fmt.Errorf("%w: %s cell takes %d elements, got %d", ErrInvalidComposition, s, want, len(symbols))
	}
	switch s {
	case "fcc":
		return FCC(symbols[0]), nil
	case "diamond":
		return Diamond(symbols[0]), nil
	case "zincblende":
		return ZincBlende(symbols[0], symbols[1]), nil
	}
	return nil, fmt.Errorf("%w: unknown structure %q", ErrInvalidLattice, structure)
}

type Geometry int

const (
	BraggReflected Geometry = iota
	BraggTransmitted
	LaueReflected
	LaueTransmitted
)

var geometryNames = map[Geometry]string{
	BraggReflected:   "Bragg reflected",
	BraggTransmitted: "Bragg transmitted",
	LaueReflected:    "Laue reflected",
	LaueTransmitted:  "Laue transmitted",
}

func (g Geometry) String() string {
	if name, some := geometryNames[g]; some {
		return name
	}
	return fmt.Sprintf("Geometry(%d)", int(g))
}

func (g Geometry) IsBragg() bool {
	return g == BraggReflected || g == BraggTransmitted
}

func (g Geometry) IsReflected() bool {
	return g == BraggReflected || g == LaueReflected
}

// ParseGeometry accepts "Bragg reflected", "laue_transmitted" and the like. Empty is BraggReflected.
func ParseGeometry(s string) (Geometry, error) {
	s = strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s)))
	if s == "" {
		return BraggReflected, nil
	}
	for g, name := range geometryNames {
		if strings.ToLower(name) == s {
			return g, nil
		}
	}
	return BraggReflected, fmt.Errorf("unknown crystal geometry %q", s)
}

type Polarization int

const (
	S Polarization = iota
	P
)

func (p Polarization) String() string {
	if p == P {
		return "p"
	}
	return "s"
}
