package config

import (
	"math"

	"github.com/wildstyl3r/xmat/internal/utils"
)

// engine units are eV, Å and rad
var unitToBase = map[string]float64{
	"eV":       1,                      // [eV]
	"keV":      1e3,                    // [eV]
	"angstrom": 1,                      // [Å]
	"A":        1,                      // [Å]
	"nm":       10,                     // [Å]
	"um":       1e4,                    // [Å]
	"mm":       1e7,                    // [Å]
	"cm":       1e8,                    // [Å]
	"rad":      1,                      // [rad]
	"mrad":     1e-3,                   // [rad]
	"urad":     1e-6,                   // [rad]
	"deg":      math.Pi / 180,          // [rad]
	"arcsec":   math.Pi / (180 * 3600), // [rad]
}

type UnitClass int

const (
	Length UnitClass = iota
	Energy
	Angle
)

var unitsInClass = map[UnitClass][]string{
	Length: {"angstrom", "A", "nm", "um", "mm", "cm"},
	Energy: {"eV", "keV"},
	Angle:  {"rad", "mrad", "urad", "deg", "arcsec"},
}

var classesOfUnits = map[string]UnitClass{
	"angstrom": Length,
	"A":        Length,
	"nm":       Length,
	"um":       Length,
	"mm":       Length,
	"cm":       Length,
	"eV":       Energy,
	"keV":      Energy,
	"rad":      Angle,
	"mrad":     Angle,
	"urad":     Angle,
	"deg":      Angle,
	"arcsec":   Angle,
}

type UnitElement = struct {
	Class UnitClass
	Power int
}

// checkUnits completes units with the defaults of missing classes. Unknown
// units and second units of one class are conflicts.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if !known {
			conflicts = append(conflicts, unit)
			continue
		}
		if _, some := classes[class]; some {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string(nil), units...)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

// Convert moves v between the given units and the engine units: into the
// engine units when direct, out of them otherwise.
func Convert(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for i := range classes {
		uc := classes[i]
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		absPower := utils.IntAbs(uc.Power)
		if direct == (uc.Power > 0) {
			for range absPower {
				v *= unitToBase[*unit]
			}
		} else {
			for range absPower {
				v /= unitToBase[*unit]
			}
		}
	}
	return v
}

// AngleUnit returns the angle unit among units, rad when none is given.
func AngleUnit(units []string) string {
	if unit := utils.Intersect(unitsInClass[Angle], units); unit != nil {
		return *unit
	}
	return "rad"
}

// EnergyUnit returns the energy unit among units, eV when none is given.
func EnergyUnit(units []string) string {
	if unit := utils.Intersect(unitsInClass[Energy], units); unit != nil {
		return *unit
	}
	return "eV"
}
