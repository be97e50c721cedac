package harness

import (
	"fmt"
	"math"

	"github.com/wildstyl3r/xmat/internal/config"
	"github.com/wildstyl3r/xmat/internal/optics"
	"github.com/wildstyl3r/xmat/internal/utils"
)

// ScalarColumns names the columns of Scalars rows for the given output units.
func ScalarColumns(units []string) []string {
	angle := " (" + config.AngleUnit(units) + ")"
	return []string{
		"model",
		"E (" + config.EnergyUnit(units) + ")",
		"thetaB" + angle,
		"dtheta symmetric" + angle,
		"dtheta regular" + angle,
		"dtheta exact" + angle,
		"Darwin width s" + angle,
		"Darwin width p" + angle,
		"extinction length s (A)",
		"mu0 (1/cm)",
		"delta",
		"beta",
	}
}

// Scalars tabulates the angular quantities of a crystal model at every
// energy of its scan. Failing quantities are NaN unless strict.
func Scalars(m *Model, strict bool) (utils.CSV, error) {
	c := m.Crystal()
	if c == nil {
		return nil, fmt.Errorf("model %s is not a crystal", m.Name)
	}
	mp := m.Parameters
	units := mp.OutputUnits()
	angle := []config.UnitElement{{Class: config.Angle, Power: 1}}
	energyUnit := []config.UnitElement{{Class: config.Energy, Power: 1}}

	var rows utils.CSV
	for i, energy := range grid(mp.EnergyFrom, mp.EnergyTo, mp.Points, mp.LogGrid) {
		var firstErr error
		value := func(v float64, err error) float64 {
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return math.NaN()
			}
			return v
		}

		thetaB := value(c.BraggAngle(energy))
		b := optics.Asymmetry(c.Geometry(), thetaB, mp.Asymmetry)
		n, err := c.RefractiveIndex(energy)
		if err != nil {
			value(0, err)
			n = complex(math.NaN(), math.NaN())
		}
		row := []float64{
			thetaB,
			value(c.DthetaSymmetric(energy)),
			value(c.DthetaRegular(energy, mp.Asymmetry)),
			value(c.Dtheta(energy, mp.Asymmetry)),
			value(c.DarwinWidth(energy, b, optics.S)),
			value(c.DarwinWidth(energy, b, optics.P)),
		}
		if strict && firstErr != nil {
			return nil, fmt.Errorf("model %s at %g eV: %w", m.Name, energy, firstErr)
		}

		record := []string{
			fmt.Sprintf("%s_%d", m.Name, i+1),
			formatFloat(config.Convert(energy, energyUnit, units, false)),
		}
		for _, v := range row {
			record = append(record, formatFloat(config.Convert(v, angle, units, false)))
		}
		record = append(record,
			formatFloat(value(c.ExtinctionLength(energy, optics.S))),
			formatFloat(value(c.AbsorptionCoefficient(energy))),
			formatFloat(1-real(n)),
			formatFloat(-imag(n)),
		)
		if strict && firstErr != nil {
			return nil, fmt.Errorf("model %s at %g eV: %w", m.Name, energy, firstErr)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
