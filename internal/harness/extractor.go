package harness

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/wildstyl3r/xmat/internal/config"
	"github.com/wildstyl3r/xmat/internal/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

var ErrNoOverlap = errors.New("reference does not overlap the scan")

type DataExtractor struct {
	model *Model
	curve *Curve
}

func NewDataExtractor(model *Model, curve *Curve) *DataExtractor {
	return &DataExtractor{model: model, curve: curve}
}

func (de *DataExtractor) axisUnit() []config.UnitElement {
	if de.curve.EnergyAxis {
		return []config.UnitElement{{Class: config.Energy, Power: 1}}
	}
	return []config.UnitElement{{Class: config.Angle, Power: 1}}
}

func (de *DataExtractor) axisName() string {
	units := de.model.Parameters.OutputUnits()
	switch {
	case de.curve.EnergyAxis:
		return "E (" + config.EnergyUnit(units) + ")"
	case de.model.Parameters.AngleRelative:
		return "theta - thetaB (" + config.AngleUnit(units) + ")"
	}
	return "theta (" + config.AngleUnit(units) + ")"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Save writes every selected curve of the model.
func (de *DataExtractor) Save(df DataFlags) (errs error) {
	units := de.model.Parameters.OutputUnits()
	for name, output := range df.sequentials {
		if !*output.saveFlag && !*df.all {
			continue
		}
		file, err := utils.OpenFile(de.model.Parameters.MakeDir, df.outputPath, output.fileSuffix, de.model.Name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unable to save %s: %w", name, err))
			continue
		}

		xUnit := output.xUnit
		header := slices.Clone(output.columnNames)
		if xUnit == nil {
			xUnit = de.axisUnit()
			header[0] = de.axisName()
		} else {
			header[0] = "E (" + config.EnergyUnit(units) + ")"
		}
		rows := [][]string{header}
		xColumnValue, yColumnValues, yLabels := output.values(de)
		if len(yLabels) > 0 {
			rows = append(rows, append([]string{""}, yLabels...))
		}
		for x := range xColumnValue {
			row := []string{formatFloat(config.Convert(xColumnValue[x], xUnit, units, false))}
			for i := range yColumnValues[x] {
				row = append(row, formatFloat(config.Convert(yColumnValues[x][i], output.yUnit, units, false)))
			}
			rows = append(rows, row)
		}
		w := csv.NewWriter(file)
		if err := w.WriteAll(rows); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("error writing csv: %w", err))
		}
		errs = multierr.Append(errs, file.Close())
		de.model.setup.Logger.Debug("curve saved", zap.String("model", de.model.Name), zap.String("output", name))
	}
	return errs
}

// Comparison of the s reflectivity with a reference curve at the reference abscissae.
type Comparison struct {
	Points int
	RMS    float64
	MaxAbs float64
	Bias   float64 // mean of computed minus reference
	Spread float64 // standard deviation of the differences
	X      []float64 // engine units
	Want   []float64
	Got    []float64
}

// Compare interpolates |s|^2 linearly onto the points of a two-column
// reference table (abscissa in output units) inside the scanned range.
func (de *DataExtractor) Compare(path string) (*Comparison, error) {
	pairs, err := utils.ReadFloatPairs(path)
	if err != nil {
		return nil, err
	}

	var xs, ys []float64
	reflectivity := utils.SquaredModuli(de.curve.S)
	for i := range de.curve.Axis {
		if !math.IsNaN(reflectivity[i]) {
			xs = append(xs, de.curve.Axis[i])
			ys = append(ys, reflectivity[i])
		}
	}
	if len(xs) > 1 && xs[0] > xs[len(xs)-1] {
		slices.Reverse(xs)
		slices.Reverse(ys)
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: fewer than two computed points", ErrNoOverlap)
	}
	var curve interp.PiecewiseLinear
	if err := curve.Fit(xs, ys); err != nil {
		return nil, err
	}

	c := &Comparison{}
	for _, pair := range pairs {
		x := config.Convert(pair[0], de.axisUnit(), de.model.Parameters.OutputUnits(), true)
		if x < xs[0] || x > xs[len(xs)-1] {
			continue
		}
		c.X = append(c.X, x)
		c.Want = append(c.Want, pair[1])
		c.Got = append(c.Got, curve.Predict(x))
	}
	c.Points = len(c.X)
	if c.Points == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOverlap, path)
	}
	c.RMS = floats.Distance(c.Got, c.Want, 2) / math.Sqrt(float64(c.Points))
	c.MaxAbs = floats.Distance(c.Got, c.Want, math.Inf(1))
	differences := floats.SubTo(make([]float64, c.Points), c.Got, c.Want)
	var variance float64
	c.Bias, variance = utils.MeanAndVariance(differences, false)
	c.Spread = math.Sqrt(variance)
	return c, nil
}

// SaveComparison writes reference and computed values side by side.
func (de *DataExtractor) SaveComparison(c *Comparison, df DataFlags) error {
	units := de.model.Parameters.OutputUnits()
	file, err := utils.OpenFile(de.model.Parameters.MakeDir, df.outputPath, "ref", de.model.Name)
	if err != nil {
		return fmt.Errorf("unable to save comparison: %w", err)
	}
	defer file.Close()

	rows := [][]string{{de.axisName(), "reference", "|s|^2", "difference"}}
	for i := range c.X {
		rows = append(rows, []string{
			formatFloat(config.Convert(c.X[i], de.axisUnit(), units, false)),
			formatFloat(c.Want[i]),
			formatFloat(c.Got[i]),
			formatFloat(c.Got[i] - c.Want[i]),
		})
	}
	w := csv.NewWriter(file)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("error writing csv: %w", err)
	}
	return nil
}
