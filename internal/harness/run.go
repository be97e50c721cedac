package harness

import (
	"context"
	"os"
	"time"

	"github.com/wildstyl3r/xmat/internal/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Models completes and builds every configured model in natural order of
// names. Models that fail are reported in the error and left out.
func (s *Setup) Models(verbose bool, threads int) ([]*Model, error) {
	names := make([]string, 0, len(s.Config.Models))
	for name := range s.Config.Models {
		names = append(names, name)
	}
	utils.NaturalStrings(names)

	var models []*Model
	var errs error
	for _, name := range names {
		parameters := s.Config.Models[name]
		parameters.SetOutputUnits(s.Config.OutputUnits)
		parameters.SetVerbosity(verbose)
		parameters.SetThreads(threads)
		if err := parameters.CheckAndUnify(name, s.Config); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		m, err := NewModel(name, parameters, s)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		models = append(models, m)
	}
	return models, errs
}

func (s *Setup) outputPath() (string, error) {
	if s.Config.OutputDir == "" || s.Config.OutputDir == "." {
		return "", nil
	}
	if err := os.MkdirAll(s.Config.OutputDir, 0750); err != nil {
		return "", err
	}
	return s.Config.OutputDir, nil
}

// Run scans every model and saves the curves selected in df. A model with
// a Reference is also compared against it.
func Run(ctx context.Context, s *Setup, df DataFlags, verbose bool, threads int) error {
	outputPath, err := s.outputPath()
	if err != nil {
		return err
	}
	df.SetOutputPath(outputPath)

	models, errs := s.Models(verbose, threads)
	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		start := time.Now()
		curve, err := m.Run(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		de := NewDataExtractor(m, curve)
		errs = multierr.Append(errs, de.Save(df))

		if m.Parameters.Reference != "" {
			c, err := de.Compare(m.Parameters.Reference)
			if err != nil {
				errs = multierr.Append(errs, err)
			} else {
				s.Logger.Info("reference compared",
					zap.String("model", m.Name),
					zap.String("reference", m.Parameters.Reference),
					zap.Int("points", c.Points),
					zap.Float64("rms", c.RMS),
					zap.Float64("max_abs", c.MaxAbs),
					zap.Float64("bias", c.Bias),
					zap.Float64("spread", c.Spread))
				errs = multierr.Append(errs, de.SaveComparison(c, df))
			}
		}
		s.Logger.Info("model done", zap.String("model", m.Name), zap.Duration("elapsed", time.Since(start)))
	}
	return errs
}

// Angles writes the scalar table of every crystal model into a single
// file named after the run.
func Angles(ctx context.Context, s *Setup, verbose bool) error {
	outputPath, err := s.outputPath()
	if err != nil {
		return err
	}
	models, errs := s.Models(verbose, 1)

	var rows utils.CSV
	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if m.Crystal() == nil {
			continue
		}
		mrows, err := Scalars(m, s.Config.Strict)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		rows = append(rows, mrows...)
	}
	if len(rows) == 0 {
		return errs
	}
	errs = multierr.Append(errs, utils.WriteAsCSV(rows, outputPath, "angles", s.ID, ScalarColumns(s.Config.OutputUnits)))
	s.Logger.Info("angles saved", zap.Int("rows", len(rows)))
	return errs
}
