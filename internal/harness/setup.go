// Package harness builds optical elements from a configuration, scans them
// and writes the curves and scalar tables as CSV.
package harness

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wildstyl3r/xmat/internal/config"
	"github.com/wildstyl3r/xmat/internal/optics"
	"github.com/wildstyl3r/xmat/internal/scattering"
	"github.com/wildstyl3r/xmat/internal/utils"
	"go.uber.org/zap"
)

var ErrNoTables = errors.New("no scattering tables configured")

// Setup is what every model of one configuration shares.
type Setup struct {
	ID        string // run id, attached to every log entry
	Config    *config.Config
	Lookup    optics.Lookup
	Materials map[string]*optics.Material
	Options   []optics.Option
	Logger    *zap.Logger
}

// NewSetup loads the scattering tables and builds the named materials.
func NewSetup(cfg *config.Config, logger *zap.Logger, threads int) (*Setup, error) {
	if cfg.ScatteringTables == "" {
		return nil, ErrNoTables
	}
	tables := scattering.NewTables()
	symbols, err := tables.LoadDir(cfg.ScatteringTables)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: %s holds no element tables", ErrNoTables, cfg.ScatteringTables)
	}
	s, err := newSetup(cfg, scattering.NewCache(tables), logger, threads)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("scattering tables loaded", zap.String("dir", cfg.ScatteringTables), zap.Strings("elements", symbols))
	return s, nil
}

func newSetup(cfg *config.Config, lookup optics.Lookup, logger *zap.Logger, threads int) (*Setup, error) {
	id := uuid.New().String()
	logger = logger.With(zap.String("run", id))
	s := &Setup{
		ID:        id,
		Config:    cfg,
		Lookup:    lookup,
		Materials: make(map[string]*optics.Material, len(cfg.Materials)),
		Logger:    logger,
		Options: []optics.Option{
			optics.WithStrict(cfg.Strict),
			optics.WithLogger(logger),
		},
	}
	if threads != 1 {
		s.Options = append(s.Options, optics.WithKernel(optics.Parallel{Workers: threads}))
	}

	names := make([]string, 0, len(cfg.Materials))
	for name := range cfg.Materials {
		names = append(names, name)
	}
	utils.NaturalStrings(names)
	for _, name := range names {
		mp := cfg.Materials[name]
		kind, err := optics.ParseKind(mp.Kind)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", name, err)
		}
		m, err := optics.NewMaterial(optics.MaterialSpec{
			Name:       name,
			Elements:   mp.Elements,
			Quantities: mp.Quantities,
			Density:    mp.Density,
			Kind:       kind,
			Thickness:  mp.Thickness,
		}, lookup, s.Options...)
		if err != nil {
			return nil, err
		}
		s.Materials[name] = m
	}
	return s, nil
}

// material resolves a material name; empty means vacuum when allowed.
func (s *Setup) material(name string, vacuum bool) (*optics.Material, error) {
	if name == "" {
		if vacuum {
			return nil, nil
		}
		return nil, errors.New("material name required")
	}
	m, some := s.Materials[name]
	if !some {
		return nil, fmt.Errorf("unknown material %q", name)
	}
	return m, nil
}
