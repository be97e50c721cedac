package harness

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wildstyl3r/xmat/internal/config"
	"github.com/wildstyl3r/xmat/internal/optics"
	"github.com/wildstyl3r/xmat/internal/utils"
	"go.uber.org/zap"
)

var ErrTwoScans = errors.New("energy and angle cannot both be scanned")

type Model struct {
	Name       string
	Parameters config.ModelParameters

	setup      *Setup
	mirror     *optics.Material
	multilayer *optics.Multilayer
	crystal    *optics.Crystal
}

// Curve holds one scan. Energy and Theta are given per point, Axis is the
// scanned variable: energy, glancing angle or its offset from the Bragg angle.
type Curve struct {
	Energy     []float64
	Theta      []float64
	Axis       []float64
	EnergyAxis bool
	S, P       []complex128
}

func NewModel(name string, mp config.ModelParameters, setup *Setup) (*Model, error) {
	m := &Model{Name: name, Parameters: mp, setup: setup}
	var err error
	switch strings.ToLower(mp.Kind) {
	case "mirror":
		m.mirror, err = setup.material(mp.Material, false)
	case "slab":
		m.mirror, err = m.slab()
	case "multilayer":
		m.multilayer, err = m.newMultilayer()
	case "crystal":
		m.crystal, err = m.newCrystal()
	default:
		err = fmt.Errorf("unknown model kind %q", mp.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	if mp.AngleRelative && m.crystal == nil {
		return nil, fmt.Errorf("model %s: angles relative to the Bragg angle need a crystal", name)
	}
	return m, nil
}

// slab is the named material as a free-standing film of the model (or material) thickness.
func (m *Model) slab() (*optics.Material, error) {
	mp, some := m.setup.Config.Materials[m.Parameters.Material]
	if !some {
		return nil, fmt.Errorf("unknown material %q", m.Parameters.Material)
	}
	thickness := mp.Thickness
	if m.Parameters.Thickness > 0 {
		thickness = m.Parameters.Thickness
	}
	return optics.NewMaterial(optics.MaterialSpec{
		Name:       m.Parameters.Material,
		Elements:   mp.Elements,
		Quantities: mp.Quantities,
		Density:    mp.Density,
		Kind:       optics.ThinMirror,
		Thickness:  thickness,
	}, m.setup.Lookup, m.setup.Options...)
}

func (m *Model) newMultilayer() (*optics.Multilayer, error) {
	mp := m.Parameters
	if len(mp.Period) != len(mp.LayerThickness) {
		return nil, fmt.Errorf("%d period materials and %d layer thicknesses", len(mp.Period), len(mp.LayerThickness))
	}
	period := make([]optics.Layer, len(mp.Period))
	for i, name := range mp.Period {
		material, err := m.setup.material(name, false)
		if err != nil {
			return nil, err
		}
		period[i] = optics.Layer{Material: material, Thickness: mp.LayerThickness[i]}
	}
	ambient, err := m.setup.material(mp.Ambient, true)
	if err != nil {
		return nil, err
	}
	substrate, err := m.setup.material(mp.Substrate, true)
	if err != nil {
		return nil, err
	}
	grading := optics.Grading{Exponent: mp.GradingExponent, Low: mp.GradingLow}
	if grading.Schedule, err = optics.ParseSchedule(mp.Grading); err != nil {
		return nil, err
	}
	return optics.NewMultilayer(optics.MultilayerSpec{
		Ambient:   ambient,
		Period:    period,
		Periods:   mp.Periods,
		Substrate: substrate,
		Grading:   grading,
	}, m.setup.Options...)
}

func (m *Model) newCrystal() (*optics.Crystal, error) {
	mp := m.Parameters
	if len(mp.Hkl) != 3 {
		return nil, fmt.Errorf("need 3 Miller indices in Hkl, got %v", mp.Hkl)
	}
	hkl := [3]int{mp.Hkl[0], mp.Hkl[1], mp.Hkl[2]}
	geometry, err := optics.ParseGeometry(mp.Geometry)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(mp.Structure, "silicon") {
		if !(mp.Temperature > 0) {
			return nil, errors.New("silicon crystal needs Temperature")
		}
		return optics.NewSilicon(hkl, mp.Temperature, geometry, mp.Thickness, m.setup.Lookup, m.setup.Options...)
	}
	cell, err := optics.Cell(mp.Structure, mp.Elements...)
	if err != nil {
		return nil, err
	}
	return optics.NewCrystal(optics.CrystalSpec{
		Name:             m.Name,
		Hkl:              hkl,
		D:                mp.D,
		Cell:             cell,
		Geometry:         geometry,
		Thickness:        mp.Thickness,
		DebyeWallerScale: mp.DebyeWallerScale,
		B:                mp.B,
		DebyeTemperature: mp.DebyeTemperature,
		Temperature:      mp.Temperature,
	}, m.setup.Lookup, m.setup.Options...)
}

func (m *Model) Crystal() *optics.Crystal {
	return m.crystal
}

func grid(from, to float64, points int, log bool) []float64 {
	switch {
	case from == to || points < 2:
		return []float64{from}
	case log:
		return utils.Logspace(from, to, points)
	}
	return utils.Linspace(from, to, points)
}

// Run scans the model over its energy or angle range.
func (m *Model) Run(ctx context.Context) (*Curve, error) {
	mp := m.Parameters
	energyScan := mp.EnergyScan()
	angleScan := mp.AngleFrom != mp.AngleTo
	if energyScan && angleScan {
		return nil, fmt.Errorf("model %s: %w", m.Name, ErrTwoScans)
	}
	if !(mp.EnergyFrom > 0 && mp.EnergyTo > 0) {
		return nil, fmt.Errorf("model %s: positive Energy or EnergyFrom and EnergyTo required", m.Name)
	}
	if mp.LogGrid && angleScan && !(mp.AngleFrom > 0 && mp.AngleTo > 0) {
		return nil, fmt.Errorf("model %s: logarithmic grid needs positive angles", m.Name)
	}
	energy := grid(mp.EnergyFrom, mp.EnergyTo, mp.Points, mp.LogGrid)
	theta := grid(mp.AngleFrom, mp.AngleTo, mp.Points, mp.LogGrid)
	n := max(len(energy), len(theta))
	c := &Curve{
		Energy:     make([]float64, n),
		Theta:      make([]float64, n),
		EnergyAxis: energyScan,
	}
	for i := range n {
		c.Energy[i] = energy[min(i, len(energy)-1)]
		c.Theta[i] = theta[min(i, len(theta)-1)]
	}
	c.Axis = c.Theta
	if energyScan {
		c.Axis = c.Energy
	}

	if mp.AngleRelative {
		c.Axis = append([]float64(nil), c.Axis...)
		thetaB, err := m.crystal.BraggAngles(ctx, c.Energy)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Name, err)
		}
		for i := range c.Theta {
			c.Theta[i] += thetaB[i]
		}
	}

	var err error
	switch {
	case m.crystal != nil:
		gamma0, gammaH, hns0 := optics.Scan(m.crystal.Geometry(), c.Theta, mp.Asymmetry)
		c.S, c.P, err = m.crystal.Amplitudes(ctx, c.Energy, gamma0, gammaH, hns0)
	case m.multilayer != nil && mp.Transmission:
		c.S, c.P, err = m.multilayer.Transmissions(ctx, c.Energy, sines(c.Theta))
	case m.multilayer != nil:
		c.S, c.P, err = m.multilayer.Amplitudes(ctx, c.Energy, sines(c.Theta))
	case mp.Transmission:
		c.S, c.P, err = m.mirror.SlabTransmissions(ctx, c.Energy, sines(c.Theta))
	default:
		c.S, c.P, err = m.mirror.Amplitudes(ctx, c.Energy, sines(c.Theta))
	}
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", m.Name, err)
	}
	log := m.setup.Logger.Debug
	if mp.Verbose() {
		log = m.setup.Logger.Info
	}
	log("model scanned",
		zap.String("model", m.Name),
		zap.Int("points", n),
		zap.Bool("energy_axis", energyScan),
		zap.Int("threads", mp.Threads()),
		zap.Int("nan", countNaN(c.S)))
	return c, nil
}

func sines(theta []float64) []float64 {
	s := make([]float64, len(theta))
	for i := range theta {
		s[i] = math.Sin(theta[i])
	}
	return s
}

func countNaN(z []complex128) (n int) {
	for _, v := range z {
		if math.IsNaN(real(v)) || math.IsNaN(imag(v)) {
			n++
		}
	}
	return
}
