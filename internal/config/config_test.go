package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlConfig = `
OutputDir = "out"
ScatteringTables = "tables"
InputUnits = ["keV", "deg", "nm"]
OutputUnits = ["eV", "mrad"]
Energy = 8.0
Points = 11

[Materials.W]
Elements = ["W"]
Density = 19.3

[Materials.film]
Elements = ["C"]
Density = 2.2
Kind = "thin mirror"
Thickness = 5.0

[Models.mirror]
Material = "W"
AngleFrom = 0.1
AngleTo = 1.0

[Models.si]
Kind = "crystal"
Structure = "silicon"
Hkl = [1, 1, 1]
Temperature = 295.0
EnergyFrom = 9.0
EnergyTo = 11.0
Angle = 11.4

[Models.diamond]
Kind = "crystal"
Elements = ["Si"]
Hkl = [1, 1, 1]
LatticeConstant = 0.543106
DebyeTemperature = 645.0
Temperature = 295.0
Angle = 11.4

[Models.ml]
Kind = "multilayer"
Period = ["W", "film"]
LayerThickness = [1.2, 2.8]
Periods = 40
Grading = "power"
GradingLow = [1.0, 2.5]
Angle = 1.0
`

const yamlConfig = `
ScatteringTables: tables
InputUnits: [keV]
Energy: 10
Models:
  si:
    Kind: crystal
    Elements: [Si]
    Structure: diamond
    Hkl: [1, 1, 1]
    LatticeConstant: 5.43106
    B: 0.4466
    AngleRelative: true
    AngleFrom: -0.0001
    AngleTo: 0.0001
    Points: 201
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func unify(t *testing.T, config *Config, name string) ModelParameters {
	t.Helper()
	mp := config.Models[name]
	require.NoError(t, mp.CheckAndUnify(name, config))
	return mp
}

func TestCheckUnits(t *testing.T) {
	extended, conflicts := checkUnits([]string{"keV", "deg"})
	assert.Empty(t, conflicts)
	assert.Equal(t, []string{"keV", "deg", "angstrom"}, extended)

	extended, conflicts = checkUnits(nil)
	assert.Empty(t, conflicts)
	assert.Equal(t, defaultUnits, extended)

	_, conflicts = checkUnits([]string{"eV", "keV", "furlong"})
	assert.Equal(t, []string{"keV", "furlong"}, conflicts)
}

func TestConvert(t *testing.T) {
	energy := []UnitElement{{Class: Energy, Power: 1}}
	angle := []UnitElement{{Class: Angle, Power: 1}}
	area := []UnitElement{{Class: Length, Power: 2}}
	perLength := []UnitElement{{Class: Length, Power: -1}}

	assert.InDelta(t, 10000., Convert(10, energy, []string{"keV"}, true), 1e-9)
	assert.InDelta(t, 10., Convert(10000, energy, []string{"keV"}, false), 1e-12)
	assert.InDelta(t, math.Pi/180, Convert(1, angle, []string{"deg"}, true), 1e-15)
	assert.InDelta(t, 100., Convert(1, area, []string{"nm"}, true), 1e-12)
	assert.InDelta(t, 0.1, Convert(1, perLength, []string{"nm"}, true), 1e-15)
	assert.InDelta(t, 4.848136811e-6, Convert(1, angle, []string{"arcsec"}, true), 1e-15)
	// a class without a unit passes through
	assert.Equal(t, 3., Convert(3, angle, []string{"keV"}, true))

	assert.Equal(t, "rad", AngleUnit(nil))
	assert.Equal(t, "mrad", AngleUnit([]string{"eV", "mrad"}))
	assert.Equal(t, "eV", EnergyUnit([]string{"deg"}))
	assert.Equal(t, "keV", EnergyUnit([]string{"keV"}))
}

func TestLoadConfigTOML(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "xmat.toml", tomlConfig))
	require.NoError(t, err)

	assert.Equal(t, "out", config.OutputDir)
	assert.Equal(t, []string{"keV", "deg", "nm"}, config.InputUnits)
	assert.Equal(t, []string{"eV", "mrad", "angstrom"}, config.OutputUnits)
	assert.Len(t, config.Models, 4)
	assert.InDelta(t, 50., config.Materials["film"].Thickness, 1e-12)
	assert.Equal(t, "thin mirror", config.Materials["film"].Kind)
}

func TestLoadConfigWithoutExtension(t *testing.T) {
	path := writeConfig(t, "xmat.toml", tomlConfig)
	config, err := LoadConfig(path[:len(path)-len(".toml")])
	require.NoError(t, err)
	assert.Len(t, config.Models, 4)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "empty.toml", `OutputDir = "out"`))
	assert.ErrorIs(t, err, ErrNoModels)

	_, err = LoadConfig(writeConfig(t, "units.toml", "InputUnits = [\"eV\", \"keV\"]\n[Models.m]\nMaterial = \"W\"\n"))
	assert.ErrorContains(t, err, "input unit conflict")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestGlobalValuesAndDefaults(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "xmat.toml", tomlConfig))
	require.NoError(t, err)

	mp := unify(t, config, "mirror")
	assert.Equal(t, "mirror", mp.Kind)
	assert.InDelta(t, 8000., mp.EnergyFrom, 1e-9)
	assert.InDelta(t, 8000., mp.EnergyTo, 1e-9)
	assert.InDelta(t, 0.1*math.Pi/180, mp.AngleFrom, 1e-15)
	assert.InDelta(t, math.Pi/180, mp.AngleTo, 1e-15)
	assert.Equal(t, 11, mp.Points)
	assert.Equal(t, 1, mp.Periods)
	assert.True(t, mp.MakeDir)
	assert.False(t, mp.EnergyScan())
	assert.Equal(t, config.OutputUnits, mp.OutputUnits())

	// the model's own range wins over the global energy
	mp = unify(t, config, "si")
	assert.True(t, mp.EnergyScan())
	assert.InDelta(t, 9000., mp.EnergyFrom, 1e-9)
	assert.InDelta(t, 11000., mp.EnergyTo, 1e-9)
	assert.InDelta(t, 11.4*math.Pi/180, mp.AngleFrom, 1e-15)
	assert.Equal(t, mp.AngleFrom, mp.AngleTo)
	assert.Equal(t, "Bragg reflected", mp.Geometry)
	assert.Equal(t, 1., mp.DebyeWallerScale)
}

func TestLatticeConstantGivesD(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "xmat.toml", tomlConfig))
	require.NoError(t, err)

	mp := unify(t, config, "diamond")
	assert.InDelta(t, 5.43106, mp.LatticeConstant, 1e-12)
	assert.InDelta(t, 3.13562, mp.D, 1e-5)
	assert.Equal(t, "diamond", mp.Structure)
}

func TestSlicesConvertedOnce(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "xmat.toml", tomlConfig))
	require.NoError(t, err)

	for range 2 {
		mp := unify(t, config, "ml")
		assert.InDeltaSlice(t, []float64{12, 28}, mp.LayerThickness, 1e-9)
		assert.InDeltaSlice(t, []float64{10, 25}, mp.GradingLow, 1e-9)
	}
	assert.Equal(t, []float64{1.2, 2.8}, config.Models["ml"].LayerThickness)
}

func TestCheckAndUnifyErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			name:    "local ambiguity",
			content: "[Models.m]\nEnergy = 8000.0\nEnergyFrom = 7000.0\nEnergyTo = 9000.0\n",
			message: "ambiguities",
		},
		{
			name:    "global ambiguity",
			content: "D = 3.1\nLatticeConstant = 5.4\n[Models.m]\nEnergy = 8000.0\n",
			message: "global ambiguities",
		},
		{
			name:    "missing requirement",
			content: "[Models.m]\nEnergy = 8000.0\nDebyeTemperature = 645.0\n",
			message: "requirement Temperature not found",
		},
		{
			name:    "lattice constant without hkl",
			content: "Hkl = [0, 0, 0]\n[Models.m]\nEnergy = 8000.0\nLatticeConstant = 5.4\n",
			message: "zero Miller indices",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(writeConfig(t, "xmat.toml", tt.content))
			require.NoError(t, err)
			mp := config.Models["m"]
			err = mp.CheckAndUnify("m", config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadConfigYAML(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, "xmat.yaml", yamlConfig))
	require.NoError(t, err)
	assert.Equal(t, "tables", config.ScatteringTables)
	assert.True(t, config.isDefined([]string{"Models", "si", "LatticeConstant"}))
	assert.False(t, config.isDefined([]string{"Models", "si", "D"}))

	mp := unify(t, config, "si")
	assert.InDelta(t, 10000., mp.EnergyFrom, 1e-9)
	assert.InDelta(t, 3.13562, mp.D, 1e-5)
	assert.InDelta(t, 0.4466, mp.B, 1e-12)
	assert.True(t, mp.AngleRelative)
	assert.InDelta(t, -1e-4, mp.AngleFrom, 1e-15)
	assert.Equal(t, 201, mp.Points)
	assert.Equal(t, []string{"keV", "angstrom", "rad"}, mp.OutputUnits())
}
