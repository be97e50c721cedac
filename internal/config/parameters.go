package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

var ErrNoModels = errors.New("no models provided")

type Config struct {
	OutputDir        string                        `yaml:"OutputDir"`
	ScatteringTables string                        `yaml:"ScatteringTables"` // directory of *.nff files
	Strict           bool                          `yaml:"Strict"`
	Materials        map[string]MaterialParameters `yaml:"Materials"`
	Models           map[string]ModelParameters    `yaml:"Models"`
	ModelParameters  `yaml:",inline"`

	InputUnits  []string `yaml:"InputUnits"`
	OutputUnits []string `yaml:"OutputUnits"`

	isDefinedMap map[string]struct{}
	meta         toml.MetaData
}

type MaterialParameters struct {
	Elements   []string  `yaml:"Elements"`
	Quantities []float64 `yaml:"Quantities"`
	Density    float64   `yaml:"Density"` // [g/cm^3]
	Kind       string    `yaml:"Kind"`
	Thickness  float64   `yaml:"Thickness"` // [length]
}

func (c *Config) isDefined(path []string) bool {
	if _, sureDefined := c.isDefinedMap[strings.Join(path, "#")]; sureDefined {
		return true
	}
	return c.meta.IsDefined(path...)
}

// markDefined records every key path of a decoded YAML document.
func (c *Config) markDefined(path []string, node map[string]any) {
	for key, value := range node {
		keyPath := append(slices.Clone(path), key)
		c.isDefinedMap[strings.Join(keyPath, "#")] = struct{}{}
		if inner, some := value.(map[string]any); some {
			c.markDefined(keyPath, inner)
		}
	}
}

// LoadConfig reads a TOML or YAML configuration; a path without extension means TOML.
func LoadConfig(path string) (*Config, error) {
	config := &Config{isDefinedMap: map[string]struct{}{}}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		config.markDefined(nil, raw)
	case "":
		path += ".toml"
		fallthrough
	default:
		meta, err := toml.DecodeFile(path, config)
		if err != nil {
			return nil, err
		}
		config.meta = meta
	}

	var unitsConflict []string
	config.InputUnits, unitsConflict = checkUnits(config.InputUnits)
	if len(unitsConflict) > 0 {
		return nil, fmt.Errorf("found input unit conflict: %v", unitsConflict)
	}
	if len(config.OutputUnits) == 0 {
		config.OutputUnits = config.InputUnits
	}
	config.OutputUnits, unitsConflict = checkUnits(config.OutputUnits)
	if len(unitsConflict) > 0 {
		return nil, fmt.Errorf("found output unit conflict: %v", unitsConflict)
	}

	for name, mp := range config.Materials {
		mp.Thickness = Convert(mp.Thickness, []UnitElement{{Class: Length, Power: 1}}, config.InputUnits, true)
		config.Materials[name] = mp
	}

	if len(config.Models) == 0 {
		return nil, ErrNoModels
	}
	return config, nil
}

type ModelParameters struct {
	Kind string `yaml:"Kind"` // mirror, slab, multilayer or crystal

	Material        string    `yaml:"Material"`
	Ambient         string    `yaml:"Ambient"`
	Substrate       string    `yaml:"Substrate"`
	Period          []string  `yaml:"Period"`         // materials of one period, top to bottom
	LayerThickness  []float64 `yaml:"LayerThickness"` // [length], per layer of Period
	Periods         int       `yaml:"Periods"`
	Grading         string    `yaml:"Grading"` // power or geometric
	GradingExponent float64   `yaml:"GradingExponent"`
	GradingLow      []float64 `yaml:"GradingLow"` // [length]
	Thickness       float64   `yaml:"Thickness"`  // [length]

	Elements         []string `yaml:"Elements"`
	Structure        string   `yaml:"Structure"` // fcc, diamond, zincblende or silicon
	Hkl              []int    `yaml:"Hkl"`
	D                float64  `yaml:"D"`               // [length]
	LatticeConstant  float64  `yaml:"LatticeConstant"` // [length]
	Geometry         string   `yaml:"Geometry"`
	Asymmetry        float64  `yaml:"Asymmetry"` // [angle]
	DebyeWallerScale float64  `yaml:"DebyeWallerScale"`
	B                float64  `yaml:"B"`                // [length^2]
	DebyeTemperature float64  `yaml:"DebyeTemperature"` // [K]
	Temperature      float64  `yaml:"Temperature"`      // [K]

	Energy        float64 `yaml:"Energy"`     // [energy]
	EnergyFrom    float64 `yaml:"EnergyFrom"` // [energy]
	EnergyTo      float64 `yaml:"EnergyTo"`   // [energy]
	Angle         float64 `yaml:"Angle"`      // [angle], glancing
	AngleFrom     float64 `yaml:"AngleFrom"`  // [angle]
	AngleTo       float64 `yaml:"AngleTo"`    // [angle]
	AngleRelative bool    `yaml:"AngleRelative"` // angles are offsets from the Bragg angle
	Points        int     `yaml:"Points"`
	LogGrid       bool    `yaml:"LogGrid"` // points evenly spaced in logarithm
	Transmission  bool    `yaml:"Transmission"`

	Reference string `yaml:"Reference"` // two-column table of the expected |r|^2
	MakeDir   bool   `yaml:"MakeDir"`

	_outputUnits []string
	_verbose     bool
	_threads     int
}

func (p *ModelParameters) OutputUnits() []string {
	return p._outputUnits
}

func (p *ModelParameters) SetOutputUnits(u []string) {
	p._outputUnits = u
}

func (p *ModelParameters) Verbose() bool {
	return p._verbose
}

func (p *ModelParameters) SetVerbosity(verbose bool) {
	p._verbose = verbose
}

func (p *ModelParameters) Threads() int {
	return p._threads
}

func (p *ModelParameters) SetThreads(threads int) {
	p._threads = threads
}

// EnergyScan reports whether energy is the scanned variable.
func (p *ModelParameters) EnergyScan() bool {
	return p.EnergyFrom != p.EnergyTo
}

var defaultValues = map[string]any{ // in engine units
	"Kind":             "mirror",
	"Structure":        "diamond",
	"Geometry":         "Bragg reflected",
	"Periods":          1,
	"Points":           501,
	"DebyeWallerScale": 1.,
	"GradingExponent":  1.,
	"AngleRelative":    false,
	"Transmission":     false,
	"LogGrid":          false,
	"MakeDir":          true,
}

var defaultUnits = []string{"eV", "angstrom", "rad"}

var fieldsXor = map[string][]string{
	"Energy":           {"EnergyFrom"},
	"EnergyFrom":       {"Energy"},
	"Angle":            {"AngleFrom"},
	"AngleFrom":        {"Angle"},
	"D":                {"LatticeConstant"},
	"LatticeConstant":  {"D"},
	"B":                {"DebyeTemperature"},
	"DebyeTemperature": {"B"},
}

var fieldsAnd = map[string][]string{
	"EnergyFrom":       {"EnergyTo"},
	"AngleFrom":        {"AngleTo"},
	"Period":           {"LayerThickness"},
	"Grading":          {"GradingLow"},
	"DebyeTemperature": {"Temperature"},
	"LatticeConstant":  {"Hkl"},
}

var fieldsDerivable = map[string][]string{
	"LatticeConstant": {"D"},
	"Energy":          {"EnergyFrom", "EnergyTo"},
	"Angle":           {"AngleFrom", "AngleTo"},
}

var valueUnits = map[string][]UnitElement{
	"LayerThickness":  {{Class: Length, Power: 1}},
	"GradingLow":      {{Class: Length, Power: 1}},
	"Thickness":       {{Class: Length, Power: 1}},
	"D":               {{Class: Length, Power: 1}},
	"LatticeConstant": {{Class: Length, Power: 1}},
	"B":               {{Class: Length, Power: 2}},
	"Asymmetry":       {{Class: Angle, Power: 1}},
	"Energy":          {{Class: Energy, Power: 1}},
	"EnergyFrom":      {{Class: Energy, Power: 1}},
	"EnergyTo":        {{Class: Energy, Power: 1}},
	"Angle":           {{Class: Angle, Power: 1}},
	"AngleFrom":       {{Class: Angle, Power: 1}},
	"AngleTo":         {{Class: Angle, Power: 1}},
}

// calculableFields fill derived fields from a defined one and return their names
var calculableFields = map[string]func(*ModelParameters, []string) ([]string, error){
	"LatticeConstant": func(mp *ModelParameters, definedFields []string) ([]string, error) {
		if !slices.Contains(definedFields, "Hkl") {
			return nil, fmt.Errorf("field 'Hkl' not found: required by D calculation from LatticeConstant")
		}
		norm := 0
		for _, h := range mp.Hkl {
			norm += h * h
		}
		if norm == 0 {
			return nil, fmt.Errorf("zero Miller indices: D calculation from LatticeConstant")
		}
		mp.D = mp.LatticeConstant / math.Sqrt(float64(norm))
		return []string{"D"}, nil
	},
	// a single energy is a scan of one point
	"Energy": func(mp *ModelParameters, _ []string) ([]string, error) {
		mp.EnergyFrom, mp.EnergyTo = mp.Energy, mp.Energy
		return []string{"EnergyFrom", "EnergyTo"}, nil
	},
	"Angle": func(mp *ModelParameters, _ []string) ([]string, error) {
		mp.AngleFrom, mp.AngleTo = mp.Angle, mp.Angle
		return []string{"AngleFrom", "AngleTo"}, nil
	},
}

func (modelConfig *ModelParameters) toEngineUnits(parameterNames, units []string) {
	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	for name := range parameterNames {
		field := modelConfigReflect.FieldByName(parameterNames[name])
		classes := valueUnits[parameterNames[name]]
		switch {
		case field.CanFloat():
			field.SetFloat(Convert(field.Float(), classes, units, true))
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Float64:
			// the backing array may be shared with the global section
			field.Set(reflect.AppendSlice(reflect.MakeSlice(field.Type(), 0, field.Len()), field))
			for i := range field.Len() {
				field.Index(i).SetFloat(Convert(field.Index(i).Float(), classes, units, true))
			}
		}
	}
}

func (modelConfig *ModelParameters) checkFieldProblems(path []string, globalConfig *Config) (ambiguities [][]string, missingDeps []string) {
	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	for field := range fieldsXor {
		if globalConfig.isDefined(append(slices.Clone(path), field)) {
			if modelConfigReflect.FieldByName(field).Kind() == reflect.Bool && !modelConfigReflect.FieldByName(field).Bool() {
				continue
			}
			var foundAlternatives []string
			for alternative := range fieldsXor[field] {
				if globalConfig.isDefined(append(slices.Clone(path), fieldsXor[field][alternative])) {
					foundAlternatives = append(foundAlternatives, fieldsXor[field][alternative])
				}
			}

			if len(foundAlternatives) > 0 {
				ambiguities = append(ambiguities, append([]string{field}, foundAlternatives...))
			}
		}
	}

	for field := range fieldsAnd {
		if globalConfig.isDefined(append(slices.Clone(path), field)) {
			for requirement := range fieldsAnd[field] {
				if !globalConfig.isDefined(append(slices.Clone(path), fieldsAnd[field][requirement])) {
					missingDeps = append(missingDeps, fieldsAnd[field][requirement])
				}
			}
		}
	}
	return
}

/*
the algorithm:
0. preload into global and local
1. check problems in global
2. check problems in local
3. check combined
4. for local make list of exclusions from possible global & default
5. load missing from global
6. convert to engine units
7. load missing from defaults
8. calculate calculables
9. check final missing and conflicts

field value priority:
1. local
2. local-calculable
3. global
4. global-calculable
5. default
*/

// CheckAndUnify completes the model from the global section and the
// defaults, converts it to engine units and validates field combinations.
func (modelConfig *ModelParameters) CheckAndUnify(modelName string, config *Config) error {
	globalAmbiguities, globalMissingDeps := config.checkFieldProblems([]string{}, config)
	localAmbiguities, localMissingDeps := modelConfig.checkFieldProblems([]string{"Models", modelName}, config)
	if len(globalAmbiguities) > 0 {
		return fmt.Errorf("found global ambiguities %v", globalAmbiguities)
	}
	if len(localAmbiguities) > 0 {
		return fmt.Errorf("model %s: found ambiguities %v", modelName, localAmbiguities)
	}
	var missingIntersection []string
	for i := range globalMissingDeps {
		if slices.Contains(localMissingDeps, globalMissingDeps[i]) {
			missingIntersection = append(missingIntersection, globalMissingDeps[i])
		}
	}
	if len(missingIntersection) > 0 {
		return fmt.Errorf("model %s: required dependent fields not found %v", modelName, missingIntersection)
	}

	var discoveredParameters []string

	excludeFromLoadingDefaultOrOuter := make(map[string]struct{})
	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	modelConfigType := modelConfigReflect.Type()
	for i := range modelConfigReflect.NumField() {
		fieldName := modelConfigType.Field(i).Name
		if config.isDefined([]string{"Models", modelName, fieldName}) {
			discoveredParameters = append(discoveredParameters, fieldName)
			for _, x := range fieldsXor[fieldName] {
				excludeFromLoadingDefaultOrOuter[x] = struct{}{}
			}
			for _, x := range fieldsDerivable[fieldName] {
				excludeFromLoadingDefaultOrOuter[x] = struct{}{}
			}
		}
	}

	globalConfigReflect := reflect.ValueOf(&config.ModelParameters).Elem()
	globalConfigType := globalConfigReflect.Type()
	for i := range globalConfigReflect.NumField() {
		fieldName := globalConfigType.Field(i).Name
		if !globalConfigType.Field(i).IsExported() {
			continue
		}
		if _, some := excludeFromLoadingDefaultOrOuter[fieldName]; !some && !config.isDefined([]string{"Models", modelName, fieldName}) && config.isDefined([]string{fieldName}) {
			modelConfigReflect.FieldByName(fieldName).Set(globalConfigReflect.Field(i))
			discoveredParameters = append(discoveredParameters, fieldName)
			excludeFromLoadingDefaultOrOuter[fieldName] = struct{}{}
			for _, x := range fieldsXor[fieldName] {
				excludeFromLoadingDefaultOrOuter[x] = struct{}{}
			}
		}
	}

	modelConfig.toEngineUnits(discoveredParameters, config.InputUnits)

	for fieldName := range defaultValues {
		if _, x := excludeFromLoadingDefaultOrOuter[fieldName]; !x && !slices.Contains(discoveredParameters, fieldName) {
			modelConfigReflect.FieldByName(fieldName).Set(reflect.ValueOf(defaultValues[fieldName]))
			discoveredParameters = append(discoveredParameters, fieldName)
		}
	}

	var enabledParameters []string
	for _, fieldName := range discoveredParameters {
		field := modelConfigReflect.FieldByName(fieldName)
		if field.Kind() != reflect.Bool || field.Bool() {
			enabledParameters = append(enabledParameters, fieldName)
		}
	}

	var errs error
	calculatedAnything := true
	for calculatedAnything {
		calculatedAnything = false
		for initialFieldName, calculate := range calculableFields {
			if !slices.Contains(enabledParameters, initialFieldName) {
				continue
			}
			calculated, err := calculate(modelConfig, enabledParameters)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			calculatedAnything = true
			enabledParameters = append(enabledParameters, calculated...)
			enabledParameters = slices.DeleteFunc(enabledParameters, func(elem string) bool {
				return elem == initialFieldName
			})
		}
		if errs != nil {
			break
		}
	}

	for _, name := range enabledParameters {
		for _, requirement := range fieldsAnd[name] {
			if !slices.Contains(enabledParameters, requirement) {
				errs = multierr.Append(errs, fmt.Errorf("for parameter %s requirement %s not found", name, requirement))
			}
		}
		for _, conflict := range fieldsXor[name] {
			if slices.Contains(enabledParameters, conflict) {
				errs = multierr.Append(errs, fmt.Errorf("for parameter %s found conflicting parameter: %s", name, conflict))
			}
		}
	}
	if errs != nil {
		return fmt.Errorf("model %s: %w", modelName, errs)
	}

	if units, conflict := checkUnits(config.OutputUnits); len(conflict) > 0 {
		modelConfig._outputUnits = config.InputUnits
	} else {
		modelConfig._outputUnits = units
	}
	return nil
}
