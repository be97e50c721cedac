package harness

import (
	"math/cmplx"

	"github.com/spf13/pflag"
	"github.com/wildstyl3r/xmat/internal/config"
	"github.com/wildstyl3r/xmat/internal/utils"
)

type DataItem struct {
	saveFlag   *bool
	fileSuffix string
}

// SequentialDataItem is one curve output; a nil xUnit means the unit of the scanned axis.
type SequentialDataItem struct {
	DataItem
	columnNames []string
	values      func(*DataExtractor) (args []float64, values [][]float64, labels []string)
	xUnit       []config.UnitElement
	yUnit       []config.UnitElement
}

type DataFlags struct {
	all         *bool
	sequentials map[string]SequentialDataItem
	outputPath  string
}

func NewDataFlags(flags *pflag.FlagSet) DataFlags {
	return DataFlags{
		all: flags.Bool("all", false, "save every available curve"),
		sequentials: map[string]SequentialDataItem{
			"Reflectivity": {
				DataItem: DataItem{
					saveFlag:   flags.BoolP("reflectivity", "r", true, "save |s|^2 and |p|^2"),
					fileSuffix: "R",
				},
				columnNames: []string{"", "|s|^2", "|p|^2"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					s, p := utils.SquaredModuli(de.curve.S), utils.SquaredModuli(de.curve.P)
					for i := range de.curve.Axis {
						args = append(args, de.curve.Axis[i])
						values = append(values, []float64{s[i], p[i]})
					}
					return args, values, nil
				},
				yUnit: []config.UnitElement{},
			},
			"Amplitudes": {
				DataItem: DataItem{
					saveFlag:   flags.BoolP("amplitudes", "a", false, "save complex s and p amplitudes"),
					fileSuffix: "amp",
				},
				columnNames: []string{"", "Re s", "Im s", "Re p", "Im p"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for i := range de.curve.Axis {
						s, p := de.curve.S[i], de.curve.P[i]
						args = append(args, de.curve.Axis[i])
						values = append(values, []float64{real(s), imag(s), real(p), imag(p)})
					}
					return args, values, nil
				},
				yUnit: []config.UnitElement{},
			},
			"Phase": {
				DataItem: DataItem{
					saveFlag:   flags.Bool("phase", false, "save the s and p phases and their difference"),
					fileSuffix: "phase",
				},
				columnNames: []string{"", "arg s", "arg p", "arg s - arg p"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					difference := utils.PhaseDifference(de.curve.S, de.curve.P)
					for i := range de.curve.Axis {
						args = append(args, de.curve.Axis[i])
						values = append(values, []float64{
							cmplx.Phase(de.curve.S[i]),
							cmplx.Phase(de.curve.P[i]),
							difference[i],
						})
					}
					return args, values, nil
				},
				yUnit: []config.UnitElement{{Class: config.Angle, Power: 1}},
			},
			"Geometry": {
				DataItem: DataItem{
					saveFlag:   flags.Bool("geometry", false, "save energy and glancing angle of every point"),
					fileSuffix: "geom",
				},
				columnNames: []string{"", "theta"},
				values: func(de *DataExtractor) (args []float64, values [][]float64, labels []string) {
					for i := range de.curve.Energy {
						args = append(args, de.curve.Energy[i])
						values = append(values, []float64{de.curve.Theta[i]})
					}
					return args, values, nil
				},
				xUnit: []config.UnitElement{{Class: config.Energy, Power: 1}},
				yUnit: []config.UnitElement{{Class: config.Angle, Power: 1}},
			},
		},
	}
}

func (df *DataFlags) SetOutputPath(path string) {
	if path != "" && path[len(path)-1] != '/' {
		df.outputPath = path + "/"
	} else {
		df.outputPath = path
	}
}

func (df *DataFlags) GetOutputPath() string {
	return df.outputPath
}
