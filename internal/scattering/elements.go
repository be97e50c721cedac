package scattering

import (
	"fmt"
	"math"
)

// Element is an immutable entry of the periodic table.
type Element struct {
	Symbol string
	Z      int
	Mass   float64 // [g/mol]

	// Cromer-Mann coefficients of f0(s) = sum a_i exp(-b_i s^2) + c, s = sin(theta)/lambda [1/Å].
	// Empty A means the form factor is not tabulated for this element.
	A [4]float64
	B [4]float64
	C float64
}

func (e Element) HasFormFactor() bool {
	return e.A != [4]float64{}
}

// FormFactor returns the Thomson form factor f0 at s = sin(theta)/lambda.
func (e Element) FormFactor(s float64) float64 {
	s2 := s * s
	f0 := e.C
	for i := range e.A {
		f0 += e.A[i] * math.Exp(-e.B[i]*s2)
	}
	return f0
}

var periodicTable = map[string]Element{
	"H":  {Symbol: "H", Z: 1, Mass: 1.00794, A: [4]float64{0.489918, 0.262003, 0.196767, 0.049879}, B: [4]float64{20.6593, 7.74039, 49.5519, 2.20159}, C: 0.001305},
	"He": {Symbol: "He", Z: 2, Mass: 4.002602},
	"Li": {Symbol: "Li", Z: 3, Mass: 6.941},
	"Be": {Symbol: "Be", Z: 4, Mass: 9.012182, A: [4]float64{1.5919, 1.1278, 0.5391, 0.7029}, B: [4]float64{43.6427, 1.8623, 103.483, 0.542}, C: 0.0385},
	"B":  {Symbol: "B", Z: 5, Mass: 10.811},
	"C":  {Symbol: "C", Z: 6, Mass: 12.0107, A: [4]float64{2.31, 1.02, 1.5886, 0.865}, B: [4]float64{20.8439, 10.2075, 0.5687, 51.6512}, C: 0.2156},
	"N":  {Symbol: "N", Z: 7, Mass: 14.0067, A: [4]float64{12.2126, 3.1322, 2.0125, 1.1663}, B: [4]float64{0.0057, 9.8933, 28.9975, 0.5826}, C: -11.529},
	"O":  {Symbol: "O", Z: 8, Mass: 15.9994, A: [4]float64{3.0485, 2.2868, 1.5463, 0.867}, B: [4]float64{13.2771, 5.7011, 0.3239, 32.9089}, C: 0.2508},
	"F":  {Symbol: "F", Z: 9, Mass: 18.9984032},
	"Ne": {Symbol: "Ne", Z: 10, Mass: 20.1797},
	"Na": {Symbol: "Na", Z: 11, Mass: 22.98976928},
	"Mg": {Symbol: "Mg", Z: 12, Mass: 24.305},
	"Al": {Symbol: "Al", Z: 13, Mass: 26.9815386, A: [4]float64{6.4202, 1.9002, 1.5936, 1.9646}, B: [4]float64{3.0387, 0.7426, 31.5472, 85.0886}, C: 1.1151},
	"Si": {Symbol: "Si", Z: 14, Mass: 28.0855, A: [4]float64{6.2915, 3.0353, 1.9891, 1.541}, B: [4]float64{2.4386, 32.3337, 0.6785, 81.6937}, C: 1.1407},
	"P":  {Symbol: "P", Z: 15, Mass: 30.973762},
	"S":  {Symbol: "S", Z: 16, Mass: 32.065},
	"Cl": {Symbol: "Cl", Z: 17, Mass: 35.453},
	"Ar": {Symbol: "Ar", Z: 18, Mass: 39.948},
	"K":  {Symbol: "K", Z: 19, Mass: 39.0983},
	"Ca": {Symbol: "Ca", Z: 20, Mass: 40.078},
	"Ti": {Symbol: "Ti", Z: 22, Mass: 47.867},
	"V":  {Symbol: "V", Z: 23, Mass: 50.9415},
	"Cr": {Symbol: "Cr", Z: 24, Mass: 51.9961},
	"Mn": {Symbol: "Mn", Z: 25, Mass: 54.938045},
	"Fe": {Symbol: "Fe", Z: 26, Mass: 55.845, A: [4]float64{11.7695, 7.3573, 3.5222, 2.3045}, B: [4]float64{4.7611, 0.3072, 15.3535, 76.8805}, C: 1.0369},
	"Co": {Symbol: "Co", Z: 27, Mass: 58.933195},
	"Ni": {Symbol: "Ni", Z: 28, Mass: 58.6934, A: [4]float64{12.8376, 7.292, 4.4438, 2.38}, B: [4]float64{3.8785, 0.2565, 12.1763, 66.3421}, C: 1.0341},
	"Cu": {Symbol: "Cu", Z: 29, Mass: 63.546, A: [4]float64{13.338, 7.1676, 5.6158, 1.6735}, B: [4]float64{3.5828, 0.247, 11.3966, 64.8126}, C: 1.191},
	"Zn": {Symbol: "Zn", Z: 30, Mass: 65.38},
	"Ga": {Symbol: "Ga", Z: 31, Mass: 69.723},
	"Ge": {Symbol: "Ge", Z: 32, Mass: 72.64, A: [4]float64{16.0816, 6.3747, 3.7068, 3.683}, B: [4]float64{2.8509, 0.2516, 11.4468, 54.7625}, C: 2.1313},
	"As": {Symbol: "As", Z: 33, Mass: 74.9216},
	"Se": {Symbol: "Se", Z: 34, Mass: 78.96},
	"Kr": {Symbol: "Kr", Z: 36, Mass: 83.798},
	"Sr": {Symbol: "Sr", Z: 38, Mass: 87.62},
	"Y":  {Symbol: "Y", Z: 39, Mass: 88.90585},
	"Zr": {Symbol: "Zr", Z: 40, Mass: 91.224},
	"Nb": {Symbol: "Nb", Z: 41, Mass: 92.90638},
	"Mo": {Symbol: "Mo", Z: 42, Mass: 95.96, A: [4]float64{3.7025, 17.2356, 12.8876, 3.7429}, B: [4]float64{0.2772, 1.0958, 11.004, 61.6584}, C: 4.3875},
	"Ru": {Symbol: "Ru", Z: 44, Mass: 101.07},
	"Rh": {Symbol: "Rh", Z: 45, Mass: 102.9055},
	"Pd": {Symbol: "Pd", Z: 46, Mass: 106.42},
	"Ag": {Symbol: "Ag", Z: 47, Mass: 107.8682},
	"Cd": {Symbol: "Cd", Z: 48, Mass: 112.411},
	"In": {Symbol: "In", Z: 49, Mass: 114.818},
	"Sn": {Symbol: "Sn", Z: 50, Mass: 118.71},
	"Sb": {Symbol: "Sb", Z: 51, Mass: 121.76},
	"Te": {Symbol: "Te", Z: 52, Mass: 127.6},
	"Cs": {Symbol: "Cs", Z: 55, Mass: 132.9054519},
	"Ba": {Symbol: "Ba", Z: 56, Mass: 137.327},
	"La": {Symbol: "La", Z: 57, Mass: 138.90547},
	"Gd": {Symbol: "Gd", Z: 64, Mass: 157.25},
	"Hf": {Symbol: "Hf", Z: 72, Mass: 178.49},
	"Ta": {Symbol: "Ta", Z: 73, Mass: 180.94788},
	"W":  {Symbol: "W", Z: 74, Mass: 183.84, A: [4]float64{29.0818, 15.43, 14.4327, 5.11982}, B: [4]float64{1.72029, 9.2259, 0.321703, 57.056}, C: 9.8875},
	"Re": {Symbol: "Re", Z: 75, Mass: 186.207},
	"Os": {Symbol: "Os", Z: 76, Mass: 190.23},
	"Ir": {Symbol: "Ir", Z: 77, Mass: 192.217},
	"Pt": {Symbol: "Pt", Z: 78, Mass: 195.084, A: [4]float64{27.0059, 17.7639, 15.7131, 5.7837}, B: [4]float64{1.51293, 8.81174, 0.424593, 38.6103}, C: 11.6883},
	"Au": {Symbol: "Au", Z: 79, Mass: 196.966569, A: [4]float64{16.8819, 18.5913, 25.5582, 5.86}, B: [4]float64{0.4611, 8.6216, 1.4826, 36.3956}, C: 12.0658},
	"Pb": {Symbol: "Pb", Z: 82, Mass: 207.2},
	"Bi": {Symbol: "Bi", Z: 83, Mass: 208.9804},
	"U":  {Symbol: "U", Z: 92, Mass: 238.02891},
}

// ElementBySymbol resolves an element of the built-in periodic table.
func ElementBySymbol(symbol string) (Element, error) {
	el, some := periodicTable[symbol]
	if !some {
		return Element{}, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
	}
	return el, nil
}
