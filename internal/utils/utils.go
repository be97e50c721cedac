package utils

import (
	"cmp"
	"math"
	"math/cmplx"
	"slices"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
)

func Argmax[T cmp.Ordered](arr []T) (argmax int) {
	for i := range arr {
		if cmp.Compare(arr[i], arr[argmax]) == 1 {
			argmax = i
		}
	}
	return
}

type Number interface {
	constraints.Float | constraints.Integer
}

func SumSlice[T Number](arr []T) (r T) {
	for i := range arr {
		r += arr[i]
	}
	return
}

func Average[T Number](s []T) (mean float64) {
	for i := range s {
		mean += float64(s[i])
	}
	mean /= float64(len(s))
	return
}

func MeanAndVariance[T Number](s []T, unbiased bool) (mean, variance float64) {
	mean = Average(s)
	for i := range s {
		variance += (float64(s[i]) - mean) * (float64(s[i]) - mean)
	}
	if unbiased {
		variance /= float64(len(s) - 1)
	} else {
		variance /= float64(len(s))
	}

	return
}

func IntAbs(a int) int {
	if a < 0 {
		return -a
	} else {
		return a
	}

}

func Intersect(a, b []string) *string {
	for i := range a {
		if slices.Contains(b, a[i]) {
			return &a[i]
		}
	}
	return nil
}

// Linspace returns n evenly spaced values over [from, to].
func Linspace(from, to float64, n int) []float64 {
	if n == 1 {
		return []float64{from}
	}
	return floats.Span(make([]float64, n), from, to)
}

// Logspace returns n values evenly spaced in logarithm over [from, to]; both bounds must be positive.
func Logspace(from, to float64, n int) []float64 {
	if n == 1 {
		return []float64{from}
	}
	g := floats.LogSpan(make([]float64, n), from, to)
	g[0], g[n-1] = from, to
	return g
}

// SquaredModuli returns |z|^2 for every element.
func SquaredModuli(z []complex128) []float64 {
	r := make([]float64, len(z))
	for i := range z {
		a := cmplx.Abs(z[i])
		r[i] = a * a
	}
	return r
}

// PhaseDifference returns arg(a * conj(b)) element-wise, unwrapped along the slice.
func PhaseDifference(a, b []complex128) []float64 {
	phi := make([]float64, len(a))
	for i := range a {
		phi[i] = cmplx.Phase(a[i] * cmplx.Conj(b[i]))
		if i > 0 && !math.IsNaN(phi[i-1]) {
			for phi[i]-phi[i-1] > math.Pi {
				phi[i] -= 2 * math.Pi
			}
			for phi[i]-phi[i-1] < -math.Pi {
				phi[i] += 2 * math.Pi
			}
		}
	}
	return phi
}
