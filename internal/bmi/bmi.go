// Package bmi computes body-mass-index values.
package bmi

// Calculate returns weight (kg) divided by the square of height (m).
// No range checks are made; a zero height yields +Inf or NaN.
func Calculate(weight, height float64) float64 {
	return weight / (height * height)
}
