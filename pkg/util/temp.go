package util

import "math"

// CelsiusToFahrenheit converts a Celsius reading to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// RoundDegree rounds a temperature to the nearest whole degree. Contracts
// settle on whole-degree observations, so probability math rounds the same
// way.
func RoundDegree(t float64) int {
	return int(math.Round(t))
}
