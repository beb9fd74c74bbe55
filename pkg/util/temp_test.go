package util

import "testing"

func TestCelsiusToFahrenheit(t *testing.T) {
	cases := []struct {
		c, f float64
	}{
		{0, 32},
		{100, 212},
		{-40, -40},
		{37.5, 99.5},
	}
	for _, tc := range cases {
		if got := CelsiusToFahrenheit(tc.c); got != tc.f {
			t.Errorf("CelsiusToFahrenheit(%v) = %v, want %v", tc.c, got, tc.f)
		}
	}
}

func TestRoundDegree(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{40.4, 40},
		{40.5, 41}, // half rounds away from zero
		{40.6, 41},
		{-0.5, -1},
		{72, 72},
	}
	for _, tc := range cases {
		if got := RoundDegree(tc.in); got != tc.want {
			t.Errorf("RoundDegree(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
