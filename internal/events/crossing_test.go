package events

import (
	"math"
	"testing"

	"github.com/san-kum/odekit/internal/dense"
	"github.com/san-kum/odekit/internal/dynamo"
)

func TestDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"rising", Rising},
		{"UP", Rising},
		{"falling", Falling},
		{"down", Falling},
		{"", Either},
		{"either", Either},
	}
	for _, tt := range tests {
		if got := ParseDirection(tt.in); got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestThresholdDirections(t *testing.T) {
	samples := []float64{-1, 1, -1, 1}
	tests := []struct {
		dir  Direction
		hits int
	}{
		{Either, 3},
		{Rising, 2},
		{Falling, 1},
	}
	for _, tt := range tests {
		c := Threshold(0, 0.0, tt.dir)
		for i, v := range samples {
			c.Detect(float64(i), dynamo.State[float64]{v})
		}
		if c.Count() != tt.hits {
			t.Errorf("%v: %d crossings, want %d", tt.dir, c.Count(), tt.hits)
		}
	}
}

func TestFirstSamplePrimes(t *testing.T) {
	c := Threshold(0, 0.0, Either)
	if c.Detect(0, dynamo.State[float64]{0}) {
		t.Error("first sample fired")
	}
	if _, ok := c.EventTime(); ok {
		t.Error("event time before any crossing")
	}
}

func TestLinearEstimateAndLocalize(t *testing.T) {
	// x(t) = t² on [1, 2] crosses 2 at sqrt(2).
	c := Threshold(0, 2.0, Rising, Terminal[float64](), WithName[float64]("sqrt2"))
	c.Detect(1, dynamo.State[float64]{1})
	if !c.Detect(2, dynamo.State[float64]{4}) {
		t.Fatal("crossing missed")
	}
	linear, ok := c.EventTime()
	if !ok || math.Abs(linear-4.0/3.0) > 1e-12 {
		t.Errorf("linear estimate %v", linear)
	}

	h, err := dense.NewHermite(1.0,
		dynamo.State[float64]{1}, dynamo.State[float64]{2},
		2.0, dynamo.State[float64]{4}, dynamo.State[float64]{4})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Localize(h); err != nil {
		t.Fatal(err)
	}
	got, _ := c.EventTime()
	if math.Abs(got-math.Sqrt2) > 1e-9 {
		t.Errorf("localized time %.12f, want %.12f", got, math.Sqrt2)
	}
	if !c.Terminal() || c.Name != "sqrt2" {
		t.Errorf("options not applied: %+v", c)
	}

	// A second Localize without a new crossing is a no-op.
	if err := c.Localize(h); err != nil {
		t.Fatal(err)
	}
	if again, _ := c.EventTime(); again != got {
		t.Errorf("event time moved to %v", again)
	}
}

func TestCustomFunctionAndReset(t *testing.T) {
	g := func(t float64, _ dynamo.State[float64]) float64 { return t - 0.5 }
	c := NewCrossing(g, Either, WithTolerance(1e-6))
	c.Detect(0, dynamo.State[float64]{0})
	if !c.Detect(1, dynamo.State[float64]{0}) {
		t.Fatal("time crossing missed")
	}
	c.Reset()
	if c.Count() != 0 {
		t.Errorf("Count() = %d after Reset", c.Count())
	}
	if c.Detect(2, dynamo.State[float64]{0}) {
		t.Error("detector was not re-primed by Reset")
	}
}
