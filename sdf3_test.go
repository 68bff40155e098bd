package sdfmesh

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNormal(t *testing.T) {
	sphere := DistanceFunc(func(p r3.Vec) float64 { return r3.Norm(p) - 1 })
	for _, p := range []r3.Vec{{X: 2}, {Y: -0.5}, {X: 1, Y: 1, Z: 1}} {
		got := Normal(sphere, p)
		want := r3.Unit(p)
		if r3.Norm(r3.Sub(got, want)) > 1e-6 {
			t.Errorf("Normal at %v = %v, want %v", p, got, want)
		}
	}
	flat := DistanceFunc(func(r3.Vec) float64 { return 1 })
	if got := Normal(flat, r3.Vec{}); got != (r3.Vec{}) {
		t.Errorf("constant field normal %v, want zero", got)
	}
	nan := DistanceFunc(func(r3.Vec) float64 { return math.NaN() })
	if got := Normal(nan, r3.Vec{}); got != (r3.Vec{}) {
		t.Errorf("NaN field normal %v, want zero", got)
	}
}

func TestGradient(t *testing.T) {
	plane := DistanceFunc(func(p r3.Vec) float64 { return 2*p.X - 3*p.Z })
	g := Gradient(plane, r3.Vec{X: 1, Y: 2, Z: 3}, 1e-3)
	if math.Abs(g.X-2) > 1e-9 || math.Abs(g.Y) > 1e-9 || math.Abs(g.Z+3) > 1e-9 {
		t.Errorf("got gradient %v, want (2,0,-3)", g)
	}
}

func TestV3i(t *testing.T) {
	a := V3i{1, -2, 3}
	if a.Add(V3i{1, 1, 1}) != a.AddScalar(1) {
		t.Error("Add and AddScalar disagree")
	}
	if a.Sub(a) != (V3i{}) || a.SubScalar(1) != (V3i{0, -3, 2}) {
		t.Error("bad subtraction")
	}
	if a.MulScalar(2) != (V3i{2, -4, 6}) || a.Volume() != -6 {
		t.Error("bad scaling")
	}
	if a.ToV3() != (r3.Vec{X: 1, Y: -2, Z: 3}) {
		t.Error("bad conversion")
	}
	v := r3.Vec{X: -0.5, Y: 1.5, Z: 2}
	if FloorV3i(v) != (V3i{-1, 1, 2}) || CeilV3i(v) != (V3i{0, 2, 2}) {
		t.Errorf("got floor %v ceil %v", FloorV3i(v), CeilV3i(v))
	}
}
