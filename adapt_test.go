package sdfmesh

import (
	"errors"
	"math"
	"testing"

	"github.com/chewxy/math32"
	sdfx "github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFromSDFX(t *testing.T) {
	sphere, err := sdfx.Sphere3D(5)
	if err != nil {
		t.Fatal(err)
	}
	s := FromSDFX(sphere)
	for _, tc := range []struct {
		p    r3.Vec
		want float64
	}{
		{p: r3.Vec{}, want: -5},
		{p: r3.Vec{X: 5}, want: 0},
		{p: r3.Vec{Y: -7}, want: 2},
	} {
		if got := s.Evaluate(tc.p); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Evaluate(%v) = %g, want %g", tc.p, got, tc.want)
		}
	}
	box, err := sdfx.Box3D(v3.Vec{X: 2, Y: 4, Z: 6}, 0)
	if err != nil {
		t.Fatal(err)
	}
	bb := FromSDFX(box).Bounds()
	if bb.Min != (r3.Vec{X: -1, Y: -2, Z: -3}) || bb.Max != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("got bounds %+v", bb)
	}
}

type shaderSphere struct {
	r float32
}

func (s shaderSphere) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	if userData != nil {
		return userData.(error)
	}
	for i, p := range pos {
		dist[i] = ms3.Norm(p) - s.r
	}
	return nil
}

func (s shaderSphere) Bounds() ms3.Box {
	return ms3.Box{Min: ms3.Vec{X: -s.r, Y: -s.r, Z: -s.r}, Max: ms3.Vec{X: s.r, Y: s.r, Z: s.r}}
}

type shaderNaN struct{ shaderSphere }

func (shaderNaN) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	dist[0] = math32.NaN()
	return nil
}

func TestFromShader(t *testing.T) {
	s := FromShader(shaderSphere{r: 2}, nil)
	if got := s.Evaluate(r3.Vec{X: 3}); got != 1 {
		t.Errorf("got %g, want 1", got)
	}
	if bb := s.Bounds(); bb.Max != (r3.Vec{X: 2, Y: 2, Z: 2}) {
		t.Errorf("got bounds %+v", bb)
	}

	errShader := errors.New("shader failed")
	failing := FromShader(shaderSphere{r: 2}, errShader)
	func() {
		defer func() {
			err, _ := recover().(error)
			if !errors.Is(err, errShader) {
				t.Errorf("got panic %v, want wrapped shader error", err)
			}
		}()
		failing.Evaluate(r3.Vec{})
	}()

	nan := FromShader(shaderNaN{}, nil)
	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on NaN distance")
			}
		}()
		nan.Evaluate(r3.Vec{})
	}()
}
