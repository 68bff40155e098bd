package sdfmesh

import (
	"fmt"

	"github.com/chewxy/math32"
	sdfx "github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// sdfxShape wraps a github.com/deadsy/sdfx SDF3.
type sdfxShape struct {
	s sdfx.SDF3
}

// FromSDFX returns an SDF3 that evaluates the sdfx shape s.
func FromSDFX(s sdfx.SDF3) *sdfxShape {
	if s == nil {
		panic("nil sdfx SDF3")
	}
	return &sdfxShape{s: s}
}

// Evaluate returns the sdfx distance at p.
func (a *sdfxShape) Evaluate(p r3.Vec) float64 {
	return a.s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
}

// Bounds returns the sdfx bounding box.
func (a *sdfxShape) Bounds() r3.Box {
	bb := a.s.BoundingBox()
	return r3.Box{
		Min: r3.Vec{X: bb.Min.X, Y: bb.Min.Y, Z: bb.Min.Z},
		Max: r3.Vec{X: bb.Max.X, Y: bb.Max.Y, Z: bb.Max.Z},
	}
}

// ShaderSDF3 is a vectorized single precision distance field
// in the form used by shader based evaluators.
type ShaderSDF3 interface {
	// Evaluate stores the distance of each of pos in dist.
	Evaluate(pos []ms3.Vec, dist []float32, userData any) error
	Bounds() ms3.Box
}

// shaderShape evaluates a ShaderSDF3 one point at a time.
type shaderShape struct {
	s        ShaderSDF3
	userData any
}

// FromShader returns an SDF3 evaluating s. userData is passed through
// to every call of s.Evaluate. Evaluation errors and non-finite
// distances cause a panic which the surfacing pipeline reports as an error.
func FromShader(s ShaderSDF3, userData any) *shaderShape {
	if s == nil {
		panic("nil ShaderSDF3")
	}
	return &shaderShape{s: s, userData: userData}
}

// Evaluate returns the distance at p computed in single precision.
func (b *shaderShape) Evaluate(p r3.Vec) float64 {
	pos := [1]ms3.Vec{{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}}
	var dist [1]float32
	err := b.s.Evaluate(pos[:], dist[:], b.userData)
	if err != nil {
		panic(fmt.Errorf("shader evaluate at %v: %w", p, err))
	}
	d := dist[0]
	if math32.IsNaN(d) || math32.IsInf(d, 0) {
		panic(fmt.Errorf("shader evaluate at %v: non-finite distance %v", p, d))
	}
	return float64(d)
}

// Bounds returns the shader SDF's bounding box.
func (b *shaderShape) Bounds() r3.Box {
	bb := b.s.Bounds()
	return r3.Box{
		Min: r3.Vec{X: float64(bb.Min.X), Y: float64(bb.Min.Y), Z: float64(bb.Min.Z)},
		Max: r3.Vec{X: float64(bb.Max.X), Y: float64(bb.Max.Y), Z: float64(bb.Max.Z)},
	}
}
