package sdfmesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// SDF3 is the interface to a 3d signed distance function object.
type SDF3 interface {
	// Evaluate takes a point in 3D space as input and returns
	// the minimum distance of the SDF3 to the point. The distance
	// is negative if the point is contained within the SDF3.
	Evaluate(p r3.Vec) float64
}

// Bounder is implemented by SDF3s that know a box which completely
// contains them.
type Bounder interface {
	Bounds() r3.Box
}

// DistanceFunc adapts an ordinary function to the SDF3 interface.
type DistanceFunc func(p r3.Vec) float64

// Evaluate returns f(p).
func (f DistanceFunc) Evaluate(p r3.Vec) float64 { return f(p) }

// NormalFunc returns the unit outward normal of s at p.
// A zero vector is returned where the normal is undefined.
type NormalFunc func(s SDF3, p r3.Vec) r3.Vec

// normalStep is the central difference step used by Normal.
const normalStep = 1e-5

// Normal returns the normal of an SDF3 at a point (doesn't need to be on the surface).
// Computed by sampling it several times inside a box of side 2*normalStep centered on p.
// The zero vector is returned if the gradient vanishes at p.
func Normal(s SDF3, p r3.Vec) r3.Vec {
	return Normal3(s, p, normalStep)
}

// Normal3 is Normal with a user provided difference step eps.
func Normal3(s SDF3, p r3.Vec, eps float64) r3.Vec {
	g := Gradient(s, p, eps)
	n := r3.Norm(g)
	if n == 0 || n != n {
		return r3.Vec{}
	}
	return r3.Scale(1/n, g)
}

// Gradient returns the central difference approximation of the gradient
// of s at p.
func Gradient(s SDF3, p r3.Vec, eps float64) r3.Vec {
	inv := 1 / (2 * eps)
	return r3.Vec{
		X: (s.Evaluate(r3.Add(p, r3.Vec{X: eps})) - s.Evaluate(r3.Add(p, r3.Vec{X: -eps}))) * inv,
		Y: (s.Evaluate(r3.Add(p, r3.Vec{Y: eps})) - s.Evaluate(r3.Add(p, r3.Vec{Y: -eps}))) * inv,
		Z: (s.Evaluate(r3.Add(p, r3.Vec{Z: eps})) - s.Evaluate(r3.Add(p, r3.Vec{Z: -eps}))) * inv,
	}
}
