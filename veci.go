/*

Integer 3D Vectors

*/

package sdfmesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// V3i is a 3D integer vector. It addresses grid cells and sub-grid samples.
type V3i [3]int

// SubScalar subtracts a scalar from each component of the vector.
func (a V3i) SubScalar(b int) V3i {
	return V3i{a[0] - b, a[1] - b, a[2] - b}
}

// AddScalar adds a scalar to each component of the vector.
func (a V3i) AddScalar(b int) V3i {
	return V3i{a[0] + b, a[1] + b, a[2] + b}
}

// MulScalar multiplies each component of the vector by a scalar.
func (a V3i) MulScalar(b int) V3i {
	return V3i{a[0] * b, a[1] * b, a[2] * b}
}

// ToV3 converts V3i (integer) to r3.Vec (float).
func (a V3i) ToV3() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

// Add adds two vectors. Return v = a + b.
func (a V3i) Add(b V3i) V3i {
	return V3i{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub subtracts two vectors. Return v = a - b.
func (a V3i) Sub(b V3i) V3i {
	return V3i{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Volume returns the product of the components.
func (a V3i) Volume() int {
	return a[0] * a[1] * a[2]
}

// FloorV3i rounds each component of v towards negative infinity.
func FloorV3i(v r3.Vec) V3i {
	return V3i{int(math.Floor(v.X)), int(math.Floor(v.Y)), int(math.Floor(v.Z))}
}

// CeilV3i rounds each component of v towards positive infinity.
func CeilV3i(v r3.Vec) V3i {
	return V3i{int(math.Ceil(v.X)), int(math.Ceil(v.Y)), int(math.Ceil(v.Z))}
}
