package must3

import (
	"math"

	"github.com/soypat/sdfmesh"
	"github.com/soypat/sdfmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shape is an SDF3 with a known bounding box.
type Shape interface {
	sdfmesh.SDF3
	sdfmesh.Bounder
}

// box is a 3d box.
type box struct {
	size  r3.Vec
	round float64
	bb    r3.Box
}

// Box return an SDF3 for a 3d box (rounded corners with round > 0).
func Box(size r3.Vec, round float64) *box {
	if d3.LTEZero(size) {
		panic("size <= 0")
	}
	if round < 0 {
		panic("round < 0")
	}
	size = r3.Scale(0.5, size)
	s := box{
		size:  r3.Sub(size, d3.Elem(round)),
		round: round,
		bb:    r3.Box{Min: r3.Scale(-1, size), Max: size},
	}
	return &s
}

// Cube returns an SDF3 for an axis aligned cube of the given side.
func Cube(side float64) *box {
	return Box(d3.Elem(side), 0)
}

// Evaluate returns the minimum distance to a 3d box.
func (s *box) Evaluate(p r3.Vec) float64 {
	return sdfBox3d(p, s.size) - s.round
}

// Bounds returns the bounding box for a 3d box.
func (s *box) Bounds() r3.Box {
	return s.bb
}

// Sphere (exact distance field)

// sphere is a sphere.
type sphere struct {
	radius float64
	bb     r3.Box
}

// Sphere return an SDF3 for a sphere.
func Sphere(radius float64) *sphere {
	if radius <= 0 {
		panic("radius <= 0")
	}
	d := d3.Elem(radius)
	s := sphere{
		radius: radius,
		bb:     r3.Box{Min: r3.Scale(-1, d), Max: d},
	}
	return &s
}

// Evaluate returns the minimum distance to a sphere.
func (s *sphere) Evaluate(p r3.Vec) float64 {
	return r3.Norm(p) - s.radius
}

// Bounds returns the bounding box for a sphere.
func (s *sphere) Bounds() r3.Box {
	return s.bb
}

type translate struct {
	s      Shape
	offset r3.Vec
}

// Translate moves s by offset.
func Translate(s Shape, offset r3.Vec) *translate {
	if s == nil {
		panic("nil shape")
	}
	return &translate{s: s, offset: offset}
}

func (t *translate) Evaluate(p r3.Vec) float64 {
	return t.s.Evaluate(r3.Sub(p, t.offset))
}

func (t *translate) Bounds() r3.Box {
	bb := t.s.Bounds()
	return r3.Box{Min: r3.Add(bb.Min, t.offset), Max: r3.Add(bb.Max, t.offset)}
}

type rotate struct {
	s       Shape
	forward r3.Rotation
	inverse r3.Rotation
	bb      r3.Box
}

// Rotate rotates s by angle radians about axis through the origin.
func Rotate(s Shape, angle float64, axis r3.Vec) *rotate {
	if s == nil {
		panic("nil shape")
	}
	if r3.Norm(axis) == 0 {
		panic("zero rotation axis")
	}
	r := &rotate{
		s:       s,
		forward: r3.NewRotation(angle, axis),
		inverse: r3.NewRotation(-angle, axis),
	}
	bb := s.Bounds()
	corners := make(d3.Set, 0, 8)
	for i := 0; i < 8; i++ {
		c := bb.Min
		if i&1 != 0 {
			c.X = bb.Max.X
		}
		if i&2 != 0 {
			c.Y = bb.Max.Y
		}
		if i&4 != 0 {
			c.Z = bb.Max.Z
		}
		corners = append(corners, r.forward.Rotate(c))
	}
	r.bb = r3.Box{Min: corners.Min(), Max: corners.Max()}
	return r
}

func (r *rotate) Evaluate(p r3.Vec) float64 {
	return r.s.Evaluate(r.inverse.Rotate(p))
}

func (r *rotate) Bounds() r3.Box {
	return r.bb
}

type union struct {
	shapes []Shape
	bb     r3.Box
}

// Union returns the union of the shapes. The result is exact
// outside of the shapes and a bound inside of them.
func Union(shapes ...Shape) *union {
	if len(shapes) == 0 {
		panic("no shapes to union")
	}
	u := &union{shapes: shapes, bb: shapes[0].Bounds()}
	for _, s := range shapes[1:] {
		bb := s.Bounds()
		u.bb = r3.Box{Min: d3.MinElem(u.bb.Min, bb.Min), Max: d3.MaxElem(u.bb.Max, bb.Max)}
	}
	return u
}

func (u *union) Evaluate(p r3.Vec) float64 {
	d := math.Inf(1)
	for _, s := range u.shapes {
		d = math.Min(d, s.Evaluate(p))
	}
	return d
}

func (u *union) Bounds() r3.Box {
	return u.bb
}

func sdfBox3d(p, s r3.Vec) float64 {
	d := r3.Sub(d3.AbsElem(p), s)
	if d.X > 0 && d.Y > 0 && d.Z > 0 {
		return r3.Norm(d)
	}
	if d.X > 0 && d.Y > 0 {
		return math.Hypot(d.X, d.Y)
	}
	if d.X > 0 && d.Z > 0 {
		return math.Hypot(d.X, d.Z)
	}
	if d.Y > 0 && d.Z > 0 {
		return math.Hypot(d.Y, d.Z)
	}
	if d.X > 0 {
		return d.X
	}
	if d.Y > 0 {
		return d.Y
	}
	if d.Z > 0 {
		return d.Z
	}
	return d3.Max(d)
}
