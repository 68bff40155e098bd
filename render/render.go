package render

import (
	"fmt"
	"io"

	"github.com/soypat/sdfmesh/internal/d3"
	"github.com/soypat/sdfmesh/surfacing"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle. Vertices are counter-clockwise when
// seen from the side its normal points to.
type Triangle3 struct {
	V [3]r3.Vec
	// N is the normal of the face the triangle was cut from.
	// When zero the winding normal is used.
	N r3.Vec
}

// Normal returns N or, if N is zero, the unit normal of the winding.
// Degenerate triangles without N have a zero normal.
func (t Triangle3) Normal() r3.Vec {
	if t.N != (r3.Vec{}) {
		return t.N
	}
	return d3.PlaneNormal(t.V[0], t.V[1], t.V[2])
}

// Renderer streams triangles. ReadTriangles fills t and returns the
// number of triangles written. io.EOF is returned once no triangles remain.
type Renderer interface {
	ReadTriangles(t []Triangle3) (int, error)
}

// Triangulate splits every mesh face into a fan of triangles around
// its first vertex. Faces with fewer than 3 vertices are skipped.
func Triangulate(m surfacing.Mesh) []Triangle3 {
	var tris []Triangle3
	for _, f := range m.Faces {
		tris = fan(tris, m, f)
	}
	return tris
}

// triangleCount returns the number of triangles Triangulate cuts m into
// and checks that faces only reference vertices of m.
func triangleCount(m surfacing.Mesh) (int, error) {
	var n int
	for i, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return 0, fmt.Errorf("face %d references vertex %d out of %d", i, idx, len(m.Vertices))
			}
		}
		if len(f) >= 3 {
			n += len(f) - 2
		}
	}
	return n, nil
}

// fan appends the fan triangulation of f to dst. Every triangle
// carries the face normal.
func fan(dst []Triangle3, m surfacing.Mesh, f surfacing.IndexedFace) []Triangle3 {
	if len(f) < 3 {
		return dst
	}
	face := make(surfacing.VertexFace, len(f))
	for i, idx := range f {
		face[i] = m.Vertices[idx]
	}
	n := surfacing.FaceNormal(face)
	for i := 1; i < len(face)-1; i++ {
		dst = append(dst, Triangle3{V: [3]r3.Vec{face[0], face[i], face[i+1]}, N: n})
	}
	return dst
}

// meshRenderer streams the fan triangulation of a mesh one face at a time.
type meshRenderer struct {
	m       surfacing.Mesh
	face    int
	pending []Triangle3
}

// NewMeshRenderer returns a Renderer that triangulates m as Triangulate does.
func NewMeshRenderer(m surfacing.Mesh) Renderer {
	return &meshRenderer{m: m}
}

func (r *meshRenderer) ReadTriangles(t []Triangle3) (n int, err error) {
	for n < len(t) {
		if len(r.pending) == 0 {
			if r.face == len(r.m.Faces) {
				break
			}
			r.pending = fan(r.pending[:0], r.m, r.m.Faces[r.face])
			r.face++
			continue
		}
		c := copy(t[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	if n == 0 && len(t) > 0 {
		return 0, io.EOF
	}
	return n, nil
}
