package surfacing

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/sdfmesh"
	"github.com/soypat/sdfmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrOpenFace is wrapped by errors of face walks that could not close.
var ErrOpenFace = errors.New("open face")

// VertexFace is a closed polygon given by its ordered vertices.
type VertexFace []r3.Vec

// corner is a face corner: a vertex with its two face edges in
// canonical order.
type corner struct {
	v    r3.Vec
	a, b Edge
}

func newCorner(v r3.Vec, a, b Edge) corner {
	if edgeLess(b, a) {
		a, b = b, a
	}
	return corner{v: v, a: a, b: b}
}

func edgeLess(a, b Edge) bool {
	if a.A != b.A {
		return d3.Less(a.A, b.A)
	}
	return d3.Less(a.B, b.B)
}

// faceBuilder holds the state shared by all face walks over one edge set.
type faceBuilder struct {
	s       sdfmesh.SDF3
	index   map[r3.Vec][]Edge
	usage   map[Edge]int
	corners map[corner]struct{}
	// maxSteps bounds a single walk.
	maxSteps int
}

// Faces reconstructs the polygons bordered by edges and corrects their
// winding against the normals of s. Faces that cannot be closed are
// skipped and reported in the returned error, which wraps ErrOpenFace.
func Faces(s sdfmesh.SDF3, normal sdfmesh.NormalFunc, edges []Edge) ([]VertexFace, error) {
	if normal == nil {
		normal = sdfmesh.Normal
	}
	fb := &faceBuilder{
		s:        s,
		index:    vertexEdges(edges),
		usage:    make(map[Edge]int, len(edges)),
		corners:  make(map[corner]struct{}),
		maxSteps: len(edges) + 1,
	}
	var (
		faces []VertexFace
		errs  []error
	)
	for _, e := range edges {
		for _, start := range [2]r3.Vec{e.B, e.A} {
			if fb.usage[e] >= 2 {
				break
			}
			face, used, err := fb.walk(e, start)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			fb.commit(face, used)
			faces = append(faces, face)
		}
	}
	for _, f := range faces {
		alignWinding(s, normal, f)
	}
	return faces, errors.Join(errs...)
}

// walk traces the face boundary starting with edge first from start.
// It returns the face vertices and the edges in walk order; used[i]
// connects face[i] and face[i+1] (cyclically).
func (fb *faceBuilder) walk(first Edge, start r3.Vec) (VertexFace, []Edge, error) {
	current := first.Other(start)
	face := VertexFace{start, current}
	used := []Edge{first}
	inFace := map[r3.Vec]bool{start: true, current: true}
	prev := first
	for step := 0; step < fb.maxSteps; step++ {
		var (
			best      Edge
			bestScore = math.Inf(-1)
			bestDist  = math.Inf(1)
			found     bool
		)
		for _, e := range fb.index[current] {
			if e == prev || fb.usage[e] >= 2 || fb.cornerUsed(current, prev, e) {
				continue
			}
			w := e.Other(current)
			if w == start {
				if len(face) < 3 || fb.cornerUsed(start, e, first) {
					continue
				}
			} else if inFace[w] {
				continue
			}
			score, dist := fb.score(face, current, w)
			if score > bestScore || (score == bestScore && dist < bestDist) {
				best, bestScore, bestDist, found = e, score, dist, true
			}
		}
		if !found {
			return nil, nil, fmt.Errorf("face from %v through %v: dead end at %v after %d vertices: %w", start, first.Other(start), current, len(face), ErrOpenFace)
		}
		w := best.Other(current)
		used = append(used, best)
		if w == start {
			return face, used, nil
		}
		face = append(face, w)
		inFace[w] = true
		prev = best
		current = w
	}
	return nil, nil, fmt.Errorf("face from %v: exceeded %d steps: %w", start, fb.maxSteps, ErrOpenFace)
}

// score rates continuing the face from current to w. Until the face has
// a plane the candidate whose triangle centroid is closest to the
// surface wins. Afterwards the candidate keeping the face planar wins.
// dist breaks ties.
func (fb *faceBuilder) score(face VertexFace, current, w r3.Vec) (score, dist float64) {
	n := len(face)
	prev := face[n-2]
	dist = math.Abs(fb.s.Evaluate(d3.Set{prev, current, w}.Centroid()))
	if n < 3 {
		return -dist, dist
	}
	running := d3.PlaneNormal(face[n-3], prev, current)
	candidate := d3.PlaneNormal(prev, current, w)
	return math.Abs(r3.Dot(running, candidate)), dist
}

func (fb *faceBuilder) cornerUsed(v r3.Vec, a, b Edge) bool {
	_, ok := fb.corners[newCorner(v, a, b)]
	return ok
}

// commit records the edges and corners of a closed face.
func (fb *faceBuilder) commit(face VertexFace, used []Edge) {
	n := len(face)
	for i, v := range face {
		in := used[(i+n-1)%n]
		out := used[i]
		fb.corners[newCorner(v, in, out)] = struct{}{}
	}
	for _, e := range used {
		fb.usage[e]++
	}
}

// FaceNormal returns the unit Newell normal of the face, oriented by
// its winding. Degenerate faces give the zero vector.
func FaceNormal(f VertexFace) r3.Vec {
	var n r3.Vec
	for i, v := range f {
		next := f[(i+1)%len(f)]
		n = r3.Add(n, r3.Cross(v, next))
	}
	norm := r3.Norm(n)
	if norm == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/norm, n)
}

// alignWinding reverses f in place if its normal opposes the field
// normal at its centroid.
func alignWinding(s sdfmesh.SDF3, normal sdfmesh.NormalFunc, f VertexFace) {
	gradient := normal(s, d3.Set(f).Centroid())
	if r3.Dot(FaceNormal(f), gradient) < 0 {
		for i, j := 0, len(f)-1; i < j; i, j = i+1, j-1 {
			f[i], f[j] = f[j], f[i]
		}
	}
}
