package surfacing

import (
	"github.com/soypat/sdfmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Edge is an undirected segment between two vertices. Edges built with
// NewEdge store their endpoints in lexicographic order so that == and
// map keys treat Edge(a,b) and Edge(b,a) as the same edge.
type Edge struct {
	A, B r3.Vec
}

// NewEdge returns the canonical edge between a and b.
func NewEdge(a, b r3.Vec) Edge {
	if d3.Less(b, a) {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Degenerate reports whether both endpoints coincide.
func (e Edge) Degenerate() bool { return e.A == e.B }

// Contains reports whether v is an endpoint of e.
func (e Edge) Contains(v r3.Vec) bool { return e.A == v || e.B == v }

// Other returns the endpoint of e that is not v.
func (e Edge) Other(v r3.Vec) r3.Vec {
	if e.A == v {
		return e.B
	}
	return e.A
}

// Length returns the distance between the endpoints.
func (e Edge) Length() float64 { return r3.Norm(r3.Sub(e.B, e.A)) }

// Direction returns the unit vector from A to B.
func (e Edge) Direction() r3.Vec { return r3.Unit(r3.Sub(e.B, e.A)) }

// Remap returns e with endpoints replaced through m.
// Endpoints not present in m are kept.
func (e Edge) Remap(m map[r3.Vec]r3.Vec) Edge {
	a, b := e.A, e.B
	if v, ok := m[a]; ok {
		a = v
	}
	if v, ok := m[b]; ok {
		b = v
	}
	return NewEdge(a, b)
}

// Vertices returns the distinct endpoints of edges in order of appearance.
func Vertices(edges []Edge) []r3.Vec {
	seen := make(map[r3.Vec]struct{}, len(edges))
	var vertices []r3.Vec
	for _, e := range edges {
		for _, v := range [2]r3.Vec{e.A, e.B} {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				vertices = append(vertices, v)
			}
		}
	}
	return vertices
}

// vertexEdges indexes edges by endpoint. Edge order is preserved.
func vertexEdges(edges []Edge) map[r3.Vec][]Edge {
	index := make(map[r3.Vec][]Edge, len(edges))
	for _, e := range edges {
		index[e.A] = append(index[e.A], e)
		index[e.B] = append(index[e.B], e)
	}
	return index
}

// dedupe removes degenerate and repeated edges keeping first occurrences.
// The input slice is reused.
func dedupe(edges []Edge) []Edge {
	seen := make(map[Edge]struct{}, len(edges))
	kept := edges[:0]
	for _, e := range edges {
		if _, ok := seen[e]; ok || e.Degenerate() {
			continue
		}
		seen[e] = struct{}{}
		kept = append(kept, e)
	}
	return kept
}

// farthestPoints returns the two mutually farthest points found by a
// single greedy pass: each point challenges the current pair by
// replacing one of its ends if that lengthens it.
func farthestPoints(points []r3.Vec) (a, b r3.Vec) {
	a, b = points[0], points[1]
	best := r3.Norm(r3.Sub(a, b))
	for _, p := range points[2:] {
		da := r3.Norm(r3.Sub(a, p))
		db := r3.Norm(r3.Sub(b, p))
		switch {
		case da > best && da >= db:
			b, best = p, da
		case db > best:
			a, best = p, db
		}
	}
	return a, b
}

// LineToEdge reduces a line aggregate to the edge between its farthest
// contour positions. It reports false for aggregates of fewer than two
// contours or zero length results.
func LineToEdge(line LineAggregate) (Edge, bool) {
	if len(line) < 2 {
		return Edge{}, false
	}
	points := make([]r3.Vec, len(line))
	for i, c := range line {
		points[i] = c.Position
	}
	e := NewEdge(farthestPoints(points))
	return e, !e.Degenerate()
}

// FinalizeEdges converts line aggregates into welded edges.
func FinalizeEdges(distanceTolerance float64, lines []LineAggregate) []Edge {
	var edges []Edge
	for _, line := range lines {
		if e, ok := LineToEdge(line); ok {
			edges = append(edges, e)
		}
	}
	return WeldEdges(distanceTolerance, edges)
}
