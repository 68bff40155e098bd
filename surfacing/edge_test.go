package surfacing

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestEdgeSymmetry(t *testing.T) {
	a, b := r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 1, Y: 2, Z: -3}
	ab, ba := NewEdge(a, b), NewEdge(b, a)
	if ab != ba {
		t.Fatalf("Edge(a,b)=%v differs from Edge(b,a)=%v", ab, ba)
	}
	set := map[Edge]int{ab: 1}
	if set[ba] != 1 {
		t.Error("reversed edge not found in map")
	}
	if !ab.Contains(a) || !ab.Contains(b) || ab.Contains(r3.Vec{}) {
		t.Error("bad Contains")
	}
	if ab.Other(a) != b || ab.Other(b) != a {
		t.Error("bad Other")
	}
	if ab.Length() != 6 {
		t.Errorf("got length %g", ab.Length())
	}
	if NewEdge(a, a).Degenerate() != true || ab.Degenerate() {
		t.Error("bad Degenerate")
	}
}

func TestEdgeRemap(t *testing.T) {
	a, b, c := r3.Vec{X: 1}, r3.Vec{X: 2}, r3.Vec{X: -1}
	e := NewEdge(a, b).Remap(map[r3.Vec]r3.Vec{b: c})
	if e != NewEdge(c, a) {
		t.Errorf("got %v", e)
	}
	if e.A != c {
		t.Errorf("remapped edge not canonical: %v", e)
	}
}

func TestDedupe(t *testing.T) {
	a, b, c := r3.Vec{X: 1}, r3.Vec{X: 2}, r3.Vec{X: 3}
	got := dedupe([]Edge{NewEdge(a, b), NewEdge(b, a), {A: c, B: c}, NewEdge(b, c)})
	if len(got) != 2 || got[0] != NewEdge(a, b) || got[1] != NewEdge(b, c) {
		t.Errorf("got %v", got)
	}
}

func TestVertices(t *testing.T) {
	a, b, c := r3.Vec{X: 1}, r3.Vec{X: 2}, r3.Vec{X: 3}
	got := Vertices([]Edge{NewEdge(a, b), NewEdge(c, b)})
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Errorf("got %v", got)
	}
}

func TestFarthestPoints(t *testing.T) {
	points := []r3.Vec{{X: 1}, {X: 2}, {X: 0}, {X: 5}, {X: 3}}
	a, b := farthestPoints(points)
	if NewEdge(a, b) != NewEdge(r3.Vec{}, r3.Vec{X: 5}) {
		t.Errorf("got farthest pair %v %v", a, b)
	}
}

func TestLineToEdge(t *testing.T) {
	single := LineAggregate{{Position: r3.Vec{X: 1}}}
	if _, ok := LineToEdge(single); ok {
		t.Error("single contour produced an edge")
	}
	coincident := LineAggregate{{Position: r3.Vec{X: 1}}, {Position: r3.Vec{X: 1}}}
	if _, ok := LineToEdge(coincident); ok {
		t.Error("zero length edge not dropped")
	}
	line := LineAggregate{{Position: r3.Vec{X: 1}}, {Position: r3.Vec{X: -1}}, {Position: r3.Vec{}}}
	e, ok := LineToEdge(line)
	if !ok || e != NewEdge(r3.Vec{X: 1}, r3.Vec{X: -1}) {
		t.Errorf("got %v %v", e, ok)
	}
}

func TestFinalizeEdges(t *testing.T) {
	lines := []LineAggregate{
		{{Position: r3.Vec{}}, {Position: r3.Vec{X: 4}}},
		{{Position: r3.Vec{X: 0.1}}, {Position: r3.Vec{Y: 4}}},
		{{Position: r3.Vec{Z: 1}}},
	}
	edges := FinalizeEdges(0.5, lines)
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}
	corner := r3.Vec{X: 0.05}
	for _, e := range edges {
		if !e.Contains(corner) {
			t.Errorf("edge %v not welded at %v", e, corner)
		}
	}
}
