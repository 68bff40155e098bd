package surfacing

import (
	"math"
	"testing"

	"github.com/soypat/sdfmesh"
	"github.com/soypat/sdfmesh/form3/must3"
	"github.com/soypat/sdfmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestVariance(t *testing.T) {
	x, y := r3.Vec{X: 1}, r3.Vec{Y: 1}
	for _, test := range []struct {
		a, b r3.Vec
		want float64
	}{
		{x, x, 0},
		{x, r3.Scale(-1, x), 1},
		{x, y, 0.5},
	} {
		if got := variance(test.a, test.b); got != test.want {
			t.Errorf("variance(%v,%v): got %g, want %g", test.a, test.b, got, test.want)
		}
	}
}

func TestDiffSamples(t *testing.T) {
	cfg := DefaultConfig(1)
	sp := newSampler(must3.Cube(2), cfg)
	a := &Sample{Position: r3.Vec{X: 1, Y: 0.9}, Normal: r3.Vec{X: 1}}
	b := &Sample{Position: r3.Vec{X: 0.9, Y: 1}, Normal: r3.Vec{Y: 1}}
	opposite := &Sample{Position: r3.Vec{X: -1, Y: 0.9}, Normal: r3.Vec{X: -1}}
	same := &Sample{Position: r3.Vec{X: 1, Y: 0.8}, Normal: r3.Vec{X: 1}}

	for _, test := range []struct {
		name string
		a, b *Sample
	}{
		{"missing sample", a, nil},
		{"identical normals", a, same},
		{"opposite normals", a, opposite},
	} {
		if _, ok := sp.diffSamples(test.a, test.b); ok {
			t.Errorf("%s: unexpected contour", test.name)
		}
	}

	c, ok := sp.diffSamples(a, b)
	if !ok {
		t.Fatal("expected contour across cube edge")
	}
	if c.Strength != 0.5 {
		t.Errorf("got strength %g, want 0.5", c.Strength)
	}
	if c.Direction != (r3.Vec{Z: 1}) {
		t.Errorf("got direction %v, want +Z", c.Direction)
	}
	// The crease lies on the line x=1, y=1.
	if !d3.EqualWithin(c.Position, r3.Vec{X: 1, Y: 1}, cfg.SubStep()) {
		t.Errorf("contour position %v far from cube edge", c.Position)
	}
	if c.First != a || c.Second != b {
		t.Error("contour does not reference source samples")
	}
}

func TestSmoothSurfaceHasNoStrongContours(t *testing.T) {
	cfg := DefaultConfig(2)
	sp := newSampler(must3.Sphere(5), cfg)
	cs := sp.sampleCell(sdfmesh.V3i{2, 0, 0})
	all := sp.contourGrid(cs)
	if len(all) == 0 {
		t.Fatal("expected weak contours between neighbouring samples")
	}
	for _, c := range all {
		if math.Abs(r3.Norm(c.Direction)-1) > 1e-9 {
			t.Fatalf("contour direction not unit: %v", c.Direction)
		}
		if c.Strength <= 0 || c.Strength >= cfg.Tolerance {
			t.Fatalf("unexpected contour strength %g on sphere", c.Strength)
		}
	}
	if got := IsolateContours(cfg.Tolerance, all); len(got) != 0 {
		t.Errorf("got %d contours above tolerance on smooth sphere", len(got))
	}
}

func TestCubeCornerContours(t *testing.T) {
	cfg := DefaultConfig(1)
	cfg.Tolerance = 0.01
	s := must3.Cube(4)
	sp := newSampler(s, cfg)
	// Cell holds the cube corner at (-2,-2,-2).
	cs := sp.sampleCell(sdfmesh.V3i{-2, -2, -2})
	if cs == nil {
		t.Fatal("expected active corner cell")
	}
	contours := IsolateContours(cfg.Tolerance, sp.contourGrid(cs))
	if len(contours) == 0 {
		t.Fatal("expected contours along cube edges")
	}
	for _, c := range contours {
		if c.Strength <= cfg.Tolerance {
			t.Fatalf("contour strength %g not above tolerance", c.Strength)
		}
		if n := nearCubeEdges(c.Position, 2, cfg.DistanceTolerance()); n < 2 {
			t.Errorf("contour at %v not near a cube edge", c.Position)
		}
	}
}

func TestIsolateContours(t *testing.T) {
	contours := []Contour{{Strength: 0.1}, {Strength: 0.5}, {Strength: 0.2}, {Strength: 0.9}}
	got := IsolateContours(0.2, contours)
	if len(got) != 2 || got[0].Strength != 0.5 || got[1].Strength != 0.9 {
		t.Errorf("got %+v", got)
	}
}

// nearCubeEdges counts the coordinates of p within tol of the faces of
// an origin centered cube with half side h.
func nearCubeEdges(p r3.Vec, h, tol float64) (n int) {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.Abs(math.Abs(v)-h) <= tol {
			n++
		}
	}
	return n
}
