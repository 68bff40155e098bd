package surfacing_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/soypat/sdfmesh"
	"github.com/soypat/sdfmesh/form3/must3"
	"github.com/soypat/sdfmesh/internal/d3"
	"github.com/soypat/sdfmesh/surfacing"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSphere(t *testing.T) {
	const radius = 5
	s := must3.Sphere(radius)
	cfg := surfacing.DefaultConfig(2)
	sf, err := surfacing.NewSurfacer(s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := surfacing.GridBounds{Start: sdfmesh.V3i{-3, -3, -3}, End: sdfmesh.V3i{3, 3, 3}}
	if sf.Bounds() != want {
		t.Fatalf("got bounds %v, want %v", sf.Bounds(), want)
	}
	var active int
	for i := 0; i < sf.Bounds().CellCount(); i++ {
		cell := sf.Bounds().CellIndex(i)
		cs := sf.SampleCell(i)
		if cs != nil {
			active++
		}
		if cell == (sdfmesh.V3i{}) && cs != nil {
			t.Error("interior cell sampled")
		}
		if cell == (sdfmesh.V3i{2, 0, 0}) && cs == nil {
			t.Error("shell cell not sampled")
		}
	}
	if active == 0 {
		t.Fatal("no active cells")
	}
	m, err := sf.Mesh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	maxErr := 2 * cfg.CellSize / float64(cfg.SubCells)
	for _, v := range m.Vertices {
		if d := math.Abs(r3.Norm(v) - radius); d > maxErr {
			t.Errorf("vertex %v is %g from the sphere", v, d)
		}
	}
}

func TestTraceCellsWorkers(t *testing.T) {
	cfg := surfacing.DefaultConfig(1)
	cfg.Tolerance = 0.01
	trace := func(workers int) [][]surfacing.Edge {
		cfg.Workers = workers
		sf, err := surfacing.NewSurfacer(must3.Cube(4), cfg)
		if err != nil {
			t.Fatal(err)
		}
		cells, err := sf.TraceCells(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(cells) != sf.Bounds().CellCount() {
			t.Fatalf("got %d cells, want %d", len(cells), sf.Bounds().CellCount())
		}
		return cells
	}
	sequential := trace(1)
	concurrent := trace(4)
	if !reflect.DeepEqual(sequential, concurrent) {
		t.Error("traced cells depend on the number of workers")
	}
	var edges int
	for _, c := range sequential {
		edges += len(c)
	}
	if edges == 0 {
		t.Error("no edges traced on a cube")
	}
}

func TestCube(t *testing.T) {
	const half = 2
	s := must3.Cube(2 * half)
	cfg := surfacing.DefaultConfig(1)
	cfg.SubCells = 8
	cfg.Tolerance = 0.01
	cfg.Workers = 4
	sf, err := surfacing.NewSurfacer(s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	edges, err := sf.Edges(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) == 0 {
		t.Fatal("no edges found on cube")
	}
	tol := cfg.CellSize / 2
	for _, v := range surfacing.Vertices(edges) {
		var near int
		for _, c := range [3]float64{v.X, v.Y, v.Z} {
			if math.Abs(math.Abs(c)-half) <= tol {
				near++
			}
		}
		if near < 2 {
			t.Errorf("vertex %v is not near a cube edge", v)
		}
	}

	m, err := sf.Mesh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) != 6 {
		t.Fatalf("got %d faces, want 6", len(m.Faces))
	}
	for _, f := range m.VertexFaces() {
		n := surfacing.FaceNormal(f)
		gradient := sdfmesh.Normal(s, d3.Set(f).Centroid())
		if r3.Dot(n, gradient) < 0 {
			t.Errorf("face %v wound against the field", f)
		}
	}
}

var errBoom = errors.New("boom")

type panicky struct{}

func (panicky) Evaluate(r3.Vec) float64 { panic(errBoom) }

func TestTraceCellsPanic(t *testing.T) {
	bounds := surfacing.GridBounds{End: sdfmesh.V3i{2, 1, 1}}
	sf, err := surfacing.NewSurfacerBounds(panicky{}, surfacing.DefaultConfig(1), bounds)
	if err != nil {
		t.Fatal(err)
	}
	_, err = sf.Mesh(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("got error %v, want wrapped panic", err)
	}
	var cellErr *surfacing.CellError
	if !errors.As(err, &cellErr) {
		t.Fatalf("got error %T, want *surfacing.CellError", err)
	}
	if cellErr.Cell != (sdfmesh.V3i{0, 0, 0}) && cellErr.Cell != (sdfmesh.V3i{1, 0, 0}) {
		t.Errorf("panic reported in cell %v outside of bounds", cellErr.Cell)
	}
	if !strings.Contains(cellErr.Stack, "panicky.Evaluate") {
		t.Errorf("stack does not show the panicking call:\n%s", cellErr.Stack)
	}
}

// halfSphere underestimates the distance to a sphere by half. It is a
// valid distance bound that probing cannot size.
type halfSphere struct{ radius float64 }

func (h halfSphere) Evaluate(p r3.Vec) float64 { return (r3.Norm(p) - h.radius) / 2 }

func (h halfSphere) Bounds() r3.Box {
	return r3.Box{Min: d3.Elem(-h.radius), Max: d3.Elem(h.radius)}
}

func TestNewSurfacerBounder(t *testing.T) {
	s := halfSphere{radius: 3}
	sf, err := surfacing.NewSurfacer(s, surfacing.DefaultConfig(1))
	if err != nil {
		t.Fatal(err)
	}
	want := surfacing.GridBounds{Start: sdfmesh.V3i{-3, -3, -3}, End: sdfmesh.V3i{3, 3, 3}}
	if sf.Bounds() != want {
		t.Errorf("got bounds %v, want %v", sf.Bounds(), want)
	}
	if probed := surfacing.GridBoundsOf(s, 1); probed == want {
		t.Error("probing a distance bound should not find the sphere bounds")
	}
}

func TestTraceCellsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := surfacing.Surface(ctx, must3.Sphere(1), surfacing.DefaultConfig(0.5))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestNewSurfacerErrors(t *testing.T) {
	if _, err := surfacing.NewSurfacer(nil, surfacing.DefaultConfig(1)); err == nil {
		t.Error("expected error for nil SDF")
	}
	if _, err := surfacing.Surface(context.Background(), must3.Sphere(1), surfacing.Config{}); err == nil {
		t.Error("expected error for zero config")
	}
	inverted := surfacing.GridBounds{Start: sdfmesh.V3i{1, 0, 0}}
	if _, err := surfacing.NewSurfacerBounds(must3.Sphere(1), surfacing.DefaultConfig(1), inverted); err == nil {
		t.Error("expected error for inverted bounds")
	}
}

func TestSurfaceLogs(t *testing.T) {
	var buf bytes.Buffer
	sdfmesh.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { sdfmesh.SetLogger(nil) })
	_, err := surfacing.Surface(context.Background(), must3.Sphere(5), surfacing.DefaultConfig(2))
	if err != nil {
		t.Fatal(err)
	}
	for _, msg := range []string{"traced cells", "unified edges", "built mesh"} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("log is missing %q:\n%s", msg, buf.String())
		}
	}
}

func BenchmarkSurfaceCube(b *testing.B) {
	cfg := surfacing.DefaultConfig(1)
	cfg.SubCells = 8
	cfg.Tolerance = 0.01
	s := must3.Cube(4)
	for i := 0; i < b.N; i++ {
		_, err := surfacing.Surface(context.Background(), s, cfg)
		if err != nil {
			b.Fatal(err)
		}
	}
}
