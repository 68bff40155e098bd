package surfacing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/soypat/sdfmesh"
	"golang.org/x/sync/errgroup"
)

// Surfacer extracts a polygon mesh from a signed distance field.
type Surfacer struct {
	s      sdfmesh.SDF3
	cfg    Config
	bounds GridBounds
	sp     *sampler
}

// NewSurfacer validates cfg and finds the grid bounds of s. Bounds come
// from s when it implements sdfmesh.Bounder and are probed otherwise.
func NewSurfacer(s sdfmesh.SDF3, cfg Config) (*Surfacer, error) {
	if s == nil {
		return nil, errors.New("nil SDF3")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var bounds GridBounds
	if b, ok := s.(sdfmesh.Bounder); ok {
		bounds = GridBoundsFromBox(b.Bounds(), cfg.CellSize)
	} else {
		bounds = GridBoundsOf(s, cfg.CellSize)
	}
	return NewSurfacerBounds(s, cfg, bounds)
}

// NewSurfacerBounds is NewSurfacer with caller provided grid bounds.
func NewSurfacerBounds(s sdfmesh.SDF3, cfg Config, bounds GridBounds) (*Surfacer, error) {
	if s == nil {
		return nil, errors.New("nil SDF3")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dim := bounds.Dimensions()
	if dim[0] < 0 || dim[1] < 0 || dim[2] < 0 {
		return nil, fmt.Errorf("grid bounds end %v below start %v", bounds.End, bounds.Start)
	}
	return &Surfacer{
		s:      s,
		cfg:    cfg,
		bounds: bounds,
		sp:     newSampler(s, cfg),
	}, nil
}

// Bounds returns the grid bounds being surfaced.
func (sf *Surfacer) Bounds() GridBounds { return sf.bounds }

// Config returns the surfacing configuration.
func (sf *Surfacer) Config() Config { return sf.cfg }

// SampleCell samples the i'th cell. It returns nil for cells the
// surface does not pass through.
func (sf *Surfacer) SampleCell(i int) *CellSample {
	return sf.sp.sampleCell(sf.bounds.CellIndex(i))
}

// CellContours returns the contours of a sampled cell with strength
// above the configured tolerance.
func (sf *Surfacer) CellContours(cs *CellSample) []Contour {
	if cs == nil {
		return nil
	}
	return IsolateContours(sf.cfg.Tolerance, sf.sp.contourGrid(cs))
}

// TraceCell returns the welded edges found inside the i'th cell.
func (sf *Surfacer) TraceCell(i int) []Edge {
	contours := sf.CellContours(sf.SampleCell(i))
	if len(contours) == 0 {
		return nil
	}
	tol := sf.cfg.DistanceTolerance()
	return FinalizeEdges(tol, DetectLines(tol, contours))
}

// TraceCells traces every cell with up to Config.Workers goroutines.
// The result is indexed like GridBounds.CellIndex and does not depend
// on the number of workers. A panic while tracing a cell, such as one
// raised by a failing distance field, is returned as a *CellError.
func (sf *Surfacer) TraceCells(ctx context.Context) ([][]Edge, error) {
	n := sf.bounds.CellCount()
	cells := make([][]Edge, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, sf.cfg.Workers))
	for i := 0; i < n; i++ {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer func() {
				if a := recover(); a != nil {
					err = &CellError{
						Cell:  sf.bounds.CellIndex(i),
						Panic: a,
						Stack: string(debug.Stack()),
					}
				}
			}()
			cells[i] = sf.TraceCell(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cells, nil
}

// Edges traces all cells, stitches them together and unifies
// collinear chains.
func (sf *Surfacer) Edges(ctx context.Context) ([]Edge, error) {
	cells, err := sf.TraceCells(ctx)
	if err != nil {
		return nil, err
	}
	log := sdfmesh.Logger()
	if log.Enabled(ctx, slog.LevelDebug) {
		var count int
		for _, c := range cells {
			count += len(c)
		}
		log.Debug("traced cells", slog.Int("cells", len(cells)), slog.Int("edges", count))
	}
	edges := AccumulateCells(sf.cfg, sf.bounds, cells)
	log.Debug("accumulated cells", slog.Int("edges", len(edges)))
	edges = UnifyEdges(edges)
	log.Debug("unified edges", slog.Int("edges", len(edges)))
	return edges, nil
}

// Mesh runs the full pipeline. Faces that could not be closed are left
// out of the mesh and reported in an error wrapping ErrOpenFace; the
// mesh is still returned in that case.
func (sf *Surfacer) Mesh(ctx context.Context) (Mesh, error) {
	edges, err := sf.Edges(ctx)
	if err != nil {
		return Mesh{}, err
	}
	faces, faceErr := Faces(sf.s, sf.cfg.normalFunc(), edges)
	log := sdfmesh.Logger()
	if faceErr != nil {
		log.Warn("open faces", slog.Any("err", faceErr))
	}
	m := IndexFaces(faces)
	log.Debug("built mesh", slog.Int("vertices", len(m.Vertices)), slog.Int("faces", len(m.Faces)))
	return m, faceErr
}

// Surface is shorthand for NewSurfacer followed by Mesh.
func Surface(ctx context.Context, s sdfmesh.SDF3, cfg Config) (Mesh, error) {
	sf, err := NewSurfacer(s, cfg)
	if err != nil {
		return Mesh{}, err
	}
	return sf.Mesh(ctx)
}

// CellError is a panic recovered while tracing a cell.
type CellError struct {
	Cell sdfmesh.V3i
	// Panic is the recovered value.
	Panic any
	// Stack is the goroutine stack at the time of the panic.
	Stack string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("tracing cell %v: %v", e.Cell, e.Panic)
}

// Unwrap returns the panic value if it is an error.
func (e *CellError) Unwrap() error {
	err, _ := e.Panic.(error)
	return err
}
