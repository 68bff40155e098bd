package surfacing

import (
	"math"
	"sync"

	"github.com/soypat/sdfmesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// maxSnapSteps bounds the surface snapping iterations.
const maxSnapSteps = 5

// Sample is a sub-grid point snapped to the surface.
type Sample struct {
	// Position is the snapped position.
	Position r3.Vec
	// Center is the sub-grid point the sample was taken at.
	Center r3.Vec
	// Normal is the field normal at Center.
	Normal r3.Vec
	// Distance is the field value at Center.
	Distance float64
}

// CellSample is the padded sub-grid of samples of one cell.
// A nil slot means no sample.
type CellSample struct {
	Samples []*Sample
	// Center is the center of the cell.
	Center r3.Vec
	// Length is the number of samples along each axis.
	Length int
}

// At returns the sample at sub-grid coordinate (x,y,z).
func (cs *CellSample) At(x, y, z int) *Sample {
	return cs.Samples[cs.index(x, y, z)]
}

func (cs *CellSample) index(x, y, z int) int {
	return x + y*cs.Length + z*cs.Length*cs.Length
}

// SnapToSurface moves p along -n by the field distance until
// |d| <= tol or maxSnapSteps steps are taken. d is the field value at p.
// Non-convergence is accepted and the last position returned.
func SnapToSurface(s sdfmesh.SDF3, tol float64, n, p r3.Vec, d float64) r3.Vec {
	for step := 1; math.Abs(d) > tol && step <= maxSnapSteps; step++ {
		p = r3.Sub(p, r3.Scale(d, n))
		d = s.Evaluate(p)
	}
	return p
}

type sampler struct {
	s        sdfmesh.SDF3
	normal   sdfmesh.NormalFunc
	cellSize float64
	subCells int
	subStep  float64
	snapTol  float64
	subRange float64
	halfDiag float64
	cache    *sampleCache
}

func newSampler(s sdfmesh.SDF3, cfg Config) *sampler {
	sp := &sampler{
		s:        s,
		normal:   cfg.normalFunc(),
		cellSize: cfg.CellSize,
		subCells: cfg.SubCells,
		subStep:  cfg.SubStep(),
		snapTol:  cfg.SnapTolerance(),
		subRange: cfg.SubCellRange(),
		halfDiag: cfg.HalfDiagonal(),
	}
	if cfg.CacheSamples {
		sp.cache = &sampleCache{samples: make(map[sdfmesh.V3i]*Sample)}
	}
	return sp
}

// snap snaps p to the surface using the normal at p.
func (sp *sampler) snap(p r3.Vec) r3.Vec {
	d := sp.s.Evaluate(p)
	if math.Abs(d) <= sp.snapTol {
		return p
	}
	n := sp.normal(sp.s, p)
	if n == (r3.Vec{}) {
		return p
	}
	return SnapToSurface(sp.s, sp.snapTol, n, p, d)
}

func (sp *sampler) cellCenter(cell sdfmesh.V3i) r3.Vec {
	return r3.Scale(sp.cellSize, r3.Add(cell.ToV3(), r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}))
}

// cellActive reports whether the surface may pass through cell.
func (sp *sampler) cellActive(cell sdfmesh.V3i) bool {
	return math.Abs(sp.s.Evaluate(sp.cellCenter(cell))) <= sp.halfDiag
}

// sampleCell samples the padded sub-grid of cell. It returns nil
// for inactive cells.
func (sp *sampler) sampleCell(cell sdfmesh.V3i) *CellSample {
	if !sp.cellActive(cell) {
		return nil
	}
	L := sp.subCells + 2
	cs := &CellSample{
		Samples: make([]*Sample, L*L*L),
		Center:  sp.cellCenter(cell),
		Length:  L,
	}
	// One sub-step before the cell origin.
	base := cell.MulScalar(sp.subCells).SubScalar(1)
	for z := 0; z < L; z++ {
		for y := 0; y < L; y++ {
			for x := 0; x < L; x++ {
				cs.Samples[cs.index(x, y, z)] = sp.sample(base.Add(sdfmesh.V3i{x, y, z}))
			}
		}
	}
	return cs
}

// sample returns the sample at global sub-grid coordinate g.
func (sp *sampler) sample(g sdfmesh.V3i) *Sample {
	if sp.cache != nil {
		if smp, found := sp.cache.read(g); found {
			return smp
		}
	}
	smp := sp.evaluate(g)
	if sp.cache != nil {
		sp.cache.write(g, smp)
	}
	return smp
}

func (sp *sampler) evaluate(g sdfmesh.V3i) *Sample {
	p := r3.Scale(sp.subStep, g.ToV3())
	d := sp.s.Evaluate(p)
	if math.Abs(d) > sp.subRange || math.IsNaN(d) {
		return nil
	}
	n := sp.normal(sp.s, p)
	if n == (r3.Vec{}) {
		return nil
	}
	return &Sample{
		Position: SnapToSurface(sp.s, sp.snapTol, n, p, d),
		Center:   p,
		Normal:   n,
		Distance: d,
	}
}

// sampleCache caches samples by global sub-grid coordinate so that
// padding samples shared by neighbouring cells are computed once.
// A nil entry records a point with no sample.
type sampleCache struct {
	mu      sync.Mutex
	samples map[sdfmesh.V3i]*Sample
}

func (sc *sampleCache) read(g sdfmesh.V3i) (*Sample, bool) {
	sc.mu.Lock()
	smp, found := sc.samples[g]
	sc.mu.Unlock()
	return smp, found
}

func (sc *sampleCache) write(g sdfmesh.V3i, smp *Sample) {
	sc.mu.Lock()
	sc.samples[g] = smp
	sc.mu.Unlock()
}

func (sc *sampleCache) len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.samples)
}
