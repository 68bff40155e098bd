package surfacing

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/sdfmesh"
)

// Pairing selects how vertices on either side of a cell boundary
// are paired up during cross-cell accumulation.
type Pairing int

const (
	// PairFirst pairs each vertex with the first unpaired candidate
	// within the merge tolerance.
	PairFirst Pairing = iota
	// PairNearest pairs each vertex with the nearest unpaired candidate
	// within the merge tolerance.
	PairNearest
)

func (p Pairing) String() string {
	switch p {
	case PairFirst:
		return "first"
	case PairNearest:
		return "nearest"
	}
	return fmt.Sprintf("Pairing(%d)", int(p))
}

// Config holds the surfacing parameters. Derived tolerances are
// computed from CellSize/SubCells.
type Config struct {
	// CellSize is the side length of a grid cell.
	CellSize float64
	// SubCells is the number of sub-grid subdivisions per cell per axis.
	SubCells int
	// Tolerance is the contour strength cutoff in (0, 1).
	// Contours with strength <= Tolerance are discarded.
	Tolerance float64
	// Workers bounds the number of cells traced concurrently.
	// Values below 1 mean sequential tracing.
	Workers int
	// Pairing selects the boundary vertex pairing heuristic.
	Pairing Pairing
	// Normal estimates normals. If nil sdfmesh.Normal is used.
	Normal sdfmesh.NormalFunc
	// CacheSamples shares sub-grid samples between neighbouring cells.
	// The cache lives as long as the Surfacer.
	CacheSamples bool
}

// DefaultConfig returns a sequential configuration with 4 sub-cells
// and a contour tolerance of 0.2.
func DefaultConfig(cellSize float64) Config {
	return Config{
		CellSize:     cellSize,
		SubCells:     4,
		Tolerance:    0.2,
		Workers:      1,
		CacheSamples: true,
	}
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	switch {
	case c.CellSize <= 0 || math.IsInf(c.CellSize, 0) || math.IsNaN(c.CellSize):
		return fmt.Errorf("invalid cell size %v", c.CellSize)
	case c.SubCells < 2:
		return errors.New("sub cells must be at least 2")
	case !(c.Tolerance >= 0 && c.Tolerance < 1):
		return fmt.Errorf("contour tolerance %v outside [0,1)", c.Tolerance)
	case c.Pairing != PairFirst && c.Pairing != PairNearest:
		return fmt.Errorf("unknown pairing %v", c.Pairing)
	}
	return nil
}

// SubStep is the sub-grid sample spacing.
func (c Config) SubStep() float64 { return c.CellSize / float64(c.SubCells) }

// DistanceTolerance is the line proximity and welding radius.
func (c Config) DistanceTolerance() float64 { return c.SubStep() * 2 }

// MergeTolerance is the boundary vertex pairing radius.
func (c Config) MergeTolerance() float64 { return c.SubStep() * 2.5 }

// BoundaryRange is the half width of the band around a cell face
// inside of which vertices are considered for pairing.
func (c Config) BoundaryRange() float64 { return c.SubStep() * 2 }

// SnapTolerance is the distance at which surface snapping stops.
func (c Config) SnapTolerance() float64 { return c.SubStep() * 0.09 }

// HalfDiagonal is the radius of a cell's bounding sphere.
func (c Config) HalfDiagonal() float64 {
	h := c.CellSize / 2
	return math.Sqrt(3 * h * h)
}

// SubCellRange is the largest distance at which a sub-grid point
// still produces a sample.
func (c Config) SubCellRange() float64 {
	return c.HalfDiagonal() / (float64(c.SubCells) / 2)
}

func (c Config) normalFunc() sdfmesh.NormalFunc {
	if c.Normal != nil {
		return c.Normal
	}
	return sdfmesh.Normal
}
