package surfacing

import (
	"fmt"

	"github.com/soypat/sdfmesh"
	"github.com/soypat/sdfmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// probeDistance is how far from the origin bounds are probed.
const probeDistance = 100000

// GridBounds is an integer cell-space axis aligned box.
// Cells span [Start, End) along each axis. End >= Start componentwise.
type GridBounds struct {
	Start, End sdfmesh.V3i
}

// DecimalBounds probes s from far away along each principal axis
// and returns the box the distances measure. The result can be
// slightly smaller than the true bounds of shapes whose extremes
// are not on the axes.
func DecimalBounds(s sdfmesh.SDF3) r3.Box {
	var bb r3.Box
	for axis := 0; axis < 3; axis++ {
		for _, facing := range [2]float64{-1, 1} {
			var origin r3.Vec
			setComponent(&origin, axis, facing*probeDistance)
			v := (probeDistance - s.Evaluate(origin)) * facing
			if facing < 0 {
				setComponent(&bb.Min, axis, v)
			} else {
				setComponent(&bb.Max, axis, v)
			}
		}
	}
	return bb
}

// GridBoundsOf probes the scene bounds of s and converts them
// to cell space.
func GridBoundsOf(s sdfmesh.SDF3, cellSize float64) GridBounds {
	return GridBoundsFromBox(DecimalBounds(s), cellSize)
}

// GridBoundsFromBox returns the smallest grid bounds containing box.
func GridBoundsFromBox(box r3.Box, cellSize float64) GridBounds {
	start := sdfmesh.FloorV3i(r3.Scale(1/cellSize, box.Min))
	end := sdfmesh.CeilV3i(r3.Scale(1/cellSize, box.Max))
	for i := range end {
		if end[i] < start[i] {
			end[i] = start[i]
		}
	}
	return GridBounds{Start: start, End: end}
}

// Pad grows the bounds by n cells on every side.
func (b GridBounds) Pad(n int) GridBounds {
	return GridBounds{Start: b.Start.SubScalar(n), End: b.End.AddScalar(n)}
}

// Dimensions returns the number of cells along each axis.
func (b GridBounds) Dimensions() sdfmesh.V3i {
	return b.End.Sub(b.Start)
}

// CellCount returns the total number of cells.
func (b GridBounds) CellCount() int {
	return b.Dimensions().Volume()
}

// CellIndex returns the cell coordinate of the i'th cell.
// Cells are ordered x fastest, then y, then z.
func (b GridBounds) CellIndex(i int) sdfmesh.V3i {
	dim := b.Dimensions()
	if i < 0 || i >= dim.Volume() {
		panic(fmt.Sprintf("cell index %d out of range [0,%d)", i, dim.Volume()))
	}
	slice := dim[0] * dim[1]
	z := i / slice
	rem := i - z*slice
	y := rem / dim[0]
	x := rem - y*dim[0]
	return b.Start.Add(sdfmesh.V3i{x, y, z})
}

// Box returns the decimal space box covered by the bounds.
func (b GridBounds) Box(cellSize float64) r3.Box {
	return r3.Box{
		Min: r3.Scale(cellSize, b.Start.ToV3()),
		Max: r3.Scale(cellSize, b.End.ToV3()),
	}
}

func setComponent(v *r3.Vec, axis int, value float64) {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	case 2:
		v.Z = value
	default:
		panic("bad axis")
	}
}

// axisValue is shorthand for d3.Component.
func axisValue(v r3.Vec, axis int) float64 { return d3.Component(v, axis) }
