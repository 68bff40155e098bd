package surfacing

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Contour is a detected crease between two samples whose normals differ.
type Contour struct {
	Position r3.Vec
	// Direction is tangent to the crease.
	Direction r3.Vec
	// Normal is the field normal at Position.
	Normal r3.Vec
	// Strength is the normalized angular divergence of the sample
	// normals: 0 when they agree and 1 when opposite.
	Strength      float64
	First, Second *Sample
}

// variance returns (1 - a·b)/2 for unit vectors a and b.
func variance(a, b r3.Vec) float64 {
	return (1 - r3.Dot(a, b)) / 2
}

// weightedMiddle returns the midpoint of a and b weighted towards the
// sample whose normal best matches the field normal at position.
func (sp *sampler) weightedMiddle(a, b *Sample, position r3.Vec) r3.Vec {
	n := sp.normal(sp.s, position)
	wa := 1 - variance(n, a.Normal)
	wb := 1 - variance(n, b.Normal)
	sum := wa + wb
	var middle r3.Vec
	if n == (r3.Vec{}) || sum <= 0 {
		middle = r3.Scale(0.5, r3.Add(a.Position, b.Position))
	} else {
		middle = r3.Add(r3.Scale(wa/sum, a.Position), r3.Scale(wb/sum, b.Position))
	}
	return sp.snap(middle)
}

// refineMiddle snaps the midpoint of a and b and refines it.
func (sp *sampler) refineMiddle(a, b *Sample) r3.Vec {
	middle := sp.snap(r3.Scale(0.5, r3.Add(a.Position, b.Position)))
	return sp.weightedMiddle(a, b, middle)
}

// diffSamples returns the contour between a and b if there is one.
func (sp *sampler) diffSamples(a, b *Sample) (Contour, bool) {
	if a == nil || b == nil || a.Normal == b.Normal {
		return Contour{}, false
	}
	dir := r3.Cross(a.Normal, b.Normal)
	norm := r3.Norm(dir)
	if norm == 0 {
		return Contour{}, false
	}
	position := sp.refineMiddle(a, b)
	return Contour{
		Position:  position,
		Direction: r3.Scale(1/norm, dir),
		Normal:    sp.normal(sp.s, position),
		Strength:  variance(a.Normal, b.Normal),
		First:     a,
		Second:    b,
	}, true
}

// contourGrid diffs neighbouring samples along the three axes and the
// six cell corner diagonals.
func (sp *sampler) contourGrid(cs *CellSample) []Contour {
	L := cs.Length
	var contours []Contour
	axes := [3]struct {
		unit   [3]int
		offset int
	}{
		{[3]int{1, 0, 0}, 1},
		{[3]int{0, 1, 0}, L},
		{[3]int{0, 0, 1}, L * L},
	}
	for _, axis := range axes {
		// The scanned axis spans the padding, the others the interior.
		var start, end [3]int
		for i := range start {
			start[i] = 1 - axis.unit[i]
			end[i] = start[i] + L - 2 + axis.unit[i]
		}
		for z := start[2]; z < end[2]; z++ {
			for y := start[1]; y < end[1]; y++ {
				for x := start[0]; x < end[0]; x++ {
					first := cs.index(x, y, z)
					c, ok := sp.diffSamples(cs.Samples[first], cs.Samples[first+axis.offset])
					if ok {
						contours = append(contours, c)
					}
				}
			}
		}
	}
	return append(contours, sp.cornerContours(cs)...)
}

// cornerBases selects the diagonal through each corner pair of the cell.
var cornerBases = [6][3]int{
	{0, 0, 0},
	{1, 1, 1},
	{0, 1, 1},
	{1, 0, 1},
	{1, 0, 0},
	{1, 1, 0},
}

// cornerContours diffs the corner interior samples against their
// padding neighbour along the diagonal. Axis scans miss creases
// passing close to cell corners.
func (sp *sampler) cornerContours(cs *CellSample) []Contour {
	L := cs.Length
	var contours []Contour
	for _, base := range cornerBases {
		var a, c [3]int
		for i := range base {
			a[i] = base[i]*(L-3) + 1
			c[i] = a[i] + 2*base[i] - 1
		}
		ct, ok := sp.diffSamples(cs.At(a[0], a[1], a[2]), cs.At(c[0], c[1], c[2]))
		if ok {
			contours = append(contours, ct)
		}
	}
	return contours
}

// IsolateContours keeps the contours with strength above tolerance.
// The input slice is reused.
func IsolateContours(tolerance float64, contours []Contour) []Contour {
	kept := contours[:0]
	for _, c := range contours {
		if c.Strength > tolerance {
			kept = append(kept, c)
		}
	}
	return kept
}
