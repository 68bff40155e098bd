package surfacing

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// mergeConfig parametrizes merging of neighbouring edge sets along one axis.
type mergeConfig struct {
	tolerance     float64
	boundaryRange float64
	cellSize      float64
	axis          int
	pairing       Pairing
}

func newMergeConfig(cfg Config, axis int) mergeConfig {
	return mergeConfig{
		tolerance:     cfg.MergeTolerance(),
		boundaryRange: cfg.BoundaryRange(),
		cellSize:      cfg.CellSize,
		axis:          axis,
		pairing:       cfg.Pairing,
	}
}

// clump is a pair of vertices across a boundary and their midpoint.
type clump struct {
	first, second, middle r3.Vec
}

// pairVertices pairs each second-side vertex with a first-side vertex
// closer than tol. A first-side vertex is paired at most once.
func pairVertices(tol float64, pairing Pairing, first, second []r3.Vec) []clump {
	if len(first) == 0 || len(second) == 0 {
		return nil
	}
	tree := newVertexTree(first)
	used := make([]bool, len(first))
	var clumps []clump
	for _, b := range second {
		best := -1
		bestDist := 0.0
		for _, i := range tree.within(b, tol) {
			if used[i] {
				continue
			}
			d := r3.Norm(r3.Sub(first[i], b))
			if best < 0 || (pairing == PairNearest && d < bestDist) {
				best, bestDist = i, d
			}
			if pairing == PairFirst {
				break
			}
		}
		if best < 0 {
			continue
		}
		used[best] = true
		a := first[best]
		clumps = append(clumps, clump{first: a, second: b, middle: r3.Scale(0.5, r3.Add(a, b))})
	}
	return clumps
}

// remapEdges replaces vertices through m and drops degenerate and
// repeated edges.
func remapEdges(edges []Edge, m map[r3.Vec]r3.Vec) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Remap(m))
	}
	return dedupe(out)
}

// withoutDuplicates returns the edges of pruning not present in comparison.
func withoutDuplicates(comparison, pruning []Edge) []Edge {
	present := make(map[Edge]struct{}, len(comparison))
	for _, e := range comparison {
		present[e] = struct{}{}
	}
	out := pruning[:0]
	for _, e := range pruning {
		if _, ok := present[e]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// mergeEdges splices edge pairs meeting at a shared vertex when exactly
// one edge of each side meets there and both are aligned.
func mergeEdges(shared []r3.Vec, first, second []Edge) []Edge {
	firstIndex := vertexEdges(first)
	secondIndex := vertexEdges(second)
	removed := make(map[Edge]struct{})
	var unified []Edge
	for _, v := range shared {
		f, s := firstIndex[v], secondIndex[v]
		if len(f) != 1 || len(s) != 1 {
			continue
		}
		a, b := f[0], s[0]
		if _, ok := removed[a]; ok {
			continue
		}
		if _, ok := removed[b]; ok {
			continue
		}
		if !aligned(a.Direction(), b.Direction()) {
			continue
		}
		e := NewEdge(a.Other(v), b.Other(v))
		if e.Degenerate() {
			continue
		}
		removed[a] = struct{}{}
		removed[b] = struct{}{}
		unified = append(unified, e)
	}
	result := make([]Edge, 0, len(first)+len(second))
	for _, side := range [2][]Edge{first, second} {
		for _, e := range side {
			if _, ok := removed[e]; !ok {
				result = append(result, e)
			}
		}
	}
	return dedupe(append(result, unified...))
}

// mergeCells merges two edge sets on either side of the plane
// axis = boundary. Vertices within the boundary band are paired and moved
// to their midpoint, duplicate edges of the second set are dropped and
// aligned edges meeting at a merged vertex are spliced.
func mergeCells(cfg mergeConfig, boundary float64, first, second []Edge) []Edge {
	lo := boundary - cfg.boundaryRange
	hi := boundary + cfg.boundaryRange
	var firstCandidates, secondCandidates []r3.Vec
	for _, v := range Vertices(first) {
		if axisValue(v, cfg.axis) > lo {
			firstCandidates = append(firstCandidates, v)
		}
	}
	for _, v := range Vertices(second) {
		if axisValue(v, cfg.axis) < hi {
			secondCandidates = append(secondCandidates, v)
		}
	}
	clumps := pairVertices(cfg.tolerance, cfg.pairing, firstCandidates, secondCandidates)
	if len(clumps) == 0 {
		return dedupe(append(append([]Edge(nil), first...), second...))
	}
	firstMap := make(map[r3.Vec]r3.Vec, len(clumps))
	secondMap := make(map[r3.Vec]r3.Vec, len(clumps))
	shared := make([]r3.Vec, 0, len(clumps))
	for _, c := range clumps {
		firstMap[c.first] = c.middle
		secondMap[c.second] = c.middle
		shared = append(shared, c.middle)
	}
	synced1 := remapEdges(first, firstMap)
	synced2 := withoutDuplicates(synced1, remapEdges(second, secondMap))
	return mergeEdges(shared, synced1, synced2)
}

// accumulateRow folds cells into one edge set. boundary is the position
// along the merge axis of the face shared by the first and second cells.
func accumulateRow(cfg mergeConfig, boundary float64, cells [][]Edge) []Edge {
	if len(cells) == 0 {
		return nil
	}
	acc := append([]Edge(nil), cells[0]...)
	for _, next := range cells[1:] {
		if len(next) > 0 {
			acc = mergeCells(cfg, boundary, acc, next)
		}
		boundary += cfg.cellSize
	}
	return acc
}

// accumulateRows splits groups into rowCount consecutive rows along
// cfg.axis and accumulates each one.
func accumulateRows(cfg mergeConfig, bounds GridBounds, groups [][]Edge, rowCount int) [][]Edge {
	rowLength := bounds.Dimensions()[cfg.axis]
	if rowLength*rowCount != len(groups) {
		panic(fmt.Sprintf("bug: %d groups do not form %d rows of %d", len(groups), rowCount, rowLength))
	}
	firstDivision := float64(bounds.Start[cfg.axis])*cfg.cellSize + cfg.cellSize
	rows := make([][]Edge, rowCount)
	for i := range rows {
		rows[i] = accumulateRow(cfg, firstDivision, groups[i*rowLength:(i+1)*rowLength])
	}
	return rows
}

// AccumulateCells merges per-cell edge sets, ordered as by
// GridBounds.CellIndex, into a single edge set: cells into rows along x,
// rows into floors along y and floors into the volume along z.
func AccumulateCells(cfg Config, bounds GridBounds, cells [][]Edge) []Edge {
	dim := bounds.Dimensions()
	if len(cells) != dim.Volume() {
		panic(fmt.Sprintf("bug: got %d cells for bounds of %d cells", len(cells), dim.Volume()))
	}
	if len(cells) == 0 {
		return nil
	}
	rows := accumulateRows(newMergeConfig(cfg, 0), bounds, cells, dim[1]*dim[2])
	floors := accumulateRows(newMergeConfig(cfg, 1), bounds, rows, dim[2])
	volume := accumulateRows(newMergeConfig(cfg, 2), bounds, floors, 1)
	return volume[0]
}
