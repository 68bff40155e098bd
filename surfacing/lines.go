package surfacing

import (
	"math"

	"github.com/soypat/sdfmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// alignment is the minimum |cos| between two directions considered parallel.
const alignment = 0.8

// LineAggregate is a group of contours lying along one crease.
type LineAggregate []Contour

// aligned reports whether unit directions a and b are nearly parallel
// or anti-parallel.
func aligned(a, b r3.Vec) bool {
	return math.Abs(r3.Dot(a, b)) > alignment
}

// onLine reports whether c lies within tol of the infinite line
// through seed along the seed's direction.
func onLine(tol float64, seed, c Contour) bool {
	return d3.LineDistance(seed.Position, seed.Direction, c.Position) <= tol
}

// DetectLines groups contours into line aggregates.
// A seed contour collects every remaining contour close to its line and
// aligned with it. Seeds which collect nothing become pivots: they are
// not consumed but join any later line passing close to them.
func DetectLines(distanceTolerance float64, contours []Contour) []LineAggregate {
	var (
		lines  []LineAggregate
		pivots []Contour
	)
	remaining := append([]Contour(nil), contours...)
	for len(remaining) > 0 {
		seed := remaining[0]
		rest := remaining[1:]
		line := LineAggregate{seed}
		next := rest[:0]
		for _, c := range rest {
			if aligned(seed.Direction, c.Direction) && onLine(distanceTolerance, seed, c) {
				line = append(line, c)
			} else {
				next = append(next, c)
			}
		}
		for _, p := range pivots {
			if onLine(distanceTolerance, seed, p) {
				line = append(line, p)
			}
		}
		if len(line) > 1 {
			lines = append(lines, line)
		} else {
			pivots = append(pivots, seed)
		}
		remaining = next
	}
	return lines
}
