package surfacing

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// UnifyEdges contracts chains of aligned edges joined at degree two
// vertices into single edges between the chain ends. Branch points are
// never merged through and closed rings of such vertices are kept as is.
func UnifyEdges(edges []Edge) []Edge {
	index := vertexEdges(edges)
	broken := make(map[r3.Vec][2]Edge)
	for v, incident := range index {
		if len(incident) == 2 && aligned(incident[0].Direction(), incident[1].Direction()) {
			broken[v] = [2]Edge{incident[0], incident[1]}
		}
	}
	if len(broken) == 0 {
		return edges
	}
	visited := make(map[r3.Vec]bool, len(broken))
	removed := make(map[Edge]struct{})
	var unified []Edge
	for _, v := range Vertices(edges) {
		pair, ok := broken[v]
		if !ok || visited[v] {
			continue
		}
		visited[v] = true
		run := []Edge{pair[0], pair[1]}
		start, runA, cycle := chaseBrokenLine(broken, visited, v, pair[0])
		if cycle {
			continue
		}
		end, runB, _ := chaseBrokenLine(broken, visited, v, pair[1])
		run = append(append(run, runA...), runB...)
		for _, e := range run {
			removed[e] = struct{}{}
		}
		if start != end {
			unified = append(unified, NewEdge(start, end))
		}
	}
	result := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if _, ok := removed[e]; !ok {
			result = append(result, e)
		}
	}
	return dedupe(append(result, unified...))
}

// chaseBrokenLine walks from mid along e through broken vertices and
// returns the first vertex that ends the line together with the edges
// traversed past e. cycle is true if the walk returned to mid.
func chaseBrokenLine(broken map[r3.Vec][2]Edge, visited map[r3.Vec]bool, mid r3.Vec, e Edge) (end r3.Vec, run []Edge, cycle bool) {
	at, cur := mid, e
	for {
		next := cur.Other(at)
		if next == mid {
			return next, run, true
		}
		pair, ok := broken[next]
		if !ok || visited[next] {
			return next, run, false
		}
		visited[next] = true
		if pair[0] == cur {
			cur = pair[1]
		} else {
			cur = pair[0]
		}
		run = append(run, cur)
		at = next
	}
}
