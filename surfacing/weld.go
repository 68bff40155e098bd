package surfacing

import (
	"sort"

	"github.com/soypat/sdfmesh/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ kdtree.Interface = kdVertices{}

// WeldEdges clusters edge vertices closer than tol to the centroid of
// their cluster, transitively, and repeats until no two vertices are
// closer than tol. Edges are remapped through the clustering and edges
// that collapse or become duplicates are dropped. Welding an already
// welded edge set returns it unchanged.
func WeldEdges(tol float64, edges []Edge) []Edge {
	original := Vertices(edges)
	vertices := append([]r3.Vec(nil), original...)
	mapping := make(map[r3.Vec]r3.Vec)
	for {
		round := clusterVertices(tol, vertices)
		if len(round) == 0 {
			break
		}
		for _, v := range original {
			cur, ok := mapping[v]
			if !ok {
				cur = v
			}
			if moved, ok := round[cur]; ok {
				mapping[v] = moved
			}
		}
		vertices = remapVertices(vertices, round)
	}
	if len(mapping) == 0 {
		return dedupe(append([]Edge(nil), edges...))
	}
	welded := make([]Edge, 0, len(edges))
	for _, e := range edges {
		welded = append(welded, e.Remap(mapping))
	}
	return dedupe(welded)
}

// clusterVertices performs one clustering round. It returns the
// new position of every vertex that moved.
func clusterVertices(tol float64, vertices []r3.Vec) map[r3.Vec]r3.Vec {
	if len(vertices) < 2 {
		return nil
	}
	parent := make([]int, len(vertices))
	for i := range parent {
		parent[i] = i
	}
	var find func(i int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	tree := newVertexTree(vertices)
	for i, v := range vertices {
		for _, j := range tree.within(v, tol) {
			if j == i {
				continue
			}
			ri, rj := find(i), find(j)
			if ri == rj {
				continue
			}
			// Lower index is root so cluster order is deterministic.
			if ri < rj {
				parent[rj] = ri
			} else {
				parent[ri] = rj
			}
		}
	}
	groups := make(map[int]d3.Set)
	for i, v := range vertices {
		r := find(i)
		groups[r] = append(groups[r], v)
	}
	moved := make(map[r3.Vec]r3.Vec)
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		c := members.Centroid()
		for _, v := range members {
			moved[v] = c
		}
	}
	return moved
}

func remapVertices(vertices []r3.Vec, m map[r3.Vec]r3.Vec) []r3.Vec {
	seen := make(map[r3.Vec]struct{}, len(vertices))
	out := vertices[:0]
	for _, v := range vertices {
		if w, ok := m[v]; ok {
			v = w
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// vertexTree answers fixed radius neighbour queries over a vertex list.
type vertexTree struct {
	tree *kdtree.Tree
}

func newVertexTree(vertices []r3.Vec) vertexTree {
	kv := make(kdVertices, len(vertices))
	for i, v := range vertices {
		kv[i] = kdVertex{Vec: v, idx: i}
	}
	return vertexTree{tree: kdtree.New(kv, false)}
}

// within returns the indices of the vertices closer than radius to v,
// sorted ascending.
func (vt vertexTree) within(v r3.Vec, radius float64) []int {
	r2 := radius * radius
	keep := kdtree.NewDistKeeper(r2)
	vt.tree.NearestSet(keep, kdVertex{Vec: v, idx: -1})
	var found []int
	for _, c := range keep.Heap {
		if c.Comparable == nil || c.Dist >= r2 {
			continue
		}
		found = append(found, c.Comparable.(kdVertex).idx)
	}
	sort.Ints(found)
	return found
}

// kdVertex is a vertex tagged with its index in the source list.
type kdVertex struct {
	r3.Vec
	idx int
}

type kdVertices []kdVertex

func (k kdVertices) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdVertices) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdVertices) Pivot(d kdtree.Dim) int {
	p := kdVertexPlane{dim: int(d), vertices: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdVertices) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdVertex) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return d3.Component(a.Vec, int(d)) - d3.Component(b.(kdVertex).Vec, int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdVertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdVertex) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.Vec, b.(kdVertex).Vec))
}

type kdVertexPlane struct {
	dim      int
	vertices kdVertices
}

func (p kdVertexPlane) Less(i, j int) bool {
	return d3.Component(p.vertices[i].Vec, p.dim) < d3.Component(p.vertices[j].Vec, p.dim)
}
func (p kdVertexPlane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}
func (p kdVertexPlane) Len() int {
	return len(p.vertices)
}
func (p kdVertexPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}
