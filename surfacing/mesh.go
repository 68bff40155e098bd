package surfacing

import (
	"math"

	"github.com/soypat/sdfmesh"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// IndexedFace is a polygon given by indices into Mesh.Vertices.
type IndexedFace []int

// Mesh is a polygon mesh over a deduplicated vertex array.
type Mesh struct {
	Vertices []r3.Vec
	Faces    []IndexedFace
}

// IndexFaces deduplicates the face vertices and indexes the faces
// against them. Vertices are stored in order of first appearance.
func IndexFaces(faces []VertexFace) Mesh {
	var m Mesh
	index := make(map[r3.Vec]int)
	for _, f := range faces {
		indexed := make(IndexedFace, len(f))
		for i, v := range f {
			j, ok := index[v]
			if !ok {
				j = len(m.Vertices)
				index[v] = j
				m.Vertices = append(m.Vertices, v)
			}
			indexed[i] = j
		}
		m.Faces = append(m.Faces, indexed)
	}
	return m
}

// VertexFaces returns the faces of m as vertex polygons.
func (m Mesh) VertexFaces() []VertexFace {
	faces := make([]VertexFace, len(m.Faces))
	for i, f := range m.Faces {
		vf := make(VertexFace, len(f))
		for j, idx := range f {
			vf[j] = m.Vertices[idx]
		}
		faces[i] = vf
	}
	return faces
}

// Edges returns the distinct edges of the mesh faces.
func (m Mesh) Edges() []Edge {
	var edges []Edge
	for _, f := range m.Faces {
		for i := range f {
			edges = append(edges, NewEdge(m.Vertices[f[i]], m.Vertices[f[(i+1)%len(f)]]))
		}
	}
	return dedupe(edges)
}

// SurfaceError returns the mean and standard deviation of the absolute
// field value at the mesh vertices. Both are NaN for an empty mesh.
func SurfaceError(s sdfmesh.SDF3, m Mesh) (mean, std float64) {
	if len(m.Vertices) == 0 {
		return math.NaN(), math.NaN()
	}
	d := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		d[i] = math.Abs(s.Evaluate(v))
	}
	if len(d) == 1 {
		return d[0], 0
	}
	return stat.MeanStdDev(d, nil)
}
