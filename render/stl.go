package render

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/sdfmesh/internal/d3"
	"github.com/soypat/sdfmesh/surfacing"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	stlHeaderSize   = 84
	stlTriangleSize = 50
	// trianglesInBuffer is the number of triangles encoded per write.
	trianglesInBuffer = 1 << 10
	// stlNormalTol is the allowed distance between a stored normal
	// and the normal of the triangle winding.
	stlNormalTol = 5e-2
)

// ErrNormalMismatch is returned by ReadSTL when stored normals disagree
// with the winding of their triangle. Fan triangles of non-planar faces
// carry the face normal and may trigger it.
var ErrNormalMismatch = errors.New("STL normal disagrees with triangle winding")

// CreateSTL writes m to a binary STL file at path.
func CreateSTL(path string, m surfacing.Mesh) error {
	fp, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err := WriteSTL(fp, m); err != nil {
		return err
	}
	return fp.Close()
}

// WriteSTL fan triangulates the faces of m and writes them to w as binary
// STL. Each triangle is stored with the normal of its face.
func WriteSTL(w io.Writer, m surfacing.Mesh) error {
	count, err := triangleCount(m)
	if err != nil {
		return err
	}
	if count == 0 {
		return errors.New("mesh has no faces to write")
	}
	if uint64(count) > math.MaxUint32 {
		return fmt.Errorf("%d triangles overflow the STL triangle count", count)
	}
	bw := bufio.NewWriterSize(w, stlTriangleSize*trianglesInBuffer)
	var header [stlHeaderSize]byte
	binary.LittleEndian.PutUint32(header[80:], uint32(count))
	bw.Write(header[:])

	var (
		tris    [trianglesInBuffer]Triangle3
		record  [stlTriangleSize]byte
		written int
	)
	r := NewMeshRenderer(m)
	for {
		n, err := r.ReadTriangles(tris[:])
		for _, t := range tris[:n] {
			putSTLTriangle(record[:], t)
			bw.Write(record[:])
		}
		written += n
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return err
		}
	}
	if written != count {
		panic(fmt.Sprintf("bug: wrote %d STL triangles, header says %d", written, count))
	}
	return bw.Flush()
}

// ReadSTL reads a binary STL. Triangles whose stored normal disagrees
// with their winding are still returned, together with an error
// wrapping ErrNormalMismatch.
func ReadSTL(r io.Reader) ([]Triangle3, error) {
	br := bufio.NewReaderSize(r, stlTriangleSize*trianglesInBuffer)
	var header [stlHeaderSize]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("reading STL header: %w", err)
	}
	count := int(binary.LittleEndian.Uint32(header[80:]))
	if count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	tris := make([]Triangle3, 0, min(count, trianglesInBuffer))
	var (
		record     [stlTriangleSize]byte
		mismatches int
	)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, record[:]); err != nil {
			return nil, fmt.Errorf("%d/%d STL triangles read: %w", i, count, err)
		}
		t, err := getSTLTriangle(record[:])
		if errors.Is(err, ErrNormalMismatch) {
			mismatches++
		} else if err != nil {
			return nil, fmt.Errorf("STL triangle %d: %w", i, err)
		}
		tris = append(tris, t)
	}
	if mismatches > 0 {
		return tris, fmt.Errorf("%d of %d triangles: %w", mismatches, count, ErrNormalMismatch)
	}
	return tris, nil
}

// putSTLTriangle encodes t as a 50 byte STL record: normal, three
// vertices and a zero attribute count.
func putSTLTriangle(b []byte, t Triangle3) {
	_ = b[stlTriangleSize-1]
	putVec(b, t.Normal())
	for i, v := range t.V {
		putVec(b[12*(i+1):], v)
	}
	binary.LittleEndian.PutUint16(b[48:], 0)
}

// getSTLTriangle decodes and validates a 50 byte STL record.
func getSTLTriangle(b []byte) (Triangle3, error) {
	_ = b[stlTriangleSize-1]
	var t Triangle3
	n, ok := getVec(b)
	if !ok {
		return t, errors.New("inf/NaN normal")
	}
	t.N = n
	for i := range t.V {
		if t.V[i], ok = getVec(b[12*(i+1):]); !ok {
			return t, errors.New("inf/NaN vertex")
		}
	}
	if t.V[0] == t.V[1] || t.V[1] == t.V[2] || t.V[2] == t.V[0] {
		return t, errors.New("degenerate triangle")
	}
	if !d3.EqualWithin(n, d3.PlaneNormal(t.V[0], t.V[1], t.V[2]), stlNormalTol) {
		return t, ErrNormalMismatch
	}
	return t, nil
}

func putVec(b []byte, v r3.Vec) {
	_ = b[11]
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}

// getVec decodes a float32 triple and reports whether it is finite.
func getVec(b []byte) (r3.Vec, bool) {
	_ = b[11]
	var f [3]float32
	for i := range f {
		f[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		if math32.IsNaN(f[i]) || math32.IsInf(f[i], 0) {
			return r3.Vec{}, false
		}
	}
	return r3.Vec{X: float64(f[0]), Y: float64(f[1]), Z: float64(f[2])}, true
}
