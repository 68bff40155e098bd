package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/soypat/sdfmesh/surfacing"
)

// WriteOBJ writes m to w in Wavefront OBJ format. Faces are written
// as polygons without triangulation.
func WriteOBJ(w io.Writer, m surfacing.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d faces\n", len(m.Vertices), len(m.Faces))
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for i, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("face %d has %d vertices", i, len(f))
		}
		bw.WriteByte('f')
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("face %d references vertex %d out of %d", i, idx, len(m.Vertices))
			}
			// OBJ indices start at 1.
			fmt.Fprintf(bw, " %d", idx+1)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
