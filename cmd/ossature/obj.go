package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/parametrica/ossature/pkg/extract"
	"github.com/parametrica/ossature/pkg/mesh"
)

// writeOBJ dumps the shell and panel meshes to a text wavefront OBJ file, one
// named group per element. This is a developer convenience for eyeballing
// output; the binary interchange exporters live outside this repository.
func writeOBJ(path string, model *extract.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	offset := 1 // OBJ indices are global and 1-based

	offset, err = writeGroup(w, "shell", model.Shell, offset)
	if err != nil {
		return err
	}
	for i, panel := range model.Panels {
		offset, err = writeGroup(w, fmt.Sprintf("panel_%d", i), panel, offset)
		if err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeGroup(w *bufio.Writer, name string, m *mesh.Mesh, offset int) (int, error) {
	if m == nil || m.IsEmpty() {
		return offset, nil
	}
	if _, err := fmt.Fprintf(w, "g %s\n", name); err != nil {
		return offset, err
	}
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Position(i)
		if _, err := fmt.Fprintf(w, "v %g %g %g\n", p.X, p.Y, p.Z); err != nil {
			return offset, err
		}
	}
	hasNormals := len(m.Normals) != 0
	for i := 0; hasNormals && i < m.VertexCount(); i++ {
		n := m.Normal(i)
		if _, err := fmt.Fprintf(w, "vn %g %g %g\n", n.X, n.Y, n.Z); err != nil {
			return offset, err
		}
	}
	for t := 0; t < m.TriangleCount(); t++ {
		a := int(m.Indices[3*t]) + offset
		b := int(m.Indices[3*t+1]) + offset
		c := int(m.Indices[3*t+2]) + offset
		var err error
		if hasNormals {
			_, err = fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		} else {
			_, err = fmt.Fprintf(w, "f %d %d %d\n", a, b, c)
		}
		if err != nil {
			return offset, err
		}
	}
	return offset + m.VertexCount(), nil
}
