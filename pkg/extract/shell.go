package extract

import (
	"context"

	"github.com/deadsy/sdfx/sdf"

	"github.com/parametrica/ossature/pkg/field"
	"github.com/parametrica/ossature/pkg/march"
	"github.com/parametrica/ossature/pkg/mesh"
)

// ExtractShell samples the full bounding box at the configured resolution
// and triangulates the isosurface at ShellThreshold, with per-vertex
// normals. A field with no surface inside the box produces a valid empty
// mesh.
func ExtractShell(ctx context.Context, f field.Field, bb sdf.Box3, p Parameters) (*mesh.Mesh, error) {
	g, err := field.Sample(ctx, f, bb, p.Resolution)
	if err != nil {
		return nil, err
	}
	m := march.Triangulate(g, p.ShellThreshold)
	mesh.ComputeNormals(m)
	return m, nil
}
