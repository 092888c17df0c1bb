// Package extract converts a signed distance field into discrete
// architectural building elements: the outer shell mesh, structural frame
// segments, floor slices, the vertical core point cloud, and facade panel
// sub-meshes. Build orchestrates the whole pipeline.
package extract

import (
	"fmt"
	"os"

	"github.com/deadsy/sdfx/sdf"
	"gopkg.in/yaml.v3"
)

// Parameters configures the extraction pipeline. All fields are
// independently optional: start from DefaultParameters and override.
// Distances are in meters, angles in degrees.
type Parameters struct {
	// ShellThreshold is the isovalue at which the shell is extracted.
	ShellThreshold float64 `yaml:"shellThreshold"`
	// Resolution is the number of grid subdivisions per axis for the shell.
	Resolution int `yaml:"resolution"`
	// FloorHeight is the vertical spacing between floor slices.
	FloorHeight float64 `yaml:"floorHeight"`
	// CoreRadius bounds the cylindrical core sampling lattice.
	CoreRadius float64 `yaml:"coreRadius"`
	// PanelAngleThreshold is the angular tolerance used by the
	// threshold-aware panel clusterer. The default axis-bucket clusterer
	// accepts but does not use it; see ClusterPanels.
	PanelAngleThreshold float64 `yaml:"panelAngleThreshold"`
	// CurvatureEpsilon is the finite-difference step for curvature probes.
	CurvatureEpsilon float64 `yaml:"curvatureEpsilon"`
	// FrameThreshold is the curvature magnitude above which a near-surface
	// sample emits a frame segment.
	FrameThreshold float64 `yaml:"frameThreshold"`
}

// DefaultParameters returns the documented defaults.
func DefaultParameters() Parameters {
	return Parameters{
		ShellThreshold:      0.0,
		Resolution:          128,
		FloorHeight:         3.5,
		CoreRadius:          5.0,
		PanelAngleThreshold: 15.0,
		CurvatureEpsilon:    0.01,
		FrameThreshold:      0.8,
	}
}

// LoadParameters reads a yaml parameter file layered over the defaults:
// fields absent from the file keep their default values.
func LoadParameters(path string) (Parameters, error) {
	p := DefaultParameters()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read parameters: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse parameters %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects parameter combinations the pipeline cannot sample.
func (p Parameters) Validate() error {
	if p.Resolution < 2 {
		return ConfigurationError{Field: "resolution", Message: fmt.Sprintf("%d is below the minimum of 2", p.Resolution)}
	}
	if p.Resolution > 256 {
		return ConfigurationError{Field: "resolution", Message: fmt.Sprintf("%d exceeds the supported maximum of 256", p.Resolution)}
	}
	if p.FloorHeight <= 0 {
		return ConfigurationError{Field: "floorHeight", Message: fmt.Sprintf("%g must be positive", p.FloorHeight)}
	}
	if p.CoreRadius <= 0 {
		return ConfigurationError{Field: "coreRadius", Message: fmt.Sprintf("%g must be positive", p.CoreRadius)}
	}
	if p.CurvatureEpsilon <= 0 {
		return ConfigurationError{Field: "curvatureEpsilon", Message: fmt.Sprintf("%g must be positive", p.CurvatureEpsilon)}
	}
	if p.PanelAngleThreshold <= 0 || p.PanelAngleThreshold > 90 {
		return ConfigurationError{Field: "panelAngleThreshold", Message: fmt.Sprintf("%g must be in (0, 90]", p.PanelAngleThreshold)}
	}
	return nil
}

// validateBounds rejects degenerate bounding boxes before sampling.
func validateBounds(bb sdf.Box3) error {
	if bb.Min.X >= bb.Max.X || bb.Min.Y >= bb.Max.Y || bb.Min.Z >= bb.Max.Z {
		return ConfigurationError{
			Field: "boundingBox",
			Message: fmt.Sprintf("min (%g, %g, %g) must be strictly below max (%g, %g, %g) on every axis",
				bb.Min.X, bb.Min.Y, bb.Min.Z, bb.Max.X, bb.Max.Y, bb.Max.Z),
		}
	}
	return nil
}
