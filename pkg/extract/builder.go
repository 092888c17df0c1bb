package extract

import (
	"context"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/parametrica/ossature/pkg/field"
	"github.com/parametrica/ossature/pkg/mesh"
)

// Stage names carried by StageError.
const (
	StageShell  = "shell"
	StageFrame  = "frame"
	StageFloors = "floors"
	StageCore   = "core"
	StagePanels = "panels"
)

// clusteringAxisBucket names the clustering mode the builder runs. Recorded
// in the metadata so downstream consumers know which semantics produced the
// panels.
const clusteringAxisBucket = "axis-bucket"

// Metadata summarizes a built model for downstream exporters.
type Metadata struct {
	TotalFloors  int       `json:"totalFloors"`
	FloorHeights []float64 `json:"floorHeights"`
	CoreRadius   float64   `json:"coreRadius"`
	PanelCount   int       `json:"panelCount"`
	Clustering   string    `json:"clustering"`
}

// Model is the assembled architectural model: every element is produced by
// exactly one pipeline stage and immutable afterward. Units are meters.
type Model struct {
	Shell  *mesh.Mesh   `json:"shell"`
	Frame  []mesh.Line  `json:"frame"`
	Floors []*mesh.Mesh `json:"floors"`
	Core   []v3.Vec     `json:"core"`
	Panels []*mesh.Mesh `json:"panels"`
	Meta   Metadata     `json:"metadata"`
}

// Build runs the full extraction pipeline (shell, frame, floors, core,
// panels) against one (field, bounding box, parameters) triple and
// assembles the model. It is purely functional: no shared mutable state, no
// side effects visible to the caller. Invalid configuration is rejected
// before any sampling; a stage failure aborts the build wrapped in a
// StageError naming the stage.
func Build(ctx context.Context, f field.Field, bb sdf.Box3, p Parameters) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := validateBounds(bb); err != nil {
		return nil, err
	}

	shell, err := ExtractShell(ctx, f, bb, p)
	if err != nil {
		return nil, &StageError{Stage: StageShell, Err: err}
	}

	frame, err := ExtractFrame(ctx, f, bb, p)
	if err != nil {
		return nil, &StageError{Stage: StageFrame, Err: err}
	}

	floors, heights, err := SliceFloors(ctx, f, bb, p)
	if err != nil {
		return nil, &StageError{Stage: StageFloors, Err: err}
	}

	core, err := SampleCore(ctx, f, bb, p)
	if err != nil {
		return nil, &StageError{Stage: StageCore, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, &StageError{Stage: StagePanels, Err: err}
	}
	panels := ClusterPanels(shell, p)

	return &Model{
		Shell:  shell,
		Frame:  frame,
		Floors: floors,
		Core:   core,
		Panels: panels,
		Meta: Metadata{
			TotalFloors:  len(floors),
			FloorHeights: heights,
			CoreRadius:   p.CoreRadius,
			PanelCount:   len(panels),
			Clustering:   clusteringAxisBucket,
		},
	}, nil
}
