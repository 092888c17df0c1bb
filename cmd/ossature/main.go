// Command ossature extracts an architectural model from a scene script:
// shell mesh, frame segments, floor slices, core points, and facade panels.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/deadsy/sdfx/sdf"

	"github.com/parametrica/ossature/pkg/extract"
	"github.com/parametrica/ossature/pkg/field"
	"github.com/parametrica/ossature/pkg/mesh"
	"github.com/parametrica/ossature/pkg/scene"
)

// boundsMargin grows the solid's bounding box before sampling so the
// isosurface never touches the grid boundary.
const boundsMargin = 0.1

func main() {
	scenePath := flag.String("scene", "", "scene script to evaluate (required)")
	paramsPath := flag.String("params", "", "yaml parameter file layered over the defaults")
	resolution := flag.Int("resolution", 0, "override grid resolution per axis")
	weldTol := flag.Float64("weld", 0, "weld shell vertices closer than this distance (0 disables)")
	objPath := flag.String("obj", "", "write the shell and panels to a wavefront OBJ file")
	flag.Parse()

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "Usage: ossature -scene tower.osc [-params params.yaml] [-resolution n] [-obj out.obj]")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*scenePath, *paramsPath, *resolution, *weldTol, *objPath); err != nil {
		log.Fatalf("ossature: %v", err)
	}
}

func run(scenePath, paramsPath string, resolution int, weldTol float64, objPath string) error {
	source, err := os.ReadFile(scenePath)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}

	base := extract.DefaultParameters()
	if paramsPath != "" {
		base, err = extract.LoadParameters(paramsPath)
		if err != nil {
			return err
		}
	}

	eng := scene.NewEngine()
	sc, evalErrs, err := eng.EvaluateWith(string(source), base)
	if err != nil {
		return fmt.Errorf("evaluate scene: %w", err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Printf("scene error: %v", e)
		}
		return fmt.Errorf("scene %s failed to evaluate", scenePath)
	}

	p := sc.Params
	if resolution > 0 {
		p.Resolution = resolution
	}

	bb := grow(sc.SDF.BoundingBox(), boundsMargin)
	model, err := extract.Build(context.Background(), field.FromSDF3(sc.SDF), bb, p)
	if err != nil {
		return err
	}

	if weldTol > 0 {
		before := model.Shell.VertexCount()
		model.Shell = mesh.Weld(model.Shell, weldTol)
		log.Printf("weld: %d -> %d vertices", before, model.Shell.VertexCount())
	}

	log.Printf("shell: %d vertices, %d triangles", model.Shell.VertexCount(), model.Shell.TriangleCount())
	log.Printf("frame: %d segments", len(model.Frame))
	log.Printf("floors: %d slices at heights %v", model.Meta.TotalFloors, model.Meta.FloorHeights)
	log.Printf("core: %d points within radius %g", len(model.Core), model.Meta.CoreRadius)
	log.Printf("panels: %d clusters (%s)", model.Meta.PanelCount, model.Meta.Clustering)

	if objPath != "" {
		if err := writeOBJ(objPath, model); err != nil {
			return fmt.Errorf("write obj: %w", err)
		}
		log.Printf("wrote %s", objPath)
	}
	return nil
}

// grow expands a bounding box by a fraction of its size on every side.
func grow(bb sdf.Box3, margin float64) sdf.Box3 {
	pad := bb.Max.Sub(bb.Min).MulScalar(margin)
	return sdf.Box3{
		Min: bb.Min.Sub(pad),
		Max: bb.Max.Add(pad),
	}
}
