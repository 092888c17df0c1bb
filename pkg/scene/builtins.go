package scene

import (
	"fmt"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/parametrica/ossature/pkg/extract"
)

// kwPrefix marks keyword arguments after preprocessing.
const kwPrefix = "__kw_"

// preprocess rewrites scene source for the interpreter in one pass:
// ; comments become //, :keyword tokens become "__kw_keyword" string
// literals, and kebab-case identifiers become underscore form (zygomys
// reads a bare hyphen as subtraction). String literals pass through
// untouched.
func preprocess(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	for i := 0; i < len(b); {
		switch {
		case b[i] == '"':
			// Copy the string literal verbatim.
			out = append(out, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					out = append(out, b[i], b[i+1])
					i += 2
					continue
				}
				out = append(out, b[i])
				i++
			}
			if i < len(b) {
				out = append(out, b[i])
				i++
			}
		case b[i] == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKeywordChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++
		default:
			out = append(out, b[i])
			i++
		}
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKeywordChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// sexpSolid carries an sdfx solid between builtins.
type sexpSolid struct {
	s sdf.SDF3
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	bb := s.s.BoundingBox()
	return fmt.Sprintf("(solid [%g %g %g]..[%g %g %g])",
		bb.Min.X, bb.Min.Y, bb.Min.Z, bb.Max.X, bb.Max.Y, bb.Max.Z)
}

func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sceneState accumulates the script's output while builtins run.
type sceneState struct {
	solid  sdf.SDF3
	params extract.Parameters
}

// keywordArgs maps keyword names to values, positional args kept in order.
type keywordArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs splits a builtin's argument list into keyword and positional
// arguments. Keywords were rewritten to kwPrefix strings by preprocess.
func parseArgs(args []zygo.Sexp) keywordArgs {
	pa := keywordArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); {
		if name, ok := keywordName(args[i]); ok {
			if i+1 < len(args) {
				pa.kw[name] = args[i+1]
				i += 2
			} else {
				pa.kw[name] = zygo.SexpNull
				i++
			}
			continue
		}
		pa.positional = append(pa.positional, args[i])
		i++
	}
	return pa
}

// keywordName unwraps a preprocessed keyword string.
func keywordName(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// toFloat64 extracts a number from a Sexp.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a solid from a Sexp.
func toSolid(s zygo.Sexp) (sdf.SDF3, error) {
	if w, ok := s.(*sexpSolid); ok {
		return w.s, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// floatKW reads an optional keyword float into dst.
func floatKW(pa keywordArgs, name, fn string, dst *float64) error {
	v, ok := pa.kw[name]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, name, err)
	}
	*dst = f
	return nil
}

// registerBuiltins installs the scene DSL into a fresh interpreter. The
// builtins populate state during evaluation.
func registerBuiltins(env *zygo.Zlisp, state *sceneState) {

	// (sphere :r 60)
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		r := 1.0
		if err := floatKW(pa, "r", "sphere", &r); err != nil {
			return zygo.SexpNull, err
		}
		s, err := sdf.Sphere3D(r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		return &sexpSolid{s: s}, nil
	})

	// (box :x 40 :y 120 :z 40)
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size := v3.Vec{X: 1, Y: 1, Z: 1}
		if err := floatKW(pa, "x", "box", &size.X); err != nil {
			return zygo.SexpNull, err
		}
		if err := floatKW(pa, "y", "box", &size.Y); err != nil {
			return zygo.SexpNull, err
		}
		if err := floatKW(pa, "z", "box", &size.Z); err != nil {
			return zygo.SexpNull, err
		}
		s, err := sdf.Box3D(size, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpSolid{s: s}, nil
	})

	// (cylinder :h 120 :r 18)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		h, r := 1.0, 0.5
		if err := floatKW(pa, "h", "cylinder", &h); err != nil {
			return zygo.SexpNull, err
		}
		if err := floatKW(pa, "r", "cylinder", &r); err != nil {
			return zygo.SexpNull, err
		}
		s, err := sdf.Cylinder3D(h, r, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return &sexpSolid{s: s}, nil
	})

	// (union a b ...)
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("union: need at least 2 solids, got %d", len(pa.positional))
		}
		solids := make([]sdf.SDF3, 0, len(pa.positional))
		for _, arg := range pa.positional {
			s, err := toSolid(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: %w", err)
			}
			solids = append(solids, s)
		}
		return &sexpSolid{s: sdf.Union3D(solids...)}, nil
	})

	// (difference a b)
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("difference: need exactly 2 solids, got %d", len(pa.positional))
		}
		a, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		b, err := toSolid(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		return &sexpSolid{s: sdf.Difference3D(a, b)}, nil
	})

	// (intersect a b)
	env.AddFunction("intersect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("intersect: need exactly 2 solids, got %d", len(pa.positional))
		}
		a, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
		}
		b, err := toSolid(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("intersect: %w", err)
		}
		return &sexpSolid{s: sdf.Intersect3D(a, b)}, nil
	})

	// (translate s :x 0 :y 30 :z 0)
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("translate: need exactly 1 solid, got %d", len(pa.positional))
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		var t v3.Vec
		if err := floatKW(pa, "x", "translate", &t.X); err != nil {
			return zygo.SexpNull, err
		}
		if err := floatKW(pa, "y", "translate", &t.Y); err != nil {
			return zygo.SexpNull, err
		}
		if err := floatKW(pa, "z", "translate", &t.Z); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{s: sdf.Transform3D(s, sdf.Translate3d(t))}, nil
	})

	// (params :resolution 96 :floor-height 4 ...)
	env.AddFunction("params", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		p := &state.params

		if v, ok := pa.kw["resolution"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("params: resolution: %w", err)
			}
			p.Resolution = int(f)
		}
		for kwName, dst := range map[string]*float64{
			"shell-threshold":       &p.ShellThreshold,
			"floor-height":          &p.FloorHeight,
			"core-radius":           &p.CoreRadius,
			"panel-angle-threshold": &p.PanelAngleThreshold,
			"curvature-epsilon":     &p.CurvatureEpsilon,
			"frame-threshold":       &p.FrameThreshold,
		} {
			if err := floatKW(pa, kwName, "params", dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		return zygo.SexpNull, nil
	})

	// (solid s) marks the scene's solid; the last call wins.
	env.AddFunction("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("solid: need exactly 1 solid, got %d", len(pa.positional))
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: %w", err)
		}
		state.solid = s
		return pa.positional[0], nil
	})
}
