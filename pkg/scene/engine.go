// Package scene evaluates scene scripts into a solid plus extraction
// parameters. Scripts are a small sandboxed Lisp (zygomys) that composes
// externally supplied SDF shapes; the shapes themselves come from sdfx,
// the engine only arranges them and sets parameters.
package scene

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/parametrica/ossature/pkg/extract"
)

// Scene is the result of evaluating a scene script: the composed solid and
// the extraction parameters the script selected.
type Scene struct {
	SDF    sdf.SDF3
	Params extract.Parameters
}

// EvalError is a non-fatal script diagnostic: a parse error or a runtime
// error in user code, with line information when the interpreter provides
// it.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates scene scripts. It holds no state between calls; every
// call to Evaluate runs in a fresh sandboxed interpreter for determinism, so
// concurrent use is safe.
type Engine struct{}

// NewEngine creates a scene engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs a scene script with default extraction parameters.
//
// Return semantics:
//   - success: scene + nil errors + nil error
//   - parse/eval failure: nil scene + eval errors + nil error
//   - fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*Scene, []EvalError, error) {
	return e.EvaluateWith(source, extract.DefaultParameters())
}

// EvaluateWith is Evaluate with an explicit parameter base; script-level
// (params ...) settings override the base field by field.
func (e *Engine) EvaluateWith(source string, base extract.Parameters) (*Scene, []EvalError, error) {
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		sc, evalErrs := e.evaluate(source, base)
		ch <- evalResult{scene: sc, errors: evalErrs}
	}()

	return waitWithTimeout(ch)
}

// evaluate runs the script in a fresh sandbox. The sandbox prevents user
// code from touching the filesystem or syscalls.
func (e *Engine) evaluate(source string, base extract.Parameters) (*Scene, []EvalError) {
	if strings.TrimSpace(source) == "" {
		return nil, []EvalError{{Message: "empty scene script"}}
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	state := &sceneState{params: base}
	registerBuiltins(env, state)

	if err := env.LoadString(preprocess(source)); err != nil {
		return nil, parseInterpreterError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseInterpreterError(err)
	}

	if state.solid == nil {
		return nil, []EvalError{{Message: "scene defines no solid; finish the script with (solid ...)"}}
	}
	return &Scene{SDF: state.solid, Params: state.params}, nil
}

// linePattern matches zygomys diagnostics of the form "Error on line N: ..."
// or "line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)|^line (\d+):\s*(.*)`)

// parseInterpreterError converts an interpreter error into EvalError values,
// extracting line numbers when the message carries them.
func parseInterpreterError(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		num, detail := m[1], m[2]
		if num == "" {
			num, detail = m[3], m[4]
		}
		line, _ := strconv.Atoi(num)
		return []EvalError{{Line: line, Message: strings.TrimSpace(detail)}}
	}
	return []EvalError{{Message: msg}}
}
