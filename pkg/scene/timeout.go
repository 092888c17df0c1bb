package scene

import (
	"fmt"
	"time"
)

// EvalTimeout is the hard limit for a single script evaluation.
const EvalTimeout = 5 * time.Second

// evalResult passes evaluation results through the timeout channel.
type evalResult struct {
	scene  *Scene
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, returning a timeout error when
// the evaluation exceeds EvalTimeout. On timeout the evaluation goroutine may
// still be running; it writes into a buffered channel nobody reads and gets
// collected when it finishes.
func waitWithTimeout(ch <-chan evalResult) (*Scene, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.scene, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}
