package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTimeout is wrapped into a node's error when its operation does not
// complete within the task's timeout.
var ErrTimeout = errors.New("task timed out")

// ErrLogicalFailure is recorded on a node when its operation returns false
// without an error and the graph was built in strict mode.
var ErrLogicalFailure = errors.New("task reported logical failure")

// CyclicError is returned by Builder.Add when a proposed dependency edge
// would close a cycle. Path holds the full chain of task names from the
// proposed dependency back to the dependent, for diagnostics. The edge that
// triggered the error is never committed.
type CyclicError struct {
	Path []string
}

func (e *CyclicError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Path, " -> "))
}
