package engine

import (
	"errors"
	"fmt"

	"github.com/vk/animgraph/internal/driver"
)

var (
	// ErrCycle is returned when the active subgraph is not acyclic.
	ErrCycle = errors.New("cycle in animated graph")
	// ErrDanglingReference is returned when a property mapping names a node
	// that no longer exists.
	ErrDanglingReference = errors.New("mapped node does not exist")
)

// CycleError describes the nodes that could not be ordered during a frame.
type CycleError struct {
	// Stuck lists, in ascending order, every active node that never reached
	// zero incoming edges. It includes nodes downstream of the cycle.
	Stuck []int
	// Cycle is one cycle among the stuck nodes, in edge order.
	Cycle []int
}

func (e *CycleError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("%s: nodes %v (cycle %v)", ErrCycle, e.Stuck, e.Cycle)
	}
	return fmt.Sprintf("%s: nodes %v", ErrCycle, e.Stuck)
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// IsFatal reports whether err is a structural failure of the graph or of a
// driver, as opposed to a rejected command.
func IsFatal(err error) bool {
	return errors.Is(err, ErrCycle) ||
		errors.Is(err, ErrDanglingReference) ||
		errors.Is(err, driver.ErrTimeWentBackwards)
}
