package node

import (
	"fmt"
	"slices"
)

// Static is a literal transform entry: either a single number or a sequence
// of numbers (e.g. a matrix).
type Static struct {
	number  float64
	numbers []float64
	isList  bool
}

// Number returns a scalar static entry.
func Number(v float64) Static {
	return Static{number: v}
}

// Numbers returns a sequence static entry.
func Numbers(v ...float64) Static {
	return Static{numbers: slices.Clone(v), isList: true}
}

// IsList reports whether the entry is a sequence.
func (s Static) IsList() bool {
	return s.isList
}

// Value returns the entry as a property value: float64 or a fresh []float64.
func (s Static) Value() any {
	if s.isList {
		return slices.Clone(s.numbers)
	}
	return s.number
}

func (s Static) validate() error {
	if !s.isList {
		if !isFinite(s.number) {
			return fmt.Errorf("%w: static number is not finite", ErrInvalidConfig)
		}
		return nil
	}
	for i, v := range s.numbers {
		if !isFinite(v) {
			return fmt.Errorf("%w: static element %d is not finite", ErrInvalidConfig, i)
		}
	}
	return nil
}
