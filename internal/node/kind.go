package node

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed set of node variants.
type Kind int

const (
	KindValue Kind = iota + 1
	KindInterpolation
	KindAddition
	KindMultiplication
	KindDiffClamp
	KindCond
	KindStyle
	KindTransform
	KindProps
)

var kindNames = map[Kind]string{
	KindValue:          "value",
	KindInterpolation:  "interpolation",
	KindAddition:       "addition",
	KindMultiplication: "multiplication",
	KindDiffClamp:      "diffclamp",
	KindCond:           "cond",
	KindStyle:          "style",
	KindTransform:      "transform",
	KindProps:          "props",
}

// String returns the lower-case name used in scene files and command payloads.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsScalar reports whether nodes of this kind produce a single number.
func (k Kind) IsScalar() bool {
	switch k {
	case KindValue, KindInterpolation, KindAddition, KindMultiplication, KindDiffClamp, KindCond:
		return true
	default:
		return false
	}
}

// ParseKind maps a kind name to its Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unsupported node type %q", ErrInvalidConfig, s)
}
