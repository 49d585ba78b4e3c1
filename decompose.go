package conventus

import "fmt"

// Decomposer is implemented by a part type P that can break a composite C
// into the ordered parts it is made of.
//
// The returned slice is freshly allocated and ordered for re-composition.
// Decomposition has no incomplete state: a failure is a plain error.
type Decomposer[C, P any] interface {
	DecomposeFrom(composite C) ([]P, error)
}

// DecomposeFrom breaks composite into parts of type P.
func DecomposeFrom[P Decomposer[C, P], C any](composite C) ([]P, error) {
	var zero P
	return zero.DecomposeFrom(composite)
}

// DecomposeInto is DecomposeFrom named from the composite side: "break this
// C into Ps". It adds nothing to the decomposer's result.
func DecomposeInto[P Decomposer[C, P], C any](composite C) ([]P, error) {
	var zero P
	return zero.DecomposeFrom(composite)
}

// DecomposeAll concatenates the decompositions of composites in order.
func DecomposeAll[P Decomposer[C, P], C any](composites []C) ([]P, error) {
	var out []P
	for i, c := range composites {
		parts, err := DecomposeFrom[P](c)
		if err != nil {
			return nil, fmt.Errorf("conventus: composite %d: %w", i, err)
		}
		out = append(out, parts...)
	}
	return out, nil
}
