package conventus

import "errors"

// ErrNoProgress is returned by ComposeAll when a composer succeeds without
// consuming any part.
var ErrNoProgress = errors.New("conventus: composer consumed no parts")

// Composer is implemented by a composite type C that can be built from a
// prefix of a []P.
//
// On success exactly the consumed prefix is removed from *parts. On failure
// *parts is left as it was and the error is a *Failure: Incomplete when more
// parts are needed, Error(cause) when the parts present are invalid.
type Composer[P, C any] interface {
	ComposeFrom(parts *[]P) (C, error)
}

// ComposeFrom builds a C from the front of parts.
func ComposeFrom[C Composer[P, C], P any](parts *[]P) (C, error) {
	var zero C
	return zero.ComposeFrom(parts)
}

// ComposeInto is ComposeFrom named from the part side: "turn these parts into
// a C". It adds nothing to the composer's result.
func ComposeInto[C Composer[P, C], P any](parts *[]P) (C, error) {
	var zero C
	return zero.ComposeFrom(parts)
}

// ComposeAll composes until the sequence reports Incomplete. Composites built
// before a permanent failure are returned with the error; the failing parts
// stay at the front of *parts.
func ComposeAll[C Composer[P, C], P any](parts *[]P) ([]C, error) {
	var out []C
	for {
		before := len(*parts)
		c, err := ComposeFrom[C](parts)
		if err != nil {
			if IsIncomplete(err) {
				return out, nil
			}
			return out, err
		}
		out = append(out, c)
		if len(*parts) >= before {
			return out, ErrNoProgress
		}
	}
}
