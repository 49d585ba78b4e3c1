package stream

import (
	"github.com/danmuck/conventus"
	"github.com/danmuck/conventus/internal/logging"
	"github.com/danmuck/conventus/internal/observability"
	"github.com/rs/zerolog"
)

// ComposeFunc composes one C from the front of parts under the conventus
// contract.
type ComposeFunc[P, C any] func(parts *[]P) (C, error)

// Assembler owns a part buffer and composes from it as parts arrive.
type Assembler[P, C any] struct {
	name    string
	compose ComposeFunc[P, C]
	buf     []P
	log     zerolog.Logger
}

// NewAssembler uses C's own Composer.
func NewAssembler[C conventus.Composer[P, C], P any](name string) *Assembler[P, C] {
	return NewAssemblerFunc[P, C](name, conventus.ComposeFrom[C, P])
}

func NewAssemblerFunc[P, C any](name string, compose ComposeFunc[P, C]) *Assembler[P, C] {
	return &Assembler[P, C]{
		name:    name,
		compose: compose,
		log:     logging.Logger("stream").With().Str("composite", name).Logger(),
	}
}

func (a *Assembler[P, C]) Feed(parts ...P) {
	a.buf = append(a.buf, parts...)
}

// Next composes one value from the buffered parts. An Incomplete failure means
// Feed more and call again. A permanent failure leaves the offending parts at
// the front of the buffer, so it repeats until Reset.
func (a *Assembler[P, C]) Next() (C, error) {
	before := len(a.buf)
	out, err := a.compose(&a.buf)
	consumed := before - len(a.buf)
	observability.RecordCompose(a.name, err, consumed)

	switch {
	case err == nil:
		a.log.Trace().Int("consumed", consumed).Int("pending", len(a.buf)).Msg("composed")
		if len(a.buf) == 0 {
			a.buf = nil
		}
	case conventus.IsIncomplete(err):
		a.log.Trace().Int("pending", len(a.buf)).Msg("incomplete")
	default:
		a.log.Warn().Err(err).Int("pending", len(a.buf)).Msg("compose failed")
	}
	return out, err
}

// Drain composes until the buffer reports Incomplete.
func (a *Assembler[P, C]) Drain() ([]C, error) {
	var out []C
	for {
		c, err := a.Next()
		if err != nil {
			if conventus.IsIncomplete(err) {
				return out, nil
			}
			return out, err
		}
		out = append(out, c)
	}
}

func (a *Assembler[P, C]) Pending() int {
	return len(a.buf)
}

// Buffered returns a copy of the parts not yet composed.
func (a *Assembler[P, C]) Buffered() []P {
	return append([]P(nil), a.buf...)
}

func (a *Assembler[P, C]) Reset() {
	a.buf = nil
}
