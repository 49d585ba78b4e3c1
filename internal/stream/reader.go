package stream

import (
	"errors"
	"io"

	"github.com/danmuck/conventus"
)

const DefaultChunkSize = 4096

// Reader composes values out of bytes read from an io.Reader.
type Reader[C any] struct {
	src     io.Reader
	asm     *Assembler[byte, C]
	chunk   []byte
	readErr error
}

func NewReader[C conventus.Composer[byte, C]](name string, src io.Reader, chunkSize int) *Reader[C] {
	return NewReaderFunc[C](name, src, conventus.ComposeFrom[C, byte], chunkSize)
}

func NewReaderFunc[C any](name string, src io.Reader, compose ComposeFunc[byte, C], chunkSize int) *Reader[C] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Reader[C]{
		src:   src,
		asm:   NewAssemblerFunc[byte, C](name, compose),
		chunk: make([]byte, chunkSize),
	}
}

// Next returns the next composed value. It reads only while the buffered
// bytes are Incomplete. A clean end of input returns io.EOF; input ending
// inside a value returns io.ErrUnexpectedEOF.
func (r *Reader[C]) Next() (C, error) {
	var zero C
	for {
		out, err := r.asm.Next()
		if err == nil || !conventus.IsIncomplete(err) {
			return out, err
		}
		if r.readErr != nil {
			if errors.Is(r.readErr, io.EOF) && r.asm.Pending() > 0 {
				return zero, io.ErrUnexpectedEOF
			}
			return zero, r.readErr
		}
		n, err := r.src.Read(r.chunk)
		if n > 0 {
			r.asm.Feed(r.chunk[:n]...)
		}
		if err != nil {
			r.readErr = err
		}
	}
}

// Pending is the number of buffered bytes not yet composed.
func (r *Reader[C]) Pending() int {
	return r.asm.Pending()
}
