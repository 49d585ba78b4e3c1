package conventus

// Cursor is a read view over a caller-owned part sequence. Reads advance the
// view only; the sequence itself changes when Commit removes the consumed
// prefix.
type Cursor[P any] struct {
	parts *[]P
	n     int
}

func NewCursor[P any](parts *[]P) *Cursor[P] {
	return &Cursor[P]{parts: parts}
}

func (c *Cursor[P]) view() []P {
	if c.parts == nil {
		return nil
	}
	return *c.parts
}

// Remaining is the number of parts after the read position.
func (c *Cursor[P]) Remaining() int {
	return len(c.view()) - c.n
}

// Consumed is the number of parts read since the last Commit or Rewind.
func (c *Cursor[P]) Consumed() int {
	return c.n
}

// Need returns Incomplete unless at least n parts remain.
func (c *Cursor[P]) Need(n int) error {
	if n < 0 || c.Remaining() < n {
		return Incomplete()
	}
	return nil
}

// Peek returns the part i positions past the read position without
// consuming it.
func (c *Cursor[P]) Peek(i int) (P, bool) {
	var zero P
	if i < 0 || i >= c.Remaining() {
		return zero, false
	}
	return c.view()[c.n+i], true
}

// Next consumes one part.
func (c *Cursor[P]) Next() (P, error) {
	p, ok := c.Peek(0)
	if !ok {
		return p, Incomplete()
	}
	c.n++
	return p, nil
}

// Take consumes n parts and returns a copy of them, so a composite never
// aliases the caller's sequence.
func (c *Cursor[P]) Take(n int) ([]P, error) {
	if err := c.Need(n); err != nil {
		return nil, err
	}
	out := make([]P, n)
	copy(out, c.view()[c.n:c.n+n])
	c.n += n
	return out, nil
}

// Skip consumes n parts without copying them.
func (c *Cursor[P]) Skip(n int) error {
	if err := c.Need(n); err != nil {
		return err
	}
	c.n += n
	return nil
}

// Rewind discards reads since the last Commit.
func (c *Cursor[P]) Rewind() {
	c.n = 0
}

// Commit removes the consumed prefix from the sequence, keeping the order of
// what remains. The backing array is resliced, never written.
func (c *Cursor[P]) Commit() {
	if c.n == 0 || c.parts == nil {
		return
	}
	*c.parts = (*c.parts)[c.n:]
	c.n = 0
}

// Transact runs attempt against a fresh cursor over parts and commits the
// consumed prefix only when attempt succeeds. On failure parts is untouched
// and the error is returned as a *Failure.
func Transact[P, C any](parts *[]P, attempt func(cur *Cursor[P]) (C, error)) (C, error) {
	cur := NewCursor(parts)
	out, err := attempt(cur)
	if err != nil {
		var zero C
		return zero, Fail(err)
	}
	cur.Commit()
	return out, nil
}
