package conventus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorCommitRemovesOnlyConsumedPrefix(t *testing.T) {
	parts := []int{1, 2, 3, 4}
	cur := NewCursor(&parts)

	taken, err := cur.Take(2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, taken)
	assert.Equal(t, 2, cur.Consumed())
	assert.Equal(t, []int{1, 2, 3, 4}, parts)

	cur.Commit()
	assert.Equal(t, []int{3, 4}, parts)
	assert.Equal(t, []int{1, 2}, taken)
	assert.Equal(t, 0, cur.Consumed())
	assert.Equal(t, 2, cur.Remaining())
}

func TestCursorShortReadsAreIncomplete(t *testing.T) {
	parts := []int{7}
	cur := NewCursor(&parts)

	_, err := cur.Take(2)
	assert.True(t, IsIncomplete(err))
	assert.Equal(t, 0, cur.Consumed())

	v, err := cur.Next()
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = cur.Next()
	assert.True(t, IsIncomplete(err))
	assert.True(t, IsIncomplete(cur.Skip(1)))
	assert.True(t, IsIncomplete(cur.Need(-1)))

	_, ok := cur.Peek(0)
	assert.False(t, ok)

	cur.Rewind()
	v, ok = cur.Peek(0)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestCursorNilSequence(t *testing.T) {
	cur := NewCursor[int](nil)
	assert.Equal(t, 0, cur.Remaining())
	assert.True(t, IsIncomplete(cur.Need(1)))
	cur.Commit()
}

func TestTransactLeavesInputOnFailure(t *testing.T) {
	parts := []int{1, 2, 3}
	bad := errors.New("bad")

	_, err := Transact(&parts, func(cur *Cursor[int]) (int, error) {
		_ = cur.Skip(3)
		return 0, bad
	})
	require.ErrorIs(t, err, bad)
	assert.True(t, IsInvalid(err))
	assert.Equal(t, []int{1, 2, 3}, parts)

	_, err = Transact(&parts, func(cur *Cursor[int]) (int, error) {
		_ = cur.Skip(2)
		return 0, Incomplete()
	})
	assert.True(t, IsIncomplete(err))
	assert.Equal(t, []int{1, 2, 3}, parts)

	sum, err := Transact(&parts, func(cur *Cursor[int]) (int, error) {
		a, _ := cur.Next()
		b, _ := cur.Next()
		return a + b, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sum)
	assert.Equal(t, []int{3}, parts)
}
