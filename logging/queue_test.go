package logging

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryQueue(t *testing.T) {
	var q entryQueue

	_, ok := q.pop()
	assert.False(t, ok)

	q.push("a")
	q.push("b")
	assert.Equal(t, 2, q.len())

	e, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "a", e)
	assert.Equal(t, 1, q.len())

	assert.Equal(t, 1, q.reset())
	assert.Equal(t, 0, q.len())
}

func TestEntryQueue_CompactionKeepsOrder(t *testing.T) {
	var q entryQueue
	const n = 3 * compactThreshold

	for i := 0; i < n; i++ {
		q.push(strconv.Itoa(i))
	}
	for i := 0; i < n; i++ {
		if i == n/2 {
			q.push("tail")
		}
		e, ok := q.pop()
		require.True(t, ok)
		require.Equal(t, strconv.Itoa(i), e)
	}

	e, ok := q.pop()
	require.True(t, ok)
	assert.Equal(t, "tail", e)
	assert.Equal(t, 0, q.len())
}
