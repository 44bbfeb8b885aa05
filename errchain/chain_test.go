package errchain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	smerrors "github.com/Station-Manager/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain_WithDetailedAndStd(t *testing.T) {
	inner := smerrors.New("db.Connect").Msg("dial tcp 127.0.0.1:5432: connect: connection refused")
	middle := smerrors.New("db.Open").Err(inner).Msg("failed to connect to database")
	outer := smerrors.New("server.Start").Err(middle).Msg("startup failed")

	chain, ops, root, rootOp := Chain(outer)
	assert.Equal(t, []string{
		"startup failed",
		"failed to connect to database",
		"dial tcp 127.0.0.1:5432: connect: connection refused",
	}, chain)
	assert.Equal(t, []string{"server.Start", "db.Open", "db.Connect"}, ops)
	assert.Equal(t, "dial tcp 127.0.0.1:5432: connect: connection refused", root)
	assert.Equal(t, "db.Connect", rootOp)

	wrapped := fmt.Errorf("wrap: %w", outer)
	chain2, ops2, root2, _ := Chain(wrapped)
	require.NotEmpty(t, chain2)
	assert.True(t, strings.HasPrefix(chain2[0], "wrap:"))
	assert.Equal(t, "", ops2[0])
	assert.Equal(t, root, root2)
}

func TestChain_Nil(t *testing.T) {
	chain, ops, root, rootOp := Chain(nil)
	assert.Empty(t, chain)
	assert.Empty(t, ops)
	assert.Empty(t, root)
	assert.Empty(t, rootOp)
	assert.Equal(t, "", JoinChain(chain))
}

func TestChain_TracedIsTransparent(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("write entry: %w", Trace(base))

	chain, _, root, _ := Chain(err)
	assert.Equal(t, []string{"write entry: disk full", "disk full"}, chain)
	assert.Equal(t, "disk full", root)
	assert.ErrorIs(t, err, base)
}

func TestChain_JoinFollowsFirstBranch(t *testing.T) {
	a := errors.New("first")
	b := errors.New("second")

	chain, _, root, _ := Chain(errors.Join(a, b))
	require.Len(t, chain, 2)
	assert.Equal(t, "first", root)
}

func TestJoinChain(t *testing.T) {
	assert.Equal(t, "a -> b -> c", JoinChain([]string{"a", "b", "c"}))
	assert.Equal(t, "only", JoinChain([]string{"only"}))
}

func TestRoot(t *testing.T) {
	err := fmt.Errorf("outer: %w", fmt.Errorf("middle: %w", errors.New("inner")))
	assert.Equal(t, "inner", Root(err))
}
