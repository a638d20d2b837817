package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweepable struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweepable) Sweep(ctx context.Context) error {
	s.calls.Add(1)
	return s.err
}

func TestSweeperSweepRunsAllTargets(t *testing.T) {
	t.Parallel()

	a, b := &countingSweepable{}, &countingSweepable{}
	s := NewSweeper("", nil, a, b)

	require.NoError(t, s.Sweep(context.Background()))
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestSweeperSweepReportsFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	a := &countingSweepable{err: boom}
	s := NewSweeper("", nil, a, &countingSweepable{})

	assert.ErrorIs(t, s.Sweep(context.Background()), boom)
}

func TestSweeperStartWithoutTargets(t *testing.T) {
	t.Parallel()

	s := NewSweeper("", nil)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	s := NewSweeper("not a schedule", nil, &countingSweepable{})
	assert.Error(t, s.Start())
}
