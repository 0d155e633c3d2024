package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls   int
	changed int
	err     error
	ctxErr  error
}

func (r *countingRefresher) RefreshFreshness(ctx context.Context) (int, error) {
	r.calls++
	r.ctxErr = ctx.Err()
	return r.changed, r.err
}

func TestScheduler(t *testing.T) {
	t.Run("rejects invalid schedule", func(t *testing.T) {
		s := NewScheduler("not a cron", &countingRefresher{}, nil)
		assert.Error(t, s.Start())
	})

	t.Run("starts and stops", func(t *testing.T) {
		s := NewScheduler("0 3 * * *", &countingRefresher{}, nil)
		require.NoError(t, s.Start())
		assert.Len(t, s.cron.Entries(), 1)
		s.Stop()
	})

	t.Run("sweep calls refresher with live context", func(t *testing.T) {
		r := &countingRefresher{changed: 4}
		s := NewScheduler("0 3 * * *", r, nil)

		s.refreshFreshness()

		assert.Equal(t, 1, r.calls)
		assert.NoError(t, r.ctxErr)
	})

	t.Run("sweep error is swallowed", func(t *testing.T) {
		r := &countingRefresher{err: errors.New("db down")}
		s := NewScheduler("0 3 * * *", r, nil)

		assert.NotPanics(t, s.refreshFreshness)
		assert.Equal(t, 1, r.calls)
	})
}
