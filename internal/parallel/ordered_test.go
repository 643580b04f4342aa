package parallel

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOrderedMapPreservesInputOrder(t *testing.T) {
	items := make([]int, 64)
	for i := range items {
		items[i] = i
	}
	res := OrderedMap(context.Background(), items, 8, func(_ context.Context, _ int, v int) (int, error) {
		time.Sleep(time.Duration(rand.IntN(3)) * time.Millisecond)
		return v * v, nil
	})
	require.Len(t, res, len(items))
	for i, r := range res {
		require.NoError(t, r.Err)
		assert.Equal(t, i*i, r.Value)
	}
}

func TestOrderedMapRespectsWorkerLimit(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]struct{}, 20)
	OrderedMap(context.Background(), items, 3, func(_ context.Context, _ int, _ struct{}) (bool, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return true, nil
	})
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestOrderedMapIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	items := []string{"a", "fail", "c", "panic", "e"}
	res := OrderedMap(context.Background(), items, 2, func(_ context.Context, _ int, s string) (string, error) {
		switch s {
		case "fail":
			return "", boom
		case "panic":
			panic("kaput")
		}
		return s + s, nil
	})

	require.Len(t, res, 5)
	assert.Equal(t, "aa", res[0].Value)
	assert.ErrorIs(t, res[1].Err, boom)
	assert.Equal(t, "cc", res[2].Value)
	require.ErrorIs(t, res[3].Err, ErrPanic)
	var pe *PanicError
	require.ErrorAs(t, res[3].Err, &pe)
	assert.Equal(t, "kaput", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Equal(t, "ee", res[4].Value)

	joined := Errors(res)
	assert.ErrorIs(t, joined, boom)
	assert.ErrorIs(t, joined, ErrPanic)
}

func TestOrderedMapCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	res := OrderedMap(ctx, []int{1, 2, 3}, 2, func(_ context.Context, _ int, v int) (int, error) {
		calls.Add(1)
		return v, nil
	})
	assert.Zero(t, calls.Load())
	for _, r := range res {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestOrderedMapEmptyAndDefaultWorkers(t *testing.T) {
	assert.Empty(t, OrderedMap(context.Background(), nil, 0, func(context.Context, int, int) (int, error) { return 0, nil }))

	res := OrderedMap(context.Background(), []int{7}, 0, func(_ context.Context, i int, v int) (int, error) { return v + i, nil })
	require.Len(t, res, 1)
	assert.Equal(t, 7, res[0].Value)
	assert.NoError(t, Errors(res))
}
