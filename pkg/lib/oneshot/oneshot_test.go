package oneshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSlot_ResolveOnce(t *testing.T) {
	s := New[int]()
	assert.False(t, s.IsResolved())

	assert.True(t, s.Resolve(1, nil))
	assert.False(t, s.Resolve(2, errors.New("late")))

	v, err, ok := s.Result()
	require.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 1, v)

	t.Log("✅ 结果只写入一次")
}

func TestSlot_ConcurrentResolve(t *testing.T) {
	s := New[int]()
	wins := make(chan int, 16)

	var g errgroup.Group
	for i := range 16 {
		g.Go(func() error {
			if s.Resolve(i, nil) {
				wins <- i
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(wins)

	count := 0
	for w := range wins {
		count++
		v, _, _ := s.Result()
		assert.Equal(t, w, v)
	}
	assert.Equal(t, 1, count)

	t.Log("✅ 并发写入只有一个生效")
}

func TestSlot_Wait(t *testing.T) {
	s := New[string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Resolve("ok", nil)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := s.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestSlot_WaitContextCanceled(t *testing.T) {
	s := New[string]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.IsResolved())
}

func TestSlot_WaitTimeout(t *testing.T) {
	s := New[int]()
	_, err := s.WaitTimeout(5 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)

	r := Resolved(7, nil)
	v, err := r.WaitTimeout(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	t.Log("✅ 有界等待正确")
}
