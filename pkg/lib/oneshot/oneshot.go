// Package oneshot 提供调用方持有的一次性结果槽
//
// 异步操作返回 *Slot[T]，结果恰好被写入一次。调用方可以选择
// 监听 Done()、有界阻塞等待 Wait(ctx) / WaitTimeout(d)，或完全忽略它
// 而改为消费传输层的事件流。
package oneshot

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout 等待超时
var ErrTimeout = errors.New("oneshot: wait timed out")

// Slot 一次性结果槽
type Slot[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// New 创建未完成的结果槽
func New[T any]() *Slot[T] {
	return &Slot[T]{done: make(chan struct{})}
}

// Resolved 创建已完成的结果槽
func Resolved[T any](v T, err error) *Slot[T] {
	s := New[T]()
	s.Resolve(v, err)
	return s
}

// Resolve 写入结果
//
// 只有第一次调用生效，返回 true；之后的调用返回 false 且不改变结果。
func (s *Slot[T]) Resolve(v T, err error) bool {
	resolved := false
	s.once.Do(func() {
		s.value = v
		s.err = err
		close(s.done)
		resolved = true
	})
	return resolved
}

// Done 返回完成通知 channel
func (s *Slot[T]) Done() <-chan struct{} {
	return s.done
}

// IsResolved 是否已有结果
func (s *Slot[T]) IsResolved() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Result 返回结果（未完成时 ok 为 false）
func (s *Slot[T]) Result() (v T, err error, ok bool) {
	if !s.IsResolved() {
		return v, nil, false
	}
	return s.value, s.err, true
}

// Wait 阻塞等待结果，直到 ctx 结束
func (s *Slot[T]) Wait(ctx context.Context) (T, error) {
	if s.IsResolved() {
		return s.value, s.err
	}
	select {
	case <-s.done:
		return s.value, s.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// WaitTimeout 最多等待 d
func (s *Slot[T]) WaitTimeout(d time.Duration) (T, error) {
	if s.IsResolved() {
		return s.value, s.err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.done:
		return s.value, s.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}
