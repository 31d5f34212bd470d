// Package mailbox 提供无界 FIFO 投递队列
//
// 生产者通过 Put 写入（永不阻塞），一个内部 goroutine 按写入顺序把元素
// 转发到 Out() 返回的 channel。用于把传输层事件交给拥有者，
// 事件的生命周期与传输实例绑定：CloseAfterDrain 之后剩余元素仍会投递完毕，
// 然后 Out() 被关闭。
//
// 转发 goroutine 在第一次 Put、CloseAfterDrain 或 Abort 时才启动，
// 从未使用的 Mailbox 不占用 goroutine。
package mailbox

import (
	"sync"
	"sync/atomic"
)

// Mailbox 无界 FIFO 投递队列
type Mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool

	out    chan T
	signal chan struct{}
	abort  chan struct{}
	done   chan struct{}

	started   atomic.Bool
	startOnce sync.Once
	abortOnce sync.Once
}

// New 创建 Mailbox
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		out:    make(chan T),
		signal: make(chan struct{}, 1),
		abort:  make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Started 转发 goroutine 是否已启动
func (m *Mailbox[T]) Started() bool {
	return m.started.Load()
}

func (m *Mailbox[T]) start() {
	m.startOnce.Do(func() {
		m.started.Store(true)
		go m.pump()
	})
}

// Put 追加元素，关闭后返回 false
func (m *Mailbox[T]) Put(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, v)
	m.mu.Unlock()
	m.start()
	m.notify()
	return true
}

// Out 返回输出 channel
func (m *Mailbox[T]) Out() <-chan T {
	return m.out
}

// Len 返回尚未转发的元素数
func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// CloseAfterDrain 拒绝后续 Put，已有元素投递完毕后关闭 Out()
func (m *Mailbox[T]) CloseAfterDrain() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.start()
	m.notify()
}

// Abort 立即停止转发并关闭 Out()，返回尚未投递的元素
func (m *Mailbox[T]) Abort() []T {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.abortOnce.Do(func() { close(m.abort) })
	m.start()
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()
	rest := m.queue
	m.queue = nil
	return rest
}

func (m *Mailbox[T]) notify() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *Mailbox[T]) pump() {
	defer close(m.done)
	defer close(m.out)

	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			closed := m.closed
			m.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-m.signal:
				continue
			case <-m.abort:
				return
			}
		}
		v := m.queue[0]
		var zero T
		m.queue[0] = zero
		m.queue = m.queue[1:]
		m.mu.Unlock()

		select {
		case m.out <- v:
		case <-m.abort:
			m.mu.Lock()
			m.queue = append([]T{v}, m.queue...)
			m.mu.Unlock()
			return
		}
	}
}
