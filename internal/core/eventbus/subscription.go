package eventbus

import (
	"reflect"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
)

var (
	_ pkgif.Subscription = (*Subscription)(nil)
	_ pkgif.Emitter      = (*Emitter)(nil)
)

// ============================================================================
//                              Subscription
// ============================================================================

// Subscription 订阅
type Subscription struct {
	bus       *Bus
	types     []reflect.Type
	out       chan any
	closeOnce sync.Once
}

// Out 返回事件通道
func (s *Subscription) Out() <-chan any {
	return s.out
}

// Close 取消订阅，可重复调用
//
// 先从总线移除，之后不会再有发射写入 out，再关闭通道。
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.bus.removeSub(s)
		close(s.out)
	})
	return nil
}

// ============================================================================
//                              Emitter
// ============================================================================

// Emitter 事件发射器
type Emitter struct {
	bus       *Bus
	topic     *topic
	closed    atomic.Bool
	closeOnce sync.Once
}

// Emit 发射事件
func (e *Emitter) Emit(event any) error {
	if e.closed.Load() {
		return ErrEmitterClosed
	}
	if reflect.TypeOf(event) != e.topic.typ {
		return ErrWrongEventType
	}
	e.topic.emit(event)
	return nil
}

// Close 关闭发射器
func (e *Emitter) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.topic.nEmitters.Add(-1)
		e.bus.mu.Lock()
		e.bus.maybeDropLocked(e.topic)
		e.bus.mu.Unlock()
	})
	return nil
}
