package eventbus

import (
	"reflect"
	"sync"
	"sync/atomic"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// 默认订阅缓冲区大小
const defaultBuffer = 64

var _ pkgif.EventBus = (*Bus)(nil)

// ============================================================================
//                              Bus
// ============================================================================

// Bus 事件总线
type Bus struct {
	mu     sync.RWMutex
	topics map[reflect.Type]*topic
	subs   map[*Subscription]struct{}
	closed bool
}

// topic 单个事件类型的订阅者集合
type topic struct {
	mu        sync.Mutex
	typ       reflect.Type
	sinks     []*Subscription
	nEmitters atomic.Int32
	keepLast  bool
	last      any
	dropped   atomic.Int64
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{
		topics: make(map[reflect.Type]*topic),
		subs:   make(map[*Subscription]struct{}),
	}
}

// Subscribe 订阅事件
//
// eventType 为事件指针，或事件指针的切片。
func (b *Bus) Subscribe(eventType any, opts ...pkgif.SubscriptionOpt) (pkgif.Subscription, error) {
	typs, err := eventTypes(eventType)
	if err != nil {
		return nil, err
	}

	settings := pkgif.SubscriptionSettings{Buffer: defaultBuffer}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Buffer < 0 {
		settings.Buffer = 0
	}

	sub := &Subscription{
		bus:   b,
		types: typs,
		out:   make(chan any, settings.Buffer),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	b.subs[sub] = struct{}{}
	for _, typ := range typs {
		t := b.topicLocked(typ)
		t.mu.Lock()
		t.sinks = append(t.sinks, sub)
		if t.keepLast && t.last != nil {
			select {
			case sub.out <- t.last:
			default:
			}
		}
		t.mu.Unlock()
	}
	b.mu.Unlock()

	return sub, nil
}

// Emitter 获取发射器
func (b *Bus) Emitter(eventType any, opts ...pkgif.EmitterOpt) (pkgif.Emitter, error) {
	typ, err := pointerElem(eventType)
	if err != nil {
		return nil, err
	}

	var settings pkgif.EmitterSettings
	for _, opt := range opts {
		opt(&settings)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	t := b.topicLocked(typ)
	t.nEmitters.Add(1)
	if settings.Stateful {
		t.mu.Lock()
		t.keepLast = true
		t.mu.Unlock()
	}

	return &Emitter{bus: b, topic: t}, nil
}

// Close 关闭总线，关闭所有订阅
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}

// Dropped 返回某事件类型累计丢弃数（诊断用）
func (b *Bus) Dropped(eventType any) int64 {
	typ, err := pointerElem(eventType)
	if err != nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if t, ok := b.topics[typ]; ok {
		return t.dropped.Load()
	}
	return 0
}

// ============================================================================
//                              内部方法
// ============================================================================

// topicLocked 获取或创建 topic，调用方持有 b.mu
func (b *Bus) topicLocked(typ reflect.Type) *topic {
	t, ok := b.topics[typ]
	if !ok {
		t = &topic{typ: typ}
		b.topics[typ] = t
	}
	return t
}

// removeSub 从所有 topic 中移除订阅
func (b *Bus) removeSub(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs, sub)
	for _, typ := range sub.types {
		t, ok := b.topics[typ]
		if !ok {
			continue
		}
		t.mu.Lock()
		for i, s := range t.sinks {
			if s == sub {
				t.sinks = append(t.sinks[:i], t.sinks[i+1:]...)
				break
			}
		}
		t.mu.Unlock()
		b.maybeDropLocked(t)
	}
}

// maybeDropLocked 无订阅者、无发射器且不保留状态时删除 topic
func (b *Bus) maybeDropLocked(t *topic) {
	t.mu.Lock()
	idle := len(t.sinks) == 0 && t.nEmitters.Load() == 0 && !t.keepLast
	t.mu.Unlock()
	if idle {
		delete(b.topics, t.typ)
	}
}

// emit 发射事件到所有订阅者（不阻塞）
func (t *topic) emit(event any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.keepLast {
		t.last = event
	}
	for _, sub := range t.sinks {
		select {
		case sub.out <- event:
		default:
			dropped := t.dropped.Add(1)
			// 每丢弃 100 个事件警告一次
			if dropped%100 == 1 {
				logger.Warn("慢消费者检测", "dropped", dropped, "type", t.typ.String())
			}
		}
	}
}

func pointerElem(eventType any) (reflect.Type, error) {
	if eventType == nil {
		return nil, ErrInvalidEventType
	}
	typ := reflect.TypeOf(eventType)
	if typ.Kind() != reflect.Pointer {
		return nil, ErrNonPointerType
	}
	return typ.Elem(), nil
}

func eventTypes(eventType any) ([]reflect.Type, error) {
	list, ok := eventType.([]any)
	if !ok {
		typ, err := pointerElem(eventType)
		if err != nil {
			return nil, err
		}
		return []reflect.Type{typ}, nil
	}
	if len(list) == 0 {
		return nil, ErrInvalidEventType
	}
	typs := make([]reflect.Type, 0, len(list))
	for _, et := range list {
		typ, err := pointerElem(et)
		if err != nil {
			return nil, err
		}
		typs = append(typs, typ)
	}
	return typs, nil
}
