package interfaces

// EventBus 类型安全的事件发布订阅
//
// 事件类型以指针形式传入，例如 Subscribe(new(types.EvtPeerConnected))。
type EventBus interface {
	// Subscribe 订阅一个或多个事件类型
	Subscribe(eventType any, opts ...SubscriptionOpt) (Subscription, error)

	// Emitter 获取指定事件类型的发射器
	Emitter(eventType any, opts ...EmitterOpt) (Emitter, error)

	// Close 关闭总线及其全部订阅
	Close() error
}

// Subscription 事件订阅
type Subscription interface {
	// Out 返回事件通道（Close 后关闭）
	Out() <-chan any

	// Close 取消订阅
	Close() error
}

// Emitter 事件发射器
type Emitter interface {
	// Emit 发射事件；订阅者缓冲满时丢弃并记录
	Emit(event any) error

	// Close 关闭发射器
	Close() error
}

// SubscriptionOpt 订阅选项
type SubscriptionOpt func(*SubscriptionSettings)

// EmitterOpt 发射器选项
type EmitterOpt func(*EmitterSettings)

// SubscriptionSettings 订阅设置
type SubscriptionSettings struct {
	Buffer int
}

// EmitterSettings 发射器设置
type EmitterSettings struct {
	Stateful bool
}

// BufSize 设置订阅缓冲区大小
func BufSize(size int) SubscriptionOpt {
	return func(s *SubscriptionSettings) {
		s.Buffer = size
	}
}

// Stateful 发射器保留最后一个事件，新订阅者立即收到
func Stateful() EmitterOpt {
	return func(s *EmitterSettings) {
		s.Stateful = true
	}
}
