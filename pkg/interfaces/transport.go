package interfaces

import (
	"github.com/dep2p/go-smartnode/pkg/lib/oneshot"
	"github.com/dep2p/go-smartnode/pkg/types"
)

// ============================================================================
//                              Transport - 单条双向字节流
// ============================================================================

// Transport 定义一条双向字节流连接
//
// 真实（TCP）与模拟两种实现对协议层表现一致。
//
// 完成语义：
//   - Connect / AsyncSend / AsyncRead 只负责提交，从不同步返回错误
//   - 每个异步操作的结果恰好交付一次：写入返回的句柄，并作为事件出现在 Events()
//   - 调用 Connect 或 Disconnect 之后，事件流以恰好一个 DisconnectedEvent 结束并关闭
//   - Disconnect 在返回前同步排空：所有未完成的发送、读取按提交顺序以
//     types.ErrConnectionClosed 完成，然后发出 DisconnectedEvent
//   - 同一 Transport 上发送完成的顺序与提交顺序一致
//   - 传输内部不做重试，重试策略由拥有者决定
type Transport interface {
	// ID 返回连接标识（创建时分配，生命周期内不变）
	ID() types.ConnectionID

	// Kind 返回传输类型（"tcp" / "sim"）
	Kind() string

	// Address 返回对端地址
	Address() string

	// Direction 返回连接方向
	Direction() types.Direction

	// State 返回当前连接状态
	State() types.ConnState

	// Init 针对配置的地址做准备，必须在 Connect 之前调用且只能调用一次
	//
	// 地址格式错误返回 ErrInvalidArgument 类错误，重复调用返回 ErrInternal 类错误。
	Init() error

	// Connect 开始建立连接
	//
	// 结果为 ConnectedEvent，或 ConnectionErrorEvent 后跟 DisconnectedEvent。
	Connect()

	// Disconnect 释放底层资源，幂等
	Disconnect()

	// AsyncSend 提交待发送的字节
	AsyncSend(data []byte, msgID types.MessageID) *oneshot.Slot[SendResult]

	// AsyncRead 挂起一次读取，读到的字节写入 buf[offset:offset+maxSize]
	//
	// 读取在有可用字节（1..maxSize）时完成；完成后不会自动重新挂起。
	// 可以同时挂起多个读取，按挂起顺序依次满足。
	AsyncRead(buf []byte, offset, maxSize int, msgID types.MessageID) *oneshot.Slot[ReadResult]

	// Events 返回事件流（与 Transport 生命周期绑定）
	Events() <-chan Event
}

// SendResult 发送完成结果
type SendResult struct {
	MsgID     types.MessageID
	BytesSent int
}

// ReadResult 读取完成结果
type ReadResult struct {
	MsgID     types.MessageID
	Buffer    []byte
	Offset    int
	BytesRead int
}

// Data 返回本次读到的字节
func (r ReadResult) Data() []byte {
	return r.Buffer[r.Offset : r.Offset+r.BytesRead]
}

// ============================================================================
//                              传输事件
// ============================================================================

// Event 传输事件
type Event interface {
	// ConnID 返回产生事件的连接
	ConnID() types.ConnectionID
}

// ConnectedEvent 连接建立
type ConnectedEvent struct {
	Conn types.ConnectionID
}

// ConnectionErrorEvent 连接失败（不可达、重置、模拟丢失、模拟分区）
type ConnectionErrorEvent struct {
	Conn types.ConnectionID
	Err  error
}

// DisconnectedEvent 连接断开（每个 Transport 至多一次）
type DisconnectedEvent struct {
	Conn types.ConnectionID
}

// MessageSentEvent 发送完成
type MessageSentEvent struct {
	Conn      types.ConnectionID
	MsgID     types.MessageID
	BytesSent int
	Err       error
}

// MessageReceivedEvent 读取完成
type MessageReceivedEvent struct {
	Conn      types.ConnectionID
	MsgID     types.MessageID
	Buffer    []byte
	Offset    int
	BytesRead int
	Err       error
}

// Data 返回本次读到的字节
func (e MessageReceivedEvent) Data() []byte {
	if e.Err != nil {
		return nil
	}
	return e.Buffer[e.Offset : e.Offset+e.BytesRead]
}

func (e ConnectedEvent) ConnID() types.ConnectionID       { return e.Conn }
func (e ConnectionErrorEvent) ConnID() types.ConnectionID { return e.Conn }
func (e DisconnectedEvent) ConnID() types.ConnectionID    { return e.Conn }
func (e MessageSentEvent) ConnID() types.ConnectionID     { return e.Conn }
func (e MessageReceivedEvent) ConnID() types.ConnectionID { return e.Conn }

// ============================================================================
//                              Acceptor - 监听器
// ============================================================================

// Acceptor 监听地址并产生入站 Transport
//
// 入站 Transport 与 Acceptor 同类，交付时已处于 Connected 状态且不会
// 再发出 ConnectedEvent；每个入站连接恰好交付一次，先于该连接上的任何数据事件。
type Acceptor interface {
	// Address 返回监听地址（TCP 端口 0 时为实际绑定端口）
	Address() string

	// Listen 绑定并开始接受连接
	Listen() error

	// Listening 是否正在监听
	Listening() bool

	// Accepted 返回入站连接流，Stop 之后关闭
	Accepted() <-chan Transport

	// Stop 停止监听，幂等；返回后不再交付新的连接
	Stop()
}

// ============================================================================
//                              TransportFactory - 传输工厂
// ============================================================================

// TransportResolver 根据地址构造 Transport 与 Acceptor
type TransportResolver interface {
	// NewTransport 为出站连接构造 Transport（构造失败返回 ErrInternal 类错误）
	NewTransport(address string) (Transport, error)

	// NewAcceptor 构造 Acceptor
	NewAcceptor(address string) (Acceptor, error)
}

// TransportFactory 单一传输类型的工厂
type TransportFactory interface {
	TransportResolver

	// Kind 返回支持的地址类型（地址 "kind://..." 中的 kind）
	Kind() string
}
