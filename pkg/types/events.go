package types

// ============================================================================
//                              节点事件
// ============================================================================
//
// 节点通过事件总线向上层报告异步结果。同步前置条件错误直接由方法返回，
// 不会再产生事件。

// EvtPeerConnected 对端连接建立
type EvtPeerConnected struct {
	Node      NodeID
	Peer      PeerID
	Conn      ConnectionID
	Address   string
	Direction Direction
}

// EvtPeerDisconnected 对端连接断开
type EvtPeerDisconnected struct {
	Node NodeID
	Peer PeerID
	Conn ConnectionID
}

// EvtPeerConnectionError 连接失败（拨号失败、重置、模拟丢包分区等）
type EvtPeerConnectionError struct {
	Node NodeID
	Peer PeerID
	Conn ConnectionID
	Err  error
}

// EvtMessageSent 发送完成（Err 非空表示失败）
type EvtMessageSent struct {
	Node  NodeID
	Peer  PeerID
	MsgID MessageID
	Err   error
}

// EvtMessageDecodeError 入站字节无法解码
type EvtMessageDecodeError struct {
	Node NodeID
	Peer PeerID
	Err  error
}

// EvtHandlerError 消息处理器返回错误或 panic
type EvtHandlerError struct {
	Node    NodeID
	Peer    PeerID
	Message string
	Err     error
}
