package types

// ============================================================================
//                              ConnState - 传输连接状态
// ============================================================================

// ConnState Transport 连接状态
type ConnState int

const (
	// ConnUnconnected 未连接（已创建或已初始化）
	ConnUnconnected ConnState = iota
	// ConnConnecting 连接中
	ConnConnecting
	// ConnConnected 已连接
	ConnConnected
	// ConnDisconnected 已断开（终态）
	ConnDisconnected
)

// String 返回连接状态的字符串表示
func (s ConnState) String() string {
	switch s {
	case ConnUnconnected:
		return "unconnected"
	case ConnConnecting:
		return "connecting"
	case ConnConnected:
		return "connected"
	case ConnDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              PeerState - 对端状态
// ============================================================================

// PeerState 对端状态
//
// 状态机：Known → Connecting → Connected → Disconnected，
// Disconnected 可以重新进入 Connecting。Known 是唯一的初始状态，没有终态。
type PeerState int

const (
	// PeerKnown 已知但从未连接
	PeerKnown PeerState = iota
	// PeerConnecting 连接中
	PeerConnecting
	// PeerConnected 已连接
	PeerConnected
	// PeerDisconnected 已断开
	PeerDisconnected
)

// String 返回对端状态的字符串表示
func (s PeerState) String() string {
	switch s {
	case PeerKnown:
		return "known"
	case PeerConnecting:
		return "connecting"
	case PeerConnected:
		return "connected"
	case PeerDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// CanConnect 是否允许从当前状态发起连接
func (s PeerState) CanConnect() bool {
	return s == PeerKnown || s == PeerDisconnected
}

// CanDisconnect 是否允许从当前状态断开
func (s PeerState) CanDisconnect() bool {
	return s == PeerConnected || s == PeerConnecting
}

// ============================================================================
//                              Direction - 连接方向
// ============================================================================

// Direction 连接方向
type Direction int

const (
	// DirUnknown 未知方向
	DirUnknown Direction = iota
	// DirInbound 入站连接（由 Acceptor 产生）
	DirInbound
	// DirOutbound 出站连接（由 Connect 产生）
	DirOutbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}
