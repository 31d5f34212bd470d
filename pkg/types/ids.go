package types

import (
	"strconv"
)

// ============================================================================
//                              ConnectionID - 连接标识
// ============================================================================

// ConnectionID 传输连接标识
//
// 在 Transport 创建时分配，进程内唯一，在 Transport 生命周期内保持不变，
// 用于关联同一连接上的所有完成事件。
type ConnectionID uint64

// String 返回十进制表示
func (id ConnectionID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ============================================================================
//                              MessageID - 关联令牌
// ============================================================================

// MessageID 异步操作的关联令牌
//
// 由调用方在 AsyncSend / AsyncRead 时提供，随完成事件原样返回。
// 只要求在同一 Transport 的未完成操作范围内唯一。
// 注意：它与协议消息类型（MessageType）无关。
type MessageID uint32

// ============================================================================
//                              PeerID - 对端标识
// ============================================================================

// PeerID 节点本地分配的对端标识
type PeerID uint32

// String 返回十进制表示
func (id PeerID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// InboundPeerIDBase 入站连接自动分配 PeerID 的起始值
//
// 调用方通过 AddPeer 指定的 ID 通常较小，入站对端从高位区间分配，避免冲突。
const InboundPeerIDBase PeerID = 1 << 31

// ============================================================================
//                              NodeID / ProtocolID
// ============================================================================

// NodeID 节点标识（由操作者指定）
type NodeID string

// String 返回字符串表示
func (id NodeID) String() string {
	return string(id)
}

// ProtocolID 智能协议标识
type ProtocolID string

// String 返回字符串表示
func (id ProtocolID) String() string {
	return string(id)
}

// ============================================================================
//                              MessageType - 协议消息类型
// ============================================================================

// MessageType 协议消息类型编号
//
// 线上格式中固定占 1 字节，按协议清单中消息的声明顺序从 0 开始分配。
type MessageType uint8

// MaxMessageTypes 单个协议允许定义的最大消息数
const MaxMessageTypes = 256
