// Package types 定义 smartnode 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go     - ConnectionID, MessageID, PeerID, NodeID, ProtocolID, MessageType
//   - enums.go   - ConnState, PeerState, Direction
//   - errors.go  - 错误类别（InvalidArgument / NotFound / Internal / Connection）
//   - events.go  - 节点向上层报告的事件
package types
