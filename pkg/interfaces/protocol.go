package interfaces

import (
	"context"

	"google.golang.org/protobuf/proto"

	"github.com/dep2p/go-smartnode/pkg/types"
)

// Handler 智能协议消息处理器
//
// 在投递该消息的连接 goroutine 上同步执行，不得无限阻塞。
// 返回的错误只会被上报，不会拆除连接。
type Handler func(ctx context.Context, s Sender, from types.PeerID, msg proto.Message) error

// Sender 处理器可回调的节点能力
type Sender interface {
	// ID 返回节点标识
	ID() types.NodeID

	// SendMessage 向对端发送协议消息
	SendMessage(peer types.PeerID, name string, payload proto.Message) error

	// NewMessage 按消息名创建空消息
	NewMessage(name string) (proto.Message, error)

	// Disconnect 断开对端（协议逻辑决定是否断开行为异常的对端）
	Disconnect(peer types.PeerID) error
}
