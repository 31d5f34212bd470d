package protocol

import (
	"github.com/dep2p/go-smartnode/pkg/types"
)

// 协议模块错误定义
var (
	// ErrProtocolNotLoaded 协议未加载
	ErrProtocolNotLoaded = types.NewError(types.ErrNotFound, "protocol: protocol not loaded")

	// ErrProtocolNotFound 定义源中没有该协议
	ErrProtocolNotFound = types.NewError(types.ErrNotFound, "protocol: protocol definition not found")

	// ErrInvalidProtocolID 无效的协议 ID
	ErrInvalidProtocolID = types.NewError(types.ErrInvalidArgument, "protocol: invalid protocol ID")

	// ErrMalformedDefinition 协议定义格式错误
	ErrMalformedDefinition = types.NewError(types.ErrInvalidArgument, "protocol: malformed definition")

	// ErrUnknownMessage 消息名不在协议中（构造或编码消息时）
	ErrUnknownMessage = types.NewError(types.ErrInvalidArgument, "protocol: unknown message")

	// ErrMessageNotFound 按名称查找消息类型失败
	ErrMessageNotFound = types.NewError(types.ErrNotFound, "protocol: message not found")

	// ErrPayloadMismatch 载荷类型与消息名不符
	ErrPayloadMismatch = types.NewError(types.ErrInvalidArgument, "protocol: payload type mismatch")

	// ErrUnknownMessageType 消息类型不存在
	ErrUnknownMessageType = types.NewError(types.ErrNotFound, "protocol: unknown message type")

	// ErrDuplicateHandler 处理器已注册
	ErrDuplicateHandler = types.NewError(types.ErrInvalidArgument, "protocol: handler already registered")

	// ErrNilHandler 处理器为空
	ErrNilHandler = types.NewError(types.ErrInvalidArgument, "protocol: nil handler")
)

// malformed 创建协议定义格式错误
func malformed(id types.ProtocolID, format string, args ...any) error {
	return types.Errorf(ErrMalformedDefinition, "%s: "+format, append([]any{id}, args...)...)
}
