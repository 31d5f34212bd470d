package node

import (
	"github.com/dep2p/go-smartnode/pkg/types"
)

// 节点错误定义
var (
	// ErrPeerNotFound 对端不存在
	ErrPeerNotFound = types.NewError(types.ErrNotFound, "node: peer not found")

	// ErrPeerNotConnected 对端未连接
	ErrPeerNotConnected = types.NewError(types.ErrNotFound, "node: peer not connected")

	// ErrInvalidPeerState 对端状态不允许该操作
	ErrInvalidPeerState = types.NewError(types.ErrInvalidArgument, "node: invalid peer state")

	// ErrAlreadyListening 节点已在监听
	ErrAlreadyListening = types.NewError(types.ErrInternal, "node: already listening")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = types.NewError(types.ErrInternal, "node: closed")

	// ErrFrameTooLarge 帧超过上限
	ErrFrameTooLarge = types.NewError(types.ErrInvalidArgument, "node: frame too large")

	// ErrMalformedFrame 帧格式错误
	ErrMalformedFrame = types.NewError(types.ErrInvalidArgument, "node: malformed frame")

	// ErrHandlerPanic 处理器 panic
	ErrHandlerPanic = types.NewError(types.ErrInternal, "node: handler panic")
)
