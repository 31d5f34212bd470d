package tcp

import (
	"github.com/dep2p/go-smartnode/pkg/types"
)

var (
	// ErrNotInitialized Connect 之前未调用 Init
	ErrNotInitialized = types.NewError(types.ErrInternal, "tcp transport not initialized")

	// ErrInvalidRead 读取缓冲区参数越界
	ErrInvalidRead = types.NewError(types.ErrInvalidArgument, "read buffer out of range")

	// ErrWrongKind 地址不是 tcp 类型
	ErrWrongKind = types.NewError(types.ErrInvalidArgument, "address is not a tcp address")

	// ErrAlreadyListening 重复监听
	ErrAlreadyListening = types.NewError(types.ErrInternal, "acceptor already listening")
)
