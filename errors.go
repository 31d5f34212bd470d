package smartnode

import (
	"github.com/dep2p/go-smartnode/pkg/types"
)

// 公共错误定义
var (
	// ErrNotStarted 运行时未启动
	ErrNotStarted = types.NewError(types.ErrInternal, "runtime not started")

	// ErrAlreadyStarted 运行时已启动
	ErrAlreadyStarted = types.NewError(types.ErrInternal, "runtime already started")

	// ErrRuntimeClosed 运行时已关闭
	ErrRuntimeClosed = types.NewError(types.ErrInternal, "runtime closed")
)
