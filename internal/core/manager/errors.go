package manager

import (
	"github.com/dep2p/go-smartnode/pkg/types"
)

var (
	// ErrNodeExists 节点 ID 已存在
	ErrNodeExists = types.NewError(types.ErrInvalidArgument, "node already exists")

	// ErrNodeNotFound 节点不存在
	ErrNodeNotFound = types.NewError(types.ErrNotFound, "node not found")

	// ErrManagerClosed 管理器已关闭
	ErrManagerClosed = types.NewError(types.ErrInternal, "manager closed")
)
