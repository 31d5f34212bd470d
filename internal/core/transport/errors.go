package transport

import (
	"github.com/dep2p/go-smartnode/pkg/types"
)

var (
	// ErrUnsupportedKind 没有对应地址类型的传输工厂
	ErrUnsupportedKind = types.NewError(types.ErrInvalidArgument, "unsupported transport kind")

	// ErrDuplicateFactory 同一 kind 重复注册
	ErrDuplicateFactory = types.NewError(types.ErrInvalidArgument, "transport factory already registered")
)
