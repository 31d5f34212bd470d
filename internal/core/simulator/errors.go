package simulator

import (
	"github.com/dep2p/go-smartnode/pkg/types"
)

var (
	// ErrSimulatedLoss 投递按丢包率被丢弃
	ErrSimulatedLoss = types.NewError(types.ErrConnection, "simulated loss")

	// ErrPartitioned 链路被分区
	ErrPartitioned = types.NewError(types.ErrConnection, "simulated partition")

	// ErrSimulatorStopped 模拟器已停止
	ErrSimulatorStopped = types.NewError(types.ErrConnection, "simulator stopped")

	// ErrAddressInUse 端点名已被监听
	ErrAddressInUse = types.NewError(types.ErrConnection, "simulated address in use")

	// ErrInvalidLinkParams 链路参数无效
	ErrInvalidLinkParams = types.NewError(types.ErrInvalidArgument, "invalid link parameters")

	// ErrTransportNotFound 模拟器中不存在该连接
	ErrTransportNotFound = types.NewError(types.ErrNotFound, "simulated transport not found")

	// ErrAlreadyLinked 端点已经属于一条链路
	ErrAlreadyLinked = types.NewError(types.ErrInvalidArgument, "transport already linked")

	// ErrWrongKind 地址不是 sim 类型
	ErrWrongKind = types.NewError(types.ErrInvalidArgument, "address is not a sim address")

	// ErrNotInitialized Connect 之前未调用 Init
	ErrNotInitialized = types.NewError(types.ErrInternal, "sim transport not initialized")

	// ErrInvalidRead 读取缓冲区参数越界
	ErrInvalidRead = types.NewError(types.ErrInvalidArgument, "read buffer out of range")

	// ErrAlreadyListening 重复监听
	ErrAlreadyListening = types.NewError(types.ErrInternal, "acceptor already listening")

	// ErrAlreadyRunning 时钟驱动已启动
	ErrAlreadyRunning = types.NewError(types.ErrInternal, "simulator already running")

	// ErrInvalidTick tick 必须为正
	ErrInvalidTick = types.NewError(types.ErrInvalidArgument, "tick interval must be positive")
)
