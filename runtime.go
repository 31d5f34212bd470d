package smartnode

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-smartnode/config"
	"github.com/dep2p/go-smartnode/internal/core/manager"
	"github.com/dep2p/go-smartnode/internal/core/node"
	"github.com/dep2p/go-smartnode/internal/core/protocol"
	"github.com/dep2p/go-smartnode/internal/core/simulator"
	"github.com/dep2p/go-smartnode/internal/core/transport"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
	"github.com/dep2p/go-smartnode/pkg/types"
)

var logger = log.Logger("smartnode")

const (
	// startTimeout 启动超时（预加载协议、创建配置节点）
	startTimeout = 30 * time.Second

	// stopTimeout Close 使用的停止超时
	stopTimeout = 10 * time.Second
)

// Runtime 智能协议节点运行时
type Runtime struct {
	app    *fx.App
	config *config.Config

	sim        *simulator.Simulator
	transports *transport.Registry
	protocols  *protocol.Registry
	manager    *manager.Manager
	bus        pkgif.EventBus

	mu      sync.Mutex
	started bool
	closed  bool
}

// New 按选项构造运行时（尚未启动）
func New(opts ...Option) (*Runtime, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	modules, err := buildModules(o)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{config: o.config}
	modules = append(modules, fx.Populate(
		&rt.sim,
		&rt.transports,
		&rt.protocols,
		&rt.manager,
		&rt.bus,
	))

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build runtime: %w", err)
	}
	rt.app = app
	return rt, nil
}

// Start 启动运行时
//
// 依次预加载协议、按配置启动模拟器并创建配置中的节点。
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	if r.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := r.app.Start(startCtx); err != nil {
		logger.Error("运行时启动失败", "err", err)
		return fmt.Errorf("start runtime: %w", err)
	}

	r.started = true
	logger.Info("运行时已启动",
		"protocols", r.protocols.List(),
		"nodes", r.manager.Len(),
		"simulating", r.sim.Running())
	return nil
}

// Stop 停止运行时：关闭全部节点并停止模拟器
func (r *Runtime) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}
	if !r.started {
		return ErrNotStarted
	}
	return r.stopLocked(ctx)
}

func (r *Runtime) stopLocked(ctx context.Context) error {
	r.started = false
	if err := r.app.Stop(ctx); err != nil {
		logger.Error("运行时停止失败", "err", err)
		return fmt.Errorf("stop runtime: %w", err)
	}
	logger.Info("运行时已停止")
	return nil
}

// Close 停止运行时并释放资源，幂等
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if !r.started {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return r.stopLocked(ctx)
}

// ============================================================================
//                              组件访问
// ============================================================================

// Config 返回运行时使用的配置
func (r *Runtime) Config() *config.Config { return r.config }

// Simulator 返回模拟器
func (r *Runtime) Simulator() *simulator.Simulator { return r.sim }

// Transports 返回传输注册表
func (r *Runtime) Transports() *transport.Registry { return r.transports }

// Protocols 返回协议注册表
func (r *Runtime) Protocols() *protocol.Registry { return r.protocols }

// Manager 返回节点管理器
func (r *Runtime) Manager() *manager.Manager { return r.manager }

// EventBus 返回节点事件总线
func (r *Runtime) EventBus() pkgif.EventBus { return r.bus }

// ============================================================================
//                              节点
// ============================================================================

// LaunchNode 创建节点，见 manager.Manager.LaunchNode
func (r *Runtime) LaunchNode(id types.NodeID, proto types.ProtocolID, listenAddr string) (*node.Node, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrRuntimeClosed
	}
	return r.manager.LaunchNode(id, proto, listenAddr)
}

// Node 按 ID 查询节点
func (r *Runtime) Node(id types.NodeID) (*node.Node, error) {
	return r.manager.GetNode(id)
}

// RemoveNode 关闭并移除节点
func (r *Runtime) RemoveNode(id types.NodeID) error {
	return r.manager.RemoveNode(id)
}

// Supported 返回已加载协议的消息定义（协议 -> 消息名 -> JSON 描述）
func (r *Runtime) Supported() map[types.ProtocolID]map[string]string {
	return r.protocols.Supported()
}
