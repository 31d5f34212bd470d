package manager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dep2p/go-smartnode/config"
	"github.com/dep2p/go-smartnode/internal/core/metrics"
	"github.com/dep2p/go-smartnode/internal/core/node"
	"github.com/dep2p/go-smartnode/internal/core/protocol"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
	"github.com/dep2p/go-smartnode/pkg/types"
)

var logger = log.Logger("core/manager")

// Params 管理器依赖
type Params struct {
	// Registry 协议注册表（必需）
	Registry *protocol.Registry

	// Transports 按地址构造传输（必需）
	Transports pkgif.TransportResolver

	// Bus 节点事件总线（可选）
	Bus pkgif.EventBus

	// Metrics 节点指标（可选）
	Metrics *metrics.NodeCollectors
}

// Summary 节点概要（ListNodes 的一行）
type Summary struct {
	ID        types.NodeID
	Protocol  types.ProtocolID
	Address   string
	Peers     int
	Connected int
}

// Manager 节点目录
type Manager struct {
	cfg Config
	p   Params

	mu     sync.Mutex
	nodes  map[types.NodeID]*node.Node
	closed bool
}

// New 创建管理器
func New(cfg Config, p Params) (*Manager, error) {
	if p.Registry == nil {
		return nil, types.NewError(types.ErrInvalidArgument, "manager: no protocol registry")
	}
	if p.Transports == nil {
		return nil, types.NewError(types.ErrInvalidArgument, "manager: no transport resolver")
	}
	return &Manager{
		cfg:   cfg,
		p:     p,
		nodes: make(map[types.NodeID]*node.Node),
	}, nil
}

// LaunchNode 创建并登记节点
//
// 协议未加载时先从注册表的来源加载；listenAddr 非空时开始监听，
// 监听失败则关闭节点并返回错误。id 为空时分配 UUID。
func (m *Manager) LaunchNode(id types.NodeID, proto types.ProtocolID, listenAddr string) (*node.Node, error) {
	if id == "" {
		id = types.NodeID(uuid.NewString())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrManagerClosed
	}
	if _, ok := m.nodes[id]; ok {
		return nil, types.Errorf(ErrNodeExists, "%s", id)
	}

	if err := m.p.Registry.Load(proto); err != nil {
		return nil, err
	}
	def, err := m.p.Registry.Get(proto)
	if err != nil {
		return nil, err
	}

	n, err := node.New(m.cfg.Node.WithID(id), node.Params{
		Definition: def,
		Transports: m.p.Transports,
		Bus:        m.p.Bus,
		Metrics:    m.p.Metrics,
	})
	if err != nil {
		return nil, err
	}
	if listenAddr != "" {
		if err := n.Listen(listenAddr); err != nil {
			return nil, multierr.Append(err, n.Close())
		}
	}

	m.nodes[id] = n
	logger.Info("节点已启动", "node", id, "protocol", proto, "listen", n.Address())
	return n, nil
}

// LaunchSpec 按配置项创建节点，登记对端并连接标记为 connect 的对端
//
// 对端登记或连接失败时移除已创建的节点。
func (m *Manager) LaunchSpec(spec config.NodeSpec) (*node.Node, error) {
	n, err := m.LaunchNode(types.NodeID(spec.ID), types.ProtocolID(spec.Protocol), spec.Listen)
	if err != nil {
		return nil, err
	}
	for _, p := range spec.Peers {
		peer := types.PeerID(p.ID)
		err := n.AddPeer(peer, p.Address)
		if err == nil && p.Connect {
			err = n.Connect(peer)
		}
		if err != nil {
			err = fmt.Errorf("node %s peer %d: %w", n.ID(), p.ID, err)
			return nil, multierr.Append(err, m.RemoveNode(n.ID()))
		}
	}
	return n, nil
}

// GetNode 按 ID 查询节点
func (m *Manager) GetNode(id types.NodeID) (*node.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[id]
	if !ok {
		return nil, types.Errorf(ErrNodeNotFound, "%s", id)
	}
	return n, nil
}

// ListNodes 返回全部节点概要（按 ID 升序）
func (m *Manager) ListNodes() []Summary {
	m.mu.Lock()
	nodes := make([]*node.Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		nodes = append(nodes, n)
	}
	m.mu.Unlock()

	out := make([]Summary, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Summary{
			ID:        n.ID(),
			Protocol:  n.ProtocolID(),
			Address:   n.Address(),
			Peers:     len(n.ListKnownPeers()),
			Connected: len(n.ListConnectedPeers()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemoveNode 关闭并移除节点
func (m *Manager) RemoveNode(id types.NodeID) error {
	m.mu.Lock()
	n, ok := m.nodes[id]
	delete(m.nodes, id)
	m.mu.Unlock()

	if !ok {
		return types.Errorf(ErrNodeNotFound, "%s", id)
	}
	err := n.Close()
	logger.Info("节点已移除", "node", id)
	return err
}

// Len 返回节点数
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes)
}

// Close 关闭全部节点，幂等
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	nodes := m.nodes
	m.nodes = make(map[types.NodeID]*node.Node)
	m.mu.Unlock()

	var err error
	for _, n := range nodes {
		err = multierr.Append(err, n.Close())
	}
	return err
}
