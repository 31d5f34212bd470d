package node

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"google.golang.org/protobuf/proto"

	"github.com/dep2p/go-smartnode/internal/core/metrics"
	"github.com/dep2p/go-smartnode/internal/core/protocol"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
	"github.com/dep2p/go-smartnode/pkg/lib/oneshot"
	"github.com/dep2p/go-smartnode/pkg/types"
)

var logger = log.Logger("core/node")

// 确保实现了接口
var _ pkgif.Sender = (*Node)(nil)

// Params 节点依赖
type Params struct {
	// Definition 节点运行的协议（必需）
	Definition *protocol.Definition

	// Transports 按地址构造 Transport / Acceptor（必需）
	Transports pkgif.TransportResolver

	// Bus 事件总线（可选）
	Bus pkgif.EventBus

	// Metrics 节点指标（可选）
	Metrics *metrics.NodeCollectors
}

// Node 智能协议节点
type Node struct {
	cfg        Config
	def        *protocol.Definition
	transports pkgif.TransportResolver
	events     *emitters
	metrics    *metrics.Node

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	peers       map[types.PeerID]*peer
	nextInbound types.PeerID
	acceptor    pkgif.Acceptor
	closed      bool

	msgIDs atomic.Uint32

	// wg 跟踪连接 goroutine 与接受 goroutine
	wg sync.WaitGroup
}

// New 创建节点
func New(cfg Config, p Params) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p.Definition == nil {
		return nil, types.Errorf(types.ErrInvalidArgument, "node %s: no protocol definition", cfg.ID)
	}
	if p.Transports == nil {
		return nil, types.Errorf(types.ErrInvalidArgument, "node %s: no transport resolver", cfg.ID)
	}
	events, err := newEmitters(p.Bus)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Node{
		cfg:         cfg,
		def:         p.Definition,
		transports:  p.Transports,
		events:      events,
		metrics:     p.Metrics.For(string(cfg.ID)),
		ctx:         ctx,
		cancel:      cancel,
		peers:       make(map[types.PeerID]*peer),
		nextInbound: types.InboundPeerIDBase,
	}
	logger.Info("节点已创建", "node", cfg.ID, "protocol", p.Definition.ID())
	return n, nil
}

// ============================================================================
//                              属性
// ============================================================================

// ID 返回节点标识
func (n *Node) ID() types.NodeID {
	return n.cfg.ID
}

// ProtocolID 返回节点运行的协议
func (n *Node) ProtocolID() types.ProtocolID {
	return n.def.ID()
}

// Definition 返回节点运行的协议定义
func (n *Node) Definition() *protocol.Definition {
	return n.def
}

// Address 返回监听地址，未监听时为空
func (n *Node) Address() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.acceptor == nil {
		return ""
	}
	return n.acceptor.Address()
}

// ============================================================================
//                              对端注册表
// ============================================================================

// AddPeer 添加 Known 状态的对端，已存在时为空操作
func (n *Node) AddPeer(id types.PeerID, address string) error {
	if address == "" {
		return types.Errorf(types.ErrInvalidAddress, "node %s: empty address for peer %s", n.cfg.ID, id)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if _, exists := n.peers[id]; exists {
		logger.Debug("对端已存在", "node", n.cfg.ID, "peer", id)
		return nil
	}
	n.peers[id] = &peer{
		id:        id,
		address:   address,
		state:     types.PeerKnown,
		direction: types.DirOutbound,
	}
	logger.Debug("添加对端", "node", n.cfg.ID, "peer", id, "address", address)
	return nil
}

// RemovePeer 删除对端；存在活动连接时先断开
func (n *Node) RemovePeer(id types.PeerID) error {
	n.mu.Lock()
	p, ok := n.peers[id]
	if !ok {
		n.mu.Unlock()
		return types.Errorf(ErrPeerNotFound, "%s", id)
	}
	delete(n.peers, id)
	t := p.conn
	p.conn = nil
	p.state = types.PeerDisconnected
	connected := n.connectedLocked()
	n.mu.Unlock()

	if t != nil {
		t.Disconnect()
	}
	n.metrics.SetConnectedPeers(connected)
	logger.Debug("删除对端", "node", n.cfg.ID, "peer", id)
	return nil
}

// PeerInfo 返回对端信息快照
func (n *Node) PeerInfo(id types.PeerID) (PeerInfo, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	p, ok := n.peers[id]
	if !ok {
		return PeerInfo{}, types.Errorf(ErrPeerNotFound, "%s", id)
	}
	return p.info(), nil
}

// ListKnownPeers 返回所有对端（升序）
func (n *Node) ListKnownPeers() []types.PeerID {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := make([]types.PeerID, 0, len(n.peers))
	for id := range n.peers {
		ids = append(ids, id)
	}
	sortPeerIDs(ids)
	return ids
}

// ListConnectedPeers 返回 Connected 状态的对端（升序）
func (n *Node) ListConnectedPeers() []types.PeerID {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := make([]types.PeerID, 0, len(n.peers))
	for id, p := range n.peers {
		if p.state == types.PeerConnected {
			ids = append(ids, id)
		}
	}
	sortPeerIDs(ids)
	return ids
}

// Peers 返回全部对端信息快照（按 ID 升序）
func (n *Node) Peers() []PeerInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()

	infos := make([]PeerInfo, 0, len(n.peers))
	for _, p := range n.peers {
		infos = append(infos, p.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

func (n *Node) connectedLocked() int {
	count := 0
	for _, p := range n.peers {
		if p.state == types.PeerConnected {
			count++
		}
	}
	return count
}

func sortPeerIDs(ids []types.PeerID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// ============================================================================
//                              连接管理
// ============================================================================

// Connect 向对端发起连接
//
// 要求对端处于 Known 或 Disconnected。Transport 构造或 Init 失败同步返回；
// 连接结果经事件总线以 EvtPeerConnected 或 EvtPeerConnectionError 报告。
func (n *Node) Connect(id types.PeerID) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	p, ok := n.peers[id]
	if !ok {
		return types.Errorf(ErrPeerNotFound, "%s", id)
	}
	if !p.state.CanConnect() {
		return types.Errorf(ErrInvalidPeerState, "peer %s is %s", id, p.state)
	}

	t, err := n.transports.NewTransport(p.address)
	if err != nil {
		return err
	}
	if err := t.Init(); err != nil {
		discard(t)
		return err
	}

	p.conn = t
	p.state = types.PeerConnecting
	p.direction = types.DirOutbound
	n.serveLocked(p, t)

	// Connect 只提交，结果经 t.Events() 异步到达
	t.Connect()
	logger.Debug("发起连接", "node", n.cfg.ID, "peer", id, "conn", t.ID(), "address", p.address)
	return nil
}

// Disconnect 断开对端
//
// 要求对端处于 Connected 或 Connecting。返回时对端已进入 Disconnected，
// 未完成的发送均以失败完成；EvtPeerDisconnected 随后异步发布。
func (n *Node) Disconnect(id types.PeerID) error {
	n.mu.Lock()
	p, ok := n.peers[id]
	if !ok {
		n.mu.Unlock()
		return types.Errorf(ErrPeerNotFound, "%s", id)
	}
	if !p.state.CanDisconnect() || p.conn == nil {
		n.mu.Unlock()
		return types.Errorf(ErrInvalidPeerState, "peer %s is %s", id, p.state)
	}
	t := p.conn
	p.conn = nil
	p.state = types.PeerDisconnected
	connected := n.connectedLocked()
	n.mu.Unlock()

	t.Disconnect()
	n.metrics.SetConnectedPeers(connected)
	logger.Debug("断开连接", "node", n.cfg.ID, "peer", id, "conn", t.ID())
	return nil
}

// Listen 在地址上监听入站连接
func (n *Node) Listen(address string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.acceptor != nil {
		return types.Errorf(ErrAlreadyListening, "%s", n.acceptor.Address())
	}

	a, err := n.transports.NewAcceptor(address)
	if err != nil {
		return err
	}
	if err := a.Listen(); err != nil {
		a.Stop()
		return err
	}
	n.acceptor = a

	n.wg.Add(1)
	go n.acceptLoop(a)

	logger.Info("节点开始监听", "node", n.cfg.ID, "address", a.Address())
	return nil
}

// acceptLoop 接收入站连接，Acceptor 停止后退出
func (n *Node) acceptLoop(a pkgif.Acceptor) {
	defer n.wg.Done()
	for t := range a.Accepted() {
		n.adopt(t)
	}
}

// adopt 为入站连接分配 PeerID 并开始服务
func (n *Node) adopt(t pkgif.Transport) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		t.Disconnect()
		return
	}
	id := n.allocInboundLocked()
	p := &peer{
		id:        id,
		address:   t.Address(),
		state:     types.PeerConnected,
		direction: types.DirInbound,
		conn:      t,
	}
	n.peers[id] = p
	n.serveLocked(p, t)
	connected := n.connectedLocked()
	n.mu.Unlock()

	n.metrics.SetConnectedPeers(connected)
	logger.Debug("接受入站连接", "node", n.cfg.ID, "peer", id, "conn", t.ID(), "address", t.Address())
}

// allocInboundLocked 分配不与现有对端冲突的入站 PeerID
func (n *Node) allocInboundLocked() types.PeerID {
	for {
		id := n.nextInbound
		n.nextInbound++
		if n.nextInbound < types.InboundPeerIDBase {
			n.nextInbound = types.InboundPeerIDBase
		}
		if _, exists := n.peers[id]; !exists {
			return id
		}
	}
}

// ============================================================================
//                              消息
// ============================================================================

// SendMessage 向对端发送协议消息
//
// 对端未知或未连接返回 NotFound 类错误，消息名未知或载荷类型不符返回
// InvalidArgument 类错误；提交成功后结果以 EvtMessageSent 发布。
func (n *Node) SendMessage(id types.PeerID, name string, payload proto.Message) error {
	_, err := n.SendMessageAsync(id, name, payload)
	return err
}

// SendMessageAsync 与 SendMessage 相同，并返回发送结果句柄
//
// 调用方可以用 slot.Wait(ctx) 或 slot.WaitTimeout(d) 做有界等待。
func (n *Node) SendMessageAsync(id types.PeerID, name string, payload proto.Message) (*oneshot.Slot[pkgif.SendResult], error) {
	n.mu.RLock()
	p, ok := n.peers[id]
	if !ok {
		n.mu.RUnlock()
		return nil, types.Errorf(ErrPeerNotFound, "%s", id)
	}
	if p.state != types.PeerConnected || p.conn == nil {
		state := p.state
		n.mu.RUnlock()
		return nil, types.Errorf(ErrPeerNotConnected, "peer %s is %s", id, state)
	}
	t := p.conn
	n.mu.RUnlock()

	typ, data, err := n.def.Marshal(name, payload)
	if err != nil {
		return nil, err
	}
	// 与接收端一致：帧体为类型字节加载荷
	if body := 1 + len(data); body > n.cfg.MaxFrameSize {
		return nil, types.Errorf(ErrFrameTooLarge, "%s: %d bytes exceeds %d", name, body, n.cfg.MaxFrameSize)
	}
	frame := EncodeFrame(typ, data)

	msgID := types.MessageID(n.msgIDs.Add(1))
	slot := t.AsyncSend(frame, msgID)
	logger.Debug("提交消息", "node", n.cfg.ID, "peer", id, "message", name, "msgID", msgID, "bytes", len(frame))
	return slot, nil
}

// FindMessageID 按消息名查找 message_type
func (n *Node) FindMessageID(name string) (types.MessageType, error) {
	return n.def.FindMessageType(name)
}

// CreateMessageByID 按 message_type 创建空消息
func (n *Node) CreateMessageByID(typ types.MessageType) (proto.Message, error) {
	return n.def.NewMessageByType(typ)
}

// NewMessage 按消息名创建空消息
func (n *Node) NewMessage(name string) (proto.Message, error) {
	return n.def.NewMessage(name)
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 停止监听、断开所有对端并等待连接 goroutine 退出，幂等
//
// 不得在处理器中调用。
func (n *Node) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	acceptor := n.acceptor
	var conns []pkgif.Transport
	for _, p := range n.peers {
		if p.conn != nil {
			conns = append(conns, p.conn)
			p.conn = nil
			p.state = types.PeerDisconnected
		}
	}
	n.mu.Unlock()

	if acceptor != nil {
		acceptor.Stop()
	}
	for _, t := range conns {
		t.Disconnect()
	}
	n.cancel()
	n.wg.Wait()

	n.metrics.Release()
	err := n.events.close()
	logger.Info("节点已关闭", "node", n.cfg.ID)
	return err
}
