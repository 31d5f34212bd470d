package node

import (
	"errors"
	"runtime/debug"

	"google.golang.org/protobuf/proto"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/types"
)

// connReader 单个连接的读取状态（只在该连接的 goroutine 上访问）
type connReader struct {
	buf     []byte
	decoder *frameDecoder
}

// serveLocked 为 t 启动事件 goroutine（调用方持有 n.mu）
func (n *Node) serveLocked(p *peer, t pkgif.Transport) {
	n.wg.Add(1)
	go n.serve(p, t, p.direction == types.DirInbound)
}

// serve 按顺序消费 t 的事件，直到事件流关闭
//
// 入站连接交付时已是 Connected，不会再有 ConnectedEvent。
func (n *Node) serve(p *peer, t pkgif.Transport, accepted bool) {
	defer n.wg.Done()

	r := &connReader{
		buf:     make([]byte, n.cfg.ReadBufferSize),
		decoder: newFrameDecoder(n.cfg.MaxFrameSize),
	}
	if accepted {
		n.onConnected(p, t, r)
	}

	for evt := range t.Events() {
		switch e := evt.(type) {
		case pkgif.ConnectedEvent:
			n.onConnected(p, t, r)
		case pkgif.ConnectionErrorEvent:
			n.onConnectionError(p, t, e.Err)
		case pkgif.DisconnectedEvent:
			n.onDisconnected(p, t)
		case pkgif.MessageSentEvent:
			n.onMessageSent(p, e)
		case pkgif.MessageReceivedEvent:
			n.onMessageReceived(p, t, r, e)
		default:
			logger.Warn("未知传输事件", "node", n.cfg.ID, "conn", t.ID(), "type", evt)
		}
	}
}

func (n *Node) onConnected(p *peer, t pkgif.Transport, r *connReader) {
	n.mu.Lock()
	if !p.owns(t) {
		// 连接建立前已被断开或删除
		n.mu.Unlock()
		return
	}
	p.state = types.PeerConnected
	evt := types.EvtPeerConnected{
		Node:      n.cfg.ID,
		Peer:      p.id,
		Conn:      t.ID(),
		Address:   p.address,
		Direction: p.direction,
	}
	connected := n.connectedLocked()
	n.mu.Unlock()

	n.metrics.SetConnectedPeers(connected)
	logger.Info("对端已连接", "node", n.cfg.ID, "peer", p.id, "conn", t.ID(), "direction", evt.Direction)
	emit(n.events.connected, evt)
	n.armRead(t, r)
}

func (n *Node) onConnectionError(p *peer, t pkgif.Transport, err error) {
	n.mu.Lock()
	if p.owns(t) {
		p.conn = nil
		p.state = types.PeerDisconnected
	}
	connected := n.connectedLocked()
	n.mu.Unlock()

	n.metrics.SetConnectedPeers(connected)
	logger.Warn("连接错误", "node", n.cfg.ID, "peer", p.id, "conn", t.ID(), "err", err)
	emit(n.events.connErr, types.EvtPeerConnectionError{
		Node: n.cfg.ID,
		Peer: p.id,
		Conn: t.ID(),
		Err:  err,
	})
}

func (n *Node) onDisconnected(p *peer, t pkgif.Transport) {
	n.mu.Lock()
	if p.owns(t) {
		p.conn = nil
		p.state = types.PeerDisconnected
	}
	connected := n.connectedLocked()
	n.mu.Unlock()

	n.metrics.SetConnectedPeers(connected)
	logger.Debug("对端已断开", "node", n.cfg.ID, "peer", p.id, "conn", t.ID())
	emit(n.events.disconnected, types.EvtPeerDisconnected{
		Node: n.cfg.ID,
		Peer: p.id,
		Conn: t.ID(),
	})
}

func (n *Node) onMessageSent(p *peer, e pkgif.MessageSentEvent) {
	if e.Err != nil {
		n.metrics.SendFailed()
		logger.Debug("发送失败", "node", n.cfg.ID, "peer", p.id, "msgID", e.MsgID, "err", e.Err)
	} else {
		n.metrics.MessageSent(e.BytesSent)
	}
	emit(n.events.sent, types.EvtMessageSent{
		Node:  n.cfg.ID,
		Peer:  p.id,
		MsgID: e.MsgID,
		Err:   e.Err,
	})
}

func (n *Node) onMessageReceived(p *peer, t pkgif.Transport, r *connReader, e pkgif.MessageReceivedEvent) {
	if e.Err != nil {
		// 断开时挂起的读取以 ErrConnectionClosed 完成
		if !errors.Is(e.Err, types.ErrConnectionClosed) {
			logger.Debug("读取失败", "node", n.cfg.ID, "peer", p.id, "conn", t.ID(), "err", e.Err)
		}
		return
	}

	n.metrics.BytesReceived(e.BytesRead)
	frames, errs := r.decoder.feed(e.Data())
	for _, err := range errs {
		n.reportDecodeError(p, err)
	}
	for _, f := range frames {
		n.dispatch(p, f)
	}

	n.mu.RLock()
	live := p.owns(t) && p.state == types.PeerConnected
	n.mu.RUnlock()
	if live {
		n.armRead(t, r)
	}
}

// armRead 挂起下一次读取
func (n *Node) armRead(t pkgif.Transport, r *connReader) {
	t.AsyncRead(r.buf, 0, len(r.buf), types.MessageID(n.msgIDs.Add(1)))
}

// dispatch 解码一帧并调用绑定的处理器
func (n *Node) dispatch(p *peer, f frame) {
	name, msg, err := n.def.Unmarshal(f.typ, f.payload)
	if err != nil {
		n.reportDecodeError(p, err)
		return
	}
	n.metrics.MessageReceived()

	h, ok := n.def.Handler(name)
	if !ok {
		logger.Debug("消息无处理器，丢弃", "node", n.cfg.ID, "peer", p.id, "message", name)
		return
	}
	if err := n.invoke(h, p.id, name, msg); err != nil {
		n.metrics.HandlerError()
		logger.Warn("处理器失败", "node", n.cfg.ID, "peer", p.id, "message", name, "err", err)
		emit(n.events.handlerErr, types.EvtHandlerError{
			Node:    n.cfg.ID,
			Peer:    p.id,
			Message: name,
			Err:     err,
		})
	}
}

// invoke 调用处理器并把 panic 转换为错误
func (n *Node) invoke(h pkgif.Handler, from types.PeerID, name string, msg proto.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("处理器 panic", "node", n.cfg.ID, "message", name, "panic", r, "stack", string(debug.Stack()))
			err = types.Errorf(ErrHandlerPanic, "%s: %v", name, r)
		}
	}()
	return h(n.ctx, n, from, msg)
}

func (n *Node) reportDecodeError(p *peer, err error) {
	n.metrics.DecodeError()
	logger.Warn("入站消息解码失败", "node", n.cfg.ID, "peer", p.id, "err", err)
	emit(n.events.decodeErr, types.EvtMessageDecodeError{
		Node: n.cfg.ID,
		Peer: p.id,
		Err:  err,
	})
}

// discard 释放未能启用的 Transport 并排空其事件流
func discard(t pkgif.Transport) {
	t.Disconnect()
	go func() {
		for range t.Events() {
		}
	}()
}
