package simulator

import (
	"github.com/dep2p/go-smartnode/internal/core/transport"
	"github.com/dep2p/go-smartnode/internal/util/mailbox"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/oneshot"
	"github.com/dep2p/go-smartnode/pkg/types"
)

var _ pkgif.Transport = (*Transport)(nil)

// readOp 挂起的读取
type readOp struct {
	buf     []byte
	offset  int
	maxSize int
	msgID   types.MessageID
	slot    *oneshot.Slot[pkgif.ReadResult]
}

// ============================================================================
//                              Transport - 模拟传输
// ============================================================================

// Transport 模拟传输
//
// 可变状态全部由所属 Simulator 的锁保护。
type Transport struct {
	sim     *Simulator
	id      types.ConnectionID
	address string
	dir     types.Direction
	events  *mailbox.Mailbox[pkgif.Event]

	state    types.ConnState
	inited   bool
	name     string
	params   LinkParams
	link     *Link
	preSends []*sendOp
	inbox    []byte
	readQ    []*readOp
}

// ID 返回连接标识
func (t *Transport) ID() types.ConnectionID { return t.id }

// Kind 返回 "sim"
func (t *Transport) Kind() string { return Kind }

// Address 返回对端地址
func (t *Transport) Address() string { return t.address }

// Direction 返回连接方向
func (t *Transport) Direction() types.Direction { return t.dir }

// Events 返回事件流
func (t *Transport) Events() <-chan pkgif.Event { return t.events.Out() }

// State 返回连接状态
func (t *Transport) State() types.ConnState {
	t.sim.mu.Lock()
	defer t.sim.mu.Unlock()
	return t.state
}

// Init 解析目标端点名与链路参数
func (t *Transport) Init() error {
	addr, err := transport.ParseAddress(t.address)
	if err != nil {
		return err
	}
	if addr.Kind != Kind {
		return ErrWrongKind
	}

	t.sim.mu.Lock()
	defer t.sim.mu.Unlock()

	if t.inited {
		return types.ErrAlreadyInitialized
	}
	params, err := parseLinkParams(addr.Query, t.sim.cfg.DefaultLink)
	if err != nil {
		return err
	}
	t.name = addr.Host
	t.params = params
	t.inited = true
	return nil
}

// Connect 在 now + latency 时刻完成握手
func (t *Transport) Connect() {
	s := t.sim
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.state != types.ConnUnconnected {
		logger.Debug("忽略重复 Connect", "conn", t.id, "state", t.state)
		return
	}
	if !t.inited {
		s.teardownLocked(t, ErrNotInitialized, types.ErrConnectionClosed)
		return
	}
	t.state = types.ConnConnecting
	s.scheduleLocked(s.now+t.params.Latency, func() { s.handshakeLocked(t) })
}

// Disconnect 同步排空后断开，幂等
func (t *Transport) Disconnect() {
	t.sim.mu.Lock()
	defer t.sim.mu.Unlock()
	t.sim.closeLocked(t)
}

// AsyncSend 把发送排入链路
func (t *Transport) AsyncSend(data []byte, msgID types.MessageID) *oneshot.Slot[pkgif.SendResult] {
	op := &sendOp{
		data:  append([]byte(nil), data...),
		msgID: msgID,
		slot:  oneshot.New[pkgif.SendResult](),
	}

	s := t.sim
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case t.state == types.ConnConnected && t.link != nil && !t.link.closed:
		s.enqueueDeliveryLocked(t, op)
	case t.state == types.ConnConnecting:
		t.preSends = append(t.preSends, op)
	case t.state == types.ConnUnconnected:
		t.completeSendLocked(op, 0, types.ErrNotConnected)
	default:
		t.completeSendLocked(op, 0, types.ErrConnectionClosed)
	}
	return op.slot
}

// AsyncRead 挂起一次读取，收件箱有数据时立即完成
func (t *Transport) AsyncRead(buf []byte, offset, maxSize int, msgID types.MessageID) *oneshot.Slot[pkgif.ReadResult] {
	op := &readOp{
		buf:     buf,
		offset:  offset,
		maxSize: maxSize,
		msgID:   msgID,
		slot:    oneshot.New[pkgif.ReadResult](),
	}

	t.sim.mu.Lock()
	defer t.sim.mu.Unlock()

	if offset < 0 || maxSize <= 0 || offset+maxSize > len(buf) {
		t.completeReadLocked(op, 0, ErrInvalidRead)
		return op.slot
	}
	switch t.state {
	case types.ConnConnecting, types.ConnConnected:
		t.readQ = append(t.readQ, op)
		t.serveReadsLocked()
	case types.ConnUnconnected:
		t.completeReadLocked(op, 0, types.ErrNotConnected)
	default:
		t.completeReadLocked(op, 0, types.ErrConnectionClosed)
	}
	return op.slot
}

// ============================================================================
//                              内部方法（调用方持有 sim.mu）
// ============================================================================

// receiveLocked 追加到收件箱并满足挂起的读取
func (t *Transport) receiveLocked(data []byte) {
	t.inbox = append(t.inbox, data...)
	t.serveReadsLocked()
}

func (t *Transport) serveReadsLocked() {
	for len(t.readQ) > 0 && len(t.inbox) > 0 {
		op := t.readQ[0]
		t.readQ = t.readQ[1:]
		n := copy(op.buf[op.offset:op.offset+op.maxSize], t.inbox)
		t.inbox = t.inbox[n:]
		t.completeReadLocked(op, n, nil)
	}
	if len(t.inbox) == 0 {
		t.inbox = nil
	}
}

func (t *Transport) completeSendLocked(op *sendOp, n int, err error) {
	if op.slot.Resolve(pkgif.SendResult{MsgID: op.msgID, BytesSent: n}, err) {
		t.events.Put(pkgif.MessageSentEvent{Conn: t.id, MsgID: op.msgID, BytesSent: n, Err: err})
	}
}

func (t *Transport) completeReadLocked(op *readOp, n int, err error) {
	res := pkgif.ReadResult{MsgID: op.msgID, Buffer: op.buf, Offset: op.offset, BytesRead: n}
	if op.slot.Resolve(res, err) {
		t.events.Put(pkgif.MessageReceivedEvent{
			Conn:      t.id,
			MsgID:     op.msgID,
			Buffer:    op.buf,
			Offset:    op.offset,
			BytesRead: n,
			Err:       err,
		})
	}
}

// connectedLocked 进入 Connected 并冲刷连接前提交的发送
func (t *Transport) connectedLocked(l *Link, emit bool) {
	t.link = l
	t.state = types.ConnConnected
	if emit {
		t.events.Put(pkgif.ConnectedEvent{Conn: t.id})
	}
	pending := t.preSends
	t.preSends = nil
	for _, op := range pending {
		t.sim.enqueueDeliveryLocked(t, op)
	}
}
