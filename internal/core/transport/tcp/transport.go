package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/dep2p/go-smartnode/internal/core/transport"
	"github.com/dep2p/go-smartnode/internal/util/mailbox"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
	"github.com/dep2p/go-smartnode/pkg/lib/oneshot"
	"github.com/dep2p/go-smartnode/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

var _ pkgif.Transport = (*Transport)(nil)

// sendOp 待发送请求
type sendOp struct {
	data  []byte
	msgID types.MessageID
	slot  *oneshot.Slot[pkgif.SendResult]
}

// readOp 挂起的读取
type readOp struct {
	buf     []byte
	offset  int
	maxSize int
	msgID   types.MessageID
	slot    *oneshot.Slot[pkgif.ReadResult]
}

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport TCP 传输
type Transport struct {
	id      types.ConnectionID
	address string
	dir     types.Direction
	cfg     Config

	mu       sync.Mutex
	cond     *sync.Cond
	state    types.ConnState
	inited   bool
	hostport string
	conn     net.Conn
	cancel   context.CancelFunc
	sendQ    []*sendOp
	readQ    []*readOp

	events *mailbox.Mailbox[pkgif.Event]
}

func newTransport(id types.ConnectionID, address string, cfg Config) *Transport {
	t := &Transport{
		id:      id,
		address: address,
		dir:     types.DirOutbound,
		cfg:     cfg,
		state:   types.ConnUnconnected,
		events:  mailbox.New[pkgif.Event](),
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// newAccepted 包装已接受的连接，直接处于 Connected 状态
func newAccepted(id types.ConnectionID, conn net.Conn, cfg Config) *Transport {
	t := newTransport(id, transport.Format(Kind, conn.RemoteAddr().String()), cfg)
	t.dir = types.DirInbound
	t.inited = true
	t.state = types.ConnConnected
	t.conn = conn
	go t.writeLoop(conn)
	go t.readLoop(conn)
	return t
}

// ID 返回连接标识
func (t *Transport) ID() types.ConnectionID { return t.id }

// Kind 返回 "tcp"
func (t *Transport) Kind() string { return Kind }

// Address 返回对端地址
func (t *Transport) Address() string { return t.address }

// Direction 返回连接方向
func (t *Transport) Direction() types.Direction { return t.dir }

// Events 返回事件流
func (t *Transport) Events() <-chan pkgif.Event { return t.events.Out() }

// State 返回连接状态
func (t *Transport) State() types.ConnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Init 校验地址
func (t *Transport) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inited {
		return types.ErrAlreadyInitialized
	}
	addr, err := transport.ParseAddress(t.address)
	if err != nil {
		return err
	}
	if addr.Kind != Kind {
		return ErrWrongKind
	}
	if _, _, err := addr.HostPort(); err != nil {
		return err
	}
	t.hostport = addr.Host
	t.inited = true
	return nil
}

// Connect 异步拨号
func (t *Transport) Connect() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != types.ConnUnconnected {
		logger.Debug("忽略重复 Connect", "conn", t.id, "state", t.state)
		return
	}
	if !t.inited {
		t.teardownLocked(ErrNotInitialized)
		return
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if t.cfg.DialTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), t.cfg.DialTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	t.cancel = cancel
	t.state = types.ConnConnecting

	go t.dial(ctx, t.hostport)
}

func (t *Transport) dial(ctx context.Context, hostport string) {
	d := net.Dialer{KeepAlive: t.cfg.KeepAlive}
	conn, err := d.DialContext(ctx, "tcp", hostport)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != types.ConnConnecting {
		// 拨号期间已被 Disconnect
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		logger.Warn("拨号失败", "conn", t.id, "addr", t.address, "err", err)
		t.teardownLocked(types.Errorf(types.ErrConnection, "dial %s: %v", hostport, err))
		return
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}

	t.conn = conn
	t.state = types.ConnConnected
	t.events.Put(pkgif.ConnectedEvent{Conn: t.id})
	logger.Debug("连接已建立", "conn", t.id, "addr", t.address)

	go t.writeLoop(conn)
	go t.readLoop(conn)
}

// Disconnect 同步排空后断开，幂等
func (t *Transport) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == types.ConnDisconnected {
		return
	}
	t.teardownLocked(nil)
}

// AsyncSend 提交发送
func (t *Transport) AsyncSend(data []byte, msgID types.MessageID) *oneshot.Slot[pkgif.SendResult] {
	op := &sendOp{
		data:  append([]byte(nil), data...),
		msgID: msgID,
		slot:  oneshot.New[pkgif.SendResult](),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case types.ConnConnecting, types.ConnConnected:
		t.sendQ = append(t.sendQ, op)
		t.cond.Broadcast()
	case types.ConnUnconnected:
		t.completeSendLocked(op, types.ErrNotConnected)
	default:
		t.completeSendLocked(op, types.ErrConnectionClosed)
	}
	return op.slot
}

// AsyncRead 挂起一次读取
func (t *Transport) AsyncRead(buf []byte, offset, maxSize int, msgID types.MessageID) *oneshot.Slot[pkgif.ReadResult] {
	op := &readOp{
		buf:     buf,
		offset:  offset,
		maxSize: maxSize,
		msgID:   msgID,
		slot:    oneshot.New[pkgif.ReadResult](),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if offset < 0 || maxSize <= 0 || offset+maxSize > len(buf) {
		t.completeReadLocked(op, 0, ErrInvalidRead)
		return op.slot
	}
	switch t.state {
	case types.ConnConnecting, types.ConnConnected:
		t.readQ = append(t.readQ, op)
		t.cond.Broadcast()
	case types.ConnUnconnected:
		t.completeReadLocked(op, 0, types.ErrNotConnected)
	default:
		t.completeReadLocked(op, 0, types.ErrConnectionClosed)
	}
	return op.slot
}

// ============================================================================
//                              读写循环
// ============================================================================

func (t *Transport) writeLoop(conn net.Conn) {
	for {
		t.mu.Lock()
		for len(t.sendQ) == 0 && t.state == types.ConnConnected {
			t.cond.Wait()
		}
		if t.state != types.ConnConnected {
			t.mu.Unlock()
			return
		}
		op := t.sendQ[0]
		t.mu.Unlock()

		_, err := conn.Write(op.data)

		t.mu.Lock()
		if t.state != types.ConnConnected {
			// 已拆除，op 已被失败
			t.mu.Unlock()
			return
		}
		if err != nil {
			logger.Warn("写入失败", "conn", t.id, "err", err)
			t.teardownLocked(types.Errorf(types.ErrConnection, "write: %v", err))
			t.mu.Unlock()
			return
		}
		t.sendQ = t.sendQ[1:]
		t.completeSendLocked(op, nil)
		t.mu.Unlock()
	}
}

func (t *Transport) readLoop(conn net.Conn) {
	var scratch []byte
	for {
		t.mu.Lock()
		for len(t.readQ) == 0 && t.state == types.ConnConnected {
			t.cond.Wait()
		}
		if t.state != types.ConnConnected {
			t.mu.Unlock()
			return
		}
		size := t.readQ[0].maxSize
		t.mu.Unlock()

		if cap(scratch) < size {
			scratch = make([]byte, size)
		}
		n, err := conn.Read(scratch[:size])

		t.mu.Lock()
		if t.state != types.ConnConnected {
			t.mu.Unlock()
			return
		}
		if n > 0 {
			op := t.readQ[0]
			t.readQ = t.readQ[1:]
			copy(op.buf[op.offset:], scratch[:n])
			t.completeReadLocked(op, n, nil)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Debug("对端关闭连接", "conn", t.id)
				t.teardownLocked(nil)
			} else {
				logger.Warn("读取失败", "conn", t.id, "err", err)
				t.teardownLocked(types.Errorf(types.ErrConnection, "read: %v", err))
			}
			t.mu.Unlock()
			return
		}
		t.mu.Unlock()
	}
}

// ============================================================================
//                              完成与拆除
// ============================================================================

// completeSendLocked 结果同时写入句柄与事件流
func (t *Transport) completeSendLocked(op *sendOp, err error) {
	n := 0
	if err == nil {
		n = len(op.data)
	}
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

// teardownLocked 拆除连接：上报错误，按顺序失败未完成操作，发出断开事件
func (t *Transport) teardownLocked(cause error) {
	t.state = types.ConnDisconnected
	if t.cancel != nil {
		t.cancel()
	}
	if t.conn != nil {
		_ = t.conn.Close()
	}
	t.cond.Broadcast()

	if cause != nil {
		t.events.Put(pkgif.ConnectionErrorEvent{Conn: t.id, Err: cause})
	}
	sends, reads := t.sendQ, t.readQ
	t.sendQ, t.readQ = nil, nil
	for _, op := range sends {
		t.completeSendLocked(op, types.ErrConnectionClosed)
	}
	for _, op := range reads {
		t.completeReadLocked(op, 0, types.ErrConnectionClosed)
	}
	t.events.Put(pkgif.DisconnectedEvent{Conn: t.id})
	t.events.CloseAfterDrain()
}
