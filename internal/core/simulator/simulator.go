package simulator

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-smartnode/internal/core/metrics"
	"github.com/dep2p/go-smartnode/internal/util/idgen"
	"github.com/dep2p/go-smartnode/internal/util/mailbox"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
	"github.com/dep2p/go-smartnode/pkg/types"
)

var logger = log.Logger("core/simulator")

var _ pkgif.TransportFactory = (*Simulator)(nil)

// Option 模拟器选项
type Option func(*Simulator)

// WithClock 指定驱动 Start 的墙上时钟（测试使用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(s *Simulator) { s.clock = c }
}

// WithIDGenerator 与其他传输工厂共享 ConnectionID 生成器
func WithIDGenerator(g *idgen.Generator) Option {
	return func(s *Simulator) { s.ids = g }
}

// WithMetrics 指定指标收集器
func WithMetrics(m *metrics.Simulator) Option {
	return func(s *Simulator) { s.metrics = m }
}

// ============================================================================
//                              Simulator
// ============================================================================

// Simulator 确定性虚拟网络
type Simulator struct {
	cfg     Config
	clock   clock.Clock
	ids     *idgen.Generator
	metrics *metrics.Simulator

	mu         sync.Mutex
	now        time.Duration
	seq        uint64
	rng        *rand.Rand
	queue      eventQueue
	transports map[types.ConnectionID]*Transport
	acceptors  map[string]*Acceptor
	links      map[uint64]*Link
	nextLinkID uint64
	trace      *traceRing

	runMu  sync.Mutex
	ticker *clock.Ticker
	halt   chan struct{}
	halted chan struct{}
}

// New 创建模拟器
func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{
		cfg:   cfg,
		clock: clock.New(),
		ids:   idgen.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetStateLocked()
	return s, nil
}

func (s *Simulator) resetStateLocked() {
	s.now = 0
	s.seq = 0
	s.rng = rand.New(rand.NewSource(s.cfg.Seed))
	s.queue = nil
	s.transports = make(map[types.ConnectionID]*Transport)
	s.acceptors = make(map[string]*Acceptor)
	s.links = make(map[uint64]*Link)
	s.nextLinkID = 0
	s.trace = newTraceRing(s.cfg.TraceCapacity)
	s.metrics.SetVirtualTime(0)
}

// Config 返回配置
func (s *Simulator) Config() Config { return s.cfg }

// ============================================================================
//                              TransportFactory
// ============================================================================

// Kind 返回 "sim"
func (s *Simulator) Kind() string { return Kind }

// NewTransport 构造出站模拟传输，地址在 Init 时解析
//
// 传输在断开前一直登记在模拟器中；不再使用的传输应调用 Disconnect，
// 否则保留到 Reset。
func (s *Simulator) NewTransport(address string) (pkgif.Transport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newTransportLocked(address, types.DirOutbound), nil
}

// NewAcceptor 构造模拟监听器
func (s *Simulator) NewAcceptor(address string) (pkgif.Acceptor, error) {
	return &Acceptor{
		sim:      s,
		address:  address,
		accepted: mailbox.New[pkgif.Transport](),
	}, nil
}

func (s *Simulator) newTransportLocked(address string, dir types.Direction) *Transport {
	t := &Transport{
		sim:     s,
		id:      s.ids.Next(),
		address: address,
		dir:     dir,
		state:   types.ConnUnconnected,
		events:  mailbox.New[pkgif.Event](),
	}
	s.transports[t.id] = t
	return t
}

// ============================================================================
//                              链路管理
// ============================================================================

// RegisterLink 在两个模拟传输之间建立双向链路
//
// 参数在此处校验；两端必须存在且尚未连上链路，未连接的端点进入 Connected 并发出 ConnectedEvent。
func (s *Simulator) RegisterLink(a, b types.ConnectionID, params LinkParams) (*Link, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if a == b {
		return nil, types.Errorf(types.ErrInvalidArgument, "cannot link connection %d to itself", a)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ta, tb := s.transports[a], s.transports[b]
	if ta == nil {
		return nil, types.Errorf(ErrTransportNotFound, "connection %d", a)
	}
	if tb == nil {
		return nil, types.Errorf(ErrTransportNotFound, "connection %d", b)
	}
	for _, t := range []*Transport{ta, tb} {
		if t.link != nil || t.state == types.ConnConnected {
			return nil, types.Errorf(ErrAlreadyLinked, "connection %d", t.id)
		}
	}

	l := s.newLinkLocked(ta, tb, params)
	ta.connectedLocked(l, true)
	tb.connectedLocked(l, true)
	logger.Debug("注册链路", "link", l.id, "a", a, "b", b,
		"latency", params.Latency, "jitter", params.Jitter, "loss", params.Loss)
	return l, nil
}

func (s *Simulator) newLinkLocked(a, b *Transport, params LinkParams) *Link {
	s.nextLinkID++
	l := &Link{
		id:     s.nextLinkID,
		ends:   [2]*Transport{a, b},
		params: params,
	}
	s.links[l.id] = l
	return l
}

// Partition 切断某连接所在的链路，两端收到 ConnectionErrorEvent{ErrPartitioned}
func (s *Simulator) Partition(conn types.ConnectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.transports[conn]
	if t == nil || t.link == nil || t.link.closed {
		return types.Errorf(ErrTransportNotFound, "no link for connection %d", conn)
	}
	logger.Info("模拟分区", "link", t.link.id, "conn", conn)
	s.breakLinkLocked(t.link, ErrPartitioned)
	return nil
}

// Links 返回当前链路数
func (s *Simulator) Links() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

// ============================================================================
//                              时钟推进
// ============================================================================

// Now 返回当前虚拟时间
func (s *Simulator) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending 返回尚未执行的事件数
func (s *Simulator) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Advance 推进虚拟时间 d，执行期间所有到期事件，返回执行的事件数
func (s *Simulator) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.now + d
	n := 0
	for s.queue.Len() > 0 && s.queue.peek().at <= target {
		s.stepLocked()
		n++
	}
	s.now = target
	s.metrics.SetVirtualTime(s.now)
	return n
}

// RunUntilIdle 一直推进到事件队列为空，返回执行的事件数
func (s *Simulator) RunUntilIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for s.queue.Len() > 0 {
		s.stepLocked()
		n++
	}
	s.metrics.SetVirtualTime(s.now)
	return n
}

// stepLocked 弹出最早事件，时钟跳到事件时间后执行
func (s *Simulator) stepLocked() {
	e := s.queue.pop()
	if e.at > s.now {
		s.now = e.at
	}
	e.fn()
}

// scheduleLocked 在 at 时刻调度事件（不早于当前时间），返回事件序号
func (s *Simulator) scheduleLocked(at time.Duration, fn func()) uint64 {
	if at < s.now {
		at = s.now
	}
	s.seq++
	s.queue.push(&event{at: at, seq: s.seq, fn: fn})
	return s.seq
}

// Start 由时钟驱动推进：每个 tick 推进 tick 的虚拟时间
func (s *Simulator) Start(tick time.Duration) error {
	if tick <= 0 {
		return ErrInvalidTick
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.ticker != nil {
		return ErrAlreadyRunning
	}

	ticker := s.clock.Ticker(tick)
	halt, halted := make(chan struct{}), make(chan struct{})
	s.ticker, s.halt, s.halted = ticker, halt, halted

	go func() {
		defer close(halted)
		for {
			select {
			case <-ticker.C:
				s.Advance(tick)
			case <-halt:
				return
			}
		}
	}()
	logger.Info("模拟器启动", "tick", tick, "seed", s.cfg.Seed)
	return nil
}

// Running 是否处于时钟驱动模式
func (s *Simulator) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.ticker != nil
}

// Stop 停止时钟驱动并拆除所有链路，幂等
//
// 在途投递以 ErrSimulatorStopped 失败，连接中与已连接的端点（包括对端已
// 本地断开、尚在等待延迟拆除的端点）收到 ConnectionErrorEvent 后断开。
// 未连接的传输与监听器保留。
func (s *Simulator) Stop() {
	s.runMu.Lock()
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.halt)
		<-s.halted
		s.ticker, s.halt, s.halted = nil, nil, nil
		logger.Info("模拟器停止")
	}
	s.runMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.sortedLinksLocked() {
		s.breakLinkLocked(l, ErrSimulatorStopped)
	}
	// 本地断开后对端的延迟拆除事件随队列一起丢弃，这里直接拆除
	for _, t := range s.sortedTransportsLocked() {
		if t.state == types.ConnConnecting || t.state == types.ConnConnected {
			s.teardownLocked(t, ErrSimulatorStopped, ErrSimulatorStopped)
		}
	}
	s.queue = nil
}

// Reset 停止并清空全部状态：时间归零、重新播种、注销监听器、丢弃传输
func (s *Simulator) Reset() {
	s.Stop()

	s.mu.Lock()
	acceptors := make([]*Acceptor, 0, len(s.acceptors))
	for _, a := range s.acceptors {
		acceptors = append(acceptors, a)
	}
	for _, t := range s.sortedTransportsLocked() {
		if t.state != types.ConnDisconnected {
			s.teardownLocked(t, nil, ErrSimulatorStopped)
		}
	}
	s.mu.Unlock()

	for _, a := range acceptors {
		a.Stop()
	}

	s.mu.Lock()
	s.resetStateLocked()
	s.mu.Unlock()
	logger.Debug("模拟器已重置")
}

// Trace 返回最近执行的投递轨迹（按执行顺序）
func (s *Simulator) Trace() []TraceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trace.snapshot()
}

// ============================================================================
//                              握手与投递（调用方持有 s.mu）
// ============================================================================

// handshakeLocked 完成出站连接：查找监听端点，创建入站传输并建立链路
func (s *Simulator) handshakeLocked(t *Transport) {
	if t.state != types.ConnConnecting || t.link != nil {
		return
	}
	acc := s.acceptors[t.name]
	if acc == nil || !acc.listening {
		logger.Debug("模拟端点不可达", "conn", t.id, "name", t.name)
		s.teardownLocked(t, types.ErrUnreachable, types.ErrUnreachable)
		return
	}

	server := s.newTransportLocked(fmt.Sprintf("%s://peer-%d", Kind, t.id), types.DirInbound)
	server.inited = true
	l := s.newLinkLocked(t, server, t.params)
	server.connectedLocked(l, false)

	if !acc.offerLocked(server) {
		s.breakLinkLocked(l, types.ErrUnreachable)
		return
	}
	t.connectedLocked(l, true)
	logger.Debug("模拟连接建立", "conn", t.id, "accepted", server.id, "name", t.name)
}

// enqueueDeliveryLocked 计算投递时间并加入方向队列
func (s *Simulator) enqueueDeliveryLocked(from *Transport, op *sendOp) {
	l := from.link
	if l == nil || l.closed {
		from.completeSendLocked(op, 0, types.ErrConnectionClosed)
		return
	}
	dir := l.dirFrom(from)
	p := l.params

	delay := p.Latency
	if p.Jitter > 0 {
		delay += time.Duration(s.rng.Int63n(int64(p.Jitter) + 1))
	}
	at := s.now + delay
	if at < l.last[dir] {
		at = l.last[dir]
	}
	l.last[dir] = at

	drop := p.Loss > 0 && s.rng.Float64() < p.Loss

	d := &delivery{op: op, from: from, dir: dir, at: at, drop: drop}
	l.inflight[dir] = append(l.inflight[dir], d)
	d.seq = s.scheduleLocked(at, func() { s.deliverLocked(l, d) })
}

// deliverLocked 执行一次投递
func (s *Simulator) deliverLocked(l *Link, d *delivery) {
	if d.done {
		return
	}
	d.done = true
	l.popInflight(d)

	to := l.other(d.from)
	s.trace.add(TraceEntry{
		At:      s.now,
		Seq:     d.seq,
		From:    d.from.id,
		To:      to.id,
		MsgID:   d.op.msgID,
		Size:    len(d.op.data),
		Dropped: d.drop,
	})

	if d.drop {
		s.metrics.Dropped()
		d.from.completeSendLocked(d.op, 0, ErrSimulatedLoss)
		return
	}
	to.receiveLocked(d.op.data)
	s.metrics.Delivered()
	d.from.completeSendLocked(d.op, len(d.op.data), nil)
}

// ============================================================================
//                              拆除（调用方持有 s.mu）
// ============================================================================

// closeLocked 本地断开：排空本端，失败对端发往本端的在途投递，
// 一个链路延迟后拆除对端
func (s *Simulator) closeLocked(t *Transport) {
	if t.state == types.ConnDisconnected {
		return
	}
	l := t.link
	s.teardownLocked(t, nil, types.ErrConnectionClosed)
	if l == nil || l.closed {
		return
	}

	l.closed = true
	delete(s.links, l.id)
	peer := l.other(t)
	for _, d := range l.takeInflight(l.dirFrom(peer)) {
		d.done = true
		peer.completeSendLocked(d.op, 0, types.ErrConnectionClosed)
	}
	s.scheduleLocked(s.now+l.params.Latency, func() {
		if peer.state != types.ConnDisconnected {
			s.teardownLocked(peer, nil, types.ErrConnectionClosed)
		}
	})
}

// breakLinkLocked 立即拆除链路两端，cause 作为连接错误与操作失败原因
func (s *Simulator) breakLinkLocked(l *Link, cause error) {
	if l.closed {
		return
	}
	l.closed = true
	delete(s.links, l.id)
	for _, t := range l.ends {
		if t.state != types.ConnDisconnected {
			s.teardownLocked(t, cause, cause)
		}
	}
}

// teardownLocked 拆除单个端点
//
// 顺序：ConnectionErrorEvent（cause 非空时）→ 按提交顺序失败发送 → 按挂起顺序失败读取
// → DisconnectedEvent → 关闭事件流。
func (s *Simulator) teardownLocked(t *Transport, cause, opErr error) {
	t.state = types.ConnDisconnected
	delete(s.transports, t.id)

	if cause != nil {
		t.events.Put(pkgif.ConnectionErrorEvent{Conn: t.id, Err: cause})
	}
	if l := t.link; l != nil {
		for _, d := range l.takeInflight(l.dirFrom(t)) {
			d.done = true
			t.completeSendLocked(d.op, 0, opErr)
		}
	}
	pre := t.preSends
	t.preSends = nil
	for _, op := range pre {
		t.completeSendLocked(op, 0, opErr)
	}
	reads := t.readQ
	t.readQ = nil
	for _, op := range reads {
		t.completeReadLocked(op, 0, opErr)
	}
	t.inbox = nil

	t.events.Put(pkgif.DisconnectedEvent{Conn: t.id})
	t.events.CloseAfterDrain()
}

// sortedLinksLocked 按链路序号返回，保证拆除顺序确定
func (s *Simulator) sortedLinksLocked() []*Link {
	out := make([]*Link, 0, len(s.links))
	for id := uint64(1); id <= s.nextLinkID; id++ {
		if l, ok := s.links[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

// sortedTransportsLocked 按连接标识返回
func (s *Simulator) sortedTransportsLocked() []*Transport {
	out := make([]*Transport, 0, len(s.transports))
	for _, t := range s.transports {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
