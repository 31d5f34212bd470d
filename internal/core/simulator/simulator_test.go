package simulator

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/types"
)

const waitTimeout = 2 * time.Second

func newSim(t *testing.T, cfg Config, opts ...Option) *Simulator {
	t.Helper()
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Reset)
	return s
}

// linkedPair 创建两个传输并直接注册链路
func linkedPair(t *testing.T, s *Simulator, p LinkParams) (a, b pkgif.Transport) {
	t.Helper()
	a, err := s.NewTransport("sim://a")
	require.NoError(t, err)
	b, err = s.NewTransport("sim://b")
	require.NoError(t, err)

	_, err = s.RegisterLink(a.ID(), b.ID(), p)
	require.NoError(t, err)

	assert.IsType(t, pkgif.ConnectedEvent{}, nextEvent(t, a))
	assert.IsType(t, pkgif.ConnectedEvent{}, nextEvent(t, b))
	return a, b
}

func nextEvent(t *testing.T, tr pkgif.Transport) pkgif.Event {
	t.Helper()
	select {
	case evt, ok := <-tr.Events():
		require.True(t, ok, "事件流已关闭")
		return evt
	case <-time.After(waitTimeout):
		t.Fatal("等待事件超时")
		return nil
	}
}

func drainEvents(t *testing.T, tr pkgif.Transport) []pkgif.Event {
	t.Helper()
	var out []pkgif.Event
	timeout := time.After(waitTimeout)
	for {
		select {
		case evt, ok := <-tr.Events():
			if !ok {
				return out
			}
			out = append(out, evt)
		case <-timeout:
			t.Fatal("事件流未关闭")
			return out
		}
	}
}

func TestSimulator_DeliveryAfterLatency(t *testing.T) {
	s := newSim(t, DefaultConfig())
	a, b := linkedPair(t, s, LinkParams{Latency: 10 * time.Millisecond})
	assert.Equal(t, types.ConnectionID(1), a.ID())
	assert.Equal(t, types.ConnectionID(2), b.ID())

	read := b.AsyncRead(make([]byte, 16), 0, 16, 1)
	sent := a.AsyncSend([]byte("ping"), 9)

	s.Advance(9 * time.Millisecond)
	assert.False(t, read.IsResolved(), "未到投递时间不应完成")
	assert.False(t, sent.IsResolved())

	s.Advance(time.Millisecond)
	res, err := read.WaitTimeout(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), res.Data())

	sr, err := sent.WaitTimeout(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, types.MessageID(9), sr.MsgID)
	assert.Equal(t, 10*time.Millisecond, s.Now())

	t.Log("✅ 延迟到期后投递")
}

func TestSimulator_FIFOWithJitter(t *testing.T) {
	s := newSim(t, DefaultConfig())
	a, b := linkedPair(t, s, LinkParams{Latency: time.Millisecond, Jitter: 50 * time.Millisecond})

	const n = 100
	for i := range n {
		a.AsyncSend([]byte{byte(i)}, types.MessageID(i))
		s.Advance(100 * time.Microsecond)
	}
	s.RunUntilIdle()

	res, err := b.AsyncRead(make([]byte, n), 0, n, 1).WaitTimeout(time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, n, res.BytesRead)
	for i, v := range res.Data() {
		assert.Equal(t, byte(i), v, "投递顺序被打乱")
	}

	var last time.Duration
	for _, e := range s.Trace() {
		assert.GreaterOrEqual(t, e.At, last)
		last = e.At
	}

	t.Log("✅ 有抖动时同一方向仍然 FIFO")
}

func TestSimulator_SendCompletionOrder(t *testing.T) {
	s := newSim(t, DefaultConfig())
	a, _ := linkedPair(t, s, LinkParams{Latency: 5 * time.Millisecond, Jitter: 20 * time.Millisecond, Loss: 0.3})

	for i := range 50 {
		a.AsyncSend([]byte{byte(i)}, types.MessageID(i))
	}
	s.RunUntilIdle()

	for i := range 50 {
		evt, ok := nextEvent(t, a).(pkgif.MessageSentEvent)
		require.True(t, ok)
		assert.Equal(t, types.MessageID(i), evt.MsgID)
	}
}

func runScenario(t *testing.T, seed int64) []TraceEntry {
	cfg := DefaultConfig()
	cfg.Seed = seed
	s := newSim(t, cfg)
	a, b := linkedPair(t, s, LinkParams{Latency: 3 * time.Millisecond, Jitter: 7 * time.Millisecond, Loss: 0.25})

	for i := range 40 {
		a.AsyncSend([]byte{byte(i)}, types.MessageID(i))
		b.AsyncSend([]byte{byte(i), byte(i)}, types.MessageID(1000+i))
		s.Advance(time.Duration(i%3) * time.Millisecond)
	}
	s.RunUntilIdle()
	return s.Trace()
}

func TestSimulator_Deterministic(t *testing.T) {
	first := runScenario(t, 42)
	second := runScenario(t, 42)

	require.Len(t, first, 80)
	assert.Equal(t, first, second)

	other := runScenario(t, 7)
	assert.NotEqual(t, first, other)

	t.Log("✅ 相同种子两次运行轨迹完全一致")
}

func TestSimulator_TotalLoss(t *testing.T) {
	s := newSim(t, DefaultConfig())
	a, b := linkedPair(t, s, LinkParams{Latency: time.Millisecond, Loss: 1})

	read := b.AsyncRead(make([]byte, 8), 0, 8, 1)
	sent := a.AsyncSend([]byte("lost"), 1)
	s.RunUntilIdle()

	_, err := sent.WaitTimeout(time.Millisecond)
	assert.ErrorIs(t, err, ErrSimulatedLoss)
	assert.ErrorIs(t, err, types.ErrConnection)
	assert.False(t, read.IsResolved())

	trace := s.Trace()
	require.Len(t, trace, 1)
	assert.True(t, trace[0].Dropped)

	t.Log("✅ 丢包以发送失败通知发送方")
}

func TestSimulator_RegisterLinkValidation(t *testing.T) {
	s := newSim(t, DefaultConfig())
	a, _ := s.NewTransport("sim://a")
	b, _ := s.NewTransport("sim://b")
	c, _ := s.NewTransport("sim://c")

	_, err := s.RegisterLink(a.ID(), b.ID(), LinkParams{Latency: -time.Millisecond})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = s.RegisterLink(a.ID(), b.ID(), LinkParams{Jitter: -1})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = s.RegisterLink(a.ID(), b.ID(), LinkParams{Loss: 1.5})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = s.RegisterLink(a.ID(), 99, LinkParams{})
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = s.RegisterLink(a.ID(), a.ID(), LinkParams{})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	l, err := s.RegisterLink(a.ID(), b.ID(), LinkParams{})
	require.NoError(t, err)
	x, y := l.Endpoints()
	assert.Equal(t, a.ID(), x)
	assert.Equal(t, b.ID(), y)

	_, err = s.RegisterLink(a.ID(), c.ID(), LinkParams{})
	assert.ErrorIs(t, err, ErrAlreadyLinked)
	assert.Equal(t, 1, s.Links())
}

func TestSimulator_ConnectViaAcceptor(t *testing.T) {
	s := newSim(t, DefaultConfig())

	acc, err := s.NewAcceptor("sim://bob")
	require.NoError(t, err)
	require.NoError(t, acc.Listen())

	client, err := s.NewTransport("sim://bob?latency=5ms")
	require.NoError(t, err)
	require.NoError(t, client.Init())
	client.Connect()
	assert.Equal(t, types.ConnConnecting, client.State())

	// 连接期间提交的发送在连接后投递
	sent := client.AsyncSend([]byte("early"), 1)

	s.Advance(4 * time.Millisecond)
	assert.Equal(t, types.ConnConnecting, client.State())

	s.Advance(time.Millisecond)
	assert.Equal(t, types.ConnConnected, client.State())
	assert.IsType(t, pkgif.ConnectedEvent{}, nextEvent(t, client))

	var server pkgif.Transport
	select {
	case server = <-acc.Accepted():
	case <-time.After(waitTimeout):
		t.Fatal("未交付入站连接")
	}
	assert.Equal(t, types.DirInbound, server.Direction())
	assert.Equal(t, types.ConnConnected, server.State())

	s.Advance(5 * time.Millisecond)
	_, err = sent.WaitTimeout(time.Millisecond)
	require.NoError(t, err)

	res, err := server.AsyncRead(make([]byte, 8), 0, 8, 1).WaitTimeout(time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("early"), res.Data())

	t.Log("✅ 通过模拟监听器建立连接")
}

func TestSimulator_ConnectUnreachable(t *testing.T) {
	s := newSim(t, DefaultConfig())

	tr, _ := s.NewTransport("sim://nobody")
	require.NoError(t, tr.Init())
	tr.Connect()
	s.RunUntilIdle()

	evt, ok := nextEvent(t, tr).(pkgif.ConnectionErrorEvent)
	require.True(t, ok)
	assert.ErrorIs(t, evt.Err, types.ErrUnreachable)
	assert.IsType(t, pkgif.DisconnectedEvent{}, nextEvent(t, tr))
	assert.Empty(t, drainEvents(t, tr))
}

func TestSimulator_InitErrors(t *testing.T) {
	s := newSim(t, DefaultConfig())

	for _, addr := range []string{"sim://x?latency=-1ms", "sim://x?loss=2", "sim://x?jitter=abc", "tcp://1.2.3.4:5", "junk"} {
		tr, _ := s.NewTransport(addr)
		assert.ErrorIs(t, tr.Init(), types.ErrInvalidArgument, addr)
	}

	tr, _ := s.NewTransport("sim://x")
	require.NoError(t, tr.Init())
	assert.ErrorIs(t, tr.Init(), types.ErrInternal)
}

func TestSimulator_DisconnectIdempotent(t *testing.T) {
	s := newSim(t, DefaultConfig())
	a, b := linkedPair(t, s, LinkParams{Latency: 10 * time.Millisecond})

	inflight := a.AsyncSend([]byte("x"), 1)
	read := a.AsyncRead(make([]byte, 4), 0, 4, 2)
	peerSend := b.AsyncSend([]byte("y"), 3)

	a.Disconnect()
	a.Disconnect()

	// 同步排空
	require.True(t, inflight.IsResolved())
	require.True(t, read.IsResolved())
	_, err := inflight.WaitTimeout(0)
	assert.ErrorIs(t, err, types.ErrConnectionClosed)
	_, err = peerSend.WaitTimeout(time.Millisecond)
	assert.ErrorIs(t, err, types.ErrConnectionClosed)

	events := drainEvents(t, a)
	require.Len(t, events, 3)
	assert.IsType(t, pkgif.MessageSentEvent{}, events[0])
	assert.IsType(t, pkgif.MessageReceivedEvent{}, events[1])
	assert.IsType(t, pkgif.DisconnectedEvent{}, events[2])

	// 对端在一个链路延迟后断开
	assert.Equal(t, types.ConnConnected, b.State())
	s.Advance(10 * time.Millisecond)
	assert.Equal(t, types.ConnDisconnected, b.State())

	bEvents := drainEvents(t, b)
	require.NotEmpty(t, bEvents)
	assert.IsType(t, pkgif.DisconnectedEvent{}, bEvents[len(bEvents)-1])
	for _, evt := range bEvents {
		assert.NotPanics(t, func() { _ = evt.ConnID() })
		_, isErr := evt.(pkgif.ConnectionErrorEvent)
		assert.False(t, isErr, "对端正常关闭不应产生连接错误")
	}

	t.Log("✅ 断开幂等且同步排空")
}

func TestSimulator_StopAfterLocalDisconnect(t *testing.T) {
	s := newSim(t, DefaultConfig())
	a, b := linkedPair(t, s, LinkParams{Latency: 10 * time.Millisecond})

	// 对端拆除尚未到期时停止模拟器
	a.Disconnect()
	require.Equal(t, types.ConnConnected, b.State())
	s.Stop()

	assert.Equal(t, types.ConnDisconnected, b.State())
	assert.Equal(t, 0, s.Links())
	assert.Equal(t, 0, s.Pending())

	events := drainEvents(t, b)
	require.Len(t, events, 2)
	errEvt, ok := events[0].(pkgif.ConnectionErrorEvent)
	require.True(t, ok)
	assert.ErrorIs(t, errEvt.Err, ErrSimulatorStopped)
	assert.IsType(t, pkgif.DisconnectedEvent{}, events[1])

	_, err := b.AsyncSend([]byte("late"), 9).WaitTimeout(time.Millisecond)
	assert.ErrorIs(t, err, types.ErrConnectionClosed)

	t.Log("✅ Stop 拆除等待延迟断开的对端")
}

func TestSimulator_Partition(t *testing.T) {
	s := newSim(t, DefaultConfig())
	a, b := linkedPair(t, s, LinkParams{Latency: time.Millisecond})

	sent := a.AsyncSend([]byte("z"), 1)
	require.NoError(t, s.Partition(a.ID()))
	assert.ErrorIs(t, s.Partition(a.ID()), types.ErrNotFound)

	_, err := sent.WaitTimeout(time.Millisecond)
	assert.ErrorIs(t, err, ErrPartitioned)

	for _, tr := range []pkgif.Transport{a, b} {
		events := drainEvents(t, tr)
		require.NotEmpty(t, events)
		connErr, ok := events[0].(pkgif.ConnectionErrorEvent)
		require.True(t, ok)
		assert.ErrorIs(t, connErr.Err, ErrPartitioned)
		assert.IsType(t, pkgif.DisconnectedEvent{}, events[len(events)-1])
	}
	assert.Zero(t, s.Links())
}

func TestSimulator_StartStopWithMockClock(t *testing.T) {
	mock := clock.NewMock()
	s := newSim(t, DefaultConfig(), WithClock(mock))
	a, b := linkedPair(t, s, LinkParams{Latency: 20 * time.Millisecond})

	assert.ErrorIs(t, s.Start(0), ErrInvalidTick)
	require.NoError(t, s.Start(10*time.Millisecond))
	assert.ErrorIs(t, s.Start(10*time.Millisecond), ErrAlreadyRunning)
	assert.True(t, s.Running())

	read := b.AsyncRead(make([]byte, 4), 0, 4, 1)
	a.AsyncSend([]byte("tick"), 1)

	require.Eventually(t, func() bool {
		mock.Add(10 * time.Millisecond)
		return read.IsResolved()
	}, waitTimeout, time.Millisecond)
	assert.GreaterOrEqual(t, s.Now(), 20*time.Millisecond)

	pending := a.AsyncSend([]byte("late"), 2)
	s.Stop()
	assert.False(t, s.Running())

	_, err := pending.WaitTimeout(time.Millisecond)
	assert.ErrorIs(t, err, ErrSimulatorStopped)
	assert.Zero(t, s.Links())
	assert.Zero(t, s.Pending())

	t.Log("✅ 时钟驱动推进与停止")
}

func TestSimulator_Reset(t *testing.T) {
	s := newSim(t, DefaultConfig())
	acc, _ := s.NewAcceptor("sim://bob")
	require.NoError(t, acc.Listen())

	a, _ := linkedPair(t, s, LinkParams{Latency: time.Millisecond})
	a.AsyncSend([]byte("x"), 1)
	s.RunUntilIdle()
	require.NotEmpty(t, s.Trace())

	s.Reset()
	assert.Zero(t, s.Now())
	assert.Empty(t, s.Trace())
	assert.Zero(t, s.Links())
	assert.False(t, acc.Listening())

	again, _ := s.NewAcceptor("sim://bob")
	assert.NoError(t, again.Listen())

	// 新生成器不受 Reset 影响，ID 继续递增
	tr, _ := s.NewTransport("sim://bob")
	assert.Greater(t, tr.ID(), a.ID())
}

func TestAcceptor_Lifecycle(t *testing.T) {
	s := newSim(t, DefaultConfig())

	a1, _ := s.NewAcceptor("sim://svc")
	a2, _ := s.NewAcceptor("sim://svc")
	require.NoError(t, a1.Listen())
	assert.ErrorIs(t, a2.Listen(), ErrAddressInUse)
	assert.ErrorIs(t, a1.Listen(), ErrAlreadyListening)

	bad, _ := s.NewAcceptor("tcp://127.0.0.1:1")
	assert.ErrorIs(t, bad.Listen(), types.ErrInvalidArgument)

	// 未取走的入站连接在 Stop 时被断开
	client, _ := s.NewTransport("sim://svc?latency=0s")
	require.NoError(t, client.Init())
	client.Connect()
	s.RunUntilIdle()
	assert.Equal(t, types.ConnConnected, client.State())

	a1.Stop()
	a1.Stop()
	_, ok := <-a1.Accepted()
	assert.False(t, ok)

	s.RunUntilIdle()
	assert.Equal(t, types.ConnDisconnected, client.State())

	t.Log("✅ 监听器停止幂等")
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.DefaultLink.Loss = -0.1
	assert.ErrorIs(t, cfg.Validate(), types.ErrInvalidArgument)

	cfg = DefaultConfig()
	cfg.AutoStart = true
	cfg.TickInterval = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidTick)

	_, err := New(cfg)
	assert.Error(t, err)
}
