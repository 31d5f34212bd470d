package tcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-smartnode/internal/util/idgen"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/types"
)

const waitTimeout = 5 * time.Second

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

func waitClosed(t *testing.T, tr pkgif.Transport) []pkgif.Event {
	t.Helper()
	var rest []pkgif.Event
	timeout := time.After(waitTimeout)
	for {
		select {
		case evt, ok := <-tr.Events():
			if !ok {
				return rest
			}
			rest = append(rest, evt)
		case <-timeout:
			t.Fatal("事件流未关闭")
			return rest
		}
	}
}

// newPair 建立一对回环连接
func newPair(t *testing.T) (client, server pkgif.Transport, acc *Acceptor) {
	t.Helper()
	f := NewFactory(DefaultConfig(), idgen.New())

	a, err := f.NewAcceptor("tcp://127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, a.Listen())
	acc = a.(*Acceptor)
	t.Cleanup(acc.Stop)

	client, err = f.NewTransport(acc.Address())
	require.NoError(t, err)
	require.NoError(t, client.Init())
	client.Connect()

	evt := nextEvent(t, client)
	require.IsType(t, pkgif.ConnectedEvent{}, evt)
	assert.Equal(t, types.ConnConnected, client.State())

	select {
	case server = <-acc.Accepted():
	case <-time.After(waitTimeout):
		t.Fatal("未接受入站连接")
	}
	assert.Equal(t, types.DirInbound, server.Direction())
	assert.Equal(t, types.ConnConnected, server.State())

	t.Cleanup(client.Disconnect)
	t.Cleanup(server.Disconnect)
	return client, server, acc
}

func readN(t *testing.T, tr pkgif.Transport, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	got := 0
	for got < n {
		res, err := tr.AsyncRead(buf, got, n-got, types.MessageID(got)).WaitTimeout(waitTimeout)
		require.NoError(t, err)
		got += res.BytesRead
	}
	return buf
}

func TestTransport_SendReceive(t *testing.T) {
	client, server, _ := newPair(t)

	res, err := client.AsyncSend([]byte("hello"), 7).WaitTimeout(waitTimeout)
	require.NoError(t, err)
	assert.Equal(t, types.MessageID(7), res.MsgID)
	assert.Equal(t, 5, res.BytesSent)

	assert.Equal(t, []byte("hello"), readN(t, server, 5))

	t.Log("✅ TCP 收发正常")
}

func TestTransport_SendCompletionOrder(t *testing.T) {
	client, _, _ := newPair(t)

	const n = 50
	for i := range n {
		client.AsyncSend([]byte{byte(i)}, types.MessageID(i))
	}

	for i := range n {
		evt := nextEvent(t, client)
		sent, ok := evt.(pkgif.MessageSentEvent)
		require.True(t, ok, "unexpected event %T", evt)
		require.NoError(t, sent.Err)
		assert.Equal(t, types.MessageID(i), sent.MsgID)
	}

	t.Log("✅ 发送完成顺序与提交顺序一致")
}

func TestTransport_DisconnectIdempotent(t *testing.T) {
	client, _, _ := newPair(t)

	client.Disconnect()
	client.Disconnect()

	rest := waitClosed(t, client)
	disconnects := 0
	for _, evt := range rest {
		if _, ok := evt.(pkgif.DisconnectedEvent); ok {
			disconnects++
		}
	}
	assert.Equal(t, 1, disconnects)
	assert.Equal(t, types.ConnDisconnected, client.State())

	t.Log("✅ 重复断开只产生一次断开事件")
}

func TestTransport_DisconnectFailsPendingRead(t *testing.T) {
	_, server, _ := newPair(t)

	slot := server.AsyncRead(make([]byte, 16), 0, 16, 3)
	server.Disconnect()

	require.True(t, slot.IsResolved(), "Disconnect 返回前应完成所有挂起操作")
	_, err := slot.WaitTimeout(time.Millisecond)
	assert.ErrorIs(t, err, types.ErrConnectionClosed)
	assert.ErrorIs(t, err, types.ErrConnection)

	rest := waitClosed(t, server)
	require.Len(t, rest, 2)
	recv, ok := rest[0].(pkgif.MessageReceivedEvent)
	require.True(t, ok)
	assert.Equal(t, types.MessageID(3), recv.MsgID)
	assert.ErrorIs(t, recv.Err, types.ErrConnectionClosed)
	assert.IsType(t, pkgif.DisconnectedEvent{}, rest[1])

	// 断开后的发送只通过句柄报告失败
	_, err = server.AsyncSend([]byte("x"), 4).WaitTimeout(time.Millisecond)
	assert.ErrorIs(t, err, types.ErrConnectionClosed)
}

func TestTransport_RemoteClose(t *testing.T) {
	client, server, _ := newPair(t)

	slot := server.AsyncRead(make([]byte, 8), 0, 8, 1)
	client.Disconnect()

	_, err := slot.WaitTimeout(waitTimeout)
	assert.ErrorIs(t, err, types.ErrConnectionClosed)

	rest := waitClosed(t, server)
	require.NotEmpty(t, rest)
	assert.IsType(t, pkgif.DisconnectedEvent{}, rest[len(rest)-1])
}

func TestTransport_ConnectRefused(t *testing.T) {
	f := NewFactory(DefaultConfig(), idgen.New())

	// 取得一个空闲端口后立即关闭
	a, _ := f.NewAcceptor("tcp://127.0.0.1:0")
	require.NoError(t, a.Listen())
	addr := a.Address()
	a.Stop()

	tr, err := f.NewTransport(addr)
	require.NoError(t, err)
	require.NoError(t, tr.Init())
	tr.Connect()

	evt := nextEvent(t, tr)
	connErr, ok := evt.(pkgif.ConnectionErrorEvent)
	require.True(t, ok, "unexpected event %T", evt)
	assert.ErrorIs(t, connErr.Err, types.ErrConnection)

	assert.IsType(t, pkgif.DisconnectedEvent{}, nextEvent(t, tr))
	assert.Empty(t, waitClosed(t, tr))

	t.Log("✅ 拨号失败通过事件上报")
}

func TestTransport_InitErrors(t *testing.T) {
	f := NewFactory(DefaultConfig(), nil)

	for _, addr := range []string{"bogus", "sim://alice", "tcp://nohostport"} {
		tr, err := f.NewTransport(addr)
		require.NoError(t, err)
		assert.ErrorIs(t, tr.Init(), types.ErrInvalidArgument, addr)
	}

	tr, _ := f.NewTransport("tcp://127.0.0.1:1")
	require.NoError(t, tr.Init())
	assert.ErrorIs(t, tr.Init(), types.ErrInternal)
}

func TestTransport_ConnectWithoutInit(t *testing.T) {
	tr, _ := NewFactory(DefaultConfig(), nil).NewTransport("tcp://127.0.0.1:1")
	tr.Connect()

	evt := nextEvent(t, tr)
	connErr, ok := evt.(pkgif.ConnectionErrorEvent)
	require.True(t, ok)
	assert.ErrorIs(t, connErr.Err, ErrNotInitialized)
}

func TestTransport_InvalidRead(t *testing.T) {
	client, _, _ := newPair(t)

	_, err := client.AsyncRead(make([]byte, 4), 2, 4, 1).WaitTimeout(time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidRead)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestTransport_SendBeforeConnect(t *testing.T) {
	tr, _ := NewFactory(DefaultConfig(), nil).NewTransport("tcp://127.0.0.1:1")
	_, err := tr.AsyncSend([]byte("x"), 1).WaitTimeout(time.Millisecond)
	assert.ErrorIs(t, err, types.ErrNotConnected)
}

func TestAcceptor_Lifecycle(t *testing.T) {
	f := NewFactory(DefaultConfig(), nil)

	bad, _ := f.NewAcceptor("sim://x")
	assert.ErrorIs(t, bad.Listen(), types.ErrInvalidArgument)

	a, _ := f.NewAcceptor("tcp://127.0.0.1:0")
	require.NoError(t, a.Listen())
	assert.True(t, a.Listening())
	assert.NotEqual(t, "tcp://127.0.0.1:0", a.Address())
	assert.ErrorIs(t, a.Listen(), ErrAlreadyListening)

	a.Stop()
	a.Stop()
	assert.False(t, a.Listening())

	_, ok := <-a.Accepted()
	assert.False(t, ok)

	t.Log("✅ Acceptor 停止幂等")
}
