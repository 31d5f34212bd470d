package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-smartnode/pkg/types"
)

// TestReadResult_Data 测试读取结果切片
func TestReadResult_Data(t *testing.T) {
	buf := []byte("..hello..")
	r := ReadResult{MsgID: 1, Buffer: buf, Offset: 2, BytesRead: 5}
	assert.Equal(t, []byte("hello"), r.Data())

	evt := MessageReceivedEvent{Conn: 3, Buffer: buf, Offset: 2, BytesRead: 5}
	assert.Equal(t, []byte("hello"), evt.Data())

	evt.Err = types.ErrConnectionClosed
	assert.Nil(t, evt.Data(), "失败的读取没有数据")

	t.Log("✅ 读取结果切片正确")
}

// TestEvents_ConnID 测试事件携带连接标识
func TestEvents_ConnID(t *testing.T) {
	events := []Event{
		ConnectedEvent{Conn: 9},
		ConnectionErrorEvent{Conn: 9, Err: types.ErrUnreachable},
		DisconnectedEvent{Conn: 9},
		MessageSentEvent{Conn: 9},
		MessageReceivedEvent{Conn: 9},
	}
	for _, e := range events {
		assert.Equal(t, types.ConnectionID(9), e.ConnID())
	}

	t.Log("✅ 事件连接标识正确")
}

// TestEventBusOptions 测试订阅与发射器选项
func TestEventBusOptions(t *testing.T) {
	var ss SubscriptionSettings
	BufSize(32)(&ss)
	assert.Equal(t, 32, ss.Buffer)

	var es EmitterSettings
	Stateful()(&es)
	assert.True(t, es.Stateful)

	t.Log("✅ 事件总线选项正确")
}
