package protocol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/types"
)

const pingpongYAML = `
id: pingpong
package: pingpong
description: ping pong
messages:
  - name: Ping
    fields:
      - {name: seq, type: uint32, number: 1}
      - {name: note, type: string, number: 2}
  - name: Pong
    fields:
      - {name: seq, type: uint32}
      - {name: echo, type: Ping}
      - {name: tags, type: string, repeated: true}
handlers:
  Ping: pingpong.on_ping
`

func noopHandler(context.Context, pkgif.Sender, types.PeerID, proto.Message) error {
	return nil
}

func newTestRegistry(t *testing.T) (*Registry, *MemorySource) {
	t.Helper()
	src := NewMemorySource()
	src.Put("pingpong", []byte(pingpongYAML))
	reg := NewRegistry(src)
	require.NoError(t, reg.RegisterHandler("pingpong.on_ping", noopHandler))
	return reg, src
}

// TestRegistry_New 测试创建注册表
func TestRegistry_New(t *testing.T) {
	reg := NewRegistry(nil)
	require.NotNil(t, reg)
	assert.Empty(t, reg.List())
	assert.Empty(t, reg.Handlers())

	t.Log("✅ Registry 创建成功")
}

// TestRegistry_RegisterHandler 测试处理器目录
func TestRegistry_RegisterHandler(t *testing.T) {
	reg := NewRegistry(nil)

	require.NoError(t, reg.RegisterHandler("b", noopHandler))
	require.NoError(t, reg.RegisterHandler("a", noopHandler))
	assert.Equal(t, []string{"a", "b"}, reg.Handlers())

	err := reg.RegisterHandler("a", noopHandler)
	assert.ErrorIs(t, err, ErrDuplicateHandler)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	assert.ErrorIs(t, reg.RegisterHandler("nil", nil), ErrNilHandler)
	assert.ErrorIs(t, reg.RegisterHandler("", noopHandler), types.ErrInvalidArgument)

	t.Log("✅ RegisterHandler 正确")
}

// TestRegistry_LoadAndGet 测试加载协议
func TestRegistry_LoadAndGet(t *testing.T) {
	reg, _ := newTestRegistry(t)

	require.NoError(t, reg.Load("pingpong"))
	assert.Equal(t, []types.ProtocolID{"pingpong"}, reg.List())

	def, err := reg.Get("pingpong")
	require.NoError(t, err)
	assert.Equal(t, types.ProtocolID("pingpong"), def.ID())
	assert.Equal(t, "pingpong", def.Package())
	assert.Equal(t, "ping pong", def.Description())
	assert.Equal(t, []string{"Ping", "Pong"}, def.MessageNames())

	typ, err := def.FindMessageType("Pong")
	require.NoError(t, err)
	assert.Equal(t, types.MessageType(1), typ)

	name, err := def.MessageName(0)
	require.NoError(t, err)
	assert.Equal(t, "Ping", name)

	_, ok := def.Handler("Ping")
	assert.True(t, ok)
	_, ok = def.Handler("Pong")
	assert.False(t, ok)
	assert.Equal(t, map[string]string{"Ping": "pingpong.on_ping"}, def.Bindings())

	t.Log("✅ Load/Get 正确")
}

// TestRegistry_LoadIdempotent 测试重复加载
func TestRegistry_LoadIdempotent(t *testing.T) {
	reg, src := newTestRegistry(t)

	require.NoError(t, reg.Load("pingpong"))
	first, err := reg.Get("pingpong")
	require.NoError(t, err)

	// 源内容变化不影响已加载的定义
	src.Put("pingpong", []byte("id: pingpong\nmessages: [{name: Other}]\n"))
	require.NoError(t, reg.Load("pingpong"))

	second, err := reg.Get("pingpong")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Len(t, reg.List(), 1)

	t.Log("✅ 重复加载是空操作")
}

// TestRegistry_ConcurrentLoad 测试并发加载
func TestRegistry_ConcurrentLoad(t *testing.T) {
	var reads atomic.Int32
	src := countingSource{inner: NewMemorySource(), reads: &reads}
	src.inner.Put("pingpong", []byte(pingpongYAML))
	reg := NewRegistry(src)
	require.NoError(t, reg.RegisterHandler("pingpong.on_ping", noopHandler))

	var g errgroup.Group
	for range 16 {
		g.Go(func() error { return reg.Load("pingpong") })
	}
	require.NoError(t, g.Wait())

	assert.Len(t, reg.List(), 1)
	assert.GreaterOrEqual(t, reads.Load(), int32(1))

	t.Log("✅ 并发加载正确")
}

type countingSource struct {
	inner *MemorySource
	reads *atomic.Int32
}

func (s countingSource) Load(id types.ProtocolID) ([]byte, error) {
	s.reads.Add(1)
	return s.inner.Load(id)
}

// TestRegistry_GetNotLoaded 测试获取未加载协议
func TestRegistry_GetNotLoaded(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Get("pingpong")
	assert.ErrorIs(t, err, ErrProtocolNotLoaded)
	assert.ErrorIs(t, err, types.ErrNotFound)

	err = reg.Load("missing")
	assert.ErrorIs(t, err, ErrProtocolNotFound)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, reg.Load("../etc"), types.ErrInvalidArgument)
	assert.ErrorIs(t, reg.Load(""), ErrInvalidProtocolID)

	t.Log("✅ 未加载协议返回 NotFound")
}

// TestRegistry_LoadMalformed 测试格式错误的定义
func TestRegistry_LoadMalformed(t *testing.T) {
	tooMany := "id: big\nmessages:\n"
	for i := range types.MaxMessageTypes + 1 {
		tooMany += fmt.Sprintf("  - name: M%d\n", i)
	}

	cases := map[string]string{
		"yaml":             "id: [",
		"empty":            "",
		"unknown key":      "id: bad\nversion: 2\nmessages: [{name: A}]\n",
		"id mismatch":      "id: other\nmessages: [{name: A}]\n",
		"no messages":      "id: bad\n",
		"unnamed message":  "id: bad\nmessages: [{fields: []}]\n",
		"duplicate":        "id: bad\nmessages: [{name: A}, {name: A}]\n",
		"unknown type":     "id: bad\nmessages: [{name: A, fields: [{name: x, type: int128}]}]\n",
		"unnamed field":    "id: bad\nmessages: [{name: A, fields: [{type: bool}]}]\n",
		"duplicate number": "id: bad\nmessages: [{name: A, fields: [{name: x, type: bool, number: 1}, {name: y, type: bool, number: 1}]}]\n",
		"bad field name":   "id: bad\nmessages: [{name: A, fields: [{name: 'x-y', type: bool}]}]\n",
		"unknown handler":  "id: bad\nmessages: [{name: A}]\nhandlers: {A: nope}\n",
		"unbound message":  "id: bad\nmessages: [{name: A}]\nhandlers: {B: pingpong.on_ping}\n",
		"too many":         tooMany,
	}

	for name, manifest := range cases {
		t.Run(name, func(t *testing.T) {
			reg, src := newTestRegistry(t)
			id := types.ProtocolID("bad")
			if name == "too many" {
				id = "big"
			}
			src.Put(id, []byte(manifest))

			err := reg.Load(id)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
			assert.Empty(t, reg.List())

			_, err = reg.Get(id)
			assert.ErrorIs(t, err, types.ErrNotFound)
		})
	}

	t.Log("✅ 格式错误的定义被拒绝且注册表不变")
}

// TestRegistry_MaxMessages 测试 256 个消息的上限
func TestRegistry_MaxMessages(t *testing.T) {
	m := &Manifest{ID: "wide"}
	for i := range types.MaxMessageTypes {
		m.Messages = append(m.Messages, MessageSpec{Name: fmt.Sprintf("M%d", i)})
	}
	reg := NewRegistry(nil)
	require.NoError(t, reg.LoadManifest(m))

	def, err := reg.Get("wide")
	require.NoError(t, err)
	typ, err := def.FindMessageType("M255")
	require.NoError(t, err)
	assert.Equal(t, types.MessageType(255), typ)

	t.Log("✅ 256 个消息可以加载")
}

// TestDefinition_UnknownMessage 测试查找未知消息
func TestDefinition_UnknownMessage(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.Load("pingpong"))
	def, err := reg.Get("pingpong")
	require.NoError(t, err)

	_, err = def.FindMessageType("unknown_message")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = def.NewMessageByType(9)
	assert.ErrorIs(t, err, ErrUnknownMessageType)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = def.NewMessage("unknown_message")
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	_, _, err = def.Marshal("unknown_message", nil)
	assert.ErrorIs(t, err, ErrUnknownMessage)

	t.Log("✅ 未知消息返回正确错误类别")
}

// TestDefinition_MarshalUnmarshal 测试载荷编解码
func TestDefinition_MarshalUnmarshal(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.Load("pingpong"))
	def, err := reg.Get("pingpong")
	require.NoError(t, err)

	ping, err := def.NewMessage("Ping")
	require.NoError(t, err)
	fields := ping.ProtoReflect().Descriptor().Fields()
	ping.ProtoReflect().Set(fields.ByName("seq"), protoreflect.ValueOfUint32(7))
	ping.ProtoReflect().Set(fields.ByName("note"), protoreflect.ValueOfString("hi"))

	typ, data, err := def.Marshal("Ping", ping)
	require.NoError(t, err)
	assert.Equal(t, types.MessageType(0), typ)

	name, got, err := def.Unmarshal(typ, data)
	require.NoError(t, err)
	assert.Equal(t, "Ping", name)
	assert.True(t, proto.Equal(ping, got))

	// 类型不符
	_, _, err = def.Marshal("Pong", ping)
	assert.ErrorIs(t, err, ErrPayloadMismatch)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	// 损坏的载荷
	_, _, err = def.Unmarshal(0, []byte{0xff})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)

	// nil 载荷按空消息编码
	typ, data, err = def.Marshal("Pong", nil)
	require.NoError(t, err)
	assert.Equal(t, types.MessageType(1), typ)
	assert.Empty(t, data)

	t.Log("✅ 载荷编解码正确")
}

// TestRegistry_Supported 测试协议目录描述
func TestRegistry_Supported(t *testing.T) {
	reg, _ := newTestRegistry(t)
	require.NoError(t, reg.Load("pingpong"))

	supported := reg.Supported()
	require.Contains(t, supported, types.ProtocolID("pingpong"))
	msgs := supported["pingpong"]
	require.Len(t, msgs, 2)

	var desc descriptorpb.DescriptorProto
	require.NoError(t, protojson.Unmarshal([]byte(msgs["Pong"]), &desc))
	assert.Equal(t, "Pong", desc.GetName())
	require.Len(t, desc.GetField(), 3)
	assert.Equal(t, ".pingpong.Ping", desc.GetField()[1].GetTypeName())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_REPEATED, desc.GetField()[2].GetLabel())

	t.Log("✅ Supported 正确")
}

// TestDirSource 测试目录定义源
func TestDirSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pingpong"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pingpong", ManifestFile), []byte(pingpongYAML), 0o644))

	src := DirSource{Root: root}
	data, err := src.Load("pingpong")
	require.NoError(t, err)
	assert.Equal(t, pingpongYAML, string(data))

	_, err = src.Load("nope")
	assert.True(t, errors.Is(err, types.ErrNotFound))

	_, err = src.Load("a/b")
	assert.ErrorIs(t, err, ErrInvalidProtocolID)

	reg := NewRegistry(src)
	require.NoError(t, reg.RegisterHandler("pingpong.on_ping", noopHandler))
	require.NoError(t, reg.Load("pingpong"))

	t.Log("✅ DirSource 正确")
}

// TestMemorySource_PutManifest 测试编码清单
func TestMemorySource_PutManifest(t *testing.T) {
	src := NewMemorySource()
	require.NoError(t, src.PutManifest(&Manifest{
		ID:       "echo",
		Messages: []MessageSpec{{Name: "Echo", Fields: []FieldSpec{{Name: "body", Type: "bytes"}}}},
	}))

	reg := NewRegistry(src)
	require.NoError(t, reg.Load("echo"))
	def, err := reg.Get("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", def.Package())

	t.Log("✅ PutManifest 正确")
}

// TestPackageName 测试包名推导
func TestPackageName(t *testing.T) {
	assert.Equal(t, "ping_pong", packageName("ping-pong"))
	assert.Equal(t, "p2pchat", packageName("2pchat"))
	assert.Equal(t, "chat_v1", packageName("chat.v1"))

	t.Log("✅ packageName 正确")
}
