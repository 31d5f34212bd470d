package node

import (
	"bytes"
	"testing"

	"github.com/multiformats/go-varint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-smartnode/pkg/types"
)

// TestEncodeFrame 测试帧编码
func TestEncodeFrame(t *testing.T) {
	frame := EncodeFrame(3, []byte{0xaa, 0xbb})
	assert.Equal(t, []byte{0x03, 0x03, 0xaa, 0xbb}, frame)

	// 空载荷仍然带 message_type
	assert.Equal(t, []byte{0x01, 0x07}, EncodeFrame(7, nil))

	// 多字节长度前缀
	big := EncodeFrame(0, bytes.Repeat([]byte{1}, 200))
	assert.Equal(t, []byte{0xc9, 0x01, 0x00}, big[:3])

	t.Log("✅ EncodeFrame 正确")
}

// TestFrameDecoder_Split 测试跨读取重组
func TestFrameDecoder_Split(t *testing.T) {
	d := newFrameDecoder(DefaultMaxFrameSize)
	stream := append(EncodeFrame(1, []byte("hello")), EncodeFrame(2, []byte("world"))...)

	var got []frame
	for _, b := range stream {
		frames, errs := d.feed([]byte{b})
		require.Empty(t, errs)
		got = append(got, frames...)
	}

	require.Len(t, got, 2)
	assert.Equal(t, types.MessageType(1), got[0].typ)
	assert.Equal(t, []byte("hello"), got[0].payload)
	assert.Equal(t, types.MessageType(2), got[1].typ)
	assert.Equal(t, []byte("world"), got[1].payload)
	assert.Zero(t, d.buffered())

	t.Log("✅ 单字节分片可重组")
}

// TestFrameDecoder_Batch 测试一次读取多帧
func TestFrameDecoder_Batch(t *testing.T) {
	d := newFrameDecoder(DefaultMaxFrameSize)
	var stream []byte
	for i := range 5 {
		stream = append(stream, EncodeFrame(types.MessageType(i), []byte{byte(i)})...)
	}
	// 末尾追加半帧
	partial := EncodeFrame(9, []byte("tail"))
	stream = append(stream, partial[:3]...)

	frames, errs := d.feed(stream)
	require.Empty(t, errs)
	require.Len(t, frames, 5)
	for i, f := range frames {
		assert.Equal(t, types.MessageType(i), f.typ)
	}
	assert.Equal(t, 3, d.buffered())

	frames, errs = d.feed(partial[3:])
	require.Empty(t, errs)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte("tail"), frames[0].payload)

	t.Log("✅ 批量帧与半帧正确")
}

// TestFrameDecoder_TooLarge 测试超长帧被丢弃且不影响后续帧
func TestFrameDecoder_TooLarge(t *testing.T) {
	d := newFrameDecoder(8)
	oversized := EncodeFrame(1, bytes.Repeat([]byte{0xee}, 32))
	next := EncodeFrame(2, []byte("ok"))

	// 超长帧跨两次读取
	frames, errs := d.feed(oversized[:10])
	assert.Empty(t, frames)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrFrameTooLarge)
	assert.ErrorIs(t, errs[0], types.ErrInvalidArgument)

	frames, errs = d.feed(append(oversized[10:], next...))
	assert.Empty(t, errs)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte("ok"), frames[0].payload)

	t.Log("✅ 超长帧被跳过")
}

// TestFrameDecoder_Malformed 测试格式错误的长度前缀
func TestFrameDecoder_Malformed(t *testing.T) {
	d := newFrameDecoder(DefaultMaxFrameSize)

	// 零长度帧
	frames, errs := d.feed(append([]byte{0x00}, EncodeFrame(1, []byte("x"))...))
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformedFrame)
	require.Len(t, frames, 1)

	// 溢出的 varint 丢弃缓冲区
	frames, errs = d.feed(bytes.Repeat([]byte{0xff}, 12))
	assert.Empty(t, frames)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformedFrame)
	assert.Zero(t, d.buffered())

	// 之后的帧正常解码
	frames, errs = d.feed(EncodeFrame(4, nil))
	assert.Empty(t, errs)
	require.Len(t, frames, 1)
	assert.Equal(t, types.MessageType(4), frames[0].typ)

	t.Log("✅ 格式错误的帧被报告")
}

// TestFrameDecoder_OutOfRangePrefix 远超上限的长度前缀不会吞掉后续字节
func TestFrameDecoder_OutOfRangePrefix(t *testing.T) {
	d := newFrameDecoder(8)

	huge := varint.ToUvarint(1 << 62)
	frames, errs := d.feed(append(huge, 0x01, 0x02))
	assert.Empty(t, frames)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformedFrame)
	assert.Zero(t, d.skip)
	assert.Zero(t, d.buffered())

	frames, errs = d.feed(EncodeFrame(3, []byte("ok")))
	assert.Empty(t, errs)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte("ok"), frames[0].payload)

	// 上限倍数以内的超长帧仍按长度跳过
	assert.Equal(t, uint64(8*maxSkipFactor), d.skipLimit())

	t.Log("✅ 越界长度前缀按失去同步处理")
}
