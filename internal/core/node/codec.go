package node

import (
	"errors"
	"math"

	"github.com/multiformats/go-varint"

	"github.com/dep2p/go-smartnode/pkg/types"
)

// EncodeFrame 编码一帧：uvarint(len(body)) ‖ message_type ‖ payload
func EncodeFrame(typ types.MessageType, payload []byte) []byte {
	bodyLen := 1 + len(payload)
	out := make([]byte, 0, varint.UvarintSize(uint64(bodyLen))+bodyLen)
	out = append(out, varint.ToUvarint(uint64(bodyLen))...)
	out = append(out, byte(typ))
	return append(out, payload...)
}

// frame 解码出的一帧
type frame struct {
	typ     types.MessageType
	payload []byte
}

// frameDecoder 从字节流重组帧
//
// 超长帧按长度前缀整体丢弃，之后的帧不受影响；
// 无法解析或超过 maxSkipFactor 倍上限的长度前缀使流失去同步，
// 丢弃缓冲区中已有的全部字节，是否断开由上层决定。
type frameDecoder struct {
	max  int
	buf  []byte
	skip int
}

// maxSkipFactor 可跳过的超长帧相对上限的倍数
const maxSkipFactor = 64

func newFrameDecoder(max int) *frameDecoder {
	return &frameDecoder{max: max}
}

// skipLimit 可按长度前缀跳过的最大帧体
func (d *frameDecoder) skipLimit() uint64 {
	limit := uint64(d.max) * maxSkipFactor
	if limit/maxSkipFactor != uint64(d.max) {
		return math.MaxUint64
	}
	return limit
}

// feed 追加读取到的字节，返回完整的帧与解码错误
func (d *frameDecoder) feed(data []byte) ([]frame, []error) {
	if d.skip > 0 {
		n := min(d.skip, len(data))
		d.skip -= n
		data = data[n:]
	}
	d.buf = append(d.buf, data...)

	var (
		frames []frame
		errs   []error
	)
	for len(d.buf) > 0 && d.skip == 0 {
		size, n, err := varint.FromUvarint(d.buf)
		if errors.Is(err, varint.ErrUnderflow) {
			break
		}
		if err != nil {
			errs = append(errs, types.Errorf(ErrMalformedFrame, "length prefix: %v", err))
			d.buf = nil
			break
		}
		rest := len(d.buf) - n
		switch {
		case size == 0:
			errs = append(errs, types.Errorf(ErrMalformedFrame, "empty frame"))
			d.buf = d.buf[n:]
			continue
		case size > d.skipLimit():
			// 长度前缀远超上限，视为失去同步而不是跳过
			errs = append(errs, types.Errorf(ErrMalformedFrame, "length prefix %d out of range", size))
			d.buf = nil
		case size > uint64(d.max):
			errs = append(errs, types.Errorf(ErrFrameTooLarge, "%d bytes exceeds %d", size, d.max))
			if uint64(rest) >= size {
				d.buf = d.buf[n+int(size):]
			} else {
				d.skip = int(size) - rest
				d.buf = nil
			}
			continue
		case uint64(rest) < size:
			// 等待更多字节
		default:
			body := d.buf[n : n+int(size)]
			frames = append(frames, frame{
				typ:     types.MessageType(body[0]),
				payload: append([]byte(nil), body[1:]...),
			})
			d.buf = d.buf[n+int(size):]
			continue
		}
		break
	}

	if len(d.buf) == 0 {
		d.buf = nil
	}
	return frames, errs
}

// buffered 返回尚未组成完整帧的字节数
func (d *frameDecoder) buffered() int {
	return len(d.buf)
}
