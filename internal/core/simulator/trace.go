package simulator

import (
	"fmt"
	"time"

	"github.com/dep2p/go-smartnode/pkg/types"
)

// TraceEntry 一次已执行的投递
type TraceEntry struct {
	At      time.Duration
	Seq     uint64
	From    types.ConnectionID
	To      types.ConnectionID
	MsgID   types.MessageID
	Size    int
	Dropped bool
}

// String 返回可读表示
func (e TraceEntry) String() string {
	verdict := "delivered"
	if e.Dropped {
		verdict = "dropped"
	}
	return fmt.Sprintf("%v #%d %d->%d msg=%d size=%d %s", e.At, e.Seq, e.From, e.To, e.MsgID, e.Size, verdict)
}

// traceRing 固定容量的环形轨迹
type traceRing struct {
	buf   []TraceEntry
	start int
	n     int
}

func newTraceRing(capacity int) *traceRing {
	return &traceRing{buf: make([]TraceEntry, capacity)}
}

func (r *traceRing) add(e TraceEntry) {
	if len(r.buf) == 0 {
		return
	}
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = e
		r.n++
		return
	}
	r.buf[r.start] = e
	r.start = (r.start + 1) % len(r.buf)
}

func (r *traceRing) snapshot() []TraceEntry {
	out := make([]TraceEntry, r.n)
	for i := range r.n {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
