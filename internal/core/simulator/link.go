package simulator

import (
	"time"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/oneshot"
	"github.com/dep2p/go-smartnode/pkg/types"
)

// sendOp 发送请求
type sendOp struct {
	data  []byte
	msgID types.MessageID
	slot  *oneshot.Slot[pkgif.SendResult]
}

// delivery 链路上一次在途投递
type delivery struct {
	op   *sendOp
	from *Transport
	dir  int
	at   time.Duration
	seq  uint64
	drop bool
	done bool
}

// ============================================================================
//                              Link - 模拟链路
// ============================================================================

// Link 两个模拟端点之间的双向链路
//
// 每个方向维护一个按投递时间排序的在途队列；方向 0 为 ends[0]→ends[1]。
// 所有字段由 Simulator.mu 保护。
type Link struct {
	id       uint64
	ends     [2]*Transport
	params   LinkParams
	last     [2]time.Duration
	inflight [2][]*delivery
	closed   bool
}

// ID 返回链路序号
func (l *Link) ID() uint64 { return l.id }

// Endpoints 返回两端连接标识
func (l *Link) Endpoints() (types.ConnectionID, types.ConnectionID) {
	return l.ends[0].id, l.ends[1].id
}

// Params 返回链路参数
func (l *Link) Params() LinkParams { return l.params }

// dirFrom 返回从 t 发出的方向
func (l *Link) dirFrom(t *Transport) int {
	if l.ends[0] == t {
		return 0
	}
	return 1
}

// other 返回另一端
func (l *Link) other(t *Transport) *Transport {
	if l.ends[0] == t {
		return l.ends[1]
	}
	return l.ends[0]
}

// takeInflight 取出并清空某方向的在途投递
func (l *Link) takeInflight(dir int) []*delivery {
	ds := l.inflight[dir]
	l.inflight[dir] = nil
	return ds
}

// popInflight 从方向队首移除已执行的投递
func (l *Link) popInflight(d *delivery) {
	q := l.inflight[d.dir]
	if len(q) > 0 && q[0] == d {
		q[0] = nil
		l.inflight[d.dir] = q[1:]
		return
	}
	for i, x := range q {
		if x == d {
			l.inflight[d.dir] = append(q[:i], q[i+1:]...)
			return
		}
	}
}
