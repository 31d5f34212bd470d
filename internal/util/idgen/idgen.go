// Package idgen 提供顺序 ID 生成器
package idgen

import (
	"sync/atomic"

	"github.com/dep2p/go-smartnode/pkg/types"
)

// Generator 顺序 ConnectionID 生成器
//
// 同一运行时内的所有传输工厂共享一个实例，保证 ConnectionID 进程内唯一。
// 新实例从 1 开始，使测试和模拟轨迹可复现。
type Generator struct {
	next atomic.Uint64
}

// New 创建生成器
func New() *Generator {
	return &Generator{}
}

// Next 返回下一个 ConnectionID
func (g *Generator) Next() types.ConnectionID {
	return types.ConnectionID(g.next.Add(1))
}

// Last 返回最近分配的 ID（未分配时为 0）
func (g *Generator) Last() types.ConnectionID {
	return types.ConnectionID(g.next.Load())
}
