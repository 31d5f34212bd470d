package simulator

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-smartnode/internal/core/metrics"
	"github.com/dep2p/go-smartnode/internal/core/transport"
	"github.com/dep2p/go-smartnode/internal/util/idgen"
)

// Params 模拟器依赖
type Params struct {
	fx.In

	Config  Config
	IDs     *idgen.Generator
	Clock   clock.Clock        `optional:"true"`
	Metrics *metrics.Simulator `optional:"true"`
}

// Module 返回 Fx 模块
//
// 提供 *Simulator 并把它作为 "sim" 传输工厂加入值组；
// AutoStart 时随应用启动，应用停止时 Stop。
func Module() fx.Option {
	return fx.Module("simulator",
		fx.Provide(Provide),
		fx.Provide(transport.AsFactory(func(s *Simulator) *Simulator { return s })),
		fx.Invoke(registerLifecycle),
	)
}

// Provide 按参数创建模拟器
func Provide(p Params) (*Simulator, error) {
	opts := []Option{WithIDGenerator(p.IDs), WithMetrics(p.Metrics)}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}
	return New(p.Config, opts...)
}

func registerLifecycle(lc fx.Lifecycle, s *Simulator) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if s.cfg.AutoStart {
				return s.Start(s.cfg.TickInterval)
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			s.Stop()
			return nil
		},
	})
}
