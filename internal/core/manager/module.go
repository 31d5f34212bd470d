package manager

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-smartnode/internal/core/metrics"
	"github.com/dep2p/go-smartnode/internal/core/protocol"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
)

// ModuleParams 管理器模块依赖
type ModuleParams struct {
	fx.In

	Config     Config
	Registry   *protocol.Registry
	Transports pkgif.TransportResolver
	Bus        pkgif.EventBus          `optional:"true"`
	Metrics    *metrics.NodeCollectors `optional:"true"`
}

// Module 返回 Fx 模块
//
// 启动时按 Config.Nodes 创建节点，停止时关闭全部节点。
func Module() fx.Option {
	return fx.Module("manager",
		fx.Provide(Provide),
		fx.Invoke(registerLifecycle),
	)
}

// Provide 创建管理器
func Provide(p ModuleParams) (*Manager, error) {
	return New(p.Config, Params{
		Registry:   p.Registry,
		Transports: p.Transports,
		Bus:        p.Bus,
		Metrics:    p.Metrics,
	})
}

func registerLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var err error
			for _, spec := range m.cfg.Nodes {
				if _, lerr := m.LaunchSpec(spec); lerr != nil {
					err = multierr.Append(err, lerr)
				}
			}
			if err != nil {
				return multierr.Append(err, m.Close())
			}
			logger.Debug("配置节点已启动", "count", len(m.cfg.Nodes))
			return nil
		},
		OnStop: func(_ context.Context) error {
			return m.Close()
		},
	})
}
