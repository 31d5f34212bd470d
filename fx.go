package smartnode

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-smartnode/internal/core/eventbus"
	"github.com/dep2p/go-smartnode/internal/core/manager"
	"github.com/dep2p/go-smartnode/internal/core/metrics"
	"github.com/dep2p/go-smartnode/internal/core/protocol"
	"github.com/dep2p/go-smartnode/internal/core/simulator"
	"github.com/dep2p/go-smartnode/internal/core/transport"
	"github.com/dep2p/go-smartnode/internal/core/transport/tcp"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
)

var fxLogger = log.Logger("smartnode/fx")

// buildModules 组装运行时的 fx 模块
//
// 加载顺序（按依赖）：
//  1. 配置：统一配置派生出各组件配置
//  2. 基础：事件总线、指标
//  3. 传输：共享 ID 生成器与注册表、TCP 工厂、模拟器
//  4. 协议：注册表与预加载（先于节点管理器启动）
//  5. 节点管理器：启动时创建配置中的节点
func buildModules(o *options) ([]fx.Option, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	cfg := o.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(
			simulator.ConfigFromUnified,
			tcp.ConfigFromUnified,
			protocol.ConfigFromUnified,
			metrics.ConfigFromUnified,
			manager.ConfigFromUnified,
		),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 基础组件
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		eventbus.Module(),
		metrics.Module(),
	)
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 传输层
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		transport.Module(),
		tcp.Module(),
		simulator.Module(),
	)
	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 协议层
	// ════════════════════════════════════════════════════════════════════════
	if o.source != nil {
		src := o.source
		modules = append(modules, fx.Provide(func() protocol.Source { return src }))
	}
	for _, h := range o.handlers {
		modules = append(modules, protocol.AsHandler(h.Name, h.Handler))
	}
	modules = append(modules, protocol.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 5. 节点管理器
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, manager.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 6. 扩展与日志
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.extra...)
	fxLogging := o.fxLogging
	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		if fxLogging {
			z, err := zap.NewDevelopment()
			if err == nil {
				return &fxevent.ZapLogger{Logger: z}
			}
			fxLogger.Warn("创建 zap 日志失败，禁用 fx 日志", "err", err)
		}
		return &fxevent.ZapLogger{Logger: zap.NewNop()}
	}))

	return modules, nil
}
