package tcp

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-smartnode/internal/core/transport"
	"github.com/dep2p/go-smartnode/internal/util/idgen"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
)

var _ pkgif.TransportFactory = (*Factory)(nil)

// Factory TCP 传输工厂
type Factory struct {
	cfg Config
	ids *idgen.Generator
}

// NewFactory 创建工厂
func NewFactory(cfg Config, ids *idgen.Generator) *Factory {
	if ids == nil {
		ids = idgen.New()
	}
	return &Factory{cfg: cfg, ids: ids}
}

// Kind 返回 "tcp"
func (f *Factory) Kind() string { return Kind }

// NewTransport 构造出站 Transport，地址在 Init 时校验
func (f *Factory) NewTransport(address string) (pkgif.Transport, error) {
	return newTransport(f.ids.Next(), address, f.cfg), nil
}

// NewAcceptor 构造 Acceptor，地址在 Listen 时校验
func (f *Factory) NewAcceptor(address string) (pkgif.Acceptor, error) {
	return newAcceptor(address, f.cfg, f.ids), nil
}

// Module 返回 Fx 模块（需要外部提供 tcp.Config）
func Module() fx.Option {
	return fx.Module("transport/tcp",
		fx.Provide(transport.AsFactory(NewFactory)),
	)
}
