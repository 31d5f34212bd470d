package transport

import (
	"sort"
	"sync"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
)

var _ pkgif.TransportResolver = (*Registry)(nil)

// ============================================================================
//                              Registry - 传输工厂注册表
// ============================================================================

// Registry 按地址类型分派的传输工厂注册表
type Registry struct {
	mu        sync.RWMutex
	factories map[string]pkgif.TransportFactory
}

// NewRegistry 创建注册表
func NewRegistry(factories ...pkgif.TransportFactory) (*Registry, error) {
	r := &Registry{
		factories: make(map[string]pkgif.TransportFactory),
	}
	for _, f := range factories {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register 注册工厂
func (r *Registry) Register(f pkgif.TransportFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := f.Kind()
	if _, exists := r.factories[kind]; exists {
		return ErrDuplicateFactory
	}
	r.factories[kind] = f
	logger.Debug("注册传输工厂", "kind", kind)
	return nil
}

// Factory 查找工厂
func (r *Registry) Factory(kind string) (pkgif.TransportFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[kind]
	return f, ok
}

// Kinds 返回已注册的类型（排序）
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// NewTransport 按地址类型构造出站 Transport
func (r *Registry) NewTransport(address string) (pkgif.Transport, error) {
	f, err := r.resolve(address)
	if err != nil {
		return nil, err
	}
	return f.NewTransport(address)
}

// NewAcceptor 按地址类型构造 Acceptor
func (r *Registry) NewAcceptor(address string) (pkgif.Acceptor, error) {
	f, err := r.resolve(address)
	if err != nil {
		return nil, err
	}
	return f.NewAcceptor(address)
}

func (r *Registry) resolve(address string) (pkgif.TransportFactory, error) {
	kind, err := KindOf(address)
	if err != nil {
		return nil, err
	}
	f, ok := r.Factory(kind)
	if !ok {
		return nil, ErrUnsupportedKind
	}
	return f, nil
}
