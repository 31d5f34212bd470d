package protocol

import (
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/lib/log"
	"github.com/dep2p/go-smartnode/pkg/types"
)

var logger = log.Logger("core/protocol")

// Registry 智能协议注册表
//
// 进程内的协议目录：加载后的定义只增不减，Get 返回的 *Definition 不可变。
// 同时持有处理器目录，协议绑定在加载时按名称解析。
type Registry struct {
	source Source

	mu       sync.RWMutex
	handlers map[string]pkgif.Handler
	defs     map[types.ProtocolID]*Definition

	// loads 合并同一协议的并发加载
	loads singleflight.Group
}

// NewRegistry 创建协议注册表
func NewRegistry(source Source) *Registry {
	if source == nil {
		source = NewMemorySource()
	}
	return &Registry{
		source:   source,
		handlers: make(map[string]pkgif.Handler),
		defs:     make(map[types.ProtocolID]*Definition),
	}
}

// RegisterHandler 向处理器目录注册处理器
func (r *Registry) RegisterHandler(name string, h pkgif.Handler) error {
	if name == "" {
		return types.Errorf(types.ErrInvalidArgument, "protocol: empty handler name")
	}
	if h == nil {
		return types.Errorf(ErrNilHandler, "%s", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return types.Errorf(ErrDuplicateHandler, "%s", name)
	}
	r.handlers[name] = h
	return nil
}

// Handlers 返回已注册的处理器名
func (r *Registry) Handlers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load 从定义源加载协议
//
// 幂等：已加载的协议直接返回 nil。定义格式错误时返回 InvalidArgument 类错误，
// 注册表保持不变。
func (r *Registry) Load(id types.ProtocolID) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if r.loaded(id) {
		logger.Info("协议已加载", "protocol", id)
		return nil
	}

	_, err, _ := r.loads.Do(string(id), func() (any, error) {
		if r.loaded(id) {
			return nil, nil
		}
		data, err := r.source.Load(id)
		if err != nil {
			return nil, err
		}
		m, err := ParseManifest(id, data)
		if err != nil {
			return nil, err
		}
		return nil, r.install(id, m)
	})
	if err != nil {
		logger.Warn("加载协议失败", "protocol", id, "err", err)
	}
	return err
}

// LoadManifest 加载已解析的清单
func (r *Registry) LoadManifest(m *Manifest) error {
	id := types.ProtocolID(m.ID)
	if err := ValidateID(id); err != nil {
		return err
	}
	if r.loaded(id) {
		logger.Info("协议已加载", "protocol", id)
		return nil
	}
	return r.install(id, m)
}

// install 编译清单并插入目录
func (r *Registry) install(id types.ProtocolID, m *Manifest) error {
	r.mu.RLock()
	catalog := make(map[string]pkgif.Handler, len(r.handlers))
	for name, h := range r.handlers {
		catalog[name] = h
	}
	r.mu.RUnlock()

	def, err := Compile(id, m, catalog)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[id]; exists {
		return nil
	}
	r.defs[id] = def
	logger.Info("协议已加载", "protocol", id, "messages", def.Len(), "handlers", len(def.handlers))
	return nil
}

func (r *Registry) loaded(id types.ProtocolID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[id]
	return ok
}

// Get 返回已加载的协议定义
func (r *Registry) Get(id types.ProtocolID) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[id]
	if !ok {
		return nil, types.Errorf(ErrProtocolNotLoaded, "%s", id)
	}
	return def, nil
}

// List 返回已加载的协议标识（排序）
func (r *Registry) List() []types.ProtocolID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedIDs(r.defs)
}

// Supported 返回 协议 -> 消息名 -> 描述符 JSON
func (r *Registry) Supported() map[types.ProtocolID]map[string]string {
	r.mu.RLock()
	defs := make([]*Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}
	r.mu.RUnlock()

	out := make(map[types.ProtocolID]map[string]string, len(defs))
	for _, def := range defs {
		out[def.ID()] = def.Describe()
	}
	return out
}
