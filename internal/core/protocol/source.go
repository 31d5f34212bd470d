package protocol

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dep2p/go-smartnode/pkg/types"
)

// ManifestFile 目录源中每个协议的清单文件名
const ManifestFile = "protocol.yaml"

// Source 协议定义源
//
// Load 按标识返回清单字节；不存在时返回 NotFound 类错误。
type Source interface {
	Load(id types.ProtocolID) ([]byte, error)
}

// ValidateID 检查协议标识
//
// 标识用作目录名，不得为空、不得包含路径分隔符或以 "." 开头。
func ValidateID(id types.ProtocolID) error {
	s := string(id)
	if s == "" || strings.HasPrefix(s, ".") || strings.ContainsAny(s, `/\`) {
		return types.Errorf(ErrInvalidProtocolID, "%q", s)
	}
	return nil
}

// ============================================================================
//                              DirSource
// ============================================================================

// DirSource 从 <Root>/<id>/protocol.yaml 读取定义
type DirSource struct {
	Root string
}

var _ Source = DirSource{}

// Load 读取清单
func (s DirSource) Load(id types.ProtocolID) ([]byte, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	path := filepath.Join(s.Root, string(id), ManifestFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, types.Errorf(ErrProtocolNotFound, "%s", path)
	}
	if err != nil {
		return nil, types.Errorf(types.ErrInternal, "read %s: %v", path, err)
	}
	return data, nil
}

// ============================================================================
//                              MemorySource
// ============================================================================

// MemorySource 内存定义源
type MemorySource struct {
	mu        sync.RWMutex
	manifests map[types.ProtocolID][]byte
}

var _ Source = (*MemorySource)(nil)

// NewMemorySource 创建内存定义源
func NewMemorySource() *MemorySource {
	return &MemorySource{manifests: make(map[types.ProtocolID][]byte)}
}

// Put 保存清单字节
func (s *MemorySource) Put(id types.ProtocolID, data []byte) {
	s.mu.Lock()
	s.manifests[id] = append([]byte(nil), data...)
	s.mu.Unlock()
}

// PutManifest 编码并保存清单
func (s *MemorySource) PutManifest(m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	s.Put(types.ProtocolID(m.ID), data)
	return nil
}

// Load 返回清单字节
func (s *MemorySource) Load(id types.ProtocolID) ([]byte, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.manifests[id]
	if !ok {
		return nil, types.Errorf(ErrProtocolNotFound, "%s", id)
	}
	return data, nil
}
