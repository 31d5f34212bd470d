package protocol

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dep2p/go-smartnode/pkg/types"
)

// Manifest 协议定义清单（protocol.yaml）
type Manifest struct {
	// ID 协议标识，必须与加载时请求的标识一致
	ID string `yaml:"id"`

	// Package protobuf 包名，为空时使用 ID
	Package string `yaml:"package,omitempty"`

	// Description 描述
	Description string `yaml:"description,omitempty"`

	// Messages 消息定义，声明顺序决定 message_type
	Messages []MessageSpec `yaml:"messages"`

	// Handlers 消息名 -> 处理器名
	Handlers map[string]string `yaml:"handlers,omitempty"`
}

// MessageSpec 消息定义
type MessageSpec struct {
	Name   string      `yaml:"name"`
	Fields []FieldSpec `yaml:"fields,omitempty"`
}

// FieldSpec 字段定义
type FieldSpec struct {
	Name string `yaml:"name"`

	// Type 标量类型名或同一清单中的消息名
	Type string `yaml:"type"`

	// Number 字段编号，0 表示按位置自动分配
	Number int32 `yaml:"number,omitempty"`

	// Repeated 列表字段
	Repeated bool `yaml:"repeated,omitempty"`
}

// ParseManifest 解析 YAML 清单
//
// 未知键视为格式错误。
func ParseManifest(id types.ProtocolID, data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return nil, malformed(id, "empty manifest")
		}
		return nil, malformed(id, "%v", err)
	}
	return &m, nil
}

// Marshal 编码为 YAML
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}
