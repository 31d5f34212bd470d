package protocol

import (
	"sort"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/types"
)

// scalarTypes 清单中可用的标量类型
var scalarTypes = map[string]descriptorpb.FieldDescriptorProto_Type{
	"double": descriptorpb.FieldDescriptorProto_TYPE_DOUBLE,
	"float":  descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
	"int32":  descriptorpb.FieldDescriptorProto_TYPE_INT32,
	"int64":  descriptorpb.FieldDescriptorProto_TYPE_INT64,
	"uint32": descriptorpb.FieldDescriptorProto_TYPE_UINT32,
	"uint64": descriptorpb.FieldDescriptorProto_TYPE_UINT64,
	"sint32": descriptorpb.FieldDescriptorProto_TYPE_SINT32,
	"sint64": descriptorpb.FieldDescriptorProto_TYPE_SINT64,
	"bool":   descriptorpb.FieldDescriptorProto_TYPE_BOOL,
	"string": descriptorpb.FieldDescriptorProto_TYPE_STRING,
	"bytes":  descriptorpb.FieldDescriptorProto_TYPE_BYTES,
}

// ============================================================================
//                              Definition
// ============================================================================

// Definition 已编译的智能协议定义
//
// 加载后不可变，可在多个节点与 goroutine 间共享。
type Definition struct {
	id          types.ProtocolID
	description string
	file        protoreflect.FileDescriptor

	// messages 按 message_type 索引
	messages []protoreflect.MessageDescriptor
	byName   map[string]types.MessageType

	// handlers 消息名 -> 处理器
	handlers map[string]pkgif.Handler
	bindings map[string]string
}

// ID 返回协议标识
func (d *Definition) ID() types.ProtocolID {
	return d.id
}

// Description 返回协议描述
func (d *Definition) Description() string {
	return d.description
}

// Package 返回 protobuf 包名
func (d *Definition) Package() string {
	return string(d.file.Package())
}

// Len 返回消息数量
func (d *Definition) Len() int {
	return len(d.messages)
}

// MessageNames 按 message_type 顺序返回消息名
func (d *Definition) MessageNames() []string {
	names := make([]string, len(d.messages))
	for i, md := range d.messages {
		names[i] = string(md.Name())
	}
	return names
}

// FindMessageType 按名称查找 message_type
func (d *Definition) FindMessageType(name string) (types.MessageType, error) {
	typ, ok := d.byName[name]
	if !ok {
		return 0, types.Errorf(ErrMessageNotFound, "%s: %q", d.id, name)
	}
	return typ, nil
}

// MessageName 返回 message_type 对应的消息名
func (d *Definition) MessageName(typ types.MessageType) (string, error) {
	md, err := d.descriptor(typ)
	if err != nil {
		return "", err
	}
	return string(md.Name()), nil
}

// Descriptor 返回消息描述符
func (d *Definition) Descriptor(name string) (protoreflect.MessageDescriptor, bool) {
	typ, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return d.messages[typ], true
}

// NewMessage 按消息名创建空消息
func (d *Definition) NewMessage(name string) (proto.Message, error) {
	typ, ok := d.byName[name]
	if !ok {
		return nil, types.Errorf(ErrUnknownMessage, "%s: %q", d.id, name)
	}
	return dynamicpb.NewMessage(d.messages[typ]), nil
}

// NewMessageByType 按 message_type 创建空消息
func (d *Definition) NewMessageByType(typ types.MessageType) (proto.Message, error) {
	md, err := d.descriptor(typ)
	if err != nil {
		return nil, err
	}
	return dynamicpb.NewMessage(md), nil
}

// Handler 返回绑定到消息的处理器
func (d *Definition) Handler(name string) (pkgif.Handler, bool) {
	h, ok := d.handlers[name]
	return h, ok
}

// Bindings 返回消息名 -> 处理器名
func (d *Definition) Bindings() map[string]string {
	out := make(map[string]string, len(d.bindings))
	for k, v := range d.bindings {
		out[k] = v
	}
	return out
}

// Marshal 编码载荷
//
// payload 的描述符必须是 name 对应的消息；nil 载荷按空消息编码。
func (d *Definition) Marshal(name string, payload proto.Message) (types.MessageType, []byte, error) {
	typ, ok := d.byName[name]
	if !ok {
		return 0, nil, types.Errorf(ErrUnknownMessage, "%s: %q", d.id, name)
	}
	if payload == nil {
		return typ, nil, nil
	}
	want := d.messages[typ].FullName()
	if got := payload.ProtoReflect().Descriptor().FullName(); got != want {
		return 0, nil, types.Errorf(ErrPayloadMismatch, "%s: want %s, got %s", d.id, want, got)
	}
	data, err := proto.Marshal(payload)
	if err != nil {
		return 0, nil, types.Errorf(types.ErrInvalidArgument, "%s: encode %s: %v", d.id, name, err)
	}
	return typ, data, nil
}

// Unmarshal 按 message_type 解码载荷
func (d *Definition) Unmarshal(typ types.MessageType, data []byte) (string, proto.Message, error) {
	md, err := d.descriptor(typ)
	if err != nil {
		return "", nil, err
	}
	msg := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(data, msg); err != nil {
		return "", nil, types.Errorf(types.ErrInvalidArgument, "%s: decode %s: %v", d.id, md.Name(), err)
	}
	return string(md.Name()), msg, nil
}

// Describe 返回消息名 -> 描述符的 JSON 表示
func (d *Definition) Describe() map[string]string {
	out := make(map[string]string, len(d.messages))
	for _, md := range d.messages {
		data, err := protojson.Marshal(protodesc.ToDescriptorProto(md))
		if err != nil {
			logger.Warn("描述消息失败", "protocol", d.id, "message", md.Name(), "err", err)
			continue
		}
		out[string(md.Name())] = string(data)
	}
	return out
}

func (d *Definition) descriptor(typ types.MessageType) (protoreflect.MessageDescriptor, error) {
	if int(typ) >= len(d.messages) {
		return nil, types.Errorf(ErrUnknownMessageType, "%s: %d", d.id, typ)
	}
	return d.messages[typ], nil
}

// ============================================================================
//                              编译
// ============================================================================

// Compile 把清单编译为协议定义
//
// handlers 是处理器目录；绑定引用的处理器必须存在于目录中。
func Compile(id types.ProtocolID, m *Manifest, handlers map[string]pkgif.Handler) (*Definition, error) {
	if m.ID != string(id) {
		return nil, malformed(id, "manifest id %q does not match", m.ID)
	}
	if len(m.Messages) == 0 {
		return nil, malformed(id, "no messages")
	}
	if len(m.Messages) > types.MaxMessageTypes {
		return nil, malformed(id, "%d messages exceed limit %d", len(m.Messages), types.MaxMessageTypes)
	}

	pkg := m.Package
	if pkg == "" {
		pkg = packageName(id)
	}

	if !protoreflect.FullName(pkg).IsValid() {
		return nil, malformed(id, "invalid package %q", pkg)
	}

	names := make(map[string]types.MessageType, len(m.Messages))
	for i, msg := range m.Messages {
		if msg.Name == "" {
			return nil, malformed(id, "message %d has no name", i)
		}
		if !protoreflect.Name(msg.Name).IsValid() {
			return nil, malformed(id, "invalid message name %q", msg.Name)
		}
		if _, dup := names[msg.Name]; dup {
			return nil, malformed(id, "duplicate message %q", msg.Name)
		}
		names[msg.Name] = types.MessageType(i)
	}

	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(string(id) + ".proto"),
		Package: proto.String(pkg),
		Syntax:  proto.String("proto3"),
	}
	for _, msg := range m.Messages {
		dp := &descriptorpb.DescriptorProto{Name: proto.String(msg.Name)}
		seenName := make(map[string]struct{}, len(msg.Fields))
		seenNumber := make(map[int32]struct{}, len(msg.Fields))
		for j, f := range msg.Fields {
			fd, err := fieldProto(id, pkg, msg.Name, j, f, names)
			if err != nil {
				return nil, err
			}
			if _, dup := seenName[fd.GetName()]; dup {
				return nil, malformed(id, "%s: duplicate field %q", msg.Name, fd.GetName())
			}
			if _, dup := seenNumber[fd.GetNumber()]; dup {
				return nil, malformed(id, "%s: duplicate field number %d", msg.Name, fd.GetNumber())
			}
			seenName[fd.GetName()] = struct{}{}
			seenNumber[fd.GetNumber()] = struct{}{}
			dp.Field = append(dp.Field, fd)
		}
		fdp.MessageType = append(fdp.MessageType, dp)
	}

	file, err := protodesc.NewFile(fdp, new(protoregistry.Files))
	if err != nil {
		return nil, malformed(id, "%v", err)
	}

	def := &Definition{
		id:          id,
		description: m.Description,
		file:        file,
		messages:    make([]protoreflect.MessageDescriptor, 0, file.Messages().Len()),
		byName:      names,
		handlers:    make(map[string]pkgif.Handler, len(m.Handlers)),
		bindings:    make(map[string]string, len(m.Handlers)),
	}
	for i := range file.Messages().Len() {
		def.messages = append(def.messages, file.Messages().Get(i))
	}

	for msgName, handlerName := range m.Handlers {
		if _, ok := names[msgName]; !ok {
			return nil, malformed(id, "binding for unknown message %q", msgName)
		}
		h, ok := handlers[handlerName]
		if !ok {
			return nil, malformed(id, "unknown handler %q for message %q", handlerName, msgName)
		}
		def.handlers[msgName] = h
		def.bindings[msgName] = handlerName
	}
	return def, nil
}

func fieldProto(id types.ProtocolID, pkg, msgName string, index int, f FieldSpec, names map[string]types.MessageType) (*descriptorpb.FieldDescriptorProto, error) {
	if f.Name == "" {
		return nil, malformed(id, "%s: field %d has no name", msgName, index)
	}
	if !protoreflect.Name(f.Name).IsValid() {
		return nil, malformed(id, "%s: invalid field name %q", msgName, f.Name)
	}
	number := f.Number
	if number == 0 {
		number = int32(index + 1)
	}
	if !protowire.Number(number).IsValid() {
		return nil, malformed(id, "%s.%s: invalid field number %d", msgName, f.Name, number)
	}
	label := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	if f.Repeated {
		label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED
	}
	fd := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(f.Name),
		Number: proto.Int32(number),
		Label:  label.Enum(),
	}
	if typ, ok := scalarTypes[f.Type]; ok {
		fd.Type = typ.Enum()
		return fd, nil
	}
	if _, ok := names[f.Type]; ok {
		fd.Type = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum()
		fd.TypeName = proto.String("." + pkg + "." + f.Type)
		return fd, nil
	}
	return nil, malformed(id, "%s.%s: unknown type %q", msgName, f.Name, f.Type)
}

// packageName 把协议标识转换为合法的 protobuf 包名
func packageName(id types.ProtocolID) string {
	var b strings.Builder
	for i, r := range string(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('p')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// sortedIDs 返回排序后的协议标识
func sortedIDs[V any](m map[types.ProtocolID]V) []types.ProtocolID {
	ids := make([]types.ProtocolID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
