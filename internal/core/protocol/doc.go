// Package protocol 实现智能协议的加载与注册
//
// 智能协议是一份带标识的定义：一组消息结构（按声明顺序编号为 message_type）
// 以及消息到处理器的绑定。定义以 YAML 清单描述：
//
//	id: pingpong
//	package: pingpong
//	messages:
//	  - name: Ping
//	    fields:
//	      - {name: seq, type: uint32, number: 1}
//	handlers:
//	  Ping: pingpong.on_ping
//
// 清单被编译为 proto3 文件描述符（descriptorpb -> protodesc），
// 消息实例由 dynamicpb 构造，因此线上载荷就是标准 protobuf 编码。
//
// 处理器名引用 Registry 的处理器目录（RegisterHandler）；
// 绑定了未知处理器或未知消息的定义视为格式错误。
//
// # 使用
//
//	reg := protocol.NewRegistry(protocol.DirSource{Root: "protocols"})
//	reg.RegisterHandler("pingpong.on_ping", onPing)
//	if err := reg.Load("pingpong"); err != nil { ... }
//	def, _ := reg.Get("pingpong")
package protocol
