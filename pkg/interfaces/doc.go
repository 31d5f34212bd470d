// Package interfaces 定义 smartnode 的公共接口
//
// 文件组织（一个接口文件对应一个实现目录）：
//
//   - transport.go - Transport / Acceptor / TransportFactory 及传输事件
//     实现：internal/core/transport/tcp（真实）、internal/core/simulator（模拟）
//   - protocol.go  - 智能协议处理器 Handler 与 Sender
//     实现：internal/core/protocol（处理器目录）、internal/core/node（Sender）
//   - eventbus.go  - 事件总线
//     实现：internal/core/eventbus
//
// 所有异步操作都不在调用点返回错误：结果通过返回的一次性句柄
// 与 Transport.Events() 事件流各交付一次，二者携带同一个结果。
package interfaces
