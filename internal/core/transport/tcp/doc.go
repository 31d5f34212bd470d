// Package tcp 提供基于 TCP 的真实传输实现
//
// 每个 Transport 对应一条 TCP 连接，连接建立后启动两个 goroutine：
//   - 写循环：按提交顺序逐个写出发送请求，写完一个再完成一个
//   - 读循环：只在有挂起的读取时读 socket，读到的字节交给队首读取
//
// 环境错误（不可达、重置）以 ConnectionErrorEvent 上报，随后连接拆除；
// 对端正常关闭只产生 DisconnectedEvent。
package tcp
