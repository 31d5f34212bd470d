// Package transport 提供传输地址解析与传输工厂注册表
//
// 地址格式为 "kind://rest"：
//
//	tcp://127.0.0.1:9000
//	sim://alice?latency=10ms&jitter=2ms&loss=0.1
//
// Registry 按 kind 把地址分派给对应的 TransportFactory，
// 节点只依赖 pkg/interfaces.TransportResolver，不感知具体实现。
//
// 实现：
//   - tcp/               真实 TCP 传输
//   - ../simulator/      确定性模拟传输（kind "sim"）
package transport
