// Package metrics 提供基于 Prometheus 的监控指标
//
// 两组收集器：
//   - Node：按节点标签统计消息收发、字节数、发送失败、解码失败、处理器错误与已连接对端数
//   - Simulator：模拟投递数、丢弃数与当前虚拟时间
//
// 收集器注册到调用方提供的 prometheus.Registerer，不使用全局注册表，
// 便于测试创建隔离实例。所有方法对 nil 接收者安全，未启用指标时直接传 nil。
//
//	reg := prometheus.NewRegistry()
//	nodes, _ := metrics.NewNodeCollectors(reg)
//	m := nodes.For("alice")
//	m.MessageSent(128)
package metrics
