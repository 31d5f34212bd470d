// Package smartnode 提供智能协议节点运行时
//
// 运行时用 fx 组装以下组件，并负责它们的启动与关闭：
//
//   - 传输注册表：按地址 kind 分派到 TCP 传输或模拟器
//   - 模拟器：确定性的虚拟网络，可随运行时自动推进
//   - 协议注册表：从定义目录加载协议清单，维护处理器目录
//   - 事件总线：节点上报对端状态与错误
//   - 指标：Prometheus 收集器
//   - 节点管理器：按配置创建节点
//
// # 快速开始
//
//	rt, err := smartnode.New(
//	    smartnode.WithConfigFile("smartnode.yaml"),
//	    smartnode.WithHandler("chat.on_say", onSay),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	alice, _ := rt.LaunchNode("alice", "chat", "sim://alice")
//	bob, _ := rt.LaunchNode("bob", "chat", "")
//	_ = bob.AddPeer(1, "sim://alice?latency=20ms")
//	_ = bob.Connect(1)
//	rt.Simulator().RunUntilIdle()
//
// # 配置
//
// 配置来自 config.Config（JSON 或 YAML），选项按调用顺序覆盖：
//
//	smartnode.New(
//	    smartnode.WithPreset("simulation"),
//	    smartnode.WithConfig(cfg),
//	)
package smartnode
