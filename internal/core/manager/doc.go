// Package manager 管理进程内的节点目录
//
// Manager 按 NodeID 保存运行中的节点，负责创建（加载协议、构造节点、
// 可选监听）、查询、列举与移除：
//
//	m := manager.New(manager.Config{Node: node.DefaultConfig()}, manager.Params{
//	    Registry:   reg,
//	    Transports: resolver,
//	})
//	n, err := m.LaunchNode("alice", "pingpong", "sim://alice")
//
// RemoveNode 为硬移除：停止监听、断开全部对端并等待连接 goroutine 退出后
// 才从目录中删除。空 ID 的节点自动分配 UUID。
package manager
