// Package node 实现智能协议节点
//
// Node 是可寻址的协议参与者：拥有零或一个 Acceptor、一个对端注册表，
// 以及绑定的协议定义（*protocol.Definition）。
//
// # 对端状态机
//
//	Known → Connecting → Connected → Disconnected
//	                ↘ (连接失败) ↗        ↓
//	                              Connecting（重连）
//
// Known 是唯一的初始状态；RemovePeer 随时可删除对端（先断开连接）。
//
// # 线上帧格式
//
//	uvarint(len(body)) ‖ body
//	body = message_type (1 字节) ‖ protobuf 载荷
//
// message_type 是消息在协议定义中的声明序号。超过 Config.MaxFrameSize 的帧被丢弃并上报。
//
// # 并发
//
// 每个存活的 Transport 由一个 goroutine 顺序消费其事件：保持一个读取挂起、
// 重组帧、并在该 goroutine 上同步执行处理器。处理器不得阻塞，
// 也不得调用 Close。注册表由一把 sync.RWMutex 保护，
// 调用处理器与发射事件时不持有锁。
//
// 同步前置条件错误（未知对端、状态不符、未知消息名）由方法直接返回；
// 异步结果（连接建立、断开、发送完成、解码失败、处理器错误）发布到事件总线。
package node
