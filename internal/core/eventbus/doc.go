// Package eventbus 实现进程内事件总线
//
// 节点通过总线向上层报告异步结果（连接建立、断开、发送失败、解码失败、
// 处理器错误），上层按事件类型订阅：
//
//	sub, _ := bus.Subscribe(new(types.EvtPeerConnected))
//	defer sub.Close()
//	for evt := range sub.Out() {
//	    e := evt.(types.EvtPeerConnected)
//	    // ...
//	}
//
// 一个订阅可以同时监听多个类型：
//
//	sub, _ := bus.Subscribe([]any{new(types.EvtPeerConnected), new(types.EvtPeerDisconnected)})
//
// 发射永不阻塞：订阅者缓冲区满时丢弃事件并按节流记录警告。
package eventbus
