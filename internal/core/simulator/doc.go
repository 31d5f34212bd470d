// Package simulator 实现确定性的虚拟网络
//
// Simulator 拥有所有模拟 Transport（地址 "sim://name"），把发送转换为
// 按虚拟时间排序的离散事件，并推进独立于墙上时间的逻辑时钟。
//
// # 时间与顺序
//
//   - 投递时间 = 当前虚拟时间 + latency + [0, jitter] 内的抖动采样，
//     并钳制为不早于同一方向上一次投递的时间，因此同一有向链路严格 FIFO
//   - 事件按 (时间, 序号) 出堆，同一时刻按调度顺序执行
//   - 随机数源以 Config.Seed 播种；只有 jitter > 0 才采样抖动，只有 loss > 0 才采样丢包，
//     相同配置与输入的两次运行产生完全相同的投递顺序与时间（见 Trace）
//
// # 推进方式
//
//   - Advance(d)：手动推进 d，执行期间所有到期事件
//   - RunUntilIdle()：一直推进到事件队列为空
//   - Start(tick)：由时钟驱动，每个 tick 推进 tick 的虚拟时间；Stop() 停止并拆除所有链路
//
// # 失败
//
// 丢包以 MessageSentEvent{Err: ErrSimulatedLoss} 通知发送方；
// Partition 与 Stop 以 ConnectionErrorEvent 通知两端后拆除连接。
//
// # 锁
//
// 模拟器的链路表、时钟与所有模拟 Transport 的状态由模拟器自己的互斥锁保护，
// 与任何节点的锁无关；事件通过 mailbox 交给拥有者，锁内从不回调外部代码。
package simulator
