package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace 指标命名空间
const Namespace = "smartnode"

// ============================================================================
//                              节点指标
// ============================================================================

// NodeCollectors 所有节点共享的指标向量
type NodeCollectors struct {
	sent          *prometheus.CounterVec
	received      *prometheus.CounterVec
	bytesOut      *prometheus.CounterVec
	bytesIn       *prometheus.CounterVec
	sendFailures  *prometheus.CounterVec
	decodeErrors  *prometheus.CounterVec
	handlerErrors *prometheus.CounterVec
	peers         *prometheus.GaugeVec
}

// NewNodeCollectors 创建并注册节点指标
func NewNodeCollectors(reg prometheus.Registerer) (*NodeCollectors, error) {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "node",
			Name:      name,
			Help:      help,
		}, []string{"node"})
	}
	c := &NodeCollectors{
		sent:          counter("messages_sent_total", "成功发送的协议消息数"),
		received:      counter("messages_received_total", "成功解码的入站协议消息数"),
		bytesOut:      counter("bytes_sent_total", "发送的帧字节数"),
		bytesIn:       counter("bytes_received_total", "接收的原始字节数"),
		sendFailures:  counter("send_failures_total", "发送失败次数"),
		decodeErrors:  counter("decode_errors_total", "入站帧解码失败次数"),
		handlerErrors: counter("handler_errors_total", "消息处理器错误次数"),
		peers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "node",
			Name:      "connected_peers",
			Help:      "已连接对端数",
		}, []string{"node"}),
	}
	if reg != nil {
		for _, col := range []prometheus.Collector{
			c.sent, c.received, c.bytesOut, c.bytesIn,
			c.sendFailures, c.decodeErrors, c.handlerErrors, c.peers,
		} {
			if err := register(reg, col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// For 返回绑定到某个节点的指标
func (c *NodeCollectors) For(node string) *Node {
	if c == nil {
		return nil
	}
	return &Node{
		sent:          c.sent.WithLabelValues(node),
		received:      c.received.WithLabelValues(node),
		bytesOut:      c.bytesOut.WithLabelValues(node),
		bytesIn:       c.bytesIn.WithLabelValues(node),
		sendFailures:  c.sendFailures.WithLabelValues(node),
		decodeErrors:  c.decodeErrors.WithLabelValues(node),
		handlerErrors: c.handlerErrors.WithLabelValues(node),
		peers:         c.peers.WithLabelValues(node),
		release: func() {
			for _, vec := range []*prometheus.CounterVec{
				c.sent, c.received, c.bytesOut, c.bytesIn,
				c.sendFailures, c.decodeErrors, c.handlerErrors,
			} {
				vec.DeleteLabelValues(node)
			}
			c.peers.DeleteLabelValues(node)
		},
	}
}

// Node 单个节点的指标
type Node struct {
	sent          prometheus.Counter
	received      prometheus.Counter
	bytesOut      prometheus.Counter
	bytesIn       prometheus.Counter
	sendFailures  prometheus.Counter
	decodeErrors  prometheus.Counter
	handlerErrors prometheus.Counter
	peers         prometheus.Gauge
	release       func()
}

// MessageSent 记录一次成功发送
func (m *Node) MessageSent(frameBytes int) {
	if m == nil {
		return
	}
	m.sent.Inc()
	m.bytesOut.Add(float64(frameBytes))
}

// SendFailed 记录一次发送失败
func (m *Node) SendFailed() {
	if m == nil {
		return
	}
	m.sendFailures.Inc()
}

// BytesReceived 记录收到的原始字节
func (m *Node) BytesReceived(n int) {
	if m == nil {
		return
	}
	m.bytesIn.Add(float64(n))
}

// MessageReceived 记录一条成功解码的消息
func (m *Node) MessageReceived() {
	if m == nil {
		return
	}
	m.received.Inc()
}

// DecodeError 记录一次解码失败
func (m *Node) DecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}

// HandlerError 记录一次处理器错误
func (m *Node) HandlerError() {
	if m == nil {
		return
	}
	m.handlerErrors.Inc()
}

// SetConnectedPeers 设置已连接对端数
func (m *Node) SetConnectedPeers(n int) {
	if m == nil {
		return
	}
	m.peers.Set(float64(n))
}

// Release 删除该节点的所有标签序列（节点移除时调用）
func (m *Node) Release() {
	if m == nil || m.release == nil {
		return
	}
	m.release()
}

// ============================================================================
//                              模拟器指标
// ============================================================================

// Simulator 模拟器指标
type Simulator struct {
	delivered   prometheus.Counter
	dropped     prometheus.Counter
	virtualTime prometheus.Gauge
}

// NewSimulator 创建并注册模拟器指标
func NewSimulator(reg prometheus.Registerer) (*Simulator, error) {
	m := &Simulator{
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "simulator",
			Name:      "deliveries_total",
			Help:      "已投递的模拟消息数",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "simulator",
			Name:      "drops_total",
			Help:      "按丢包率丢弃的模拟消息数",
		}),
		virtualTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "simulator",
			Name:      "virtual_time_seconds",
			Help:      "当前虚拟时间",
		}),
	}
	if reg != nil {
		for _, col := range []prometheus.Collector{m.delivered, m.dropped, m.virtualTime} {
			if err := register(reg, col); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Delivered 记录一次投递
func (m *Simulator) Delivered() {
	if m == nil {
		return
	}
	m.delivered.Inc()
}

// Dropped 记录一次丢弃
func (m *Simulator) Dropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

// SetVirtualTime 更新虚拟时间
func (m *Simulator) SetVirtualTime(d time.Duration) {
	if m == nil {
		return
	}
	m.virtualTime.Set(d.Seconds())
}

// register 注册收集器，已注册的同名收集器视为成功
func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}
