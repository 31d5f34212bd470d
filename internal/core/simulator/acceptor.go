package simulator

import (
	"github.com/dep2p/go-smartnode/internal/core/transport"
	"github.com/dep2p/go-smartnode/internal/util/mailbox"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
)

var _ pkgif.Acceptor = (*Acceptor)(nil)

// Acceptor 模拟监听器，以端点名注册到模拟器
type Acceptor struct {
	sim      *Simulator
	address  string
	accepted *mailbox.Mailbox[pkgif.Transport]

	// 以下字段由 sim.mu 保护
	name      string
	listening bool
	stopped   bool
}

// Address 返回监听地址
func (a *Acceptor) Address() string { return a.address }

// Accepted 返回入站连接流
func (a *Acceptor) Accepted() <-chan pkgif.Transport { return a.accepted.Out() }

// Listening 是否正在监听
func (a *Acceptor) Listening() bool {
	a.sim.mu.Lock()
	defer a.sim.mu.Unlock()
	return a.listening
}

// Listen 以端点名注册
func (a *Acceptor) Listen() error {
	addr, err := transport.ParseAddress(a.address)
	if err != nil {
		return err
	}
	if addr.Kind != Kind {
		return ErrWrongKind
	}

	s := a.sim
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.listening || a.stopped {
		return ErrAlreadyListening
	}
	if _, taken := s.acceptors[addr.Host]; taken {
		return ErrAddressInUse
	}
	a.name = addr.Host
	a.listening = true
	s.acceptors[a.name] = a
	logger.Info("模拟端点开始监听", "name", a.name)
	return nil
}

// Stop 注销端点，幂等；尚未交付的连接被断开
func (a *Acceptor) Stop() {
	s := a.sim
	s.mu.Lock()
	if a.stopped {
		s.mu.Unlock()
		return
	}
	a.stopped = true
	a.listening = false
	if s.acceptors[a.name] == a {
		delete(s.acceptors, a.name)
	}
	s.mu.Unlock()

	for _, t := range a.accepted.Abort() {
		t.Disconnect()
	}
}

// offerLocked 交付入站连接，Acceptor 已停止时返回 false
func (a *Acceptor) offerLocked(t *Transport) bool {
	if !a.listening {
		return false
	}
	return a.accepted.Put(t)
}
