package tcp

import (
	"errors"
	"net"
	"sync"

	"github.com/dep2p/go-smartnode/internal/core/transport"
	"github.com/dep2p/go-smartnode/internal/util/idgen"
	"github.com/dep2p/go-smartnode/internal/util/mailbox"
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/types"
)

var _ pkgif.Acceptor = (*Acceptor)(nil)

// ============================================================================
//                              Acceptor 实现
// ============================================================================

// Acceptor TCP 监听器
type Acceptor struct {
	address string
	cfg     Config
	ids     *idgen.Generator

	mu        sync.Mutex
	listener  net.Listener
	listening bool
	stopped   bool
	accepted  *mailbox.Mailbox[pkgif.Transport]
	wg        sync.WaitGroup
}

func newAcceptor(address string, cfg Config, ids *idgen.Generator) *Acceptor {
	return &Acceptor{
		address:  address,
		cfg:      cfg,
		ids:      ids,
		accepted: mailbox.New[pkgif.Transport](),
	}
}

// Address 返回监听地址（监听后为实际绑定地址）
func (a *Acceptor) Address() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return transport.Format(Kind, a.listener.Addr().String())
	}
	return a.address
}

// Listening 是否正在监听
func (a *Acceptor) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// Accepted 返回入站连接流
func (a *Acceptor) Accepted() <-chan pkgif.Transport {
	return a.accepted.Out()
}

// Listen 绑定并开始接受连接
func (a *Acceptor) Listen() error {
	addr, err := transport.ParseAddress(a.address)
	if err != nil {
		return err
	}
	if addr.Kind != Kind {
		return ErrWrongKind
	}
	if _, _, err := addr.HostPort(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listening || a.stopped {
		return ErrAlreadyListening
	}

	l, err := net.Listen("tcp", addr.Host)
	if err != nil {
		return types.Errorf(types.ErrConnection, "listen %s: %v", addr.Host, err)
	}
	a.listener = l
	a.listening = true

	a.wg.Add(1)
	go a.acceptLoop(l)

	logger.Info("开始监听", "addr", transport.Format(Kind, l.Addr().String()))
	return nil
}

func (a *Acceptor) acceptLoop(l net.Listener) {
	defer a.wg.Done()
	for {
		conn, err := l.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logger.Warn("accept 失败", "err", err)
			}
			return
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetNoDelay(true)
			if a.cfg.KeepAlive > 0 {
				_ = tc.SetKeepAlive(true)
				_ = tc.SetKeepAlivePeriod(a.cfg.KeepAlive)
			}
		}
		t := newAccepted(a.ids.Next(), conn, a.cfg)
		logger.Debug("接受入站连接", "conn", t.ID(), "remote", t.Address())
		if !a.accepted.Put(t) {
			t.Disconnect()
			return
		}
	}
}

// Stop 停止监听，幂等；尚未交付的连接被断开
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.listening = false
	l := a.listener
	a.mu.Unlock()

	if l != nil {
		_ = l.Close()
	}
	a.wg.Wait()

	for _, t := range a.accepted.Abort() {
		t.Disconnect()
	}
}
