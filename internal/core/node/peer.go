package node

import (
	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/types"
)

// PeerInfo 对端信息快照
type PeerInfo struct {
	ID        types.PeerID
	Address   string
	State     types.PeerState
	Direction types.Direction

	// Conn 当前连接标识，未连接时为 0
	Conn types.ConnectionID
}

// peer 注册表条目（由 Node.mu 保护）
type peer struct {
	id        types.PeerID
	address   string
	state     types.PeerState
	direction types.Direction

	// conn 当前拥有的 Transport；同一时刻至多一个
	conn pkgif.Transport
}

func (p *peer) info() PeerInfo {
	info := PeerInfo{
		ID:        p.id,
		Address:   p.address,
		State:     p.state,
		Direction: p.direction,
	}
	if p.conn != nil {
		info.Conn = p.conn.ID()
	}
	return info
}

// owns 判断 t 是否仍是该对端的当前连接
func (p *peer) owns(t pkgif.Transport) bool {
	return p.conn != nil && p.conn == t
}
