package node

import (
	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/types"
)

// emitters 节点事件发射器（总线为空时全部为 nil）
type emitters struct {
	connected    pkgif.Emitter
	disconnected pkgif.Emitter
	connErr      pkgif.Emitter
	sent         pkgif.Emitter
	decodeErr    pkgif.Emitter
	handlerErr   pkgif.Emitter
}

func newEmitters(bus pkgif.EventBus) (*emitters, error) {
	e := &emitters{}
	if bus == nil {
		return e, nil
	}

	var err error
	for _, b := range []struct {
		dst *pkgif.Emitter
		typ any
	}{
		{&e.connected, new(types.EvtPeerConnected)},
		{&e.disconnected, new(types.EvtPeerDisconnected)},
		{&e.connErr, new(types.EvtPeerConnectionError)},
		{&e.sent, new(types.EvtMessageSent)},
		{&e.decodeErr, new(types.EvtMessageDecodeError)},
		{&e.handlerErr, new(types.EvtHandlerError)},
	} {
		em, emErr := bus.Emitter(b.typ)
		if emErr != nil {
			err = multierr.Append(err, emErr)
			continue
		}
		*b.dst = em
	}
	if err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

func emit(em pkgif.Emitter, evt any) {
	if em == nil {
		return
	}
	if err := em.Emit(evt); err != nil {
		logger.Debug("发射事件失败", "err", err)
	}
}

func (e *emitters) close() error {
	var err error
	for _, em := range []pkgif.Emitter{e.connected, e.disconnected, e.connErr, e.sent, e.decodeErr, e.handlerErr} {
		if em != nil {
			err = multierr.Append(err, em.Close())
		}
	}
	return err
}
