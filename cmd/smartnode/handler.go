package main

import (
	"context"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	pkgif "github.com/dep2p/go-smartnode/pkg/interfaces"
	"github.com/dep2p/go-smartnode/pkg/types"
)

// LogHandlerName 内置处理器：以 JSON 记录收到的消息
//
// 协议清单可以把任意消息绑定到它，用于在命令行中观察流量：
//
//	handlers:
//	  Ping: smartnode.log
const LogHandlerName = "smartnode.log"

func logHandler(_ context.Context, s pkgif.Sender, from types.PeerID, msg proto.Message) error {
	body, err := protojson.Marshal(msg)
	if err != nil {
		return err
	}
	logger.Info("收到消息",
		"node", s.ID(),
		"from", from,
		"message", msg.ProtoReflect().Descriptor().Name(),
		"body", string(body))
	return nil
}
