package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              错误类别
// ============================================================================

// 所有公开操作返回的错误都包装且只包装其中一个类别，
// 调用方用 errors.Is(err, types.ErrNotFound) 判断。
var (
	// ErrInvalidArgument 参数无效（未知消息名、格式错误的地址、格式错误的协议定义）
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound 对象不存在（未知对端、未加载的协议、未知消息类型）
	ErrNotFound = errors.New("not found")

	// ErrInternal 内部错误（资源耗尽、传输构造失败）
	ErrInternal = errors.New("internal error")

	// ErrConnection 连接错误（真实或模拟的传输故障，经完成事件上报）
	ErrConnection = errors.New("connection error")
)

// kindError 带类别的错误
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}

// NewError 创建属于指定类别的哨兵错误
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Errorf 创建属于指定类别的格式化错误
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// KindOf 返回错误所属类别，nil 返回 nil，无法识别时归为 ErrInternal
func KindOf(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidArgument):
		return ErrInvalidArgument
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrConnection):
		return ErrConnection
	default:
		return ErrInternal
	}
}

// KindName 返回错误类别的短名称（用于日志与指标标签）
func KindName(err error) string {
	switch KindOf(err) {
	case nil:
		return "ok"
	case ErrInvalidArgument:
		return "invalid_argument"
	case ErrNotFound:
		return "not_found"
	case ErrConnection:
		return "connection"
	default:
		return "internal"
	}
}

// ============================================================================
//                              连接相关错误
// ============================================================================

var (
	// ErrNotConnected 未连接
	ErrNotConnected = NewError(ErrConnection, "not connected")

	// ErrConnectionClosed 连接已关闭（Disconnect 取消的未完成操作）
	ErrConnectionClosed = NewError(ErrConnection, "connection closed")

	// ErrUnreachable 目标地址不可达
	ErrUnreachable = NewError(ErrConnection, "address unreachable")

	// ErrInvalidAddress 地址格式错误
	ErrInvalidAddress = NewError(ErrInvalidArgument, "invalid address")

	// ErrAlreadyInitialized 重复初始化
	ErrAlreadyInitialized = NewError(ErrInternal, "transport already initialized")
)
