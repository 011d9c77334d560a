package keylock

import "errors"

// ErrClosed 表示 Locker 已关闭。
var ErrClosed = errors.New("keylock: closed")
