// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xttl: 带过期时间的进程内 KV 存储，支持刷新函数续期与后台清扫
package storage
