// Package keylock 提供 xttl 内部使用的按 key 互斥锁。
//
// 同一 key 的过期检查、写入与删除通过 Locker 串行化；
// 不同 key 之间互不阻塞。结构沿用分片 map + 容量为 1 的 channel：
//
//   - 发送成功 = 获取锁，接收 = 释放锁
//   - 引用计数归零时条目从分片中移除，空闲 key 不占内存
//   - Close 唤醒所有等待者并使其返回 ErrClosed
//
// 锁不可重入：持有 key 的 goroutine 再次对同一 key 调用 Lock 会阻塞到 ctx 结束。
package keylock
