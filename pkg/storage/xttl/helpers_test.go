package xttl

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock 是可手动推进的时钟。
type fakeClock struct {
	now atomic.Int64
}

func (f *fakeClock) Now() time.Duration {
	return time.Duration(f.now.Load())
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now.Add(int64(d))
}

// recorder 记录收到的通知。
type recorder struct {
	mu     sync.Mutex
	events []string
	errs   []error
}

var _ Listener[string] = (*recorder)(nil)

func (r *recorder) add(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) OnPush(key string, _ *Entry[string]) { r.add("push:" + key) }
func (r *recorder) OnGet(key string, v string)          { r.add(fmt.Sprintf("get:%s=%s", key, v)) }
func (r *recorder) OnDel(key string)                    { r.add("del:" + key) }
func (r *recorder) OnClear()                            { r.add("clear") }
func (r *recorder) OnExpired(key string, _ *Entry[string]) {
	r.add("expired:" + key)
}

func (r *recorder) OnError(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// newTestCache 创建使用假时钟并订阅 recorder 的缓存，测试结束时关闭。
func newTestCache(t *testing.T, opts ...Option) (*Cache[string], *fakeClock, *recorder) {
	t.Helper()
	clk := &fakeClock{}
	rec := &recorder{}
	all := append([]Option{WithClock(clk), WithListener[string](rec)}, opts...)
	c := New[string](all...)
	t.Cleanup(c.Close)
	return c, clk, rec
}
