package xttl_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/omeyang/xttl/pkg/storage/xttl"
)

func Example() {
	ctx := context.Background()
	c := xttl.New[string](xttl.WithTTL(5 * time.Minute))
	defer c.Close()

	c.Set(ctx, "greeting", "hello")
	if v, ok := c.Get(ctx, "greeting"); ok {
		fmt.Println("Found:", v)
	}

	fmt.Println("Deleted:", c.Del(ctx, "greeting", "missing"))
	fmt.Println("Size:", c.Size())

	// Output:
	// Found: hello
	// Deleted: 1
	// Size: 0
}

func Example_refresh() {
	ctx := context.Background()
	c := xttl.New[string]()
	defer c.Close()

	// 没有值时刷新函数在写入前执行一次，过期后再次执行以续期
	c.Push(ctx, "user:1", xttl.None[string](), xttl.PushTTL(time.Hour),
		xttl.PushRefresh[string](func(e *xttl.Entry[string]) {
			e.Renew(xttl.Raw(strings.ToUpper(e.Key)))
		}),
	)

	v, _ := c.Get(ctx, "user:1")
	fmt.Println(v)

	// Output:
	// USER:1
}

func Example_getMulti() {
	ctx := context.Background()
	c := xttl.New[int]()
	defer c.Close()

	c.Set(ctx, "a", 1)
	c.Set(ctx, "b", 2)

	got := c.GetMulti(ctx, []string{"a", "b", "c"})
	keys := make([]string, 0, len(got))
	for k := range got {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := got[k]; v != nil {
			fmt.Printf("%s=%d\n", k, *v)
		} else {
			fmt.Printf("%s=<nil>\n", k)
		}
	}

	// Output:
	// a=1
	// b=2
	// c=<nil>
}

func Example_listener() {
	ctx := context.Background()
	c := xttl.New[string](xttl.WithListener[string](xttl.ListenerFuncs[string]{
		Error: func(err error) { fmt.Println("error:", err) },
	}))
	defer c.Close()

	ok := c.Push(ctx, "empty", xttl.None[string]())
	fmt.Println("pushed:", ok)

	// Output:
	// error: xttl: push missing a value or a refresh function: key "empty"
	// pushed: false
}

func ExampleOptionsFromMap() {
	c := xttl.New[string](xttl.OptionsFromMap(map[string]any{
		"ttl":         300,
		"sweepPeriod": "0s",
		"lastUsage":   true,
	})...)
	defer c.Close()

	cfg := c.Options()
	fmt.Println(cfg.TTL, cfg.SweepPeriod, cfg.LastUsage)

	// Output:
	// 5m0s 0s true
}
