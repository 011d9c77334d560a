package xttl

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// 配置文件中可识别的 key，大小写不敏感。
const (
	ConfigKeyTTL         = "ttl"
	ConfigKeySweepPeriod = "sweepPeriod"
	ConfigKeyLastUsage   = "lastUsage"
	ConfigKeyRefresh     = "refreshFunction"
)

// sweepPeriod 的名称，按优先级排列：规范名在前，其后是历史别名。
var sweepPeriodAliases = []string{ConfigKeySweepPeriod, "checkPeriod", "checkPeriode"}

// OptionsFromMap 把原始配置（通常来自配置文件）转换为选项。
//
//   - ttl：整数秒（整型、整数值的 float64、数字字符串）或 Go 时长字符串（"1m30s"）。
//   - sweepPeriod（别名 checkPeriod）：整数毫秒或 Go 时长字符串。
//   - lastUsage：布尔值或可解析为布尔的字符串。
//   - refreshFunction：RefreshFunc[V] 或 func(*Entry[V])，类型在 New 中按缓存值类型校验。
//
// 每个字段只取一个值：规范名优先于别名，精确匹配优先于忽略大小写的匹配。
// 无效字段被丢弃并保留默认值，对应的错误在构造完成后通过 OnError 通知；
// 构造本身不会失败。未识别的 key 被忽略。
func OptionsFromMap(raw map[string]any) []Option {
	var opts []Option
	if v, ok := lookup(raw, ConfigKeyTTL); ok {
		opts = append(opts, ttlFromRaw(v))
	}
	if v, ok := lookup(raw, sweepPeriodAliases...); ok {
		opts = append(opts, sweepPeriodFromRaw(v))
	}
	if v, ok := lookup(raw, ConfigKeyLastUsage); ok {
		opts = append(opts, lastUsageFromRaw(v))
	}
	if v, ok := lookup(raw, ConfigKeyRefresh); ok {
		opts = append(opts, func(o *options) { o.refresh = v })
	}
	return opts
}

// SweepPeriodFromMap 从原始配置读取清扫周期（规则同 OptionsFromMap），
// 用于配置热更新时调用 [Cache.SetSweepPeriod]。未配置时 ok 为 false。
func SweepPeriodFromMap(raw map[string]any) (d time.Duration, ok bool, err error) {
	v, ok := lookup(raw, sweepPeriodAliases...)
	if !ok {
		return 0, false, nil
	}
	d, err = parseDuration(v, time.Millisecond)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %v", ErrInvalidSweepPeriod, err)
	}
	return d, true, nil
}

// lookup 按 names 的顺序返回第一个存在的字段。同一名称先精确匹配，
// 再忽略大小写匹配；多个 key 仅大小写不同时取字典序最小者。
func lookup(raw map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := raw[name]; ok {
			return v, true
		}
		found, hit := "", false
		for k := range raw {
			if strings.EqualFold(k, name) && (!hit || k < found) {
				found, hit = k, true
			}
		}
		if hit {
			return raw[found], true
		}
	}
	return nil, false
}

func ttlFromRaw(v any) Option {
	d, err := parseDuration(v, time.Second)
	if err != nil {
		return withError(fmt.Errorf("%w: %v", ErrInvalidTTL, err))
	}
	return WithTTL(d)
}

func sweepPeriodFromRaw(v any) Option {
	d, err := parseDuration(v, time.Millisecond)
	if err != nil {
		return withError(fmt.Errorf("%w: %v", ErrInvalidSweepPeriod, err))
	}
	return WithSweepPeriod(d)
}

func lastUsageFromRaw(v any) Option {
	b, err := parseBool(v)
	if err != nil {
		return withError(fmt.Errorf("%w: %v", ErrInvalidLastUsage, err))
	}
	return WithLastUsage(b)
}

func withError(err error) Option {
	return func(o *options) { o.fail(err) }
}

// parseDuration 把整数按 unit 换算为时长，字符串先按整数、再按 time.ParseDuration 解析。
func parseDuration(v any, unit time.Duration) (time.Duration, error) {
	var n int64
	switch x := v.(type) {
	case time.Duration:
		return nonNegative(x)
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows", x)
		}
		n = int64(x)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows", x)
		}
		n = int64(x)
	case float32:
		return fromFloat(float64(x), unit)
	case float64:
		return fromFloat(x, unit)
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			n = i
			break
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer or a duration", x)
		}
		return nonNegative(d)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%d is negative", n)
	}
	if n > int64(math.MaxInt64/unit) {
		return 0, fmt.Errorf("%d overflows", n)
	}
	return time.Duration(n) * unit, nil
}

func fromFloat(f float64, unit time.Duration) (time.Duration, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < 0 {
		return 0, fmt.Errorf("%v is negative", f)
	}
	if f > float64(math.MaxInt64/int64(unit)) {
		return 0, fmt.Errorf("%v overflows", f)
	}
	return time.Duration(f) * unit, nil
}

func nonNegative(d time.Duration) (time.Duration, error) {
	if d < 0 {
		return 0, fmt.Errorf("%v is negative", d)
	}
	return d, nil
}

func parseBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("%q is not a boolean", x)
		}
		return b, nil
	default:
		return false, fmt.Errorf("unsupported type %T", v)
	}
}
