package xttl

// Kind 标识 Value 中存放的内容。
type Kind uint8

const (
	// KindNone 表示没有值（对应缺省/空值）。
	KindNone Kind = iota
	// KindRaw 表示直接存放的值。
	KindRaw
	// KindProducer 表示零参数的生产函数，每次读取时调用以得到可见值。
	KindProducer
)

// String 返回 Kind 的可读名称。
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRaw:
		return "raw"
	case KindProducer:
		return "producer"
	default:
		return "unknown"
	}
}

// Value 是条目值的带标签变体：直接值或生产函数，二者互斥。
// 零值表示"没有值"。
type Value[V any] struct {
	kind    Kind
	raw     V
	produce func() V
}

// Raw 构造直接值。
func Raw[V any](v V) Value[V] {
	return Value[V]{kind: KindRaw, raw: v}
}

// Producer 构造生产函数值，fn 为 nil 时等同于没有值。
func Producer[V any](fn func() V) Value[V] {
	if fn == nil {
		return Value[V]{}
	}
	return Value[V]{kind: KindProducer, produce: fn}
}

// None 返回没有值的 Value。
func None[V any]() Value[V] {
	return Value[V]{}
}

// Kind 返回值的标签。
func (v Value[V]) Kind() Kind {
	return v.kind
}

// IsAbsent 报告是否没有值。
func (v Value[V]) IsAbsent() bool {
	return v.kind == KindNone
}

// Resolve 返回可见值：生产函数会被调用，没有值时返回零值。
func (v Value[V]) Resolve() V {
	switch v.kind {
	case KindRaw:
		return v.raw
	case KindProducer:
		return v.produce()
	default:
		var zero V
		return zero
	}
}
