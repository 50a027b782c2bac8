package rpcvalue

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBinary
	KindArray
	KindMap
	KindExt
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindExt:
		return "ext"
	default:
		return "unknown"
	}
}

// KV is one entry of a map value. Map entries keep their order.
type KV struct {
	Key   Value
	Value Value
}

// Value is an immutable tagged variant. The zero Value is nil.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	bin  []byte
	arr  []Value
	m    []KV
	ext  any
}

func Nil() Value              { return Value{} }
func Bool(v bool) Value       { return Value{kind: KindBool, b: v} }
func Int(v int64) Value       { return Value{kind: KindInt, i: v} }
func Uint(v uint64) Value     { return Value{kind: KindUint, u: v} }
func Float(v float64) Value   { return Value{kind: KindFloat, f: v} }
func String(v string) Value   { return Value{kind: KindString, s: v} }
func Binary(v []byte) Value   { return Value{kind: KindBinary, bin: v} }
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }
func Map(entries ...KV) Value { return Value{kind: KindMap, m: entries} }
func Ext(handle any) Value    { return Value{kind: KindExt, ext: handle} }
func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNil() bool   { return v.kind == KindNil }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsInt returns integer payloads that fit in an int64.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindUint:
		if v.u > math.MaxInt64 {
			return 0, false
		}
		return int64(v.u), true
	default:
		return 0, false
	}
}

// AsFloat returns float payloads and widens integers.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindUint:
		return float64(v.u), true
	default:
		return 0, false
	}
}

// AsString returns string payloads. Binary payloads are accepted as UTF-8
// because Neovim sends some strings as msgpack bin.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindString:
		return v.s, true
	case KindBinary:
		return string(v.bin), true
	default:
		return "", false
	}
}

// AsBinary returns the raw bytes of binary or string payloads.
func (v Value) AsBinary() ([]byte, bool) {
	switch v.kind {
	case KindBinary:
		return v.bin, true
	case KindString:
		return []byte(v.s), true
	default:
		return nil, false
	}
}

// AsArray returns the elements of an array value. The slice is shared.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsMap returns the entries of a map value. The slice is shared.
func (v Value) AsMap() ([]KV, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.m, true
}

// AsExt returns the opaque extension payload.
func (v Value) AsExt() (any, bool) {
	if v.kind != KindExt {
		return nil, false
	}
	return v.ext, true
}

// Lookup returns the value stored under a string key in a map value.
func (v Value) Lookup(key string) (Value, bool) {
	for _, kv := range v.m {
		if k, ok := kv.Key.AsString(); ok && k == key {
			return kv.Value, true
		}
	}
	return Value{}, false
}

// Len reports the element count of arrays and maps, the byte length of
// strings and binaries, and zero otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindMap:
		return len(v.m)
	case KindString:
		return len(v.s)
	case KindBinary:
		return len(v.bin)
	default:
		return 0
	}
}

// Equal reports deep equality. Numbers of different kinds are not equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindUint:
		return v.u == o.u
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBinary:
		return bytes.Equal(v.bin, o.bin)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for i := range v.m {
			if !v.m[i].Key.Equal(o.m[i].Key) || !v.m[i].Value.Equal(o.m[i].Value) {
				return false
			}
		}
		return true
	case KindExt:
		return fmt.Sprint(v.ext) == fmt.Sprint(o.ext)
	default:
		return false
	}
}

// String renders the value for logs.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case KindNil:
		sb.WriteString("nil")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindUint:
		sb.WriteString(strconv.FormatUint(v.u, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindBinary:
		fmt.Fprintf(sb, "bin(%d)", len(v.bin))
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.write(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, kv := range v.m {
			if i > 0 {
				sb.WriteString(", ")
			}
			kv.Key.write(sb)
			sb.WriteString(": ")
			kv.Value.write(sb)
		}
		sb.WriteByte('}')
	case KindExt:
		fmt.Fprintf(sb, "ext(%v)", v.ext)
	}
}
