package rpcvalue

import (
	"fmt"
	"reflect"
	"sort"
)

// FromAny converts a decoded RPC value into a Value. Named types the codec
// produces for extension payloads (buffer, window and tabpage handles) and
// anything else it does not recognise are kept as KindExt.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Nil()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Uint(uint64(t))
	case uint8:
		return Uint(uint64(t))
	case uint16:
		return Uint(uint64(t))
	case uint32:
		return Uint(uint64(t))
	case uint64:
		return Uint(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return String(t)
	case []byte:
		return Binary(t)
	case []any:
		return Array(FromSlice(t)...)
	case []string:
		out := make([]Value, len(t))
		for i, s := range t {
			out[i] = String(s)
		}
		return Array(out...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]KV, 0, len(t))
		for _, k := range keys {
			entries = append(entries, KV{Key: String(k), Value: FromAny(t[k])})
		}
		return Map(entries...)
	case map[any]any:
		entries := make([]KV, 0, len(t))
		for k, v := range t {
			entries = append(entries, KV{Key: FromAny(k), Value: FromAny(v)})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Key.String() < entries[j].Key.String()
		})
		return Map(entries...)
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]Value, rv.Len())
		for i := range out {
			out[i] = FromAny(rv.Index(i).Interface())
		}
		return Array(out...)
	default:
		return Ext(x)
	}
}

// FromSlice converts a decoded argument list, preserving order.
func FromSlice(xs []any) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = FromAny(x)
	}
	return out
}

// Interface converts v back into plain Go values: maps with string keys
// become map[string]any, other maps map[any]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindNil:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBinary:
		return v.bin
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindMap:
		stringKeys := true
		for _, kv := range v.m {
			if kv.Key.kind != KindString {
				stringKeys = false
				break
			}
		}
		if stringKeys {
			out := make(map[string]any, len(v.m))
			for _, kv := range v.m {
				out[kv.Key.s] = kv.Value.Interface()
			}
			return out
		}
		out := make(map[any]any, len(v.m))
		for _, kv := range v.m {
			out[kv.Key.Interface()] = kv.Value.Interface()
		}
		return out
	case KindExt:
		return v.ext
	default:
		panic(fmt.Sprintf("rpcvalue: unknown kind %d", v.kind))
	}
}
