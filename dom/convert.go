// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package dom

import (
	"fmt"
	"reflect"

	"github.com/BjoernBoss/jsonify"
)

// ToValue converts any JSON-like Go value into a *Value by recursive copy:
// nil, booleans, integers, floats, strings, jsonify.Num, slices and arrays
// of any element type, string-keyed maps of any value type, and existing
// *Value trees (which are deep-copied). It panics if v does not have one of
// those shapes.
func ToValue(v any) *Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case *Value:
		return t.Copy()
	case bool:
		out := Value{kind: jsonify.Bool, b: t}
		return &out
	case string:
		out := Value{kind: jsonify.String, s: t}
		return &out
	case int:
		return intValue(int64(t))
	case int8:
		return intValue(int64(t))
	case int16:
		return intValue(int64(t))
	case int32:
		return intValue(int64(t))
	case int64:
		return intValue(t)
	case uint:
		return uintValue(uint64(t))
	case uint8:
		return uintValue(uint64(t))
	case uint16:
		return uintValue(uint64(t))
	case uint32:
		return uintValue(uint64(t))
	case uint64:
		return uintValue(t)
	case float32:
		return realValue(float64(t))
	case float64:
		return realValue(t)
	case jsonify.Num:
		switch t.Kind() {
		case jsonify.Uint:
			return uintValue(t.Uint())
		case jsonify.Int:
			return intValue(t.Int())
		default:
			return realValue(t.Real())
		}
	case Arr:
		return arrValue(t)
	case []*Value:
		return arrValue(t)
	case []any:
		out := Value{kind: jsonify.Array, arr: make(Arr, len(t))}
		for i, elem := range t {
			out.arr[i] = ToValue(elem)
		}
		return &out
	case Obj:
		return objValue(t)
	case map[string]*Value:
		return objValue(t)
	case map[string]any:
		out := Value{kind: jsonify.Object, obj: make(Obj, len(t))}
		for key, m := range t {
			out.obj[key] = ToValue(m)
		}
		return &out
	}
	return reflectValue(reflect.ValueOf(v))
}

func intValue(i int64) *Value  { return &Value{kind: jsonify.Int, i: i} }
func uintValue(u uint64) *Value { return &Value{kind: jsonify.Uint, u: u} }
func realValue(f float64) *Value { return &Value{kind: jsonify.Real, f: f} }

func arrValue(t []*Value) *Value {
	out := Value{kind: jsonify.Array, arr: make(Arr, len(t))}
	for i, elem := range t {
		out.arr[i] = elem.Copy()
	}
	return &out
}

func objValue(t map[string]*Value) *Value {
	out := Value{kind: jsonify.Object, obj: make(Obj, len(t))}
	for key, m := range t {
		out.obj[key] = m.Copy()
	}
	return &out
}

// reflectValue handles the generic iterable shapes: slices and arrays of
// any element type, and maps with string-like keys.
func reflectValue(rv reflect.Value) *Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return ToValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		out := Value{kind: jsonify.Array, arr: make(Arr, rv.Len())}
		for i := range out.arr {
			out.arr[i] = ToValue(rv.Index(i).Interface())
		}
		return &out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			panic(fmt.Sprintf("invalid map key type %v", rv.Type().Key()))
		}
		out := Value{kind: jsonify.Object, obj: make(Obj, rv.Len())}
		iter := rv.MapRange()
		for iter.Next() {
			out.obj[iter.Key().String()] = ToValue(iter.Value().Interface())
		}
		return &out
	}
	panic(fmt.Sprintf("invalid value type %v", rv.Type()))
}

// Copy returns a deep copy of v.
func (v *Value) Copy() *Value {
	out := *v
	switch v.kind {
	case jsonify.Array:
		out.arr = make(Arr, len(v.arr))
		for i, elem := range v.arr {
			out.arr[i] = elem.Copy()
		}
	case jsonify.Object:
		out.obj = make(Obj, len(v.obj))
		for key, m := range v.obj {
			out.obj[key] = m.Copy()
		}
	}
	return &out
}

// Set replaces the contents of v with a recursive copy of elem, which may
// have any shape ToValue accepts. The slot is only modified once the whole
// conversion has succeeded.
func (v *Value) Set(elem any) {
	*v = *ToValue(elem)
}
