// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package view

import (
	"github.com/BjoernBoss/jsonify"
	"github.com/BjoernBoss/jsonify/dom"
)

// Materialize converts the viewed value into an owning dom tree. For
// objects with repeated keys, the last occurrence wins, matching the dom
// parser.
func (v Viewer) Materialize() *dom.Value {
	if v.st == nil {
		return dom.Null()
	}
	return materialize(v.st, v.ent)
}

func materialize(st *state, e entry) *dom.Value {
	out := dom.Null()
	switch e.kind {
	case jsonify.Bool:
		*out.AsBool() = e.b
	case jsonify.Uint:
		*out.AsUint() = e.u
	case jsonify.Int:
		*out.AsInt() = e.i
	case jsonify.Real:
		*out.AsReal() = e.f
	case jsonify.String:
		*out.AsStr() = string(st.blob[e.off : e.off+e.count])
	case jsonify.Array:
		arr := out.AsArr()
		for i := e.off; i < e.off+e.count; i++ {
			*arr = append(*arr, materialize(st, st.entries[i]))
		}
	case jsonify.Object:
		obj := out.AsObj()
		for i := e.off; i < e.off+e.count; i += 2 {
			obj[st.str(i)] = materialize(st, st.entries[i+1])
		}
	}
	return out
}
