// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package view_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/BjoernBoss/jsonify"
	"github.com/BjoernBoss/jsonify/dom"
	"github.com/BjoernBoss/jsonify/view"
	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, text string) view.Viewer {
	t.Helper()
	v, err := view.ParseString(text)
	if err != nil {
		t.Fatalf("Parse(%#q) failed: %v", text, err)
	}
	return v
}

func isKind(err error, kind jsonify.ErrKind) bool {
	var e *jsonify.Error
	return errors.As(err, &e) && e.Kind == kind
}

func TestViewerPrimitives(t *testing.T) {
	v := mustParse(t, "{\"b\": true, \"s\": \"hi\", \"u\": 7, \"i\": -7, \"r\": 0.5, \"n\": null}")
	if !v.IsObj() || v.Len() != 6 {
		t.Fatalf("root: kind %v len %d", v.Kind(), v.Len())
	}

	b, _ := v.At("b")
	if got, err := b.Bool(); err != nil || !got {
		t.Errorf("b: got %v, %v", got, err)
	}
	s, _ := v.At("s")
	if got, err := s.Str(); err != nil || got != "hi" {
		t.Errorf("s: got %q, %v", got, err)
	}
	u, _ := v.At("u")
	if got, err := u.Uint(); err != nil || got != 7 {
		t.Errorf("u: got %d, %v", got, err)
	}
	if got, err := u.Int(); err != nil || got != 7 {
		t.Errorf("u as int: got %d, %v", got, err)
	}
	i, _ := v.At("i")
	if got, err := i.Int(); err != nil || got != -7 {
		t.Errorf("i: got %d, %v", got, err)
	}
	if _, err := i.Uint(); !isKind(err, jsonify.ErrType) {
		t.Error("negative as uint: want type error")
	}
	r, _ := v.At("r")
	if got, err := r.Real(); err != nil || got != 0.5 {
		t.Errorf("r: got %g, %v", got, err)
	}
	n, _ := v.At("n")
	if !n.IsNull() {
		t.Errorf("n: kind %v, want null", n.Kind())
	}

	missing, err := v.At("zzz")
	if err != nil || !missing.IsNull() {
		t.Errorf("missing key: got %v, %v; want null", missing.Kind(), err)
	}
}

func TestViewerNavigation(t *testing.T) {
	v := mustParse(t, "{\"xs\": [10, 20, 30], \"o\": {\"k\": \"v\"}}")

	xs, _ := v.At("xs")
	arr, err := xs.Arr()
	if err != nil {
		t.Fatalf("Arr failed: %v", err)
	}
	if arr.Len() != 3 || arr.Empty() {
		t.Fatalf("arr: len %d", arr.Len())
	}

	var got []uint64
	for elem := range arr.Values() {
		u, err := elem.Uint()
		if err != nil {
			t.Fatalf("element: %v", err)
		}
		got = append(got, u)
	}
	if diff := cmp.Diff([]uint64{10, 20, 30}, got); diff != "" {
		t.Errorf("Values: (-want, +got)\n%s", diff)
	}

	e, err := arr.At(1)
	if err != nil {
		t.Fatalf("At(1) failed: %v", err)
	}
	if u, _ := e.Uint(); u != 20 {
		t.Errorf("At(1): got %d, want 20", u)
	}
	if _, err := arr.At(3); !isKind(err, jsonify.ErrRange) {
		t.Error("At(3): want range error")
	}
	if _, err := xs.Index(3); !isKind(err, jsonify.ErrRange) {
		t.Error("Index(3): want range error")
	}
	if !xs.Has(2) || xs.Has(3) {
		t.Error("Has misreports bounds")
	}
	if !xs.HasKind(0, jsonify.Real) || xs.HasKind(0, jsonify.String) {
		t.Error("HasKind misreports kinds")
	}
	if !xs.TypedArray(jsonify.Uint) {
		t.Error("TypedArray(uint) is false for [10,20,30]")
	}

	o, _ := v.At("o")
	obj, err := o.Obj()
	if err != nil {
		t.Fatalf("Obj failed: %v", err)
	}
	if obj.Len() != 1 || obj.Empty() {
		t.Fatalf("obj: len %d", obj.Len())
	}
	if !obj.Contains("k") || obj.Contains("zzz") {
		t.Error("Contains misreports keys")
	}
	kv := obj.At("k")
	if s, _ := kv.Str(); s != "v" {
		t.Errorf("obj.At(k): got %q", s)
	}
	if _, ok := obj.Lookup("zzz"); ok {
		t.Error("Lookup(zzz) unexpectedly found a member")
	}

	if _, err := o.Arr(); !isKind(err, jsonify.ErrType) {
		t.Error("Arr on object: want type error")
	}
	if _, err := xs.Obj(); !isKind(err, jsonify.ErrType) {
		t.Error("Obj on array: want type error")
	}
}

func TestViewerKeyCache(t *testing.T) {
	// Repeated lookups of the same key are served from the per-handle cache
	// and stay structurally equal.
	v := mustParse(t, "{\"a\": 1, \"b\": 2, \"c\": [3]}")
	first, err := v.At("c")
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := v.At("c")
		if err != nil {
			t.Fatalf("repeat At failed: %v", err)
		}
		if !again.Materialize().Equal(first.Materialize()) {
			t.Fatal("repeated At returned a different value")
		}
	}

	// Interleave lookups so the cache is overwritten between hits.
	for _, key := range []string{"a", "b", "a", "c", "b", "a"} {
		m, err := v.At(key)
		if err != nil {
			t.Fatalf("At(%q) failed: %v", key, err)
		}
		if m.IsNull() {
			t.Fatalf("At(%q): missing", key)
		}
	}
}

func TestViewerDuplicateKeys(t *testing.T) {
	// All occurrences of a repeated key are iterable; lookup returns the
	// first match.
	v := mustParse(t, "{\"a\": 1, \"a\": 2, \"b\": 3, \"a\": 4}")
	if v.Len() != 4 {
		t.Fatalf("Len: got %d, want 4", v.Len())
	}

	a, _ := v.At("a")
	if u, _ := a.Uint(); u != 1 {
		t.Errorf("At(a): got %d, want first match 1", u)
	}

	obj, _ := v.Obj()
	var keys []string
	var vals []uint64
	for key, m := range obj.Entries() {
		u, _ := m.Uint()
		keys = append(keys, key)
		vals = append(vals, u)
	}
	if diff := cmp.Diff([]string{"a", "a", "b", "a"}, keys); diff != "" {
		t.Errorf("keys: (-want, +got)\n%s", diff)
	}
	if diff := cmp.Diff([]uint64{1, 2, 3, 4}, vals); diff != "" {
		t.Errorf("values: (-want, +got)\n%s", diff)
	}
}

func TestViewerStrings(t *testing.T) {
	// All strings of a document share one blob; decoding happens during
	// construction.
	v := mustParse(t, "[\"\", \"a\\nb\", \"\\ud83d\\ude00\", \"plain\"]")
	want := []string{"", "a\nb", "\U0001f600", "plain"}

	arr, _ := v.Arr()
	var got []string
	for elem := range arr.Values() {
		s, err := elem.Str()
		if err != nil {
			t.Fatalf("Str failed: %v", err)
		}
		got = append(got, s)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("strings: (-want, +got)\n%s", diff)
	}
}

func TestViewerMaterialize(t *testing.T) {
	const text = "{\"a\": [1, -2, 0.5, \"x\"], \"b\": {\"c\": null, \"d\": true}}"
	v := mustParse(t, text)

	got := v.Materialize()
	want, err := dom.ParseString(text)
	if err != nil {
		t.Fatalf("dom.Parse failed: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("Materialize: got %s, want %s",
			dom.FormatToString(got, ""), dom.FormatToString(want, ""))
	}
}

func TestViewerDeepNesting(t *testing.T) {
	const depth = 1200
	text := strings.Repeat("[", depth) + "true" + strings.Repeat("]", depth)

	v := mustParse(t, text)
	for i := 0; i < depth; i++ {
		if !v.IsArr() {
			t.Fatalf("depth %d: kind %v", i, v.Kind())
		}
		var err error
		if v, err = v.Index(0); err != nil {
			t.Fatalf("depth %d: %v", i, err)
		}
	}
	if b, err := v.Bool(); err != nil || !b {
		t.Errorf("innermost: got %v, %v", b, err)
	}
}

func TestViewParseErrors(t *testing.T) {
	tests := []string{"", "[1,", "{\"a\"}", "[] []", "nope"}
	for _, input := range tests {
		if _, err := view.ParseString(input); !isKind(err, jsonify.ErrDeserialize) {
			t.Errorf("Parse(%#q): want deserialize error", input)
		}
	}
}
