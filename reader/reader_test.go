// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package reader_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/BjoernBoss/jsonify"
	"github.com/BjoernBoss/jsonify/reader"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

func mustRead(t *testing.T, text string) *reader.Value {
	t.Helper()
	v, err := reader.New(strings.NewReader(text))
	if err != nil {
		t.Fatalf("New(%#q) failed: %v", text, err)
	}
	return v
}

func isKind(err error, kind jsonify.ErrKind) bool {
	var e *jsonify.Error
	return errors.As(err, &e) && e.Kind == kind
}

func TestReaderPrimitives(t *testing.T) {
	v := mustRead(t, " 42 ")
	if u, err := v.Uint(); err != nil || u != 42 {
		t.Errorf("Uint: got %d, %v", u, err)
	}
	if i, err := v.Int(); err != nil || i != 42 {
		t.Errorf("Int: got %d, %v", i, err)
	}
	if f, err := v.Real(); err != nil || f != 42 {
		t.Errorf("Real: got %g, %v", f, err)
	}
	if !v.IsUint() || !v.IsInt() || !v.IsReal() || !v.Is(jsonify.Real) {
		t.Error("42 does not read as all numeric kinds")
	}

	if s, err := mustRead(t, "\"hi\\n\"").Str(); err != nil || s != "hi\n" {
		t.Errorf("Str: got %q, %v", s, err)
	}
	if b, err := mustRead(t, "true").Bool(); err != nil || !b {
		t.Errorf("Bool: got %v, %v", b, err)
	}
	if !mustRead(t, "null").IsNull() {
		t.Error("null does not read as null")
	}
	if n := mustRead(t, "-3"); !n.IsInt() || n.IsUint() {
		t.Error("-3 misclassified")
	}
	if _, err := mustRead(t, "true").Str(); !isKind(err, jsonify.ErrType) {
		t.Error("Str on boolean: want type error")
	}
}

func TestReaderArray(t *testing.T) {
	v := mustRead(t, "[10, \"x\", null, [1, 2], 0.5]")
	arr, err := v.Arr()
	if err != nil {
		t.Fatalf("Arr failed: %v", err)
	}

	var kinds []jsonify.Kind
	for arr.Next() {
		kinds = append(kinds, arr.Cur().Kind())
		if arr.Cur().Kind() == jsonify.Array {
			// Read the nested array fully.
			sub, err := arr.Cur().Arr()
			if err != nil {
				t.Fatalf("nested Arr failed: %v", err)
			}
			var got []uint64
			for sub.Next() {
				u, _ := sub.Cur().Uint()
				got = append(got, u)
			}
			if diff := cmp.Diff([]uint64{1, 2}, got); diff != "" {
				t.Errorf("nested: (-want, +got)\n%s", diff)
			}
		}
	}
	if err := arr.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if !arr.Done() {
		t.Error("array is not done after iteration")
	}

	want := []jsonify.Kind{jsonify.Uint, jsonify.String, jsonify.Null, jsonify.Array, jsonify.Real}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds: (-want, +got)\n%s", diff)
	}
}

func TestReaderObject(t *testing.T) {
	v := mustRead(t, "{\"a\": 1, \"b\": true, \"a\": 2}")
	obj, err := v.Obj()
	if err != nil {
		t.Fatalf("Obj failed: %v", err)
	}

	// Repeated keys are delivered as separate events.
	var keys []string
	for obj.Next() {
		keys = append(keys, obj.Key())
	}
	if err := obj.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "a"}, keys); diff != "" {
		t.Errorf("keys: (-want, +got)\n%s", diff)
	}
}

func TestReaderEmptyComposites(t *testing.T) {
	arr, err := mustRead(t, "[]").Arr()
	if err != nil {
		t.Fatalf("Arr failed: %v", err)
	}
	if arr.Next() {
		t.Error("Next on empty array reported an element")
	}
	if !arr.Done() {
		t.Error("empty array is not done")
	}

	obj, err := mustRead(t, "{}").Obj()
	if err != nil {
		t.Fatalf("Obj failed: %v", err)
	}
	if obj.Next() {
		t.Error("Next on empty object reported a member")
	}
}

func TestReaderSkipSubtrees(t *testing.T) {
	// Advancing the outer object past an unread nested composite silently
	// discards the subtree and keeps the cursor synchronized.
	v := mustRead(t, "{\"a\": 1, \"b\": [10, 20, 30], \"c\": 2}")
	obj, err := v.Obj()
	if err != nil {
		t.Fatalf("Obj failed: %v", err)
	}

	var keys []string
	for obj.Next() {
		keys = append(keys, obj.Key())
		// Never open "b"; its array must be skipped transparently.
	}
	if err := obj.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys); diff != "" {
		t.Errorf("keys: (-want, +got)\n%s", diff)
	}
}

func TestReaderDrainOnClose(t *testing.T) {
	// Scenario: read only key "a", then close all handles; the stream must
	// be consumed through the final bracket with no trailing garbage error.
	v := mustRead(t, "{\"a\":1,\"b\":[10,20,30],\"c\":2}")
	obj, err := v.Obj()
	if err != nil {
		t.Fatalf("Obj failed: %v", err)
	}
	if !obj.Next() || obj.Key() != "a" {
		t.Fatalf("first member: %q", obj.Key())
	}
	if u, err := obj.Cur().Uint(); err != nil || u != 1 {
		t.Fatalf("a: got %d, %v", u, err)
	}

	if err := obj.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !obj.Done() {
		t.Error("object is not done after Close")
	}
	if err := obj.Err(); err != nil {
		t.Errorf("Err after Close: %v", err)
	}
}

func TestReaderPartialNested(t *testing.T) {
	// Reading a deeper composite partially and then advancing an outer
	// handle drains the remainder of the deeper one.
	v := mustRead(t, "[[1, 2, 3], \"after\"]")
	outer, err := v.Arr()
	if err != nil {
		t.Fatalf("Arr failed: %v", err)
	}
	if !outer.Next() {
		t.Fatal("missing first element")
	}
	inner, err := outer.Cur().Arr()
	if err != nil {
		t.Fatalf("inner Arr failed: %v", err)
	}
	if !inner.Next() {
		t.Fatal("missing inner element")
	}
	if u, _ := inner.Cur().Uint(); u != 1 {
		t.Fatalf("inner first: got %d", u)
	}

	// Advance the outer reader: 2 and 3 are discarded.
	if !outer.Next() {
		t.Fatal("missing second element")
	}
	if s, err := outer.Cur().Str(); err != nil || s != "after" {
		t.Fatalf("second element: got %q, %v", s, err)
	}
	if outer.Next() {
		t.Error("unexpected extra element")
	}

	// The inner handle was drained past; advancing it is a protocol error.
	mtest.MustPanic(t, func() { inner.Next() })
}

func TestReaderStaleOpen(t *testing.T) {
	// A composite value handle goes stale once the reader moves on; opening
	// it then is a reader error.
	v := mustRead(t, "[[1], [2]]")
	outer, err := v.Arr()
	if err != nil {
		t.Fatalf("Arr failed: %v", err)
	}
	if !outer.Next() {
		t.Fatal("missing first element")
	}
	first := outer.Cur()
	if !outer.Next() {
		t.Fatal("missing second element")
	}
	if _, err := first.Arr(); !isKind(err, jsonify.ErrReader) {
		t.Errorf("opening stale composite: got %v, want reader error", err)
	}

	// The current composite can still be opened, but only once.
	second := outer.Cur()
	sub, err := second.Arr()
	if err != nil {
		t.Fatalf("second Arr failed: %v", err)
	}
	if _, err := second.Arr(); !isKind(err, jsonify.ErrReader) {
		t.Errorf("reopening composite: got %v, want reader error", err)
	}
	sub.Close()
	outer.Close()
}

func TestReaderStalePrimitive(t *testing.T) {
	// Primitives are captured at classification and stay readable through
	// stale handles.
	v := mustRead(t, "[1, 2]")
	arr, err := v.Arr()
	if err != nil {
		t.Fatalf("Arr failed: %v", err)
	}
	arr.Next()
	first := arr.Cur()
	arr.Next()
	if u, err := first.Uint(); err != nil || u != 1 {
		t.Errorf("stale primitive: got %d, %v", u, err)
	}
	arr.Close()
}

func TestReaderTrailingGarbage(t *testing.T) {
	if _, err := reader.New(strings.NewReader("null x")); !isKind(err, jsonify.ErrDeserialize) {
		t.Error("primitive root with trailing garbage: want deserialize error")
	}

	v := mustRead(t, "[1] x")
	arr, err := v.Arr()
	if err != nil {
		t.Fatalf("Arr failed: %v", err)
	}
	arr.Next() // 1
	if arr.Next() {
		t.Error("Next reported an element after the close bracket")
	}
	if !isKind(arr.Err(), jsonify.ErrDeserialize) {
		t.Errorf("Err: got %v, want deserialize error", arr.Err())
	}
}

func TestReaderParseError(t *testing.T) {
	v := mustRead(t, "[1, nope]")
	arr, err := v.Arr()
	if err != nil {
		t.Fatalf("Arr failed: %v", err)
	}
	if !arr.Next() {
		t.Fatal("missing first element")
	}
	if arr.Next() {
		t.Error("Next succeeded over malformed input")
	}
	if !isKind(arr.Err(), jsonify.ErrDeserialize) {
		t.Errorf("Err: got %v, want deserialize error", arr.Err())
	}
	// The handle is inert afterwards.
	if arr.Next() {
		t.Error("Next succeeded after a parse error")
	}
	if err := arr.Close(); !isKind(err, jsonify.ErrDeserialize) {
		t.Errorf("Close: got %v, want the sticky error", err)
	}
}

func TestReaderDeepNesting(t *testing.T) {
	const depth = 1200
	text := strings.Repeat("[", depth) + "7" + strings.Repeat("]", depth)

	v := mustRead(t, text)
	arrs := make([]*reader.Arr, 0, depth)
	cur := v
	for i := 0; i < depth; i++ {
		arr, err := cur.Arr()
		if err != nil {
			t.Fatalf("depth %d: %v", i, err)
		}
		if !arr.Next() {
			t.Fatalf("depth %d: missing element", i)
		}
		arrs = append(arrs, arr)
		cur = arr.Cur()
	}
	if u, err := cur.Uint(); err != nil || u != 7 {
		t.Fatalf("innermost: got %d, %v", u, err)
	}

	// Closing the root drains all the nesting.
	if err := arrs[0].Close(); err != nil {
		t.Fatalf("root Close failed: %v", err)
	}
	if err := arrs[0].Err(); err != nil {
		t.Errorf("Err after drain: %v", err)
	}
}

func TestReaderRootErrors(t *testing.T) {
	for _, input := range []string{"", "   ", ",", "}"} {
		if _, err := reader.New(strings.NewReader(input)); !isKind(err, jsonify.ErrDeserialize) {
			t.Errorf("New(%#q): want deserialize error", input)
		}
	}
}
