// Copyright (C) 2025 Bjoern Boss Henrichsen. All Rights Reserved.

package builder_test

import (
	"strings"
	"testing"

	"github.com/BjoernBoss/jsonify/builder"
	"github.com/BjoernBoss/jsonify/dom"
	"github.com/creachadair/mds/mtest"
	"github.com/google/go-cmp/cmp"
)

func TestBuilderPretty(t *testing.T) {
	var sb strings.Builder
	root := builder.New(&sb, "  ")

	o := root.Obj()
	o.Add("a", 1)
	b := o.AddArr("b")
	b.Push(true)
	b.Push(nil)
	if err := o.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !o.Done() {
		t.Error("builder is not done after closing the root")
	}

	const want = "{\n  \"a\": 1,\n  \"b\": [\n    true,\n    null\n  ]\n}"
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestBuilderCompact(t *testing.T) {
	var sb strings.Builder
	root := builder.New(&sb, "")

	o := root.Obj()
	o.Add("a", 1)
	b := o.AddArr("b")
	b.Push(true)
	b.Push(nil)
	o.Close()

	if diff := cmp.Diff("{\"a\":1,\"b\":[true,null]}", sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestBuilderAbandonedValue(t *testing.T) {
	// A pending value that is dropped unused becomes null.
	var sb strings.Builder
	root := builder.New(&sb, "")

	o := root.Obj()
	o.AddVal("x")
	o.Close()

	if diff := cmp.Diff("{\"x\":null}", sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestBuilderOutOfOrderClose(t *testing.T) {
	// Operating on the outer object while the inner is still open first
	// force-closes the inner.
	var sb strings.Builder
	root := builder.New(&sb, "")

	o := root.Obj()
	inner := o.AddObj("p")
	o.Add("q", 1)
	if !inner.Closed() {
		t.Error("inner object is not closed after the outer advanced")
	}
	o.Close()

	if diff := cmp.Diff("{\"p\":{},\"q\":1}", sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestBuilderDeepAbandon(t *testing.T) {
	// Closing the root drains a whole abandoned subtree, including the
	// pending value at its bottom.
	var sb strings.Builder
	root := builder.New(&sb, "")

	o := root.Obj()
	xs := o.AddArr("xs")
	deep := xs.PushObj()
	deep.AddVal("leaf")
	o.Close()

	if diff := cmp.Diff("{\"xs\":[{\"leaf\":null}]}", sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
	if !deep.Closed() || !xs.Closed() {
		t.Error("abandoned composites were not closed")
	}
}

func TestBuilderRootPrimitive(t *testing.T) {
	var sb strings.Builder
	root := builder.New(&sb, "  ")
	if err := root.Set("hello"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !root.Done() || !root.Closed() {
		t.Error("builder is not done after the root primitive")
	}
	if diff := cmp.Diff("\"hello\"", sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestBuilderSetValue(t *testing.T) {
	// Set accepts the whole JSON-like shape family, including dom values.
	var sb strings.Builder
	root := builder.New(&sb, "")

	o := root.Obj()
	o.AddVal("v").Set(map[string]any{"b": []any{1, nil}, "a": true})
	o.AddVal("d").Set(dom.ToValue([]any{"x"}))
	o.AddVal("raw").SetJSON("[1,  2]")
	o.Close()

	const want = "{\"v\":{\"a\":true,\"b\":[1,null]},\"d\":[\"x\"],\"raw\":[1,  2]}"
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestBuilderValueHandles(t *testing.T) {
	// Only the most recently issued pending value is live; issuing a new
	// one abandons the previous as null.
	var sb strings.Builder
	root := builder.New(&sb, "")

	a := root.Obj()
	v1 := a.AddVal("one")
	v2 := a.AddVal("two")
	v2.Set(2)
	mtest.MustPanic(t, func() { v1.Set(1) })
	a.Close()

	if diff := cmp.Diff("{\"one\":null,\"two\":2}", sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestBuilderMisuse(t *testing.T) {
	t.Run("ClosedComposite", func(t *testing.T) {
		var sb strings.Builder
		root := builder.New(&sb, "")
		o := root.Obj()
		o.Close()
		mtest.MustPanic(t, func() { o.Add("late", 1) })
		mtest.MustPanic(t, func() { o.Close() })
	})

	t.Run("ConsumedValue", func(t *testing.T) {
		var sb strings.Builder
		root := builder.New(&sb, "")
		root.Set(1)
		mtest.MustPanic(t, func() { root.Set(2) })
		mtest.MustPanic(t, func() { root.Obj() })
	})

	t.Run("ForceClosedInner", func(t *testing.T) {
		var sb strings.Builder
		root := builder.New(&sb, "")
		o := root.Obj()
		inner := o.AddArr("xs")
		o.Add("y", 1) // force-closes inner
		mtest.MustPanic(t, func() { inner.Push(2) })
		o.Close()
	})

	t.Run("DoneBuilder", func(t *testing.T) {
		var sb strings.Builder
		root := builder.New(&sb, "")
		o := root.Obj()
		o.Close()
		mtest.MustPanic(t, func() { o.AddVal("x") })
	})
}

func TestBuilderNestedMix(t *testing.T) {
	var sb strings.Builder
	root := builder.New(&sb, "")

	arr := root.Arr()
	arr.Push(1)
	obj := arr.PushObj()
	obj.Add("k", "v")
	sub := obj.AddArr("xs")
	sub.Push(true)
	sub.Close()
	obj.Add("z", nil)
	arr.Push(2.5)
	arr.Close()

	const want = "[1,{\"k\":\"v\",\"xs\":[true],\"z\":null},2.5]"
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestBuilderObjViaValue(t *testing.T) {
	// Value handles convert into composites.
	var sb strings.Builder
	root := builder.New(&sb, "")

	o := root.Obj()
	inner := o.AddVal("o").Obj()
	inner.Add("n", 1)
	arr := o.AddVal("a").Arr()
	arr.Push(false)
	o.Close()

	const want = "{\"o\":{\"n\":1},\"a\":[false]}"
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestBuilderOutputParses(t *testing.T) {
	// Whatever the drop order, the emitted document must parse.
	programs := []func(root *builder.Value){
		func(root *builder.Value) { root.Obj().Close() },
		func(root *builder.Value) { root.Arr().Close() },
		func(root *builder.Value) { root.Set(nil) },
		func(root *builder.Value) {
			o := root.Obj()
			o.AddObj("a").AddArr("b").PushObj().AddVal("c")
			o.Close()
		},
		func(root *builder.Value) {
			a := root.Arr()
			a.PushVal()
			a.PushVal().Set(1)
			a.PushVal()
			a.Close()
		},
		func(root *builder.Value) {
			o := root.Obj()
			x := o.AddArr("x")
			y := o.AddArr("y")
			_ = x
			y.Push(1)
			o.Close()
		},
	}

	for i, program := range programs {
		for _, indent := range []string{"", "  "} {
			var sb strings.Builder
			root := builder.New(&sb, indent)
			program(root)

			if _, err := dom.ParseString(sb.String()); err != nil {
				t.Errorf("program %d (indent %q): output %#q does not parse: %v",
					i, indent, sb.String(), err)
			}
		}
	}
}
