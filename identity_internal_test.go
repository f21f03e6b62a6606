package metadata

import (
	"reflect"
	"testing"
	"unsafe"

	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"
)

func TestIdentityOf(t *testing.T) {
	s := testcase.NewSpec(t)

	s.Test("a pointer target resolves to its address and type", func(t *testcase.T) {
		v := &struct{ N int }{}

		id, err := identityOf(v)
		assert.NoError(t, err)
		assert.Equal(t, reflect.TypeOf(v), id.typ)
		assert.Equal(t, reflect.ValueOf(v).Pointer(), id.ptr)
	})

	s.Test("the same target resolves to the same identity on repeated calls", func(t *testcase.T) {
		v := &struct{ N int }{}

		a, err := identityOf(v)
		assert.NoError(t, err)
		b, err := identityOf(v)
		assert.NoError(t, err)

		assert.True(t, a == b)
	})

	s.Test("values of different types sharing an address resolve to different identities", func(t *testcase.T) {
		type Inner struct{ N int }
		type Outer struct{ Inner Inner }
		o := &Outer{}

		a, err := identityOf(o)
		assert.NoError(t, err)
		b, err := identityOf(&o.Inner)
		assert.NoError(t, err)

		assert.Equal(t, a.ptr, b.ptr)
		assert.True(t, a != b)
	})

	s.Test("a reflect.Type resolves to the identity of the described type", func(t *testcase.T) {
		type T struct{ N int }

		a, err := identityOf(reflect.TypeOf(T{}))
		assert.NoError(t, err)
		b, err := identityOf(reflect.TypeOf(T{}))
		assert.NoError(t, err)
		assert.True(t, a == b)

		c, err := identityOf(reflect.TypeOf(int(0)))
		assert.NoError(t, err)
		assert.True(t, a != c)
	})

	s.Test("map and channel targets resolve by their reference", func(t *testcase.T) {
		m := map[string]int{}
		a, err := identityOf(m)
		assert.NoError(t, err)
		b, err := identityOf(m)
		assert.NoError(t, err)
		assert.True(t, a == b)

		ch := make(chan int)
		d, err := identityOf(ch)
		assert.NoError(t, err)
		assert.True(t, a != d)
	})

	s.Test("an unsafe.Pointer target resolves by its address", func(t *testcase.T) {
		up := unsafe.Pointer(new(int))

		id, err := identityOf(up)
		assert.NoError(t, err)
		assert.Equal(t, reflect.ValueOf(up).Pointer(), id.ptr)
	})

	s.Context("targets without identity", func(s *testcase.Spec) {
		for _, tc := range []struct {
			desc   string
			target any
		}{
			{desc: "untyped nil", target: nil},
			{desc: "typed nil pointer", target: (*int)(nil)},
			{desc: "nil map", target: (map[int]int)(nil)},
			{desc: "nil channel", target: (chan struct{})(nil)},
			{desc: "nil unsafe pointer", target: unsafe.Pointer(nil)},
			{desc: "bool value", target: true},
			{desc: "float value", target: 42.24},
			{desc: "array value", target: [3]int{}},
			{desc: "slice", target: []int{1, 2, 3}},
			{desc: "func value", target: func() {}},
		} {
			s.Test(tc.desc, func(t *testcase.T) {
				_, err := identityOf(tc.target)
				assert.ErrorIs(t, ErrInvalidTarget, err)
			})
		}
	})
}

func TestSlot_scopeID(t *testing.T) {
	sl := &slot{id: "d4d19a2f"}

	assert.Equal(t, "d4d19a2f", sl.scopeID(nil))
	assert.Equal(t, "d4d19a2f.Start", sl.scopeID([]string{"Start"}))
	assert.Equal(t, "d4d19a2f.Process.Start", sl.scopeID([]string{"Process", "Start"}))
}
