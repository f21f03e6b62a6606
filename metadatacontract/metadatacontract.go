// Package metadatacontract defines the behavioral requirements of the metadata.Accessor role.
package metadatacontract

import (
	"testing"

	"go.llib.dev/frameless/pkg/logger"
	"go.llib.dev/frameless/pkg/reflectkit"
	"go.llib.dev/frameless/port/contract"
	"go.llib.dev/frameless/port/option"

	"go.llib.dev/metadata"

	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"
	"go.llib.dev/testcase/random"
)

var rnd = random.New(random.CryptoSeed{})

// Accessor returns the contract that a metadata.Accessor implementation must fulfil,
// expressed against metadata values of the V type.
//
// The contract creates a fresh target for every test case,
// so it is safe to run against a live, shared registry.
func Accessor[V any](subject metadata.Accessor, opts ...Option[V]) contract.Contract {
	s := testcase.NewSpec(nil)
	c := option.ToConfig[Config[V]](opts)

	var (
		target = testcase.Let(s, func(t *testcase.T) any { return c.MakeTarget(t) })
		key    = testcase.Let(s, func(t *testcase.T) string { return c.MakeKey(t) })
		value  = testcase.Let(s, func(t *testcase.T) V { return c.MakeValue(t) })
		member = testcase.Let(s, func(t *testcase.T) string { return c.MakeMember(t) })
	)

	s.Describe(".Define", func(s *testcase.Spec) {
		act := func(t *testcase.T) error {
			return subject.Define(target.Get(t), key.Get(t), value.Get(t))
		}

		s.Then("the key becomes visible in the target's own scope", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))

			assert.Must(t).True(subject.Has(target.Get(t), key.Get(t)))
			got, found := subject.Lookup(target.Get(t), key.Get(t))
			assert.Must(t).True(found)
			assert.Must(t).Equal(value.Get(t), got)
		})

		s.Then("a structurally equal but distinct target remains untouched", func(t *testcase.T) {
			other := c.MakeTarget(t)
			assert.Must(t).NoError(act(t))

			assert.Must(t).False(subject.Has(other, key.Get(t)))
			_, found := subject.Lookup(other, key.Get(t))
			assert.Must(t).False(found)
		})

		s.Then("redefining the key overwrites the value instead of accumulating", func(t *testcase.T) {
			assert.Must(t).NoError(act(t))

			nv := c.MakeValue(t)
			assert.Must(t).NoError(subject.Define(target.Get(t), key.Get(t), nv))

			got, found := subject.Lookup(target.Get(t), key.Get(t))
			assert.Must(t).True(found)
			assert.Must(t).Equal(nv, got)

			keys, ok := subject.Keys(target.Get(t))
			assert.Must(t).True(ok)
			assert.Must(t).Equal(1, len(keys))
		})

		s.When("a member name is given", func(s *testcase.Spec) {
			act := func(t *testcase.T) error {
				return subject.Define(target.Get(t), key.Get(t), value.Get(t), member.Get(t))
			}

			s.Then("the key scopes to the member", func(t *testcase.T) {
				assert.Must(t).NoError(act(t))

				assert.Must(t).True(subject.Has(target.Get(t), key.Get(t), member.Get(t)))
				got, found := subject.Lookup(target.Get(t), key.Get(t), member.Get(t))
				assert.Must(t).True(found)
				assert.Must(t).Equal(value.Get(t), got)
			})

			s.Then("the target's own scope remains untouched", func(t *testcase.T) {
				assert.Must(t).NoError(act(t))

				assert.Must(t).False(subject.Has(target.Get(t), key.Get(t)))
				_, ok := subject.Keys(target.Get(t))
				assert.Must(t).False(ok)
			})

			s.Then("another member of the same target remains untouched", func(t *testcase.T) {
				other := random.Unique(func() string { return c.MakeMember(t) }, member.Get(t))
				assert.Must(t).NoError(act(t))

				assert.Must(t).False(subject.Has(target.Get(t), key.Get(t), other))
			})
		})

		s.When("the target is nil", func(s *testcase.Spec) {
			target.Let(s, func(t *testcase.T) any { return nil })

			s.Then("it reports an invalid target error", func(t *testcase.T) {
				assert.Must(t).ErrorIs(metadata.ErrInvalidTarget, act(t))
			})
		})
	})

	s.Describe(".Lookup", func(s *testcase.Spec) {
		act := func(t *testcase.T) (any, bool) {
			return subject.Lookup(target.Get(t), key.Get(t))
		}

		s.Then("on a never annotated target it reports absence", func(t *testcase.T) {
			got, found := act(t)
			assert.Must(t).False(found)
			assert.Must(t).Nil(got)
		})

		s.When("the key was defined on the target", func(s *testcase.Spec) {
			s.Before(func(t *testcase.T) {
				assert.Must(t).NoError(subject.Define(target.Get(t), key.Get(t), value.Get(t)))
			})

			s.Then("it returns the stored value", func(t *testcase.T) {
				got, found := act(t)
				assert.Must(t).True(found)
				assert.Must(t).Equal(value.Get(t), got)
			})

			s.Then("another key of the same target reports absence", func(t *testcase.T) {
				other := random.Unique(func() string { return c.MakeKey(t) }, key.Get(t))

				_, found := subject.Lookup(target.Get(t), other)
				assert.Must(t).False(found)
			})

			s.Then("the member scopes of the target report absence", func(t *testcase.T) {
				_, found := subject.Lookup(target.Get(t), key.Get(t), member.Get(t))
				assert.Must(t).False(found)
			})
		})

		s.When("the key was defined on a member of the target", func(s *testcase.Spec) {
			s.Before(func(t *testcase.T) {
				assert.Must(t).NoError(subject.Define(target.Get(t), key.Get(t), value.Get(t), member.Get(t)))
			})

			s.Then("the target's own scope reports absence", func(t *testcase.T) {
				_, found := act(t)
				assert.Must(t).False(found)
			})
		})

		s.When("the target is nil", func(s *testcase.Spec) {
			target.Let(s, func(t *testcase.T) any { return nil })

			s.Then("it reports absence without an error", func(t *testcase.T) {
				var found bool
				assert.NotPanic(t, func() { _, found = act(t) })
				assert.Must(t).False(found)
			})
		})
	})

	s.Describe(".Has", func(s *testcase.Spec) {
		act := func(t *testcase.T) bool {
			return subject.Has(target.Get(t), key.Get(t))
		}

		s.Then("it reports false before the key is defined", func(t *testcase.T) {
			assert.Must(t).False(act(t))
		})

		s.Then("it reports true right after the key is defined", func(t *testcase.T) {
			assert.Must(t).NoError(subject.Define(target.Get(t), key.Get(t), value.Get(t)))

			assert.Must(t).True(act(t))
		})

		s.Then("it reports false for a nil target", func(t *testcase.T) {
			assert.Must(t).False(subject.Has(nil, key.Get(t)))
		})
	})

	s.Describe(".Keys", func(s *testcase.Spec) {
		act := func(t *testcase.T) ([]string, bool) {
			return subject.Keys(target.Get(t))
		}

		s.Then("on a never annotated target it reports absence", func(t *testcase.T) {
			_, ok := act(t)
			assert.Must(t).False(ok)
		})

		s.Then("keys are listed in their first definition order", func(t *testcase.T) {
			var keys []string
			t.Random.Repeat(3, 7, func() {
				k := random.Unique(func() string { return c.MakeKey(t) }, keys...)
				keys = append(keys, k)
				assert.Must(t).NoError(subject.Define(target.Get(t), k, c.MakeValue(t)))
			})

			got, ok := act(t)
			assert.Must(t).True(ok)
			assert.Must(t).Equal(keys, got)
		})

		s.Then("redefining an already listed key keeps its original position", func(t *testcase.T) {
			var keys []string
			t.Random.Repeat(3, 7, func() {
				k := random.Unique(func() string { return c.MakeKey(t) }, keys...)
				keys = append(keys, k)
				assert.Must(t).NoError(subject.Define(target.Get(t), k, c.MakeValue(t)))
			})
			redefined := t.Random.Pick(keys).(string)
			assert.Must(t).NoError(subject.Define(target.Get(t), redefined, c.MakeValue(t)))

			got, ok := act(t)
			assert.Must(t).True(ok)
			assert.Must(t).Equal(keys, got)
		})

		s.Then("modifying the returned keys leaves the scope's listing unchanged", func(t *testcase.T) {
			assert.Must(t).NoError(subject.Define(target.Get(t), key.Get(t), value.Get(t)))

			got, ok := act(t)
			assert.Must(t).True(ok)
			got[0] = c.MakeKey(t)

			again, ok := act(t)
			assert.Must(t).True(ok)
			assert.Must(t).Equal([]string{key.Get(t)}, again)
		})
	})

	s.Describe(".Annotate", func(s *testcase.Spec) {
		act := func(t *testcase.T) metadata.Annotator {
			return subject.Annotate(key.Get(t), value.Get(t))
		}

		s.Then("the returned annotator defines the captured pair on each of its targets independently", func(t *testcase.T) {
			var (
				ann = act(t)
				a   = c.MakeTarget(t)
				b   = c.MakeTarget(t)
			)
			ann(a)
			ann(b)

			got, found := subject.Lookup(a, key.Get(t))
			assert.Must(t).True(found)
			assert.Must(t).Equal(value.Get(t), got)
			got, found = subject.Lookup(b, key.Get(t))
			assert.Must(t).True(found)
			assert.Must(t).Equal(value.Get(t), got)

			nv := c.MakeValue(t)
			assert.Must(t).NoError(subject.Define(a, key.Get(t), nv))
			got, found = subject.Lookup(b, key.Get(t))
			assert.Must(t).True(found)
			assert.Must(t).Equal(value.Get(t), got,
				"redefining on one annotated target must not leak to the other")
		})

		s.Then("the annotator scopes to a member when one is given", func(t *testcase.T) {
			ann := act(t)
			ann(target.Get(t), member.Get(t))

			assert.Must(t).True(subject.Has(target.Get(t), key.Get(t), member.Get(t)))
			assert.Must(t).False(subject.Has(target.Get(t), key.Get(t)))
		})

		s.Then("invoking the annotator with a nil target is safe", func(t *testcase.T) {
			logger.Stub(t)
			ann := act(t)

			assert.NotPanic(t, func() { ann(nil) })
		})
	})

	s.Context("the identity of a target", func(s *testcase.Spec) {
		s.Test("a second reference to the same target shares its metadata", func(t *testcase.T) {
			tgt := c.MakeTarget(t)
			ref := tgt

			assert.Must(t).NoError(subject.Define(tgt, key.Get(t), value.Get(t)))

			assert.Must(t).True(subject.Has(ref, key.Get(t)))
		})

		s.Test("distinct targets never share metadata", func(t *testcase.T) {
			var (
				a = c.MakeTarget(t)
				b = c.MakeTarget(t)

				av = c.MakeValue(t)
				bv = c.MakeValue(t)
			)
			assert.Must(t).NoError(subject.Define(a, key.Get(t), av))
			assert.Must(t).NoError(subject.Define(b, key.Get(t), bv))

			got, found := subject.Lookup(a, key.Get(t))
			assert.Must(t).True(found)
			assert.Must(t).Equal(av, got)
			got, found = subject.Lookup(b, key.Get(t))
			assert.Must(t).True(found)
			assert.Must(t).Equal(bv, got)
		})
	})

	s.Test("concurrent define and read access", func(t *testcase.T) {
		var (
			tgt = c.MakeTarget(t)
			oth = c.MakeTarget(t)
			k1  = c.MakeKey(t)
			k2  = random.Unique(func() string { return c.MakeKey(t) }, k1)
			v1  = c.MakeValue(t)
			v2  = c.MakeValue(t)
			mn  = member.Get(t)
			ann = subject.Annotate(k2, value.Get(t))
		)
		testcase.Race(func() {
			assert.NoError(t, subject.Define(tgt, k1, v1))
		}, func() {
			assert.NoError(t, subject.Define(tgt, k1, v2, mn))
		}, func() {
			ann(tgt)
		}, func() {
			ann(oth)
		}, func() {
			subject.Lookup(tgt, k1)
		}, func() {
			subject.Has(tgt, k1)
		}, func() {
			subject.Keys(tgt)
		})

		assert.Must(t).True(subject.Has(tgt, k1))
		assert.Must(t).True(subject.Has(tgt, k2))
		assert.Must(t).True(subject.Has(oth, k2))
	})

	return s.AsSuite("Accessor")
}

type Option[V any] interface {
	option.Option[Config[V]]
}

type Config[V any] struct {
	// MakeTarget creates a fresh target to annotate.
	// Each call must yield a target with a new identity.
	MakeTarget func(testing.TB) any
	// MakeKey creates a metadata key.
	MakeKey func(testing.TB) string
	// MakeMember creates a member name of the target.
	MakeMember func(testing.TB) string
	// MakeValue creates a metadata value of the V type.
	MakeValue func(testing.TB) V
}

func (c *Config[V]) Init() {
	c.MakeTarget = func(tb testing.TB) any {
		return &struct{ ID string }{ID: rnd.UUID()}
	}
	c.MakeKey = func(tb testing.TB) string {
		return rnd.StringNC(5, random.CharsetAlpha())
	}
	c.MakeMember = func(tb testing.TB) string {
		return rnd.StringNC(5, random.CharsetAlpha())
	}
	c.MakeValue = func(tb testing.TB) V {
		type wrapper struct{ V V }
		return rnd.Make(wrapper{}).(wrapper).V
	}
}

func (c Config[V]) Configure(t *Config[V]) {
	*t = reflectkit.MergeStruct(*t, c)
}
