// Copyright (c) 2026 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package inject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/inject"
	"go.uber.org/inject/injecttest"
	"go.uber.org/inject/internal/injectlog"
	"go.uber.org/inject/types"
)

// spreadFixture declares the tags A, B and C and a spreading provider for
// each: @A S becomes @B S, @B S becomes @C S, and @C S becomes S.
type spreadFixture struct {
	*fixture

	a, b, c            *types.Classifier
	aToB, bToC, cToAny *inject.Provider
}

func newSpreadFixture(t *testing.T) *spreadFixture {
	f := &spreadFixture{fixture: newFixture(t)}
	f.a = f.Tag("A")
	f.b = f.Tag("B")
	f.c = f.Tag("C")
	f.aToB = f.spreading("aToB", f.a, func(s types.Type) types.Type { return f.Tagged(s, f.b) })
	f.bToC = f.spreading("bToC", f.b, func(s types.Type) types.Type { return f.Tagged(s, f.c) })
	f.cToAny = f.spreading("cToAny", f.c, func(s types.Type) types.Type { return s })
	return f
}

// spreading declares name<@Spread T : @tag S, S>(t: T): provides(S).
func (f *spreadFixture) spreading(name string, tag *types.Classifier, provides func(types.Type) types.Type) *inject.Provider {
	s := f.TypeParam(name + ".S")
	tp := f.SpreadParam(name+".T", f.Tagged(types.Of(s), tag))
	return &inject.Provider{
		Name:           name,
		Type:           provides(types.Of(s)),
		TypeParameters: []*types.Classifier{tp, s},
		Params:         []inject.Param{{Name: "t", Type: types.Of(tp)}},
		Scope:          f.file,
		Order:          10,
	}
}

func synthesized(p *inject.Pool, spread *inject.Provider) []*inject.Provider {
	var out []*inject.Provider
	for _, prov := range p.Providers() {
		if prov.Origin != nil && prov.Origin.Spread == spread {
			out = append(out, prov)
		}
	}
	return out
}

// root follows Origin.Matched back to the declaration that started the
// expansion.
func root(prov *inject.Provider) *inject.Provider {
	for prov.Origin != nil {
		prov = prov.Origin.Matched
	}
	return prov
}

func TestSpreading(t *testing.T) {
	t.Parallel()

	t.Run("single stage", func(t *testing.T) {
		t.Parallel()

		f := newSpreadFixture(t)
		foo := injecttest.Value("foo", f.Tagged(f.Foo(), f.c), f.file, 0)
		p := f.pool(t, f.cToAny, foo)

		assert.Equal(t, []string{"cToAny"}, names(p.Spreading()))
		res, err := p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file})
		require.NoError(t, err)
		assert.Same(t, f.cToAny, res.Candidate.Declared())
		assert.Equal(t, "Foo <= cToAny\n  t: @C Foo <= foo\n", res.String())
	})

	t.Run("triggered by a class", func(t *testing.T) {
		t.Parallel()

		f := newSpreadFixture(t)
		notAny := f.Class("NotAny")
		ctor := &inject.Provider{
			Name:  "NotAny",
			Kind:  inject.ConstructorProvider,
			Type:  f.Tagged(types.Of(notAny), f.c),
			Scope: f.file,
		}
		p := f.pool(t, f.cToAny, ctor)

		res, err := p.Resolve(inject.Request{Type: types.Of(notAny), Scope: f.file})
		require.NoError(t, err)
		assert.Same(t, ctor, res.Args[0].Value.Candidate)
	})

	t.Run("chain", func(t *testing.T) {
		t.Parallel()

		f := newSpreadFixture(t)
		spy := new(injectlog.Spy)
		foo := injecttest.Value("foo", f.Tagged(f.Foo(), f.a), f.file, 0)
		p := injecttest.New(t, f.Universe.Universe,
			inject.WithLogger(spy),
			inject.Provide(f.aToB, f.bToC, f.cToAny, foo),
		)

		assert.Equal(t, []string{
			"Provided", "Provided", "Provided", "Provided",
			"Expanded", "Expanded", "Expanded",
		}, spy.EventTypes())

		final := synthesized(p, f.cToAny)
		require.Len(t, final, 1)
		assert.Same(t, foo, root(final[0]))

		res, err := p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file})
		require.NoError(t, err)
		assert.Equal(t,
			"Foo <= cToAny\n"+
				"  t: @C Foo <= bToC\n"+
				"    t: @B Foo <= aToB\n"+
				"      t: @A Foo <= foo\n",
			res.String())
		assert.Empty(t, p.Unused(res))
	})

	t.Run("independent roots", func(t *testing.T) {
		t.Parallel()

		f := newSpreadFixture(t)
		foo1 := injecttest.Value("foo1", f.Tagged(f.Foo(), f.a), f.file, 0)
		foo2 := injecttest.Value("foo2", f.Tagged(f.Foo(), f.a), f.file, 1)
		p := f.pool(t, f.aToB, f.bToC, f.cToAny, foo1, foo2)

		final := synthesized(p, f.cToAny)
		require.Len(t, final, 2)
		assert.Same(t, foo1, root(final[0]))
		assert.Same(t, foo2, root(final[1]))
		assert.Len(t, synthesized(p, f.aToB), 2)
		assert.Len(t, synthesized(p, f.bToC), 2)

		res, err := p.Resolve(inject.Request{Type: f.ListType(f.Foo()), Scope: f.file})
		require.NoError(t, err)
		require.Len(t, res.Args, 2)
		var roots []*inject.Provider
		for _, a := range res.Args {
			a.Value.Walk(func(r *inject.Resolved) bool {
				if len(r.Args) == 0 {
					roots = append(roots, r.Candidate)
				}
				return true
			})
		}
		assert.Equal(t, []*inject.Provider{foo1, foo2}, roots)

		_, err = p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file})
		assert.ErrorIs(t, err, inject.ErrAmbiguous)
	})

	t.Run("same type from several providers", func(t *testing.T) {
		t.Parallel()

		f := newSpreadFixture(t)
		trigger := f.Tag("Trigger")
		tp := f.SpreadParam("triggerImpl.T", f.Tagged(f.Str(), trigger))
		triggerImpl := &inject.Provider{
			Name:           "triggerImpl",
			Type:           f.Str(),
			TypeParameters: []*types.Classifier{tp},
			Params:         []inject.Param{{Name: "instance", Type: types.Of(tp)}},
			Scope:          f.file,
		}
		a := injecttest.Func("a", f.Tagged(f.Str(), trigger), f.file)
		b := injecttest.Func("b", f.Tagged(f.Str(), trigger), f.file)
		p := f.pool(t, triggerImpl, a, b)

		res, err := p.Resolve(inject.Request{Type: f.ListType(f.Str()), Scope: f.file})
		require.NoError(t, err)
		assert.Equal(t,
			"List<String> <= listOf\n"+
				"  [0]: String <= triggerImpl\n"+
				"    instance: @Trigger String <= a\n"+
				"  [1]: String <= triggerImpl\n"+
				"    instance: @Trigger String <= b\n",
			res.String())
	})

	t.Run("unused spreading provider", func(t *testing.T) {
		t.Parallel()

		f := newSpreadFixture(t)
		foo := injecttest.Value("foo", f.Tagged(f.Foo(), f.c), f.file, 0)
		p := f.pool(t, f.aToB, f.cToAny, foo)

		assert.Empty(t, synthesized(p, f.aToB))
		res := injecttest.MustResolve(t, p, inject.Request{Type: f.Foo(), Scope: f.file})
		assert.Equal(t, []string{"aToB"}, names(p.Unused(res)))
	})

	t.Run("innermost scope", func(t *testing.T) {
		t.Parallel()

		f := newSpreadFixture(t)
		fn := f.file.Child("main", inject.FunctionScope)
		sibling := f.file.Child("other", inject.FunctionScope)
		f.cToAny.Scope = fn
		foo := injecttest.Value("foo", f.Tagged(f.Foo(), f.c), f.file, 0)
		bar := injecttest.Value("bar", f.Tagged(f.Bar(), f.c), sibling, 0)
		p := f.pool(t, f.cToAny, foo, bar)

		final := synthesized(p, f.cToAny)
		require.Len(t, final, 1)
		assert.Same(t, fn, final[0].Scope)

		_, err := p.Resolve(inject.Request{Type: f.Foo(), Scope: fn})
		assert.NoError(t, err)
		_, err = p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file})
		assert.ErrorIs(t, err, inject.ErrNoCandidate)
		_, err = p.Resolve(inject.Request{Type: f.Bar(), Scope: sibling})
		assert.ErrorIs(t, err, inject.ErrNoCandidate)
	})

	t.Run("self triggering", func(t *testing.T) {
		t.Parallel()

		f := newSpreadFixture(t)
		loop := f.spreading("loop", f.a, func(s types.Type) types.Type { return f.Tagged(s, f.a) })
		spy := new(injectlog.Spy)
		p := inject.NewPool(f.Universe.Universe,
			inject.WithLogger(spy),
			inject.Provide(loop, injecttest.Value("foo", f.Tagged(f.Foo(), f.a), f.file, 0)),
		)

		require.Error(t, p.Err())
		assert.ErrorIs(t, p.Err(), inject.ErrMalformedDeclaration)
		assert.Contains(t, p.Err().Error(), "provided type @A loop.S would trigger its own spread parameter loop.T")
		assert.Empty(t, p.Spreading())
		assert.Equal(t, []string{"Malformed", "Provided"}, spy.EventTypes())
	})
}

func TestSpreadingNullability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc   string
		strict bool
		want   int
	}{
		{desc: "strict", strict: true, want: 0},
		{desc: "lenient", strict: false, want: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			f := newSpreadFixture(t)
			foo := injecttest.Value("foo", f.Tagged(f.Foo().WithNullability(true), f.c), f.file, 0)
			p := injecttest.New(t, f.Universe.Universe,
				inject.StrictSpreadNullability(tt.strict),
				inject.Provide(f.cToAny, foo),
			)

			assert.Len(t, synthesized(p, f.cToAny), tt.want)
			res, err := p.Resolve(inject.Request{Type: f.Foo().WithNullability(true), Scope: f.file})
			if tt.want == 0 {
				assert.ErrorIs(t, err, inject.ErrNoCandidate)
				return
			}
			require.NoError(t, err)
			assert.Same(t, f.cToAny, res.Candidate.Declared())
			assert.Equal(t, "Foo?", res.Candidate.Type.String())
		})
	}
}
