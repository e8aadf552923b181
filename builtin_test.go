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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/inject"
	"go.uber.org/inject/injecttest"
	"go.uber.org/inject/types"
)

func TestLambda(t *testing.T) {
	t.Parallel()

	t.Run("no parameters", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		foo := injecttest.Value("foo", f.Foo(), f.file, 0)
		p := f.pool(t, foo)

		res, err := p.Resolve(inject.Request{Type: f.Func(f.Foo()), Scope: f.file})
		require.NoError(t, err)
		assert.Equal(t, inject.LambdaProvider, res.Candidate.Kind)
		require.Len(t, res.Args, 1)
		assert.Same(t, foo, res.Args[0].Value.Candidate)
		assert.Equal(t, "() -> Foo <= lambda\n  result: Foo <= foo\n", res.String())
	})

	t.Run("parameters are in scope", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.pool(t, injecttest.Value("foo", f.Foo(), f.file, 0))

		res, err := p.Resolve(inject.Request{Type: f.Func(f.Foo(), f.Foo()), Scope: f.file})
		require.NoError(t, err)
		arg := res.Args[0].Value
		assert.Equal(t, "p1", arg.Candidate.Name)
		assert.Equal(t, inject.ValueProvider, arg.Candidate.Kind)
		assert.Equal(t, "(Foo) -> Foo <= lambda\n  result: Foo <= p1\n", res.String())
	})

	t.Run("missing result", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.pool(t)

		_, err := p.Resolve(inject.Request{Type: f.Func(f.Bar()), Scope: f.file})
		require.Error(t, err)
		assert.ErrorIs(t, err, inject.ErrNoCandidate)
		assert.Contains(t, err.Error(), "cannot use lambda: parameter result")
	})

	t.Run("declared function wins", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		fn := injecttest.Value("fn", f.Func(f.Foo()), f.file, 0)
		p := f.pool(t, fn, injecttest.Value("foo", f.Foo(), f.file, 1))

		res, err := p.Resolve(inject.Request{Type: f.Func(f.Foo()), Scope: f.file})
		require.NoError(t, err)
		assert.Same(t, fn, res.Candidate)
	})

	t.Run("tagged function types are not synthesized", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		tag := f.Tag("Named")
		p := f.pool(t, injecttest.Value("foo", f.Foo(), f.file, 0))

		_, err := p.Resolve(inject.Request{Type: f.Tagged(f.Func(f.Foo()), tag), Scope: f.file})
		assert.ErrorIs(t, err, inject.ErrNoCandidate)
	})
}

func TestList(t *testing.T) {
	t.Parallel()

	t.Run("collects every element", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		a := injecttest.Value("a", f.Foo(), f.file, 0)
		b := injecttest.Value("b", f.Foo(), f.file, 1)
		p := f.pool(t, a, b)

		res, err := p.Resolve(inject.Request{Type: f.ListType(f.Foo()), Scope: f.file})
		require.NoError(t, err)
		assert.Equal(t, inject.ListProvider, res.Candidate.Kind)
		require.Len(t, res.Args, 2)
		assert.Same(t, a, res.Args[0].Value.Candidate)
		assert.Same(t, b, res.Args[1].Value.Candidate)
		assert.Equal(t, "List<Foo> <= listOf\n  [0]: Foo <= a\n  [1]: Foo <= b\n", res.String())
	})

	t.Run("includes subtypes", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		seq := injecttest.Value("seq", types.Of(f.charSeq), f.file, 0)
		str := injecttest.Value("str", f.Str(), f.file, 1)
		p := f.pool(t, seq, str)

		res, err := p.Resolve(inject.Request{Type: f.ListType(types.Of(f.charSeq)), Scope: f.file})
		require.NoError(t, err)
		assert.Len(t, res.Args, 2)
	})

	t.Run("adds collections in bulk", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		a := injecttest.Value("a", f.Foo(), f.file, 0)
		more := injecttest.Value("more", f.Type(f.Collection(), f.Foo()), f.file, 1)
		p := f.pool(t, a, more)

		res, err := p.Resolve(inject.Request{Type: f.ListType(f.Foo()), Scope: f.file})
		require.NoError(t, err)
		require.Len(t, res.Args, 2)
		assert.Same(t, a, res.Args[0].Value.Candidate)
		assert.Same(t, more, res.Args[1].Value.Candidate)
	})

	t.Run("declared list wins", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		list := injecttest.Value("list", f.ListType(f.Foo()), f.file, 0)
		p := f.pool(t, list, injecttest.Value("a", f.Foo(), f.file, 1))

		res, err := p.Resolve(inject.Request{Type: f.ListType(f.Foo()), Scope: f.file})
		require.NoError(t, err)
		assert.Same(t, list, res.Candidate)
	})

	t.Run("no elements", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.pool(t, injecttest.Value("a", f.Foo(), f.file, 0))

		_, err := p.Resolve(inject.Request{Type: f.ListType(f.Bar()), Scope: f.file})
		assert.ErrorIs(t, err, inject.ErrNoCandidate)
	})

	t.Run("element failure", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		a := injecttest.Value("a", f.Foo(), f.file, 0)
		b := injecttest.Func("b", f.Foo(), f.file, f.Bar())
		p := f.pool(t, a, b)

		_, err := p.Resolve(inject.Request{Type: f.ListType(f.Foo()), Scope: f.file})
		require.Error(t, err)
		assert.ErrorIs(t, err, inject.ErrNoCandidate)
		assert.Contains(t, err.Error(), "cannot use listOf: parameter [1]: cannot use b")
	})
}

func TestTypeKey(t *testing.T) {
	t.Parallel()

	t.Run("concrete type", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.pool(t)

		req := inject.Request{Type: f.TypeKeyType(f.Type(f.box, f.Foo())), Scope: f.file}
		res, err := p.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, inject.TypeKeyProvider, res.Candidate.Kind)
		assert.Empty(t, res.Args)
		assert.Equal(t, "Box<Foo>", res.Value)
		assert.Equal(t, "TypeKey<Box<Foo>> <= typeKeyOf = \"Box<Foo>\"\n", res.String())
	})

	t.Run("type parameter with a key in scope", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		tp := f.TypeParam("main.T")
		fn := f.file.Child("main", inject.FunctionScope, tp)
		tKey := injecttest.Value("tKey", f.TypeKeyType(types.Of(tp)), fn, 0)
		p := f.pool(t, tKey)

		res, err := p.Resolve(inject.Request{Type: f.TypeKeyType(f.Type(f.box, types.Of(tp))), Scope: fn})
		require.NoError(t, err)
		assert.Equal(t, inject.TypeKeyProvider, res.Candidate.Kind)
		require.Len(t, res.Args, 1)
		assert.Equal(t, "main.TKey", res.Args[0].Param.Name)
		assert.Same(t, tKey, res.Args[0].Value.Candidate)
	})

	t.Run("type parameter without a key", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		tp := f.TypeParam("main.T")
		fn := f.file.Child("main", inject.FunctionScope, tp)
		p := f.pool(t)

		_, err := p.Resolve(inject.Request{Type: f.TypeKeyType(f.Type(f.box, types.Of(tp))), Scope: fn})
		require.Error(t, err)
		assert.ErrorIs(t, err, inject.ErrNoCandidate)
		assert.Contains(t, err.Error(), "cannot use typeKeyOf: parameter main.TKey")

		_, err = p.Resolve(inject.Request{Type: f.TypeKeyType(types.Of(tp)), Scope: fn})
		assert.ErrorIs(t, err, inject.ErrNoCandidate)
	})

	t.Run("declared key wins", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		key := injecttest.Value("fooKey", f.TypeKeyType(f.Foo()), f.file, 0)
		p := f.pool(t, key)

		res, err := p.Resolve(inject.Request{Type: f.TypeKeyType(f.Foo()), Scope: f.file})
		require.NoError(t, err)
		assert.Same(t, key, res.Candidate)
		assert.Empty(t, res.Value)
	})
}

func TestSourceKey(t *testing.T) {
	t.Parallel()

	t.Run("requested directly", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.pool(t)

		res, err := p.Resolve(inject.Request{Type: types.Of(f.SourceKey()), Scope: f.file, Position: 3})
		require.NoError(t, err)
		assert.Equal(t, inject.SourceKeyProvider, res.Candidate.Kind)
		assert.Equal(t, "ext/app/main.kt:3", res.Value)
	})

	t.Run("identifies the outermost request", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		logger := injecttest.Func("logger", f.Foo(), f.file, types.Of(f.SourceKey()))
		p := f.pool(t, logger)

		res, err := p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file, Position: 7})
		require.NoError(t, err)
		require.Len(t, res.Args, 1)
		assert.Equal(t, "ext/app/main.kt:7", res.Args[0].Value.Value)
		assert.Equal(t,
			"Foo <= logger\n  p0: SourceKey <= sourceKey = \"ext/app/main.kt:7\"\n",
			res.String())
	})

	t.Run("identifies the call site", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.pool(t)
		callee := injecttest.Func("log", f.Str(), f.file, types.Of(f.SourceKey()))

		res, err := p.ResolveCall(inject.Call{Callee: callee, Scope: f.file, Position: 12})
		require.NoError(t, err)
		require.Len(t, res.Args, 1)
		assert.Equal(t, "ext/app/main.kt:12", res.Args[0].Value.Value)
	})
}

func TestCallContext(t *testing.T) {
	t.Parallel()

	suspending := func(p *inject.Provider) *inject.Provider {
		p.CallContext = inject.SuspendContext
		return p
	}

	t.Run("requires a matching context", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		fetch := suspending(injecttest.Value("fetch", f.Foo(), f.file, 0))
		p := f.pool(t, fetch)

		_, err := p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file})
		require.Error(t, err)
		assert.ErrorIs(t, err, inject.ErrCallContextMismatch)
		assert.NotErrorIs(t, err, inject.ErrNoCandidate)

		var mismatch *inject.CallContextMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Same(t, fetch, mismatch.Candidate)
		assert.Equal(t, "cannot use fetch from default code: it requires a suspend context", err.Error())

		res, err := p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file, CallContext: inject.SuspendContext})
		require.NoError(t, err)
		assert.Same(t, fetch, res.Candidate)

		_, err = p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file, CallContext: inject.ComposableContext})
		assert.ErrorIs(t, err, inject.ErrCallContextMismatch)
	})

	t.Run("default providers are usable anywhere", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		foo := injecttest.Value("foo", f.Foo(), f.file, 0)
		p := f.pool(t, foo)

		for _, ctx := range []inject.CallContext{inject.DefaultContext, inject.SuspendContext, inject.ComposableContext} {
			res, err := p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file, CallContext: ctx})
			require.NoError(t, err, ctx.String())
			assert.Same(t, foo, res.Candidate)
		}
	})

	t.Run("nested requests inherit the context", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		bar := injecttest.Func("bar", f.Bar(), f.file, f.Foo())
		p := f.pool(t, bar, suspending(injecttest.Value("fetch", f.Foo(), f.file, 0)))

		_, err := p.Resolve(inject.Request{Type: f.Bar(), Scope: f.file, CallContext: inject.SuspendContext})
		require.NoError(t, err)

		_, err = p.Resolve(inject.Request{Type: f.Bar(), Scope: f.file})
		require.Error(t, err)
		assert.ErrorIs(t, err, inject.ErrCallContextMismatch)
		assert.Contains(t, err.Error(), "cannot use bar: parameter p0: cannot use fetch")
	})

	t.Run("function values run in the default context", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.pool(t, suspending(injecttest.Value("fetch", f.Foo(), f.file, 0)))

		_, err := p.Resolve(inject.Request{
			Type:        f.Func(f.Foo()),
			Scope:       f.file,
			CallContext: inject.SuspendContext,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, inject.ErrCallContextMismatch)
	})

	t.Run("mismatched candidate falls through", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		fn := f.file.Child("main", inject.FunctionScope)
		inner := suspending(injecttest.Value("inner", f.Foo(), fn, 0))
		outer := injecttest.Value("outer", f.Foo(), f.file, 0)
		p := f.pool(t, inner, outer)

		res, err := p.Resolve(inject.Request{Type: f.Foo(), Scope: fn})
		require.NoError(t, err)
		assert.Same(t, outer, res.Candidate)

		res, err = p.Resolve(inject.Request{Type: f.Foo(), Scope: fn, CallContext: inject.SuspendContext})
		require.NoError(t, err)
		assert.Same(t, inner, res.Candidate)
	})

	t.Run("injected call", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		p := f.pool(t, suspending(injecttest.Value("fetch", f.Foo(), f.file, 0)))
		load := suspending(injecttest.Func("load", f.Str(), f.file, f.Foo()))

		_, err := p.ResolveCall(inject.Call{Callee: load, Scope: f.file})
		require.Error(t, err)
		assert.ErrorIs(t, err, inject.ErrCallContextMismatch)
		assert.Equal(t, "cannot use load from default code: it requires a suspend context", err.Error())

		res, err := p.ResolveCall(inject.Call{Callee: load, Scope: f.file, CallContext: inject.SuspendContext})
		require.NoError(t, err)
		require.Len(t, res.Args, 1)
		assert.Equal(t, "fetch", res.Args[0].Value.Candidate.Name)
	})
}
