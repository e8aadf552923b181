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
	"go.uber.org/goleak"
	"go.uber.org/inject"
	"go.uber.org/inject/config"
	"go.uber.org/inject/injectevent"
	"go.uber.org/inject/injecttest"
	"go.uber.org/inject/internal/injectlog"
	"go.uber.org/inject/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixture is a small program: an external root, a unit "app" with one
// file, and a few classes.
type fixture struct {
	*injecttest.Universe

	ext, app, file *inject.Scope

	charSeq, str, foo, bar, baz *types.Classifier
	box                         *types.Classifier
}

func newFixture(t *testing.T) *fixture {
	u := injecttest.NewUniverse(t)
	f := &fixture{Universe: u}
	f.ext = inject.NewScope("ext")
	f.app = f.ext.Child("app", inject.UnitScope)
	f.file = f.app.Child("main.kt", inject.FileScope)

	f.charSeq = u.Interface("CharSequence")
	f.str = u.Class("String", types.Of(f.charSeq))
	f.foo = u.Class("Foo")
	f.bar = u.Class("Bar")
	f.baz = u.Class("Baz")
	f.box = u.Generic("Box", []*types.Classifier{u.TypeParam("Box.E")})
	return f
}

func (f *fixture) Foo() types.Type { return types.Of(f.foo) }
func (f *fixture) Bar() types.Type { return types.Of(f.bar) }
func (f *fixture) Baz() types.Type { return types.Of(f.baz) }
func (f *fixture) Str() types.Type { return types.Of(f.str) }

func (f *fixture) pool(t *testing.T, providers ...*inject.Provider) *inject.Pool {
	return injecttest.New(t, f.Universe.Universe, inject.Provide(providers...))
}

func names(ps []*inject.Provider) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestNewPool(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	foo := injecttest.Value("foo", f.Foo(), f.file, 0)
	bar := injecttest.Func("bar", f.Bar(), f.file, f.Foo())
	p := f.pool(t, foo, bar)

	assert.NoError(t, p.Err())
	assert.Same(t, f.Universe.Universe, p.Universe())
	assert.Equal(t, []string{"foo", "bar"}, names(p.Providers()))
	assert.Empty(t, p.Spreading())
}

func TestMalformedDeclarations(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tag := f.Tag("Trigger")
	s := f.TypeParam("S")

	tests := []struct {
		desc     string
		provider *inject.Provider
		wantErr  string
	}{
		{
			desc:     "nil",
			provider: nil,
			wantErr:  "provider is nil",
		},
		{
			desc:     "no name",
			provider: &inject.Provider{Type: f.Foo(), Scope: f.file},
			wantErr:  "provider has no name",
		},
		{
			desc:     "no scope",
			provider: &inject.Provider{Name: "foo", Type: f.Foo()},
			wantErr:  "provider is not declared in a scope",
		},
		{
			desc:     "no type",
			provider: &inject.Provider{Name: "foo", Scope: f.file},
			wantErr:  "provider has no type",
		},
		{
			desc: "untyped parameter",
			provider: &inject.Provider{
				Name:   "foo",
				Type:   f.Foo(),
				Scope:  f.file,
				Params: []inject.Param{{Name: "bar"}},
			},
			wantErr: `parameter 0 ("bar") has no type`,
		},
		{
			desc: "class as type parameter",
			provider: &inject.Provider{
				Name:           "foo",
				Type:           f.Foo(),
				Scope:          f.file,
				TypeParameters: []*types.Classifier{f.bar},
			},
			wantErr: "Bar is not a type parameter",
		},
		{
			desc: "two spread parameters",
			provider: &inject.Provider{
				Name:  "twice",
				Type:  f.Foo(),
				Scope: f.file,
				TypeParameters: []*types.Classifier{
					f.SpreadParam("twice.T", f.Tagged(types.Of(s), tag)),
					f.SpreadParam("twice.U", f.Tagged(types.Of(s), tag)),
					s,
				},
			},
			wantErr: "declares 2 spread type parameters, at most one is allowed",
		},
		{
			desc: "spread property",
			provider: &inject.Provider{
				Name:           "prop",
				Kind:           inject.PropertyProvider,
				Type:           f.Foo(),
				Scope:          f.file,
				TypeParameters: []*types.Classifier{f.SpreadParam("prop.T", f.Tagged(f.Foo(), tag))},
			},
			wantErr: "spread type parameters are only supported on functions and classes",
		},
		{
			desc: "untagged spread bound",
			provider: &inject.Provider{
				Name:           "plain",
				Type:           f.Foo(),
				Scope:          f.file,
				TypeParameters: []*types.Classifier{f.SpreadParam("plain.T", f.Bar())},
			},
			wantErr: "must be bounded by a tagged type",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			spy := new(injectlog.Spy)
			ok := injecttest.Value("ok", f.Baz(), f.file, 0)
			p := inject.NewPool(f.Universe.Universe,
				inject.WithLogger(spy),
				inject.Provide(tt.provider, ok),
			)

			err := p.Err()
			require.Error(t, err)
			assert.ErrorIs(t, err, inject.ErrMalformedDeclaration)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "inject.Provide(")
			assert.Equal(t, []string{"Malformed", "Provided"}, spy.EventTypes())

			var malformed *inject.MalformedDeclarationError
			require.True(t, errors.As(err, &malformed))
			if tt.provider != nil {
				assert.Same(t, tt.provider, malformed.Provider)
			}

			// The rest of the pool is unaffected.
			res, err := p.Resolve(inject.Request{Type: f.Baz(), Scope: f.file})
			require.NoError(t, err)
			assert.Same(t, ok, res.Candidate)
		})
	}
}

func TestUnused(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	foo := injecttest.Value("foo", f.Foo(), f.file, 0)
	bar := injecttest.Func("bar", f.Bar(), f.file, f.Foo())
	baz := injecttest.Value("baz", f.Baz(), f.file, 1)
	p := f.pool(t, foo, bar, baz)

	assert.Equal(t, []string{"foo", "bar", "baz"}, names(p.Unused()))

	res := injecttest.MustResolve(t, p, inject.Request{Type: f.Bar(), Scope: f.file})
	assert.Equal(t, []string{"baz"}, names(p.Unused(res)))
	assert.Equal(t, []string{"baz"}, names(p.Unused(res, nil)))
}

func TestEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	spy := new(injectlog.Spy)
	p := inject.NewPool(f.Universe.Universe,
		inject.WithLogger(spy),
		inject.Provide(injecttest.Value("foo", f.Foo(), f.file, 0)),
	)
	require.NoError(t, p.Err())
	assert.Equal(t, []string{"Provided"}, spy.EventTypes())

	spy.Reset()
	_, err := p.Resolve(inject.Request{Type: f.Foo(), Scope: f.file})
	require.NoError(t, err)
	assert.Equal(t, []string{"Resolving", "Resolved"}, spy.EventTypes())

	resolved := spy.Events()[1].(*injectevent.Resolved)
	assert.Equal(t, "Foo", resolved.TypeName)
	assert.Equal(t, "ext/app/main.kt", resolved.ScopeName)
	assert.Equal(t, "foo", resolved.CandidateName)
	assert.NoError(t, resolved.Err)

	spy.Reset()
	_, err = p.Resolve(inject.Request{Type: f.Bar(), Scope: f.file})
	require.Error(t, err)
	resolved = spy.Events()[1].(*injectevent.Resolved)
	assert.Empty(t, resolved.CandidateName)
	assert.Equal(t, err, resolved.Err)
}

func TestOptionString(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tests := []struct {
		give inject.Option
		want string
	}{
		{
			give: inject.Provide(injecttest.Value("foo", f.Foo(), f.file, 0), nil),
			want: "inject.Provide(foo, <nil>)",
		},
		{
			give: inject.WithLogger(new(injectlog.Spy)),
			want: "inject.WithLogger(*injectlog.Spy)",
		},
		{
			give: inject.MaxDepth(12),
			want: "inject.MaxDepth(12)",
		},
		{
			give: inject.Options(inject.MaxDepth(3), inject.StrictSpreadNullability(false)),
			want: "inject.Options(inject.MaxDepth(3), inject.StrictSpreadNullability(false))",
		},
		{
			give: inject.WithConfig(config.Default().Resolution),
			want: "inject.Options(inject.MaxDepth(256), inject.StrictSpreadNullability(true))",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.give.String())
	}
}
