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

package infer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/inject/infer"
	"go.uber.org/inject/types"
)

type world struct {
	u                      *types.Universe
	charSeq, str, builder  *types.Classifier
	box, consumer          *types.Classifier
	trigger, named, number *types.Classifier
}

func declare(t testing.TB, u *types.Universe, spec types.ClassifierSpec) *types.Classifier {
	t.Helper()
	c, err := u.Declare(spec)
	require.NoError(t, err)
	return c
}

func newWorld(t testing.TB) *world {
	u := types.NewUniverse()
	w := &world{u: u}
	w.charSeq = declare(t, u, types.ClassifierSpec{FqName: "CharSequence", Kind: types.Interface})
	cs := []types.Type{types.Of(w.charSeq)}
	w.str = declare(t, u, types.ClassifierSpec{FqName: "String", Supertypes: func() []types.Type { return cs }})
	w.builder = declare(t, u, types.ClassifierSpec{FqName: "StringBuilder", Supertypes: func() []types.Type { return cs }})
	w.number = declare(t, u, types.ClassifierSpec{FqName: "Number"})

	boxT := declare(t, u, types.ClassifierSpec{FqName: "Box.T", Kind: types.TypeParameter})
	w.box = declare(t, u, types.ClassifierSpec{FqName: "Box", TypeParameters: []*types.Classifier{boxT}})
	consumerT := declare(t, u, types.ClassifierSpec{FqName: "Consumer.T", Kind: types.TypeParameter, Variance: types.In})
	w.consumer = declare(t, u, types.ClassifierSpec{FqName: "Consumer", TypeParameters: []*types.Classifier{consumerT}})

	w.trigger = declare(t, u, types.ClassifierSpec{FqName: "Trigger", Kind: types.Tag})
	namedN := declare(t, u, types.ClassifierSpec{FqName: "Named.N", Kind: types.TypeParameter})
	w.named = declare(t, u, types.ClassifierSpec{FqName: "Named", Kind: types.Tag, TypeParameters: []*types.Classifier{namedN}})
	return w
}

func (w *world) param(t testing.TB, name string, bounds ...types.Type) *types.Classifier {
	spec := types.ClassifierSpec{FqName: name, Kind: types.TypeParameter}
	if len(bounds) > 0 {
		spec.Supertypes = func() []types.Type { return bounds }
	}
	return declare(t, w.u, spec)
}

func binding(t testing.TB, ctx *infer.Context, v *types.Classifier) string {
	t.Helper()
	b, ok := ctx.Binding(v)
	require.True(t, ok, "%v was not fixed", v)
	return b.String()
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("covariant argument", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		tp := w.param(t, "f.T")

		ctx := infer.Run(w.u, w.u.ListType(types.Of(tp)), w.u.ListType(types.Of(w.str)),
			infer.Options{Variables: []*types.Classifier{tp}})
		require.NoError(t, ctx.Err())
		assert.Equal(t, "String", binding(t, ctx, tp))
	})

	t.Run("contravariant argument", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		tp := w.param(t, "f.T")

		ctx := infer.Run(w.u, types.Of(w.consumer, types.Of(tp)), types.Of(w.consumer, types.Of(w.str)),
			infer.Options{Variables: []*types.Classifier{tp}})
		require.NoError(t, ctx.Err())
		assert.Equal(t, "String", binding(t, ctx, tp))
	})

	t.Run("bound satisfied", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		tp := w.param(t, "f.T", types.Of(w.charSeq))

		ctx := infer.Run(w.u, types.Of(tp), types.Of(w.str), infer.Options{Variables: []*types.Classifier{tp}})
		require.NoError(t, ctx.Err())
		assert.Equal(t, "String", binding(t, ctx, tp))
	})

	t.Run("bound violated", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		tp := w.param(t, "f.T", types.Of(w.charSeq))

		ctx := infer.Run(w.u, types.Of(tp), types.Of(w.number), infer.Options{Variables: []*types.Classifier{tp}})
		assert.False(t, ctx.OK())
		assert.ErrorIs(t, ctx.Err(), infer.ErrUnsatisfiable)
	})

	t.Run("chained bounds", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		a := w.param(t, "f.A")
		b := w.param(t, "f.B", types.Of(a))
		c := w.param(t, "f.C", types.Of(b))

		ctx := infer.Run(w.u, types.Of(w.box, types.Of(c)), types.Of(w.box, types.Of(w.str)),
			infer.Options{Variables: []*types.Classifier{a, b, c}})
		require.NoError(t, ctx.Err())
		assert.Equal(t, "String", binding(t, ctx, a))
		assert.Equal(t, "String", binding(t, ctx, b))
		assert.Equal(t, "String", binding(t, ctx, c))
	})

	t.Run("tagged bound", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		s := w.param(t, "f.S")
		tp := w.param(t, "f.T", types.Of(s).MustTagged(types.Of(w.trigger)))

		subject := types.Of(w.str).MustTagged(types.Of(w.trigger))
		ctx := infer.Run(w.u, subject, types.Of(tp), infer.Options{Variables: []*types.Classifier{tp, s}})
		require.NoError(t, ctx.Err())
		assert.Equal(t, "@Trigger String", binding(t, ctx, tp))
		assert.Equal(t, "String", binding(t, ctx, s))
	})

	t.Run("tag prefix", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		tp := w.param(t, "f.T")

		subject := types.Of(w.str).
			MustTagged(types.Of(w.named, types.Of(w.number))).
			MustTagged(types.Of(w.trigger))
		pattern := types.Of(tp).MustTagged(types.Of(w.trigger))
		ctx := infer.Run(w.u, subject, pattern, infer.Options{Variables: []*types.Classifier{tp}})
		require.NoError(t, ctx.Err())
		assert.Equal(t, "@Named<Number> String", binding(t, ctx, tp))
	})

	t.Run("static parameters are rigid", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		tp := w.param(t, "f.T")

		ctx := infer.Run(w.u, types.Of(w.str), types.Of(tp), infer.Options{
			Variables: []*types.Classifier{tp},
			Static:    []*types.Classifier{tp},
		})
		assert.ErrorIs(t, ctx.Err(), infer.ErrUnsatisfiable)
		assert.Empty(t, ctx.Variables())
	})

	t.Run("unconstrained", func(t *testing.T) {
		t.Parallel()
		w := newWorld(t)
		tp := w.param(t, "f.T")

		ctx := infer.Run(w.u, types.Of(w.str), w.u.AnyType(false), infer.Options{Variables: []*types.Classifier{tp}})
		require.NoError(t, ctx.Err())
		assert.Equal(t, "Any?", binding(t, ctx, tp))
	})
}

func TestStrictNullability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		desc   string
		strict bool
		want   string
	}{
		{desc: "lenient", strict: false, want: "String?"},
		{desc: "strict", strict: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			w := newWorld(t)
			tp := w.param(t, "f.T")

			ctx := infer.Run(w.u, types.Of(w.str).WithNullability(true), types.Of(tp), infer.Options{
				Variables:         []*types.Classifier{tp},
				StrictNullability: tt.strict,
			})
			if tt.want == "" {
				assert.False(t, ctx.OK())
				return
			}
			require.NoError(t, ctx.Err())
			assert.Equal(t, tt.want, binding(t, ctx, tp))
		})
	}
}

func TestLowerBoundsJoin(t *testing.T) {
	t.Parallel()
	w := newWorld(t)
	tp := w.param(t, "f.T")

	ctx := infer.New(w.u, infer.Options{Variables: []*types.Classifier{tp}})
	ctx.AddSubtype(types.Of(w.str), types.Of(tp))
	ctx.AddSubtype(types.Of(w.builder), types.Of(tp))
	assert.Equal(t, []infer.Constraint{
		{Kind: infer.Lower, Type: types.Of(w.str)},
		{Kind: infer.Lower, Type: types.Of(w.builder)},
	}, ctx.Constraints(tp))

	ctx.Fix()
	require.NoError(t, ctx.Err())
	assert.Equal(t, "CharSequence", binding(t, ctx, tp))
	assert.Len(t, ctx.Fixed(), 1)
}

func TestEqualityConflict(t *testing.T) {
	t.Parallel()
	w := newWorld(t)
	tp := w.param(t, "f.T")

	ctx := infer.New(w.u, infer.Options{Variables: []*types.Classifier{tp}})
	ctx.AddSubtype(types.Of(w.box, types.Of(tp)), types.Of(w.box, types.Of(w.str)))
	ctx.AddSubtype(types.Of(w.box, types.Of(tp)), types.Of(w.box, types.Of(w.builder)))
	ctx.Fix()

	require.Error(t, ctx.Err())
	var cerr *infer.ConstraintError
	require.ErrorAs(t, ctx.Err(), &cerr)
	assert.True(t, cerr.Equal)
}
