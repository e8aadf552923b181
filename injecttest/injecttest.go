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

package injecttest

import (
	"fmt"

	"go.uber.org/inject"
	"go.uber.org/inject/injectevent"
	"go.uber.org/inject/types"
)

// TB is a subset of the standard library's testing.TB interface. It's
// satisfied by both *testing.T and *testing.B.
type TB interface {
	Logf(string, ...interface{})
	Errorf(string, ...interface{})
	FailNow()
}

// testLogWriter adapts TB to io.Writer for the console logger.
type testLogWriter struct {
	t TB
}

func (w testLogWriter) Write(b []byte) (int, error) {
	w.t.Logf("%s", b)
	return len(b), nil
}

// NewTestLogger returns an injectevent.Logger that logs to the test's
// output.
func NewTestLogger(t TB) injectevent.Logger {
	return &injectevent.ConsoleLogger{W: testLogWriter{t}}
}

// New builds a pool that logs to the test's output. The test fails if any
// declaration is malformed.
func New(t TB, u *types.Universe, opts ...inject.Option) *inject.Pool {
	opts = append([]inject.Option{inject.WithLogger(NewTestLogger(t))}, opts...)
	p := inject.NewPool(u, opts...)
	if err := p.Err(); err != nil {
		t.Errorf("malformed declarations: %+v", err)
		t.FailNow()
	}
	return p
}

// MustResolve resolves req, failing the test on error.
func MustResolve(t TB, p *inject.Pool, req inject.Request) *inject.Resolved {
	res, err := p.Resolve(req)
	if err != nil {
		t.Errorf("resolving %v: %+v", req, err)
		t.FailNow()
	}
	return res
}

// Universe wraps types.Universe with declaration helpers that fail the
// test instead of returning errors.
type Universe struct {
	*types.Universe

	t TB
}

// NewUniverse creates a universe for a test.
func NewUniverse(t TB, opts ...types.UniverseOption) *Universe {
	return &Universe{Universe: types.NewUniverse(opts...), t: t}
}

// Declare declares the classifier described by spec.
func (u *Universe) Declare(spec types.ClassifierSpec) *types.Classifier {
	c, err := u.Universe.Declare(spec)
	if err != nil {
		u.t.Errorf("declaring %v: %v", spec.FqName, err)
		u.t.FailNow()
	}
	return c
}

// Class declares a class with the given direct supertypes.
func (u *Universe) Class(name string, supertypes ...types.Type) *types.Classifier {
	return u.Declare(types.ClassifierSpec{
		FqName:     name,
		Kind:       types.Class,
		Supertypes: fixed(supertypes),
	})
}

// Interface declares an interface with the given direct supertypes.
func (u *Universe) Interface(name string, supertypes ...types.Type) *types.Classifier {
	return u.Declare(types.ClassifierSpec{
		FqName:     name,
		Kind:       types.Interface,
		Supertypes: fixed(supertypes),
	})
}

// Generic declares a class over the given type parameters.
func (u *Universe) Generic(name string, params []*types.Classifier, supertypes ...types.Type) *types.Classifier {
	return u.Declare(types.ClassifierSpec{
		FqName:         name,
		Kind:           types.Class,
		TypeParameters: params,
		Supertypes:     fixed(supertypes),
	})
}

// Tag declares a tag.
func (u *Universe) Tag(name string, params ...*types.Classifier) *types.Classifier {
	return u.Declare(types.ClassifierSpec{
		FqName:         name,
		Kind:           types.Tag,
		TypeParameters: params,
	})
}

// TypeParam declares a type parameter with the given upper bounds.
func (u *Universe) TypeParam(name string, bounds ...types.Type) *types.Classifier {
	return u.Declare(types.ClassifierSpec{
		FqName:     name,
		Kind:       types.TypeParameter,
		Supertypes: fixed(bounds),
	})
}

// VarianceParam declares a type parameter with declaration-site variance.
func (u *Universe) VarianceParam(name string, v types.Variance) *types.Classifier {
	return u.Declare(types.ClassifierSpec{
		FqName:   name,
		Kind:     types.TypeParameter,
		Variance: v,
	})
}

// SpreadParam declares a spread type parameter with the given upper
// bounds.
func (u *Universe) SpreadParam(name string, bounds ...types.Type) *types.Classifier {
	return u.Declare(types.ClassifierSpec{
		FqName:     name,
		Kind:       types.TypeParameter,
		Spread:     true,
		Supertypes: fixed(bounds),
	})
}

// Type applies c to args.
func (u *Universe) Type(c *types.Classifier, args ...types.Type) types.Type {
	t, err := types.New(c, args...)
	if err != nil {
		u.t.Errorf("%v", err)
		u.t.FailNow()
	}
	return t
}

// Tagged wraps t in tags, outermost first.
func (u *Universe) Tagged(t types.Type, tags ...*types.Classifier) types.Type {
	for i := len(tags) - 1; i >= 0; i-- {
		var err error
		t, err = t.Tagged(types.Of(tags[i]))
		if err != nil {
			u.t.Errorf("%v", err)
			u.t.FailNow()
		}
	}
	return t
}

// Func builds the function type (params) -> result.
func (u *Universe) Func(result types.Type, params ...types.Type) types.Type {
	t, err := u.FunctionType(result, params...)
	if err != nil {
		u.t.Errorf("%v", err)
		u.t.FailNow()
	}
	return t
}

func fixed(ts []types.Type) func() []types.Type {
	if len(ts) == 0 {
		return nil
	}
	return func() []types.Type { return ts }
}

// Value declares a provider taking no parameters.
func Value(name string, t types.Type, scope *inject.Scope, order int) *inject.Provider {
	return &inject.Provider{
		Name:  name,
		Kind:  inject.ValueProvider,
		Type:  t,
		Scope: scope,
		Order: order,
	}
}

// Func declares a function provider with parameters named after their
// position.
func Func(name string, t types.Type, scope *inject.Scope, params ...types.Type) *inject.Provider {
	p := &inject.Provider{
		Name:  name,
		Kind:  inject.FunctionProvider,
		Type:  t,
		Scope: scope,
	}
	for i, pt := range params {
		p.Params = append(p.Params, inject.Param{Name: fmt.Sprintf("p%d", i), Type: pt})
	}
	return p
}
