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

package manifest

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/inject"
	"go.uber.org/inject/types"
	"go.uber.org/multierr"
)

const _defaultRoot = "external"

// Program is a manifest turned into resolver inputs.
type Program struct {
	Universe *types.Universe
	Root     *inject.Scope

	// Scopes maps scope paths to scopes. The root has the empty path.
	Scopes map[string]*inject.Scope

	Providers []*inject.Provider
	Requests  []inject.Request
	Calls     []inject.Call
}

// Pool builds a pool of the program's providers.
func (p *Program) Pool(opts ...inject.Option) *inject.Pool {
	opts = append([]inject.Option{inject.Provide(p.Providers...)}, opts...)
	return inject.NewPool(p.Universe, opts...)
}

// Build declares the manifest's classifiers in a new universe and converts
// its scopes, providers, requests and calls. Errors in classifiers and
// scopes stop the build; errors in the rest are collected.
func (m *Manifest) Build(opts ...types.UniverseOption) (*Program, error) {
	u := types.NewUniverse(opts...)
	root := m.Root
	if root == "" {
		root = _defaultRoot
	}
	b := &builder{
		u:      u,
		global: newEnv(u, nil),
		prog: &Program{
			Universe: u,
			Root:     inject.NewScope(root),
		},
		envs: make(map[*inject.Scope]*env),
	}
	b.prog.Scopes = map[string]*inject.Scope{"": b.prog.Root}
	b.envs[b.prog.Root] = b.global

	if err := b.classifiers(m.Classifiers); err != nil {
		return nil, err
	}
	if err := b.scopes(m.Scopes); err != nil {
		return nil, err
	}

	var errs error
	for i, d := range m.Providers {
		errs = multierr.Append(errs, errors.Wrapf(b.provider(i, d), "provider %q", d.Name))
	}
	for i, d := range m.Requests {
		errs = multierr.Append(errs, errors.Wrapf(b.request(d), "request %d", i))
	}
	for _, d := range m.Calls {
		errs = multierr.Append(errs, errors.Wrapf(b.call(d), "call %q", d.Name))
	}
	if errs != nil {
		return nil, errs
	}
	return b.prog, nil
}

type builder struct {
	u      *types.Universe
	global *env
	prog   *Program
	envs   map[*inject.Scope]*env
}

// lazyTypes holds supertypes that are parsed once every classifier is
// declared.
type lazyTypes struct {
	ts []types.Type
}

func (l *lazyTypes) get() []types.Type { return l.ts }

type pendingParam struct {
	c      *types.Classifier
	decl   TypeParam
	bounds *lazyTypes
	env    *env
}

// declareParams declares type parameters under prefix without their
// bounds, which may refer to each other.
func (b *builder) declareParams(prefix string, decls []TypeParam, e *env) ([]*types.Classifier, []pendingParam, error) {
	var (
		out     []*types.Classifier
		pending []pendingParam
	)
	for _, d := range decls {
		v, err := parseVariance(d.Variance)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "type parameter %q", d.Name)
		}
		bounds := &lazyTypes{}
		c, err := b.u.Declare(types.ClassifierSpec{
			Key:        prefix + "." + d.Name,
			FqName:     d.Name,
			Kind:       types.TypeParameter,
			Variance:   v,
			Spread:     d.Spread,
			Supertypes: bounds.get,
		})
		if err != nil {
			return nil, nil, err
		}
		e.names[d.Name] = c
		out = append(out, c)
		pending = append(pending, pendingParam{c: c, decl: d, bounds: bounds, env: e})
	}
	return out, pending, nil
}

func (b *builder) bindBounds(pending []pendingParam) error {
	for _, pp := range pending {
		for _, src := range pp.decl.Bounds {
			t, err := pp.env.parse(src)
			if err != nil {
				return errors.Wrapf(err, "bound of %q", pp.decl.Name)
			}
			pp.bounds.ts = append(pp.bounds.ts, t)
		}
	}
	return nil
}

var _classifierKinds = map[string]types.Kind{
	"":          types.Class,
	"class":     types.Class,
	"interface": types.Interface,
	"object":    types.Object,
	"alias":     types.Alias,
	"tag":       types.Tag,
}

func (b *builder) classifiers(decls []Classifier) error {
	type pendingClassifier struct {
		decl   Classifier
		supers *lazyTypes
		env    *env
	}

	var (
		classes []pendingClassifier
		params  []pendingParam
	)
	for _, d := range decls {
		kind, ok := _classifierKinds[d.Kind]
		if !ok {
			return errors.Errorf("classifier %q: unknown kind %q", d.Name, d.Kind)
		}
		e := newEnv(b.u, b.global)
		tps, pending, err := b.declareParams(d.Name, d.Params, e)
		if err != nil {
			return errors.Wrapf(err, "classifier %q", d.Name)
		}
		supers := &lazyTypes{}
		if _, err := b.u.Declare(types.ClassifierSpec{
			FqName:         d.Name,
			Kind:           kind,
			TypeParameters: tps,
			Supertypes:     supers.get,
		}); err != nil {
			return errors.Wrapf(err, "classifier %q", d.Name)
		}
		classes = append(classes, pendingClassifier{decl: d, supers: supers, env: e})
		params = append(params, pending...)
	}

	for _, pc := range classes {
		srcs := pc.decl.Supertypes
		if pc.decl.Kind == "alias" {
			if pc.decl.Expands == "" || len(srcs) > 0 {
				return errors.Errorf("alias %q must declare exactly one expansion", pc.decl.Name)
			}
			srcs = []string{pc.decl.Expands}
		} else if pc.decl.Expands != "" {
			return errors.Errorf("classifier %q: only aliases have an expansion", pc.decl.Name)
		}
		for _, src := range srcs {
			t, err := pc.env.parse(src)
			if err != nil {
				return errors.Wrapf(err, "supertype of %q", pc.decl.Name)
			}
			pc.supers.ts = append(pc.supers.ts, t)
		}
	}
	return b.bindBounds(params)
}

var _scopeKinds = map[string]inject.ScopeKind{
	"unit":      inject.UnitScope,
	"package":   inject.PackageScope,
	"file":      inject.FileScope,
	"companion": inject.CompanionScope,
	"class":     inject.ClassScope,
	"function":  inject.FunctionScope,
	"block":     inject.BlockScope,
}

func (b *builder) scope(path string) (*inject.Scope, error) {
	s, ok := b.prog.Scopes[path]
	if !ok {
		return nil, errors.Errorf("unknown scope %q", path)
	}
	return s, nil
}

func (b *builder) scopes(decls []Scope) error {
	var params []pendingParam
	for _, d := range decls {
		kind, ok := _scopeKinds[d.Kind]
		if !ok {
			return errors.Errorf("scope %q: unknown kind %q", d.Name, d.Kind)
		}
		parent, err := b.scope(d.Parent)
		if err != nil {
			return errors.Wrapf(err, "scope %q", d.Name)
		}
		path := d.Name
		if d.Parent != "" {
			path = d.Parent + "/" + d.Name
		}
		if _, ok := b.prog.Scopes[path]; ok {
			return errors.Errorf("scope %q is declared twice", path)
		}

		e := newEnv(b.u, b.envs[parent])
		tps, pending, err := b.declareParams(path, d.TypeParams, e)
		if err != nil {
			return errors.Wrapf(err, "scope %q", path)
		}
		s := parent.Child(d.Name, kind, tps...)
		b.prog.Scopes[path] = s
		b.envs[s] = e
		params = append(params, pending...)
	}
	return b.bindBounds(params)
}

var _providerKinds = map[string]inject.ProviderKind{
	"":            inject.FunctionProvider,
	"function":    inject.FunctionProvider,
	"property":    inject.PropertyProvider,
	"constructor": inject.ConstructorProvider,
	"object":      inject.ObjectProvider,
	"value":       inject.ValueProvider,
}

var _visibilities = map[string]inject.Visibility{
	"":          inject.Public,
	"public":    inject.Public,
	"internal":  inject.Internal,
	"protected": inject.Protected,
	"private":   inject.Private,
}

var _callContexts = map[string]inject.CallContext{
	"":           inject.DefaultContext,
	"default":    inject.DefaultContext,
	"suspend":    inject.SuspendContext,
	"composable": inject.ComposableContext,
}

func callContext(name string) (inject.CallContext, error) {
	ctx, ok := _callContexts[name]
	if !ok {
		return 0, errors.Errorf("unknown call context %q", name)
	}
	return ctx, nil
}

func (b *builder) params(e *env, decls []Param) ([]inject.Param, error) {
	out := make([]inject.Param, 0, len(decls))
	for _, d := range decls {
		t, err := e.parse(d.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %q", d.Name)
		}
		out = append(out, inject.Param{Name: d.Name, Type: t, HasDefault: d.Default})
	}
	return out, nil
}

func (b *builder) provider(i int, d Provider) error {
	kind, ok := _providerKinds[d.Kind]
	if !ok {
		return errors.Errorf("unknown kind %q", d.Kind)
	}
	vis, ok := _visibilities[d.Visibility]
	if !ok {
		return errors.Errorf("unknown visibility %q", d.Visibility)
	}
	ctx, err := callContext(d.Context)
	if err != nil {
		return err
	}
	scope, err := b.scope(d.Scope)
	if err != nil {
		return err
	}

	e := newEnv(b.u, b.envs[scope])
	tps, pending, err := b.declareParams(fmt.Sprintf("%v#%d:%v", d.Scope, i, d.Name), d.TypeParams, e)
	if err != nil {
		return err
	}
	if err := b.bindBounds(pending); err != nil {
		return err
	}
	t, err := e.parse(d.Type)
	if err != nil {
		return err
	}
	params, err := b.params(e, d.Params)
	if err != nil {
		return err
	}
	var recv types.Type
	if d.Receiver != "" {
		if recv, err = e.parse(d.Receiver); err != nil {
			return errors.Wrap(err, "receiver")
		}
	}

	b.prog.Providers = append(b.prog.Providers, &inject.Provider{
		Name:           d.Name,
		Kind:           kind,
		Type:           t,
		TypeParameters: tps,
		Params:         params,
		Scope:          scope,
		Visibility:     vis,
		Receiver:       recv,
		CallContext:    ctx,
		Order:          d.Order,
		Unit:           d.Unit,
	})
	return nil
}

func (b *builder) request(d Request) error {
	ctx, err := callContext(d.Context)
	if err != nil {
		return err
	}
	scope, err := b.scope(d.Scope)
	if err != nil {
		return err
	}
	t, err := b.envs[scope].parse(d.Type)
	if err != nil {
		return err
	}
	b.prog.Requests = append(b.prog.Requests, inject.Request{
		Type:        t,
		Scope:       scope,
		Position:    d.Position,
		CallContext: ctx,
	})
	return nil
}

func (b *builder) call(d Call) error {
	ctx, err := callContext(d.Context)
	if err != nil {
		return err
	}
	calleeCtx, err := callContext(d.CalleeContext)
	if err != nil {
		return err
	}
	scope, err := b.scope(d.Scope)
	if err != nil {
		return err
	}
	e := b.envs[scope]
	params, err := b.params(e, d.Params)
	if err != nil {
		return err
	}
	t := b.u.AnyType(true)
	if d.Type != "" {
		if t, err = e.parse(d.Type); err != nil {
			return err
		}
	}

	b.prog.Calls = append(b.prog.Calls, inject.Call{
		Callee: &inject.Provider{
			Name:        d.Name,
			Type:        t,
			Params:      params,
			Scope:       scope,
			CallContext: calleeCtx,
			Order:       d.Position,
		},
		Scope:       scope,
		Position:    d.Position,
		CallContext: ctx,
		Explicit:    d.Explicit,
	})
	return nil
}
