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

package inject

import (
	"fmt"

	"go.uber.org/inject/types"
)

// builtin synthesizes a provider for a request nothing declared can
// satisfy. Function types are provided by a lambda resolving the result
// lazily and lists by collecting every matching provider. TypeKey and
// SourceKey are constants known at the request site.
func (s *session) builtin(req Request) *Provider {
	t := req.Type
	if t.IsTagged() {
		return nil
	}
	u := s.pool.universe
	if arity, ok := u.FunctionArity(t.Classifier()); ok {
		return s.lambda(req, arity)
	}
	switch c := t.Classifier(); c {
	case u.List(), u.Collection():
		return s.list(req)
	case u.TypeKey():
		return s.typeKey(req)
	case u.SourceKey():
		return &Provider{
			Name:  "sourceKey",
			Kind:  SourceKeyProvider,
			Type:  req.Type,
			Scope: req.Scope,
			Order: req.Position,
		}
	}
	return nil
}

// typeKey provides TypeKey<T> for a T known at the request site. Each type
// parameter T refers to needs its own TypeKey, provided from the scope.
func (s *session) typeKey(req Request) *Provider {
	u := s.pool.universe
	t := req.Type.Arg(0)
	if t.IsStar() || t.IsTypeParameter() {
		return nil
	}

	var params []Param
	seen := make(map[*types.Classifier]struct{})
	types.Mentions(t, func(c *types.Classifier) bool {
		if _, ok := seen[c]; ok || !c.IsTypeParameter() {
			return false
		}
		seen[c] = struct{}{}
		params = append(params, Param{Name: c.FqName() + "Key", Type: u.TypeKeyType(types.Of(c))})
		return false
	})
	return &Provider{
		Name:   "typeKeyOf",
		Kind:   TypeKeyProvider,
		Type:   req.Type,
		Params: params,
		Scope:  req.Scope,
		Order:  req.Position,
	}
}

func (s *session) lambda(req Request, arity int) *Provider {
	args := req.Type.Args()
	for _, a := range args {
		if a.IsStar() {
			return nil
		}
	}

	scope := req.Scope.Child(fmt.Sprintf("lambda %v", req.Type), BlockScope)
	for i, p := range args[:arity] {
		s.locals[scope] = append(s.locals[scope], &Provider{
			Name:  fmt.Sprintf("p%d", i+1),
			Kind:  ValueProvider,
			Type:  p.WithVariance(types.Invariant),
			Scope: scope,
			Order: i,
		})
	}
	return &Provider{
		Name:   "lambda",
		Kind:   LambdaProvider,
		Type:   req.Type,
		Params: []Param{{Name: "result", Type: args[arity].WithVariance(types.Invariant)}},
		Scope:  scope,
		Order:  arity,
	}
}

func (s *session) resolveLambda(req Request, c *Provider) (*Resolved, error) {
	prm := c.Params[0]
	// The body runs whenever the function is called, in the default context.
	dreq := Request{Type: prm.Type, Scope: c.Scope, Position: c.Order, lazy: true}
	res, err := s.resolve(dreq)
	if err != nil {
		return nil, &DependencyError{Candidate: c, Param: prm, Request: dreq, Err: err}
	}
	return &Resolved{
		Request:   req,
		Candidate: c,
		Args:      []*Argument{{Param: prm, Kind: Injected, Value: res}},
	}, nil
}

// list collects the providers of List<E> or Collection<E>: every visible
// provider of E, and every provider of Collection<E> whose elements are
// added in bulk.
func (s *session) list(req Request) *Provider {
	u := s.pool.universe
	elem := req.Type.Arg(0)
	if elem.IsStar() {
		elem = u.AnyType(true)
	}
	elem = elem.WithVariance(types.Invariant)

	single := Request{Type: elem, Scope: req.Scope, Position: req.Position}
	bulk := Request{Type: types.Of(u.Collection(), elem), Scope: req.Scope, Position: req.Position}

	elements := s.candidates(single)
	seen := make(map[*Provider]struct{}, len(elements))
	for _, e := range elements {
		seen[e.Declared()] = struct{}{}
	}
	for _, e := range s.candidates(bulk) {
		if _, ok := seen[e.Declared()]; !ok {
			elements = append(elements, e)
		}
	}
	if len(elements) == 0 {
		return nil
	}

	params := make([]Param, len(elements))
	for i, e := range elements {
		params[i] = Param{Name: fmt.Sprintf("[%d]", i), Type: e.Type}
	}
	prov := &Provider{
		Name:   "listOf",
		Kind:   ListProvider,
		Type:   req.Type,
		Params: params,
		Scope:  req.Scope,
		Order:  req.Position,
	}
	s.elements[prov] = elements
	return prov
}

func (s *session) resolveList(req Request, c *Provider) (*Resolved, error) {
	elements := s.elements[c]
	args := make([]*Argument, len(elements))
	for i, e := range elements {
		ereq := Request{Type: e.Type, Scope: req.Scope, Position: req.Position, CallContext: req.CallContext}
		res, err := s.resolveWith(ereq, e)
		if err != nil {
			return nil, &DependencyError{Candidate: c, Param: c.Params[i], Request: ereq, Err: err}
		}
		args[i] = &Argument{Param: c.Params[i], Kind: Injected, Value: res}
	}
	return &Resolved{Request: req, Candidate: c, Args: args}, nil
}
