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

	"github.com/hashicorp/go-set/v2"
	"go.uber.org/inject/infer"
	"go.uber.org/inject/injectevent"
	"go.uber.org/inject/types"
	"go.uber.org/multierr"
)

// spreader tracks the expansion of one spreading provider.
type spreader struct {
	provider *Provider
	param    *types.Classifier
	bound    types.Type

	// processed holds the providers already offered to this spreader.
	// Providers of equal types are expanded separately.
	processed *set.Set[*Provider]
}

// spreadBound returns the tagged bound of a spread type parameter.
func spreadBound(param *types.Classifier) (types.Type, bool) {
	for _, b := range param.Supertypes() {
		if b.IsTagged() {
			return b, true
		}
	}
	return types.Type{}, false
}

// validateSpread rejects spreading providers that cannot work: a spread
// parameter without a tagged bound, or a provided type that would itself
// carry the triggering tags and so expand forever.
func (p *Pool) validateSpread(prov *Provider, param *types.Classifier) error {
	bound, ok := spreadBound(param)
	if !ok {
		return fmt.Errorf("spread type parameter %v must be bounded by a tagged type", param)
	}
	if triggers(prov.Type, bound) {
		return fmt.Errorf("provided type %v would trigger its own spread parameter %v", prov.Type, param)
	}
	return nil
}

// triggers reports whether t can match a spread parameter bounded by
// bound: t starts with the bound's tags, or is itself a type parameter
// bounded that way.
func triggers(t, bound types.Type) bool {
	if t.IsTypeParameter() {
		for _, b := range t.Classifier().Supertypes() {
			if b.IsTagged() && triggers(b, bound) {
				return true
			}
		}
	}
	tags, want := t.Tags(), bound.Tags()
	if len(want) == 0 || len(tags) < len(want) {
		return false
	}
	for i := range want {
		if tags[i].Classifier() != want[i].Classifier() {
			return false
		}
	}
	return true
}

// instanceParam reports whether the i-th parameter of c receives the
// declaration that triggered its synthesis.
func instanceParam(c *Provider, i int) bool {
	if c.Origin == nil {
		return false
	}
	d := c.Origin.Spread
	spread := d.spreadParameters()
	if len(spread) != 1 || i >= len(d.Params) {
		return false
	}
	t := d.Params[i].Type
	return !t.IsTagged() && t.Classifier() == spread[0]
}

type expansion struct {
	pool      *Pool
	spreaders []*spreader
	chain     []*spreader
}

// expand instantiates every spreading provider for every provider whose
// type satisfies its spread parameter's bound, including providers
// produced by earlier instantiations.
func (p *Pool) expand() {
	if len(p.spreading) == 0 {
		return
	}

	var err error
	defer func() {
		if err != nil {
			p.err = multierr.Append(p.err, err)
		}
	}()
	defer recoverRecursionLimit(&err)

	e := &expansion{pool: p}
	for _, prov := range p.spreading {
		param := prov.spreadParameters()[0]
		bound, _ := spreadBound(param)
		e.spreaders = append(e.spreaders, &spreader{
			provider:  prov,
			param:     param,
			bound:     bound,
			processed: set.New[*Provider](0),
		})
	}

	base := append([]*Provider(nil), p.providers...)
	for _, prov := range base {
		e.offer(prov)
	}
}

func (e *expansion) offer(candidate *Provider) {
	for _, s := range e.spreaders {
		e.collect(s, candidate)
	}
}

func (e *expansion) inChain(s *spreader) bool {
	for _, c := range e.chain {
		if c == s {
			return true
		}
	}
	return false
}

func (e *expansion) collect(s *spreader, candidate *Provider) {
	if e.inChain(s) || len(candidate.TypeParameters) > 0 {
		return
	}
	if !triggers(candidate.Type, s.bound) {
		return
	}
	scope, ok := innermost(s.provider.Scope, candidate.Scope)
	if !ok {
		return
	}
	if !s.processed.Insert(candidate) {
		return
	}
	if len(e.chain) >= e.pool.maxDepth {
		return
	}

	ctx := infer.Run(e.pool.universe, candidate.Type, types.Of(s.param), infer.Options{
		Variables:         s.provider.TypeParameters,
		Static:            scope.StaticTypeParameters(),
		StrictNullability: e.pool.strictSpread,
		MaxDepth:          e.pool.maxDepth,
	})
	if !ctx.OK() {
		return
	}

	synth := s.provider.substitute(ctx.Fixed())
	synth.Scope = scope
	synth.Origin = &Origin{Spread: s.provider, Matched: candidate}
	switch {
	case s.provider.Scope == candidate.Scope:
		synth.Order = max(s.provider.Order, candidate.Order)
	case scope == candidate.Scope:
		synth.Order = candidate.Order
	}

	e.pool.providers = append(e.pool.providers, synth)
	e.pool.log.LogEvent(&injectevent.Expanded{
		SpreadName:  s.provider.Name,
		MatchedName: candidate.Name,
		TypeName:    synth.Type.String(),
		ScopeName:   scope.String(),
	})

	e.chain = append(e.chain, s)
	e.offer(synth)
	e.chain = e.chain[:len(e.chain)-1]
}
