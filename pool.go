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
	"errors"
	"fmt"

	"go.uber.org/inject/injectevent"
	"go.uber.org/inject/types"
	"go.uber.org/multierr"
)

// Pool holds the providers of a program, spreading providers already
// expanded, and resolves requests against them.
//
// A Pool is immutable once built. Resolve and ResolveCall may be called
// from multiple goroutines.
type Pool struct {
	universe     *types.Universe
	log          injectevent.Logger
	maxDepth     int
	strictSpread bool

	// declared and synthesized providers, in the order they were added
	providers []*Provider
	spreading []*Provider
	index     map[*types.Classifier][]*Provider
	generic   []*Provider
	err       error
}

// NewPool builds a pool from the given options. Malformed providers are
// left out and reported by Err; building a pool never fails outright.
func NewPool(u *types.Universe, opts ...Option) *Pool {
	o := defaultPoolOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}

	p := &Pool{
		universe:     u,
		log:          o.logger,
		maxDepth:     o.maxDepth,
		strictSpread: o.strictSpread,
		index:        make(map[*types.Classifier][]*Provider),
	}
	for _, pr := range o.provides {
		for _, prov := range pr.providers {
			p.add(prov, pr.caller)
		}
	}
	p.expand()
	p.buildIndex()
	return p
}

// Err returns the errors of every malformed declaration, combined.
func (p *Pool) Err() error { return p.err }

// Universe returns the universe the pool's types belong to.
func (p *Pool) Universe() *types.Universe { return p.universe }

// Providers returns the providers requests are resolved against:
// declared providers followed by those synthesized by spreading.
func (p *Pool) Providers() []*Provider {
	return append([]*Provider(nil), p.providers...)
}

// Spreading returns the accepted spreading providers.
func (p *Pool) Spreading() []*Provider {
	return append([]*Provider(nil), p.spreading...)
}

func (p *Pool) malformed(prov *Provider, caller, reason string) {
	err := &MalformedDeclarationError{Provider: prov, Reason: reason}
	name := "<nil>"
	if prov != nil {
		name = prov.Name
	}
	p.err = multierr.Append(p.err, fmt.Errorf("inject.Provide(%v) from %v: %w", name, caller, err))
	p.log.LogEvent(&injectevent.Malformed{ProviderName: name, Err: err})
}

func (p *Pool) add(prov *Provider, caller string) {
	if prov == nil {
		p.malformed(nil, caller, "provider is nil")
		return
	}
	if err := prov.validate(); err != nil {
		p.malformed(prov, caller, err.Error())
		return
	}

	spread := prov.spreadParameters()
	switch {
	case len(spread) > 1:
		p.malformed(prov, caller, fmt.Sprintf("declares %d spread type parameters, at most one is allowed", len(spread)))
		return
	case len(spread) == 1 && (prov.Kind == PropertyProvider || prov.Kind == ValueProvider):
		p.malformed(prov, caller, "spread type parameters are only supported on functions and classes")
		return
	case len(spread) == 1:
		if err := p.validateSpread(prov, spread[0]); err != nil {
			p.malformed(prov, caller, err.Error())
			return
		}
		p.spreading = append(p.spreading, prov)
	default:
		p.providers = append(p.providers, prov)
	}
	p.log.LogEvent(&injectevent.Provided{
		ProviderName: prov.Name,
		TypeName:     prov.Type.String(),
		ScopeName:    prov.Scope.String(),
		Spread:       len(spread) == 1,
	})
}

// buildIndex files every provider under each classifier its type can be
// viewed as. Providers of a bare type parameter or of Nothing can match
// any request and are kept aside.
func (p *Pool) buildIndex() {
	for _, prov := range p.providers {
		c := prov.Type.Classifier()
		if c.IsTypeParameter() || c == p.universe.Nothing() {
			p.generic = append(p.generic, prov)
			continue
		}
		for _, s := range types.SupertypeClassifiers(c) {
			p.index[s] = append(p.index[s], prov)
		}
	}
}

// lookup returns the providers that may match t, before visibility and
// type checks.
func (p *Pool) lookup(t types.Type) []*Provider {
	c := t.Classifier()
	if c == nil {
		return nil
	}
	indexed := p.index[c]
	if len(p.generic) == 0 {
		return indexed
	}
	out := make([]*Provider, 0, len(indexed)+len(p.generic))
	out = append(out, indexed...)
	return append(out, p.generic...)
}

// Unused returns the declared providers, spreading ones included, that
// none of the given resolutions selected.
func (p *Pool) Unused(results ...*Resolved) []*Provider {
	used := make(map[*Provider]struct{})
	for _, r := range results {
		if r == nil {
			continue
		}
		r.Walk(func(n *Resolved) bool {
			markUsed(used, n.Candidate)
			return true
		})
	}

	var out []*Provider
	for _, prov := range p.providers {
		if prov.Origin != nil {
			continue
		}
		if _, ok := used[prov]; !ok {
			out = append(out, prov)
		}
	}
	for _, prov := range p.spreading {
		if _, ok := used[prov]; !ok {
			out = append(out, prov)
		}
	}
	return out
}

func markUsed(used map[*Provider]struct{}, c *Provider) {
	for c != nil {
		used[c.Declared()] = struct{}{}
		if c.Origin == nil {
			return
		}
		used[c.Origin.Spread] = struct{}{}
		c = c.Origin.Matched
	}
}

// recoverRecursionLimit turns a recursion limit panic into an error.
func recoverRecursionLimit(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if rerr, ok := r.(error); ok && errors.Is(rerr, ErrRecursionLimitExceeded) {
		*err = rerr
		return
	}
	panic(r)
}
