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
	"sort"
	"time"

	"github.com/hashicorp/go-set/v2"
	"go.uber.org/inject/infer"
	"go.uber.org/inject/injectevent"
	"go.uber.org/inject/types"
)

// Resolve finds the provider satisfying req and, recursively, providers
// for all of its parameters.
//
// Failures are reported as *NoCandidateError, *AmbiguityError,
// *DivergenceError, *CallContextMismatchError or *DependencyError. Types
// nested beyond the configured depth fail with a *RecursionLimitError and
// chains of requests deeper than it with a *NestingLimitError; both match
// ErrRecursionLimitExceeded.
func (p *Pool) Resolve(req Request) (res *Resolved, err error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	p.log.LogEvent(&injectevent.Resolving{
		TypeName:  req.Type.String(),
		ScopeName: req.Scope.String(),
	})
	defer func() {
		ev := &injectevent.Resolved{
			TypeName:  req.Type.String(),
			ScopeName: req.Scope.String(),
			Runtime:   time.Since(start),
			Err:       err,
		}
		if res != nil {
			ev.CandidateName = res.Candidate.Name
		}
		p.log.LogEvent(ev)
	}()
	defer recoverRecursionLimit(&err)

	req.lazy = false
	s := p.newSession()
	s.root = req
	return s.resolve(req)
}

// ResolveCall resolves every parameter of call.Callee not passed
// explicitly. Parameters that cannot be resolved fall back on their
// default when they have one and nothing provides them.
func (p *Pool) ResolveCall(call Call) (res *CallResult, err error) {
	switch {
	case call.Callee == nil:
		return nil, errors.New("invalid call: no callee")
	case call.Scope == nil:
		return nil, errors.New("invalid call: no scope")
	case !call.CallContext.CanCall(call.Callee.CallContext):
		return nil, &CallContextMismatchError{
			Request: Request{
				Type:        call.Callee.Type,
				Scope:       call.Scope,
				Position:    call.Position,
				CallContext: call.CallContext,
			},
			Candidate: call.Callee,
		}
	}

	start := time.Now()
	p.log.LogEvent(&injectevent.Resolving{
		TypeName:  call.Callee.Name,
		ScopeName: call.Scope.String(),
	})
	defer func() {
		p.log.LogEvent(&injectevent.Resolved{
			TypeName:      call.Callee.Name,
			ScopeName:     call.Scope.String(),
			CandidateName: call.Callee.Name,
			Runtime:       time.Since(start),
			Err:           err,
		})
	}()
	defer recoverRecursionLimit(&err)

	explicit := set.New[string](len(call.Explicit))
	for _, name := range call.Explicit {
		explicit.Insert(name)
	}

	s := p.newSession()
	s.root = Request{Scope: call.Scope, Position: call.Position, CallContext: call.CallContext}
	out := &CallResult{Call: call}
	var failure *DependencyError
	for _, prm := range call.Callee.Params {
		if explicit.Contains(prm.Name) {
			out.Args = append(out.Args, &Argument{Param: prm, Kind: Explicit})
			continue
		}
		req := Request{Type: prm.Type, Scope: call.Scope, Position: call.Position, CallContext: call.CallContext}
		r, rerr := s.resolve(req)
		switch {
		case rerr == nil:
			out.Args = append(out.Args, &Argument{Param: prm, Kind: Injected, Value: r})
		case canDefault(prm, rerr):
			out.Args = append(out.Args, &Argument{Param: prm, Kind: Defaulted})
		case failure == nil || failureRank(rerr) < failureRank(failure.Err):
			failure = &DependencyError{
				Candidate: call.Callee,
				Param:     prm,
				Request:   req,
				Err:       rerr,
			}
		}
	}
	if failure != nil {
		return nil, failure
	}
	return out, nil
}

func validateRequest(req Request) error {
	switch {
	case req.Scope == nil:
		return errors.New("invalid request: no scope")
	case req.Type.IsZero() || req.Type.IsStar():
		return fmt.Errorf("invalid request: cannot request %v", req.Type)
	}
	return nil
}

// canDefault reports whether a failed parameter may use its default: it
// has one, or is nullable, and the failure comes down to a missing
// provider.
func canDefault(prm Param, err error) bool {
	if !prm.HasDefault && !types.IsNullableType(prm.Type) {
		return false
	}
	return errors.Is(Cause(err), ErrNoCandidate)
}

type frame struct {
	request   Request
	key       string
	candidate *Provider
}

type memoKey struct {
	typ      string
	scope    *Scope
	position int
	ctx      CallContext
}

type outcome struct {
	res *Resolved
	err error
}

// session is the state of a single top-level resolution.
type session struct {
	pool     *Pool
	checker  *types.Checker
	root     Request
	stack    []*frame
	memo     map[memoKey]outcome
	locals   map[*Scope][]*Provider
	elements map[*Provider][]*Provider
}

func (p *Pool) newSession() *session {
	return &session{
		pool:     p,
		checker:  types.NewChecker(p.universe, types.MaxDepth(p.maxDepth)),
		memo:     make(map[memoKey]outcome),
		locals:   make(map[*Scope][]*Provider),
		elements: make(map[*Provider][]*Provider),
	}
}

func (s *session) resolve(req Request) (*Resolved, error) {
	key := memoKey{typ: req.Type.Key(), scope: req.Scope, ctx: req.CallContext}
	if req.Scope.Kind() == BlockScope {
		key.position = req.Position
	}
	if o, ok := s.memo[key]; ok {
		return o.res, o.err
	}
	if res, repeated, err := s.repeated(req, key.typ); repeated {
		return res, err
	}
	s.push(req, key.typ)
	res, err := s.resolveRequest(req)
	s.stack = s.stack[:len(s.stack)-1]

	if err == nil && !res.hasCycle() || err != nil && !errors.Is(err, ErrDiverging) {
		s.memo[key] = outcome{res: res, err: err}
	}
	return res, err
}

// push adds a frame for req, aborting the whole resolution once the stack
// is as deep as the configured limit.
func (s *session) push(req Request, key string) {
	if len(s.stack) >= s.pool.maxDepth {
		panic(&NestingLimitError{Request: req, Depth: s.pool.maxDepth})
	}
	s.stack = append(s.stack, &frame{request: req, key: key})
}

// repeated checks whether req is already being resolved further up. A
// repeat reached through a function value refers back to the value being
// built; any other repeat diverges.
func (s *session) repeated(req Request, key string) (*Resolved, bool, error) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		f := s.stack[i]
		if f.key != key || f.request.Scope != req.Scope {
			continue
		}
		if (req.lazy || s.lazyAfter(i)) && f.candidate != nil {
			return &Resolved{Request: req, Candidate: f.candidate, Cycle: true}, true, nil
		}
		return nil, true, &DivergenceError{Request: req, Trace: s.trace(i, req)}
	}
	return nil, false, nil
}

func (s *session) lazyAfter(i int) bool {
	for _, f := range s.stack[i+1:] {
		if f.request.lazy {
			return true
		}
	}
	return false
}

func (s *session) trace(from int, last Request) []Request {
	out := make([]Request, 0, len(s.stack)-from+1)
	for _, f := range s.stack[from:] {
		out = append(out, f.request)
	}
	return append(out, last)
}

// checkGrowth catches a provider that, further up the stack, was selected
// for a smaller type made of the same classifiers: resolving it again
// would keep growing the request.
func (s *session) checkGrowth(req Request, c *Provider) error {
	declared := c.Declared()
	size := types.Size(req.Type)
	for i, f := range s.stack[:len(s.stack)-1] {
		if f.candidate == nil || f.candidate.Declared() != declared {
			continue
		}
		if types.Size(f.request.Type) >= size || !sameClassifiers(f.request.Type, req.Type) {
			continue
		}
		if s.lazyAfter(i) {
			continue
		}
		return &DivergenceError{Request: req, Trace: s.trace(i, req)}
	}
	return nil
}

func classifiersOf(t types.Type) *set.Set[*types.Classifier] {
	out := set.New[*types.Classifier](0)
	types.Mentions(t, func(c *types.Classifier) bool {
		out.Insert(c)
		return false
	})
	return out
}

func sameClassifiers(a, b types.Type) bool {
	ca, cb := classifiersOf(a), classifiersOf(b)
	if ca.Size() != cb.Size() {
		return false
	}
	for _, c := range ca.Slice() {
		if !cb.Contains(c) {
			return false
		}
	}
	return true
}

func (s *session) resolveRequest(req Request) (*Resolved, error) {
	cands := s.candidates(req)
	if len(cands) == 0 {
		b := s.builtin(req)
		if b == nil {
			return nil, &NoCandidateError{Request: req}
		}
		cands = []*Provider{b}
	}
	return s.selectCandidate(req, cands)
}

// candidates lists the visible providers whose type, once their type
// parameters are inferred, is assignable to the requested type.
func (s *session) candidates(req Request) []*Provider {
	var out []*Provider
	consider := func(prov *Provider) {
		if !visible(prov, req) {
			return
		}
		if inst, ok := s.match(prov, req); ok {
			out = append(out, inst)
		}
	}
	for sc := req.Scope; sc != nil; sc = sc.parent {
		for _, l := range s.locals[sc] {
			consider(l)
		}
	}
	for _, prov := range s.pool.lookup(req.Type) {
		consider(prov)
	}
	return out
}

// visible reports whether prov can be seen from where req is made.
func visible(prov *Provider, req Request) bool {
	if !prov.Scope.Encloses(req.Scope) {
		return false
	}
	if prov.Scope == req.Scope && req.Scope.Kind() == BlockScope && prov.Order >= req.Position {
		return false
	}
	switch prov.Visibility {
	case Internal, Protected, Private:
		return prov.unit() == req.Scope.Unit()
	}
	return true
}

func (s *session) match(prov *Provider, req Request) (*Provider, bool) {
	if len(prov.TypeParameters) == 0 {
		return prov, s.checker.IsSubtypeOf(prov.Type, req.Type)
	}
	ctx := infer.Run(s.pool.universe, prov.Type, req.Type, infer.Options{
		Variables: prov.TypeParameters,
		Static:    req.Scope.StaticTypeParameters(),
		MaxDepth:  s.pool.maxDepth,
	})
	if !ctx.OK() {
		return nil, false
	}
	return prov.substitute(ctx.Fixed()), true
}

// selectCandidate resolves candidates best first, skipping those ranked
// below a success, and reports an ambiguity if several successes tie.
func (s *session) selectCandidate(req Request, cands []*Provider) (*Resolved, error) {
	sort.SliceStable(cands, func(i, j int) bool {
		return s.compareCandidates(req, cands[i], cands[j]) < 0
	})

	var (
		best    []*Resolved
		failure error
	)
	for _, c := range cands {
		if len(best) > 0 && !best[0].UsesDefault() && s.compareCandidates(req, best[0].Candidate, c) < 0 {
			continue
		}
		res, err := s.resolveCandidate(req, c)
		if err != nil {
			failure = betterFailure(failure, err)
			continue
		}
		if len(best) == 0 {
			best = []*Resolved{res}
			continue
		}
		switch cmp := s.compareResults(req, res, best[0]); {
		case cmp < 0:
			best = []*Resolved{res}
		case cmp == 0:
			best = append(best, res)
		}
	}

	switch len(best) {
	case 0:
		return nil, failure
	case 1:
		return best[0], nil
	}
	tied := make([]*Provider, len(best))
	for i, r := range best {
		tied[i] = r.Candidate
	}
	sort.SliceStable(tied, func(i, j int) bool {
		return declaredBefore(tied[i], tied[j])
	})
	return nil, &AmbiguityError{Request: req, Candidates: tied}
}

func (s *session) resolveCandidate(req Request, c *Provider) (*Resolved, error) {
	if !req.CallContext.CanCall(c.CallContext) {
		return nil, &CallContextMismatchError{Request: req, Candidate: c}
	}
	s.stack[len(s.stack)-1].candidate = c
	if err := s.checkGrowth(req, c); err != nil {
		return nil, err
	}

	switch c.Kind {
	case LambdaProvider:
		return s.resolveLambda(req, c)
	case ListProvider:
		return s.resolveList(req, c)
	}

	args := make([]*Argument, 0, len(c.Params))
	for i, prm := range c.Params {
		dreq := Request{Type: prm.Type, Scope: c.Scope, Position: c.Order, CallContext: req.CallContext}
		var (
			res *Resolved
			err error
		)
		if instanceParam(c, i) {
			res, err = s.resolveWith(dreq, c.Origin.Matched)
		} else {
			res, err = s.resolve(dreq)
		}
		switch {
		case err == nil:
			args = append(args, &Argument{Param: prm, Kind: Injected, Value: res})
		case canDefault(prm, err):
			args = append(args, &Argument{Param: prm, Kind: Defaulted})
		default:
			return nil, &DependencyError{Candidate: c, Param: prm, Request: dreq, Err: err}
		}
	}
	res := &Resolved{Request: req, Candidate: c, Args: args}
	switch c.Kind {
	case TypeKeyProvider:
		res.Value = c.Type.Arg(0).String()
	case SourceKeyProvider:
		res.Value = fmt.Sprintf("%v:%d", s.root.Scope, s.root.Position)
	}
	return res, nil
}

// resolveWith resolves req with the given provider instead of searching
// for candidates.
func (s *session) resolveWith(req Request, c *Provider) (*Resolved, error) {
	key := req.Type.Key()
	if res, repeated, err := s.repeated(req, key); repeated {
		return res, err
	}
	s.push(req, key)
	defer func() { s.stack = s.stack[:len(s.stack)-1] }()
	return s.resolveCandidate(req, c)
}
