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
	"go.uber.org/inject/types"
)

// compareCandidates ranks two candidates for req before resolving them.
// Negative means a is better.
//
// Candidates declared closer to the request win. Among candidates at the
// same distance, a member of a subclass beats one of its superclass. Then
// the more specific declared type wins, then the non-null one.
func (s *session) compareCandidates(req Request, a, b *Provider) int {
	da, db := a.Scope.distance(req.Scope), b.Scope.distance(req.Scope)
	if da != db {
		if da < db {
			return -1
		}
		return 1
	}
	if ra, rb := a.Receiver, b.Receiver; !ra.IsZero() && !rb.IsZero() {
		switch {
		case s.checker.IsSubtypeOf(ra, rb):
			if !s.checker.IsSubtypeOf(rb, ra) {
				return -1
			}
		case s.checker.IsSubtypeOf(rb, ra):
			return 1
		}
	}
	if c := s.compareSpecificity(a.Declared().Type, b.Declared().Type); c != 0 {
		return c
	}
	an, bn := types.IsNullableType(a.Type), types.IsNullableType(b.Type)
	switch {
	case !an && bn:
		return -1
	case an && !bn:
		return 1
	}
	return 0
}

// compareResults ranks two successful resolutions: one that needed no
// default values beats one that did, then candidate rank decides.
func (s *session) compareResults(req Request, a, b *Resolved) int {
	ad, bd := a.UsesDefault(), b.UsesDefault()
	switch {
	case !ad && bd:
		return -1
	case ad && !bd:
		return 1
	}
	return s.compareCandidates(req, a.Candidate, b.Candidate)
}

// compareSpecificity prefers concrete types over type parameters, strict
// subtypes over their supertypes, and recurses into the arguments of two
// applications of the same classifier. Unrelated types are compared by the
// common supertype of their supertypes.
func (s *session) compareSpecificity(a, b types.Type) int {
	return s.specificity(a, b, make(map[[2]string]struct{}))
}

func (s *session) specificity(a, b types.Type, seen map[[2]string]struct{}) int {
	switch {
	case a.IsStar() && b.IsStar():
		return 0
	case a.IsStar():
		return 1
	case b.IsStar():
		return -1
	}
	a, b = a.WithNullability(false), b.WithNullability(false)
	if a.Equal(b) {
		return 0
	}

	ap, bp := a.IsTypeParameter(), b.IsTypeParameter()
	switch {
	case !ap && bp:
		return -1
	case ap && !bp:
		return 1
	}

	pair := [2]string{a.Key(), b.Key()}
	if _, ok := seen[pair]; ok {
		return 0
	}
	seen[pair] = struct{}{}

	if a.Classifier() != b.Classifier() || a.NumArgs() != b.NumArgs() {
		sub := s.checker.IsSubtypeOf(a, b)
		sup := s.checker.IsSubtypeOf(b, a)
		switch {
		case sub && !sup:
			return -1
		case sup && !sub:
			return 1
		}
		as, bs := a.Supertypes(), b.Supertypes()
		switch {
		case len(as) > 0 && len(bs) == 0:
			return -1
		case len(as) == 0 && len(bs) > 0:
			return 1
		case len(as) == 0:
			return 0
		}
		return s.specificity(s.checker.CommonSupertype(as), s.checker.CommonSupertype(bs), seen)
	}

	diff := 0
	for i := 0; i < a.NumArgs(); i++ {
		diff += s.specificity(a.Arg(i), b.Arg(i), seen)
	}
	switch {
	case diff < 0:
		return -1
	case diff > 0:
		return 1
	}
	return 0
}

// declaredBefore orders providers by declaration.
func declaredBefore(a, b *Provider) bool {
	if a.Scope.Depth() != b.Scope.Depth() {
		return a.Scope.Depth() < b.Scope.Depth()
	}
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.Name < b.Name
}
