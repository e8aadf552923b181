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

package types

import (
	"errors"
	"fmt"
)

// DefaultMaxDepth bounds the recursion of a single subtype or equality
// check.
const DefaultMaxDepth = 256

// ErrRecursionLimitExceeded is matched by errors.Is against a
// *RecursionLimitError.
var ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")

// RecursionLimitError reports a type comparison that nested deeper than the
// configured limit.
//
// Checker methods panic with a *RecursionLimitError; callers running
// untrusted input recover it at their boundary.
type RecursionLimitError struct {
	Sub, Sup Type
	Depth    int
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursion limit of %d exceeded comparing %v with %v", e.Depth, e.Sub, e.Sup)
}

// Is makes errors.Is match ErrRecursionLimitExceeded.
func (e *RecursionLimitError) Is(target error) bool {
	return target == ErrRecursionLimitExceeded
}

// ConstraintSink receives the comparisons a Checker cannot decide on its
// own because one side is an inference variable.
type ConstraintSink interface {
	// IsVariable reports whether c is an unfixed inference variable.
	IsVariable(c *Classifier) bool

	// AddSubtypeConstraint records sub <: sup and reports whether it is
	// still satisfiable. Tags shared by both sides have been stripped.
	AddSubtypeConstraint(sub, sup Type) bool

	// AddEqualityConstraint records a == b.
	AddEqualityConstraint(a, b Type) bool
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// MaxDepth bounds the recursion depth of the checker.
func MaxDepth(n int) CheckerOption {
	return func(c *Checker) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithConstraints routes comparisons against inference variables to sink.
func WithConstraints(sink ConstraintSink) CheckerOption {
	return func(c *Checker) {
		c.sink = sink
	}
}

// Checker decides subtyping and type equality over a Universe.
//
// A Checker tracks its recursion depth and is not safe for concurrent use.
// Create one per goroutine; they are cheap.
type Checker struct {
	universe *Universe
	sink     ConstraintSink
	maxDepth int
	depth    int
}

// NewChecker builds a Checker for u.
func NewChecker(u *Universe, opts ...CheckerOption) *Checker {
	c := &Checker{universe: u, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Universe returns the universe the checker works over.
func (c *Checker) Universe() *Universe { return c.universe }

func (c *Checker) enter(sub, sup Type) {
	c.depth++
	if c.depth > c.maxDepth {
		c.depth--
		panic(&RecursionLimitError{Sub: sub, Sup: sup, Depth: c.maxDepth})
	}
}

func (c *Checker) leave() { c.depth-- }

func (c *Checker) isVariable(t Type) bool {
	return c.sink != nil && !t.star && t.classifier != nil && c.sink.IsVariable(t.classifier)
}

// IsSubtypeOf reports whether sub is assignable to sup.
func (c *Checker) IsSubtypeOf(sub, sup Type) bool {
	c.enter(sub, sup)
	defer c.leave()

	if sup.star {
		return true
	}
	if sub.star {
		return false
	}
	sub, sup = sub.withoutDecoration(), sup.withoutDecoration()
	if sub.Equal(sup) {
		return true
	}

	if c.isVariable(sup) {
		rest, ok := c.stripTagPrefix(sup, sub)
		if !ok {
			return false
		}
		return c.sink.AddSubtypeConstraint(rest, sup.Untagged())
	}
	if c.isVariable(sub) {
		rest, ok := c.stripTagPrefix(sub, sup)
		if !ok {
			return false
		}
		return c.sink.AddSubtypeConstraint(sub.Untagged(), rest)
	}

	u := c.universe
	if sup.classifier == u.any && len(sup.tags) == 0 {
		if sup.nullable {
			return true
		}
		if !IsNullableType(sub) {
			return true
		}
	}
	if sub.classifier == u.nothing && len(sub.tags) == 0 {
		if !sub.nullable {
			return true
		}
		return IsNullableType(sup)
	}

	if sub.classifier.IsAlias() && sub.classifier != sup.classifier {
		exp, err := ExpandAlias(sub)
		if err != nil {
			return false
		}
		return c.IsSubtypeOf(exp, sup)
	}

	if sub.nullable && !IsNullableType(sup) {
		return false
	}

	if len(sub.tags) != len(sup.tags) {
		return false
	}
	for i := range sub.tags {
		if !c.equalTag(sub.tags[i], sup.tags[i]) {
			return false
		}
	}
	sub, sup = sub.Untagged(), sup.Untagged()

	if sub.classifier == sup.classifier {
		if sub.nullable && !sup.nullable {
			return false
		}
		return c.argumentsConform(sub, sup)
	}

	// Rigid type parameters only reach their bounds.
	for _, s := range sub.Supertypes() {
		if c.IsSubtypeOf(s, sup) {
			return true
		}
	}
	return false
}

// argumentsConform compares the arguments of two applications of the same
// classifier under their effective variance.
func (c *Checker) argumentsConform(sub, sup Type) bool {
	params := sup.classifier.params
	for i := range sup.args {
		a, p := sub.args[i], sup.args[i]
		if p.star {
			continue
		}
		if a.star {
			return false
		}
		declared := Invariant
		if i < len(params) {
			declared = params[i].variance
		}
		var ok bool
		switch EffectiveVariance(p.variance, a.variance, declared) {
		case Out:
			ok = c.IsSubtypeOf(a, p)
		case In:
			ok = c.IsSubtypeOf(p, a)
		default:
			ok = c.IsEqual(a, p)
		}
		if !ok {
			return false
		}
	}
	return true
}

// EffectiveVariance picks the variance governing an argument position: the
// expected side's use-site projection, then the actual side's, then the
// declaration.
func EffectiveVariance(sup, sub, declared Variance) Variance {
	if sup != Invariant {
		return sup
	}
	if sub != Invariant {
		return sub
	}
	return declared
}

// IsEqual reports whether a and b denote the same type.
func (c *Checker) IsEqual(a, b Type) bool {
	c.enter(a, b)
	defer c.leave()

	if a.star || b.star {
		return a.star == b.star
	}
	a, b = a.withoutDecoration(), b.withoutDecoration()
	if a.Equal(b) {
		return true
	}
	if c.isVariable(a) {
		rest, ok := c.stripTagPrefix(a, b)
		if !ok {
			return false
		}
		return c.sink.AddEqualityConstraint(a.Untagged(), rest)
	}
	if c.isVariable(b) {
		rest, ok := c.stripTagPrefix(b, a)
		if !ok {
			return false
		}
		return c.sink.AddEqualityConstraint(rest, b.Untagged())
	}
	if a.classifier != b.classifier {
		if a.classifier.IsAlias() || b.classifier.IsAlias() {
			return c.IsSubtypeOf(a, b) && c.IsSubtypeOf(b, a)
		}
		return false
	}
	if a.nullable != b.nullable || len(a.tags) != len(b.tags) {
		return false
	}
	for i := range a.tags {
		if !c.equalTag(a.tags[i], b.tags[i]) {
			return false
		}
	}
	for i := range a.args {
		x, y := a.args[i], b.args[i]
		if x.star || y.star {
			if x.star != y.star {
				return false
			}
			continue
		}
		if x.variance != y.variance {
			return false
		}
		if !c.IsEqual(x, y) {
			return false
		}
	}
	return true
}

func (c *Checker) equalTag(a, b Type) bool {
	if a.classifier != b.classifier || len(a.args) != len(b.args) {
		return false
	}
	for i := range a.args {
		if !c.IsEqual(a.args[i], b.args[i]) {
			return false
		}
	}
	return true
}

// stripTagPrefix matches the tags of a variable reference v against the
// outermost tags of other, returning other without them.
func (c *Checker) stripTagPrefix(v, other Type) (Type, bool) {
	if len(v.tags) == 0 {
		return other, true
	}
	if len(other.tags) < len(v.tags) {
		return Type{}, false
	}
	for i := range v.tags {
		if !c.equalTag(v.tags[i], other.tags[i]) {
			return Type{}, false
		}
	}
	return other.withTags(other.tags[len(v.tags):]), true
}

// IsStrictSubtypeOf reports whether a <: b but not b <: a.
func (c *Checker) IsStrictSubtypeOf(a, b Type) bool {
	return c.IsSubtypeOf(a, b) && !c.IsSubtypeOf(b, a)
}
