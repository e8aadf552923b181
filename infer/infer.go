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

// Package infer solves type-parameter bindings: given a subject type that
// must be assignable to a pattern type, it collects lower, upper and
// equality constraints on the free type parameters and fixes each one to a
// concrete type.
package infer

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-set/v2"
	"go.uber.org/inject/types"
	"go.uber.org/multierr"
)

// ErrUnsatisfiable is matched by errors.Is against every *ConstraintError.
var ErrUnsatisfiable = errors.New("unsatisfiable constraint")

// ConstraintKind says how a variable relates to a constraint type.
type ConstraintKind int

// Constraint kinds.
const (
	// Lower means the type must be assignable to the variable.
	Lower ConstraintKind = iota + 1
	// Upper means the variable must be assignable to the type.
	Upper
	// Equal means the variable is the type.
	Equal
)

func (k ConstraintKind) String() string {
	switch k {
	case Lower:
		return "lower"
	case Upper:
		return "upper"
	case Equal:
		return "equal"
	default:
		return fmt.Sprintf("ConstraintKind(%d)", int(k))
	}
}

// Constraint is a single bound recorded on a variable.
type Constraint struct {
	Kind ConstraintKind
	Type types.Type
}

func (c Constraint) String() string {
	return c.Kind.String() + " " + c.Type.String()
}

// ConstraintError reports a relation that does not hold once variables
// are fixed.
type ConstraintError struct {
	Sub, Sup types.Type
	Equal    bool
}

func (e *ConstraintError) Error() string {
	if e.Equal {
		return fmt.Sprintf("%v is not equal to %v", e.Sub, e.Sup)
	}
	return fmt.Sprintf("%v is not a subtype of %v", e.Sub, e.Sup)
}

// Is makes errors.Is match ErrUnsatisfiable.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrUnsatisfiable
}

// Options configures an inference run.
type Options struct {
	// Variables are the type parameters to solve for.
	Variables []*types.Classifier

	// Static type parameters stay rigid even if listed in Variables. These
	// are the parameters of enclosing generic declarations.
	Static []*types.Classifier

	// StrictNullability forbids binding a non-null variable occurrence to
	// a nullable type.
	StrictNullability bool

	// MaxDepth bounds the subtype checks run during inference.
	MaxDepth int
}

// Context holds the state of one inference run. It is not safe for
// concurrent use.
//
// The checks run by a Context may panic with a *types.RecursionLimitError.
type Context struct {
	universe    *types.Universe
	checker     *types.Checker
	plain       *types.Checker
	vars        []*types.Classifier
	free        *set.Set[*types.Classifier]
	constraints map[*types.Classifier][]Constraint
	fixed       types.Substitution
	strict      bool
	err         error
}

var _ types.ConstraintSink = (*Context)(nil)

// New builds a Context with the declared bounds of every variable already
// recorded as upper constraints.
func New(u *types.Universe, opts Options) *Context {
	static := set.New[*types.Classifier](len(opts.Static))
	for _, s := range opts.Static {
		static.Insert(s)
	}

	c := &Context{
		universe:    u,
		free:        set.New[*types.Classifier](len(opts.Variables)),
		constraints: make(map[*types.Classifier][]Constraint),
		fixed:       make(types.Substitution),
		strict:      opts.StrictNullability,
	}
	for _, v := range opts.Variables {
		if static.Contains(v) || !c.free.Insert(v) {
			continue
		}
		c.vars = append(c.vars, v)
	}
	c.checker = types.NewChecker(u, types.MaxDepth(opts.MaxDepth), types.WithConstraints(c))
	c.plain = types.NewChecker(u, types.MaxDepth(opts.MaxDepth))

	nullableAny := u.AnyType(true)
	for _, v := range c.vars {
		for _, bound := range v.Supertypes() {
			if bound.Equal(nullableAny) {
				continue
			}
			c.add(v, Upper, bound)
		}
	}
	return c
}

// Run infers bindings under which subject is assignable to pattern.
func Run(u *types.Universe, subject, pattern types.Type, opts Options) *Context {
	c := New(u, opts)
	c.AddSubtype(subject, pattern)
	c.Fix()
	return c
}

// OK reports whether every constraint was satisfied.
func (c *Context) OK() bool { return c.err == nil }

// Err returns every constraint violation found, combined.
func (c *Context) Err() error { return c.err }

// Variables returns the variables being solved for.
func (c *Context) Variables() []*types.Classifier {
	return append([]*types.Classifier(nil), c.vars...)
}

// Fixed returns the bindings of every fixed variable.
func (c *Context) Fixed() types.Substitution {
	out := make(types.Substitution, len(c.fixed))
	for k, v := range c.fixed {
		out[k] = v
	}
	return out
}

// Binding returns the type v was fixed to.
func (c *Context) Binding(v *types.Classifier) (types.Type, bool) {
	t, ok := c.fixed[v]
	return t, ok
}

// Constraints returns the constraints recorded on v.
func (c *Context) Constraints(v *types.Classifier) []Constraint {
	return append([]Constraint(nil), c.constraints[v]...)
}

// IsVariable reports whether cl is a variable not fixed yet.
func (c *Context) IsVariable(cl *types.Classifier) bool {
	if cl == nil || !c.free.Contains(cl) {
		return false
	}
	_, fixed := c.fixed[cl]
	return !fixed
}

func (c *Context) fail(err error) {
	c.err = multierr.Append(c.err, err)
}

// AddSubtype requires sub <: sup, recording constraints on any variables
// involved.
func (c *Context) AddSubtype(sub, sup types.Type) {
	sub, sup = sub.Substitute(c.fixed), sup.Substitute(c.fixed)
	if !c.checker.IsSubtypeOf(sub, sup) {
		c.fail(&ConstraintError{Sub: sub, Sup: sup})
	}
}

// AddEquality requires a == b.
func (c *Context) AddEquality(a, b types.Type) {
	a, b = a.Substitute(c.fixed), b.Substitute(c.fixed)
	if !c.checker.IsEqual(a, b) {
		c.fail(&ConstraintError{Sub: a, Sup: b, Equal: true})
	}
}

// AddSubtypeConstraint is called by the checker for sub <: sup where
// either side is a variable.
func (c *Context) AddSubtypeConstraint(sub, sup types.Type) bool {
	if c.IsVariable(sup.Classifier()) {
		lower := sub
		switch {
		case sup.Nullable():
			lower = sub.WithNullability(false)
		case c.strict && sub.Nullable():
			return false
		}
		c.add(sup.Classifier(), Lower, lower)
	}
	if c.IsVariable(sub.Classifier()) {
		if sub.Nullable() && !types.IsNullableType(sup) && !c.IsVariable(sup.Classifier()) {
			return false
		}
		c.add(sub.Classifier(), Upper, sup)
	}
	return true
}

// AddEqualityConstraint is called by the checker for a == b where either
// side is a variable.
func (c *Context) AddEqualityConstraint(a, b types.Type) bool {
	if c.IsVariable(a.Classifier()) && !c.addEqual(a, b) {
		return false
	}
	if c.IsVariable(b.Classifier()) && !c.addEqual(b, a) {
		return false
	}
	return true
}

func (c *Context) addEqual(v, other types.Type) bool {
	t := other
	if v.Nullable() {
		if !other.Nullable() && !c.IsVariable(other.Classifier()) {
			return false
		}
		t = other.WithNullability(false)
	}
	c.add(v.Classifier(), Equal, t)
	return true
}

func (c *Context) add(v *types.Classifier, kind ConstraintKind, t types.Type) {
	t = t.WithVariance(types.Invariant)
	for _, existing := range c.constraints[v] {
		if existing.Kind == kind && existing.Type.Equal(t) {
			return
		}
	}
	c.constraints[v] = append(c.constraints[v], Constraint{Kind: kind, Type: t})
}

// Fix assigns a type to every variable, fixing the best-constrained
// variables first and re-checking each variable's constraints once it is
// fixed. Checking a constraint between two variables passes the bound on
// to the variable still open.
func (c *Context) Fix() {
	for c.err == nil {
		v := c.next()
		if v == nil {
			return
		}
		c.fix(v)
	}
}

func (c *Context) fix(v *types.Classifier) {
	t := c.choose(v)
	c.fixed[v] = t
	for _, con := range c.constraints[v] {
		switch con.Kind {
		case Lower:
			c.AddSubtype(con.Type, t)
		case Upper:
			c.AddSubtype(t, con.Type)
		case Equal:
			c.AddEquality(con.Type, t)
		}
	}
}

// next picks the variable to fix: one whose constraints are all proper
// types, else one with at least one proper constraint, else the first
// open variable.
func (c *Context) next() *types.Classifier {
	var withProper, first *types.Classifier
	for _, v := range c.vars {
		if !c.IsVariable(v) {
			continue
		}
		if first == nil {
			first = v
		}
		proper, open := 0, 0
		for _, con := range c.constraints[v] {
			if c.mentionsOpen(con.Type.Substitute(c.fixed), v) {
				open++
			} else {
				proper++
			}
		}
		if proper > 0 && open == 0 {
			return v
		}
		if proper > 0 && withProper == nil {
			withProper = v
		}
	}
	if withProper != nil {
		return withProper
	}
	return first
}

func (c *Context) mentionsOpen(t types.Type, self *types.Classifier) bool {
	return types.Mentions(t, func(cl *types.Classifier) bool {
		return cl != self && c.IsVariable(cl)
	})
}

func (c *Context) choose(v *types.Classifier) types.Type {
	var eq, lower, upper []types.Type
	for _, con := range c.constraints[v] {
		t := con.Type.Substitute(c.fixed)
		if types.Mentions(t, c.IsVariable) {
			continue
		}
		switch con.Kind {
		case Equal:
			eq = append(eq, t)
		case Lower:
			lower = append(lower, t)
		case Upper:
			upper = append(upper, t)
		}
	}
	switch {
	case len(eq) > 0:
		return eq[0]
	case len(lower) > 0:
		return c.plain.CommonSupertype(lower)
	case len(upper) > 0:
		return c.mostSpecific(upper)
	default:
		return c.universe.AnyType(true)
	}
}

func (c *Context) mostSpecific(ts []types.Type) types.Type {
	for _, t := range ts {
		below := true
		for _, o := range ts {
			if !c.plain.IsSubtypeOf(t, o) {
				below = false
				break
			}
		}
		if below {
			return t
		}
	}
	return ts[0]
}
