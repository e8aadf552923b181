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
	"strings"

	"go.uber.org/inject/types"
)

// Request asks for a value of Type at a point of Scope.
type Request struct {
	Type  types.Type
	Scope *Scope

	// Position is the number of declarations of a block scope that precede
	// the request. Providers declared in the same block at or after
	// Position are not visible. Ignored outside block scopes.
	Position int

	// CallContext is the context of the code making the request. Nested
	// requests inherit it, except inside function values, which run in
	// the default context.
	CallContext CallContext

	// lazy is set on requests made from inside a function value. Such a
	// request may refer back to a resolution still in progress.
	lazy bool
}

func (r Request) String() string {
	return fmt.Sprintf("%v in %v", r.Type, r.Scope)
}

// Call is an invocation of a provider whose parameters are to be injected,
// except those passed explicitly.
type Call struct {
	Callee   *Provider
	Scope    *Scope
	Position int

	// CallContext is the context of the call site. The callee and every
	// injected argument must be usable from it.
	CallContext CallContext

	// Explicit names the parameters supplied by the caller.
	Explicit []string
}

// ArgumentKind says how a parameter received its value.
type ArgumentKind int

// Argument kinds.
const (
	// Injected arguments were resolved to a provider.
	Injected ArgumentKind = iota
	// Defaulted arguments fall back on the declaration's default value,
	// or null for nullable parameters.
	Defaulted
	// Explicit arguments were passed at the call site.
	Explicit
)

func (k ArgumentKind) String() string {
	switch k {
	case Injected:
		return "injected"
	case Defaulted:
		return "default"
	case Explicit:
		return "explicit"
	default:
		return fmt.Sprintf("ArgumentKind(%d)", int(k))
	}
}

// Argument is the outcome for a single parameter.
type Argument struct {
	Param Param
	Kind  ArgumentKind

	// Value is set for Injected arguments.
	Value *Resolved
}

// Resolved is a request satisfied by a provider, along with the
// resolution of the provider's parameters.
type Resolved struct {
	Request Request

	// Candidate is the selected provider with its type parameters
	// substituted. Candidate.Declared() returns it as written.
	Candidate *Provider

	Args []*Argument

	// Cycle is set when the value is the one being resolved further up,
	// reached again through a function value.
	Cycle bool

	// Value is the constant a key builtin produces: the type for a
	// TypeKey, the request site for a SourceKey.
	Value string
}

// UsesDefault reports whether any parameter of the selected provider fell
// back on a default.
func (r *Resolved) UsesDefault() bool {
	for _, a := range r.Args {
		if a.Kind == Defaulted {
			return true
		}
	}
	return false
}

// Walk visits r and every nested resolution depth-first until fn returns
// false.
func (r *Resolved) Walk(fn func(*Resolved) bool) bool {
	if !fn(r) {
		return false
	}
	for _, a := range r.Args {
		if a.Value != nil && !a.Value.Walk(fn) {
			return false
		}
	}
	return true
}

func (r *Resolved) hasCycle() bool {
	found := false
	r.Walk(func(n *Resolved) bool {
		found = n.Cycle
		return !found
	})
	return found
}

// String renders the resolution as an indented tree.
func (r *Resolved) String() string {
	var b strings.Builder
	r.write(&b, 0)
	return b.String()
}

func (r *Resolved) write(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%v <= %v", r.Request.Type, r.Candidate.Name)
	if r.Value != "" {
		fmt.Fprintf(b, " = %q", r.Value)
	}
	if r.Cycle {
		b.WriteString(" (cycle)")
	}
	b.WriteByte('\n')
	writeArgs(b, r.Args, depth+1)
}

func writeArgs(b *strings.Builder, args []*Argument, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, a := range args {
		b.WriteString(indent)
		b.WriteString(a.Param.Name)
		b.WriteString(": ")
		switch a.Kind {
		case Injected:
			a.Value.write(b, depth)
		default:
			b.WriteString(a.Kind.String())
			b.WriteByte('\n')
		}
	}
}

// CallResult holds the arguments resolved for a Call.
type CallResult struct {
	Call Call
	Args []*Argument
}

func (r *CallResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v(...)\n", r.Call.Callee.Name)
	writeArgs(&b, r.Args, 1)
	return b.String()
}
