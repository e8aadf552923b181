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

// ProviderKind is the kind of declaration a Provider stands for.
type ProviderKind int

// Provider kinds.
const (
	FunctionProvider ProviderKind = iota
	PropertyProvider
	ConstructorProvider
	ObjectProvider
	ValueProvider

	// LambdaProvider, ListProvider, TypeKeyProvider and SourceKeyProvider
	// are synthesized for builtin requests.
	LambdaProvider
	ListProvider
	TypeKeyProvider
	SourceKeyProvider
)

func (k ProviderKind) String() string {
	switch k {
	case FunctionProvider:
		return "function"
	case PropertyProvider:
		return "property"
	case ConstructorProvider:
		return "constructor"
	case ObjectProvider:
		return "object"
	case ValueProvider:
		return "value"
	case LambdaProvider:
		return "lambda"
	case ListProvider:
		return "list"
	case TypeKeyProvider:
		return "typeKey"
	case SourceKeyProvider:
		return "sourceKey"
	default:
		return fmt.Sprintf("ProviderKind(%d)", int(k))
	}
}

// CallContext is the calling convention a provider needs, or the one
// offered where a request is made.
type CallContext int

// Call contexts. DefaultContext is the zero value.
const (
	DefaultContext CallContext = iota
	SuspendContext
	ComposableContext
)

func (c CallContext) String() string {
	switch c {
	case DefaultContext:
		return "default"
	case SuspendContext:
		return "suspend"
	case ComposableContext:
		return "composable"
	default:
		return fmt.Sprintf("CallContext(%d)", int(c))
	}
}

// CanCall reports whether code running in c may use a provider needing
// other: the same context or the default one.
func (c CallContext) CanCall(other CallContext) bool {
	return c == other || other == DefaultContext
}

// Visibility restricts where a provider can be seen from.
type Visibility int

// Visibilities. Public is the zero value.
const (
	Public Visibility = iota
	Internal
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Internal:
		return "internal"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("Visibility(%d)", int(v))
	}
}

// Param is an injectable parameter of a provider.
type Param struct {
	Name string
	Type types.Type

	// HasDefault is set when the declaration supplies a default value to
	// fall back on if nothing provides Type.
	HasDefault bool
}

func (p Param) String() string {
	return p.Name + ": " + p.Type.String()
}

// Origin records how a synthesized provider came to be.
type Origin struct {
	// Spread is the spreading provider that was instantiated.
	Spread *Provider

	// Matched is the provider whose type triggered the instantiation.
	Matched *Provider
}

// Provider is a declaration that can satisfy requests for its Type.
//
// Providers must not be modified once handed to NewPool.
type Provider struct {
	Name string
	Kind ProviderKind

	// Type is the type the provider produces.
	Type types.Type

	// TypeParameters are inferred anew for every request the provider is
	// considered for.
	TypeParameters []*types.Classifier

	// Params are resolved recursively when the provider is selected.
	Params []Param

	// Scope is where the provider is declared.
	Scope *Scope

	Visibility Visibility

	// Receiver is the type of the instance a member provider is called on,
	// zero for top-level declarations. A member of a subclass beats the
	// same member of its superclass.
	Receiver types.Type

	// CallContext is the context the provider must be used from, unless
	// it is DefaultContext.
	CallContext CallContext

	// Order is the declaration index within Scope. Inside a block a
	// provider is only visible to requests positioned after it.
	Order int

	// Unit is the compilation unit the declaration belongs to. Defaults to
	// the unit of Scope.
	Unit string

	// Origin is set on providers synthesized by spreading.
	Origin *Origin

	// declared is the provider this one was instantiated from, nil for
	// declared providers.
	declared *Provider
}

func (p *Provider) String() string {
	var b strings.Builder
	b.WriteString(p.Name)
	if len(p.TypeParameters) > 0 {
		b.WriteByte('<')
		for i, tp := range p.TypeParameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(tp.FqName())
		}
		b.WriteByte('>')
	}
	switch p.Kind {
	case PropertyProvider, ObjectProvider, ValueProvider:
	default:
		b.WriteByte('(')
		for i, prm := range p.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(prm.String())
		}
		b.WriteByte(')')
	}
	b.WriteString(": ")
	b.WriteString(p.Type.String())
	return b.String()
}

// Declared returns the provider as written, before any type parameters
// were substituted.
func (p *Provider) Declared() *Provider {
	if p.declared != nil {
		return p.declared
	}
	return p
}

func (p *Provider) unit() string {
	if p.Unit != "" {
		return p.Unit
	}
	return p.Scope.Unit()
}

// spreadParameters lists the spread type parameters of p.
func (p *Provider) spreadParameters() []*types.Classifier {
	var out []*types.Classifier
	for _, tp := range p.TypeParameters {
		if tp.IsSpread() {
			out = append(out, tp)
		}
	}
	return out
}

// substitute instantiates p with the bindings in m. Bound type parameters
// are dropped from the result.
func (p *Provider) substitute(m types.Substitution) *Provider {
	out := *p
	out.declared = p.Declared()
	out.Type = p.Type.Substitute(m)
	if !p.Receiver.IsZero() {
		out.Receiver = p.Receiver.Substitute(m)
	}
	out.TypeParameters = nil
	for _, tp := range p.TypeParameters {
		if _, ok := m[tp]; !ok {
			out.TypeParameters = append(out.TypeParameters, tp)
		}
	}
	if len(p.Params) > 0 {
		out.Params = make([]Param, len(p.Params))
		for i, prm := range p.Params {
			prm.Type = prm.Type.Substitute(m)
			out.Params[i] = prm
		}
	}
	return &out
}

// validate reports the problems that make p unusable.
func (p *Provider) validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("provider has no name")
	case p.Scope == nil:
		return fmt.Errorf("provider is not declared in a scope")
	case p.Type.IsZero():
		return fmt.Errorf("provider has no type")
	case p.Type.IsStar():
		return fmt.Errorf("provider type cannot be a star projection")
	}
	for i, prm := range p.Params {
		if prm.Type.IsZero() || prm.Type.IsStar() {
			return fmt.Errorf("parameter %d (%q) has no type", i, prm.Name)
		}
	}
	seen := make(map[*types.Classifier]struct{}, len(p.TypeParameters))
	for _, tp := range p.TypeParameters {
		if tp == nil || !tp.IsTypeParameter() {
			return fmt.Errorf("%v is not a type parameter", tp)
		}
		if _, ok := seen[tp]; ok {
			return fmt.Errorf("type parameter %v is listed twice", tp)
		}
		seen[tp] = struct{}{}
	}
	return nil
}
