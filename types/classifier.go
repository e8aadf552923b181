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
	"fmt"
	"sync"
)

// Kind identifies what a classifier declares.
type Kind int

// Classifier kinds.
const (
	Class Kind = iota + 1
	Interface
	Object
	Alias
	Tag
	TypeParameter
)

func (k Kind) String() string {
	switch k {
	case Class:
		return "class"
	case Interface:
		return "interface"
	case Object:
		return "object"
	case Alias:
		return "alias"
	case Tag:
		return "tag"
	case TypeParameter:
		return "type parameter"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Variance is the declaration-site or use-site variance of a type argument.
type Variance int

// Variances. Invariant is the zero value.
const (
	Invariant Variance = iota
	Out
	In
)

func (v Variance) String() string {
	switch v {
	case Out:
		return "out"
	case In:
		return "in"
	default:
		return ""
	}
}

// ClassifierSpec describes a classifier to declare in a Universe.
type ClassifierSpec struct {
	// Key uniquely identifies the classifier in its Universe. Defaults to
	// FqName.
	Key string

	// FqName is the fully qualified, human readable name.
	FqName string

	// ClassID is the identity used for equality of class-like classifiers.
	// Defaults to Key. Ignored for type parameters.
	ClassID string

	Kind Kind

	// TypeParameters are the classifier's own type parameters, declared
	// beforehand with Kind TypeParameter.
	TypeParameters []*Classifier

	// Variance is the declaration-site variance. Only valid on type
	// parameters.
	Variance Variance

	// Spread marks a type parameter whose instantiation triggers add-on
	// expansion. Only valid on type parameters.
	Spread bool

	// Supertypes computes the direct supertypes on first use. For type
	// parameters these are the upper bounds. For aliases it must return
	// exactly one type, the expansion.
	Supertypes func() []Type
}

// Classifier is a named type constructor: a class, interface, object,
// alias, tag or type parameter. Classifiers are created through
// Universe.Declare and compared by pointer.
type Classifier struct {
	id       int
	universe *Universe
	key      string
	fqName   string
	classID  string
	kind     Kind
	params   []*Classifier
	variance Variance
	spread   bool
}

// ID is the classifier's index in its Universe.
func (c *Classifier) ID() int { return c.id }

// Key returns the unique key of the classifier.
func (c *Classifier) Key() string { return c.key }

// FqName returns the fully qualified name.
func (c *Classifier) FqName() string { return c.fqName }

// ClassID returns the class identity. Empty for type parameters.
func (c *Classifier) ClassID() string { return c.classID }

// Kind returns what the classifier declares.
func (c *Classifier) Kind() Kind { return c.kind }

// Variance returns the declaration-site variance of a type parameter.
func (c *Classifier) Variance() Variance { return c.variance }

// IsSpread reports whether c is a spread type parameter.
func (c *Classifier) IsSpread() bool { return c.spread }

// IsTypeParameter reports whether c is a type parameter.
func (c *Classifier) IsTypeParameter() bool { return c.kind == TypeParameter }

// IsAlias reports whether c is a type alias.
func (c *Classifier) IsAlias() bool { return c.kind == Alias }

// IsTag reports whether c is a tag.
func (c *Classifier) IsTag() bool { return c.kind == Tag }

// Universe returns the Universe the classifier was declared in.
func (c *Classifier) Universe() *Universe { return c.universe }

// TypeParameters returns the classifier's type parameters.
func (c *Classifier) TypeParameters() []*Classifier {
	return append([]*Classifier(nil), c.params...)
}

// Supertypes returns the declared direct supertypes, computing them on
// first use. Type parameters return their upper bounds.
func (c *Classifier) Supertypes() []Type {
	return c.universe.supertypes(c)
}

// DefaultType is the classifier applied to its own type parameters.
func (c *Classifier) DefaultType() Type {
	t := Type{classifier: c}
	if len(c.params) > 0 {
		t.args = make([]Type, len(c.params))
		for i, p := range c.params {
			t.args[i] = Type{classifier: p}
		}
	}
	return t
}

func (c *Classifier) String() string { return c.fqName }

type supertypeEntry struct {
	once    sync.Once
	compute func() []Type
	types   []Type
}

func (e *supertypeEntry) get() []Type {
	e.once.Do(func() {
		if e.compute != nil {
			e.types = e.compute()
		}
		e.compute = nil
	})
	return e.types
}
