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
	"strings"
)

// ErrInvalidType is returned when a type cannot be constructed.
var ErrInvalidType = errors.New("invalid type")

// Type is an immutable application of a classifier to type arguments,
// optionally nullable and wrapped in tags. The star projection is a Type
// without a classifier.
//
// The zero Type is invalid; use New, Of or Star.
type Type struct {
	classifier *Classifier
	nullable   bool
	star       bool
	args       []Type
	tags       []Type // outermost first
	variance   Variance
}

// New applies c to args. The number of arguments must match the number of
// type parameters of c.
func New(c *Classifier, args ...Type) (Type, error) {
	if c == nil {
		return Type{}, fmt.Errorf("%w: nil classifier", ErrInvalidType)
	}
	if len(args) != len(c.params) {
		return Type{}, fmt.Errorf("%w: %v expects %d type arguments, got %d",
			ErrInvalidType, c, len(c.params), len(args))
	}
	for i, a := range args {
		if a.IsZero() {
			return Type{}, fmt.Errorf("%w: %v: type argument %d is missing", ErrInvalidType, c, i)
		}
	}
	t := Type{classifier: c}
	if len(args) > 0 {
		t.args = append([]Type(nil), args...)
	}
	return t, nil
}

// Of is like New but panics on error. It is meant for types built from
// constants.
func Of(c *Classifier, args ...Type) Type {
	t, err := New(c, args...)
	if err != nil {
		panic(err)
	}
	return t
}

// Star returns the star projection, usable only as a type argument.
func Star() Type { return Type{star: true} }

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool { return t.classifier == nil && !t.star }

// Classifier returns the type constructor. Nil for the star projection.
func (t Type) Classifier() *Classifier { return t.classifier }

// IsStar reports whether t is the star projection.
func (t Type) IsStar() bool { return t.star }

// Nullable reports whether t is marked nullable.
func (t Type) Nullable() bool { return t.nullable }

// Variance returns the use-site variance of t as a type argument.
func (t Type) Variance() Variance { return t.variance }

// Args returns the type arguments.
func (t Type) Args() []Type { return append([]Type(nil), t.args...) }

// Arg returns the i'th type argument.
func (t Type) Arg(i int) Type { return t.args[i] }

// NumArgs returns the number of type arguments.
func (t Type) NumArgs() int { return len(t.args) }

// Tags returns the tags wrapping t, outermost first.
func (t Type) Tags() []Type { return append([]Type(nil), t.tags...) }

// IsTagged reports whether t carries at least one tag.
func (t Type) IsTagged() bool { return len(t.tags) > 0 }

// HasTag reports whether any of t's tags is an application of tag.
func (t Type) HasTag(tag *Classifier) bool {
	for _, tt := range t.tags {
		if tt.classifier == tag {
			return true
		}
	}
	return false
}

// IsTypeParameter reports whether t is a type parameter reference.
func (t Type) IsTypeParameter() bool {
	return t.classifier != nil && t.classifier.IsTypeParameter()
}

// WithNullability returns t marked nullable or not.
func (t Type) WithNullability(nullable bool) Type {
	if t.star {
		return t
	}
	t.nullable = nullable
	return t
}

// WithVariance returns t with the given use-site variance.
func (t Type) WithVariance(v Variance) Type {
	t.variance = v
	return t
}

// WithArgs returns t applied to different arguments.
func (t Type) WithArgs(args ...Type) (Type, error) {
	n, err := New(t.classifier, args...)
	if err != nil {
		return Type{}, err
	}
	n.nullable, n.tags, n.variance = t.nullable, t.tags, t.variance
	return n, nil
}

// Tagged wraps t in tag, which becomes the outermost tag. The tag must be
// an application of a classifier of kind Tag.
func (t Type) Tagged(tag Type) (Type, error) {
	if tag.classifier == nil || !tag.classifier.IsTag() {
		return Type{}, fmt.Errorf("%w: %v is not a tag", ErrInvalidType, tag)
	}
	if t.star {
		return Type{}, fmt.Errorf("%w: cannot tag a star projection", ErrInvalidType)
	}
	tags := make([]Type, 0, len(t.tags)+1)
	tags = append(tags, tag.withoutDecoration())
	t.tags = append(tags, t.tags...)
	return t, nil
}

// MustTagged is like Tagged but panics on error.
func (t Type) MustTagged(tag Type) Type {
	r, err := t.Tagged(tag)
	if err != nil {
		panic(err)
	}
	return r
}

// Untagged returns t without any tags.
func (t Type) Untagged() Type {
	t.tags = nil
	return t
}

func (t Type) withTags(tags []Type) Type {
	if len(tags) == 0 {
		t.tags = nil
	} else {
		t.tags = tags
	}
	return t
}

func (t Type) withoutDecoration() Type {
	t.variance = Invariant
	return t
}

// Equal reports structural equality: same classifier, arguments,
// nullability, tags and use-site variance.
func (t Type) Equal(o Type) bool {
	if t.star || o.star {
		return t.star == o.star
	}
	if t.classifier != o.classifier || t.nullable != o.nullable || t.variance != o.variance {
		return false
	}
	if len(t.args) != len(o.args) || len(t.tags) != len(o.tags) {
		return false
	}
	for i := range t.args {
		if !t.args[i].Equal(o.args[i]) {
			return false
		}
	}
	for i := range t.tags {
		if !t.tags[i].Equal(o.tags[i]) {
			return false
		}
	}
	return true
}

// Key is a canonical string for t, stable across calls and usable as a map
// key. Structurally equal types have equal keys.
func (t Type) Key() string {
	var b strings.Builder
	t.write(&b, false)
	return b.String()
}

// String renders t for humans.
func (t Type) String() string {
	if t.IsZero() {
		return "<invalid>"
	}
	var b strings.Builder
	t.write(&b, true)
	return b.String()
}

func (t Type) write(b *strings.Builder, pretty bool) {
	if t.variance != Invariant {
		b.WriteString(t.variance.String())
		b.WriteByte(' ')
	}
	if t.star {
		b.WriteByte('*')
		return
	}
	if t.classifier == nil {
		b.WriteString("<invalid>")
		return
	}
	for _, tag := range t.tags {
		b.WriteByte('@')
		tag.write(b, pretty)
		b.WriteByte(' ')
	}
	if pretty {
		if _, ok := t.classifier.universe.FunctionArity(t.classifier); ok {
			t.writeFunction(b)
			return
		}
	}
	if pretty {
		b.WriteString(t.classifier.fqName)
	} else {
		b.WriteString(t.classifier.key)
	}
	if len(t.args) > 0 {
		b.WriteByte('<')
		for i, a := range t.args {
			if i > 0 {
				b.WriteString(", ")
			}
			a.write(b, pretty)
		}
		b.WriteByte('>')
	}
	if t.nullable {
		b.WriteByte('?')
	}
}

func (t Type) writeFunction(b *strings.Builder) {
	if t.nullable {
		b.WriteByte('(')
	}
	b.WriteByte('(')
	params := t.args[:len(t.args)-1]
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		p.withoutDecoration().write(b, true)
	}
	b.WriteString(") -> ")
	t.args[len(t.args)-1].withoutDecoration().write(b, true)
	if t.nullable {
		b.WriteString(")?")
	}
}

// TypeParameters collects the type parameters t refers to, through its
// arguments, its tags and the bounds of the parameters found, in order of
// first appearance.
func TypeParameters(t Type) []*Classifier {
	var out []*Classifier
	seen := make(map[*Classifier]struct{})
	var walk func(Type)
	walk = func(t Type) {
		if t.star || t.classifier == nil {
			return
		}
		for _, tag := range t.tags {
			walk(tag)
		}
		if t.classifier.IsTypeParameter() {
			if _, ok := seen[t.classifier]; !ok {
				seen[t.classifier] = struct{}{}
				out = append(out, t.classifier)
				for _, bound := range t.classifier.Supertypes() {
					walk(bound)
				}
			}
		}
		for _, a := range t.args {
			walk(a)
		}
	}
	walk(t)
	return out
}

// Mentions reports whether t refers to any classifier in cs through its
// arguments or tags.
func Mentions(t Type, cs func(*Classifier) bool) bool {
	if t.star || t.classifier == nil {
		return false
	}
	if cs(t.classifier) {
		return true
	}
	for _, a := range t.args {
		if Mentions(a, cs) {
			return true
		}
	}
	for _, tag := range t.tags {
		if Mentions(tag, cs) {
			return true
		}
	}
	return false
}

// Size counts the nodes of t.
func Size(t Type) int {
	n := 1
	for _, a := range t.args {
		n += Size(a)
	}
	for _, tag := range t.tags {
		n += Size(tag)
	}
	return n
}
