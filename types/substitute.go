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

// ErrNotAlias is returned by ExpandAlias for types that are not aliases.
var ErrNotAlias = errors.New("not a type alias")

// Substitution maps type parameters to the types replacing them.
type Substitution map[*Classifier]Type

// Substitute replaces every type parameter of t found in m.
//
// A replaced reference keeps its own nullability: T? with T := String
// yields String?. Tags on the reference are prepended to the tags of the
// replacement.
func (t Type) Substitute(m Substitution) Type {
	if len(m) == 0 || t.star || t.classifier == nil {
		return t
	}
	tags := substituteAll(t.tags, m)
	if repl, ok := m[t.classifier]; ok && !repl.IsZero() {
		if repl.star {
			return repl
		}
		out := repl
		out.nullable = t.nullable || repl.nullable
		out.variance = t.variance
		if len(tags) > 0 {
			merged := make([]Type, 0, len(tags)+len(repl.tags))
			merged = append(merged, tags...)
			out.tags = append(merged, repl.tags...)
		}
		return out
	}
	t.args = substituteAll(t.args, m)
	return t.withTags(tags)
}

func substituteAll(ts []Type, m Substitution) []Type {
	if len(ts) == 0 {
		return ts
	}
	out := make([]Type, len(ts))
	for i, t := range ts {
		out[i] = t.Substitute(m)
	}
	return out
}

// Bind maps the type parameters of c to args positionally.
func Bind(c *Classifier, args []Type) Substitution {
	if len(c.params) == 0 {
		return nil
	}
	m := make(Substitution, len(c.params))
	for i, p := range c.params {
		if i < len(args) {
			m[p] = args[i].withoutDecoration()
		}
	}
	return m
}

// ExpandAlias replaces an alias application by its expansion. The alias
// reference's nullability and tags carry over to the result.
func ExpandAlias(t Type) (Type, error) {
	if t.classifier == nil || !t.classifier.IsAlias() {
		return Type{}, fmt.Errorf("%w: %v", ErrNotAlias, t)
	}
	supers := t.classifier.Supertypes()
	if len(supers) != 1 {
		return Type{}, fmt.Errorf("%w: alias %v must have exactly one expansion, has %d",
			ErrInvalidType, t.classifier, len(supers))
	}
	exp := supers[0].Substitute(Bind(t.classifier, t.args))
	exp.nullable = exp.nullable || t.nullable
	exp.variance = t.variance
	if len(t.tags) > 0 {
		tags := make([]Type, 0, len(t.tags)+len(exp.tags))
		tags = append(tags, t.tags...)
		exp.tags = append(tags, exp.tags...)
	}
	return exp, nil
}

// Supertypes returns the direct supertypes of t with t's arguments
// substituted in and t's nullability applied. Tags are not inherited.
func (t Type) Supertypes() []Type {
	if t.star || t.classifier == nil {
		return nil
	}
	declared := t.classifier.Supertypes()
	if len(declared) == 0 {
		return nil
	}
	m := Bind(t.classifier, t.args)
	out := make([]Type, len(declared))
	for i, s := range declared {
		s = s.Substitute(m)
		if t.nullable {
			s.nullable = true
		}
		out[i] = s.withoutDecoration()
	}
	return out
}

// IsNullableType reports whether null is a value of t: t is marked
// nullable, or t is a type parameter with a nullable bound.
func IsNullableType(t Type) bool {
	return isNullableType(t, 0)
}

func isNullableType(t Type, depth int) bool {
	if t.star || t.nullable {
		return true
	}
	if t.classifier == nil || depth > 32 {
		return false
	}
	switch t.classifier.kind {
	case TypeParameter:
		for _, b := range t.classifier.Supertypes() {
			if isNullableType(b, depth+1) {
				return true
			}
		}
	case Alias:
		if exp, err := ExpandAlias(t); err == nil {
			return isNullableType(exp, depth+1)
		}
	}
	return false
}

// SubtypeView finds the supertype of t, t itself included, whose
// classifier is c. Tags are ignored.
func SubtypeView(t Type, c *Classifier) (Type, bool) {
	seen := make(map[*Classifier]struct{})
	var find func(Type) (Type, bool)
	find = func(t Type) (Type, bool) {
		if t.star || t.classifier == nil {
			return Type{}, false
		}
		if t.classifier == c {
			return t.Untagged(), true
		}
		if _, ok := seen[t.classifier]; ok {
			return Type{}, false
		}
		seen[t.classifier] = struct{}{}
		if t.classifier.IsAlias() {
			if exp, err := ExpandAlias(t); err == nil {
				return find(exp)
			}
			return Type{}, false
		}
		for _, s := range t.Supertypes() {
			if v, ok := find(s); ok {
				return v, true
			}
		}
		return Type{}, false
	}
	return find(t)
}

// SupertypeClassifiers returns c and every classifier above it, aliases
// expanded, in breadth-first order.
func SupertypeClassifiers(c *Classifier) []*Classifier {
	seen := map[*Classifier]struct{}{c: {}}
	out := []*Classifier{c}
	for i := 0; i < len(out); i++ {
		for _, s := range out[i].Supertypes() {
			if s.classifier == nil {
				continue
			}
			if _, ok := seen[s.classifier]; ok {
				continue
			}
			seen[s.classifier] = struct{}{}
			out = append(out, s.classifier)
		}
	}
	return out
}
