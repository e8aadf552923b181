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
	"strconv"
	"sync"
)

// DefaultMaxFunctionArity is the number of function-type classifiers
// (Function0 through FunctionN) a Universe declares unless configured
// otherwise.
const DefaultMaxFunctionArity = 8

var (
	// ErrDuplicateClassifier is returned when a classifier key is declared
	// twice in the same Universe.
	ErrDuplicateClassifier = errors.New("duplicate classifier")

	// ErrInvalidClassifier is returned for a classifier specification that
	// cannot be declared.
	ErrInvalidClassifier = errors.New("invalid classifier")
)

// UniverseOption configures a Universe.
type UniverseOption func(*universeOptions)

type universeOptions struct {
	maxFunctionArity int
}

// MaxFunctionArity sets the highest arity of the builtin function types.
func MaxFunctionArity(n int) UniverseOption {
	return func(o *universeOptions) {
		if n >= 0 {
			o.maxFunctionArity = n
		}
	}
}

// Universe owns every classifier of a program. Classifiers refer back to
// their Universe, and supertypes are computed lazily and memoized in a
// table indexed by classifier ID.
//
// Declaring classifiers is not safe for concurrent use. Once declaration is
// done, a Universe may be read from multiple goroutines.
type Universe struct {
	mu          sync.RWMutex
	classifiers []*Classifier
	supers      []*supertypeEntry
	byKey       map[string]*Classifier

	any        *Classifier
	nothing    *Classifier
	collection *Classifier
	list       *Classifier
	functions  []*Classifier
	typeKey    *Classifier
	sourceKey  *Classifier
}

// NewUniverse builds a Universe holding the builtin classifiers.
func NewUniverse(opts ...UniverseOption) *Universe {
	o := universeOptions{maxFunctionArity: DefaultMaxFunctionArity}
	for _, opt := range opts {
		opt(&o)
	}

	u := &Universe{byKey: make(map[string]*Classifier)}
	u.any = u.mustDeclare(ClassifierSpec{FqName: "Any", Kind: Class})
	u.nothing = u.mustDeclare(ClassifierSpec{FqName: "Nothing", Kind: Class})

	ce := u.mustDeclare(ClassifierSpec{FqName: "Collection.E", Kind: TypeParameter, Variance: Out})
	u.collection = u.mustDeclare(ClassifierSpec{
		FqName:         "Collection",
		Kind:           Interface,
		TypeParameters: []*Classifier{ce},
	})
	le := u.mustDeclare(ClassifierSpec{FqName: "List.E", Kind: TypeParameter, Variance: Out})
	u.list = u.mustDeclare(ClassifierSpec{
		FqName:         "List",
		Kind:           Interface,
		TypeParameters: []*Classifier{le},
		Supertypes: func() []Type {
			return []Type{{classifier: u.collection, args: []Type{{classifier: le}}}}
		},
	})

	tk := u.mustDeclare(ClassifierSpec{FqName: "TypeKey.T", Kind: TypeParameter})
	u.typeKey = u.mustDeclare(ClassifierSpec{
		FqName:         "TypeKey",
		Kind:           Class,
		TypeParameters: []*Classifier{tk},
	})
	u.sourceKey = u.mustDeclare(ClassifierSpec{FqName: "SourceKey", Kind: Class})

	for n := 0; n <= o.maxFunctionArity; n++ {
		name := "Function" + strconv.Itoa(n)
		params := make([]*Classifier, 0, n+1)
		for i := 1; i <= n; i++ {
			params = append(params, u.mustDeclare(ClassifierSpec{
				FqName:   name + ".P" + strconv.Itoa(i),
				Kind:     TypeParameter,
				Variance: In,
			}))
		}
		params = append(params, u.mustDeclare(ClassifierSpec{
			FqName:   name + ".R",
			Kind:     TypeParameter,
			Variance: Out,
		}))
		u.functions = append(u.functions, u.mustDeclare(ClassifierSpec{
			FqName:         name,
			Kind:           Interface,
			TypeParameters: params,
		}))
	}
	return u
}

func (u *Universe) mustDeclare(spec ClassifierSpec) *Classifier {
	c, err := u.Declare(spec)
	if err != nil {
		panic(err)
	}
	return c
}

// Declare adds a classifier to the Universe.
func (u *Universe) Declare(spec ClassifierSpec) (*Classifier, error) {
	if spec.FqName == "" && spec.Key == "" {
		return nil, fmt.Errorf("%w: classifier has no name", ErrInvalidClassifier)
	}
	if spec.Key == "" {
		spec.Key = spec.FqName
	}
	if spec.FqName == "" {
		spec.FqName = spec.Key
	}
	if spec.Kind == 0 {
		spec.Kind = Class
	}
	if spec.Kind != TypeParameter {
		if spec.Variance != Invariant {
			return nil, fmt.Errorf("%w: %v: only type parameters have variance", ErrInvalidClassifier, spec.FqName)
		}
		if spec.Spread {
			return nil, fmt.Errorf("%w: %v: only type parameters can be spread", ErrInvalidClassifier, spec.FqName)
		}
		if spec.ClassID == "" {
			spec.ClassID = spec.Key
		}
	} else {
		spec.ClassID = ""
	}
	for _, p := range spec.TypeParameters {
		if p == nil || !p.IsTypeParameter() {
			return nil, fmt.Errorf("%w: %v: type parameter %v is not a type parameter", ErrInvalidClassifier, spec.FqName, p)
		}
		if p.universe != u {
			return nil, fmt.Errorf("%w: %v: type parameter %v belongs to another universe", ErrInvalidClassifier, spec.FqName, p)
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.byKey[spec.Key]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateClassifier, spec.Key)
	}
	c := &Classifier{
		id:       len(u.classifiers),
		universe: u,
		key:      spec.Key,
		fqName:   spec.FqName,
		classID:  spec.ClassID,
		kind:     spec.Kind,
		params:   append([]*Classifier(nil), spec.TypeParameters...),
		variance: spec.Variance,
		spread:   spec.Spread,
	}
	u.classifiers = append(u.classifiers, c)
	u.supers = append(u.supers, &supertypeEntry{compute: u.defaultSupertypes(c, spec.Supertypes)})
	u.byKey[c.key] = c
	return c, nil
}

// defaultSupertypes wraps the declared supertypes so that every class-like
// classifier ends up below Any and every unbounded type parameter below
// Any?.
func (u *Universe) defaultSupertypes(c *Classifier, declared func() []Type) func() []Type {
	return func() []Type {
		var ts []Type
		if declared != nil {
			ts = declared()
		}
		if len(ts) > 0 || c == u.any || c == u.nothing {
			return ts
		}
		switch c.kind {
		case Class, Interface, Object:
			return []Type{{classifier: u.any}}
		case TypeParameter:
			return []Type{{classifier: u.any, nullable: true}}
		}
		return nil
	}
}

func (u *Universe) supertypes(c *Classifier) []Type {
	u.mu.RLock()
	e := u.supers[c.id]
	u.mu.RUnlock()
	return e.get()
}

// Lookup finds a classifier by key.
func (u *Universe) Lookup(key string) (*Classifier, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	c, ok := u.byKey[key]
	return c, ok
}

// Classifiers returns every declared classifier in declaration order.
func (u *Universe) Classifiers() []*Classifier {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]*Classifier(nil), u.classifiers...)
}

// Any is the top classifier.
func (u *Universe) Any() *Classifier { return u.any }

// Nothing is the bottom classifier.
func (u *Universe) Nothing() *Classifier { return u.nothing }

// Collection is the builtin Collection<out E>.
func (u *Universe) Collection() *Classifier { return u.collection }

// List is the builtin List<out E>, a subtype of Collection<E>.
func (u *Universe) List() *Classifier { return u.list }

// TypeKey is the builtin TypeKey<T>, a value identifying the type T.
func (u *Universe) TypeKey() *Classifier { return u.typeKey }

// SourceKey is the builtin SourceKey, a value identifying a request site.
func (u *Universe) SourceKey() *Classifier { return u.sourceKey }

// Function returns the builtin function type of the given arity, or nil if
// the Universe does not declare one that large.
func (u *Universe) Function(arity int) *Classifier {
	if arity < 0 || arity >= len(u.functions) {
		return nil
	}
	return u.functions[arity]
}

// FunctionArity reports the arity of c if it is a builtin function type.
func (u *Universe) FunctionArity(c *Classifier) (int, bool) {
	for i, f := range u.functions {
		if f == c {
			return i, true
		}
	}
	return 0, false
}

// AnyType returns Any, nullable or not.
func (u *Universe) AnyType(nullable bool) Type {
	return Type{classifier: u.any, nullable: nullable}
}

// NothingType returns Nothing, nullable or not.
func (u *Universe) NothingType(nullable bool) Type {
	return Type{classifier: u.nothing, nullable: nullable}
}

// FunctionType builds (params...) -> result. It returns an error if the
// Universe has no function type of that arity.
func (u *Universe) FunctionType(result Type, params ...Type) (Type, error) {
	f := u.Function(len(params))
	if f == nil {
		return Type{}, fmt.Errorf("%w: no function type of arity %d", ErrInvalidType, len(params))
	}
	args := make([]Type, 0, len(params)+1)
	args = append(args, params...)
	args = append(args, result)
	return New(f, args...)
}

// TypeKeyType builds TypeKey<t>.
func (u *Universe) TypeKeyType(t Type) Type {
	return Type{classifier: u.typeKey, args: []Type{t.withoutDecoration()}}
}

// ListType builds List<elem>.
func (u *Universe) ListType(elem Type) Type {
	return Type{classifier: u.list, args: []Type{elem}}
}
