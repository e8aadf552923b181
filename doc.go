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

// Package inject resolves injectable values at compile time.
//
// A front end describes a program as a types.Universe of classifiers, a
// tree of Scopes and a set of Providers: declarations that can produce a
// value of some type, possibly from other injected values. NewPool takes
// those declarations, rejects the malformed ones, and expands spreading
// providers. The resulting Pool answers Requests with a tree of Resolved
// values, or with an error explaining why no single provider fits.
//
// Resolution
//
// For a request of type T made in scope S, the pool considers every
// provider visible from S whose type, once its own type parameters are
// inferred, is a subtype of T. The parameters of each candidate are
// resolved in turn, from the candidate's declaring scope. The best
// candidate is picked by these rules, in order:
//
// • a candidate whose parameters all resolved beats one that fell back on
// default values;
//
// • a candidate declared closer to the request wins;
//
// • a member of a subclass beats the same member of its superclass;
//
// • a candidate with a more specific declared type wins;
//
// • a non-null candidate beats a nullable one.
//
// Candidates that still tie are reported as an *AmbiguityError.
//
// Function types with no provider are satisfied by a lambda whose result
// is resolved lazily, which is how cycles are broken. Lists and
// collections with no provider collect every matching provider. TypeKey<T>
// and SourceKey are constants identifying a type and the request site.
//
// Providers may require a CallContext. Code in one context can only use
// providers needing the same one or the default context.
//
// Failures
//
// Resolution errors are values: *NoCandidateError, *AmbiguityError,
// *DivergenceError, *CallContextMismatchError and *DependencyError, which
// wraps the failure of one parameter. Requests nested deeper than MaxDepth
// fail with an error matching ErrRecursionLimitExceeded. Use errors.Is with the Err sentinels or Cause to get at the
// root failure. Malformed declarations are collected by Pool.Err and never
// affect unrelated requests.
//
// Spreading
//
// A provider with a spread type parameter T bounded by a tagged type is
// instantiated once for every provider whose type carries that tag. The
// instances are ordinary providers and can trigger further spreading.
package inject // import "go.uber.org/inject"
