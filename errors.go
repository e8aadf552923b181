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
	"errors"
	"fmt"
	"strings"

	"go.uber.org/inject/types"
)

// Sentinel errors matched by the typed resolution errors through
// errors.Is.
var (
	ErrNoCandidate            = errors.New("no candidate")
	ErrAmbiguous              = errors.New("ambiguous candidates")
	ErrDiverging              = errors.New("diverging resolution")
	ErrMalformedDeclaration   = errors.New("malformed declaration")
	ErrCallContextMismatch    = errors.New("call context mismatch")
	ErrRecursionLimitExceeded = types.ErrRecursionLimitExceeded
)

// RecursionLimitError reports a type comparison nested too deeply.
type RecursionLimitError = types.RecursionLimitError

// NestingLimitError reports requests nested deeper than the configured
// limit. Like a *RecursionLimitError it aborts the whole resolution and
// matches ErrRecursionLimitExceeded.
type NestingLimitError struct {
	Request Request
	Depth   int
}

func (e *NestingLimitError) Error() string {
	return fmt.Sprintf("recursion limit of %d exceeded resolving %v in %v", e.Depth, e.Request.Type, e.Request.Scope)
}

// Is makes errors.Is match ErrRecursionLimitExceeded.
func (e *NestingLimitError) Is(target error) bool { return target == ErrRecursionLimitExceeded }

// NoCandidateError means no visible provider matches a request.
type NoCandidateError struct {
	Request Request
}

func (e *NoCandidateError) Error() string {
	return fmt.Sprintf("no provider found for %v in %v", e.Request.Type, e.Request.Scope)
}

// Is makes errors.Is match ErrNoCandidate.
func (e *NoCandidateError) Is(target error) bool { return target == ErrNoCandidate }

// AmbiguityError means two or more providers tie for a request after
// ranking.
type AmbiguityError struct {
	Request Request

	// Candidates are the tied providers in declaration order.
	Candidates []*Provider
}

func (e *AmbiguityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ambiguous providers for %v in %v:", e.Request.Type, e.Request.Scope)
	for _, c := range e.Candidates {
		b.WriteString("\n\t")
		b.WriteString(c.Name)
		if c.Type.String() != e.Request.Type.String() {
			b.WriteString(" as ")
			b.WriteString(c.Type.String())
		}
	}
	return b.String()
}

// Is makes errors.Is match ErrAmbiguous.
func (e *AmbiguityError) Is(target error) bool { return target == ErrAmbiguous }

// DivergenceError means resolving a request needs the same request again,
// or an ever larger version of it, with no lazy boundary in between.
type DivergenceError struct {
	Request Request

	// Trace is the path from the first occurrence of the request to the
	// repeated one.
	Trace []Request
}

func (e *DivergenceError) Error() string {
	parts := make([]string, len(e.Trace))
	for i, r := range e.Trace {
		parts[i] = r.Type.String()
	}
	return fmt.Sprintf("diverging resolution of %v: %v", e.Request.Type, strings.Join(parts, " -> "))
}

// Is makes errors.Is match ErrDiverging.
func (e *DivergenceError) Is(target error) bool { return target == ErrDiverging }

// DependencyError means a candidate matched but one of its parameters could
// not be resolved.
type DependencyError struct {
	Candidate *Provider
	Param     Param
	Request   Request
	Err       error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("cannot use %v: parameter %v: %v", e.Candidate.Name, e.Param.Name, e.Err)
}

// Unwrap returns the failure of the parameter's request.
func (e *DependencyError) Unwrap() error { return e.Err }

// Chain lists the nested requests that led to the failure, innermost
// first.
func (e *DependencyError) Chain() []Request {
	var out []Request
	var err error = e
	for {
		var dep *DependencyError
		if !errors.As(err, &dep) {
			break
		}
		out = append(out, dep.Request)
		err = dep.Err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// CallContextMismatchError means a candidate needs a call context the
// request site cannot offer, such as a suspend provider requested from
// default code.
type CallContextMismatchError struct {
	Request   Request
	Candidate *Provider
}

func (e *CallContextMismatchError) Error() string {
	return fmt.Sprintf("cannot use %v from %v code: it requires a %v context",
		e.Candidate.Name, e.Request.CallContext, e.Candidate.CallContext)
}

// Is makes errors.Is match ErrCallContextMismatch.
func (e *CallContextMismatchError) Is(target error) bool { return target == ErrCallContextMismatch }

// MalformedDeclarationError reports a provider that can never be used.
type MalformedDeclarationError struct {
	Provider *Provider
	Reason   string
}

func (e *MalformedDeclarationError) Error() string {
	name := "<nil>"
	if e.Provider != nil {
		name = e.Provider.Name
	}
	return fmt.Sprintf("malformed declaration %v: %v", name, e.Reason)
}

// Is makes errors.Is match ErrMalformedDeclaration.
func (e *MalformedDeclarationError) Is(target error) bool {
	return target == ErrMalformedDeclaration
}

// Cause returns the failure at the bottom of a chain of DependencyErrors.
func Cause(err error) error {
	for {
		var dep *DependencyError
		if !errors.As(err, &dep) {
			return err
		}
		err = dep.Err
	}
}

// failureRank orders failures so the most informative one is reported:
// an ambiguity, then a candidate that matched but could not be used, then
// a divergence, then a missing provider.
func failureRank(err error) int {
	switch err.(type) {
	case *AmbiguityError:
		return 0
	case *DivergenceError:
		return 2
	case *NoCandidateError:
		return 3
	default:
		return 1
	}
}

// betterFailure picks the failure to keep among a and b. Nil counts as
// worst.
func betterFailure(a, b error) error {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case failureRank(b) < failureRank(a):
		return b
	default:
		return a
	}
}
