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

package main

import (
	"fmt"
	"io"

	"go.uber.org/inject"
	"go.uber.org/inject/manifest"
	"go.uber.org/zap"
)

// reporter prints the outcome of every request and call of a program.
type reporter struct {
	w    io.Writer
	log  *zap.Logger
	pool *inject.Pool

	failures int
	results  []*inject.Resolved
}

func (r *reporter) report(prog *manifest.Program, unused bool) error {
	if err := r.pool.Err(); err != nil {
		r.log.Error("rejected declarations", zap.Error(err))
		r.failures++
	}

	for _, req := range prog.Requests {
		fmt.Fprintf(r.w, "request %v\n", req)
		res, err := r.pool.Resolve(req)
		if err != nil {
			r.fail(req.String(), err)
			continue
		}
		r.results = append(r.results, res)
		fmt.Fprint(r.w, res)
	}

	for _, call := range prog.Calls {
		fmt.Fprintf(r.w, "call %v in %v\n", call.Callee.Name, call.Scope)
		res, err := r.pool.ResolveCall(call)
		if err != nil {
			r.fail(call.Callee.Name, err)
			continue
		}
		for _, a := range res.Args {
			if a.Value != nil {
				r.results = append(r.results, a.Value)
			}
		}
		fmt.Fprint(r.w, res)
	}

	if unused {
		for _, prov := range r.pool.Unused(r.results...) {
			fmt.Fprintf(r.w, "unused %v in %v\n", prov, prov.Scope)
		}
	}

	r.log.Info("done",
		zap.Int("requests", len(prog.Requests)),
		zap.Int("calls", len(prog.Calls)),
		zap.Int("failures", r.failures),
	)
	if r.failures > 0 {
		return errFailed
	}
	return nil
}

func (r *reporter) fail(what string, err error) {
	r.failures++
	fmt.Fprintf(r.w, "error: %v\n", err)
	r.log.Error("cannot resolve", zap.String("request", what), zap.Error(err))
}
