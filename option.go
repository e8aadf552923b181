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

	"go.uber.org/inject/config"
	"go.uber.org/inject/injectevent"
	"go.uber.org/inject/internal/injectreflect"
	"go.uber.org/inject/types"
)

// An Option configures a Pool.
type Option interface {
	fmt.Stringer

	apply(*poolOptions)
}

type poolOptions struct {
	provides     []provide
	logger       injectevent.Logger
	maxDepth     int
	strictSpread bool
}

type provide struct {
	providers []*Provider
	caller    string
}

// Provide declares providers to the pool.
func Provide(providers ...*Provider) Option {
	return provideOption{
		Providers: providers,
		Caller:    injectreflect.Caller(),
	}
}

type provideOption struct {
	Providers []*Provider
	Caller    string
}

func (o provideOption) apply(opts *poolOptions) {
	opts.provides = append(opts.provides, provide{providers: o.Providers, caller: o.Caller})
}

func (o provideOption) String() string {
	items := make([]string, len(o.Providers))
	for i, p := range o.Providers {
		if p == nil {
			items[i] = "<nil>"
			continue
		}
		items[i] = p.Name
	}
	return fmt.Sprintf("inject.Provide(%s)", strings.Join(items, ", "))
}

// WithLogger sends the pool's events to l.
func WithLogger(l injectevent.Logger) Option {
	return loggerOption{l}
}

type loggerOption struct{ l injectevent.Logger }

func (o loggerOption) apply(opts *poolOptions) {
	if o.l != nil {
		opts.logger = o.l
	}
}

func (o loggerOption) String() string {
	return fmt.Sprintf("inject.WithLogger(%T)", o.l)
}

// MaxDepth bounds nested type comparisons and nested requests. Deeper
// resolutions fail with ErrRecursionLimitExceeded.
func MaxDepth(n int) Option {
	return maxDepthOption(n)
}

type maxDepthOption int

func (o maxDepthOption) apply(opts *poolOptions) {
	if o > 0 {
		opts.maxDepth = int(o)
	}
}

func (o maxDepthOption) String() string {
	return fmt.Sprintf("inject.MaxDepth(%d)", int(o))
}

// StrictSpreadNullability controls whether nullable providers may trigger
// spreading providers whose spread parameter is not nullable. It is on by
// default.
func StrictSpreadNullability(strict bool) Option {
	return strictSpreadOption(strict)
}

type strictSpreadOption bool

func (o strictSpreadOption) apply(opts *poolOptions) {
	opts.strictSpread = bool(o)
}

func (o strictSpreadOption) String() string {
	return fmt.Sprintf("inject.StrictSpreadNullability(%v)", bool(o))
}

// WithConfig applies loaded resolution settings.
func WithConfig(cfg config.Resolution) Option {
	return Options(MaxDepth(cfg.MaxDepth), StrictSpreadNullability(cfg.StrictSpreadNullability))
}

// Options groups options into one.
func Options(opts ...Option) Option {
	return optionGroup(opts)
}

type optionGroup []Option

func (og optionGroup) apply(opts *poolOptions) {
	for _, o := range og {
		o.apply(opts)
	}
}

func (og optionGroup) String() string {
	items := make([]string, len(og))
	for i, opt := range og {
		items[i] = fmt.Sprint(opt)
	}
	return fmt.Sprintf("inject.Options(%s)", strings.Join(items, ", "))
}

func defaultPoolOptions() poolOptions {
	return poolOptions{
		logger:       injectevent.NopLogger,
		maxDepth:     types.DefaultMaxDepth,
		strictSpread: true,
	}
}
