// Copyright (c) 2026 The Gnet Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bps

import (
	"github.com/panjf2000/bps/pkg/logging"
	"github.com/panjf2000/bps/pkg/netpoll"
)

// Option is a function that will set up option.
type Option func(opts *Options)

func loadOptions(base *Options, options ...Option) *Options {
	opts := new(Options)
	if base != nil {
		*opts = *base
		opts.Name = ""
	}
	for _, option := range options {
		option(opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetDefaultLogger()
	}
	if opts.PollEventsCap <= 0 {
		opts.PollEventsCap = netpoll.InitPollEventsCap
	}
	return opts
}

// Options are set when a thread initializes bps or creates a channel.
// Options passed to Initialize become the defaults of every channel the thread creates.
type Options struct {
	// Logger is the logger used by the channels, the default logger of
	// package logging is used when it's nil.
	Logger logging.Logger

	// PollEventsCap is the initial number of I/O events a channel collects in one round.
	PollEventsCap int

	// Name labels a channel in logs.
	Name string
}

// WithOptions sets up all options.
func WithOptions(options Options) Option {
	return func(opts *Options) {
		*opts = options
	}
}

// WithLogger sets up a customized logger.
func WithLogger(logger logging.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithPollEventsCap sets up the initial capacity of the I/O event list.
func WithPollEventsCap(n int) Option {
	return func(opts *Options) {
		opts.PollEventsCap = n
	}
}

// WithName labels the channel in logs.
func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}
