// Copyright 2023 The OmniDB Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package limiter

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"golang.org/x/time/rate"
)

var ErrLimitExceeded = errors.New("limit exceeded")

type (
	// Limiter bounds the number of concurrent backup/restore jobs and
	// throttles the bytes they move.
	Limiter interface {
		Acquire() error
		Release()
		Reader(ctx context.Context, r io.Reader) io.Reader
		Writer(ctx context.Context, w io.Writer) io.Writer
		Status() Status
	}
	Config struct {
		Concurrency int `json:"concurrency"`
		ReadMBPS    int `json:"read_mbps"`
		WriteMBPS   int `json:"write_mbps"`
	}
	Status struct {
		Config  Config `json:"config"`
		Running int    `json:"running"`
	}

	limiter struct {
		config     Config
		countLimit *countLimit
		rateReader *rate.Limiter
		rateWriter *rate.Limiter
	}
	// reader limited reader
	reader struct {
		ctx        context.Context
		rate       *rate.Limiter
		underlying io.Reader
	}
	// writer limited writer
	writer struct {
		ctx        context.Context
		rate       *rate.Limiter
		underlying io.Writer
	}
)

func NewLimiter(cfg Config) Limiter {
	mb := 1 << 20
	lim := &limiter{config: cfg}
	if cfg.Concurrency > 0 {
		lim.countLimit = &countLimit{limit: uint32(cfg.Concurrency)}
	}
	if cfg.ReadMBPS > 0 {
		lim.rateReader = rate.NewLimiter(rate.Limit(cfg.ReadMBPS*mb), cfg.ReadMBPS*mb)
	}
	if cfg.WriteMBPS > 0 {
		lim.rateWriter = rate.NewLimiter(rate.Limit(cfg.WriteMBPS*mb), cfg.WriteMBPS*mb)
	}
	return lim
}

func (lim *limiter) Acquire() error {
	if lim.countLimit != nil {
		return lim.countLimit.Acquire()
	}
	return nil
}

func (lim *limiter) Release() {
	if lim.countLimit != nil {
		lim.countLimit.Release()
	}
}

func (lim *limiter) Reader(ctx context.Context, r io.Reader) io.Reader {
	if lim.rateReader != nil {
		return &reader{ctx: ctx, rate: lim.rateReader, underlying: r}
	}
	return r
}

func (lim *limiter) Writer(ctx context.Context, w io.Writer) io.Writer {
	if lim.rateWriter != nil {
		return &writer{ctx: ctx, rate: lim.rateWriter, underlying: w}
	}
	return w
}

func (lim *limiter) Status() Status {
	st := Status{Config: lim.config}
	if lim.countLimit != nil {
		st.Running = lim.countLimit.Running()
	}
	return st
}

func (r *reader) Read(p []byte) (n int, err error) {
	n, err = r.underlying.Read(p)
	if n <= 0 {
		return
	}
	if werr := r.rate.WaitN(r.ctx, n); werr != nil {
		return n, werr
	}
	return
}

func (w *writer) Write(p []byte) (n int, err error) {
	if err = w.rate.WaitN(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.underlying.Write(p)
}

const minusOne = ^uint32(0)

type countLimit struct {
	limit   uint32
	current uint32
}

func (l *countLimit) Running() int {
	return int(atomic.LoadUint32(&l.current))
}

func (l *countLimit) Acquire() error {
	if atomic.AddUint32(&l.current, 1) > atomic.LoadUint32(&l.limit) {
		atomic.AddUint32(&l.current, minusOne)
		return ErrLimitExceeded
	}
	return nil
}

func (l *countLimit) Release() {
	atomic.AddUint32(&l.current, minusOne)
}
