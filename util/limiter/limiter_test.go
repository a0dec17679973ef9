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
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountLimit(t *testing.T) {
	lim := NewLimiter(Config{Concurrency: 2})

	require.NoError(t, lim.Acquire())
	require.NoError(t, lim.Acquire())
	require.Equal(t, 2, lim.Status().Running)

	require.ErrorIs(t, lim.Acquire(), ErrLimitExceeded)

	lim.Release()
	require.NoError(t, lim.Acquire())
}

func TestUnlimited(t *testing.T) {
	lim := NewLimiter(Config{})

	for i := 0; i < 100; i++ {
		require.NoError(t, lim.Acquire())
	}
	require.Equal(t, 0, lim.Status().Running)

	// no rate configured, reader and writer pass through untouched
	r := strings.NewReader("payload")
	require.Equal(t, io.Reader(r), lim.Reader(context.Background(), r))
}

func TestRateLimitedCopy(t *testing.T) {
	lim := NewLimiter(Config{ReadMBPS: 1, WriteMBPS: 1})
	ctx := context.Background()

	src := bytes.Repeat([]byte("x"), 4096)
	var dst bytes.Buffer

	n, err := io.Copy(lim.Writer(ctx, &dst), lim.Reader(ctx, bytes.NewReader(src)))
	require.NoError(t, err)
	require.Equal(t, int64(len(src)), n)
	require.Equal(t, src, dst.Bytes())
}
