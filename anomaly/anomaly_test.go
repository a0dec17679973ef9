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

package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sample(d time.Duration, rows int64) QueryMetrics {
	return QueryMetrics{Duration: d, RowsAffected: rows, At: time.Now()}
}

func TestNoFindingsWithShortHistory(t *testing.T) {
	d := NewDetector(10, 2.0)

	require.Nil(t, d.Detect(sample(time.Hour, 1e6)))

	d.Record(sample(10*time.Millisecond, 1))
	require.Nil(t, d.Detect(sample(time.Hour, 1e6)))
}

func TestDetectSlowQuery(t *testing.T) {
	d := NewDetector(10, 2.0)
	for i := 0; i < 5; i++ {
		d.Record(sample(10*time.Millisecond, 10))
	}

	findings := d.Detect(sample(100*time.Millisecond, 10))
	require.Len(t, findings, 1)
	require.Contains(t, findings[0], "execution time")

	require.Empty(t, d.Detect(sample(15*time.Millisecond, 10)))
}

func TestDetectRowSpike(t *testing.T) {
	d := NewDetector(10, 2.0)
	for i := 0; i < 5; i++ {
		d.Record(sample(10*time.Millisecond, 10))
	}

	findings := d.Detect(sample(10*time.Millisecond, 1000))
	require.Len(t, findings, 1)
	require.Contains(t, findings[0], "affected rows")
}

func TestDetectBothSignals(t *testing.T) {
	d := NewDetector(10, 2.0)
	for i := 0; i < 5; i++ {
		d.Record(sample(10*time.Millisecond, 10))
	}

	findings := d.Detect(sample(time.Second, 1000))
	require.Len(t, findings, 2)
}

func TestWindowEviction(t *testing.T) {
	d := NewDetector(3, 2.0)
	for i := 0; i < 10; i++ {
		d.Record(sample(10*time.Millisecond, 10))
	}
	require.Equal(t, 3, d.WindowLen())

	// old cheap samples fall out of the window, so a formerly anomalous
	// duration becomes the new normal
	for i := 0; i < 3; i++ {
		d.Record(sample(time.Second, 10))
	}
	require.Empty(t, d.Detect(sample(time.Second, 10)))
}
