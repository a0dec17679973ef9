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
	"sync"
	"time"
)

const (
	DefaultWindowSize = 100
	DefaultThreshold  = 3.0
)

// QueryMetrics is one observed query execution.
type QueryMetrics struct {
	Duration     time.Duration `json:"duration"`
	RowsAffected int64         `json:"rows_affected"`
	At           time.Time     `json:"at"`
}

// Detector keeps a sliding window of query metrics and flags samples
// that exceed the windowed mean by the threshold multiplier. It needs
// at least two samples before it reports anything.
type Detector struct {
	mu         sync.Mutex
	windowSize int
	threshold  float64
	history    []QueryMetrics
}

func NewDetector(windowSize int, threshold float64) *Detector {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{
		windowSize: windowSize,
		threshold:  threshold,
		history:    make([]QueryMetrics, 0, windowSize),
	}
}

func (d *Detector) Record(m QueryMetrics) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.history) >= d.windowSize {
		d.history = d.history[1:]
	}
	d.history = append(d.history, m)
}

// Detect compares the sample against the current window and returns a
// finding per signal that crossed the threshold.
func (d *Detector) Detect(m QueryMetrics) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.history) < 2 {
		return nil
	}

	var findings []string

	var totalDuration time.Duration
	var totalRows float64
	for _, h := range d.history {
		totalDuration += h.Duration
		totalRows += float64(h.RowsAffected)
	}
	avgDuration := totalDuration / time.Duration(len(d.history))
	avgRows := totalRows / float64(len(d.history))

	if float64(m.Duration) > float64(avgDuration)*d.threshold {
		findings = append(findings, "unusual query execution time detected")
	}
	if float64(m.RowsAffected) > avgRows*d.threshold {
		findings = append(findings, "unusual number of affected rows detected")
	}

	return findings
}

func (d *Detector) WindowLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.history)
}
