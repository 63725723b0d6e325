/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package stat

// Metric is the aggregation façade StatNode holds two of (second-grained
// and minute-grained): it turns the raw leap array into the handful of
// operations callers actually want -- sums, averages, per-bucket detail.
type Metric struct {
	occupiable bool
	plain      *LeapArray
	occ        *OccupiableLeapArray
}

// NewMetric builds a Metric over a plain LeapArray.
func NewMetric(sampleCount int, intervalMillis int64) *Metric {
	return &Metric{plain: NewLeapArray(sampleCount, intervalMillis)}
}

// NewOccupiableMetric builds a Metric over an OccupiableLeapArray, used by
// the second-grained StatNode metric so priority admission can borrow from
// future buckets.
func NewOccupiableMetric(sampleCount int, intervalMillis int64) *Metric {
	occ := NewOccupiableLeapArray(sampleCount, intervalMillis)
	return &Metric{occupiable: true, plain: occ.LeapArray, occ: occ}
}

func (m *Metric) leapArray() *LeapArray { return m.plain }

func (m *Metric) AddPass(now int64, n int64)         { m.leapArray().CurrentWindow(now).addPass(n) }
func (m *Metric) AddBlock(now int64, n int64)        { m.leapArray().CurrentWindow(now).addBlock(n) }
func (m *Metric) AddException(now int64, n int64)    { m.leapArray().CurrentWindow(now).addException(n) }
func (m *Metric) AddSuccess(now int64, n int64)       { m.leapArray().CurrentWindow(now).addSuccess(n) }
func (m *Metric) AddRt(now int64, rt int64)           { m.leapArray().CurrentWindow(now).addRt(rt) }
func (m *Metric) AddOccupiedPass(now int64, n int64)  { m.leapArray().CurrentWindow(now).addOccupiedPass(n) }

// AddWaiting books n borrowed passes into the future ring at futureNow.
// Valid only on an occupiable Metric; a no-op otherwise.
func (m *Metric) AddWaiting(futureNow int64, n int64) {
	if m.occupiable {
		m.occ.AddWaiting(futureNow, n)
	}
}

// Waiting returns the total currently-borrowed future pass count. Zero on
// a non-occupiable Metric.
func (m *Metric) Waiting(now int64) int64 {
	if !m.occupiable {
		return 0
	}
	return m.occ.CurrentWaiting(now)
}

func (m *Metric) FutureWindows(now int64) []FutureWindow {
	if !m.occupiable {
		return nil
	}
	return m.occ.FutureWindows(now)
}

func (m *Metric) FutureWindowLengthMillis() int64 {
	if !m.occupiable {
		return m.leapArray().WindowLengthMillis()
	}
	return m.occ.FutureWindowLengthMillis()
}

func (m *Metric) Pass(now int64) int64 {
	var sum int64
	for _, b := range m.leapArray().Values(now) {
		sum += b.Pass()
	}
	return sum
}

func (m *Metric) Block(now int64) int64 {
	var sum int64
	for _, b := range m.leapArray().Values(now) {
		sum += b.Block()
	}
	return sum
}

func (m *Metric) Exception(now int64) int64 {
	var sum int64
	for _, b := range m.leapArray().Values(now) {
		sum += b.Exception()
	}
	return sum
}

func (m *Metric) Success(now int64) int64 {
	var sum int64
	for _, b := range m.leapArray().Values(now) {
		sum += b.Success()
	}
	return sum
}

func (m *Metric) RtSum(now int64) int64 {
	var sum int64
	for _, b := range m.leapArray().Values(now) {
		sum += b.RtSum()
	}
	return sum
}

func (m *Metric) OccupiedPass(now int64) int64 {
	var sum int64
	for _, b := range m.leapArray().Values(now) {
		sum += b.OccupiedPass()
	}
	return sum
}

// MinRt is the minimum response time observed across every live bucket;
// zero if nothing has been recorded yet.
func (m *Metric) MinRt(now int64) int64 {
	var min int64 = -1
	for _, b := range m.leapArray().Values(now) {
		rt := b.MinRt()
		if rt == 0 {
			continue
		}
		if min < 0 || rt < min {
			min = rt
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

// PreviousWindowPass returns the pass count of the bucket whose interval
// immediately precedes now's current window.
func (m *Metric) PreviousWindowPass(now int64) int64 {
	b := m.leapArray().PreviousWindow(now)
	if b == nil {
		return 0
	}
	return b.Pass()
}

// GetWindowPass returns the pass count of whichever bucket governs t
// (creating it if necessary, matching currentWindow semantics at t).
func (m *Metric) GetWindowPass(t int64) int64 {
	return m.leapArray().CurrentWindow(t).Pass()
}

// Details lists every valid window as of now, exactly like Values but with
// the per-bucket breakdown instead of just the live *Bucket pointers.
func (m *Metric) Details(now int64) []BucketDetail {
	return m.leapArray().ValuesWithStart(now)
}

// SampleCount/IntervalMillis/WindowLengthMillis expose the ring geometry.
func (m *Metric) SampleCount() int          { return m.leapArray().SampleCount() }
func (m *Metric) IntervalMillis() int64     { return m.leapArray().IntervalMillis() }
func (m *Metric) WindowLengthMillis() int64 { return m.leapArray().WindowLengthMillis() }
