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

// LeapArray is the ring of buckets covering a fixed window, indexed by
// wall-clock time: idx(t) = (t / windowLength) mod sampleCount. A window is
// deprecated once now has moved more than a full interval past its start.
type LeapArray struct {
	r *ring
}

// NewLeapArray builds a LeapArray with sampleCount buckets covering
// intervalMillis milliseconds total (intervalMillis must be an exact
// multiple of sampleCount).
func NewLeapArray(sampleCount int, intervalMillis int64) *LeapArray {
	la := &LeapArray{r: newRing(sampleCount, intervalMillis)}
	la.r.startFor = func(now int64) int64 { return now - now%la.r.windowLengthMillis }
	la.r.deprecated = func(now, start int64) bool { return now-start > la.r.intervalMillis }
	return la
}

func (la *LeapArray) SampleCount() int        { return int(la.r.sampleCount) }
func (la *LeapArray) IntervalMillis() int64   { return la.r.intervalMillis }
func (la *LeapArray) WindowLengthMillis() int64 { return la.r.windowLengthMillis }

// CurrentWindow returns the unique bucket whose interval contains now.
func (la *LeapArray) CurrentWindow(now int64) *Bucket {
	return la.r.currentWindow(now).bucket
}

// CurrentWindowStart returns the start time of now's current window,
// without the side effect of installing/resetting a bucket for it.
func (la *LeapArray) CurrentWindowStart(now int64) int64 {
	return la.r.startFor(now)
}

// Values returns every bucket that is not deprecated as of now.
func (la *LeapArray) Values(now int64) []*Bucket {
	ws := la.r.values(now)
	out := make([]*Bucket, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.bucket)
	}
	return out
}

// ValuesWithStart is like Values but also returns each bucket's window
// start, used by Metric.Details for export.
func (la *LeapArray) ValuesWithStart(now int64) []BucketDetail {
	ws := la.r.values(now)
	out := make([]BucketDetail, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.bucket.snapshot(w.startMillis))
	}
	return out
}

// PreviousWindow returns the bucket whose interval is exactly the one
// before now's current window, or nil if that slot is absent/stale.
func (la *LeapArray) PreviousWindow(now int64) *Bucket {
	w := la.r.previousWindow(now)
	if w == nil {
		return nil
	}
	return w.bucket
}
