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

// FutureLeapArray has the same geometry as LeapArray, but CurrentWindow(t)
// points at the window *after* t's current one, and deprecation is the
// mirror rule: a future slot is stale once it has fully slipped into the
// past (its own interval has elapsed), not once an entire extra interval
// has gone by.
type FutureLeapArray struct {
	r *ring
}

func newFutureLeapArray(sampleCount int, intervalMillis int64) *FutureLeapArray {
	fa := &FutureLeapArray{r: newRing(sampleCount, intervalMillis)}
	fa.r.startFor = func(now int64) int64 {
		return now - now%fa.r.windowLengthMillis + fa.r.windowLengthMillis
	}
	fa.r.deprecated = func(now, start int64) bool {
		return now >= start+fa.r.windowLengthMillis
	}
	return fa
}

func (fa *FutureLeapArray) WindowLengthMillis() int64 { return fa.r.windowLengthMillis }

// CurrentWindow returns the bucket for the window immediately following
// now's current window, creating/recycling it as needed.
func (fa *FutureLeapArray) CurrentWindow(now int64) *Bucket {
	return fa.r.currentWindow(now).bucket
}

// bucketAt returns the window struct (not just its bucket) for now, used
// internally by OccupiableLeapArray.addWaiting/currentWaiting so callers
// can read the start time alongside the counters.
func (fa *FutureLeapArray) bucketAt(now int64) *window {
	return fa.r.currentWindow(now)
}

// values returns every live future window as of now, in slot-index order
// (slot 0 first), not sorted by start time.
func (fa *FutureLeapArray) values(now int64) []*window {
	return fa.r.values(now)
}
