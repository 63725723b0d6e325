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

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// window is one bucket's time slice: a fixed start time paired with its
// counters. Once published, startMillis never mutates in place -- a reset
// stores a brand new window into the slot under the update lock, so a
// concurrent reader either observes the entirely-old or entirely-new
// window, never a mix.
type window struct {
	startMillis int64
	bucket      *Bucket
}

// ring is the shared plumbing behind LeapArray and FutureLeapArray: a fixed
// array of window slots addressed by time, with lazy CAS install and a
// single non-blocking update lock guarding resets. LeapArray and
// FutureLeapArray differ only in how they map "now" to a window start and
// in when they consider a window deprecated; everything else -- slot
// addressing, install-on-first-use, contended-reset retry -- is identical,
// so it lives here once.
type ring struct {
	sampleCount        int64
	intervalMillis     int64
	windowLengthMillis int64
	slots              []atomic.Value
	updateLock         sync.Mutex

	// startFor returns the start time of the window that governs nowMillis.
	startFor func(nowMillis int64) int64
	// deprecated reports whether the window starting at startMillis no
	// longer covers live traffic as of nowMillis.
	deprecated func(nowMillis, startMillis int64) bool
	// onReset is invoked with the outgoing and incoming window whenever a
	// slot is first installed (outgoing is nil) or a stale slot is
	// recycled; OccupiableLeapArray uses it to migrate
	// borrowed future pass counts into the fresh bucket.
	onReset func(old, fresh *window)
}

func newRing(sampleCount int, intervalMillis int64) *ring {
	if sampleCount <= 0 || intervalMillis <= 0 || intervalMillis%int64(sampleCount) != 0 {
		panic(fmt.Sprintf("stat: invalid leap array geometry: sampleCount=%d intervalMillis=%d", sampleCount, intervalMillis))
	}
	return &ring{
		sampleCount:        int64(sampleCount),
		intervalMillis:     intervalMillis,
		windowLengthMillis: intervalMillis / int64(sampleCount),
		slots:              make([]atomic.Value, sampleCount),
	}
}

func (r *ring) idxFor(windowStart int64) int64 {
	return (windowStart / r.windowLengthMillis) % r.sampleCount
}

// currentWindow lazily rolls the ring forward: CAS-install an
// empty bucket on first touch, return in place if the slot already covers
// now, recycle under the update lock if the slot is stale, and never
// corrupt the ring on a clock regression.
func (r *ring) currentWindow(nowMillis int64) *window {
	windowStart := r.startFor(nowMillis)
	idx := r.idxFor(windowStart)
	slot := &r.slots[idx]

	for {
		v := slot.Load()
		if v == nil {
			fresh := &window{startMillis: windowStart, bucket: newBucket()}
			if r.onReset != nil {
				r.onReset(nil, fresh)
			}
			if slot.CompareAndSwap(nil, fresh) {
				return fresh
			}
			continue
		}
		cur := v.(*window)
		switch {
		case cur.startMillis == windowStart:
			return cur
		case cur.startMillis < windowStart:
			if !r.updateLock.TryLock() {
				runtime.Gosched()
				continue
			}
			// re-check under the lock: another goroutine may have reset
			// this slot while we were spinning for the lock.
			v = slot.Load()
			cur = v.(*window)
			if cur.startMillis >= windowStart {
				r.updateLock.Unlock()
				if cur.startMillis == windowStart {
					return cur
				}
				continue
			}
			fresh := &window{startMillis: windowStart, bucket: newBucket()}
			if r.onReset != nil {
				r.onReset(cur, fresh)
			}
			slot.Store(fresh)
			r.updateLock.Unlock()
			return fresh
		default:
			// clock regression: hand back a transient window, never
			// installed into the ring, so we don't corrupt a newer slot.
			return &window{startMillis: windowStart, bucket: newBucket()}
		}
	}
}

// values returns every non-deprecated window as of nowMillis.
func (r *ring) values(nowMillis int64) []*window {
	out := make([]*window, 0, r.sampleCount)
	for i := range r.slots {
		v := r.slots[i].Load()
		if v == nil {
			continue
		}
		w := v.(*window)
		if r.deprecated(nowMillis, w.startMillis) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// previousWindow returns the window whose interval immediately precedes
// now's current window, or nil if that slot isn't populated / was
// recycled for a different cycle of the ring.
func (r *ring) previousWindow(nowMillis int64) *window {
	curStart := r.startFor(nowMillis)
	prevStart := curStart - r.windowLengthMillis
	if prevStart < 0 {
		return nil
	}
	idx := r.idxFor(prevStart)
	v := r.slots[idx].Load()
	if v == nil {
		return nil
	}
	w := v.(*window)
	if w.startMillis != prevStart {
		return nil
	}
	return w
}
