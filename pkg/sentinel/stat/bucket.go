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

// Package stat implements the ring-buffered sliding-window metric engine
// (the "leap array") that backs every StatNode: one bucket per time slice,
// recycled as the window slides forward, with a variant that supports
// borrowing pass counts from future buckets under priority admission.
package stat

import "go.uber.org/atomic"

// Bucket is a single time slice's worth of counters. Every field supports
// lock-free concurrent increment and wait-free read, which is exactly what
// go.uber.org/atomic's typed counters give us without hand-rolled striping.
type Bucket struct {
	pass         atomic.Int64
	block        atomic.Int64
	exception    atomic.Int64
	success      atomic.Int64
	rtSum        atomic.Int64
	occupiedPass atomic.Int64
	minRt        atomic.Int64
}

const initialMinRt = int64(1) << 32

func newBucket() *Bucket {
	b := &Bucket{}
	b.minRt.Store(initialMinRt)
	return b
}

func (b *Bucket) addPass(n int64)         { b.pass.Add(n) }
func (b *Bucket) addBlock(n int64)        { b.block.Add(n) }
func (b *Bucket) addException(n int64)    { b.exception.Add(n) }
func (b *Bucket) addSuccess(n int64)      { b.success.Add(n) }
func (b *Bucket) addOccupiedPass(n int64) { b.occupiedPass.Add(n) }

func (b *Bucket) addRt(rt int64) {
	b.rtSum.Add(rt)
	for {
		cur := b.minRt.Load()
		if rt >= cur {
			return
		}
		if b.minRt.CAS(cur, rt) {
			return
		}
	}
}

func (b *Bucket) Pass() int64         { return b.pass.Load() }
func (b *Bucket) Block() int64        { return b.block.Load() }
func (b *Bucket) Exception() int64    { return b.exception.Load() }
func (b *Bucket) Success() int64      { return b.success.Load() }
func (b *Bucket) RtSum() int64        { return b.rtSum.Load() }
func (b *Bucket) OccupiedPass() int64 { return b.occupiedPass.Load() }

func (b *Bucket) MinRt() int64 {
	m := b.minRt.Load()
	if m == initialMinRt {
		return 0
	}
	return m
}

// BucketDetail is a point-in-time, non-atomic snapshot used for export
// (Metric.Details) and tests.
type BucketDetail struct {
	StartMillis  int64
	Pass         int64
	Block        int64
	Exception    int64
	Success      int64
	RtSum        int64
	OccupiedPass int64
	MinRt        int64
}

func (b *Bucket) snapshot(startMillis int64) BucketDetail {
	return BucketDetail{
		StartMillis:  startMillis,
		Pass:         b.Pass(),
		Block:        b.Block(),
		Exception:    b.Exception(),
		Success:      b.Success(),
		RtSum:        b.RtSum(),
		OccupiedPass: b.OccupiedPass(),
		MinRt:        b.MinRt(),
	}
}
