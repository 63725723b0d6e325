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

package flow

import (
	"math"

	"go.uber.org/atomic"

	"mosn.io/sentinel/pkg/sentinel/base"
)

// tokenBucket is the cold-start token state shared by controllers (c) and
// (d): both size the same warning/max token region off count/warmUpSeconds
// /coldFactor and refill it with the same syncTokens rule;
// they differ only in how the resulting stored-token level gates
// admission (a QPS ceiling for (c), a per-request cost for (d)).
type tokenBucket struct {
	count         float64
	coldFactor    float64
	warningTokens float64
	maxTokens     float64
	slope         float64

	storedTokens   atomic.Float64
	lastFillMillis atomic.Int64
}

func newTokenBucket(count float64, warmUpSeconds int64, coldFactor float64) *tokenBucket {
	if coldFactor < 2 {
		coldFactor = 2
	}
	warningTokens := math.Floor(float64(warmUpSeconds) * count / (coldFactor - 1))
	maxTokens := warningTokens + math.Floor(2*float64(warmUpSeconds)*count/(1+coldFactor))
	slope := (coldFactor - 1) / (count * (maxTokens - warningTokens))
	tb := &tokenBucket{
		count:         count,
		coldFactor:    coldFactor,
		warningTokens: warningTokens,
		maxTokens:     maxTokens,
		slope:         slope,
	}
	return tb
}

// syncTokens grants (or withholds) refill for the current second and then
// debits the tokens consumed by prevQps, at most once per second.
func (t *tokenBucket) syncTokens(prevQps float64) {
	now := base.NowMillis()
	nowSec := now - now%1000
	last := t.lastFillMillis.Load()
	if nowSec <= last {
		return
	}
	oldStored := t.storedTokens.Load()
	newStored := t.cooldown(nowSec, last, oldStored, prevQps)
	newStored -= prevQps
	if newStored < 0 {
		newStored = 0
	}
	if t.storedTokens.CAS(oldStored, newStored) {
		t.lastFillMillis.Store(nowSec)
	}
}

func (t *tokenBucket) cooldown(nowSec, last int64, stored, prevQps float64) float64 {
	var newStored float64
	switch {
	case stored < t.warningTokens:
		newStored = stored + float64(nowSec-last)*t.count/1000
	case stored > t.warningTokens && prevQps < t.count/t.coldFactor:
		newStored = stored + float64(nowSec-last)*t.count/1000
	default:
		newStored = stored
	}
	if newStored > t.maxTokens {
		newStored = t.maxTokens
	}
	return newStored
}

// warmingQps is the admissible-rate ceiling implied by the current stored
// token level: count once warmed up (stored below warningTokens), falling
// toward count/coldFactor as stored rises from warningTokens to maxTokens.
func (t *tokenBucket) warmingQps() float64 {
	stored := t.storedTokens.Load()
	if stored < t.warningTokens {
		return t.count
	}
	above := stored - t.warningTokens
	return nextAfter(1 / (above*t.slope + 1/t.count))
}

func nextAfter(x float64) float64 {
	return math.Nextafter(x, math.Inf(1))
}
