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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// fakeClock is a settable base.TimeSource for deterministic window-boundary
// tests.
type fakeClock struct{ ms int64 }

func (c *fakeClock) NowMillis() int64 { return c.ms }

func withFakeClock(startMs int64) *fakeClock {
	fc := &fakeClock{ms: startMs}
	base.SetClock(fc)
	return fc
}

func TestRejectControllerQPSThreshold(t *testing.T) {
	fc := withFakeClock(0)
	defer base.SetClock(base.SystemClock)

	rule := &Rule{Resource: base.NewResourceKey("res"), Grade: GradeQPS, Count: 2, ControlBehavior: ControlReject}
	c := newRejectController(rule)
	stat := node.NewStatNode()

	require := func(err error, wantBlock bool, msg string) {
		if wantBlock {
			assert.True(t, base.IsBlockError(err), msg)
		} else {
			assert.NoError(t, err, msg)
		}
	}

	require(c.CanPass(stat, 1, false), false, "first request at t=0 should pass")
	stat.AddPassRequest(fc.ms, 1)
	require(c.CanPass(stat, 1, false), false, "second request at t=0 should pass")
	stat.AddPassRequest(fc.ms, 1)
	require(c.CanPass(stat, 1, false), true, "third request at t=0 should be blocked")

	fc.ms = 1001
	require(c.CanPass(stat, 1, false), false, "a request in the next window should pass")
}

func TestRejectControllerThreadThreshold(t *testing.T) {
	withFakeClock(0)
	defer base.SetClock(base.SystemClock)

	rule := &Rule{Resource: base.NewResourceKey("res"), Grade: GradeThread, Count: 1, ControlBehavior: ControlReject}
	c := newRejectController(rule)
	stat := node.NewStatNode()

	assert.NoError(t, c.CanPass(stat, 1, false))
	stat.IncreaseThreadNum()
	assert.True(t, base.IsBlockError(c.CanPass(stat, 1, false)))
	stat.DecreaseThreadNum()
	assert.NoError(t, c.CanPass(stat, 1, false))
}

func TestRejectControllerPriorityBorrowsFromNextWindow(t *testing.T) {
	fc := withFakeClock(0)
	defer base.SetClock(base.SystemClock)

	rule := &Rule{Resource: base.NewResourceKey("res"), Grade: GradeQPS, Count: 2, ControlBehavior: ControlReject}
	c := newRejectController(rule)
	stat := node.NewStatNode()

	stat.AddPassRequest(fc.ms, 2)
	err := c.CanPass(stat, 1, true)
	waitMs, ok := base.IsPriorityWaitSignal(err)
	assert.True(t, ok, "an over-threshold prioritized request should borrow from the next window instead of being blocked")
	assert.GreaterOrEqual(t, waitMs, int64(0))
}

func TestRateLimiterControllerPacing(t *testing.T) {
	defer base.SetClock(base.SystemClock)
	base.SetClock(base.SystemClock)

	rule := &Rule{Resource: base.NewResourceKey("res"), Count: 10, MaxQueueMs: 150, ControlBehavior: ControlRateLimiter}
	c := newRateLimiterController(rule)
	stat := node.NewStatNode()

	start := time.Now()
	assert.NoError(t, c.CanPass(stat, 1, false), "first request admits immediately")
	assert.NoError(t, c.CanPass(stat, 1, false), "second request queues for ~100ms and is admitted")
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond, "the second admission should have paced by roughly the per-request cost")

	// A burst of 2 tokens costs 200ms of queue time, which on its own
	// exceeds MaxQueueMs(150).
	err := c.CanPass(stat, 2, false)
	assert.True(t, base.IsBlockError(err), "a request queued beyond MaxQueueMs is rejected outright")
}

func TestRateLimiterControllerZeroCountBlocksAlways(t *testing.T) {
	rule := &Rule{Resource: base.NewResourceKey("res"), Count: 0, ControlBehavior: ControlRateLimiter}
	c := newRateLimiterController(rule)
	stat := node.NewStatNode()

	assert.True(t, base.IsBlockError(c.CanPass(stat, 1, false)))
}

func TestTokenBucketWarmUpMath(t *testing.T) {
	// count=100, warmUpSeconds=10, coldFactor=3, matching the canonical
	// warningTokens=500/maxTokens=1000 walkthrough.
	tb := newTokenBucket(100, 10, 3)
	assert.InDelta(t, 500, tb.warningTokens, 0.5)
	assert.InDelta(t, 1000, tb.maxTokens, 0.5)

	tb.storedTokens.Store(tb.maxTokens)
	qps := tb.warmingQps()
	assert.InDelta(t, 33.33, qps, 0.1, "at the coldest point the admissible rate should sit near count/coldFactor")
}

func TestWarmUpControllerRampsUpFromColdStart(t *testing.T) {
	fc := withFakeClock(0)
	defer base.SetClock(base.SystemClock)

	rule := &Rule{Resource: base.NewResourceKey("res"), Count: 10, WarmUpSeconds: 10, ColdFactor: 3, ControlBehavior: ControlWarmUp}
	c := newWarmUpController(rule)
	stat := node.NewStatNode()

	// Cold start: stored tokens begin at zero, below warningTokens, so the
	// controller should admit at the full configured count.
	for i := 0; i < 5; i++ {
		assert.NoError(t, c.CanPass(stat, 1, false))
		stat.AddPassRequest(fc.ms, 1)
	}
}

func TestWarmUpRateLimiterControllerAdmitsThenBlocks(t *testing.T) {
	defer base.SetClock(base.SystemClock)
	base.SetClock(base.SystemClock)

	rule := &Rule{Resource: base.NewResourceKey("res"), Count: 10, WarmUpSeconds: 10, ColdFactor: 3, MaxQueueMs: 50, ControlBehavior: ControlWarmUpRateLimiter}
	c := newWarmUpRateLimiterController(rule)
	stat := node.NewStatNode()

	assert.NoError(t, c.CanPass(stat, 1, false))
	// The first call refills the bucket to maxTokens (cold), so each request
	// costs ~300ms at the coldest rate, which exceeds MaxQueueMs(50).
	assert.True(t, base.IsBlockError(c.CanPass(stat, 1, false)))
}
