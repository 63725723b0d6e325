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
	"time"

	"go.uber.org/atomic"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// warmUpRateLimiterController is controller (d): the same cold-start token
// state as (c), but gating admission in the time domain like (b) instead
// of against a QPS ceiling.
type warmUpRateLimiterController struct {
	rule               *Rule
	bucket             *tokenBucket
	latestPassedMillis atomic.Int64
}

func newWarmUpRateLimiterController(r *Rule) *warmUpRateLimiterController {
	return &warmUpRateLimiterController{rule: r, bucket: newTokenBucket(r.Count, r.WarmUpSeconds, r.ColdFactor)}
}

func (c *warmUpRateLimiterController) CanPass(stat *node.StatNode, acquireCount int64, prioritized bool) error {
	now := base.NowMillis()
	c.bucket.syncTokens(stat.PreviousQps(now))

	qps := c.rule.Count
	if c.bucket.storedTokens.Load() >= c.bucket.warningTokens {
		qps = c.bucket.warmingQps()
	}
	costMs := int64(math.Round(1000 * float64(acquireCount) / qps))

	waitMs, ok := c.tryAcquire(costMs, now)
	if !ok {
		return base.NewBlockError(base.BlockFlow, c.rule.Resource, c.rule)
	}
	if waitMs > 0 {
		time.Sleep(time.Duration(waitMs) * time.Millisecond)
	}
	return nil
}

func (c *warmUpRateLimiterController) tryAcquire(costMs, now int64) (waitMs int64, ok bool) {
	for {
		latest := c.latestPassedMillis.Load()
		expected := latest + costMs
		if expected <= now {
			if c.latestPassedMillis.CAS(latest, now) {
				return 0, true
			}
			continue
		}
		wait := expected - now
		if wait > c.rule.MaxQueueMs {
			return 0, false
		}
		newLatest := latest + costMs
		if !c.latestPassedMillis.CAS(latest, newLatest) {
			continue
		}
		wait = newLatest - now
		if wait > c.rule.MaxQueueMs {
			c.latestPassedMillis.Sub(costMs)
			return 0, false
		}
		if wait < 0 {
			wait = 0
		}
		return wait, true
	}
}
