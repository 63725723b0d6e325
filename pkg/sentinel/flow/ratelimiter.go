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

// rateLimiterController is controller (b): leaky-bucket pacing with a
// bounded head-of-line wait, keyed off a single atomic
// "latestPassedMillis" cursor rather than a real queue.
type rateLimiterController struct {
	rule               *Rule
	latestPassedMillis atomic.Int64
}

func newRateLimiterController(r *Rule) *rateLimiterController {
	return &rateLimiterController{rule: r}
}

func (c *rateLimiterController) CanPass(stat *node.StatNode, acquireCount int64, prioritized bool) error {
	if c.rule.Count <= 0 {
		return base.NewBlockError(base.BlockFlow, c.rule.Resource, c.rule)
	}
	waitMs, ok := c.tryAcquire(acquireCount)
	if !ok {
		return base.NewBlockError(base.BlockFlow, c.rule.Resource, c.rule)
	}
	if waitMs > 0 {
		time.Sleep(time.Duration(waitMs) * time.Millisecond)
	}
	return nil
}

func (c *rateLimiterController) tryAcquire(acquireCount int64) (waitMs int64, ok bool) {
	costMs := int64(math.Round(1000 * float64(acquireCount) / c.rule.Count))
	now := base.NowMillis()

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
