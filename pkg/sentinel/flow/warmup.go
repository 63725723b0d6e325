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
	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// warmUpController is controller (c): a token-bucket QPS ceiling that
// ramps from count/coldFactor up to count over warmUpSeconds of sustained
// demand.
type warmUpController struct {
	rule   *Rule
	bucket *tokenBucket
}

func newWarmUpController(r *Rule) *warmUpController {
	return &warmUpController{rule: r, bucket: newTokenBucket(r.Count, r.WarmUpSeconds, r.ColdFactor)}
}

func (c *warmUpController) CanPass(stat *node.StatNode, acquireCount int64, prioritized bool) error {
	now := base.NowMillis()
	c.bucket.syncTokens(stat.PreviousQps(now))

	ceiling := c.rule.Count
	if c.bucket.storedTokens.Load() >= c.bucket.warningTokens {
		ceiling = c.bucket.warmingQps()
	}
	if stat.PassQps(now)+float64(acquireCount) <= ceiling {
		return nil
	}
	return base.NewBlockError(base.BlockFlow, c.rule.Resource, c.rule)
}
