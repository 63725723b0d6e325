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
	"time"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/config"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// rejectController is controller (a): fixed-threshold reject-on-exceed,
// with an optional priority branch that borrows from the next window
// instead of rejecting outright.
type rejectController struct {
	rule *Rule
}

func newRejectController(r *Rule) *rejectController { return &rejectController{rule: r} }

func (c *rejectController) CanPass(stat *node.StatNode, acquireCount int64, prioritized bool) error {
	now := base.NowMillis()
	var used float64
	if c.rule.Grade == GradeThread {
		used = float64(stat.Threads())
	} else {
		used = stat.PassQps(now)
	}
	if used+float64(acquireCount) <= c.rule.Count {
		return nil
	}
	if prioritized && c.rule.Grade == GradeQPS {
		waitMs := stat.TryOccupyNext(now, acquireCount, c.rule.Count)
		if waitMs < config.OccupyTimeout().Milliseconds() {
			stat.AddOccupiedPass(now, now+waitMs, acquireCount)
			if waitMs > 0 {
				time.Sleep(time.Duration(waitMs) * time.Millisecond)
			}
			return base.NewPriorityWaitSignal(waitMs)
		}
	}
	return base.NewBlockError(base.BlockFlow, c.rule.Resource, c.rule)
}
