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

import "mosn.io/sentinel/pkg/sentinel/node"

// TrafficShapingController is the admission/pacing algorithm a FlowRule
// delegates to once FlowRuleChecker has picked a node. CanPass
// may block the calling goroutine for up to the controller's configured
// wait ceiling; it never blocks longer than that.
type TrafficShapingController interface {
	CanPass(stat *node.StatNode, acquireCount int64, prioritized bool) error
}

func newController(r *Rule) TrafficShapingController {
	local := newLocalController(r)
	if r.ClusterMode && r.Cluster != nil {
		return &clusterController{rule: r, local: local}
	}
	return local
}

func newLocalController(r *Rule) TrafficShapingController {
	switch r.ControlBehavior {
	case ControlWarmUp:
		return newWarmUpController(r)
	case ControlRateLimiter:
		return newRateLimiterController(r)
	case ControlWarmUpRateLimiter:
		return newWarmUpRateLimiterController(r)
	default:
		return newRejectController(r)
	}
}
