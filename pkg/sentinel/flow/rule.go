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

// Package flow implements FlowRule admission: the strategy/origin node
// selection of FlowRuleChecker and the four traffic-shaping
// controllers it delegates to.
package flow

import (
	"sync"
	"sync/atomic"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/utils"
)

type Strategy int32

const (
	StrategyDirect Strategy = iota
	StrategyRelate
	StrategyChain
)

type Grade int32

const (
	GradeThread Grade = iota
	GradeQPS
)

type ControlBehavior int32

const (
	ControlReject ControlBehavior = iota
	ControlWarmUp
	ControlRateLimiter
	ControlWarmUpRateLimiter
)

// ClusterConfig carries the cluster-mode knobs a FlowRule needs when
// ClusterMode is set; it is read by this package's cluster-mode controller
// and by sentineld, which copies it into a cluster.ServerRule. Package
// cluster itself never reads it.
type ClusterConfig struct {
	FlowID                  uint64
	ThresholdType           int32 // 0 = GLOBAL, 1 = AVG_LOCAL
	FallbackToLocalWhenFail bool
}

// Rule is a single flow-control rule.
type Rule struct {
	ID              uint64
	Resource        base.ResourceKey
	LimitOrigin     string
	Strategy        Strategy
	RefResource     string
	Grade           Grade
	Count           float64
	ControlBehavior ControlBehavior
	WarmUpSeconds   int64
	ColdFactor      float64
	MaxQueueMs      int64
	ClusterMode     bool
	Cluster         *ClusterConfig

	mu         sync.Mutex
	controller TrafficShapingController
}

// controllerFor lazily builds (and caches) this rule's controller. Rules
// are immutable once installed so one controller instance per rule is
// safe to reuse across every call that references it.
func (r *Rule) controllerFor() TrafficShapingController {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.controller == nil {
		r.controller = newController(r)
	}
	return r.controller
}

// registry is the copy-on-write resource -> []*Rule index.
type registry struct {
	writeMu sync.Mutex
	value   atomic.Value // map[string][]*Rule
}

var global = func() *registry {
	r := &registry{}
	r.value.Store(map[string][]*Rule{})
	return r
}()

// LoadRules atomically replaces the entire flow rule set.
func LoadRules(rules []*Rule) {
	next := make(map[string][]*Rule)
	for _, r := range rules {
		if r.ClusterMode && r.Cluster != nil && r.Cluster.FlowID == 0 {
			r.Cluster.FlowID = utils.FlowID(r.Resource.Name)
		}
		next[r.Resource.Name] = append(next[r.Resource.Name], r)
	}
	global.writeMu.Lock()
	global.value.Store(next)
	global.writeMu.Unlock()
}

// RulesFor returns the rules configured for a resource.
func RulesFor(resourceName string) []*Rule {
	return global.value.Load().(map[string][]*Rule)[resourceName]
}

// AllRules returns every configured rule, flattened across resources.
func AllRules() []*Rule {
	m := global.value.Load().(map[string][]*Rule)
	all := make([]*Rule, 0, len(m))
	for _, rules := range m {
		all = append(all, rules...)
	}
	return all
}

// ResetRulesForTest clears the process-global rule registry.
func ResetRulesForTest() {
	global.writeMu.Lock()
	global.value.Store(map[string][]*Rule{})
	global.writeMu.Unlock()
}
