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

package chain

import (
	"sync/atomic"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/callctx"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// SystemRule is the process-wide guard applied ahead of every per-resource
// flow/degrade rule: an overloaded process should shed load regardless of
// which resource is being hit. A zero field means "unbounded" on that
// dimension.
type SystemRule struct {
	MaxLoad        float64
	MaxAvgRtMs     int64
	MaxConcurrency int32
	MaxQps         float64
}

var globalSystemRule atomic.Value // *SystemRule

func init() {
	globalSystemRule.Store(&SystemRule{})
}

// LoadSystemRule atomically replaces the process-wide system rule.
func LoadSystemRule(rule *SystemRule) {
	if rule == nil {
		rule = &SystemRule{}
	}
	globalSystemRule.Store(rule)
}

func currentSystemRule() *SystemRule { return globalSystemRule.Load().(*SystemRule) }

// CurrentSystemRule returns the process-wide system rule in effect.
func CurrentSystemRule() *SystemRule { return currentSystemRule() }

// SystemSlot only ever consults the global inbound node: it protects the
// whole process, not one resource, so every inbound entry shares this
// single check regardless of which resource it targets. MaxLoad is stored
// with the rule but never checked: SystemSlot reads no system-load sample,
// so only MaxConcurrency, MaxQps and MaxAvgRtMs can block an entry.
type SystemSlot struct {
	Resource base.ResourceKey
}

func (s *SystemSlot) Name() string { return "System" }

func (s *SystemSlot) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next Next) error {
	if s.Resource.Direction != base.Inbound {
		return next()
	}
	rule := currentSystemRule()
	inbound := node.GlobalInboundNode()
	now := base.NowMillis()

	if rule.MaxConcurrency > 0 && inbound.Threads() >= rule.MaxConcurrency {
		return base.NewBlockError(base.BlockSystem, s.Resource, rule)
	}
	if rule.MaxQps > 0 && inbound.PassQps(now)+float64(count) > rule.MaxQps {
		return base.NewBlockError(base.BlockSystem, s.Resource, rule)
	}
	if rule.MaxAvgRtMs > 0 && inbound.AvgRt(now) > float64(rule.MaxAvgRtMs) {
		return base.NewBlockError(base.BlockSystem, s.Resource, rule)
	}
	return next()
}

func (s *SystemSlot) Exit(entry *callctx.Entry, count int64, args []interface{}, next ExitNext) {
	next()
}
