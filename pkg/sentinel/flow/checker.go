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
	"mosn.io/sentinel/pkg/sentinel/callctx"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// CanPass runs FlowRuleChecker for a single rule against entry,
// 4.5.2): pick the statistics node the rule's origin/strategy imply, then
// delegate to the rule's controller. A rule with no node selected (an
// unset LimitOrigin, or a CHAIN strategy whose refResource doesn't match
// the current context) always passes.
func CanPass(entry *callctx.Entry, rule *Rule, acquireCount int64, prioritized bool) error {
	stat, ok := selectNode(entry, rule)
	if !ok {
		return nil
	}
	return rule.controllerFor().CanPass(stat, acquireCount, prioritized)
}

func selectNode(entry *callctx.Entry, rule *Rule) (*node.StatNode, bool) {
	var origin *node.StatNode
	switch {
	case rule.LimitOrigin == "":
		return nil, false
	case rule.LimitOrigin == entry.Context.Origin &&
		rule.LimitOrigin != base.OriginDefault && rule.LimitOrigin != base.OriginOther:
		origin = entry.OriginNode
	case rule.LimitOrigin == base.OriginDefault:
		origin = entry.CurNode.ClusterNode().StatNode
	case rule.LimitOrigin == base.OriginOther:
		if hasSpecificRule(rule.Resource.Name, entry.Context.Origin) {
			return nil, false
		}
		origin = entry.OriginNode
	default:
		return nil, false
	}
	if origin == nil {
		return nil, false
	}

	switch rule.Strategy {
	case StrategyRelate:
		cn := node.ClusterNodeFor(base.NewResourceKey(rule.RefResource))
		return cn.StatNode, true
	case StrategyChain:
		if entry.Context.Name != rule.RefResource {
			return nil, false
		}
		return entry.CurNode.StatNode, true
	default: // StrategyDirect
		return origin, true
	}
}

// hasSpecificRule reports whether some other rule on this resource
// targets origin by name (as opposed to "default"/"other"), which makes
// an "other" rule inapplicable to that origin.
func hasSpecificRule(resourceName, origin string) bool {
	for _, r := range RulesFor(resourceName) {
		if r.LimitOrigin == origin && origin != base.OriginDefault && origin != base.OriginOther {
			return true
		}
	}
	return false
}
