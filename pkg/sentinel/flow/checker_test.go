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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/callctx"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// entryFor builds a minimal Entry rooted at resourceName, with an
// origin-scoped StatNode registered under originName, the shape
// selectNode expects a real admission call to have already assembled.
func entryFor(t *testing.T, resourceName, originName string) *callctx.Entry {
	t.Helper()
	entrance, ok := node.EntranceNodeFor(resourceName, 1000)
	require.True(t, ok)
	cn := node.ClusterNodeFor(base.NewResourceKey(resourceName))
	var originStat *node.StatNode
	if originName != "" {
		originStat = cn.OriginNode(originName)
	}
	return &callctx.Entry{
		Context:    &callctx.Context{Name: resourceName, Origin: originName},
		CurNode:    entrance.DefaultNode,
		OriginNode: originStat,
	}
}

func resetFlowState() {
	ResetRulesForTest()
	node.ResetRegistriesForTest()
}

func TestSelectNodeEmptyLimitOriginNeverApplies(t *testing.T) {
	resetFlowState()
	entry := entryFor(t, "res", "callerX")
	rule := &Rule{Resource: base.NewResourceKey("res")}

	_, ok := selectNode(entry, rule)
	assert.False(t, ok)
}

func TestSelectNodeDirectDefaultUsesResourceClusterNode(t *testing.T) {
	resetFlowState()
	entry := entryFor(t, "res", "callerX")
	rule := &Rule{Resource: base.NewResourceKey("res"), LimitOrigin: base.OriginDefault, Strategy: StrategyDirect}

	stat, ok := selectNode(entry, rule)
	require.True(t, ok)
	assert.Same(t, entry.CurNode.ClusterNode().StatNode, stat)
}

func TestSelectNodeDirectSpecificOriginUsesOriginNode(t *testing.T) {
	resetFlowState()
	entry := entryFor(t, "res", "callerX")
	rule := &Rule{Resource: base.NewResourceKey("res"), LimitOrigin: "callerX", Strategy: StrategyDirect}

	stat, ok := selectNode(entry, rule)
	require.True(t, ok)
	assert.Same(t, entry.OriginNode, stat)
}

func TestSelectNodeOtherFallsBackToOriginNodeWithoutSpecificRule(t *testing.T) {
	resetFlowState()
	entry := entryFor(t, "res", "callerB")
	otherRule := &Rule{Resource: base.NewResourceKey("res"), LimitOrigin: base.OriginOther, Strategy: StrategyDirect}
	LoadRules([]*Rule{otherRule})

	stat, ok := selectNode(entry, otherRule)
	require.True(t, ok)
	assert.Same(t, entry.OriginNode, stat)
}

func TestSelectNodeOtherSkippedWhenSpecificRuleExists(t *testing.T) {
	resetFlowState()
	entry := entryFor(t, "res", "callerB")
	specific := &Rule{Resource: base.NewResourceKey("res"), LimitOrigin: "callerB", Strategy: StrategyDirect}
	otherRule := &Rule{Resource: base.NewResourceKey("res"), LimitOrigin: base.OriginOther, Strategy: StrategyDirect}
	LoadRules([]*Rule{specific, otherRule})

	_, ok := selectNode(entry, otherRule)
	assert.False(t, ok, "an origin with its own specific rule should not additionally consume the other rule's budget")
}

func TestSelectNodeRelateUsesRefResourceClusterNode(t *testing.T) {
	resetFlowState()
	entry := entryFor(t, "res", "callerX")
	rule := &Rule{Resource: base.NewResourceKey("res"), LimitOrigin: base.OriginDefault, Strategy: StrategyRelate, RefResource: "shared-pool"}

	stat, ok := selectNode(entry, rule)
	require.True(t, ok)
	want := node.ClusterNodeFor(base.NewResourceKey("shared-pool"))
	assert.Same(t, want.StatNode, stat)
}

func TestSelectNodeChainRequiresMatchingContextName(t *testing.T) {
	resetFlowState()
	entry := entryFor(t, "res", "callerX")

	matching := &Rule{Resource: base.NewResourceKey("res"), LimitOrigin: base.OriginDefault, Strategy: StrategyChain, RefResource: "res"}
	stat, ok := selectNode(entry, matching)
	require.True(t, ok)
	assert.Same(t, entry.CurNode.StatNode, stat)

	mismatched := &Rule{Resource: base.NewResourceKey("res"), LimitOrigin: base.OriginDefault, Strategy: StrategyChain, RefResource: "some-other-context"}
	_, ok = selectNode(entry, mismatched)
	assert.False(t, ok)
}

func TestCanPassSkipsRulesWithNoApplicableNode(t *testing.T) {
	resetFlowState()
	entry := entryFor(t, "res", "callerX")
	rule := &Rule{Resource: base.NewResourceKey("res")} // LimitOrigin unset

	assert.NoError(t, CanPass(entry, rule, 1, false))
}
