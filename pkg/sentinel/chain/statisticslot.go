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
	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/callctx"
	"mosn.io/sentinel/pkg/sentinel/config"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// StatisticSlot is the counter recorder described in 4.5.1. Its Entry
// delegates down-chain first: only a downstream accept increments the
// pass/thread counters, a downstream rejection increments block counters,
// any other failure increments exception counters, and a PriorityWait
// signal increments only the thread gauge.
type StatisticSlot struct {
	Resource base.ResourceKey
}

func (s *StatisticSlot) Name() string { return "Statistic" }

func (s *StatisticSlot) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next Next) error {
	err := next()
	now := base.NowMillis()

	switch {
	case err == nil:
		entry.CurNode.IncreaseThreadNum()
		entry.CurNode.AddPassRequest(now, count)
		addOrigin(entry.OriginNode, func(n *node.StatNode) {
			n.IncreaseThreadNum()
			n.AddPassRequest(now, count)
		})
		if s.Resource.Direction == base.Inbound {
			node.GlobalInboundNode().IncreaseThreadNum()
			node.GlobalInboundNode().AddPassRequest(now, count)
		}
	case isPriorityWait(err):
		entry.CurNode.IncreaseThreadNum()
		addOrigin(entry.OriginNode, func(n *node.StatNode) { n.IncreaseThreadNum() })
		if s.Resource.Direction == base.Inbound {
			node.GlobalInboundNode().IncreaseThreadNum()
		}
	case base.IsBlockError(err):
		entry.CurNode.IncreaseBlockQps(now, count)
		addOrigin(entry.OriginNode, func(n *node.StatNode) { n.IncreaseBlockQps(now, count) })
		if s.Resource.Direction == base.Inbound {
			node.GlobalInboundNode().IncreaseBlockQps(now, count)
		}
	default:
		entry.CurNode.IncreaseExceptionQps(now, count)
		addOrigin(entry.OriginNode, func(n *node.StatNode) { n.IncreaseExceptionQps(now, count) })
		if s.Resource.Direction == base.Inbound {
			node.GlobalInboundNode().IncreaseExceptionQps(now, count)
		}
	}
	return err
}

func (s *StatisticSlot) Exit(entry *callctx.Entry, count int64, args []interface{}, next ExitNext) {
	next()
	if entry.StoredError != nil {
		return
	}
	now := base.NowMillis()
	rt := now - entry.CreateMillis
	if max := config.StatisticMaxRt().Milliseconds(); rt > max {
		rt = max
	}
	if rt < 0 {
		rt = 0
	}

	entry.CurNode.AddRtAndSuccess(now, rt, count)
	entry.CurNode.DecreaseThreadNum()
	addOrigin(entry.OriginNode, func(n *node.StatNode) {
		n.AddRtAndSuccess(now, rt, count)
		n.DecreaseThreadNum()
	})
	if s.Resource.Direction == base.Inbound {
		node.GlobalInboundNode().AddRtAndSuccess(now, rt, count)
		node.GlobalInboundNode().DecreaseThreadNum()
	}
}

func addOrigin(n *node.StatNode, f func(*node.StatNode)) {
	if n != nil {
		f(n)
	}
}

func isPriorityWait(err error) bool {
	_, ok := base.IsPriorityWaitSignal(err)
	return ok
}
