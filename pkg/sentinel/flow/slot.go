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
	"mosn.io/sentinel/pkg/sentinel/chain"
)

// Slot is the Flow stage of the slot chain: it runs every
// FlowRule configured for the resource and rejects on the first one that
// denies. Implements chain.ProcessorSlot without chain importing this
// package.
type Slot struct {
	Resource base.ResourceKey
}

func (s *Slot) Name() string { return "Flow" }

func (s *Slot) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next chain.Next) error {
	// A PriorityWaitSignal means "admitted after sleeping", not "blocked":
	// the chain still has to run to completion so Degrade downstream still
	// sees the call, but the signal itself must survive to reach
	// StatisticSlot once nothing downstream overrides it with a real block.
	var pending error
	for _, rule := range RulesFor(s.Resource.Name) {
		err := CanPass(entry, rule, count, prioritized)
		if err == nil {
			continue
		}
		if _, ok := base.IsPriorityWaitSignal(err); ok {
			pending = err
			continue
		}
		return err
	}
	if err := next(); err != nil {
		return err
	}
	return pending
}

func (s *Slot) Exit(entry *callctx.Entry, count int64, args []interface{}, next chain.ExitNext) {
	next()
}
