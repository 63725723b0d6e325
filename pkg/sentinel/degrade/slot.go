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

package degrade

import (
	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/callctx"
	"mosn.io/sentinel/pkg/sentinel/chain"
)

// Slot is the Degrade stage of the slot chain, the last one:
// it runs every DegradeRule configured for the resource against the
// resource's ClusterNode.
type Slot struct {
	Resource base.ResourceKey
}

func (s *Slot) Name() string { return "Degrade" }

func (s *Slot) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next chain.Next) error {
	cn := entry.CurNode.ClusterNode()
	for _, rule := range RulesFor(s.Resource.Name) {
		if err := rule.CanPass(cn); err != nil {
			return err
		}
	}
	return next()
}

func (s *Slot) Exit(entry *callctx.Entry, count int64, args []interface{}, next chain.ExitNext) {
	next()
}
