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
	"mosn.io/sentinel/pkg/sentinel/node"
)

// NodeSelectorSlot installs or looks up the DefaultNode for (context,
// resource) in the context's call tree and points entry.CurNode at it: a
// child of the caller's current node, or of the context's EntranceNode if
// this is the outermost entry.
type NodeSelectorSlot struct {
	Resource base.ResourceKey
}

func (s *NodeSelectorSlot) Name() string { return "NodeSelector" }

func (s *NodeSelectorSlot) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next Next) error {
	var parent *node.DefaultNode
	if p := entry.Parent(); p != nil {
		parent = p.CurNode
	} else {
		parent = entry.Context.EntranceNode.DefaultNode
	}
	entry.CurNode = parent.ChildOrCreate(s.Resource)
	return next()
}

func (s *NodeSelectorSlot) Exit(entry *callctx.Entry, count int64, args []interface{}, next ExitNext) {
	next()
}

// ClusterBuilderSlot resolves the resource's process-global ClusterNode
// (already reachable via CurNode.ClusterNode(), created lazily by
// DefaultNode) and the calling origin's leaf StatNode.
type ClusterBuilderSlot struct{}

func (s *ClusterBuilderSlot) Name() string { return "ClusterBuilder" }

func (s *ClusterBuilderSlot) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next Next) error {
	entry.OriginNode = entry.CurNode.ClusterNode().OriginNode(entry.Context.Origin)
	return next()
}

func (s *ClusterBuilderSlot) Exit(entry *callctx.Entry, count int64, args []interface{}, next ExitNext) {
	next()
}
