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

package node

import (
	"sync"

	"mosn.io/sentinel/pkg/sentinel/base"
)

// DefaultNode is the per-(context, resource) StatNode. It owns the set of
// child DefaultNodes that call out from this point in the call tree, and
// holds a back-reference to the resource's process-global ClusterNode:
// every mutator fans out to both.
type DefaultNode struct {
	*StatNode
	resource base.ResourceKey
	cluster  *ClusterNode

	mu       sync.RWMutex
	children map[string]*DefaultNode
}

func newDefaultNode(resource base.ResourceKey) *DefaultNode {
	return &DefaultNode{
		StatNode: NewStatNode(),
		resource: resource,
		cluster:  ClusterNodeFor(resource),
		children: make(map[string]*DefaultNode),
	}
}

func (n *DefaultNode) Resource() base.ResourceKey { return n.resource }
func (n *DefaultNode) ClusterNode() *ClusterNode  { return n.cluster }

// ChildOrCreate returns the child DefaultNode for resource, creating and
// linking it into the call tree on first reference.
func (n *DefaultNode) ChildOrCreate(resource base.ResourceKey) *DefaultNode {
	n.mu.RLock()
	c, ok := n.children[resource.Name]
	n.mu.RUnlock()
	if ok {
		return c
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if c, ok = n.children[resource.Name]; ok {
		return c
	}
	c = newDefaultNode(resource)
	n.children[resource.Name] = c
	return c
}

// Children returns a snapshot of this node's children, keyed by resource
// name.
func (n *DefaultNode) Children() map[string]*DefaultNode {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]*DefaultNode, len(n.children))
	for k, v := range n.children {
		out[k] = v
	}
	return out
}

// AddPassRequest increments pass counters on this node and propagates to
// its ClusterNode.
func (n *DefaultNode) AddPassRequest(now int64, count int64) {
	n.addPassRequest(now, count)
	n.cluster.addPassRequest(now, count)
}

// AddRtAndSuccess records latency+success on this node and its cluster
// node, clamped to the configured statistic ceiling by the caller.
func (n *DefaultNode) AddRtAndSuccess(now int64, rt int64, count int64) {
	n.addRtAndSuccess(now, rt, count)
	n.cluster.addRtAndSuccess(now, rt, count)
}

func (n *DefaultNode) IncreaseBlockQps(now int64, count int64) {
	n.increaseBlockQps(now, count)
	n.cluster.increaseBlockQps(now, count)
}

func (n *DefaultNode) IncreaseExceptionQps(now int64, count int64) {
	n.increaseExceptionQps(now, count)
	n.cluster.increaseExceptionQps(now, count)
}

func (n *DefaultNode) IncreaseThreadNum() {
	n.StatNode.IncreaseThreadNum()
	n.cluster.IncreaseThreadNum()
}

func (n *DefaultNode) DecreaseThreadNum() {
	n.StatNode.DecreaseThreadNum()
	n.cluster.DecreaseThreadNum()
}

func (n *DefaultNode) AddOccupiedPass(now, futureNow int64, count int64) {
	n.addOccupiedPass(now, futureNow, count)
	n.cluster.addOccupiedPass(now, futureNow, count)
}
