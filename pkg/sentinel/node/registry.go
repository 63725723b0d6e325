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
	"sync/atomic"

	"mosn.io/sentinel/pkg/sentinel/base"
)

// clusterNodeMap is the process-global resource -> ClusterNode registry
// Writers take writeMu, clone the
// published map, install the new entry and atomic.Value.Store the clone;
// readers take a single Load and never block on a writer.
type clusterNodeMap struct {
	writeMu sync.Mutex
	value   atomic.Value // map[string]*ClusterNode
}

func newClusterNodeMap() *clusterNodeMap {
	m := &clusterNodeMap{}
	m.value.Store(map[string]*ClusterNode{})
	return m
}

func (m *clusterNodeMap) snapshot() map[string]*ClusterNode {
	return m.value.Load().(map[string]*ClusterNode)
}

// getOrCreate returns the ClusterNode for resource, lazily creating it.
func (m *clusterNodeMap) getOrCreate(resource base.ResourceKey) *ClusterNode {
	if n, ok := m.snapshot()[resource.Name]; ok {
		return n
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	cur := m.snapshot()
	if n, ok := cur[resource.Name]; ok {
		return n
	}
	next := make(map[string]*ClusterNode, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	cn := newClusterNode(resource)
	next[resource.Name] = cn
	m.value.Store(next)
	return cn
}

func (m *clusterNodeMap) get(resourceName string) (*ClusterNode, bool) {
	n, ok := m.snapshot()[resourceName]
	return n, ok
}

func (m *clusterNodeMap) all() map[string]*ClusterNode {
	return m.snapshot()
}

// globalClusterNodes is the single process-wide ClusterNode registry.
var globalClusterNodes = newClusterNodeMap()

// ClusterNodeFor returns (creating if necessary) the process-global
// ClusterNode for a resource.
func ClusterNodeFor(resource base.ResourceKey) *ClusterNode {
	return globalClusterNodes.getOrCreate(resource)
}

// LookupClusterNode returns the ClusterNode for a resource name if one has
// already been created, without creating it.
func LookupClusterNode(resourceName string) (*ClusterNode, bool) {
	return globalClusterNodes.get(resourceName)
}

// AllClusterNodes returns a read-only snapshot of every ClusterNode, keyed
// by resource name. Used by admin/metric export.
func AllClusterNodes() map[string]*ClusterNode {
	return globalClusterNodes.all()
}

// globalInboundNode is the single node every inbound resource's statistics
// roll up into, letting callers ask "how loaded is this whole process"
// independent of which specific resource is being hit.
var globalInboundNode = NewStatNode()

// GlobalInboundNode returns the process-wide inbound StatNode.
func GlobalInboundNode() *StatNode { return globalInboundNode }
