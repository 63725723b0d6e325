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

// EntranceNode is a DefaultNode that roots the call tree for one named
// context (e.g. the inbound endpoint "/api/order"). Every task that enters
// the same context name shares the same EntranceNode.
type EntranceNode struct {
	*DefaultNode
	ContextName string
}

func newEntranceNode(contextName string) *EntranceNode {
	return &EntranceNode{
		DefaultNode: newDefaultNode(base.NewResourceKey(contextName)),
		ContextName: contextName,
	}
}

type entranceRegistry struct {
	mu    sync.RWMutex
	nodes map[string]*EntranceNode
}

var globalEntrances = &entranceRegistry{nodes: make(map[string]*EntranceNode)}

// EntranceNodeFor returns (creating if necessary) the EntranceNode for a
// context name, bounded by maxContext: once the cap is reached a creation
// attempt for an unseen name returns ok=false and the caller should fall
// back to a "null context" that skips every check.
func EntranceNodeFor(contextName string, maxContext int) (*EntranceNode, bool) {
	globalEntrances.mu.RLock()
	n, ok := globalEntrances.nodes[contextName]
	count := len(globalEntrances.nodes)
	globalEntrances.mu.RUnlock()
	if ok {
		return n, true
	}
	globalEntrances.mu.Lock()
	defer globalEntrances.mu.Unlock()
	if n, ok = globalEntrances.nodes[contextName]; ok {
		return n, true
	}
	if count >= maxContext {
		return nil, false
	}
	n = newEntranceNode(contextName)
	globalEntrances.nodes[contextName] = n
	return n, true
}

// EntranceNodeCount reports how many distinct contexts are currently
// tracked, for admin/metric export and the maxContext cap check.
func EntranceNodeCount() int {
	globalEntrances.mu.RLock()
	defer globalEntrances.mu.RUnlock()
	return len(globalEntrances.nodes)
}

// AllEntranceNodes returns a read-only snapshot, keyed by context name.
func AllEntranceNodes() map[string]*EntranceNode {
	globalEntrances.mu.RLock()
	defer globalEntrances.mu.RUnlock()
	out := make(map[string]*EntranceNode, len(globalEntrances.nodes))
	for k, v := range globalEntrances.nodes {
		out[k] = v
	}
	return out
}

// ResetRegistriesForTest clears every process-global node registry. It
// exists solely so tests can start each scenario from a clean graph.
func ResetRegistriesForTest() {
	globalEntrances.mu.Lock()
	globalEntrances.nodes = make(map[string]*EntranceNode)
	globalEntrances.mu.Unlock()

	globalClusterNodes.writeMu.Lock()
	globalClusterNodes.value.Store(map[string]*ClusterNode{})
	globalClusterNodes.writeMu.Unlock()

	globalInboundNode = NewStatNode()
}
