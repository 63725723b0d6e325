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

// ClusterNode is the single, process-global StatNode for a ResourceKey. It
// additionally tracks one leaf StatNode per calling origin, created lazily
// the first time that origin is seen; origin nodes never propagate further
// (they have nowhere to propagate to).
type ClusterNode struct {
	*StatNode
	resource base.ResourceKey

	mu      sync.RWMutex
	origins map[string]*StatNode
}

func newClusterNode(resource base.ResourceKey) *ClusterNode {
	return &ClusterNode{
		StatNode: NewStatNode(),
		resource: resource,
		origins:  make(map[string]*StatNode),
	}
}

func (c *ClusterNode) Resource() base.ResourceKey { return c.resource }

// OriginNode returns the leaf StatNode for the given caller id, creating it
// on first reference. Empty origin ids never get a node: an empty id reserves
// that case for "no origin tracking requested".
func (c *ClusterNode) OriginNode(origin string) *StatNode {
	if origin == "" {
		return nil
	}
	c.mu.RLock()
	n, ok := c.origins[origin]
	c.mu.RUnlock()
	if ok {
		return n
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok = c.origins[origin]; ok {
		return n
	}
	n = NewStatNode()
	c.origins[origin] = n
	return n
}

