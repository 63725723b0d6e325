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
	"sync"
	"sync/atomic"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/callctx"
)

// Chain is one resource's fixed, ordered slot pipeline.
type Chain struct {
	slots []ProcessorSlot
}

// New builds a Chain running slots in the given order.
func New(slots ...ProcessorSlot) *Chain {
	return &Chain{slots: slots}
}

// Entry runs every slot's Entry in order, each wrapping the call to the
// next. A pass-through Chain (nil or empty) always admits.
func (c *Chain) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}) error {
	if c == nil || len(c.slots) == 0 {
		return nil
	}
	return c.entryFrom(0, entry, count, prioritized, args)
}

func (c *Chain) entryFrom(i int, entry *callctx.Entry, count int64, prioritized bool, args []interface{}) error {
	if i >= len(c.slots) {
		return nil
	}
	return c.slots[i].Entry(entry, count, prioritized, args, func() error {
		return c.entryFrom(i+1, entry, count, prioritized, args)
	})
}

// Exit runs every slot's Exit in reverse order, mirroring the call stack
// Entry built.
func (c *Chain) Exit(entry *callctx.Entry, count int64, args []interface{}) {
	if c == nil || len(c.slots) == 0 {
		return
	}
	c.exitFrom(len(c.slots)-1, entry, count, args)
}

func (c *Chain) exitFrom(i int, entry *callctx.Entry, count int64, args []interface{}) {
	if i < 0 {
		return
	}
	c.slots[i].Exit(entry, count, args, func() {
		c.exitFrom(i-1, entry, count, args)
	})
}

// Builder constructs the Chain for a resource on first reference. It is
// supplied by the facade so this package never imports flow/degrade.
type Builder func(resource base.ResourceKey) *Chain

// registry is the process-global resource -> Chain map (copy-on-
// write, coarse write lock, lock-free reads), capped at MaxSlotChain
// distinct entries; overflow gets the shared pass-through chain rather
// than failing the call.
type registry struct {
	writeMu sync.Mutex
	value   atomic.Value // map[string]*Chain
}

func newRegistry() *registry {
	r := &registry{}
	r.value.Store(map[string]*Chain{})
	return r
}

func (r *registry) snapshot() map[string]*Chain { return r.value.Load().(map[string]*Chain) }

var globalRegistry = newRegistry()
var passThrough = New()

// ForResource returns (building via build if necessary) the Chain for a
// resource, capped at maxSlotChain distinct chains.
func ForResource(resource base.ResourceKey, maxSlotChain int, build Builder) *Chain {
	if c, ok := globalRegistry.snapshot()[resource.Name]; ok {
		return c
	}
	globalRegistry.writeMu.Lock()
	defer globalRegistry.writeMu.Unlock()
	cur := globalRegistry.snapshot()
	if c, ok := cur[resource.Name]; ok {
		return c
	}
	if len(cur) >= maxSlotChain {
		return passThrough
	}
	c := build(resource)
	next := make(map[string]*Chain, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[resource.Name] = c
	globalRegistry.value.Store(next)
	return c
}

// Count reports how many distinct chains exist, for admin/metric export.
func Count() int { return len(globalRegistry.snapshot()) }

// ResetRegistryForTest clears the process-global chain registry.
func ResetRegistryForTest() {
	globalRegistry.writeMu.Lock()
	globalRegistry.value.Store(map[string]*Chain{})
	globalRegistry.writeMu.Unlock()
}
