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

// Package sentinel is the public facade: EnterContext/ExitContext bracket
// a task, Entry/Exit (and AsyncEntry) bracket one protected call within
// it, and LoadFlowRules/LoadDegradeRules install rules. Everything else
// under pkg/sentinel is an implementation detail reached only through
// this surface or through the admin package.
package sentinel

import (
	"fmt"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/callctx"
	"mosn.io/sentinel/pkg/sentinel/chain"
	"mosn.io/sentinel/pkg/sentinel/config"
	"mosn.io/sentinel/pkg/sentinel/degrade"
	"mosn.io/sentinel/pkg/sentinel/flow"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// MaxContextName bounds context names accepted by EnterContext.
const MaxContextName = 2000

// EnterContext opens (or reuses) the named call-tree root for the calling
// task. Once the process has MaxContext distinct names in use, further
// unseen names get a "null" Context that Entry always admits through
// without touching any node or rule -- a fallback that keeps a runaway
// set of context names from growing the node graph without bound.
func EnterContext(name, origin string) (*callctx.Context, error) {
	if len(name) > MaxContextName {
		return nil, fmt.Errorf("sentinel: context name %q exceeds %d bytes", name, MaxContextName)
	}
	en, ok := node.EntranceNodeFor(name, int(config.Current().MaxContext))
	if !ok {
		return &callctx.Context{Name: name, Origin: origin}, nil
	}
	return &callctx.Context{Name: name, Origin: origin, EntranceNode: en}, nil
}

// ExitContext is a no-op placeholder for symmetry with EnterContext: a
// Context carries no resources beyond the node graph, which is
// process-lifetime and shared, so there is nothing to release. It exists
// so callers can bracket enter/exit exactly as the external interface
// describes even though today it never returns an error.
func ExitContext(cc *callctx.Context) {}

func chainBuilder(resource base.ResourceKey) *chain.Chain {
	return chain.New(
		&chain.NodeSelectorSlot{Resource: resource},
		&chain.ClusterBuilderSlot{},
		&chain.LogSlot{Resource: resource},
		&chain.StatisticSlot{Resource: resource},
		&chain.AuthoritySlot{Resource: resource},
		&chain.SystemSlot{Resource: resource},
		&flow.Slot{Resource: resource},
		&degrade.Slot{Resource: resource},
	)
}

// Entry brackets one protected call. On success it returns an Entry the
// caller must Exit exactly once, in LIFO order with any other Entry
// opened against the same Context. On a rule-driven rejection it returns
// a *base.BlockError and no Entry -- there is nothing for the caller to
// Exit.
func Entry(cc *callctx.Context, resourceName string, direction base.TrafficType, resType base.ResourceType, count int64, prioritized bool, args ...interface{}) (*callctx.Entry, error) {
	if count < 1 {
		count = 1
	}
	resource := base.NewResourceKeyOf(resourceName, direction, resType)
	entry := &callctx.Entry{CreateMillis: base.NowMillis(), Context: cc}

	if !config.Current().GlobalSwitch || cc.EntranceNode == nil {
		cc.Push(entry)
		return entry, nil
	}

	c := chain.ForResource(resource, int(config.Current().MaxSlotChain), chainBuilder)
	entry.Extra = c
	cc.Push(entry)

	err := c.Entry(entry, count, prioritized, args)
	if err == nil {
		return entry, nil
	}
	if _, ok := base.IsPriorityWaitSignal(err); ok {
		return entry, nil
	}
	if base.IsBlockError(err) {
		cc.Pop(entry)
		return nil, err
	}
	// Internal/unexpected slot error: log-and-admit. The entry
	// stays pushed so the caller can still balance it with Exit.
	entry.StoredError = err
	return entry, nil
}

// AsyncEntry behaves like Entry but against a freshly detached Context
// carrying no relation to the caller's current entry, for work that
// outlives the caller's synchronous call stack.
func AsyncEntry(name, origin, resourceName string, direction base.TrafficType, resType base.ResourceType, count int64, prioritized bool, args ...interface{}) (*callctx.Context, *callctx.Entry, error) {
	cc, err := EnterContext(name, origin)
	if err != nil {
		return nil, nil, err
	}
	entry, err := Entry(cc, resourceName, direction, resType, count, prioritized, args...)
	return cc, entry, err
}

// Exit releases entry, decrementing whatever counters Entry incremented.
// Exits must happen in LIFO order; an out-of-order Exit force-unwinds
// every entry above the mismatched one (best-effort, no counters double
// released) and returns an *base.EntryOrderError.
func Exit(entry *callctx.Entry, count int64, args ...interface{}) error {
	if count < 1 {
		count = 1
	}
	cc := entry.Context
	unwound := cc.Pop(entry)
	for _, fe := range unwound {
		exitOne(fe, count, args)
	}
	exitOne(entry, count, args)

	if len(unwound) > 0 {
		res := base.ResourceKey{}
		if entry.CurNode != nil {
			res = entry.CurNode.Resource()
		}
		return &base.EntryOrderError{Resource: res}
	}
	return nil
}

func exitOne(entry *callctx.Entry, count int64, args []interface{}) {
	if c, ok := entry.Extra.(*chain.Chain); ok {
		c.Exit(entry, count, args)
	}
}

// LoadFlowRules replaces the flow rule registry for the listed resources.
func LoadFlowRules(rules []*flow.Rule) { flow.LoadRules(rules) }

// LoadDegradeRules replaces the degrade rule registry for the listed
// resources.
func LoadDegradeRules(rules []*degrade.Rule) { degrade.LoadRules(rules) }

// LoadAuthorityRules replaces the authority rule registry.
func LoadAuthorityRules(rules []*chain.AuthorityRule) { chain.LoadAuthorityRules(rules) }

// LoadSystemRule replaces the single process-wide system rule.
func LoadSystemRule(rule *chain.SystemRule) { chain.LoadSystemRule(rule) }

// SetGlobalSwitch flips the master switch: when off, every Entry call
// admits unconditionally.
func SetGlobalSwitch(on bool) {
	config.Update(func(e *config.Entity) { e.GlobalSwitch = on })
}
