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

// AuthorityStrategy picks whether LimitApps is an allow list or a deny
// list.
type AuthorityStrategy int32

const (
	AuthorityWhite AuthorityStrategy = iota
	AuthorityBlack
)

// AuthorityRule restricts which callers (by Context.Origin) may enter a
// resource at all, in the caller-allow/deny-list form the rest of the
// ecosystem gives it.
type AuthorityRule struct {
	Resource  base.ResourceKey
	Strategy  AuthorityStrategy
	LimitApps []string
}

func (r *AuthorityRule) matches(origin string) bool {
	for _, app := range r.LimitApps {
		if app == origin {
			return r.Strategy == AuthorityWhite
		}
	}
	return r.Strategy == AuthorityBlack
}

type authorityRules struct {
	writeMu sync.Mutex
	value   atomic.Value // map[string][]*AuthorityRule
}

var globalAuthorityRules = func() *authorityRules {
	r := &authorityRules{}
	r.value.Store(map[string][]*AuthorityRule{})
	return r
}()

// LoadAuthorityRules atomically replaces every authority rule.
func LoadAuthorityRules(rules []*AuthorityRule) {
	next := make(map[string][]*AuthorityRule)
	for _, r := range rules {
		next[r.Resource.Name] = append(next[r.Resource.Name], r)
	}
	globalAuthorityRules.writeMu.Lock()
	globalAuthorityRules.value.Store(next)
	globalAuthorityRules.writeMu.Unlock()
}

func authorityRulesFor(resourceName string) []*AuthorityRule {
	return globalAuthorityRules.value.Load().(map[string][]*AuthorityRule)[resourceName]
}

// AllAuthorityRules returns every configured authority rule, flattened
// across resources.
func AllAuthorityRules() []*AuthorityRule {
	m := globalAuthorityRules.value.Load().(map[string][]*AuthorityRule)
	all := make([]*AuthorityRule, 0, len(m))
	for _, rules := range m {
		all = append(all, rules...)
	}
	return all
}

// AuthoritySlot rejects entries whose origin fails any configured
// AuthorityRule for the resource.
type AuthoritySlot struct {
	Resource base.ResourceKey
}

func (s *AuthoritySlot) Name() string { return "Authority" }

func (s *AuthoritySlot) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next Next) error {
	for _, rule := range authorityRulesFor(s.Resource.Name) {
		if !rule.matches(entry.Context.Origin) {
			return base.NewBlockError(base.BlockAuthority, s.Resource, rule)
		}
	}
	return next()
}

func (s *AuthoritySlot) Exit(entry *callctx.Entry, count int64, args []interface{}, next ExitNext) {
	next()
}
