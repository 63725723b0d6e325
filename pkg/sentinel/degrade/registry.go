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
	"sync"
	"sync/atomic"
)

// registry is the copy-on-write resource -> []*Rule index.
type registry struct {
	writeMu sync.Mutex
	value   atomic.Value // map[string][]*Rule
}

var global = func() *registry {
	r := &registry{}
	r.value.Store(map[string][]*Rule{})
	return r
}()

// LoadRules atomically replaces the entire degrade rule set.
func LoadRules(rules []*Rule) {
	next := make(map[string][]*Rule)
	for _, r := range rules {
		next[r.Resource.Name] = append(next[r.Resource.Name], r)
	}
	global.writeMu.Lock()
	global.value.Store(next)
	global.writeMu.Unlock()
}

// RulesFor returns the rules configured for a resource.
func RulesFor(resourceName string) []*Rule {
	return global.value.Load().(map[string][]*Rule)[resourceName]
}

// AllRules returns every configured rule, flattened across resources.
func AllRules() []*Rule {
	m := global.value.Load().(map[string][]*Rule)
	all := make([]*Rule, 0, len(m))
	for _, rules := range m {
		all = append(all, rules...)
	}
	return all
}

// ResetRulesForTest clears the process-global rule registry.
func ResetRulesForTest() {
	global.writeMu.Lock()
	global.value.Store(map[string][]*Rule{})
	global.writeMu.Unlock()
}
