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

package utils

import "github.com/dchest/siphash"

// hashKey0/hashKey1 are fixed, arbitrary siphash keys. This package hashes
// resource names into cluster flow ids, not untrusted attacker input, so a
// process-wide fixed key (rather than a randomized one) is what keeps the
// derived id stable across restarts and across the nodes of a cluster.
const (
	hashKey0 = 0x73656e74696e656c
	hashKey1 = 0x666c6f77636f6e74
)

// FlowID derives a stable, cluster-wide flow id from a resource name so a
// ClusterConfig can be filled in automatically when an operator doesn't
// hand-assign one.
func FlowID(resource string) uint64 {
	return siphash.Hash(hashKey0, hashKey1, []byte(resource))
}
