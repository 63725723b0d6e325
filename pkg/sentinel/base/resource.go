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

// Package base holds the data model shared by every layer of the flow
// control engine: resource identity, traffic direction and the error
// taxonomy raised at the entry/exit boundary.
package base

// TrafficType describes which side of a call the resource sits on.
type TrafficType int32

const (
	Inbound TrafficType = iota
	Outbound
)

func (t TrafficType) String() string {
	if t == Outbound {
		return "Outbound"
	}
	return "Inbound"
}

// ResourceType is descriptive metadata about the protected unit of work
// (web route, rpc method, generic); it never participates in identity.
type ResourceType int32

const (
	ResTypeCommon ResourceType = iota
	ResTypeWeb
	ResTypeRPC
)

// ResourceKey identifies a protected resource. Equality and hashing are
// defined on Name alone: Direction and Type are descriptive tags carried
// for slots that want them, not part of identity.
type ResourceKey struct {
	Name      string
	Direction TrafficType
	Type      ResourceType
}

// NewResourceKey builds a ResourceKey for an inbound, generic resource.
func NewResourceKey(name string) ResourceKey {
	return ResourceKey{Name: name, Direction: Inbound, Type: ResTypeCommon}
}

// NewResourceKeyOf builds a fully specified ResourceKey.
func NewResourceKeyOf(name string, direction TrafficType, resType ResourceType) ResourceKey {
	return ResourceKey{Name: name, Direction: direction, Type: resType}
}

// String implements the cache key used by every map keyed on resource
// identity (chainMap, clusterNodeMap, rule index).
func (r ResourceKey) String() string {
	return r.Name
}

const (
	// OriginDefault marks a flow rule that applies regardless of caller.
	OriginDefault = "default"
	// OriginOther marks a flow rule that applies to every caller that has
	// no rule of its own targeting it specifically.
	OriginOther = "other"
)
