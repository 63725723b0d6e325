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

// Package cluster implements the optional cluster-mode token service of
// an embedded in-process server usable directly by a FlowRule
// in ClusterMode, and a gRPC transport for the case where the server runs
// out-of-process.
package cluster

import "mosn.io/sentinel/pkg/sentinel/base"

// TokenService is the contract a FlowRule in cluster mode delegates to,
// whether that's the embedded server called in-process or a client
// stub talking to one over gRPC.
type TokenService interface {
	RequestToken(flowID uint64, acquireCount int64, prioritized bool) (*base.TokenResult, error)
}

// ThresholdType picks how a ServerRule's Count is interpreted.
type ThresholdType int32

const (
	// ThresholdGlobal treats Count as the total budget across every
	// connected client.
	ThresholdGlobal ThresholdType = iota
	// ThresholdAvgLocal treats Count as a per-client budget, scaled by the
	// number of currently connected clients.
	ThresholdAvgLocal
)

// ServerRule mirrors the subset of FlowRule.ClusterConfig the embedded
// server needs to enforce a token budget for one flow id.
type ServerRule struct {
	FlowID        uint64
	Resource      base.ResourceKey
	Count         float64
	ThresholdType ThresholdType
	SampleCount   int
	IntervalMs    int64
}
