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

// Package chain holds the ordered per-resource decision pipeline: the
// ProcessorSlot contract, the fixed dispatcher that runs the canonical
// slots in order, and the slots that don't belong to a rule package of
// their own (node wiring, logging, statistics, authority, system).
//
// Flow and degrade rule checking live in their own packages and are wired
// in as ProcessorSlot implementations by the caller that assembles a
// Chain, so this package never imports them.
package chain

import (
	"mosn.io/sentinel/pkg/sentinel/callctx"
)

// Next is the continuation a slot calls to run the rest of the chain. A
// slot that never needs the downstream result (NodeSelector,
// ClusterBuilder) calls it unconditionally; LogSlot and StatisticSlot call
// it first and inspect the error it returns before logging or recording
// counters.
type Next func() error

// ExitNext is the exit-side continuation; exit has no result to inspect.
type ExitNext func()

// ProcessorSlot is one stage of the per-resource pipeline. Entry runs
// top-to-bottom in chain order; Exit runs bottom-to-top (the reverse),
// mirroring a call stack unwinding.
type ProcessorSlot interface {
	Name() string
	Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next Next) error
	Exit(entry *callctx.Entry, count int64, args []interface{}, next ExitNext)
}
