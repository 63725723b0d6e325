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
	"runtime"

	syncpool "mosn.io/sentinel/pkg/sync"
)

// resetPool runs every rule's OPEN -> CLOSED reset once its timer fires.
// It is sized to host parallelism and never torn down: a handful of
// breaker resets a second never needs more than a worker per core, and
// ScheduleAlways falls back to a temporary goroutine if the pool is ever
// saturated, so a burst of simultaneous trips never blocks a timer
// goroutine on the pool being busy.
var resetPool = newResetPool()

func newResetPool() syncpool.WorkerPool {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return syncpool.NewWorkerPool(n)
}
