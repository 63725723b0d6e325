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

package base

import "time"

// TimeSource is the monotonic millisecond clock every metric/controller
// reads from. Production code uses the real wall clock; tests install a
// fake one so window boundaries become deterministic.
type TimeSource interface {
	NowMillis() int64
}

type systemClock struct{}

func (systemClock) NowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// SystemClock is the default, real-time TimeSource.
var SystemClock TimeSource = systemClock{}

// clock is the process-wide TimeSource used by the engine; swap it with
// SetClock in tests, always restoring SystemClock afterwards.
var clock = SystemClock

// SetClock overrides the process-wide TimeSource. Intended for tests.
func SetClock(ts TimeSource) { clock = ts }

// NowMillis returns the current time, in milliseconds, from the installed
// TimeSource.
func NowMillis() int64 { return clock.NowMillis() }
