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

// Package config holds the process-wide knobs listed in the external
// interface table: a single atomically-swapped snapshot, read without
// locking on every hot path and replaced wholesale on update.
package config

import (
	"sync/atomic"
	"time"
)

// Entity mirrors the "Configuration knobs" table.
type Entity struct {
	GlobalSwitch      bool
	MetricSampleCount uint32
	MetricIntervalMs  uint32
	StatisticMaxRtMs  uint32
	OccupyTimeoutMs   uint32
	OccupyMaxRatio    float64
	MaxSlotChain      uint32
	MaxContext        uint32
}

func defaults() *Entity {
	return &Entity{
		GlobalSwitch:      true,
		MetricSampleCount: 2,
		MetricIntervalMs:  1000,
		StatisticMaxRtMs:  4900,
		OccupyTimeoutMs:   500,
		OccupyMaxRatio:    1.0,
		MaxSlotChain:      6000,
		MaxContext:        2000,
	}
}

var current atomic.Value // *Entity

func init() {
	current.Store(defaults())
}

// Current returns the live configuration snapshot. Never mutate the
// returned value; install changes via Update.
func Current() *Entity {
	return current.Load().(*Entity)
}

// Update installs a new configuration snapshot. mutate receives a copy of
// the current entity and may adjust any field before it is published.
func Update(mutate func(*Entity)) {
	prev := Current()
	next := *prev
	mutate(&next)
	current.Store(&next)
}

// MetricWindowLengthMs is the length, in milliseconds, of a single bucket
// in the second-grained Metric.
func MetricWindowLengthMs() uint32 {
	c := Current()
	return c.MetricIntervalMs / c.MetricSampleCount
}

// StatisticMaxRt returns the clamp applied to recorded response times.
func StatisticMaxRt() time.Duration {
	return time.Duration(Current().StatisticMaxRtMs) * time.Millisecond
}

// OccupyTimeout returns the max wait a prioritized reject will sleep.
func OccupyTimeout() time.Duration {
	return time.Duration(Current().OccupyTimeoutMs) * time.Millisecond
}
