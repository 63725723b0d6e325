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

// Package degrade implements the circuit-breaker state machine described
// 4.7: a DegradeRule trips CLOSED -> OPEN when its threshold is crossed
// and a ResetScheduler flips it back after timeWindowSec.
package degrade

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/node"
	"mosn.io/sentinel/pkg/utils"
)

type Grade int32

const (
	GradeAvgRt Grade = iota
	GradeExceptionRatio
	GradeExceptionCount
)

// Rule is a single circuit-breaker rule.
type Rule struct {
	ID                  uint64
	Resource            base.ResourceKey
	Grade               Grade
	Count               float64
	TimeWindowSec       int64
	MinRequestAmount    int64
	RtSlowRequestAmount int64

	cut       atomic.Bool
	passCount atomic.Int64
	timerMu   sync.Mutex
	timer     *utils.Timer
}

// CanPass runs this rule's part of the breaker state machine against the
// resource's ClusterNode. Returns a BlockError while the breaker is OPEN.
func (r *Rule) CanPass(cn *node.ClusterNode) error {
	if r.cut.Load() {
		return base.NewBlockError(base.BlockDegrade, r.Resource, r)
	}

	now := base.NowMillis()
	switch r.Grade {
	case GradeAvgRt:
		return r.checkAvgRt(cn, now)
	case GradeExceptionRatio:
		return r.checkExceptionRatio(cn, now)
	default:
		return r.checkExceptionCount(cn, now)
	}
}

func (r *Rule) checkAvgRt(cn *node.ClusterNode, now int64) error {
	rt := cn.AvgRt(now)
	if rt < r.Count {
		r.passCount.Store(0)
		return nil
	}
	if r.passCount.Inc() < r.RtSlowRequestAmount {
		return nil
	}
	r.trip()
	return base.NewBlockError(base.BlockDegrade, r.Resource, r)
}

func (r *Rule) checkExceptionRatio(cn *node.ClusterNode, now int64) error {
	exc := float64(cn.SecondMetric().Exception(now))
	succ := float64(cn.SecondMetric().Success(now))
	total := float64(cn.TotalRequest(now))

	if int64(total) < r.MinRequestAmount {
		return nil
	}
	if succ-exc <= 0 && exc < float64(r.MinRequestAmount) {
		return nil
	}
	if exc/succ < r.Count {
		return nil
	}
	r.trip()
	return base.NewBlockError(base.BlockDegrade, r.Resource, r)
}

func (r *Rule) checkExceptionCount(cn *node.ClusterNode, now int64) error {
	if cn.TotalException(now) < int64(r.Count) {
		return nil
	}
	r.trip()
	return base.NewBlockError(base.BlockDegrade, r.Resource, r)
}

// trip flips the breaker CLOSED -> OPEN exactly once and schedules the
// reset task; concurrent trippers race harmlessly on the CAS.
func (r *Rule) trip() {
	if !r.cut.CAS(false, true) {
		return
	}
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	r.timer = utils.NewTimer(time.Duration(r.TimeWindowSec)*time.Second, func() {
		resetPool.ScheduleAlways(func() {
			r.passCount.Store(0)
			r.cut.Store(false)
		})
	})
}

// IsOpen reports whether the breaker is currently tripped, for admin
// status export.
func (r *Rule) IsOpen() bool { return r.cut.Load() }
