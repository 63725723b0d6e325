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

// Package node holds the resource statistics graph: StatNode is the raw
// counter holder, DefaultNode/ClusterNode/EntranceNode give it the
// per-context call-tree and per-resource propagation rules: a DefaultNode's
// mutators also update its resource's ClusterNode, while origin StatNodes
// do not propagate.
package node

import (
	"go.uber.org/atomic"

	"mosn.io/sentinel/pkg/sentinel/config"
	"mosn.io/sentinel/pkg/sentinel/stat"
)

// StatNode is the second-grained + minute-grained counter pair plus the
// live thread gauge every resource/context/origin carries.
type StatNode struct {
	secondMetric   *stat.Metric
	minuteMetric   *stat.Metric
	activeThreads  atomic.Int32
	lastFetchMs    atomic.Int64
}

// NewStatNode builds a StatNode with a
// 2-bucket, 1s, occupiable second metric and a 60-bucket, 60s minute
// metric that never borrows from the future.
func NewStatNode() *StatNode {
	c := config.Current()
	return &StatNode{
		secondMetric: stat.NewOccupiableMetric(int(c.MetricSampleCount), int64(c.MetricIntervalMs)),
		minuteMetric: stat.NewMetric(60, 60_000),
	}
}

func (s *StatNode) SecondMetric() *stat.Metric { return s.secondMetric }
func (s *StatNode) MinuteMetric() *stat.Metric { return s.minuteMetric }

// Threads returns the current live-call gauge. Must return to its
// starting value once every paired increment/decrement has run.
func (s *StatNode) Threads() int32 { return s.activeThreads.Load() }

func (s *StatNode) IncreaseThreadNum() { s.activeThreads.Inc() }
func (s *StatNode) DecreaseThreadNum() {
	for {
		cur := s.activeThreads.Load()
		if cur <= 0 {
			return
		}
		if s.activeThreads.CAS(cur, cur-1) {
			return
		}
	}
}

// AddPassRequest/AddRtAndSuccess/IncreaseBlockQps/IncreaseExceptionQps/
// AddOccupiedPass are the exported forms used directly on leaf nodes
// (origin StatNodes, the global inbound node, ClusterNode itself) that
// have no further node to propagate to.
func (s *StatNode) AddPassRequest(now int64, n int64)        { s.addPassRequest(now, n) }
func (s *StatNode) AddRtAndSuccess(now int64, rt, n int64)   { s.addRtAndSuccess(now, rt, n) }
func (s *StatNode) IncreaseBlockQps(now int64, n int64)      { s.increaseBlockQps(now, n) }
func (s *StatNode) IncreaseExceptionQps(now int64, n int64)  { s.increaseExceptionQps(now, n) }
func (s *StatNode) AddOccupiedPass(now, futureNow int64, n int64) { s.addOccupiedPass(now, futureNow, n) }

func (s *StatNode) addPassRequest(now int64, n int64) {
	s.secondMetric.AddPass(now, n)
	s.minuteMetric.AddPass(now, n)
}

func (s *StatNode) addRtAndSuccess(now int64, rt int64, n int64) {
	s.secondMetric.AddRt(now, rt)
	s.secondMetric.AddSuccess(now, n)
	s.minuteMetric.AddRt(now, rt)
	s.minuteMetric.AddSuccess(now, n)
}

func (s *StatNode) increaseBlockQps(now int64, n int64) {
	s.secondMetric.AddBlock(now, n)
	s.minuteMetric.AddBlock(now, n)
}

func (s *StatNode) increaseExceptionQps(now int64, n int64) {
	s.secondMetric.AddException(now, n)
	s.minuteMetric.AddException(now, n)
}

// addOccupiedPass books n tokens as borrowed at now, and books the debt
// itself into the future bucket the borrow will come due in (futureNow =
// now + waitMs), matching addWaiting's future-bucket contract.
func (s *StatNode) addOccupiedPass(now, futureNow int64, n int64) {
	s.secondMetric.AddOccupiedPass(now, n)
	s.secondMetric.AddWaiting(futureNow, n)
}

// PassQps is pass-count-per-second over the live second window(s).
func (s *StatNode) PassQps(now int64) float64 {
	windowSeconds := float64(s.secondMetric.IntervalMillis()) / 1000
	return float64(s.secondMetric.Pass(now)) / windowSeconds
}

func (s *StatNode) BlockQps(now int64) float64 {
	windowSeconds := float64(s.secondMetric.IntervalMillis()) / 1000
	return float64(s.secondMetric.Block(now)) / windowSeconds
}

// AvgRt is rtSum / max(1, success) over the live second window(s).
func (s *StatNode) AvgRt(now int64) float64 {
	succ := s.secondMetric.Success(now)
	if succ <= 0 {
		succ = 1
	}
	return float64(s.secondMetric.RtSum(now)) / float64(succ)
}

func (s *StatNode) MinRt(now int64) int64 { return s.secondMetric.MinRt(now) }

// PreviousQps is the pass count of the immediately preceding second-grained
// window, expressed as a per-second rate. Used by the warm-up controllers'
// syncTokens to judge whether the resource is currently underutilised.
func (s *StatNode) PreviousQps(now int64) float64 {
	windowSeconds := float64(s.secondMetric.WindowLengthMillis()) / 1000
	return float64(s.secondMetric.PreviousWindowPass(now)) / windowSeconds
}

// TotalRequest is minute pass + minute block.
func (s *StatNode) TotalRequest(now int64) int64 {
	return s.minuteMetric.Pass(now) + s.minuteMetric.Block(now)
}

func (s *StatNode) TotalException(now int64) int64 {
	return s.minuteMetric.Exception(now)
}

func (s *StatNode) TotalPass(now int64) int64 {
	return s.minuteMetric.Pass(now)
}

// TryOccupyNext implements the future-token probe: can a
// prioritized request for n tokens be satisfied by borrowing from a
// not-yet-open bucket, and if so after how long?
func (s *StatNode) TryOccupyNext(now int64, acquireCount int64, threshold float64) int64 {
	occupyTimeout := config.OccupyTimeout().Milliseconds()
	maxPerInterval := int64(threshold * float64(s.secondMetric.IntervalMillis()) / 1000)
	alreadyBorrowed := s.secondMetric.Waiting(now)
	if alreadyBorrowed >= maxPerInterval {
		return occupyTimeout
	}

	windowLen := s.secondMetric.FutureWindowLengthMillis()
	currentPass := s.secondMetric.Pass(now)
	var earlierScanned int64

	for _, fw := range s.secondMetric.FutureWindows(now) {
		waitMs := fw.StartMillis + windowLen - now
		if waitMs >= occupyTimeout {
			continue
		}
		historical := currentPass - earlierScanned
		earliestPass := fw.Pass
		if historical+alreadyBorrowed+acquireCount-earliestPass <= maxPerInterval {
			if waitMs < 0 {
				waitMs = 0
			}
			return waitMs
		}
		earlierScanned += fw.Pass
	}
	return occupyTimeout
}
