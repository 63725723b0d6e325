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

package cluster

import (
	"sync"
	"sync/atomic"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/config"
	"mosn.io/sentinel/pkg/sentinel/stat"
)

// EmbeddedServer is the in-process TokenService: each flow id gets its own
// sliding-window metric, independent of any per-resource StatNode, so
// cluster accounting never leaks into local per-process statistics.
type EmbeddedServer struct {
	mu       sync.RWMutex
	rules    map[uint64]*ServerRule
	metrics  map[uint64]*stat.Metric
	clients  int32 // connectedClients(flowId) is approximated process-wide
}

// NewEmbeddedServer builds an empty EmbeddedServer.
func NewEmbeddedServer() *EmbeddedServer {
	return &EmbeddedServer{
		rules:   make(map[uint64]*ServerRule),
		metrics: make(map[uint64]*stat.Metric),
	}
}

// LoadRules atomically replaces the server's rule set.
func (s *EmbeddedServer) LoadRules(rules []*ServerRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make(map[uint64]*ServerRule, len(rules))
	s.metrics = make(map[uint64]*stat.Metric, len(rules))
	for _, r := range rules {
		sc, interval := r.SampleCount, r.IntervalMs
		if sc <= 0 {
			sc = int(config.Current().MetricSampleCount)
		}
		if interval <= 0 {
			interval = int64(config.Current().MetricIntervalMs)
		}
		s.rules[r.FlowID] = r
		s.metrics[r.FlowID] = stat.NewOccupiableMetric(sc, interval)
	}
}

// Connect registers a client for AVG_LOCAL threshold scaling; Disconnect
// reverses it.
func (s *EmbeddedServer) Connect()    { atomic.AddInt32(&s.clients, 1) }
func (s *EmbeddedServer) Disconnect() { atomic.AddInt32(&s.clients, -1) }

func (s *EmbeddedServer) connectedClients() int32 {
	if c := atomic.LoadInt32(&s.clients); c > 0 {
		return c
	}
	return 1
}

// RequestToken implements TokenService against this server's own
// bookkeeping: threshold = Count for GLOBAL, Count *
// connectedClients for AVG_LOCAL; a prioritized request over threshold
// gets one attempt at tryOccupyNext before being told BLOCKED.
func (s *EmbeddedServer) RequestToken(flowID uint64, acquireCount int64, prioritized bool) (*base.TokenResult, error) {
	s.mu.RLock()
	rule, ok := s.rules[flowID]
	metric := s.metrics[flowID]
	s.mu.RUnlock()
	if !ok {
		return &base.TokenResult{Status: base.TokenNoRuleExists}, nil
	}
	if acquireCount <= 0 {
		return &base.TokenResult{Status: base.TokenBadRequest}, nil
	}

	threshold := rule.Count
	if rule.ThresholdType == ThresholdAvgLocal {
		threshold *= float64(s.connectedClients())
	}

	now := base.NowMillis()
	windowSeconds := float64(metric.IntervalMillis()) / 1000
	used := float64(metric.Pass(now)) / windowSeconds

	if used+float64(acquireCount) <= threshold {
		metric.AddPass(now, acquireCount)
		return &base.TokenResult{Status: base.TokenOK, Remaining: int64(threshold - used - float64(acquireCount))}, nil
	}

	if prioritized {
		waitMs := tryOccupyNext(metric, now, acquireCount, threshold)
		if waitMs < config.OccupyTimeout().Milliseconds() {
			metric.AddOccupiedPass(now, acquireCount)
			metric.AddWaiting(now+waitMs, acquireCount)
			return &base.TokenResult{Status: base.TokenShouldWait, WaitMillis: waitMs}, nil
		}
	}
	return &base.TokenResult{Status: base.TokenBlocked}, nil
}

// tryOccupyNext is the server-side mirror of node.StatNode.TryOccupyNext,
// operating directly on a bare Metric since the server has no StatNode of
// its own per flow id.
func tryOccupyNext(m *stat.Metric, now, acquireCount int64, threshold float64) int64 {
	occupyTimeout := config.OccupyTimeout().Milliseconds()
	maxPerInterval := int64(threshold * float64(m.IntervalMillis()) / 1000)
	alreadyBorrowed := m.Waiting(now)
	if alreadyBorrowed >= maxPerInterval {
		return occupyTimeout
	}

	windowLen := m.FutureWindowLengthMillis()
	currentPass := m.Pass(now)
	var earlierScanned int64

	for _, fw := range m.FutureWindows(now) {
		waitMs := fw.StartMillis + windowLen - now
		if waitMs >= occupyTimeout {
			continue
		}
		historical := currentPass - earlierScanned
		if historical+alreadyBorrowed+acquireCount-fw.Pass <= maxPerInterval {
			if waitMs < 0 {
				waitMs = 0
			}
			return waitMs
		}
		earlierScanned += fw.Pass
	}
	return occupyTimeout
}
