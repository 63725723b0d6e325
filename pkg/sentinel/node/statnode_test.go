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

package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatNodeThreadGaugeNeverGoesNegative(t *testing.T) {
	s := NewStatNode()
	s.DecreaseThreadNum()
	assert.EqualValues(t, 0, s.Threads())

	s.IncreaseThreadNum()
	s.IncreaseThreadNum()
	s.DecreaseThreadNum()
	assert.EqualValues(t, 1, s.Threads())
}

func TestStatNodePassQpsAndAvgRt(t *testing.T) {
	s := NewStatNode()
	s.AddPassRequest(0, 4)
	s.AddRtAndSuccess(0, 100, 4)

	// Default second-grained window is exactly 1s wide.
	assert.InDelta(t, 4, s.PassQps(0), 0.001)
	assert.InDelta(t, 25, s.AvgRt(0), 0.001)
}

func TestStatNodeAvgRtWithNoSuccessIsZero(t *testing.T) {
	s := NewStatNode()
	assert.EqualValues(t, 0, s.AvgRt(0))
}

func TestStatNodeTryOccupyNextGrantsWithinThreshold(t *testing.T) {
	s := NewStatNode()
	// threshold=10 qps, no traffic recorded yet: the next window has
	// ample budget, so occupying should return a wait comfortably under
	// the configured OccupyTimeout ceiling.
	waitMs := s.TryOccupyNext(0, 1, 10)
	assert.GreaterOrEqual(t, waitMs, int64(0))
	assert.Less(t, waitMs, int64(500))
}

func TestStatNodeAddOccupiedPassBooksIntoFutureWindow(t *testing.T) {
	s := NewStatNode()
	s.AddOccupiedPass(0, 600, 2)
	assert.EqualValues(t, 2, s.SecondMetric().Waiting(0))
}

func TestStatNodeTotalPassAndExceptionRollUpToMinuteMetric(t *testing.T) {
	s := NewStatNode()
	s.AddPassRequest(0, 3)
	s.IncreaseExceptionQps(0, 2)

	assert.EqualValues(t, 3, s.TotalPass(0))
	assert.EqualValues(t, 2, s.TotalException(0))
	assert.EqualValues(t, 3, s.TotalRequest(0))
}
