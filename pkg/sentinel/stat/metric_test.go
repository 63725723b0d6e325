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

package stat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricAggregatesAcrossLiveBuckets(t *testing.T) {
	// 2 buckets over a 1000ms interval => 500ms per bucket.
	m := NewMetric(2, 1000)

	m.AddPass(0, 3)
	m.AddPass(500, 2)
	m.AddBlock(500, 1)
	m.AddRt(0, 100)
	m.AddRt(500, 300)
	m.AddSuccess(0, 3)
	m.AddSuccess(500, 2)

	assert.EqualValues(t, 5, m.Pass(999))
	assert.EqualValues(t, 1, m.Block(999))
	assert.EqualValues(t, 5, m.Success(999))
	assert.EqualValues(t, 400, m.RtSum(999))
}

func TestMetricWindowResetsOnceItAges(t *testing.T) {
	m := NewMetric(2, 1000)
	m.AddPass(0, 5)
	assert.EqualValues(t, 5, m.Pass(0))

	// Two intervals later, the bucket that held the old pass count is
	// deprecated, so Pass no longer counts it.
	assert.EqualValues(t, 0, m.Pass(2000))
}

func TestMetricPreviousWindowPass(t *testing.T) {
	m := NewMetric(2, 1000)
	m.AddPass(0, 4)

	// now=500 lands in the second bucket; the first bucket (which covers
	// [0,500)) is the immediately preceding window.
	assert.EqualValues(t, 4, m.PreviousWindowPass(500))
}

func TestOccupiableMetricTracksWaitingAcrossFutureWindows(t *testing.T) {
	m := NewOccupiableMetric(2, 1000)
	assert.EqualValues(t, 0, m.Waiting(0))

	m.AddWaiting(600, 3)
	assert.EqualValues(t, 3, m.Waiting(0))

	windows := m.FutureWindows(0)
	assert.NotEmpty(t, windows)
}

func TestMetricMinRtIgnoresUnrecordedBuckets(t *testing.T) {
	m := NewMetric(2, 1000)
	assert.EqualValues(t, 0, m.MinRt(0), "no observations yet should report zero, not -1")

	m.AddRt(0, 50)
	m.AddRt(500, 20)
	assert.EqualValues(t, 20, m.MinRt(999))
}
