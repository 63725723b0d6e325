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

package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/callctx"
	"mosn.io/sentinel/pkg/sentinel/node"
)

func statEntry(t *testing.T, resourceName string) *callctx.Entry {
	t.Helper()
	node.ResetRegistriesForTest()
	entrance, ok := node.EntranceNodeFor(resourceName, 1000)
	require.True(t, ok)
	cur := entrance.DefaultNode.ChildOrCreate(base.NewResourceKey(resourceName))
	return &callctx.Entry{
		Context:      &callctx.Context{Name: resourceName},
		CurNode:      cur,
		CreateMillis: base.NowMillis(),
	}
}

func TestStatisticSlotRecordsPassOnSuccess(t *testing.T) {
	entry := statEntry(t, "res")
	slot := &StatisticSlot{Resource: base.NewResourceKey("res")}

	err := slot.Entry(entry, 1, false, nil, func() error { return nil })
	require.NoError(t, err)

	assert.EqualValues(t, 1, entry.CurNode.Threads())
	assert.EqualValues(t, 1, entry.CurNode.TotalPass(base.NowMillis()))

	slot.Exit(entry, 1, nil, func() {})
	assert.EqualValues(t, 0, entry.CurNode.Threads(), "Exit must pair with the thread increment Entry made")
}

func TestStatisticSlotRecordsBlockOnBlockError(t *testing.T) {
	entry := statEntry(t, "res")
	slot := &StatisticSlot{Resource: base.NewResourceKey("res")}

	blockErr := base.NewBlockError(base.BlockFlow, base.NewResourceKey("res"), nil)
	err := slot.Entry(entry, 1, false, nil, func() error { return blockErr })
	assert.Equal(t, blockErr, err)
	assert.EqualValues(t, 0, entry.CurNode.Threads(), "a blocked call never increments the thread gauge")
	// The default second-grained window is exactly 1s wide, so BlockQps
	// equals the raw block count recorded this window.
	assert.InDelta(t, 1, entry.CurNode.BlockQps(base.NowMillis()), 0.001)
}

func TestStatisticSlotRecordsExceptionOnOtherErrors(t *testing.T) {
	entry := statEntry(t, "res")
	slot := &StatisticSlot{Resource: base.NewResourceKey("res")}

	boom := assert.AnError
	err := slot.Entry(entry, 1, false, nil, func() error { return boom })
	assert.Equal(t, boom, err)
	assert.EqualValues(t, 1, entry.CurNode.TotalException(base.NowMillis()))
}

func TestStatisticSlotPriorityWaitOnlyTouchesThreadGauge(t *testing.T) {
	entry := statEntry(t, "res")
	slot := &StatisticSlot{Resource: base.NewResourceKey("res")}

	err := slot.Entry(entry, 1, false, nil, func() error { return base.NewPriorityWaitSignal(5) })
	_, ok := base.IsPriorityWaitSignal(err)
	assert.True(t, ok)
	assert.EqualValues(t, 1, entry.CurNode.Threads())
	assert.EqualValues(t, 0, entry.CurNode.TotalPass(base.NowMillis()), "a priority-wait admission is not counted as an ordinary pass")
}
