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

func resetSystemState() {
	node.ResetRegistriesForTest()
	LoadSystemRule(nil)
}

func TestSystemSlotSkipsOutboundResources(t *testing.T) {
	resetSystemState()
	defer resetSystemState()
	LoadSystemRule(&SystemRule{MaxConcurrency: 0})

	slot := &SystemSlot{Resource: base.NewResourceKeyOf("res", base.Outbound, base.ResTypeCommon)}
	called := false
	err := slot.Entry(&callctx.Entry{}, 1, false, nil, func() error { called = true; return nil })
	require.NoError(t, err)
	assert.True(t, called, "SystemSlot only guards inbound traffic")
}

func TestSystemSlotBlocksOnMaxConcurrency(t *testing.T) {
	resetSystemState()
	defer resetSystemState()
	LoadSystemRule(&SystemRule{MaxConcurrency: 1})
	node.GlobalInboundNode().IncreaseThreadNum()

	slot := &SystemSlot{Resource: base.NewResourceKey("res")}
	err := slot.Entry(&callctx.Entry{}, 1, false, nil, func() error { return nil })
	assert.True(t, base.IsBlockError(err))
}

func TestSystemSlotBlocksOnMaxQps(t *testing.T) {
	resetSystemState()
	defer resetSystemState()
	LoadSystemRule(&SystemRule{MaxQps: 1})
	node.GlobalInboundNode().AddPassRequest(base.NowMillis(), 2)

	slot := &SystemSlot{Resource: base.NewResourceKey("res")}
	err := slot.Entry(&callctx.Entry{}, 1, false, nil, func() error { return nil })
	assert.True(t, base.IsBlockError(err))
}

func TestSystemSlotBlocksOnMaxAvgRt(t *testing.T) {
	resetSystemState()
	defer resetSystemState()
	LoadSystemRule(&SystemRule{MaxAvgRtMs: 50})
	node.GlobalInboundNode().AddRtAndSuccess(base.NowMillis(), 200, 1)

	slot := &SystemSlot{Resource: base.NewResourceKey("res")}
	err := slot.Entry(&callctx.Entry{}, 1, false, nil, func() error { return nil })
	assert.True(t, base.IsBlockError(err))
}

func TestSystemSlotAdmitsWhenUnderEveryLimit(t *testing.T) {
	resetSystemState()
	defer resetSystemState()
	LoadSystemRule(&SystemRule{MaxConcurrency: 100, MaxQps: 100, MaxAvgRtMs: 1000})

	slot := &SystemSlot{Resource: base.NewResourceKey("res")}
	err := slot.Entry(&callctx.Entry{}, 1, false, nil, func() error { return nil })
	assert.NoError(t, err)
}
