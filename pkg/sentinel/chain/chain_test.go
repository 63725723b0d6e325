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
)

// recordingSlot appends its name to a shared trace on both Entry and Exit,
// letting a test assert dispatch order without a real rule engine behind
// it.
type recordingSlot struct {
	name   string
	trace  *[]string
	blocks bool
}

func (s *recordingSlot) Name() string { return s.name }

func (s *recordingSlot) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next Next) error {
	*s.trace = append(*s.trace, "enter:"+s.name)
	if s.blocks {
		return base.NewBlockError(base.BlockFlow, base.ResourceKey{Name: "res"}, nil)
	}
	return next()
}

func (s *recordingSlot) Exit(entry *callctx.Entry, count int64, args []interface{}, next ExitNext) {
	*s.trace = append(*s.trace, "exit:"+s.name)
	next()
}

func TestChainRunsSlotsInOrderAndExitsInReverse(t *testing.T) {
	var trace []string
	c := New(
		&recordingSlot{name: "A", trace: &trace},
		&recordingSlot{name: "B", trace: &trace},
		&recordingSlot{name: "C", trace: &trace},
	)
	entry := &callctx.Entry{}

	require.NoError(t, c.Entry(entry, 1, false, nil))
	c.Exit(entry, 1, nil)

	assert.Equal(t, []string{
		"enter:A", "enter:B", "enter:C",
		"exit:C", "exit:B", "exit:A",
	}, trace)
}

func TestChainEntryShortCircuitsOnBlock(t *testing.T) {
	var trace []string
	c := New(
		&recordingSlot{name: "A", trace: &trace},
		&recordingSlot{name: "B", trace: &trace, blocks: true},
		&recordingSlot{name: "C", trace: &trace},
	)
	entry := &callctx.Entry{}

	err := c.Entry(entry, 1, false, nil)
	assert.True(t, base.IsBlockError(err))
	assert.Equal(t, []string{"enter:A", "enter:B"}, trace, "a slot that blocks must stop the chain before reaching later slots")
}

func TestPassThroughChainAlwaysAdmits(t *testing.T) {
	var c *Chain
	assert.NoError(t, c.Entry(&callctx.Entry{}, 1, false, nil))

	empty := New()
	assert.NoError(t, empty.Entry(&callctx.Entry{}, 1, false, nil))
}

func TestForResourceCapsAtMaxSlotChain(t *testing.T) {
	ResetRegistryForTest()
	defer ResetRegistryForTest()

	build := func(resource base.ResourceKey) *Chain { return New() }

	first := ForResource(base.NewResourceKey("res-1"), 1, build)
	assert.NotSame(t, passThrough, first)

	second := ForResource(base.NewResourceKey("res-2"), 1, build)
	assert.Same(t, passThrough, second, "a resource beyond the cap falls back to the shared pass-through chain")

	again := ForResource(base.NewResourceKey("res-1"), 1, build)
	assert.Same(t, first, again, "a resource already inside the cap keeps returning its own chain")
}
