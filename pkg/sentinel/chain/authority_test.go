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

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/callctx"
)

func entryFromOrigin(origin string) *callctx.Entry {
	return &callctx.Entry{Context: &callctx.Context{Origin: origin}}
}

func TestAuthoritySlotWhiteListAllowsListedCallersOnly(t *testing.T) {
	LoadAuthorityRules([]*AuthorityRule{
		{Resource: base.NewResourceKey("res"), Strategy: AuthorityWhite, LimitApps: []string{"trusted"}},
	})
	defer LoadAuthorityRules(nil)

	slot := &AuthoritySlot{Resource: base.NewResourceKey("res")}

	assert.NoError(t, slot.Entry(entryFromOrigin("trusted"), 1, false, nil, func() error { return nil }))

	err := slot.Entry(entryFromOrigin("stranger"), 1, false, nil, func() error { return nil })
	assert.True(t, base.IsBlockError(err))
}

func TestAuthoritySlotBlackListDeniesListedCallersOnly(t *testing.T) {
	LoadAuthorityRules([]*AuthorityRule{
		{Resource: base.NewResourceKey("res"), Strategy: AuthorityBlack, LimitApps: []string{"banned"}},
	})
	defer LoadAuthorityRules(nil)

	slot := &AuthoritySlot{Resource: base.NewResourceKey("res")}

	err := slot.Entry(entryFromOrigin("banned"), 1, false, nil, func() error { return nil })
	assert.True(t, base.IsBlockError(err))

	assert.NoError(t, slot.Entry(entryFromOrigin("anyone-else"), 1, false, nil, func() error { return nil }))
}

func TestAuthoritySlotWithNoRulesAlwaysAdmits(t *testing.T) {
	LoadAuthorityRules(nil)
	slot := &AuthoritySlot{Resource: base.NewResourceKey("res")}
	assert.NoError(t, slot.Entry(entryFromOrigin("anyone"), 1, false, nil, func() error { return nil }))
}
