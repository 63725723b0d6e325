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
	"github.com/stretchr/testify/require"

	"mosn.io/sentinel/pkg/sentinel/base"
)

func TestDefaultNodePropagatesToItsClusterNode(t *testing.T) {
	ResetRegistriesForTest()
	entrance, ok := EntranceNodeFor("ctx", 1000)
	require.True(t, ok)

	child := entrance.DefaultNode.ChildOrCreate(base.NewResourceKey("res"))
	child.AddPassRequest(0, 5)

	cn, ok := LookupClusterNode("res")
	require.True(t, ok)
	assert.EqualValues(t, 5, cn.TotalPass(0), "a DefaultNode's counters must roll up into its resource's ClusterNode")
}

func TestChildOrCreateIsIdempotent(t *testing.T) {
	ResetRegistriesForTest()
	entrance, ok := EntranceNodeFor("ctx", 1000)
	require.True(t, ok)

	a := entrance.DefaultNode.ChildOrCreate(base.NewResourceKey("res"))
	b := entrance.DefaultNode.ChildOrCreate(base.NewResourceKey("res"))
	assert.Same(t, a, b)
}

func TestEntranceNodeForRespectsMaxContext(t *testing.T) {
	ResetRegistriesForTest()
	_, ok := EntranceNodeFor("ctx-a", 1)
	require.True(t, ok)

	_, ok = EntranceNodeFor("ctx-a", 1)
	assert.True(t, ok, "re-referencing an existing context never counts against the cap")

	_, ok = EntranceNodeFor("ctx-b", 1)
	assert.False(t, ok, "a brand new context beyond the cap is refused")
}

func TestClusterNodeOriginNodeIsPerCallerAndSticky(t *testing.T) {
	ResetRegistriesForTest()
	cn := ClusterNodeFor(base.NewResourceKey("res"))

	a := cn.OriginNode("callerA")
	again := cn.OriginNode("callerA")
	b := cn.OriginNode("callerB")

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
	assert.Nil(t, cn.OriginNode(""), "an empty origin never gets a tracked node")
}
