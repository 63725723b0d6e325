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

package callctx

import (
	stdcontext "context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextPushPopIsLIFO(t *testing.T) {
	cc := &Context{Name: "res"}
	a := &Entry{}
	b := &Entry{}

	cc.Push(a)
	cc.Push(b)
	assert.Same(t, b, cc.CurEntry())
	assert.Same(t, a, b.Parent())
	assert.Same(t, b, a.Child())

	forceUnwound := cc.Pop(b)
	assert.Empty(t, forceUnwound)
	assert.Same(t, a, cc.CurEntry())
	assert.Nil(t, a.Child())

	forceUnwound = cc.Pop(a)
	assert.Empty(t, forceUnwound)
	assert.Nil(t, cc.CurEntry())
}

func TestContextPopOutOfOrderForceUnwindsAbove(t *testing.T) {
	cc := &Context{Name: "res"}
	a, b, c := &Entry{}, &Entry{}, &Entry{}
	cc.Push(a)
	cc.Push(b)
	cc.Push(c)

	// Exit is called for 'a' while 'b' and 'c' are still open: both must
	// be force-unwound before 'a' can be popped.
	forceUnwound := cc.Pop(a)
	assert.ElementsMatch(t, []*Entry{c, b}, forceUnwound)
	assert.Nil(t, cc.CurEntry())
}

func TestWithContextRoundTrip(t *testing.T) {
	cc := &Context{Name: "res"}
	ctx := WithContext(stdcontext.Background(), cc)

	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Same(t, cc, got)

	_, ok = FromContext(stdcontext.Background())
	assert.False(t, ok)
}
