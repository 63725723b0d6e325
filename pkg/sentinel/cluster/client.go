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
	"time"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// LocalFallback runs the ordinary reject-on-exceed check against a
// StatNode, used by Client when a remote request fails and
// FallbackToLocalWhenFail is set.
type LocalFallback func(stat *node.StatNode, acquireCount int64, prioritized bool) error

// Client wraps a TokenService with an admission policy: OK
// admits, SHOULD_WAIT sleeps then admits, BLOCKED rejects, and any
// transport failure either falls back to a local check or admits
// unconditionally.
type Client struct {
	service                 TokenService
	fallbackToLocalWhenFail bool
	fallback                LocalFallback
	fallbackNode            *node.StatNode
}

// NewClient builds a Client. fallback/fallbackNode may be nil when
// fallbackToLocalWhenFail is false.
func NewClient(service TokenService, fallbackToLocalWhenFail bool, fallback LocalFallback, fallbackNode *node.StatNode) *Client {
	return &Client{service: service, fallbackToLocalWhenFail: fallbackToLocalWhenFail, fallback: fallback, fallbackNode: fallbackNode}
}

func (c *Client) CanPass(flowID uint64, resource base.ResourceKey, acquireCount int64, prioritized bool) error {
	result, err := c.service.RequestToken(flowID, acquireCount, prioritized)
	if err != nil {
		return c.onFailure(resource, acquireCount, prioritized)
	}

	switch result.Status {
	case base.TokenOK:
		return nil
	case base.TokenShouldWait:
		if result.WaitMillis > 0 {
			time.Sleep(time.Duration(result.WaitMillis) * time.Millisecond)
		}
		return nil
	case base.TokenBlocked, base.TokenTooManyRequest:
		return base.NewBlockError(base.BlockFlow, resource, nil)
	default:
		return c.onFailure(resource, acquireCount, prioritized)
	}
}

func (c *Client) onFailure(resource base.ResourceKey, acquireCount int64, prioritized bool) error {
	if c.fallbackToLocalWhenFail && c.fallback != nil {
		return c.fallback(c.fallbackNode, acquireCount, prioritized)
	}
	return nil
}
