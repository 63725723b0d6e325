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

package flow

import (
	"sync"

	"mosn.io/sentinel/pkg/sentinel/cluster"
	"mosn.io/sentinel/pkg/sentinel/node"
)

var clusterClients sync.Map // ruleID uint64 -> *cluster.Client

// SetClusterClient attaches the cluster.Client a ClusterMode rule should
// delegate to. Rules created before this call fall back to the local
// controller until it is; the whole point of a copy-on-write registry is
// that callers may configure cluster mode independently of rule load
// order.
func SetClusterClient(ruleID uint64, client *cluster.Client) {
	clusterClients.Store(ruleID, client)
}

// clusterController delegates to the configured cluster.Client, falling
// back to the ordinary local controller when no client is registered for
// this rule (cluster mode assumes the client is always present in cluster
// mode; this local fallback just keeps an unconfigured cluster rule from
// admitting everything silently).
type clusterController struct {
	rule  *Rule
	local TrafficShapingController
}

func (c *clusterController) CanPass(stat *node.StatNode, acquireCount int64, prioritized bool) error {
	v, ok := clusterClients.Load(c.rule.ID)
	if !ok {
		return c.local.CanPass(stat, acquireCount, prioritized)
	}
	client := v.(*cluster.Client)
	return client.CanPass(c.rule.Cluster.FlowID, c.rule.Resource, acquireCount, prioritized)
}
