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

package admin

import (
	"net/http"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/chain"
	"mosn.io/sentinel/pkg/sentinel/degrade"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// resourceMetrics is one resource's counters at the moment of the dump.
type resourceMetrics struct {
	Resource    string  `json:"resource"`
	PassQps     float64 `json:"pass_qps"`
	BlockQps    float64 `json:"block_qps"`
	AvgRt       float64 `json:"avg_rt"`
	Threads     int32   `json:"threads"`
	TotalPass   int64   `json:"total_pass"`
	Exception   int64   `json:"total_exception"`
	BreakerOpen bool    `json:"breaker_open"`
}

func breakerOpen(resource string) bool {
	for _, r := range degrade.RulesFor(resource) {
		if r.IsOpen() {
			return true
		}
	}
	return false
}

// MetricsDump renders the current per-resource counters, drawn straight
// from the cluster node registry so it reflects exactly what the flow and
// degrade slots are seeing.
func MetricsDump(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	now := base.NowMillis()
	all := node.AllClusterNodes()
	out := make([]resourceMetrics, 0, len(all))
	for name, cn := range all {
		out = append(out, resourceMetrics{
			Resource:    name,
			PassQps:     cn.PassQps(now),
			BlockQps:    cn.BlockQps(now),
			AvgRt:       cn.AvgRt(now),
			Threads:     cn.Threads(),
			TotalPass:   cn.TotalPass(now),
			Exception:   cn.TotalException(now),
			BreakerOpen: breakerOpen(name),
		})
	}
	data, _ := json.MarshalIndent(out, "", " ")
	w.Write(data)
}

type statusSummary struct {
	Contexts    int `json:"contexts"`
	Chains      int `json:"chains"`
	ClusterKeys int `json:"cluster_keys"`
}

// Status reports the size of the process-global registries, useful for
// spotting a runaway number of distinct context names or resources.
func Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	summary := statusSummary{
		Contexts:    node.EntranceNodeCount(),
		Chains:      chain.Count(),
		ClusterKeys: len(node.AllClusterNodes()),
	}
	data, _ := json.MarshalIndent(summary, "", " ")
	w.Write(data)
}
