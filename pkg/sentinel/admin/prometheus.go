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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/node"
)

// promExporter pulls the current per-resource counters into a set of
// gauge vecs on every scrape, rather than pushing on every counter
// update: node.AllClusterNodes() is already the cheap, up-to-date
// source of truth, so there is nothing to keep in sync between scrapes.
type promExporter struct {
	registry *prometheus.Registry
	passQps  *prometheus.GaugeVec
	blockQps *prometheus.GaugeVec
	avgRt    *prometheus.GaugeVec
	threads  *prometheus.GaugeVec
}

func newPromExporter() *promExporter {
	reg := prometheus.NewRegistry()
	e := &promExporter{
		registry: reg,
		passQps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sentinel", Name: "pass_qps", Help: "admitted requests per second",
		}, []string{"resource"}),
		blockQps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sentinel", Name: "block_qps", Help: "rejected requests per second",
		}, []string{"resource"}),
		avgRt: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sentinel", Name: "avg_rt_ms", Help: "average response time in milliseconds",
		}, []string{"resource"}),
		threads: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sentinel", Name: "concurrency", Help: "in-flight request count",
		}, []string{"resource"}),
	}
	reg.MustRegister(e.passQps, e.blockQps, e.avgRt, e.threads)
	return e
}

func (e *promExporter) flush() {
	now := base.NowMillis()
	for name, cn := range node.AllClusterNodes() {
		e.passQps.WithLabelValues(name).Set(cn.PassQps(now))
		e.blockQps.WithLabelValues(name).Set(cn.BlockQps(now))
		e.avgRt.WithLabelValues(name).Set(cn.AvgRt(now))
		e.threads.WithLabelValues(name).Set(float64(cn.Threads()))
	}
}

var exporter = newPromExporter()

// PrometheusHandler refreshes the gauge vecs from the live node registry
// and serves them in the Prometheus text exposition format.
func PrometheusHandler(w http.ResponseWriter, r *http.Request) {
	exporter.flush()
	promhttp.HandlerFor(exporter.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
