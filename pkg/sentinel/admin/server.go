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

// Package admin serves the HTTP control surface for rule CRUD and metrics
// inspection: the same knobs LoadFlowRules/LoadDegradeRules/etc. expose to
// an embedding process, reachable over the wire for an operator or a
// sidecar pushing rule updates.
package admin

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	jsoniter "github.com/json-iterator/go"

	"mosn.io/sentinel/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// apiHandlerStore holds every registered admin route; RegisterHandler lets
// an embedding binary add its own alongside the defaults.
var apiHandlerStore map[string]*APIHandler

func init() {
	apiHandlerStore = map[string]*APIHandler{
		"/sentinel/version":         NewAPIHandler(Version, nil),
		"/sentinel/rules/flow":      NewAPIHandler(FlowRules, nil),
		"/sentinel/rules/degrade":   NewAPIHandler(DegradeRules, nil),
		"/sentinel/rules/authority": NewAPIHandler(AuthorityRules, nil),
		"/sentinel/rules/system":    NewAPIHandler(SystemRule, nil),
		"/sentinel/metrics":         NewAPIHandler(MetricsDump, nil),
		"/sentinel/status":          NewAPIHandler(Status, nil),
		"/metrics":                  NewAPIHandler(PrometheusHandler, nil),
		"/":                         NewAPIHandler(Help, nil),
	}
}

// RegisterHandler adds (or replaces) an admin route.
func RegisterHandler(pattern string, handler *APIHandler) {
	apiHandlerStore[pattern] = handler
	log.StartLogger.Infof("[admin] register api %s", pattern)
}

const buildVersion = "0.1.0"

func Version(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, buildVersion)
}

func Help(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	buf.WriteString("supported APIs:\n")
	for pattern := range apiHandlerStore {
		if pattern != "/" {
			buf.WriteString(pattern)
			buf.WriteRune('\n')
		}
	}
	w.Write(buf.Bytes())
}

// Server wraps an *http.Server routed through chi over the registered
// admin handlers.
type Server struct {
	*http.Server
}

// NewServer builds a Server bound to addr, wiring every handler currently
// in apiHandlerStore. Handlers registered after this call are not picked
// up; call NewServer once the embedding binary is done with
// RegisterHandler.
func NewServer(addr string) *Server {
	r := chi.NewRouter()
	for pattern, handler := range apiHandlerStore {
		r.Handle(pattern, handler)
	}
	return &Server{Server: &http.Server{Addr: addr, Handler: r}}
}

// Start runs the server in a new goroutine; errors after startup (other
// than a clean Shutdown) are logged, not returned, matching how a
// long-running admin listener is meant to be fire-and-forget.
func (s *Server) Start() {
	log.StartLogger.Infof("[admin] admin server listening on %s", s.Addr)
	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.DefaultLogger.Errorf("[admin] server stopped: %v", err)
		}
	}()
}
