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

	"mosn.io/sentinel/pkg/log"
)

// APIHandler wraps an http.HandlerFunc with an optional chain of auth
// checks; the first one to fail short-circuits the request.
type APIHandler struct {
	handler func(http.ResponseWriter, *http.Request)
	auths   []func(*http.Request) bool
	failed  func(http.ResponseWriter)
}

var _ http.Handler = (*APIHandler)(nil)

func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, auth := range h.auths {
		if !auth(r) {
			log.DefaultLogger.Errorf("[admin] request %s %s failed auth", r.Method, r.URL.Path)
			h.failed(w)
			return
		}
	}
	h.handler(w, r)
}

func defaultFailedFunc(w http.ResponseWriter) {
	w.WriteHeader(http.StatusForbidden)
}

// NewAPIHandler builds an APIHandler. A nil failed uses the default 403.
func NewAPIHandler(handler func(http.ResponseWriter, *http.Request), failed func(http.ResponseWriter), auths ...func(*http.Request) bool) *APIHandler {
	if failed == nil {
		failed = defaultFailedFunc
	}
	return &APIHandler{handler: handler, auths: auths, failed: failed}
}
