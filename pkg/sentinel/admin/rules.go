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
	"io/ioutil"
	"net/http"

	"mosn.io/sentinel/pkg/log"
	"mosn.io/sentinel/pkg/sentinel/chain"
	"mosn.io/sentinel/pkg/sentinel/degrade"
	"mosn.io/sentinel/pkg/sentinel/flow"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	body, _ := json.Marshal(map[string]string{"error": msg})
	w.Write(body)
}

// FlowRules dumps every configured flow rule (GET) or replaces the whole
// set (POST), keyed by the rules module's own resource index.
func FlowRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, _ := json.MarshalIndent(flow.AllRules(), "", " ")
		w.Write(data)
	case http.MethodPost:
		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read body failed: "+err.Error())
			return
		}
		var rules []*flow.Rule
		if err := json.Unmarshal(body, &rules); err != nil {
			writeError(w, http.StatusBadRequest, "decode rules failed: "+err.Error())
			return
		}
		flow.LoadRules(rules)
		log.DefaultLogger.Infof("[admin] loaded %d flow rules", len(rules))
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// DegradeRules dumps or replaces the circuit-breaker rule set.
func DegradeRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, _ := json.MarshalIndent(degrade.AllRules(), "", " ")
		w.Write(data)
	case http.MethodPost:
		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read body failed: "+err.Error())
			return
		}
		var rules []*degrade.Rule
		if err := json.Unmarshal(body, &rules); err != nil {
			writeError(w, http.StatusBadRequest, "decode rules failed: "+err.Error())
			return
		}
		degrade.LoadRules(rules)
		log.DefaultLogger.Infof("[admin] loaded %d degrade rules", len(rules))
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// AuthorityRules dumps or replaces the caller allow/deny-list rule set.
func AuthorityRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, _ := json.MarshalIndent(chain.AllAuthorityRules(), "", " ")
		w.Write(data)
	case http.MethodPost:
		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read body failed: "+err.Error())
			return
		}
		var rules []*chain.AuthorityRule
		if err := json.Unmarshal(body, &rules); err != nil {
			writeError(w, http.StatusBadRequest, "decode rules failed: "+err.Error())
			return
		}
		chain.LoadAuthorityRules(rules)
		log.DefaultLogger.Infof("[admin] loaded %d authority rules", len(rules))
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SystemRule dumps or replaces the single process-wide system rule.
func SystemRule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, _ := json.MarshalIndent(chain.CurrentSystemRule(), "", " ")
		w.Write(data)
	case http.MethodPost:
		body, err := ioutil.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read body failed: "+err.Error())
			return
		}
		rule := &chain.SystemRule{}
		if err := json.Unmarshal(body, rule); err != nil {
			writeError(w, http.StatusBadRequest, "decode rule failed: "+err.Error())
			return
		}
		chain.LoadSystemRule(rule)
		log.DefaultLogger.Infof("[admin] loaded system rule %+v", rule)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
