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

package main

import (
	"io/ioutil"

	jsoniter "github.com/json-iterator/go"

	"mosn.io/sentinel/pkg/sentinel/chain"
	"mosn.io/sentinel/pkg/sentinel/degrade"
	"mosn.io/sentinel/pkg/sentinel/flow"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// bootstrapConfig is the rule bundle sentineld loads at startup; an
// admin client (or the /sentinel/rules/* endpoints) manages rules from
// here on.
type bootstrapConfig struct {
	AdminAddr      string                 `json:"admin_addr"`
	FlowRules      []*flow.Rule           `json:"flow_rules"`
	DegradeRules   []*degrade.Rule        `json:"degrade_rules"`
	AuthorityRules []*chain.AuthorityRule `json:"authority_rules"`
	SystemRule     *chain.SystemRule      `json:"system_rule"`
}

func loadBootstrapConfig(path string) (*bootstrapConfig, error) {
	if path == "" {
		return &bootstrapConfig{AdminAddr: ":8858"}, nil
	}
	body, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &bootstrapConfig{AdminAddr: ":8858"}
	if err := json.Unmarshal(body, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
