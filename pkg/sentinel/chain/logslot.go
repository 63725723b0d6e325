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

package chain

import (
	"mosn.io/sentinel/pkg/log"
	"mosn.io/sentinel/pkg/sentinel/base"
	"mosn.io/sentinel/pkg/sentinel/callctx"
)

// LogSlot records a debug line for every blocked entry and an error line
// for every internally-errored one. It never itself blocks a call.
type LogSlot struct {
	Resource base.ResourceKey
}

func (s *LogSlot) Name() string { return "Log" }

func (s *LogSlot) Entry(entry *callctx.Entry, count int64, prioritized bool, args []interface{}, next Next) error {
	err := next()
	if err == nil {
		return nil
	}
	if be, ok := err.(*base.BlockError); ok {
		log.DefaultLogger.Debugf("sentinel: resource %q blocked by %s", s.Resource.Name, be.Cause)
	} else if _, ok := base.IsPriorityWaitSignal(err); ok {
		// not an error worth logging
	} else {
		log.DefaultLogger.Errorf("sentinel: resource %q entry error: %v", s.Resource.Name, err)
	}
	return err
}

func (s *LogSlot) Exit(entry *callctx.Entry, count int64, args []interface{}, next ExitNext) {
	next()
}
