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

package log

import (
	"mosn.io/pkg/log"
)

// DefaultLogger is the process-wide logger every package under
// mosn.io/sentinel writes through. StartLogger is used for the handful of
// once-at-boot lines (config load, admin server start) that always print
// regardless of the configured level.
var (
	DefaultLogger log.ErrorLogger
	StartLogger   log.ErrorLogger
)

func init() {
	var err error
	DefaultLogger, err = CreateDefaultErrorLogger("", log.INFO)
	if err != nil {
		panic("sentinel: init default logger: " + err.Error())
	}
	StartLogger, err = CreateDefaultErrorLogger("", log.INFO)
	if err != nil {
		panic("sentinel: init start logger: " + err.Error())
	}
}

// InitDefaultLogger points DefaultLogger at a new output/level, for
// binaries that want to redirect logging away from stderr.
func InitDefaultLogger(output string, level log.Level) error {
	lg, err := CreateDefaultErrorLogger(output, level)
	if err != nil {
		return err
	}
	DefaultLogger = lg
	return nil
}
