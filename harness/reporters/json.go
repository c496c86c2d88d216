// Copyright 2024 The flint Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reporters records per-permutation run outcomes for machine
// consumption alongside the human-readable operator stream.
package reporters

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Result is the outcome of one permutation, or of a whole run.
type Result string

const (
	Pass Result = "PASS"
	Fail Result = "FAIL"
	Skip Result = "SKIP"
)

// Test is one recorded permutation outcome.
type Test struct {
	Name     string        `json:"name"`
	Result   Result        `json:"result"`
	Duration time.Duration `json:"duration"`
}

// Report is the serialized form of a whole run.
type Report struct {
	Tests  []Test `json:"tests"`
	Result Result `json:"result"`
}

// Reporter receives one record per executed or dynamically-rejected
// permutation and the run's overall result.
type Reporter interface {
	ReportTest(name string, result Result, duration time.Duration)
	SetResult(result Result)
	Output() error
}

// Reporters fans out to a set of reporters.
type Reporters []Reporter

func (reps Reporters) ReportTest(name string, result Result, duration time.Duration) {
	for _, r := range reps {
		r.ReportTest(name, result, duration)
	}
}

func (reps Reporters) SetResult(result Result) {
	for _, r := range reps {
		r.SetResult(result)
	}
}

func (reps Reporters) Output() error {
	for _, r := range reps {
		if err := r.Output(); err != nil {
			return err
		}
	}
	return nil
}

type jsonReporter struct {
	Report

	filename string
	mutex    sync.Mutex
}

// NewJSONReporter writes the report to filename on Output.
func NewJSONReporter(filename string) Reporter {
	return &jsonReporter{filename: filename}
}

func (r *jsonReporter) ReportTest(name string, result Result, duration time.Duration) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.Tests = append(r.Tests, Test{
		Name:     name,
		Result:   result,
		Duration: duration,
	})
}

func (r *jsonReporter) SetResult(result Result) {
	r.Result = result
}

func (r *jsonReporter) Output() error {
	f, err := os.Create(r.filename)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	return enc.Encode(r.Report)
}

// DeserialiseReport reads a report back, for consumers that post-process
// run results.
func DeserialiseReport(filename string) (*Report, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
