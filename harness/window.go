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

package harness

// Window bounds an execution run to a slice of the step stream: skip the
// first Skip steps, admit at most Count steps after that, and of those
// only every Every-th. Steps are charged to every permutation surviving
// the static filters, whether or not the dynamic filter later rejects it.
type Window struct {
	Skip  int
	Count int // negative means unlimited
	Every int // values below 1 behave as 1
}

// Admit reports whether the given step falls inside the window.
func (w Window) Admit(step int) bool {
	if step < w.Skip {
		return false
	}
	if w.Count >= 0 && step-w.Skip >= w.Count {
		return false
	}
	every := w.Every
	if every < 1 {
		every = 1
	}
	return (step-w.Skip)%every == 0
}
