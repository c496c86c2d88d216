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

package catalog

import "testing"

func TestTypesString(t *testing.T) {
	for _, tt := range []struct {
		types Types
		want  string
	}{
		{0, ""},
		{Normal, "n"},
		{Reentrant, "r"},
		{Valgrind, "V"},
		{Normal | Valgrind, "nV"},
		{Normal | Reentrant | Valgrind, "nrV"},
	} {
		if got := tt.types.String(); got != tt.want {
			t.Errorf("Types(%b) = %q, want %q", tt.types, got, tt.want)
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	defer func(prev []*Suite) { Suites = prev }(Suites)
	Suites = nil

	Register(&Suite{Name: "dup"})
	if len(Suites) != 1 {
		t.Fatalf("registered %d suites", len(Suites))
	}

	defer func() {
		if recover() == nil {
			t.Error("duplicate registration did not panic")
		}
	}()
	Register(&Suite{Name: "dup"})
}
