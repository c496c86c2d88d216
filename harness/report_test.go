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

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/flintfs/flint/resolve"
)

func TestSummary(t *testing.T) {
	var records []record
	r := newTestRunner(&records)

	var out bytes.Buffer
	if err := r.Summary(&out); err != nil {
		t.Fatal(err)
	}

	g := len(resolve.Geometries)
	want := fmt.Sprintf("%d/%d", 3*g, 3*g)
	if !strings.Contains(out.String(), want) {
		t.Errorf("summary missing perm count %s:\n%s", want, out.String())
	}
	if !strings.Contains(out.String(), "nr") {
		t.Errorf("summary missing type column:\n%s", out.String())
	}
}

func TestListSuites(t *testing.T) {
	var records []record
	r := newTestRunner(&records)

	var out bytes.Buffer
	if err := r.ListSuites(&out); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"alpha", "beta"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("suite %s not listed:\n%s", want, out.String())
		}
	}

	r.Filters.Suite = "alpha"
	out.Reset()
	if err := r.ListSuites(&out); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "beta") {
		t.Errorf("filtered suite still listed:\n%s", out.String())
	}
}

func TestListCases(t *testing.T) {
	var records []record
	r := newTestRunner(&records)

	var out bytes.Buffer
	if err := r.ListCases(&out); err != nil {
		t.Fatal(err)
	}

	g := len(resolve.Geometries)
	var found bool
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "alpha_one") &&
			strings.Contains(line, fmt.Sprintf("%d/%d", 2*g, 2*g)) {
			found = true
		}
	}
	if !found {
		t.Errorf("alpha_one row wrong:\n%s", out.String())
	}
}

func TestListDefines(t *testing.T) {
	var records []record
	r := newTestRunner(&records)

	var out bytes.Buffer
	if err := r.ListDefines(&out); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	g := len(resolve.Geometries)
	if len(lines) != 3*g {
		t.Fatalf("listed %d permutations, want %d", len(lines), 3*g)
	}

	// first permutation of alpha_one: first geometry, X from row 0
	if !strings.Contains(lines[0], "alpha_one#0") ||
		!strings.Contains(lines[0], "GEOMETRY=default") ||
		!strings.Contains(lines[0], "X=1") {
		t.Errorf("first line wrong: %q", lines[0])
	}
	// second case perm switches the value row
	if !strings.Contains(lines[g], fmt.Sprintf("alpha_one#%d", g)) ||
		!strings.Contains(lines[g], "X=2") {
		t.Errorf("row-switch line wrong: %q", lines[g])
	}
	// an unmapped define never shows
	if strings.Contains(out.String(), "Y=") {
		t.Errorf("unmapped define listed:\n%s", out.String())
	}
}

func TestListGeometries(t *testing.T) {
	var records []record
	r := newTestRunner(&records)
	r.Resolver.StageOverrides([]resolve.Override{{Name: "BLOCK_COUNT", Value: 7}})

	var out bytes.Buffer
	if err := r.ListGeometries(&out); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(resolve.Geometries) {
		t.Fatalf("listed %d geometries, want %d", len(lines), len(resolve.Geometries))
	}
	// overrides shadow the geometry row, exactly as during a run
	for _, line := range lines {
		if !strings.Contains(line, "BLOCK_COUNT=7") {
			t.Errorf("override missing: %q", line)
		}
	}
	if !strings.Contains(out.String(), "nand") ||
		!strings.Contains(out.String(), "BLOCK_SIZE=32768") {
		t.Errorf("nand geometry wrong:\n%s", out.String())
	}
}

func TestListDefaults(t *testing.T) {
	var records []record
	r := newTestRunner(&records)

	var out bytes.Buffer
	if err := r.ListDefaults(&out); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"CACHE_SIZE=64", "ERASE_VALUE=255", "BLOCK_CYCLES=-1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("defaults missing %s:\n%s", want, out.String())
		}
	}
}
