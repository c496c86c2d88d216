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
	"testing"

	"github.com/flintfs/flint/catalog"
	"github.com/flintfs/flint/resolve"
)

func TestPermSpace(t *testing.T) {
	g := len(resolve.Geometries)
	c := &catalog.Case{Permutations: 3}

	if got := SpaceSize(c); got != 3*g {
		t.Errorf("SpaceSize = %d, want %d", got, 3*g)
	}

	for perm := 0; perm < SpaceSize(c); perm++ {
		casePerm, geomPerm := SplitPerm(perm)
		if casePerm != perm/g || geomPerm != perm%g {
			t.Errorf("SplitPerm(%d) = (%d, %d)", perm, casePerm, geomPerm)
		}
		if back := ComposePerm(casePerm, geomPerm); back != perm {
			t.Errorf("ComposePerm(SplitPerm(%d)) = %d", perm, back)
		}
	}
}

func TestSuiteAndCaseFilters(t *testing.T) {
	s := &catalog.Suite{Name: "bd", Types: catalog.Normal | catalog.Valgrind}
	c := &catalog.Case{Name: "bd_wear", Types: catalog.Valgrind}

	for _, tt := range []struct {
		name      string
		f         Filters
		skipSuite bool
		skipCase  bool
	}{
		{name: "zero selects all"},
		{name: "suite match", f: Filters{Suite: "bd"}},
		{name: "suite mismatch", f: Filters{Suite: "fs"}, skipSuite: true},
		{name: "case match", f: Filters{Case: "bd_wear"}},
		{name: "case mismatch", f: Filters{Case: "bd_other"}, skipCase: true},
		{name: "type match", f: Filters{Types: catalog.Valgrind}},
		{name: "type mismatch", f: Filters{Types: catalog.Reentrant},
			skipSuite: true, skipCase: true},
		{name: "case-only type", f: Filters{Types: catalog.Normal}, skipCase: true},
		{name: "denied glob", f: Filters{Denied: []string{"bd_*"}}, skipCase: true},
		{name: "denied exact miss", f: Filters{Denied: []string{"fs_*"}}},
		{name: "denied malformed", f: Filters{Denied: []string{"[bad"}}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.suiteSkipped(s); got != tt.skipSuite {
				t.Errorf("suiteSkipped = %v, want %v", got, tt.skipSuite)
			}
			if got := tt.f.caseSkipped(c); got != tt.skipCase {
				t.Errorf("caseSkipped = %v, want %v", got, tt.skipCase)
			}
		})
	}
}

func TestPermFilters(t *testing.T) {
	g := len(resolve.Geometries)

	f := Filters{Perm: g + 1}
	for perm := 0; perm < 3*g; perm++ {
		if got := f.permSkipped(perm); got != (perm != g+1) {
			t.Errorf("Perm filter at %d: skipped = %v", perm, got)
		}
	}

	f = Filters{Perm: -1, Geometry: "nand"}
	for perm := 0; perm < 3*g; perm++ {
		_, geomPerm := SplitPerm(perm)
		want := resolve.Geometries[geomPerm].Name != "nand"
		if got := f.permSkipped(perm); got != want {
			t.Errorf("Geometry filter at %d: skipped = %v, want %v", perm, got, want)
		}
	}
}

func TestPermCount(t *testing.T) {
	g := len(resolve.Geometries)

	r := resolve.New()
	r.StageSuite([]string{"N"})

	c := &catalog.Case{
		Permutations: 4,
		Defines:      [][]int64{{0}, {1}, {2}, {3}},
		DefineMap:    []int{0},
		Filter:       func(perm int) bool { return perm%2 == 0 },
	}
	r.StageCase(c.DefineMap)

	f := Filters{Perm: -1}
	raw, accepted := f.permCount(r, c)
	if raw != 4*g {
		t.Errorf("raw = %d, want %d", raw, 4*g)
	}
	if accepted != 2*g {
		t.Errorf("accepted = %d, want %d", accepted, 2*g)
	}

	f = Filters{Perm: -1, Geometry: "default"}
	raw, accepted = f.permCount(r, c)
	if raw != 4 || accepted != 2 {
		t.Errorf("with geometry filter: %d/%d, want 2/4", accepted, raw)
	}
}
