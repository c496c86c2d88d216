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
	"path/filepath"

	"github.com/flintfs/flint/catalog"
	"github.com/flintfs/flint/resolve"
)

// SpaceSize returns the size of a case's full permutation space: the
// case-local variant count times the geometry count.
func SpaceSize(c *catalog.Case) int {
	return len(resolve.Geometries) * c.Permutations
}

// SplitPerm decomposes a permutation index into its case-local and
// geometry components. The geometry axis varies fastest.
func SplitPerm(perm int) (casePerm, geomPerm int) {
	g := len(resolve.Geometries)
	return perm / g, perm % g
}

// ComposePerm is the inverse of SplitPerm.
func ComposePerm(casePerm, geomPerm int) int {
	return casePerm*len(resolve.Geometries) + geomPerm
}

// Filters is the operator-selected scope: which suites, cases, and
// permutations a traversal visits. The zero value selects everything.
type Filters struct {
	Suite    string        // exact suite name, "" for all
	Case     string        // exact case name, "" for all
	Perm     int           // exact permutation index, -1 for all
	Geometry string        // exact geometry name, "" for all
	Types    catalog.Types // type-mask intersection, 0 for all

	// Denied holds case-name patterns from the denylist; matching cases
	// are rejected at case granularity.
	Denied []string
}

func (f *Filters) suiteSkipped(s *catalog.Suite) bool {
	return (f.Suite != "" && s.Name != f.Suite) ||
		(f.Types != 0 && s.Types&f.Types == 0)
}

func (f *Filters) caseSkipped(c *catalog.Case) bool {
	return (f.Case != "" && c.Name != f.Case) ||
		(f.Types != 0 && c.Types&f.Types == 0) ||
		f.denied(c)
}

func (f *Filters) denied(c *catalog.Case) bool {
	for _, pattern := range f.Denied {
		// malformed patterns never match
		if ok, _ := filepath.Match(pattern, c.Name); ok {
			return true
		}
	}
	return false
}

func (f *Filters) permSkipped(perm int) bool {
	_, geomPerm := SplitPerm(perm)
	return (f.Perm >= 0 && perm != f.Perm) ||
		(f.Geometry != "" && resolve.Geometries[geomPerm].Name != f.Geometry)
}

// permRow returns the case's value row for one case-local permutation,
// or nil when the case assigns nothing.
func permRow(c *catalog.Case, casePerm int) []int64 {
	if c.Defines == nil {
		return nil
	}
	return c.Defines[casePerm]
}

// permCount walks one case's permutation space and accumulates the raw
// count (survives the static filters) and the accepted count (also
// survives the case's dynamic filter). The resolver must already be
// staged for the case's suite and the case itself.
func (f *Filters) permCount(r *resolve.Resolver, c *catalog.Case) (raw, accepted int) {
	for perm := 0; perm < SpaceSize(c); perm++ {
		if f.permSkipped(perm) {
			continue
		}
		raw++

		casePerm, geomPerm := SplitPerm(perm)
		r.StagePermutation(permRow(c, casePerm))
		r.StageGeometry(&resolve.Geometries[geomPerm])

		if c.Filter != nil && !c.Filter(casePerm) {
			continue
		}
		accepted++
	}
	return raw, accepted
}
