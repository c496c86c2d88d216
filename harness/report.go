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
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/flintfs/flint/catalog"
	"github.com/flintfs/flint/resolve"
)

// The listing operations traverse the catalog through the same filter
// and staging path as Run, so listed counts always match what an
// execution with identical filters would visit. None of them provision a
// backend.

// eachSelectedCase stages and visits every case surviving the suite and
// case filters, in catalog order.
func (r *Runner) eachSelectedCase(visit func(s *catalog.Suite, c *catalog.Case) error) error {
	for _, s := range r.Suites {
		if r.Filters.suiteSkipped(s) {
			continue
		}
		r.Resolver.StageSuite(s.DefineNames)

		for _, c := range s.Cases {
			if r.Filters.caseSkipped(c) {
				continue
			}
			r.Resolver.StageCase(c.DefineMap)

			if err := visit(s, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Summary prints one aggregate line over the selected scope.
func (r *Runner) Summary(w io.Writer) error {
	var suites, cases, raw, accepted int
	var types catalog.Types

	for _, s := range r.Suites {
		if r.Filters.suiteSkipped(s) {
			continue
		}
		r.Resolver.StageSuite(s.DefineNames)
		suites++
		types |= s.Types

		for _, c := range s.Cases {
			if r.Filters.caseSkipped(c) {
				continue
			}
			r.Resolver.StageCase(c.DefineMap)
			cases++

			cr, ca := r.Filters.permCount(r.Resolver, c)
			raw += cr
			accepted += ca
		}
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "\ttypes\tsuites\tcases\tperms")
	fmt.Fprintf(tw, "TOTAL\t%s\t%d\t%d\t%d/%d\n",
		types, suites, cases, accepted, raw)
	return tw.Flush()
}

// ListSuites prints each selected suite with its case and permutation
// counts.
func (r *Runner) ListSuites(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "suite\ttypes\tcases\tperms")

	for _, s := range r.Suites {
		if r.Filters.suiteSkipped(s) {
			continue
		}
		r.Resolver.StageSuite(s.DefineNames)

		var cases, raw, accepted int
		for _, c := range s.Cases {
			if r.Filters.caseSkipped(c) {
				continue
			}
			r.Resolver.StageCase(c.DefineMap)
			cases++

			cr, ca := r.Filters.permCount(r.Resolver, c)
			raw += cr
			accepted += ca
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%d/%d\n",
			s.ID, s.Types, cases, accepted, raw)
	}
	return tw.Flush()
}

// ListCases prints each selected case with its permutation counts.
func (r *Runner) ListCases(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "case\ttypes\tperms")

	err := r.eachSelectedCase(func(s *catalog.Suite, c *catalog.Case) error {
		raw, accepted := r.Filters.permCount(r.Resolver, c)
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\n", c.ID, c.Types, accepted, raw)
		return nil
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}

// ListPaths prints the catalog source path of each selected case.
func (r *Runner) ListPaths(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	err := r.eachSelectedCase(func(s *catalog.Suite, c *catalog.Case) error {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Path)
		return nil
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}

// ListDefines prints every surviving permutation with its geometry and
// the resolved value of each define the case assigns.
func (r *Runner) ListDefines(w io.Writer) error {
	return r.eachSelectedCase(func(s *catalog.Suite, c *catalog.Case) error {
		for perm := 0; perm < SpaceSize(c); perm++ {
			if r.Filters.permSkipped(perm) {
				continue
			}

			casePerm, geomPerm := SplitPerm(perm)
			r.Resolver.StagePermutation(permRow(c, casePerm))
			r.Resolver.StageGeometry(&resolve.Geometries[geomPerm])

			fmt.Fprintf(w, "%-36s GEOMETRY=%s",
				fmt.Sprintf("%s#%d", c.ID, perm),
				resolve.Geometries[geomPerm].Name)

			for k, name := range s.DefineNames {
				if k >= len(c.DefineMap) || c.DefineMap[k] == catalog.Unset {
					continue
				}
				v, err := r.Resolver.Define(k)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, " %s=%d", name, v)
			}
			fmt.Fprintln(w)
		}
		return nil
	})
}

// ListGeometries prints each geometry's predefines resolved through the
// full layer stack, so overrides show through exactly as they would
// during a run.
func (r *Runner) ListGeometries(w io.Writer) error {
	for i := range resolve.Geometries {
		g := &resolve.Geometries[i]
		if r.Filters.Geometry != "" && g.Name != r.Filters.Geometry {
			continue
		}
		r.Resolver.StageGeometry(g)

		fmt.Fprintf(w, "%-36s", g.Name)
		for _, p := range resolve.GeometryDefines() {
			v, err := r.Resolver.Predefine(p)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, " %s=%d", p, v)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// ListDefaults prints the built-in default layer.
func (r *Runner) ListDefaults(w io.Writer) error {
	fmt.Fprintf(w, "%-36s", "defaults")
	for _, p := range resolve.DefaultDefines() {
		v, err := r.Resolver.Predefine(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, " %s=%d", p, v)
	}
	fmt.Fprintln(w)
	return nil
}
