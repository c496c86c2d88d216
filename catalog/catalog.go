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

// Package catalog holds the in-memory test corpus: suites, their cases,
// and the per-case permutation tables. The catalog is compiled ahead of
// time and registered here; the harness never validates it beyond
// duplicate detection, a malformed catalog is an unrecoverable input.
package catalog

import (
	"fmt"

	"github.com/flintfs/flint/platform"
)

// Types is a bitmask classifying suites and cases. A suite or case may
// carry several types at once; type filters select on intersection.
type Types uint32

const (
	Normal Types = 1 << iota
	Reentrant
	Valgrind
)

// String renders the mask in the harness's compact column form.
func (t Types) String() string {
	s := ""
	if t&Normal != 0 {
		s += "n"
	}
	if t&Reentrant != 0 {
		s += "r"
	}
	if t&Valgrind != 0 {
		s += "V"
	}
	return s
}

// Unset marks a define-map slot with no backing column in the case's
// permutation rows.
const Unset = -1

// Params lets a case body read the suite-scoped defines staged for the
// permutation it is running, by declared index. The harness's resolver
// satisfies it.
type Params interface {
	Define(index int) (int64, error)
}

// RunFunc is a case's entry point. It receives the provisioned backend,
// the configuration it was provisioned from, the staged parameters, and
// the case-local permutation number.
type RunFunc func(b platform.Backend, cfg *platform.Config, params Params, perm int) error

// Case is one test case within a suite.
type Case struct {
	ID    string // unique across the catalog, e.g. "bd_read_write"
	Name  string
	Path  string // source path of the case in the corpus
	Types Types

	// Permutations is the case-local variant count P. The case's full
	// permutation space is P times the geometry count.
	Permutations int

	// Defines holds P rows of values for the suite defines this case
	// assigns. Rows are sparse: DefineMap[i] names the row column for
	// suite define i, or Unset. Defines may be nil when the case
	// assigns nothing.
	Defines   [][]int64
	DefineMap []int

	// Filter, when non-nil, rejects case-local permutations for
	// catalog-specific validity reasons. It is consulted only after the
	// permutation's values have been staged.
	Filter func(perm int) bool

	Run RunFunc
}

// Suite is an ordered group of cases sharing one declared define
// namespace.
type Suite struct {
	ID    string
	Name  string
	Types Types

	// DefineNames declares the suite-scoped define namespace; a define's
	// index is its position here.
	DefineNames []string

	Cases []*Case
}

// Suites is the registered catalog, in registration order.
var Suites []*Suite

// Register adds a suite to the catalog. It is usually called from init
// functions of test packages. Panics if the suite name is already taken.
func Register(s *Suite) {
	for _, prev := range Suites {
		if prev.Name == s.Name {
			panic(fmt.Sprintf("catalog: suite %v already registered", s.Name))
		}
	}
	Suites = append(Suites, s)
}
