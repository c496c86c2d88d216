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

// Package resolve implements the layered parameter resolver. Parameters
// live in two namespaces: predefines, global to the whole corpus, and
// defines, scoped to the active suite. Both resolve through an ordered
// stack of (index map, value row) layers where the first mapped layer
// wins.
//
// A Resolver is not safe for concurrent use; each traversal owns its own
// instance. Callers must stage the suite, case, permutation, and geometry
// for the current scope before reading through the corresponding layers.
package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Predefine layer precedence, highest first.
const (
	layerOverride = iota
	layerCase
	layerGeometry
	layerDefault

	predefineLayers = 4
	defineLayers    = 2 // defines fall back to neither geometry nor defaults
)

// unset marks a slot with no mapping in a layer's index map.
const unset = -1

func newSlots(n int) []int {
	slots := make([]int, n)
	for i := range slots {
		slots[i] = unset
	}
	return slots
}

// layer pairs an index map with a value row. A layer with either half
// missing never matches.
type layer struct {
	slots  []int
	values []int64
}

func (l layer) lookup(index int) (int64, bool) {
	if l.slots == nil || l.values == nil {
		return 0, false
	}
	if s := l.slots[index]; s != unset {
		return l.values[s], true
	}
	return 0, false
}

// Override is an operator-supplied name/value pair. It outranks every
// other layer and applies by name to both namespaces at once.
type Override struct {
	Name  string
	Value int64
}

// ParseOverride parses a "NAME=value" option. The value accepts any base
// strconv understands with a leading 0/0x, and may be negative.
func ParseOverride(s string) (Override, error) {
	name, val, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return Override{}, errors.Errorf("invalid define: %s", s)
	}
	n, err := strconv.ParseInt(val, 0, 64)
	if err != nil {
		// large unsigned constants like 0xffffffffffffffff still fit
		u, uerr := strconv.ParseUint(val, 0, 64)
		if uerr != nil {
			return Override{}, errors.Errorf("invalid define: %s", s)
		}
		n = int64(u)
	}
	return Override{Name: name, Value: n}, nil
}

// UnresolvedError reports a parameter with no mapping in any layer.
type UnresolvedError struct {
	Kind string // "predefine" or "define"
	Name string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("undefined %s %s", e.Kind, e.Name)
}

// Resolver resolves parameters for one traversal of the permutation
// space. The zero value is unusable; use New.
type Resolver struct {
	pre [predefineLayers]layer
	def [defineLayers]layer

	overrideNames  []string
	overrideValues []int64

	// active suite's declared define namespace
	defineNames []string
}

// New returns a Resolver with only the built-in default layer staged.
func New() *Resolver {
	r := &Resolver{}
	r.pre[layerDefault] = layer{slots: defaultSlots(), values: defaultValues}
	return r
}

// StageOverrides installs the operator override layer. It must be staged
// once, before any suite, and re-staging replaces the previous set.
func (r *Resolver) StageOverrides(ovs []Override) {
	r.overrideNames = make([]string, len(ovs))
	r.overrideValues = make([]int64, len(ovs))
	for i, ov := range ovs {
		r.overrideNames[i] = ov.Name
		r.overrideValues[i] = ov.Value
	}

	// alias overrides into predefine space by name
	slots := newSlots(PredefineCount)
	for i, name := range r.overrideNames {
		for j := 0; j < PredefineCount; j++ {
			if name == predefineNames[j] {
				slots[j] = i
			}
		}
	}
	r.pre[layerOverride] = layer{slots: slots, values: r.overrideValues}

	// the define-side alias map depends on the active suite
	r.def[layerOverride] = layer{}
}

// StageSuite activates a suite's declared define namespace and rebuilds
// the override alias map against it. Suite switches are rare; the
// quadratic name compare is fine here.
func (r *Resolver) StageSuite(defineNames []string) {
	r.defineNames = defineNames

	slots := newSlots(len(defineNames))
	for i, name := range r.overrideNames {
		for j, dname := range defineNames {
			if name == dname {
				slots[j] = i
			}
		}
	}
	r.def[layerOverride] = layer{slots: slots, values: r.overrideValues}

	// case-scoped layers are stale until the next case is staged
	r.def[layerCase] = layer{}
	r.pre[layerCase] = layer{}
}

// StageCase activates a case within the staged suite. The case's define
// map (suite define index to value-row slot, -1 for unset) is used as-is
// for the define namespace; for the predefine namespace it is
// reinterpreted by name, which is what lets a case satisfy a global
// parameter through its own suite-scoped definition.
func (r *Resolver) StageCase(defineMap []int) {
	r.def[layerCase] = layer{slots: defineMap}

	slots := newSlots(PredefineCount)
	for i, dname := range r.defineNames {
		for j := 0; j < PredefineCount; j++ {
			if dname == predefineNames[j] && i < len(defineMap) {
				slots[j] = defineMap[i]
			}
		}
	}
	r.pre[layerCase] = layer{slots: slots}
}

// StagePermutation binds the staged case's value row for one case-local
// permutation; a nil row unbinds the case layer. This runs for every
// point of the permutation space, so it only rebinds the row reference.
func (r *Resolver) StagePermutation(row []int64) {
	r.pre[layerCase].values = row
	r.def[layerCase].values = row
}

// StageGeometry binds one geometry's value row. Like permutation staging
// this is a row rebind only.
func (r *Resolver) StageGeometry(g *Geometry) {
	r.pre[layerGeometry] = layer{slots: geometrySlots(), values: g.Values}
}

// Predefine resolves a global parameter through override, case, geometry,
// and default layers, in that order.
func (r *Resolver) Predefine(p Predefine) (int64, error) {
	for i := range r.pre {
		if v, ok := r.pre[i].lookup(int(p)); ok {
			return v, nil
		}
	}
	return 0, &UnresolvedError{Kind: "predefine", Name: p.String()}
}

// Define resolves a suite-scoped parameter by its index in the staged
// suite's declared name list. There is no geometry or default fallback;
// an unmapped define is always an error.
func (r *Resolver) Define(index int) (int64, error) {
	for i := range r.def {
		if v, ok := r.def[i].lookup(index); ok {
			return v, nil
		}
	}
	return 0, &UnresolvedError{Kind: "define", Name: r.DefineName(index)}
}

// DefineName returns the staged suite's name for a define index.
func (r *Resolver) DefineName(index int) string {
	if index < 0 || index >= len(r.defineNames) {
		return fmt.Sprintf("define[%d]", index)
	}
	return r.defineNames[index]
}

// DefineCount returns the size of the staged suite's define namespace.
func (r *Resolver) DefineCount() int {
	return len(r.defineNames)
}
