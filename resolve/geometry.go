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

package resolve

// Geometry is a named, immutable assignment of the disk-shape predefines.
// All geometries share one index map; only the value rows differ, which is
// what lets geometry staging stay an O(1) rebind.
type Geometry struct {
	Name   string
	Values []int64 // one value per entry of GeometryDefines, same order
}

var geometryDefines = []Predefine{
	ReadSize,
	ProgSize,
	BlockSize,
	BlockCount,
}

// GeometryDefines returns the predefines a geometry assigns, in row order.
func GeometryDefines() []Predefine {
	return append([]Predefine(nil), geometryDefines...)
}

// Geometries is the fixed table of disk shapes tests are enumerated
// against. The geometry axis of every case's permutation space has
// exactly len(Geometries) points, in this order.
var Geometries = []Geometry{
	{Name: "default", Values: []int64{16, 16, 512, 2048}},
	{Name: "eeprom", Values: []int64{1, 1, 512, 2048}},
	{Name: "emmc", Values: []int64{512, 512, 512, 2048}},
	{Name: "nor", Values: []int64{1, 1, 4096, 256}},
	{Name: "nand", Values: []int64{4096, 4096, 32768, 32}},
}

// GeometryByName returns the named geometry, or nil.
func GeometryByName(name string) *Geometry {
	for i := range Geometries {
		if Geometries[i].Name == name {
			return &Geometries[i]
		}
	}
	return nil
}

func geometrySlots() []int {
	slots := newSlots(PredefineCount)
	for i, p := range geometryDefines {
		slots[p] = i
	}
	return slots
}
