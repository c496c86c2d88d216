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

// Predefine identifies a parameter in the global, suite-independent
// namespace. Every suite may consume any predefine without declaring it.
type Predefine int

const (
	ReadSize Predefine = iota
	ProgSize
	BlockSize
	BlockCount
	BlockCycles
	CacheSize
	LookaheadSize
	EraseValue
	EraseCycles
	BadBlockBehavior

	PredefineCount int = iota
)

var predefineNames = [...]string{
	ReadSize:         "READ_SIZE",
	ProgSize:         "PROG_SIZE",
	BlockSize:        "BLOCK_SIZE",
	BlockCount:       "BLOCK_COUNT",
	BlockCycles:      "BLOCK_CYCLES",
	CacheSize:        "CACHE_SIZE",
	LookaheadSize:    "LOOKAHEAD_SIZE",
	EraseValue:       "ERASE_VALUE",
	EraseCycles:      "ERASE_CYCLES",
	BadBlockBehavior: "BADBLOCK_BEHAVIOR",
}

func (p Predefine) String() string {
	if p < 0 || int(p) >= PredefineCount {
		return "UNKNOWN_PREDEFINE"
	}
	return predefineNames[p]
}

// Predefines returns every predefine in index order.
func Predefines() []Predefine {
	ps := make([]Predefine, PredefineCount)
	for i := range ps {
		ps[i] = Predefine(i)
	}
	return ps
}

// Built-in defaults, the lowest-precedence layer. The disk-shape
// predefines are intentionally absent; geometries provide those.
var (
	defaultDefines = []Predefine{
		BlockCycles,
		CacheSize,
		LookaheadSize,
		EraseValue,
		EraseCycles,
		BadBlockBehavior,
	}

	defaultValues = []int64{
		-1,   // BLOCK_CYCLES, wear leveling disabled
		64,   // CACHE_SIZE
		16,   // LOOKAHEAD_SIZE
		0xff, // ERASE_VALUE
		0,    // ERASE_CYCLES, unlimited
		0,    // BADBLOCK_BEHAVIOR, error on prog
	}
)

// DefaultDefines returns the predefines covered by the built-in default
// layer, in index order.
func DefaultDefines() []Predefine {
	return append([]Predefine(nil), defaultDefines...)
}

func defaultSlots() []int {
	slots := newSlots(PredefineCount)
	for i, p := range defaultDefines {
		slots[p] = i
	}
	return slots
}
