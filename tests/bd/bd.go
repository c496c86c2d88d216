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

// Package bd holds the block-device sanity suite: raw read/prog/erase
// semantics of the emulated backend itself.
package bd

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/flintfs/flint/catalog"
	"github.com/flintfs/flint/platform"
)

func init() {
	catalog.Register(&catalog.Suite{
		ID:    "bd",
		Name:  "bd",
		Types: catalog.Normal,
		DefineNames: []string{
			"N",
			"ERASE_CYCLES",
		},
		Cases: []*catalog.Case{
			{
				ID:           "bd_erase_value",
				Name:         "bd_erase_value",
				Path:         "tests/bd.toml",
				Types:        catalog.Normal,
				Permutations: 1,
				DefineMap:    []int{catalog.Unset, catalog.Unset},
				Run:          runEraseValue,
			},
			{
				ID:           "bd_read_write",
				Name:         "bd_read_write",
				Path:         "tests/bd.toml",
				Types:        catalog.Normal,
				Permutations: 3,
				Defines: [][]int64{
					{1},
					{4},
					{16},
				},
				DefineMap: []int{0, catalog.Unset},
				Run:       runReadWrite,
			},
			{
				ID:           "bd_wear",
				Name:         "bd_wear",
				Path:         "tests/bd.toml",
				Types:        catalog.Normal | catalog.Valgrind,
				Permutations: 3,
				Defines: [][]int64{
					{0},
					{8},
					{32},
				},
				// feeds the ERASE_CYCLES predefine through the case layer
				DefineMap: []int{catalog.Unset, 0},
				// a zero budget never wears out, nothing to test there
				Filter: func(perm int) bool { return perm != 0 },
				Run:    runWear,
			},
		},
	})
}

func pattern(i, perm int) byte {
	return byte(i*31 + perm + 1)
}

// runEraseValue checks that erased storage reads back as the configured
// fill value.
func runEraseValue(b platform.Backend, cfg *platform.Config, params catalog.Params, perm int) error {
	if err := b.Erase(0); err != nil {
		return err
	}

	buf := make([]byte, cfg.BlockSize)
	if err := b.Read(0, 0, buf); err != nil {
		return err
	}
	for i, v := range buf {
		if v != byte(cfg.EraseValue) {
			return errors.Errorf("byte %d not erased: %#x", i, v)
		}
	}
	return nil
}

// runReadWrite programs N blocks worth of data and reads it back.
func runReadWrite(b platform.Backend, cfg *platform.Config, params catalog.Params, perm int) error {
	n, err := params.Define(0)
	if err != nil {
		return err
	}

	want := make([]byte, cfg.BlockSize)
	got := make([]byte, cfg.BlockSize)

	for i := int64(0); i < n; i++ {
		block := i % cfg.BlockCount
		if err := b.Erase(block); err != nil {
			return err
		}

		for j := range want {
			want[j] = pattern(j, perm)
		}
		if err := b.Prog(block, 0, want); err != nil {
			return err
		}

		if err := b.Read(block, 0, got); err != nil {
			return err
		}
		if !bytes.Equal(got, want) {
			return errors.Errorf("block %d read back wrong data", block)
		}
	}
	return nil
}

// runWear erases past the configured budget and expects the bad-block
// behavior to kick in on the next program.
func runWear(b platform.Backend, cfg *platform.Config, params catalog.Params, perm int) error {
	if cfg.EraseCycles <= 0 {
		return errors.New("wear case run without an erase budget")
	}

	for i := int64(0); i < cfg.EraseCycles; i++ {
		if err := b.Erase(0); err != nil {
			return err
		}
	}

	buf := make([]byte, cfg.ProgSize)
	err := b.Prog(0, 0, buf)
	switch cfg.BadBlockBehavior {
	case platform.BadBlockProgError:
		if err == nil {
			return errors.New("expected prog to fail on worn block")
		}
	default:
		if err != nil {
			return err
		}
	}
	return nil
}
