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

// Package fs holds the engine smoke suite: multi-block write and
// readback patterns layered on top of the raw device.
package fs

import (
	"github.com/pkg/errors"

	"github.com/flintfs/flint/catalog"
	"github.com/flintfs/flint/platform"
)

func init() {
	catalog.Register(&catalog.Suite{
		ID:    "fs",
		Name:  "fs",
		Types: catalog.Normal | catalog.Reentrant,
		DefineNames: []string{
			"FILES",
			"SIZE",
		},
		Cases: []*catalog.Case{
			{
				ID:           "fs_write_files",
				Name:         "fs_write_files",
				Path:         "tests/fs.toml",
				Types:        catalog.Normal | catalog.Reentrant,
				Permutations: 2,
				Defines: [][]int64{
					{4, 256},
					{16, 1024},
				},
				DefineMap: []int{0, 1},
				Run:       runWriteFiles,
			},
			{
				ID:           "fs_many_files",
				Name:         "fs_many_files",
				Path:         "tests/fs.toml",
				Types:        catalog.Normal,
				Permutations: 3,
				Defines: [][]int64{
					{0, 64},
					{8, 64},
					{64, 64},
				},
				DefineMap: []int{0, 1},
				// zero files degenerates to a no-op
				Filter: func(perm int) bool { return perm != 0 },
				Run:    runWriteFiles,
			},
			{
				ID:           "fs_reread",
				Name:         "fs_reread",
				Path:         "tests/fs.toml",
				Types:        catalog.Normal,
				Permutations: 1,
				DefineMap:    []int{catalog.Unset, catalog.Unset},
				Run:          runReread,
			},
		},
	})
}

// fill writes a deterministic per-file byte pattern.
func fill(buf []byte, file int64, perm int) {
	for i := range buf {
		buf[i] = byte(int64(i)*7 + file*13 + int64(perm) + 1)
	}
}

// runWriteFiles lays FILES regions of SIZE bytes across the device, one
// region per block, then reads every region back.
func runWriteFiles(b platform.Backend, cfg *platform.Config, params catalog.Params, perm int) error {
	files, err := params.Define(0)
	if err != nil {
		return err
	}
	size, err := params.Define(1)
	if err != nil {
		return err
	}
	if size > cfg.BlockSize {
		size = cfg.BlockSize
	}
	// round up to the program unit
	size = (size + cfg.ProgSize - 1) / cfg.ProgSize * cfg.ProgSize

	buf := make([]byte, size)
	for file := int64(0); file < files; file++ {
		block := file % cfg.BlockCount
		if err := b.Erase(block); err != nil {
			return err
		}
		fill(buf, file, perm)
		if err := b.Prog(block, 0, buf); err != nil {
			return err
		}
	}
	if err := b.Sync(); err != nil {
		return err
	}

	got := make([]byte, size)
	want := make([]byte, size)
	for file := files - 1; file >= 0; file-- {
		block := file % cfg.BlockCount
		if err := b.Read(block, 0, got); err != nil {
			return err
		}
		// later files overwrite earlier ones on a small device
		last := file
		for l := file + cfg.BlockCount; l < files; l += cfg.BlockCount {
			last = l
		}
		fill(want, last, perm)
		for i := range got {
			if got[i] != want[i] {
				return errors.Errorf("file %d corrupt at byte %d", file, i)
			}
		}
	}
	return nil
}

// runReread programs one block and reads it back in program-unit chunks
// at every offset.
func runReread(b platform.Backend, cfg *platform.Config, params catalog.Params, perm int) error {
	if err := b.Erase(0); err != nil {
		return err
	}
	buf := make([]byte, cfg.BlockSize)
	fill(buf, 0, perm)
	if err := b.Prog(0, 0, buf); err != nil {
		return err
	}

	chunk := make([]byte, cfg.ReadSize)
	for off := int64(0); off < cfg.BlockSize; off += cfg.ReadSize {
		if err := b.Read(0, off, chunk); err != nil {
			return err
		}
		for i := range chunk {
			if chunk[i] != buf[off+int64(i)] {
				return errors.Errorf("reread mismatch at %d+%d", off, i)
			}
		}
	}
	return nil
}
