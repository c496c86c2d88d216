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

// Package testbd emulates a flash block device in memory: reads and
// programs at configurable granularity, whole-block erases that fill with
// the configured erase value, per-block wear accounting with bad-block
// injection, and optional persistence of the disk image to a file.
package testbd

import (
	"fmt"
	"os"

	"github.com/coreos/pkg/capnslog"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/flintfs/flint/platform"
)

var plog = capnslog.NewPackageLogger("github.com/flintfs/flint", "testbd")

// Device implements platform.Backend on an in-memory image.
type Device struct {
	id   string
	cfg  platform.Config
	data []byte  // BlockCount * BlockSize
	wear []int64 // erase count per block
}

var _ platform.Backend = (*Device)(nil)

// Provisioner provisions in-memory devices. It is the harness's default
// backend source.
type Provisioner struct{}

func (Provisioner) Provision(cfg *platform.Config, perm int) (platform.Backend, error) {
	return New(cfg)
}

// New creates a device from a resolved configuration. If cfg.Persist
// names an existing file, the image is seeded from it; missing or short
// files leave the remainder erased.
func New(cfg *platform.Config) (*Device, error) {
	if cfg.ReadSize <= 0 || cfg.ProgSize <= 0 ||
		cfg.BlockSize <= 0 || cfg.BlockCount <= 0 {
		return nil, errors.Errorf("testbd: invalid geometry %d/%d/%d/%d",
			cfg.ReadSize, cfg.ProgSize, cfg.BlockSize, cfg.BlockCount)
	}
	if cfg.BlockSize%cfg.ReadSize != 0 || cfg.BlockSize%cfg.ProgSize != 0 {
		return nil, errors.Errorf("testbd: block size %d not a multiple of read/prog sizes",
			cfg.BlockSize)
	}

	d := &Device{
		id:   uuid.New().String(),
		cfg:  *cfg,
		data: make([]byte, cfg.BlockCount*cfg.BlockSize),
		wear: make([]int64, cfg.BlockCount),
	}
	for i := range d.data {
		d.data[i] = byte(cfg.EraseValue)
	}

	if cfg.Persist != "" {
		img, err := os.ReadFile(cfg.Persist)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "testbd: loading image %s", cfg.Persist)
		}
		copy(d.data, img)
	}

	plog.Debugf("provisioned device %s (%d x %d byte blocks)",
		d.id, cfg.BlockCount, cfg.BlockSize)
	d.tracef("create(%s, read=%d, prog=%d, block=%dx%d)",
		d.id, cfg.ReadSize, cfg.ProgSize, cfg.BlockSize, cfg.BlockCount)
	return d, nil
}

func (d *Device) ID() string { return d.id }

func (d *Device) tracef(format string, args ...interface{}) {
	if d.cfg.Trace != nil {
		fmt.Fprintf(d.cfg.Trace, "testbd: "+format+"\n", args...)
	}
}

func (d *Device) check(op string, block, off, size, align int64) error {
	if block < 0 || block >= d.cfg.BlockCount {
		return errors.Errorf("testbd: %s out of range: block %d", op, block)
	}
	if off < 0 || off+size > d.cfg.BlockSize {
		return errors.Errorf("testbd: %s out of range: off %d size %d", op, off, size)
	}
	if off%align != 0 || size%align != 0 {
		return errors.Errorf("testbd: unaligned %s: off %d size %d align %d",
			op, off, size, align)
	}
	return nil
}

// worn reports whether the block's simulated erase budget is exhausted.
func (d *Device) worn(block int64) bool {
	return d.cfg.EraseCycles > 0 && d.wear[block] >= d.cfg.EraseCycles
}

func (d *Device) Read(block, off int64, p []byte) error {
	if err := d.check("read", block, off, int64(len(p)), d.cfg.ReadSize); err != nil {
		return err
	}
	if d.worn(block) && d.cfg.BadBlockBehavior == platform.BadBlockReadError {
		d.tracef("read(%d, %d, %d) -> bad block", block, off, len(p))
		return errors.Errorf("testbd: bad block %d on read", block)
	}
	copy(p, d.data[block*d.cfg.BlockSize+off:])
	d.tracef("read(%d, %d, %d)", block, off, len(p))
	return nil
}

func (d *Device) Prog(block, off int64, p []byte) error {
	if err := d.check("prog", block, off, int64(len(p)), d.cfg.ProgSize); err != nil {
		return err
	}
	if d.worn(block) {
		switch d.cfg.BadBlockBehavior {
		case platform.BadBlockProgError:
			d.tracef("prog(%d, %d, %d) -> bad block", block, off, len(p))
			return errors.Errorf("testbd: bad block %d on prog", block)
		case platform.BadBlockProgNoop:
			d.tracef("prog(%d, %d, %d) -> noop", block, off, len(p))
			return nil
		}
	}
	copy(d.data[block*d.cfg.BlockSize+off:], p)
	d.tracef("prog(%d, %d, %d)", block, off, len(p))
	return nil
}

func (d *Device) Erase(block int64) error {
	if err := d.check("erase", block, 0, d.cfg.BlockSize, 1); err != nil {
		return err
	}
	if !d.worn(block) {
		d.wear[block]++
	} else {
		switch d.cfg.BadBlockBehavior {
		case platform.BadBlockEraseError:
			d.tracef("erase(%d) -> bad block", block)
			return errors.Errorf("testbd: bad block %d on erase", block)
		case platform.BadBlockEraseNoop:
			d.tracef("erase(%d) -> noop", block)
			return nil
		}
	}
	start := block * d.cfg.BlockSize
	for i := start; i < start+d.cfg.BlockSize; i++ {
		d.data[i] = byte(d.cfg.EraseValue)
	}
	d.tracef("erase(%d)", block)
	return nil
}

// Wear returns the erase count of a block, for tests that assert on the
// wear model.
func (d *Device) Wear(block int64) int64 {
	return d.wear[block]
}

func (d *Device) Sync() error {
	d.tracef("sync()")
	return d.persist()
}

func (d *Device) persist() error {
	if d.cfg.Persist == "" {
		return nil
	}
	if err := os.WriteFile(d.cfg.Persist, d.data, 0644); err != nil {
		return errors.Wrapf(err, "testbd: persisting image %s", d.cfg.Persist)
	}
	return nil
}

func (d *Device) Destroy() error {
	d.tracef("destroy(%s)", d.id)
	if err := d.persist(); err != nil {
		return err
	}
	d.data = nil
	d.wear = nil
	return nil
}
