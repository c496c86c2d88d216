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

// Package platform defines the provisioning boundary between the harness
// and the storage backend under test. The harness assembles a Config from
// resolved parameters and asks a Provisioner for an isolated Backend,
// exactly one of which exists at a time.
package platform

import "io"

// BadBlockBehavior selects how an emulated backend reacts once a block's
// wear budget is exhausted.
type BadBlockBehavior int64

const (
	// BadBlockProgError reports an error on program to a worn block.
	BadBlockProgError BadBlockBehavior = iota
	// BadBlockEraseError reports an error on erase of a worn block.
	BadBlockEraseError
	// BadBlockReadError reports an error on read of a worn block.
	BadBlockReadError
	// BadBlockProgNoop silently drops programs to a worn block.
	BadBlockProgNoop
	// BadBlockEraseNoop silently drops erases of a worn block.
	BadBlockEraseNoop
)

// Config carries every parameter a backend needs, resolved for one
// permutation.
type Config struct {
	// storage geometry
	ReadSize   int64
	ProgSize   int64
	BlockSize  int64
	BlockCount int64

	// wear-cycle budget exposed to the engine under test; -1 disables
	// wear leveling
	BlockCycles int64

	CacheSize     int64
	LookaheadSize int64

	// emulation parameters
	EraseValue       int64 // byte value of erased storage
	EraseCycles      int64 // simulated erase budget per block, 0 unlimited
	BadBlockBehavior BadBlockBehavior
	PowerCycles      int64 // simulated power loss budget, 0 disabled

	// Persist, when set, names a file the backend loads its image from
	// on provision and writes it back to on sync and destroy.
	Persist string

	// Trace, when set, receives one line per backend operation.
	Trace io.Writer
}

// Backend is an isolated emulated storage device scoped to one case
// invocation.
type Backend interface {
	// ID returns a unique identifier for this instance.
	ID() string

	// Read reads from the given offset within a block. The offset and
	// length must be aligned to the configured read granularity.
	Read(block, off int64, p []byte) error

	// Prog programs the given offset within an erased block. The offset
	// and length must be aligned to the configured program granularity.
	Prog(block, off int64, p []byte) error

	// Erase erases a whole block, consuming one wear cycle.
	Erase(block int64) error

	// Sync flushes any persistent representation of the device.
	Sync() error

	// Destroy tears the instance down, persisting the image if
	// configured. The backend must not be used afterwards.
	Destroy() error
}

// Provisioner creates backends. The harness treats a provisioning
// failure as fatal; it cannot continue meaningfully without a device.
type Provisioner interface {
	Provision(cfg *Config, perm int) (Backend, error)
}
