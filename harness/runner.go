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

// Package harness enumerates the permutation space of a test catalog,
// filters it, and drives isolated runs against a provisioned storage
// backend. Execution is fully synchronous; exactly one backend instance
// exists at any time.
package harness

import (
	"fmt"
	"io"
	"time"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"

	"github.com/flintfs/flint/catalog"
	"github.com/flintfs/flint/harness/reporters"
	"github.com/flintfs/flint/platform"
	"github.com/flintfs/flint/resolve"
)

var plog = capnslog.NewPackageLogger("github.com/flintfs/flint", "harness")

// Runner owns one traversal of the catalog: the resolver it stages, the
// filters and window in effect, and the provisioner backing execution.
type Runner struct {
	Suites      []*catalog.Suite
	Resolver    *resolve.Resolver
	Filters     Filters
	Window      Window
	Provisioner platform.Provisioner

	// Persist and Trace are passed through to every backend
	// configuration.
	Persist string
	Trace   io.Writer

	Reporters reporters.Reporters

	// Out is the operator stream for running/skipped/finished lines.
	Out io.Writer
}

// assembleConfig builds a backend configuration from the currently staged
// permutation. Any unresolved predefine is a fatal configuration error.
func (r *Runner) assembleConfig() (*platform.Config, error) {
	var cfg platform.Config
	for _, bind := range []struct {
		p   resolve.Predefine
		dst *int64
	}{
		{resolve.ReadSize, &cfg.ReadSize},
		{resolve.ProgSize, &cfg.ProgSize},
		{resolve.BlockSize, &cfg.BlockSize},
		{resolve.BlockCount, &cfg.BlockCount},
		{resolve.BlockCycles, &cfg.BlockCycles},
		{resolve.CacheSize, &cfg.CacheSize},
		{resolve.LookaheadSize, &cfg.LookaheadSize},
		{resolve.EraseValue, &cfg.EraseValue},
		{resolve.EraseCycles, &cfg.EraseCycles},
	} {
		v, err := r.Resolver.Predefine(bind.p)
		if err != nil {
			return nil, err
		}
		*bind.dst = v
	}

	behavior, err := r.Resolver.Predefine(resolve.BadBlockBehavior)
	if err != nil {
		return nil, err
	}
	cfg.BadBlockBehavior = platform.BadBlockBehavior(behavior)

	cfg.PowerCycles = 0
	cfg.Persist = r.Persist
	cfg.Trace = r.Trace
	return &cfg, nil
}

// Run executes every permutation admitted by the filters, the window,
// and the cases' own dynamic filters. A failing case body is recorded
// and execution continues; provisioning and teardown failures abort.
func (r *Runner) Run() error {
	var passed, failed, rejected int
	step := 0

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

			for perm := 0; perm < SpaceSize(c); perm++ {
				if r.Filters.permSkipped(perm) {
					continue
				}
				// the step slot is consumed even when the dynamic
				// filter later rejects this permutation
				if !r.Window.Admit(step) {
					step++
					continue
				}
				step++

				casePerm, geomPerm := SplitPerm(perm)
				r.Resolver.StagePermutation(permRow(c, casePerm))
				r.Resolver.StageGeometry(&resolve.Geometries[geomPerm])

				id := fmt.Sprintf("%s#%d", c.ID, perm)

				if c.Filter != nil && !c.Filter(casePerm) {
					fmt.Fprintf(r.Out, "skipped %s\n", id)
					r.Reporters.ReportTest(id, reporters.Skip, 0)
					rejected++
					continue
				}

				cfg, err := r.assembleConfig()
				if err != nil {
					return err
				}

				b, err := r.Provisioner.Provision(cfg, casePerm)
				if err != nil {
					return errors.Wrap(err, "could not create block device")
				}

				fmt.Fprintf(r.Out, "running %s\n", id)
				start := time.Now()
				runErr := c.Run(b, cfg, r.Resolver, casePerm)
				duration := time.Since(start)

				if runErr != nil {
					plog.Errorf("--- FAIL: %s (%.3fs)", id, duration.Seconds())
					plog.Errorf("        %v", runErr)
					r.Reporters.ReportTest(id, reporters.Fail, duration)
					failed++
				} else {
					fmt.Fprintf(r.Out, "finished %s\n", id)
					r.Reporters.ReportTest(id, reporters.Pass, duration)
					passed++
				}

				if err := b.Destroy(); err != nil {
					return errors.Wrap(err, "could not destroy block device")
				}
			}
		}
	}

	plog.Noticef("%d passed %d failed %d filtered out of %d total",
		passed, failed, rejected, passed+failed+rejected)

	if failed > 0 {
		r.Reporters.SetResult(reporters.Fail)
	} else {
		r.Reporters.SetResult(reporters.Pass)
	}
	if err := r.Reporters.Output(); err != nil {
		return errors.Wrap(err, "writing run report")
	}

	if failed > 0 {
		return errors.Errorf("%d tests failed", failed)
	}
	return nil
}
