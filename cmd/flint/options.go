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

package main

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/flintfs/flint/catalog"
	"github.com/flintfs/flint/harness"
	"github.com/flintfs/flint/harness/reporters"
	"github.com/flintfs/flint/platform/testbd"
	"github.com/flintfs/flint/resolve"
)

// catalogSuffix is stripped from path-qualified suite identifiers.
const catalogSuffix = ".toml"

var (
	optDefines  []string
	optGeometry string

	optNormal    bool
	optReentrant bool
	optValgrind  bool

	optSkip  int
	optCount int
	optEvery int

	optPersist  string
	optTrace    string
	optDenylist string
	optReport   string
)

func init() {
	pf := root.PersistentFlags()
	pf.StringArrayVarP(&optDefines, "define", "D", nil,
		"Override a test define as NAME=value. GEOMETRY=<name> filters by geometry instead.")
	pf.StringVarP(&optGeometry, "geometry", "G", "", "Filter by geometry.")
	pf.BoolVarP(&optNormal, "normal", "n", false, "Filter for normal tests. Can be combined.")
	pf.BoolVarP(&optReentrant, "reentrant", "r", false, "Filter for reentrant tests. Can be combined.")
	pf.BoolVarP(&optValgrind, "valgrind", "V", false, "Filter for Valgrind tests. Can be combined.")
	pf.IntVar(&optSkip, "skip", 0, "Skip the first n tests.")
	pf.IntVar(&optCount, "count", -1, "Stop after n tests.")
	pf.IntVar(&optEvery, "every", 1, "Only run every n tests, calculated after --skip.")
	pf.StringVarP(&optPersist, "persist", "p", "", "Persist the disk image to this file.")
	pf.StringVarP(&optTrace, "trace", "t", "", "Redirect trace output to this file, - for stdout.")
	pf.StringVar(&optDenylist, "denylist", "", "YAML file of case patterns to deny.")
	pf.StringVar(&optReport, "report", "", "Write a JSON run report to this file.")
}

// parseTestID splits a positional suite[#case[#perm]] identifier. The
// suite may be path-qualified and may carry the catalog file suffix;
// both are stripped.
func parseTestID(arg string) (suite, caseName string, perm int, err error) {
	perm = -1

	suite, rest, ok := strings.Cut(arg, "#")
	if ok {
		caseName, rest, ok = strings.Cut(rest, "#")
		if ok {
			perm, err = strconv.Atoi(rest)
			if err != nil || perm < 0 {
				return "", "", -1, errors.Errorf("could not parse test identifier: %s", arg)
			}
		}
	}

	suite = filepath.Base(suite)
	suite = strings.TrimSuffix(suite, catalogSuffix)
	return suite, caseName, perm, nil
}

// newRunner assembles a harness traversal from the parsed options. The
// same runner backs execution and every listing, so their selections
// always agree.
func newRunner(args []string) (*harness.Runner, error) {
	filters := harness.Filters{Perm: -1}

	if len(args) > 0 {
		suite, caseName, perm, err := parseTestID(args[0])
		if err != nil {
			return nil, err
		}
		filters.Suite = suite
		filters.Case = caseName
		filters.Perm = perm
	}

	var overrides []resolve.Override
	for _, def := range optDefines {
		// a reserved name selects the geometry filter instead
		if geom, ok := strings.CutPrefix(def, "GEOMETRY="); ok {
			optGeometry = geom
			continue
		}
		ov, err := resolve.ParseOverride(def)
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, ov)
	}
	filters.Geometry = optGeometry

	if optNormal {
		filters.Types |= catalog.Normal
	}
	if optReentrant {
		filters.Types |= catalog.Reentrant
	}
	if optValgrind {
		filters.Types |= catalog.Valgrind
	}

	denied, err := harness.ParseDenyList(optDenylist, time.Now())
	if err != nil {
		return nil, err
	}
	filters.Denied = denied

	if optSkip < 0 {
		return nil, errors.Errorf("invalid skip: %d", optSkip)
	}
	if optEvery < 1 {
		return nil, errors.Errorf("invalid every: %d", optEvery)
	}

	var trace io.Writer
	switch optTrace {
	case "":
	case "-":
		trace = os.Stdout
	default:
		f, err := os.Create(optTrace)
		if err != nil {
			return nil, errors.Wrap(err, "could not open for trace")
		}
		trace = f
	}

	var reps reporters.Reporters
	if optReport != "" {
		reps = append(reps, reporters.NewJSONReporter(optReport))
	}

	resolver := resolve.New()
	resolver.StageOverrides(overrides)

	return &harness.Runner{
		Suites:      catalog.Suites,
		Resolver:    resolver,
		Filters:     filters,
		Window:      harness.Window{Skip: optSkip, Count: optCount, Every: optEvery},
		Provisioner: testbd.Provisioner{},
		Persist:     optPersist,
		Trace:       trace,
		Reporters:   reps,
		Out:         os.Stdout,
	}, nil
}
