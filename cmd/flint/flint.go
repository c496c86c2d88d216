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
	"os"

	"github.com/coreos/pkg/capnslog"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/flintfs/flint/cli"

	// Test suites imported for registration side effects.
	_ "github.com/flintfs/flint/tests/bd"
	_ "github.com/flintfs/flint/tests/fs"
)

var (
	plog = capnslog.NewPackageLogger("github.com/flintfs/flint", "main")

	root = &cobra.Command{
		Use:   "flint [options] [suite[#case[#perm]]]",
		Short: "Run a storage-engine test corpus against emulated disks",
		Long: `Enumerate every permutation of test case and disk geometry in the
catalog, filter it, and run each surviving permutation against an
isolated emulated block device.
`,
		RunE:         runRun,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	cmdSummary = &cobra.Command{
		Use:          "summary [suite[#case[#perm]]]",
		Short:        "Show a quick summary of the selected permutations",
		RunE:         runSummary,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	cmdListSuites = &cobra.Command{
		Use:          "list-suites [suite[#case[#perm]]]",
		Short:        "List test suites",
		RunE:         runListSuites,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	cmdListCases = &cobra.Command{
		Use:          "list-cases [suite[#case[#perm]]]",
		Short:        "List test cases",
		RunE:         runListCases,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	cmdListPaths = &cobra.Command{
		Use:          "list-paths [suite[#case[#perm]]]",
		Short:        "List the catalog path for each test case",
		RunE:         runListPaths,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	cmdListDefines = &cobra.Command{
		Use:          "list-defines [suite[#case[#perm]]]",
		Short:        "List the resolved defines for each test permutation",
		RunE:         runListDefines,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	cmdListGeometries = &cobra.Command{
		Use:          "list-geometries",
		Short:        "List the disk geometries used for testing",
		RunE:         runListGeometries,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmdListDefaults = &cobra.Command{
		Use:          "list-defaults",
		Short:        "List the built-in default defines",
		RunE:         runListDefaults,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
)

func init() {
	root.AddCommand(cmdSummary)
	root.AddCommand(cmdListSuites)
	root.AddCommand(cmdListCases)
	root.AddCommand(cmdListPaths)
	root.AddCommand(cmdListDefines)
	root.AddCommand(cmdListGeometries)
	root.AddCommand(cmdListDefaults)
}

func main() {
	// FLINT_OPTS carries extra leading options, shell-quoted.
	if opts := os.Getenv("FLINT_OPTS"); opts != "" {
		words, err := shellquote.Split(opts)
		if err != nil {
			plog.Fatalf("parsing FLINT_OPTS: %v", err)
		}
		root.SetArgs(append(words, os.Args[1:]...))
	}
	cli.Execute(root)
}

func runRun(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(args)
	if err != nil {
		return err
	}
	return runner.Run()
}

func runSummary(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(args)
	if err != nil {
		return err
	}
	return runner.Summary(os.Stdout)
}

func runListSuites(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(args)
	if err != nil {
		return err
	}
	return runner.ListSuites(os.Stdout)
}

func runListCases(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(args)
	if err != nil {
		return err
	}
	return runner.ListCases(os.Stdout)
}

func runListPaths(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(args)
	if err != nil {
		return err
	}
	return runner.ListPaths(os.Stdout)
}

func runListDefines(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(args)
	if err != nil {
		return err
	}
	return runner.ListDefines(os.Stdout)
}

func runListGeometries(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(nil)
	if err != nil {
		return err
	}
	return runner.ListGeometries(os.Stdout)
}

func runListDefaults(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(nil)
	if err != nil {
		return err
	}
	return runner.ListDefaults(os.Stdout)
}
