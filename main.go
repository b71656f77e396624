// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vstools/vsprofToFolded/internal/collapse"
	"github.com/vstools/vsprofToFolded/internal/collapse/vsprof"
	"github.com/vstools/vsprofToFolded/internal/folded"
	"github.com/vstools/vsprofToFolded/internal/pprofconv"
)

const (
	formatFolded = "folded"
	formatPprof  = "pprof"
)

var (
	rootCmd = &cobra.Command{
		Use:   "vsprofToFolded [report-file]",
		Short: "Collapse Visual Studio profiler call-tree reports into folded stacks",
		Long: `Collapses the CSV export of the Visual Studio profiler's Call Tree view
into folded stack lines ("root;child;leaf weight"), the input format of
flame graph renderers. Reads from stdin when report-file is "-" or empty.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args)
		},
	}

	probeCmd = &cobra.Command{
		Use:   "probe [report-file]",
		Short: "Check whether an input is a supported call-tree report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return probe(args)
		},
	}

	outputPath string
	format     string
)

func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")
	rootCmd.Flags().StringVar(&format, "format", formatFolded, "output format, folded or pprof")
	rootCmd.AddCommand(probeCmd)
}

func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(args[0])
}

func run(args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	sink := folded.NewOccurrences()
	if err := vsprof.NewFolder(logger).Collapse(in, sink); err != nil {
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		out, err = os.Create(outputPath)
		if err != nil {
			return err
		}
		defer out.Close()
	}

	switch format {
	case formatFolded:
		_, err := sink.WriteTo(out)
		return err
	case formatPprof:
		prof := pprofconv.FromSamples(sink.Samples())
		if err := prof.CheckValid(); err != nil {
			return fmt.Errorf("invalid profile: %w", err)
		}
		return prof.Write(out)
	default:
		return fmt.Errorf("invalid output format specified: %s", format)
	}
}

// probe reads only the first line of the input and reports whether any
// supported folder recognizes it.
func probe(args []string) error {
	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	var firstLine string
	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		firstLine = scanner.Text()
	} else if err := scanner.Err(); err != nil {
		return err
	}

	if collapse.Detect(zap.NewNop(), firstLine) == nil {
		return fmt.Errorf("input does not match any supported call-tree report format")
	}
	fmt.Println("vsprof call-tree report")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
