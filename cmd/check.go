/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yugabyte/yb-idxlint/src/analyzer"
	"github.com/yugabyte/yb-idxlint/src/reporter"
	"github.com/yugabyte/yb-idxlint/src/utils"
)

var (
	includePatterns []string
	excludePatterns []string
	outputFormat    string
	parallelJobs    int
	foldCase        bool
	failOnOffense   bool
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Find redundant indexes in schema files.",
	Long: `Find redundant indexes in schema files.
Directories are searched recursively for files matching the include patterns; files given explicitly are always inspected.
Supported files: Rails schema DSL (schema.rb, Schemafile, *.schema) and PostgreSQL DDL (*.sql).`,

	PreRun: func(cmd *cobra.Command, args []string) {
		validateOutputFormat()
		if parallelJobs < 0 {
			utils.ErrExit("ERROR: parallel-jobs must be positive, got %d", parallelJobs)
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		paths := lo.Ternary(len(args) == 0, []string{"."}, args)
		opts := analyzer.Options{
			Include:      includePatterns,
			Exclude:      excludePatterns,
			ParallelJobs: parallelJobs,
			FoldCase:     foldCase,
		}

		files, err := analyzer.CollectFiles(paths, opts)
		if err != nil {
			utils.ErrExit("ERROR: collecting schema files: %v", err)
		}
		if len(files) == 0 {
			log.Warnf("no schema files found in %v", paths)
		}

		res, err := analyzer.AnalyzeFiles(cmd.Context(), files, opts)
		if err != nil {
			utils.ErrExit("ERROR: analyzing schema files: %v", err)
		}
		writeReportAndExit(cmd, res)
	},
}

func registerReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputFormat, "output-format", reporter.TXT_FORMAT,
		fmt.Sprintf("format of the report. Accepted values: (%s)", strings.Join(reporter.SupportedFormats, ", ")))
	cmd.Flags().BoolVar(&failOnOffense, "fail-on-offense", true,
		"exit with code 1 when redundant indexes are found")
	cmd.Flags().BoolVar(&foldCase, "fold-case", false,
		"compare column names case-insensitively")
}

func validateOutputFormat() {
	if !lo.Contains(reporter.SupportedFormats, strings.ToLower(outputFormat)) {
		utils.ErrExit("ERROR: invalid output-format %q. Allowed formats are %v", outputFormat, reporter.SupportedFormats)
	}
}

func writeReportAndExit(cmd *cobra.Command, res *analyzer.Result) {
	err := reporter.Write(cmd.OutOrStdout(), outputFormat, res)
	if err != nil {
		utils.ErrExit("ERROR: writing report: %v", err)
	}
	if failOnOffense && len(res.Offenses) > 0 {
		utils.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	registerReportFlags(checkCmd)

	checkCmd.Flags().StringSliceVar(&includePatterns, "include", nil,
		fmt.Sprintf("glob patterns (doublestar syntax) of the files to inspect in directories (default %v)", analyzer.DefaultIncludePatterns))
	checkCmd.Flags().StringSliceVar(&excludePatterns, "exclude", nil,
		"glob patterns (doublestar syntax) of files and directories to skip, e.g. vendor/**")
	checkCmd.Flags().IntVar(&parallelJobs, "parallel-jobs", 0,
		"number of files inspected in parallel (default: number of CPUs)")
}
