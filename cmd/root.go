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
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yugabyte/yb-idxlint/src/utils"
)

var (
	cfgFile  string
	logDir   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "yb-idxlint",
	Short: "A CLI that finds redundant indexes in database schema definitions",
	Long: `A CLI that finds redundant indexes in database schema definitions.
An index is redundant when its columns, in order, are the leading columns of another index on the same table.
Schemas are read from Rails schema DSL files (schema.rb, Schemafile, *.schema), PostgreSQL DDL files (*.sql)
or from the catalog of a live PostgreSQL, MySQL or SQLite database.`,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		overrides, err := initConfig(cmd)
		if err != nil {
			utils.ErrExit("ERROR: %v", err)
		}
		if logDir != "" {
			err = utils.EnsureDir(logDir)
			if err != nil {
				utils.ErrExit("ERROR: log-dir: %v", err)
			}
		}
		err = InitLogging(logDir, logLevel, cmd.Name())
		if err != nil {
			utils.ErrExit("ERROR: %v", err)
		}
		logConfigOverrides(overrides)
	},

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		log.Errorf("command failed: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config-file", "c", "",
		"path of the config file; defaults to $"+CONFIG_FILE_ENV_VAR+" or ~/"+DEFAULT_CONFIG_FILE_NAME+".yaml")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"directory to write logs to (<log-dir>/logs/yb-idxlint-<command>.log); logs go to stderr when not set")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "",
		"log level for yb-idxlint. Accepted values: (trace, debug, info, warn, error, fatal, panic). Default: warn on stderr, info in log-dir")
}
