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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/yb-idxlint/src/utils"
)

const railsSchema = `ActiveRecord::Schema[7.1].define(version: 2024_05_01_000000) do
  create_table "tbl", force: :cascade do |t|
    t.index ["col1"], name: "idx1"
    t.index ["col1", "col2"], name: "idx2"
    t.index ["col1", "col2", "col3"], name: "idx3", unique: true
  end
end
`

// resetFlags puts every flag of the commands back to its default so that tests do not leak into each other.
func resetFlags(t *testing.T, cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					require.NoError(t, sv.Replace(nil))
				} else {
					require.NoError(t, f.Value.Set(f.DefValue))
				}
				f.Changed = false
			})
		}
	}
}

type cmdRun struct {
	out      bytes.Buffer
	exitCode int
}

// setupCmdTest isolates the test from the user's config file and captures output and exit code.
func setupCmdTest(t *testing.T) *cmdRun {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(CONFIG_FILE_ENV_VAR, "")
	resetFlags(t, rootCmd, checkCmd, checkDbCmd)

	run := &cmdRun{exitCode: -1}
	rootCmd.SetOut(&run.out)
	utils.SetExitHook(func(code int) { run.exitCode = code })
	t.Cleanup(func() {
		utils.SetExitHook(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	return run
}

func writeFile(t *testing.T, dir string, rel string, content string) string {
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
