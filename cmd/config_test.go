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
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/yb-idxlint/src/catalog"
)

func TestCheckConfigBinding_SuccessCases(t *testing.T) {
	run := setupCmdTest(t)
	dir := t.TempDir()
	writeFile(t, dir, "db/schema.rb", railsSchema)
	writeFile(t, dir, "vendor/gem/db/schema.rb", railsSchema)

	configFile := writeFile(t, t.TempDir(), "config.yaml", `
log-level: error
check:
  exclude:
    - vendor/**
  output-format: json
  parallel-jobs: 2
  fold-case: true
  fail-on-offense: false
`)

	rootCmd.SetArgs([]string{"check", dir, "--config-file", configFile})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Equal(t, "error", logLevel)
	assert.Equal(t, []string{"vendor/**"}, excludePatterns)
	assert.Equal(t, "json", outputFormat)
	assert.Equal(t, 2, parallelJobs)
	assert.True(t, foldCase)
	assert.False(t, failOnOffense)

	assert.Contains(t, run.out.String(), `"files_inspected": 1`)
	assert.Contains(t, run.out.String(), `"offense_count": 2`)
	assert.Equal(t, -1, run.exitCode, "fail-on-offense is off")
}

func TestCheckConfigBinding_CLIOverridesConfig(t *testing.T) {
	run := setupCmdTest(t)
	dir := t.TempDir()
	writeFile(t, dir, "db/schema.rb", railsSchema)

	configFile := writeFile(t, t.TempDir(), "config.yaml", `
check:
  output-format: json
  parallel-jobs: 4
`)

	rootCmd.SetArgs([]string{"check", dir, "--config-file", configFile, "--output-format", "txt"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Equal(t, "txt", outputFormat)
	assert.Equal(t, 4, parallelJobs)
	assert.True(t, strings.HasSuffix(run.out.String(), "1 file inspected, 2 offenses detected\n"))
	assert.Equal(t, 1, run.exitCode)
}

func TestCheckConfigBinding_EnvConfigFile(t *testing.T) {
	run := setupCmdTest(t)
	dir := t.TempDir()
	writeFile(t, dir, "db/schema.rb", railsSchema)

	configFile := writeFile(t, t.TempDir(), "config.yaml", `
check:
  include:
    - "**/*.sql"
`)
	t.Setenv(CONFIG_FILE_ENV_VAR, configFile)

	rootCmd.SetArgs([]string{"check", dir})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Equal(t, []string{"**/*.sql"}, includePatterns)
	assert.Equal(t, "0 files inspected, 0 offenses detected\n", run.out.String())
	assert.Equal(t, -1, run.exitCode)
}

func TestCheckDbConfigBinding_SourceSection(t *testing.T) {
	run := setupCmdTest(t)

	dbFile := filepath.Join(t.TempDir(), "app.sqlite3")
	db, err := catalog.Open(context.Background(), catalog.SQLITE, dbFile)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE tbl (col1 INTEGER, col2 TEXT)`,
		`CREATE INDEX idx1 ON tbl (col1)`,
		`CREATE INDEX idx2 ON tbl (col1, col2)`,
	} {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	configFile := writeFile(t, t.TempDir(), "config.yaml", fmt.Sprintf(`
source:
  db-type: sqlite
  db-uri: %s
check-db:
  output-format: json
`, dbFile))

	rootCmd.SetArgs([]string{"check-db", "--config-file", configFile})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Equal(t, catalog.SQLITE, source.DBType)
	assert.Equal(t, dbFile, source.URI)
	assert.Equal(t, "main", source.Schema)
	assert.Equal(t, "json", outputFormat)
	assert.Contains(t, run.out.String(), `"index": "idx1"`)
	assert.Contains(t, run.out.String(), `"file": "sqlite:main.tbl"`)
	assert.Equal(t, 1, run.exitCode)
}

func TestValidateConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "valid keys",
			content: `
log-dir: /tmp/idxlint
check:
  exclude: [vendor/**]
check-db:
  fail-on-offense: false
source:
  db-schema: public
`,
		},
		{name: "invalid global key", content: "export-dir: /tmp\n", wantErr: true},
		{name: "unknown section", content: "import-data:\n  batch-size: 10\n", wantErr: true},
		{name: "invalid section key", content: "check:\n  table-list: a,b\n", wantErr: true},
		{name: "source key from another command", content: "source:\n  db-password: secret\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.SetConfigType("yaml")
			require.NoError(t, v.ReadConfig(strings.NewReader(tt.content)))
			err := validateConfigFile(v)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
