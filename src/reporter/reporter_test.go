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
package reporter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/yb-idxlint/src/analyzer"
	"github.com/yugabyte/yb-idxlint/src/indexissue"
	"github.com/yugabyte/yb-idxlint/src/schema"
)

func init() {
	color.NoColor = true
}

func sampleResult() *analyzer.Result {
	loc := func(line, col int) schema.Location { return schema.Location{File: "db/schema.rb", Line: line, Column: col} }
	decls := schema.TableDeclarations{
		Table: "tbl",
		Declarations: []schema.IndexDeclaration{
			{ID: 0, Name: "idx1", Location: loc(3, 5), Columns: []schema.ColumnToken{{Name: "col1", Location: loc(3, 14)}}},
			{ID: 1, Name: "idx2", Location: loc(4, 5), Columns: []schema.ColumnToken{{Name: "col1", Location: loc(4, 14)}, {Name: "col2", Location: loc(4, 22)}}},
		},
	}
	return &analyzer.Result{
		FilesInspected:   2,
		TablesInspected:  1,
		IndexesInspected: 2,
		Offenses:         indexissue.DetectRedundantIndexes(decls),
		Errors:           []analyzer.FileError{{File: "broken.sql", Err: errors.New("syntax error at end of input")}},
	}
}

func TestWriteTxt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "txt", sampleResult()))
	out := buf.String()
	lines := strings.Split(out, "\n")

	assert.Equal(t, "db/schema.rb:3:14: [REDUNDANT_INDEX] Unnecessary index since an index with the same combination until partway is available.", lines[0])
	assert.Equal(t, "error: broken.sql: syntax error at end of input", lines[1])
	assert.Contains(t, out, "COVERED BY")
	assert.Regexp(t, `tbl\s+idx1\s+col1\s+idx2`, out)
	assert.True(t, strings.HasSuffix(out, "2 files inspected, 1 offense detected\n"))
}

func TestWriteTxt_NoOffenses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "TXT", &analyzer.Result{FilesInspected: 1}))
	assert.Equal(t, "1 file inspected, 0 offenses detected\n", buf.String())
}

func TestWriteJson(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", sampleResult()))

	var report JsonReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, JsonSummary{FilesInspected: 2, TablesInspected: 1, IndexesInspected: 2, OffenseCount: 1}, report.Summary)
	require.Len(t, report.Offenses, 1)

	offense := report.Offenses[0]
	assert.Equal(t, "idx1", offense.Index)
	assert.Equal(t, 3, offense.Location.Line)
	assert.Equal(t, []schema.ColumnToken{{Name: "col1", Location: schema.Location{File: "db/schema.rb", Line: 3, Column: 14}}}, offense.Columns)
	require.Len(t, offense.CoveredBy, 1)
	assert.Equal(t, JsonCoveringIndex{Index: "idx2", Location: schema.Location{File: "db/schema.rb", Line: 4, Column: 5}, Columns: []string{"col1", "col2"}}, offense.CoveredBy[0])
	assert.Equal(t, "REDUNDANT_INDEX", offense.Issue.Type)
	assert.Equal(t, []JsonError{{File: "broken.sql", Error: "syntax error at end of input"}}, report.Errors)
}

func TestWriteJson_EmptyListsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", &analyzer.Result{}))
	assert.Contains(t, buf.String(), `"offenses": []`)
	assert.Contains(t, buf.String(), `"errors": []`)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", &analyzer.Result{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
