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
package indexissue

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yugabyte/yb-idxlint/src/issue"
	"github.com/yugabyte/yb-idxlint/src/schema"
)

type testIndex struct {
	name    string
	columns []schema.Literal
	unique  bool
}

func strCols(names ...string) []schema.Literal {
	return lo.Map(names, func(n string, i int) schema.Literal {
		return schema.Literal{Kind: schema.StringLiteral, Value: n, Location: schema.Location{File: "schema.rb", Line: 1, Column: i + 1}}
	})
}

func symCols(names ...string) []schema.Literal {
	return lo.Map(names, func(n string, i int) schema.Literal {
		return schema.Literal{Kind: schema.SymbolLiteral, Value: n, Location: schema.Location{File: "schema.rb", Line: 1, Column: i + 1}}
	})
}

func buildTable(indexes ...testIndex) schema.TableDeclarations {
	table := schema.TableStatements{Table: "tbl"}
	for _, idx := range indexes {
		stmt := schema.IndexStatement{Table: "tbl", Name: idx.name, Columns: schema.ArrayArgument(idx.columns...)}
		if len(idx.columns) == 1 {
			stmt.Columns = schema.BareArgument(idx.columns[0])
		}
		if idx.unique {
			stmt.Options = []schema.KeywordOption{{
				Key:   schema.Literal{Kind: schema.SymbolLiteral, Value: "unique"},
				Value: schema.Literal{Kind: schema.TrueLiteral, Value: "true"},
			}}
		}
		table.Statements = append(table.Statements, stmt)
	}
	return schema.NewBuilder(false).BuildTable(table)
}

func offendingIndexes(offenses []Offense) []string {
	return lo.Map(offenses, func(o Offense, _ int) string { return o.Index.Name })
}

func TestDetectRedundantIndexes_NoRedundancy(t *testing.T) {
	table := buildTable(
		testIndex{name: "idx1", columns: strCols("col3")},
		testIndex{name: "idx2", columns: strCols("col2", "col3")},
		testIndex{name: "idx3", columns: strCols("col2", "col1")},
		testIndex{name: "idx4", columns: strCols("col1", "col2", "col3")},
	)
	assert.Empty(t, DetectRedundantIndexes(table))
}

func TestDetectRedundantIndexes_SimplePrefix(t *testing.T) {
	table := buildTable(
		testIndex{name: "idx1", columns: strCols("col1")},
		testIndex{name: "idx2", columns: strCols("col1", "col2")},
		testIndex{name: "idx3", columns: strCols("col1", "col2", "col3")},
	)

	offenses := DetectRedundantIndexes(table)
	require.Len(t, offenses, 2)
	assert.Equal(t, []string{"idx1", "idx2"}, offendingIndexes(offenses))

	// idx1 is a prefix of both longer indexes but is reported once
	assert.Equal(t, []string{"idx2", "idx3"}, lo.Map(offenses[0].CoveredBy, func(d schema.IndexDeclaration, _ int) string { return d.Name }))
	assert.Equal(t, []string{"idx3"}, lo.Map(offenses[1].CoveredBy, func(d schema.IndexDeclaration, _ int) string { return d.Name }))

	// every column of the redundant index is blamed
	assert.Equal(t, table.Declarations[1].Columns, offenses[1].Blamed)
	assert.Equal(t, "tbl", offenses[1].Table)
	assert.Equal(t, issue.RedundantIndexIssue, offenses[1].Issue)
}

func TestDetectRedundantIndexes_UniqueIsExempt(t *testing.T) {
	table := buildTable(
		testIndex{name: "idx1", columns: strCols("col1"), unique: true},
		testIndex{name: "idx2", columns: strCols("col1", "col2")},
	)
	assert.Empty(t, DetectRedundantIndexes(table))
}

func TestDetectRedundantIndexes_UniqueCanCover(t *testing.T) {
	table := buildTable(
		testIndex{name: "idx1", columns: strCols("col1")},
		testIndex{name: "idx2", columns: strCols("col1", "col2"), unique: true},
	)
	assert.Equal(t, []string{"idx1"}, offendingIndexes(DetectRedundantIndexes(table)))
}

func TestDetectRedundantIndexes_MixedLiteralForms(t *testing.T) {
	table := buildTable(
		testIndex{name: "idx1", columns: symCols("col1")},
		testIndex{name: "idx2", columns: symCols("col1", "col2")},
		testIndex{name: "idx3", columns: strCols("col1", "col2", "col3")},
	)
	assert.Equal(t, []string{"idx1", "idx2"}, offendingIndexes(DetectRedundantIndexes(table)))

	// representation alone never creates a match
	table = buildTable(
		testIndex{name: "idx1", columns: symCols("col1")},
		testIndex{name: "idx2", columns: strCols("col2", "col1")},
	)
	assert.Empty(t, DetectRedundantIndexes(table))
}

func TestDetectRedundantIndexes_LengthGuard(t *testing.T) {
	table := buildTable(
		testIndex{name: "long", columns: strCols("col1", "col2", "col3")},
		testIndex{name: "short", columns: strCols("col1", "col2")},
	)
	assert.Equal(t, []string{"short"}, offendingIndexes(DetectRedundantIndexes(table)))
}

func TestDetectRedundantIndexes_PartialOverlapIsNotPrefix(t *testing.T) {
	table := buildTable(
		testIndex{name: "idx1", columns: strCols("col1", "col3")},
		testIndex{name: "idx2", columns: strCols("col1", "col2", "col3")},
	)
	assert.Empty(t, DetectRedundantIndexes(table))
}

func TestDetectRedundantIndexes_IdenticalIndexes(t *testing.T) {
	table := buildTable(
		testIndex{name: "idx1", columns: strCols("col1", "col2")},
		testIndex{name: "idx2", columns: strCols("col1", "col2")},
	)
	offenses := DetectRedundantIndexes(table)
	assert.Equal(t, []string{"idx1", "idx2"}, offendingIndexes(offenses))
	assert.Equal(t, "idx2", offenses[0].CoveredBy[0].Name)
	assert.Equal(t, "idx1", offenses[1].CoveredBy[0].Name)
}

func TestDetectRedundantIndexes_SelfIsNeverCompared(t *testing.T) {
	table := buildTable(testIndex{name: "idx1", columns: strCols("col1", "col2")})
	assert.Empty(t, DetectRedundantIndexes(table))
}

func TestDetectRedundantIndexes_EmptyTable(t *testing.T) {
	assert.Empty(t, DetectRedundantIndexes(schema.TableDeclarations{Table: "tbl"}))
}

func TestDetectRedundantIndexes_Idempotent(t *testing.T) {
	table := buildTable(
		testIndex{name: "idx1", columns: strCols("col1")},
		testIndex{name: "idx2", columns: symCols("col1", "col2")},
		testIndex{name: "idx3", columns: strCols("col2")},
		testIndex{name: "idx4", columns: strCols("col2", "col1"), unique: true},
	)
	first := DetectRedundantIndexes(table)
	second := DetectRedundantIndexes(table)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, []string{"idx1", "idx3"}, offendingIndexes(first))
}
