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
package schema

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

const UNIQUE_OPTION = "unique"

type Builder struct {
	// FoldCase lower-cases column names, for sources with case-insensitive identifiers.
	FoldCase bool
}

func NewBuilder(foldCase bool) *Builder {
	return &Builder{FoldCase: foldCase}
}

/*
Build normalizes one index statement.

	t.index :col1                      -> [col1]
	t.index ["col1", :col2]            -> [col1, col2]
	t.index ["col1"], unique: true     -> [col1], unique
	t.index "lower(col1)"              -> [lower(col1)] (hosts drop expression indexes before this)
	t.index [col_var]                  -> not ok, column is not a literal

ok is false when the columns can not be determined; the caller drops such statements.
*/
func (b *Builder) Build(id int, stmt IndexStatement) (IndexDeclaration, bool) {
	literals := stmt.Columns.Elements
	if !stmt.Columns.IsArray {
		literals = []Literal{stmt.Columns.Literal}
	}
	if len(literals) == 0 {
		return IndexDeclaration{}, false
	}

	columns := make([]ColumnToken, 0, len(literals))
	for _, lit := range literals {
		if !lit.IsColumnReference() {
			log.Debugf("index %q on %q: column argument %q is a %s literal, skipping statement",
				stmt.Name, stmt.Table, lit.Value, lit.Kind)
			return IndexDeclaration{}, false
		}
		columns = append(columns, ColumnToken{
			Name:     b.normalize(lit.Value),
			Location: lit.Location,
		})
	}

	uniqueVal, found := stmt.Option(UNIQUE_OPTION)
	return IndexDeclaration{
		ID:       id,
		Name:     stmt.Name,
		Columns:  columns,
		IsUnique: found && uniqueVal.Kind == TrueLiteral,
		Location: stmt.Location,
	}, true
}

func (b *Builder) BuildTable(table TableStatements) TableDeclarations {
	decls := TableDeclarations{Table: table.Table}
	for i, stmt := range table.Statements {
		decl, ok := b.Build(i, stmt)
		if !ok {
			continue
		}
		decls.Declarations = append(decls.Declarations, decl)
	}
	return decls
}

func (b *Builder) normalize(name string) string {
	if b.FoldCase {
		return strings.ToLower(name)
	}
	return name
}
