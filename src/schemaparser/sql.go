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
package schemaparser

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v5"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-idxlint/src/schema"
)

/*
ParseSqlSchema collects CREATE INDEX statements from PostgreSQL DDL.

e.g. CREATE UNIQUE INDEX idx_email ON public.users USING btree (email, created_at);
stmts:{stmt:{index_stmt:{idxname:"idx_email" relation:{schemaname:"public" relname:"users" inh:true relpersistence:"p" location:35}
access_method:"btree" index_params:{index_elem:{name:"email" ordering:SORTBY_DEFAULT nulls_ordering:SORTBY_NULLS_DEFAULT}}
index_params:{index_elem:{name:"created_at" ordering:SORTBY_DEFAULT nulls_ordering:SORTBY_NULLS_DEFAULT}} unique:true}} stmt_len:80}

Expression elements (index_elem with expr instead of name) and partial indexes (where_clause) are skipped.
*/
func ParseSqlSchema(path string, content []byte) ([]schema.TableStatements, error) {
	tree, err := pg_query.Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}

	groups := newTableGroups()
	for _, rawStmt := range tree.Stmts {
		indexStmt := rawStmt.GetStmt().GetIndexStmt()
		if indexStmt == nil {
			continue
		}
		loc := sqlStmtLocation(path, content, int(rawStmt.StmtLocation))
		tableName := lo.Ternary(indexStmt.Relation.GetSchemaname() != "",
			indexStmt.Relation.GetSchemaname()+"."+indexStmt.Relation.GetRelname(),
			indexStmt.Relation.GetRelname())

		if indexStmt.GetWhereClause() != nil {
			log.Debugf("%s: skipping partial index %q", loc, indexStmt.Idxname)
			continue
		}
		hasExpression := lo.SomeBy(indexStmt.IndexParams, func(p *pg_query.Node) bool {
			return p.GetIndexElem().GetExpr() != nil
		})
		if hasExpression {
			log.Debugf("%s: skipping expression index %q", loc, indexStmt.Idxname)
			continue
		}

		columns := lo.Map(indexStmt.IndexParams, func(p *pg_query.Node, _ int) schema.Literal {
			return schema.Literal{Kind: schema.StringLiteral, Value: p.GetIndexElem().GetName(), Location: loc}
		})
		groups.add(schema.IndexStatement{
			Table:    tableName,
			Name:     indexStmt.Idxname,
			Columns:  schema.ArrayArgument(columns...),
			Options:  []schema.KeywordOption{uniqueOption(indexStmt.Unique, loc)},
			Location: loc,
		})
	}
	return groups.list(), nil
}

func uniqueOption(unique bool, loc schema.Location) schema.KeywordOption {
	value := schema.Literal{Kind: schema.FalseLiteral, Value: "false", Location: loc}
	if unique {
		value = schema.Literal{Kind: schema.TrueLiteral, Value: "true", Location: loc}
	}
	return schema.KeywordOption{
		Key:   schema.Literal{Kind: schema.SymbolLiteral, Value: schema.UNIQUE_OPTION, Location: loc},
		Value: value,
	}
}

// sqlStmtLocation skips the blanks and comments pg_query counts as part of a statement
// (stmt_location points right after the previous semicolon) and returns the 1-based position.
func sqlStmtLocation(path string, content []byte, offset int) schema.Location {
	i := offset
	for i < len(content) {
		switch {
		case content[i] == ' ' || content[i] == '\t' || content[i] == '\n' || content[i] == '\r':
			i++
		case i+1 < len(content) && content[i] == '-' && content[i+1] == '-':
			for i < len(content) && content[i] != '\n' {
				i++
			}
		case i+1 < len(content) && content[i] == '/' && content[i+1] == '*':
			end := i + 2
			for end+1 < len(content) && !(content[end] == '*' && content[end+1] == '/') {
				end++
			}
			i = end + 2
		default:
			return offsetToLocation(path, content, i)
		}
	}
	return offsetToLocation(path, content, min(offset, len(content)))
}

func offsetToLocation(path string, content []byte, offset int) schema.Location {
	line, col := 1, 1
	for _, b := range content[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return schema.Location{File: path, Line: line, Column: col}
}
