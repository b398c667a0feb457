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

/*
This package turns schema files into per-table lists of index statements.
Two formats are understood:
 1. Ruby schema DSL (Rails db/schema.rb, ridgepole Schemafile / *.schema), parsed with tree-sitter.
 2. PostgreSQL DDL (*.sql), parsed with pg_query_go.

Statements whose columns are not plain literals, expression indexes and partial
indexes are dropped here; the detector never sees them.
*/
package schemaparser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-idxlint/src/schema"
)

type Format string

const (
	UNKNOWN_FORMAT Format = ""
	RUBY_FORMAT    Format = "ruby"
	SQL_FORMAT     Format = "sql"
)

var ErrUnsupportedFormat = errors.New("unsupported schema file format")

func FormatForPath(path string) Format {
	base := filepath.Base(path)
	switch {
	case base == "Schemafile":
		return RUBY_FORMAT
	case strings.HasSuffix(base, ".rb"), strings.HasSuffix(base, ".schema"):
		return RUBY_FORMAT
	case strings.HasSuffix(strings.ToLower(base), ".sql"):
		return SQL_FORMAT
	default:
		return UNKNOWN_FORMAT
	}
}

func Parse(path string, content []byte) ([]schema.TableStatements, error) {
	format := FormatForPath(path)
	log.Debugf("parsing %q as %q schema", path, format)
	switch format {
	case RUBY_FORMAT:
		return ParseRubySchema(path, content)
	case SQL_FORMAT:
		return ParseSqlSchema(path, content)
	default:
		return nil, fmt.Errorf("%q: %w", path, ErrUnsupportedFormat)
	}
}

// tableGroups keeps the tables in order of first appearance.
type tableGroups struct {
	order  []string
	tables map[string]*schema.TableStatements
}

func newTableGroups() *tableGroups {
	return &tableGroups{tables: make(map[string]*schema.TableStatements)}
}

func (g *tableGroups) get(name string, loc schema.Location) *schema.TableStatements {
	t, ok := g.tables[name]
	if !ok {
		t = &schema.TableStatements{Table: name, Location: loc}
		g.tables[name] = t
		g.order = append(g.order, name)
	}
	return t
}

func (g *tableGroups) add(stmt schema.IndexStatement) {
	t := g.get(stmt.Table, stmt.Location)
	t.Statements = append(t.Statements, stmt)
}

func (g *tableGroups) list() []schema.TableStatements {
	res := make([]schema.TableStatements, 0, len(g.order))
	for _, name := range g.order {
		res = append(res, *g.tables[name])
	}
	return res
}
