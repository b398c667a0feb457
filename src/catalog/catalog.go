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
This package reads index definitions out of a live database catalog and hands them
over as index statements, the same shape the schema file parsers produce.
*/
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-idxlint/src/schema"
)

const (
	POSTGRESQL = "postgresql"
	MYSQL      = "mysql"
	SQLITE     = "sqlite"
)

var ErrUnsupportedDBType = errors.New("unsupported database type")

var driverNames = map[string]string{
	POSTGRESQL: "pgx",
	MYSQL:      "mysql",
	SQLITE:     "sqlite3",
}

var SupportedDBTypes = []string{POSTGRESQL, MYSQL, SQLITE}

/*
Every query returns one row per key column of an index:

	schema_name | table_name | index_name | is_unique | column_name | position

column_name is NULL for expression key parts; such indexes are dropped.
*/
var indexColumnsQueries = map[string]string{
	POSTGRESQL: `SELECT n.nspname, t.relname, i.relname, ix.indisunique, a.attname, k.ord
FROM pg_catalog.pg_index ix
JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
JOIN pg_catalog.pg_class t ON t.oid = ix.indrelid
JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
LEFT JOIN pg_catalog.pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum AND k.attnum > 0
WHERE n.nspname = $1
  AND ix.indpred IS NULL
  AND k.ord <= ix.indnkeyatts
ORDER BY t.relname, i.relname, k.ord`,

	MYSQL: `SELECT TABLE_SCHEMA, TABLE_NAME, INDEX_NAME, NON_UNIQUE = 0, COLUMN_NAME, SEQ_IN_INDEX
FROM information_schema.STATISTICS
WHERE TABLE_SCHEMA = ?
ORDER BY TABLE_NAME, INDEX_NAME, SEQ_IN_INDEX`,

	SQLITE: `SELECT ?, m.name, il.name, il."unique" = 1, ii.name, ii.seqno
FROM sqlite_master AS m
JOIN pragma_index_list(m.name) AS il
JOIN pragma_index_info(il.name) AS ii
WHERE m.type = 'table' AND il.partial = 0
ORDER BY m.name, il.name, ii.seqno`,
}

type Reader struct {
	dbType string
	db     *sql.DB
}

func NewReader(dbType string, db *sql.DB) (*Reader, error) {
	if _, ok := indexColumnsQueries[dbType]; !ok {
		return nil, fmt.Errorf("%q: %w, supported types are %v", dbType, ErrUnsupportedDBType, SupportedDBTypes)
	}
	return &Reader{dbType: dbType, db: db}, nil
}

// Open connects to the database with the driver registered for dbType.
func Open(ctx context.Context, dbType string, uri string) (*sql.DB, error) {
	driver, ok := driverNames[dbType]
	if !ok {
		return nil, fmt.Errorf("%q: %w, supported types are %v", dbType, ErrUnsupportedDBType, SupportedDBTypes)
	}
	db, err := sql.Open(driver, uri)
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", dbType, err)
	}
	err = db.PingContext(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", dbType, err)
	}
	return db, nil
}

// FoldsCase reports whether column identifiers of this database compare case-insensitively.
func (r *Reader) FoldsCase() bool {
	return r.dbType == MYSQL
}

type indexColumn struct {
	schemaName string
	tableName  string
	indexName  string
	isUnique   bool
	columnName sql.NullString
	position   int
}

func (r *Reader) ReadTables(ctx context.Context, schemaName string) ([]schema.TableStatements, error) {
	query := indexColumnsQueries[r.dbType]
	log.Infof("reading indexes of schema %q from %s catalog", schemaName, r.dbType)
	log.Debugf("catalog query: %s", query)

	rows, err := r.db.QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, fmt.Errorf("querying %s catalog for indexes: %w", r.dbType, err)
	}
	defer rows.Close()

	var columns []indexColumn
	for rows.Next() {
		var c indexColumn
		err = rows.Scan(&c.schemaName, &c.tableName, &c.indexName, &c.isUnique, &c.columnName, &c.position)
		if err != nil {
			return nil, fmt.Errorf("scanning %s catalog row: %w", r.dbType, err)
		}
		columns = append(columns, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s catalog rows: %w", r.dbType, err)
	}
	return r.groupByTable(columns), nil
}

func (r *Reader) groupByTable(columns []indexColumn) []schema.TableStatements {
	var tables []schema.TableStatements
	tableChunks := lo.PartitionBy(columns, func(c indexColumn) string { return c.schemaName + "." + c.tableName })
	for _, tableColumns := range tableChunks {
		first := tableColumns[0]
		loc := schema.Location{File: fmt.Sprintf("%s:%s.%s", r.dbType, first.schemaName, first.tableName)}
		table := schema.TableStatements{Table: first.tableName, Location: loc}

		for _, indexColumns := range lo.PartitionBy(tableColumns, func(c indexColumn) string { return c.indexName }) {
			if lo.SomeBy(indexColumns, func(c indexColumn) bool { return !c.columnName.Valid }) {
				log.Debugf("skipping expression index %q on %s", indexColumns[0].indexName, loc)
				continue
			}
			table.Statements = append(table.Statements, r.indexStatement(indexColumns, loc))
		}
		if len(table.Statements) > 0 {
			tables = append(tables, table)
		}
	}
	return tables
}

func (r *Reader) indexStatement(indexColumns []indexColumn, loc schema.Location) schema.IndexStatement {
	first := indexColumns[0]
	literals := lo.Map(indexColumns, func(c indexColumn, _ int) schema.Literal {
		return schema.Literal{Kind: schema.StringLiteral, Value: c.columnName.String, Location: loc}
	})
	uniqueVal := lo.Ternary(first.isUnique,
		schema.Literal{Kind: schema.TrueLiteral, Value: "true"},
		schema.Literal{Kind: schema.FalseLiteral, Value: "false"})

	return schema.IndexStatement{
		Table:   first.tableName,
		Name:    first.indexName,
		Columns: schema.ArrayArgument(literals...),
		Options: []schema.KeywordOption{{
			Key:   schema.Literal{Kind: schema.SymbolLiteral, Value: schema.UNIQUE_OPTION},
			Value: uniqueVal,
		}},
		Location: loc,
	}
}

func IsSupportedDBType(dbType string) bool {
	return lo.Contains(SupportedDBTypes, strings.ToLower(dbType))
}
