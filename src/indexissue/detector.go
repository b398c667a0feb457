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
This package detects redundant indexes in the index declarations of a table.
An index is redundant when its full column list, in order, is the leading part
of another index of the same table; the longer index already serves every lookup
the shorter one could.
*/
package indexissue

import (
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/yugabyte/yb-idxlint/src/issue"
	"github.com/yugabyte/yb-idxlint/src/schema"
)

type Offense struct {
	Table string
	Index schema.IndexDeclaration
	// Blamed is every column of Index, the whole list is covered.
	Blamed []schema.ColumnToken
	// CoveredBy lists all the indexes Index is a prefix of, in declaration order.
	CoveredBy []schema.IndexDeclaration
	Issue     issue.Issue
}

/*
DetectRedundantIndexes compares every non-unique index A of the table with every other index B.

	A: (col1)             B: (col1, col2)        -> redundant
	A: (col1, col2)       B: (col1, col2, col3)  -> redundant
	A: (col2, col1)       B: (col1, col2, col3)  -> not a prefix
	A: (col1, col2, col3) B: (col1, col2)        -> A is longer, never redundant against B
	A: unique (col1)      B: (col1, col2)        -> unique indexes are never reported

An index covered by several others is reported once, with all of them in CoveredBy.
*/
func DetectRedundantIndexes(table schema.TableDeclarations) []Offense {
	var offenses []Offense
	for _, candidate := range table.Declarations {
		if candidate.IsUnique {
			continue
		}

		coveredBy := lo.Filter(table.Declarations, func(other schema.IndexDeclaration, _ int) bool {
			return other.ID != candidate.ID && isPrefixOf(candidate.Columns, other.Columns)
		})
		if len(coveredBy) == 0 {
			continue
		}

		log.Debugf("index %q on table %q is covered by %v", candidate.DisplayName(), table.Table,
			lo.Map(coveredBy, func(d schema.IndexDeclaration, _ int) string { return d.DisplayName() }))
		offenses = append(offenses, Offense{
			Table:     table.Table,
			Index:     candidate,
			Blamed:    candidate.Columns,
			CoveredBy: coveredBy,
			Issue:     issue.RedundantIndexIssue,
		})
	}
	return offenses
}

func isPrefixOf(prefix []schema.ColumnToken, columns []schema.ColumnToken) bool {
	if len(prefix) > len(columns) {
		return false
	}
	matched := lo.Filter(prefix, func(col schema.ColumnToken, i int) bool {
		return col.SameColumn(columns[i])
	})
	return len(matched) == len(prefix)
}
