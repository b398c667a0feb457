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
This package holds the comparable form of index declarations found in a table block.
Hosts (the Ruby/SQL schema parsers, the catalog readers) describe every index statement
as an IndexStatement; the Builder turns those into IndexDeclarations which are the only
input the redundancy detector looks at.
*/
package schema

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type LiteralKind int

const (
	OtherLiteral LiteralKind = iota
	SymbolLiteral
	StringLiteral
	TrueLiteral
	FalseLiteral
	NilLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case SymbolLiteral:
		return "symbol"
	case StringLiteral:
		return "string"
	case TrueLiteral:
		return "true"
	case FalseLiteral:
		return "false"
	case NilLiteral:
		return "nil"
	default:
		return "other"
	}
}

// Location is 1-based. Line 0 means the declaration has no position in a source file,
// e.g. when it was read from a database catalog.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Literal is one literal as the host parser saw it.
// Value has the symbol/quote markup already stripped: both :col1 and "col1" carry "col1".
type Literal struct {
	Kind     LiteralKind
	Value    string
	Location Location
}

func (l Literal) IsColumnReference() bool {
	return l.Kind == SymbolLiteral || l.Kind == StringLiteral
}

// Argument is the column argument of an index statement, either a bare literal
// or an array literal.
type Argument struct {
	Literal
	IsArray  bool
	Elements []Literal
}

func ArrayArgument(elements ...Literal) Argument {
	arg := Argument{IsArray: true, Elements: elements}
	if len(elements) > 0 {
		arg.Location = elements[0].Location
	}
	return arg
}

func BareArgument(lit Literal) Argument {
	return Argument{Literal: lit}
}

type KeywordOption struct {
	Key   Literal
	Value Literal
}

// IndexStatement is the host's decomposed view of one index statement
// (t.index, add_index, CREATE INDEX, a catalog row group).
type IndexStatement struct {
	Table    string
	Name     string
	Columns  Argument
	Options  []KeywordOption
	Location Location
}

func (s IndexStatement) Option(key string) (Literal, bool) {
	opt, ok := lo.Find(s.Options, func(o KeywordOption) bool {
		return o.Key.IsColumnReference() && o.Key.Value == key
	})
	return opt.Value, ok
}

// TableStatements is the ordered list of index statements of one table block.
type TableStatements struct {
	Table      string
	Location   Location
	Statements []IndexStatement
}

type ColumnToken struct {
	Name     string   `json:"name"`
	Location Location `json:"location"`
}

func (c ColumnToken) SameColumn(other ColumnToken) bool {
	return c.Name == other.Name
}

type IndexDeclaration struct {
	// ID is unique within the table; it is the position of the statement in the table block.
	ID       int
	Name     string
	Columns  []ColumnToken
	IsUnique bool
	Location Location
}

func (d IndexDeclaration) ColumnNames() []string {
	return lo.Map(d.Columns, func(c ColumnToken, _ int) string { return c.Name })
}

// DisplayName falls back to the column list for indexes declared without a name.
func (d IndexDeclaration) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("(%s)", strings.Join(d.ColumnNames(), ", "))
}

type TableDeclarations struct {
	Table        string
	Declarations []IndexDeclaration
}

func (t TableDeclarations) Len() int { return len(t.Declarations) }
