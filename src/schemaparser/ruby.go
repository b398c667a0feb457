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
	"strings"

	log "github.com/sirupsen/logrus"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"

	"github.com/yugabyte/yb-idxlint/src/schema"
)

const (
	CREATE_TABLE_METHOD = "create_table"
	INDEX_METHOD        = "index"
	ADD_INDEX_METHOD    = "add_index"

	RUBY_CALL_NODE             = "call"
	RUBY_ARGUMENT_LIST_NODE    = "argument_list"
	RUBY_ARRAY_NODE            = "array"
	RUBY_HASH_NODE             = "hash"
	RUBY_PAIR_NODE             = "pair"
	RUBY_STRING_NODE           = "string"
	RUBY_STRING_CONTENT_NODE   = "string_content"
	RUBY_ESCAPE_SEQUENCE_NODE  = "escape_sequence"
	RUBY_INTERPOLATION_NODE    = "interpolation"
	RUBY_SIMPLE_SYMBOL_NODE    = "simple_symbol"
	RUBY_DELIMITED_SYMBOL_NODE = "delimited_symbol"
	RUBY_HASH_KEY_SYMBOL_NODE  = "hash_key_symbol"
	RUBY_TRUE_NODE             = "true"
	RUBY_FALSE_NODE            = "false"
	RUBY_NIL_NODE              = "nil"
	RUBY_COMMENT_NODE          = "comment"
)

/*
ParseRubySchema collects index statements from a schema written in the Rails schema DSL.

	create_table "users", force: :cascade do |t|      <- table block "users"
	  t.string "email", null: false
	  t.index ["email"], name: "idx_email", unique: true    <- index statement
	  t.index :created_at                                  <- index statement
	end
	add_index "users", ["email", "created_at"]          <- index statement of "users" (old dumps)

e.g. tree-sitter tree for `t.index ["col1"], unique: true`:

	(call receiver: (identifier) method: (identifier)
	  arguments: (argument_list
	    (array (string (string_content)))
	    (pair key: (hash_key_symbol) value: (true))))
*/
func ParseRubySchema(path string, content []byte) ([]schema.TableStatements, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	err := parser.SetLanguage(tree_sitter.NewLanguage(tree_sitter_ruby.Language()))
	if err != nil {
		return nil, fmt.Errorf("setting ruby grammar: %w", err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("parsing %q: no syntax tree produced", path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		log.Warnf("%q has syntax errors, statements around them may be skipped", path)
	}

	w := &rubyWalker{
		path:    path,
		content: content,
		groups:  newTableGroups(),
	}
	w.walk(root)
	return w.groups.list(), nil
}

type rubyWalker struct {
	path    string
	content []byte
	groups  *tableGroups
}

func (w *rubyWalker) walk(node *tree_sitter.Node) {
	if node.Kind() == RUBY_CALL_NODE {
		switch w.text(node.ChildByFieldName("method")) {
		case CREATE_TABLE_METHOD:
			w.processCreateTable(node)
			return
		case ADD_INDEX_METHOD:
			w.processAddIndex(node)
			return
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		w.walk(node.NamedChild(i))
	}
}

func (w *rubyWalker) processCreateTable(call *tree_sitter.Node) {
	positional, _ := w.arguments(call)
	if len(positional) == 0 {
		return
	}
	tableName := w.literal(positional[0])
	if !tableName.IsColumnReference() {
		log.Debugf("%s: create_table with non literal table name %q, skipping", tableName.Location, tableName.Value)
		return
	}

	block := call.ChildByFieldName("block")
	if block == nil {
		return
	}
	table := w.groups.get(tableName.Value, w.location(call))
	w.collectIndexCalls(block, table)
}

// collectIndexCalls finds <receiver>.index calls anywhere inside a create_table block.
func (w *rubyWalker) collectIndexCalls(node *tree_sitter.Node, table *schema.TableStatements) {
	if node.Kind() == RUBY_CALL_NODE {
		method := w.text(node.ChildByFieldName("method"))
		if method == CREATE_TABLE_METHOD {
			w.processCreateTable(node)
			return
		}
		if method == INDEX_METHOD && node.ChildByFieldName("receiver") != nil {
			positional, options := w.arguments(node)
			if len(positional) == 0 {
				return
			}
			table.Statements = append(table.Statements, w.indexStatement(table.Table, node, positional[0], options))
			return
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		w.collectIndexCalls(node.NamedChild(i), table)
	}
}

func (w *rubyWalker) processAddIndex(call *tree_sitter.Node) {
	positional, options := w.arguments(call)
	if len(positional) < 2 {
		return
	}
	tableName := w.literal(positional[0])
	if !tableName.IsColumnReference() {
		return
	}
	w.groups.add(w.indexStatement(tableName.Value, call, positional[1], options))
}

func (w *rubyWalker) indexStatement(table string, call *tree_sitter.Node, columns *tree_sitter.Node, options []schema.KeywordOption) schema.IndexStatement {
	stmt := schema.IndexStatement{
		Table:    table,
		Columns:  w.argument(columns),
		Options:  options,
		Location: w.location(call),
	}
	for _, opt := range options {
		if opt.Key.Value == "name" && opt.Value.IsColumnReference() {
			stmt.Name = opt.Value.Value
		}
	}
	return stmt
}

// arguments splits the argument list of a call into positional arguments and keyword options.
func (w *rubyWalker) arguments(call *tree_sitter.Node) ([]*tree_sitter.Node, []schema.KeywordOption) {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil, nil
	}
	var positional []*tree_sitter.Node
	var options []schema.KeywordOption
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		switch arg.Kind() {
		case RUBY_COMMENT_NODE:
		case RUBY_PAIR_NODE:
			options = append(options, w.pair(arg))
		case RUBY_HASH_NODE:
			for j := uint(0); j < arg.NamedChildCount(); j++ {
				if p := arg.NamedChild(j); p.Kind() == RUBY_PAIR_NODE {
					options = append(options, w.pair(p))
				}
			}
		default:
			positional = append(positional, arg)
		}
	}
	return positional, options
}

func (w *rubyWalker) pair(node *tree_sitter.Node) schema.KeywordOption {
	return schema.KeywordOption{
		Key:   w.literal(node.ChildByFieldName("key")),
		Value: w.literal(node.ChildByFieldName("value")),
	}
}

func (w *rubyWalker) argument(node *tree_sitter.Node) schema.Argument {
	if node.Kind() != RUBY_ARRAY_NODE {
		return schema.BareArgument(w.literal(node))
	}
	var elements []schema.Literal
	for i := uint(0); i < node.NamedChildCount(); i++ {
		elem := node.NamedChild(i)
		if elem.Kind() == RUBY_COMMENT_NODE {
			continue
		}
		elements = append(elements, w.literal(elem))
	}
	arg := schema.ArrayArgument(elements...)
	arg.Location = w.location(node)
	return arg
}

func (w *rubyWalker) literal(node *tree_sitter.Node) schema.Literal {
	if node == nil {
		return schema.Literal{Kind: schema.OtherLiteral}
	}
	lit := schema.Literal{Location: w.location(node)}
	switch node.Kind() {
	case RUBY_SIMPLE_SYMBOL_NODE:
		lit.Kind = schema.SymbolLiteral
		lit.Value = strings.TrimPrefix(w.text(node), ":")
	case RUBY_HASH_KEY_SYMBOL_NODE:
		lit.Kind = schema.SymbolLiteral
		lit.Value = w.text(node)
	case RUBY_DELIMITED_SYMBOL_NODE:
		lit.Value, lit.Kind = w.stringValue(node, schema.SymbolLiteral)
	case RUBY_STRING_NODE:
		lit.Value, lit.Kind = w.stringValue(node, schema.StringLiteral)
	case RUBY_TRUE_NODE:
		lit.Kind, lit.Value = schema.TrueLiteral, "true"
	case RUBY_FALSE_NODE:
		lit.Kind, lit.Value = schema.FalseLiteral, "false"
	case RUBY_NIL_NODE:
		lit.Kind, lit.Value = schema.NilLiteral, "nil"
	default:
		lit.Kind = schema.OtherLiteral
		lit.Value = w.text(node)
	}
	return lit
}

// stringValue joins the content of a string or delimited symbol; interpolated ones are not literals.
func (w *rubyWalker) stringValue(node *tree_sitter.Node, kind schema.LiteralKind) (string, schema.LiteralKind) {
	var sb strings.Builder
	for i := uint(0); i < node.NamedChildCount(); i++ {
		part := node.NamedChild(i)
		switch part.Kind() {
		case RUBY_STRING_CONTENT_NODE, RUBY_ESCAPE_SEQUENCE_NODE:
			sb.WriteString(w.text(part))
		case RUBY_INTERPOLATION_NODE:
			return w.text(node), schema.OtherLiteral
		}
	}
	return sb.String(), kind
}

func (w *rubyWalker) text(node *tree_sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(w.content[node.StartByte():node.EndByte()])
}

func (w *rubyWalker) location(node *tree_sitter.Node) schema.Location {
	pos := node.StartPosition()
	return schema.Location{
		File:   w.path,
		Line:   int(pos.Row) + 1,
		Column: int(pos.Column) + 1,
	}
}
