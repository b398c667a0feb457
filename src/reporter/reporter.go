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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/gosuri/uitable"
	"github.com/samber/lo"

	"github.com/yugabyte/yb-idxlint/src/analyzer"
	"github.com/yugabyte/yb-idxlint/src/indexissue"
	"github.com/yugabyte/yb-idxlint/src/issue"
	"github.com/yugabyte/yb-idxlint/src/schema"
)

const (
	TXT_FORMAT  = "txt"
	JSON_FORMAT = "json"
)

var SupportedFormats = []string{TXT_FORMAT, JSON_FORMAT}

var ErrUnknownFormat = errors.New("unknown output format")

func Write(w io.Writer, format string, res *analyzer.Result) error {
	switch strings.ToLower(format) {
	case TXT_FORMAT:
		return writeTxt(w, res)
	case JSON_FORMAT:
		return writeJson(w, res)
	default:
		return fmt.Errorf("%q: %w, supported formats are %v", format, ErrUnknownFormat, SupportedFormats)
	}
}

// ================ txt report

func writeTxt(w io.Writer, res *analyzer.Result) error {
	var sb strings.Builder
	for _, offense := range res.Offenses {
		for _, token := range offense.Blamed {
			fmt.Fprintf(&sb, "%s: %s\n", token.Location, offense.Issue)
		}
	}
	for _, fileErr := range res.Errors {
		fmt.Fprintf(&sb, "%s\n", color.RedString("error: %s", fileErr.Error()))
	}

	if len(res.Offenses) > 0 {
		headerfmt := color.New(color.FgGreen, color.Underline).SprintFunc()
		table := uitable.New()
		table.MaxColWidth = 60
		table.Wrap = true
		table.AddRow(headerfmt("TABLE"), headerfmt("INDEX"), headerfmt("COLUMNS"), headerfmt("COVERED BY"))
		for _, offense := range res.Offenses {
			coveredBy := lo.Map(offense.CoveredBy, func(d schema.IndexDeclaration, _ int) string { return d.DisplayName() })
			table.AddRow(offense.Table, offense.Index.DisplayName(),
				strings.Join(offense.Index.ColumnNames(), ", "), strings.Join(coveredBy, ", "))
		}
		fmt.Fprintf(&sb, "\n%s\n\n", table)
	}

	fmt.Fprintf(&sb, "%s inspected, %s detected\n",
		english.Plural(res.FilesInspected, "file", ""), english.Plural(len(res.Offenses), "offense", ""))
	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("writing txt report: %w", err)
	}
	return nil
}

// ================ json report

type JsonReport struct {
	Summary  JsonSummary   `json:"summary"`
	Offenses []JsonOffense `json:"offenses"`
	Errors   []JsonError   `json:"errors"`
}

type JsonSummary struct {
	FilesInspected   int `json:"files_inspected"`
	TablesInspected  int `json:"tables_inspected"`
	IndexesInspected int `json:"indexes_inspected"`
	OffenseCount     int `json:"offense_count"`
}

type JsonOffense struct {
	Table     string               `json:"table"`
	Index     string               `json:"index"`
	Location  schema.Location      `json:"location"`
	Columns   []schema.ColumnToken `json:"columns"`
	CoveredBy []JsonCoveringIndex  `json:"covered_by"`
	Issue     issue.Issue          `json:"issue"`
}

type JsonCoveringIndex struct {
	Index    string          `json:"index"`
	Location schema.Location `json:"location"`
	Columns  []string        `json:"columns"`
}

type JsonError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

func newJsonReport(res *analyzer.Result) JsonReport {
	return JsonReport{
		Summary: JsonSummary{
			FilesInspected:   res.FilesInspected,
			TablesInspected:  res.TablesInspected,
			IndexesInspected: res.IndexesInspected,
			OffenseCount:     len(res.Offenses),
		},
		Offenses: lo.Map(res.Offenses, func(o indexissue.Offense, _ int) JsonOffense {
			return JsonOffense{
				Table:    o.Table,
				Index:    o.Index.DisplayName(),
				Location: o.Index.Location,
				Columns:  o.Blamed,
				CoveredBy: lo.Map(o.CoveredBy, func(d schema.IndexDeclaration, _ int) JsonCoveringIndex {
					return JsonCoveringIndex{Index: d.DisplayName(), Location: d.Location, Columns: d.ColumnNames()}
				}),
				Issue: o.Issue,
			}
		}),
		Errors: lo.Map(res.Errors, func(e analyzer.FileError, _ int) JsonError {
			return JsonError{File: e.File, Error: e.Err.Error()}
		}),
	}
}

func writeJson(w io.Writer, res *analyzer.Result) error {
	bytes, err := json.MarshalIndent(newJsonReport(res), "", "    ")
	if err != nil {
		return fmt.Errorf("marshalling json report: %w", err)
	}
	_, err = w.Write(append(bytes, '\n'))
	if err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}
	return nil
}
