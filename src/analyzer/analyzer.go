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
package analyzer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/yugabyte/yb-idxlint/src/indexissue"
	"github.com/yugabyte/yb-idxlint/src/schema"
	"github.com/yugabyte/yb-idxlint/src/schemaparser"
)

var DefaultIncludePatterns = []string{"**/schema.rb", "**/Schemafile", "**/*.schema", "**/*.sql"}

type Options struct {
	Include      []string
	Exclude      []string
	ParallelJobs int
	FoldCase     bool
}

func (o Options) includePatterns() []string {
	if len(o.Include) == 0 {
		return DefaultIncludePatterns
	}
	return o.Include
}

func (o Options) parallelJobs() int {
	if o.ParallelJobs <= 0 {
		return runtime.NumCPU()
	}
	return o.ParallelJobs
}

type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

type Result struct {
	FilesInspected   int
	TablesInspected  int
	IndexesInspected int
	Offenses         []indexissue.Offense
	Errors           []FileError
}

func (r *Result) merge(other *Result) {
	r.TablesInspected += other.TablesInspected
	r.IndexesInspected += other.IndexesInspected
	r.Offenses = append(r.Offenses, other.Offenses...)
	r.Errors = append(r.Errors, other.Errors...)
}

// CollectFiles expands directories in paths into the schema files to inspect.
// Files named directly are kept whatever their name, unless an exclude pattern matches them.
func CollectFiles(paths []string, opts Options) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", path, err)
		}
		if !info.IsDir() {
			if matchAny(opts.Exclude, filepath.ToSlash(filepath.Base(path))) || matchAny(opts.Exclude, filepath.ToSlash(path)) {
				log.Infof("skipping excluded file %q", path)
				continue
			}
			files = append(files, filepath.Clean(path))
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(path, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if rel != "." && matchAny(opts.Exclude, rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if matchAny(opts.includePatterns(), rel) && !matchAny(opts.Exclude, rel) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %q: %w", path, err)
		}
	}
	files = lo.Uniq(files)
	sort.Strings(files)
	return files, nil
}

func matchAny(patterns []string, path string) bool {
	return lo.SomeBy(patterns, func(pattern string) bool {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			log.Warnf("invalid glob pattern %q: %v", pattern, err)
			return false
		}
		return matched
	})
}

// AnalyzeFiles parses and inspects files in parallel. The result lists offenses
// in file order, then table order, then declaration order.
func AnalyzeFiles(ctx context.Context, files []string, opts Options) (*Result, error) {
	results := make([]*Result, len(files))
	builder := schema.NewBuilder(opts.FoldCase)

	p := pool.New().WithContext(ctx).WithMaxGoroutines(opts.parallelJobs())
	for i, file := range files {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = analyzeFile(file, builder)
			return nil
		})
	}
	err := p.Wait()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	res := &Result{FilesInspected: len(files)}
	for _, r := range results {
		res.merge(r)
	}
	log.Infof("inspected %d files, %d tables, %d indexes: %d offenses, %d errors",
		res.FilesInspected, res.TablesInspected, res.IndexesInspected, len(res.Offenses), len(res.Errors))
	return res, nil
}

func analyzeFile(file string, builder *schema.Builder) *Result {
	log.Debugf("inspecting %q", file)
	content, err := os.ReadFile(file)
	if err != nil {
		log.Errorf("reading %q: %v", file, err)
		return &Result{Errors: []FileError{{File: file, Err: err}}}
	}
	tables, err := schemaparser.Parse(file, content)
	if err != nil {
		log.Errorf("parsing %q: %v", file, err)
		return &Result{Errors: []FileError{{File: file, Err: err}}}
	}
	return detect(tables, builder)
}

// AnalyzeTables runs the detection over tables that were not read from files, e.g. a database catalog.
func AnalyzeTables(ctx context.Context, tables []schema.TableStatements, opts Options) *Result {
	builder := schema.NewBuilder(opts.FoldCase)
	res := &Result{}
	for _, table := range tables {
		if ctx.Err() != nil {
			log.Warnf("analysis interrupted after %d of %d tables", res.TablesInspected, len(tables))
			break
		}
		res.merge(detect([]schema.TableStatements{table}, builder))
	}
	return res
}

func detect(tables []schema.TableStatements, builder *schema.Builder) *Result {
	res := &Result{}
	for _, table := range tables {
		decls := builder.BuildTable(table)
		res.TablesInspected++
		res.IndexesInspected += decls.Len()
		res.Offenses = append(res.Offenses, indexissue.DetectRedundantIndexes(decls)...)
	}
	return res
}
