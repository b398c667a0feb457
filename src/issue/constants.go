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

package issue

// Types
const (
	REDUNDANT_INDEX = "REDUNDANT_INDEX"
)

// Names and descriptions
const (
	REDUNDANT_INDEX_NAME        = "Redundant Index"
	REDUNDANT_INDEX_DESCRIPTION = "Unnecessary index since an index with the same combination until partway is available."
	REDUNDANT_INDEX_SUGGESTION  = "Drop the index; the covering index already serves the same lookups."
)

var RedundantIndexIssue = Issue{
	Type:        REDUNDANT_INDEX,
	Name:        REDUNDANT_INDEX_NAME,
	Description: REDUNDANT_INDEX_DESCRIPTION,
	Suggestion:  REDUNDANT_INDEX_SUGGESTION,
	DocsLink:    "https://docs.yugabyte.com/preview/yugabyte-voyager/known-issues/postgresql/#redundant-indexes",
}
