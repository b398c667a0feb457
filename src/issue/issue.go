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

type Issue struct {
	// Type acts as ID for the issue; should be unique across all issues
	// for example: REDUNDANT_INDEX
	// It is part of the json report, so be careful about renaming it
	Type string `json:"type"`

	// readable name for the issue; used in reports, logs or any print statements
	Name        string `json:"name"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion,omitempty"`
	DocsLink    string `json:"docs_link,omitempty"`
}

func (i Issue) String() string {
	return "[" + i.Type + "] " + i.Description
}
