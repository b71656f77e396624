// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package collapse defines the interface every stack collapser
// implements, plus format auto-detection across the supported ones.
package collapse

import (
	"io"

	"go.uber.org/zap"

	"github.com/vstools/vsprofToFolded/internal/collapse/vsprof"
	"github.com/vstools/vsprofToFolded/internal/folded"
)

// Folder converts one profiler report into weighted call-path samples.
// Implementations keep per-run state and must be reusable across
// sequential inputs.
type Folder interface {
	// Collapse consumes the whole report from r, pushing one weighted
	// sample per completed call path into sink.
	Collapse(r io.Reader, sink *folded.Occurrences) error

	// IsApplicable reports whether the first line of a candidate input is
	// in this folder's format. It must not need more than that one line,
	// so callers can sniff the format without consuming the input.
	IsApplicable(firstLine string) bool
}

// Folders returns one instance of every supported folder.
func Folders(log *zap.Logger) []Folder {
	return []Folder{
		vsprof.NewFolder(log),
	}
}

// Detect returns the folder that recognizes the first line of a candidate
// input, or nil when none does.
func Detect(log *zap.Logger, firstLine string) Folder {
	for _, f := range Folders(log) {
		if f.IsApplicable(firstLine) {
			return f
		}
	}
	return nil
}
