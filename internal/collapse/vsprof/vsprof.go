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

// Package vsprof collapses call-tree reports exported from the Visual
// Studio built-in profiler into folded stack samples.
package vsprof

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/vstools/vsprofToFolded/internal/folded"
)

// startLine is the column header of a call-tree report export.
const startLine = "Level,Function Name,Number of Calls,Elapsed Inclusive Time %,Elapsed Exclusive Time %,Avg Elapsed Inclusive Time,Avg Elapsed Exclusive Time,Module Name,"

// Folder collapses Visual Studio profiler call-tree reports.
type Folder struct {
	log   *zap.Logger
	stack reconstructor
}

// NewFolder returns a reusable Folder. A nil logger disables logging.
func NewFolder(log *zap.Logger) *Folder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Folder{log: log}
}

// IsApplicable reports whether firstLine opens a call-tree report this
// folder understands.
func (f *Folder) IsApplicable(firstLine string) bool {
	return matchesStartLine(firstLine)
}

// Collapse reads one report from r and adds a weighted sample per call
// path to sink. A parse or structure error aborts the run immediately;
// samples already pushed into sink stay there. The folder's own state is
// cleared on every exit path, so it can process the next report either
// way.
func (f *Folder) Collapse(r io.Reader, sink *folded.Occurrences) error {
	defer f.stack.reset()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return err
		}
		f.log.Warn("file ended before start of call graph")
		return nil
	}
	if header := scanner.Text(); !matchesStartLine(header) {
		return fmt.Errorf("%w: expected first line to be\n    %s\nbut instead got\n    %s",
			ErrUnexpectedHeader, startLine, header)
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parsed, err := parseLine(line)
		if err != nil {
			return err
		}
		if err := f.stack.observe(parsed, sink); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// The report ends mid-tree by construction; whatever is still on the
	// stack is the last open path.
	f.stack.finish(sink)
	return nil
}

// matchesStartLine checks line against the fixed header signature. Some
// exports prepend a zero width no-break space; it has no bearing on the
// rest of the file, so it is stripped before matching. Anything after the
// signature on the header line is ignored.
func matchesStartLine(line string) bool {
	line = strings.TrimPrefix(strings.TrimSpace(line), "\ufeff")
	return strings.HasPrefix(line, startLine)
}
