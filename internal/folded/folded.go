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

// Package folded holds the folded stack representation shared by all
// collapsers: one weighted sample per distinct call path.
package folded

import (
	"bufio"
	"fmt"
	"io"
	"sort"
)

// Separator joins function names into a call path, root first.
const Separator = ";"

// Sample is one weighted call path.
type Sample struct {
	Path   string
	Weight int64
}

// Occurrences accumulates sample weights per distinct call path. It is
// not safe for concurrent use; give each input stream its own instance.
type Occurrences struct {
	counts map[string]int64
}

func NewOccurrences() *Occurrences {
	return &Occurrences{counts: make(map[string]int64)}
}

// Add folds weight into the running total for path.
func (o *Occurrences) Add(path string, weight int64) {
	o.counts[path] += weight
}

// Len returns the number of distinct call paths seen so far.
func (o *Occurrences) Len() int {
	return len(o.counts)
}

// Samples returns the accumulated samples sorted by path.
func (o *Occurrences) Samples() []Sample {
	paths := make([]string, 0, len(o.counts))
	for p := range o.counts {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	samples := make([]Sample, len(paths))
	for i, p := range paths {
		samples[i] = Sample{Path: p, Weight: o.counts[p]}
	}
	return samples
}

// WriteTo writes one "<path> <weight>" line per distinct call path,
// sorted by path, then clears the accumulated counts so the sink can be
// reused for the next input.
func (o *Occurrences) WriteTo(w io.Writer) (int64, error) {
	var written int64
	bw := bufio.NewWriter(w)
	for _, s := range o.Samples() {
		n, err := fmt.Fprintf(bw, "%s %d\n", s.Path, s.Weight)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	if err := bw.Flush(); err != nil {
		return written, err
	}
	clear(o.counts)
	return written, nil
}
