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

package vsprof

import (
	"fmt"
	"strings"

	"github.com/vstools/vsprofToFolded/internal/folded"
)

// frame is one call-tree node on the active path. calls starts as the
// node's reported inclusive call count and shrinks in place as child
// subtrees fold into their own paths.
type frame struct {
	function string
	calls    int64
}

// reconstructor rebuilds weighted call paths from the depth-annotated,
// pre-order line sequence of a call-tree report. One instance handles one
// report at a time; reset clears it for the next.
type reconstructor struct {
	stack []frame
}

// observe consumes one parsed line, mutating the active stack and
// emitting completed call paths into sink. Depth is 1-based: a root call
// arrives at depth 1 on an empty stack.
func (r *reconstructor) observe(l reportLine, sink *folded.Occurrences) error {
	prevDepth := len(r.stack)
	switch {
	case prevDepth < l.depth:
		// A deeper line is a direct child of the current top frame. A
		// jump of more than one level cannot come from a pre-order walk.
		if prevDepth+1 != l.depth {
			return fmt.Errorf("%w: depth skipped from %d to %d at %q",
				ErrTreeStructureViolation, prevDepth, l.depth, l.function)
		}
	case prevDepth == l.depth:
		// The previous top frame was a leaf of its parent. Emit its path,
		// then replace it with the sibling.
		r.emit(sink)
		if len(r.stack) > 0 {
			r.stack = r.stack[:len(r.stack)-1]
		}
	default:
		// Moving up closes prevDepth-depth+1 frames.
		//
		// The report counts calls inclusively: a function called 500
		// times that calls a child 300 times would end up with 800
		// samples if both paths were written as-is. So once a child
		// subtree is fully folded, its count is subtracted from the
		// parent, leaving the parent with the calls not yet attributed
		// deeper down. When two consecutive closed frames carry the same
		// count, the inner one accounts for all of the outer one's calls
		// and writing the outer path would duplicate samples, hence the
		// carry guard.
		var carry int64
		for i := 0; i < prevDepth-l.depth+1; i++ {
			top := &r.stack[len(r.stack)-1]
			if carry != top.calls {
				r.emit(sink)
			}
			carry = top.calls
			r.stack = r.stack[:len(r.stack)-1]

			if len(r.stack) == 0 {
				break
			}
			parent := &r.stack[len(r.stack)-1]
			if carry < parent.calls {
				parent.calls -= carry
			}
		}
	}

	r.stack = append(r.stack, frame{function: l.function, calls: l.calls})
	return nil
}

// finish emits the path still open when the report ends. It does not
// clear the stack; reset does.
func (r *reconstructor) finish(sink *folded.Occurrences) {
	r.emit(sink)
}

// reset discards the active stack so the reconstructor can process an
// independent report.
func (r *reconstructor) reset() {
	r.stack = r.stack[:0]
}

// emit records the current full path weighted by the top frame's
// remaining call count. Frames folded down to zero contribute nothing.
func (r *reconstructor) emit(sink *folded.Occurrences) {
	if len(r.stack) == 0 {
		return
	}
	weight := r.stack[len(r.stack)-1].calls
	if weight <= 0 {
		return
	}
	names := make([]string, len(r.stack))
	for i, f := range r.stack {
		names[i] = f.function
	}
	sink.Add(strings.Join(names, folded.Separator), weight)
}
