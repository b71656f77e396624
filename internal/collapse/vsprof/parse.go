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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnexpectedHeader means the first line of the input is not the
	// call-tree report header.
	ErrUnexpectedHeader = errors.New("unexpected header line")
	// ErrMalformedFunctionName means a data line's function name field is
	// not quote delimited.
	ErrMalformedFunctionName = errors.New("unable to parse function name")
	// ErrMalformedNumber means a numeric field is not a well formed
	// integer with thousands grouping.
	ErrMalformedNumber = errors.New("malformed number")
	// ErrTreeStructureViolation means the depth sequence is not a valid
	// pre-order traversal of a call tree.
	ErrTreeStructureViolation = errors.New("call tree structure violation")
)

// reportLine is one parsed data line of a call-tree report. It is only a
// carrier between the parser and the reconstructor, never retained.
type reportLine struct {
	depth    int
	function string
	calls    int64
}

// parseLine extracts the level, function name and call count from a data
// line. Field order is fixed and comma delimited; the four timing fields
// and the module name are never interpreted.
//
//	Level,Function Name,Number of Calls,...
//	6,"System.String.IsNullOrEmpty(string)",4,0.00,0.00,0.00,0.00,"mscorlib.dll",
func parseLine(line string) (reportLine, error) {
	depth, rest, err := nextNumber(line)
	if err != nil {
		return reportLine{}, err
	}

	// Function names are always wrapped in quotes, so the first quote
	// after the opening one closes the name.
	rest, ok := strings.CutPrefix(rest, `"`)
	if !ok {
		return reportLine{}, fmt.Errorf("%w from line: %s", ErrMalformedFunctionName, line)
	}
	name, rest, ok := strings.Cut(rest, `"`)
	if !ok {
		return reportLine{}, fmt.Errorf("%w from line: %s", ErrMalformedFunctionName, line)
	}

	calls, _, err := nextNumber(rest)
	if err != nil {
		return reportLine{}, err
	}

	return reportLine{depth: int(depth), function: name, calls: calls}, nil
}

// nextNumber parses the leading numeric field of line and returns the
// remainder after it. A value below 1000 appears bare; a larger value is
// wrapped in quotes and written with thousands separators:
//
//	471,91.25,18.39,401.92,81.02,"Raytracer.exe",
//	"2,893,824",54.37,4.21,0.04,0.00,"Raytracer.exe",
//
// A leading comma left over from the previous field is ignored.
func nextNumber(line string) (int64, string, error) {
	line = strings.TrimPrefix(line, ",")

	var field, rest string
	var ok, quoted bool
	if unquoted, found := strings.CutPrefix(line, `"`); found {
		quoted = true
		field, rest, ok = strings.Cut(unquoted, `"`)
	} else {
		field, rest, ok = strings.Cut(line, ",")
	}
	if !ok {
		return 0, "", fmt.Errorf("%w: no terminated numeric field in: %s", ErrMalformedNumber, line)
	}

	// The leftmost group may hold 1-3 digits, every following group
	// exactly 3. That shape check rejects floating point values and bare
	// numbers that should have been quoted.
	var n int64
	for i, group := range strings.Split(field, ",") {
		if i == 0 {
			if len(group) > 3 {
				return 0, "", fmt.Errorf("%w: expected thousands separators for number bigger than 1000, found %q", ErrMalformedNumber, field)
			}
		} else if len(group) != 3 {
			return 0, "", fmt.Errorf("%w: expected an integer, found %q", ErrMalformedNumber, field)
		}
		v, err := strconv.ParseUint(group, 10, 32)
		if err != nil {
			return 0, "", fmt.Errorf("%w: expected an integer, found %q", ErrMalformedNumber, field)
		}
		n = n*1000 + int64(v)
	}

	if quoted {
		// The closing quote left the field separator behind; drop it so
		// the remainder looks the same as in the unquoted case.
		rest = strings.TrimPrefix(rest, ",")
	}
	return n, rest, nil
}
