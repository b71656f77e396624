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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNumberBare(t *testing.T) {
	n, rest, err := nextNumber(`471,91.25,18.39,401.92,81.02,"Raytracer.exe",`)
	require.NoError(t, err)
	assert.Equal(t, int64(471), n)
	assert.Equal(t, `91.25,18.39,401.92,81.02,"Raytracer.exe",`, rest)
}

func TestNextNumberQuoted(t *testing.T) {
	// The stray comma after the closing quote must be consumed so the
	// remainder looks the same as in the bare case.
	n, rest, err := nextNumber(`"2,893,824",54.37,4.21,0.04,0.00,"Raytracer.exe",`)
	require.NoError(t, err)
	assert.Equal(t, int64(2893824), n)
	assert.Equal(t, `54.37,4.21,0.04,0.00,"Raytracer.exe",`, rest)
}

func TestNextNumberLeadingComma(t *testing.T) {
	n, rest, err := nextNumber(",12,0.00,")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, "0.00,", rest)
}

func TestNextNumberRejectsMalformed(t *testing.T) {
	for _, input := range []string{
		`"12,34",rest`,  // middle group not 3 digits
		"12.5,rest",     // floating point
		"1234,rest",     // bare number over 999 must be quoted
		`"1,,234",rest`, // empty group
		`"12,-34",rest`, // sign inside a group
		",,rest",        // empty field
		"abc,rest",      // not a number
		"12",            // no field terminator
	} {
		_, _, err := nextNumber(input)
		assert.ErrorIs(t, err, ErrMalformedNumber, "input %q", input)
	}
}

func TestParseLine(t *testing.T) {
	l, err := parseLine(`6,"System.String.IsNullOrEmpty(string)",4,0.00,0.00,0.00,0.00,"mscorlib.dll",`)
	require.NoError(t, err)
	assert.Equal(t, reportLine{
		depth:    6,
		function: "System.String.IsNullOrEmpty(string)",
		calls:    4,
	}, l)
}

func TestParseLineQuotedCallCount(t *testing.T) {
	l, err := parseLine(`2,"Render","2,893,824",54.37,4.21,0.04,0.00,"Raytracer.exe",`)
	require.NoError(t, err)
	assert.Equal(t, reportLine{depth: 2, function: "Render", calls: 2893824}, l)
}

func TestParseLineMalformedFunctionName(t *testing.T) {
	for _, input := range []string{
		`1,Main,1,0.00,0.00,0.00,0.00,"app.exe",`, // unquoted name
		`1,"Main`, // unterminated quote
	} {
		_, err := parseLine(input)
		assert.ErrorIs(t, err, ErrMalformedFunctionName, "input %q", input)
	}
}

func TestParseLineMalformedCallCount(t *testing.T) {
	_, err := parseLine(`1,"Main",1.5,0.00,0.00,0.00,0.00,"app.exe",`)
	assert.ErrorIs(t, err, ErrMalformedNumber)
}
