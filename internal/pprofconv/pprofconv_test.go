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

package pprofconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vstools/vsprofToFolded/internal/folded"
)

func TestFromSamples(t *testing.T) {
	prof := FromSamples([]folded.Sample{
		{Path: "Main;A;B", Weight: 300},
		{Path: "Main;A", Weight: 300},
		{Path: "Main;D", Weight: 100},
	})
	require.NoError(t, prof.CheckValid())

	require.Len(t, prof.Sample, 3)
	require.Len(t, prof.SampleType, 1)
	assert.Equal(t, "calls", prof.SampleType[0].Type)
	assert.Equal(t, "count", prof.SampleType[0].Unit)

	// Locations run leaf first.
	first := prof.Sample[0]
	require.Len(t, first.Location, 3)
	assert.Equal(t, "B", first.Location[0].Line[0].Function.Name)
	assert.Equal(t, "A", first.Location[1].Line[0].Function.Name)
	assert.Equal(t, "Main", first.Location[2].Line[0].Function.Name)
	assert.Equal(t, []int64{300}, first.Value)

	// Functions and locations are interned across samples.
	assert.Len(t, prof.Function, 4)
	assert.Len(t, prof.Location, 4)
	assert.Same(t, prof.Sample[0].Location[2], prof.Sample[1].Location[1])
}

func TestFromSamplesEmpty(t *testing.T) {
	prof := FromSamples(nil)
	require.NoError(t, prof.CheckValid())
	assert.Empty(t, prof.Sample)
}
