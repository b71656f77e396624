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

// Package pprofconv turns folded stack samples into a pprof profile, for
// tools that consume pprof rather than flame graph input.
package pprofconv

import (
	"strings"

	"github.com/google/pprof/profile"

	"github.com/vstools/vsprofToFolded/internal/folded"
)

type converter struct {
	// functions and locations by name
	functions      map[string]*profile.Function
	nextFunctionID uint64
	locations      map[string]*profile.Location
	nextLocationID uint64

	samples []*profile.Sample
}

func newConverter() *converter {
	return &converter{
		functions:      make(map[string]*profile.Function),
		nextFunctionID: 1,
		locations:      make(map[string]*profile.Location),
		nextLocationID: 1,
		samples:        make([]*profile.Sample, 0),
	}
}

func (c *converter) getFunction(name string) *profile.Function {
	f, ok := c.functions[name]
	if !ok {
		f = &profile.Function{
			ID:         c.nextFunctionID,
			Name:       name,
			SystemName: name,
		}
		c.functions[name] = f
		c.nextFunctionID++
	}
	return f
}

func (c *converter) getLocation(name string) *profile.Location {
	loc, ok := c.locations[name]
	if !ok {
		loc = &profile.Location{
			ID:   c.nextLocationID,
			Line: []profile.Line{{Function: c.getFunction(name)}},
		}
		c.locations[name] = loc
		c.nextLocationID++
	}
	return loc
}

func (c *converter) addSample(s folded.Sample) {
	frames := strings.Split(s.Path, folded.Separator)
	// pprof wants the leaf first; folded paths run root first.
	stackTrace := make([]*profile.Location, len(frames))
	for i, name := range frames {
		stackTrace[len(frames)-1-i] = c.getLocation(name)
	}
	c.samples = append(c.samples, &profile.Sample{
		Location: stackTrace,
		Value:    []int64{s.Weight},
	})
}

// FromSamples converts folded samples into a pprof profile with a single
// calls/count sample type.
func FromSamples(samples []folded.Sample) *profile.Profile {
	c := newConverter()
	for _, s := range samples {
		c.addSample(s)
	}

	locations := make([]*profile.Location, 0, len(c.locations))
	for _, loc := range c.locations {
		locations = append(locations, loc)
	}
	functions := make([]*profile.Function, 0, len(c.functions))
	for _, fn := range c.functions {
		functions = append(functions, fn)
	}

	return &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "calls", Unit: "count"}},
		Sample:     c.samples,
		Location:   locations,
		Function:   functions,
	}
}
