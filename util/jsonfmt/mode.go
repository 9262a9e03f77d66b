/*
Copyright 2015 The Kubernetes Authors.

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

package jsonfmt

import "strings"

// Mode selects how a document is rendered.
type Mode int

const (
	Prettify Mode = iota
	Uglify
	PrettifySorted
	PrettifyCompact
)

var modeNames = map[Mode]string{
	Prettify:        "PRETTIFY",
	Uglify:          "UGLIFY",
	PrettifySorted:  "PRETTIFY_SORTED",
	PrettifyCompact: "PRETTIFY_COMPACT",
}

var modeAliases = map[string]Mode{
	"PRETTIFY":         Prettify,
	"PRETTY":           Prettify,
	"UGLIFY":           Uglify,
	"UGLY":             Uglify,
	"PRETTIFY_SORTED":  PrettifySorted,
	"SORTED":           PrettifySorted,
	"PRETTIFY_COMPACT": PrettifyCompact,
	"COMPACT":          PrettifyCompact,
}

// ParseMode maps a mode name (case-insensitive, '-' accepted for '_') to its
// Mode. Unknown names yield Prettify.
func ParseMode(s string) Mode {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	if m, ok := modeAliases[name]; ok {
		return m
	}
	return Prettify
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return modeNames[Prettify]
}

func (m Mode) UsesPrettyPrinting() bool { return m != Uglify }
func (m Mode) UsesSorting() bool        { return m == PrettifySorted }
func (m Mode) UsesCompactArrays() bool  { return m == PrettifyCompact }

// Set implements pflag.Value. Like ParseMode it never rejects a value.
func (m *Mode) Set(s string) error {
	*m = ParseMode(s)
	return nil
}

// Type implements pflag.Value.
func (m *Mode) Type() string { return "mode" }
