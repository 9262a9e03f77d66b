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

const DefaultIndentSize = 2

// Config holds the formatting settings owned by the caller.
type Config struct {
	IndentSize      int
	SortKeysDefault bool
}

// ConfigProvider is consulted once per formatting call, so settings changed
// by the owner take effect with the next call.
type ConfigProvider func() Config

func DefaultConfig() Config {
	return Config{IndentSize: DefaultIndentSize}
}

// StaticConfig returns a ConfigProvider that always yields c.
func StaticConfig(c Config) ConfigProvider {
	return func() Config { return c }
}

func (c Config) indent() int {
	if c.IndentSize < 0 {
		return 0
	}
	return c.IndentSize
}
