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

// Package config holds the settings the JSON transformations read: indent
// size, key sorting and the default query language.
package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"

	"github.com/sthielo/jsonhelper/util/jsonfmt"
	"github.com/sthielo/jsonhelper/util/jsonquery"
)

type Config struct {
	// IndentSize is the number of spaces per nesting level when prettifying.
	IndentSize int `json:"indentSize"`
	// SortKeys sorts object members when prettifying unless the caller decides.
	SortKeys bool `json:"sortKeys"`
	// QueryEngine is the query language used when none is given, JSONPATH or JMESPATH.
	QueryEngine string `json:"queryEngine"`
}

func Default() Config {
	return Config{
		IndentSize:  jsonfmt.DefaultIndentSize,
		QueryEngine: jsonquery.JSONPath.String(),
	}
}

// Load reads a YAML (or JSON) settings file. Settings missing from the file
// keep their defaults; unknown settings are an error.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.IndentSize < 0 {
		return fmt.Errorf("indentSize must not be negative, got %d", c.IndentSize)
	}
	if !jsonquery.IsEngineName(c.QueryEngine) {
		return fmt.Errorf("unknown queryEngine %q (valid: %s, %s)", c.QueryEngine, jsonquery.JSONPath, jsonquery.JMESPath)
	}
	return nil
}

// AddFlags binds the settings to command line flags, with the current values
// as defaults.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.IndentSize, "indent", c.IndentSize, "number of spaces per indentation level")
	fs.BoolVar(&c.SortKeys, "sort-keys", c.SortKeys, "sort object members when prettifying")
	fs.StringVar(&c.QueryEngine, "engine", c.QueryEngine, "query language: JSONPATH or JMESPATH")
}

func (c Config) FormatConfig() jsonfmt.Config {
	return jsonfmt.Config{IndentSize: c.IndentSize, SortKeysDefault: c.SortKeys}
}

func (c Config) Engine() jsonquery.EngineKind {
	return jsonquery.ParseEngineKind(c.QueryEngine)
}

// Provider returns the settings in effect. It is called for every operation,
// so the owner of the settings may change them at any time.
type Provider func() Config

// Static returns a Provider that always yields c.
func Static(c Config) Provider {
	return func() Config { return c }
}

// Store holds settings that change while they are in use.
type Store struct {
	lock sync.RWMutex
	cfg  Config
}

func NewStore(c Config) *Store {
	return &Store{cfg: c}
}

func (s *Store) Get() Config {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.cfg
}

// Set replaces the settings if they are valid.
func (s *Store) Set(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cfg = c
	return nil
}

func (s *Store) Provider() Provider {
	return s.Get
}
