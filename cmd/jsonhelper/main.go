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

// Command jsonhelper formats, validates, escapes, queries and compares JSON
// documents read from files or standard input.
package main

import (
	"errors"
	goflag "flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"k8s.io/klog/v2"

	"github.com/sthielo/jsonhelper/config"
	"github.com/sthielo/jsonhelper/transform"
	"github.com/sthielo/jsonhelper/util/jsondoc"
	"github.com/sthielo/jsonhelper/util/jsonfmt"
	"github.com/sthielo/jsonhelper/util/jsonquery"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usage = `usage: jsonhelper [flags] <command> [args]

commands:
  format [file]           prettify or uglify a document, unescaping it first
  validate [file]         check that the input is exactly one JSON document
  escape [file]           escape the input for embedding in a JSON string
  unescape [file]         remove one level of escaping (--fully for all)
  query <expr> [file]     run a JSONPath or JMESPath expression
  diff <left> <right>     compare two documents ignoring member order
  patch <patch> [file]    apply a merge patch file to the input

flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	configPath  string
	mode        jsonfmt.Mode
	fully       bool
	mergePatch  bool
	cfg         config.Config
	flags       *pflag.FlagSet
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	transformer *transform.Transformer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	defer klog.Flush()

	o := &options{mode: jsonfmt.Prettify, cfg: config.Default(), stdin: stdin, stdout: stdout, stderr: stderr}
	fs := pflag.NewFlagSet("jsonhelper", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&o.configPath, "config", "", "YAML settings file; flags given explicitly take precedence")
	fs.Var(&o.mode, "mode", "output mode: PRETTIFY, UGLIFY, PRETTIFY_SORTED or PRETTIFY_COMPACT")
	fs.BoolVar(&o.fully, "fully", false, "unescape: remove all levels of escaping")
	fs.BoolVar(&o.mergePatch, "merge-patch", false, "diff: print the RFC 7386 merge patch instead of a unified diff")
	o.cfg.AddFlags(fs)

	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	fs.AddGoFlagSet(klogFlags)
	o.flags = fs

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if err := o.complete(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}
	command, cmdArgs := rest[0], rest[1:]
	switch command {
	case "format":
		return o.runFormat(cmdArgs)
	case "validate":
		return o.runValidate(cmdArgs)
	case "escape":
		return o.runEscape(cmdArgs)
	case "unescape":
		return o.runUnescape(cmdArgs)
	case "query":
		return o.runQuery(cmdArgs)
	case "diff":
		return o.runDiff(cmdArgs)
	case "patch":
		return o.runPatch(cmdArgs)
	default:
		fmt.Fprintf(stderr, "error: unknown command %q\n", command)
		fs.Usage()
		return exitUsage
	}
}

// complete merges the settings file with the explicitly given flags and
// builds the transformer.
func (o *options) complete() error {
	cfg := o.cfg
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		if o.flags.Changed("indent") {
			loaded.IndentSize = cfg.IndentSize
		}
		if o.flags.Changed("sort-keys") {
			loaded.SortKeys = cfg.SortKeys
		}
		if o.flags.Changed("engine") {
			loaded.QueryEngine = cfg.QueryEngine
		}
		cfg = loaded
	}
	cfg.QueryEngine = strings.ToUpper(strings.TrimSpace(cfg.QueryEngine))
	if err := cfg.Validate(); err != nil {
		return err
	}
	klog.V(4).Infof("settings: indent=%d sortKeys=%t engine=%s", cfg.IndentSize, cfg.SortKeys, cfg.QueryEngine)
	o.cfg = cfg
	o.transformer = transform.New(config.Static(cfg))
	return nil
}

// readInput reads the named file, or standard input when no name (or "-")
// is given. An interactive terminal is refused.
func (o *options) readInput(args []string) (string, error) {
	switch len(args) {
	case 0:
		return o.readStdin()
	case 1:
		if args[0] == "-" {
			return o.readStdin()
		}
		return readFile(args[0])
	default:
		return "", fmt.Errorf("expected at most one input file, got %d", len(args))
	}
}

func (o *options) readStdin() (string, error) {
	if f, ok := o.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("refusing to read JSON from a terminal, pass a file or pipe the input")
	}
	data, err := io.ReadAll(o.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read standard input: %w", err)
	}
	return string(data), nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func (o *options) usageError(err error) int {
	fmt.Fprintf(o.stderr, "error: %v\n", err)
	return exitUsage
}

func (o *options) println(s string) {
	fmt.Fprintln(o.stdout, strings.TrimRight(s, "\n"))
}

func (o *options) runFormat(args []string) int {
	text, err := o.readInput(args)
	if err != nil {
		return o.usageError(err)
	}
	formatted := o.transformer.PrettifyOrUglify(text, o.mode)
	o.println(formatted)
	if !o.transformer.IsValid(formatted) {
		fmt.Fprintln(o.stderr, "input is not valid JSON, printed unchanged")
		return exitFailure
	}
	return exitOK
}

func (o *options) runValidate(args []string) int {
	text, err := o.readInput(args)
	if err != nil {
		return o.usageError(err)
	}
	if err := jsondoc.Check(text); err != nil {
		fmt.Fprintf(o.stdout, "invalid: %v\n", err)
		return exitFailure
	}
	fmt.Fprintln(o.stdout, "valid")
	return exitOK
}

func (o *options) runEscape(args []string) int {
	text, err := o.readInput(args)
	if err != nil {
		return o.usageError(err)
	}
	o.println(o.transformer.Escape(strings.TrimRight(text, "\n")))
	return exitOK
}

func (o *options) runUnescape(args []string) int {
	text, err := o.readInput(args)
	if err != nil {
		return o.usageError(err)
	}
	text = strings.TrimRight(text, "\n")
	if o.fully {
		o.println(o.transformer.FullyUnescape(text))
	} else {
		o.println(o.transformer.Unescape(text))
	}
	return exitOK
}

func (o *options) runQuery(args []string) int {
	if len(args) == 0 {
		return o.usageError(errors.New("query needs an expression"))
	}
	expr := args[0]
	text, err := o.readInput(args[1:])
	if err != nil {
		return o.usageError(err)
	}
	result, err := o.transformer.Evaluate(text, expr, o.cfg.Engine())
	switch {
	case errors.Is(err, jsonquery.ErrNoMatch):
		fmt.Fprintf(o.stderr, "no match for %s\n", expr)
		return exitFailure
	case err != nil:
		fmt.Fprintf(o.stderr, "error: %v\n", err)
		return exitFailure
	}
	o.println(result)
	return exitOK
}

func (o *options) runDiff(args []string) int {
	if len(args) != 2 {
		return o.usageError(fmt.Errorf("diff needs two files, got %d", len(args)))
	}
	left, err := readFile(args[0])
	if err != nil {
		return o.usageError(err)
	}
	right, err := readFile(args[1])
	if err != nil {
		return o.usageError(err)
	}
	res, err := o.transformer.Diff(left, right)
	if err != nil {
		fmt.Fprintf(o.stderr, "error: %v\n", err)
		return exitFailure
	}
	if res.Equal {
		return exitOK
	}
	if o.mergePatch {
		o.println(res.MergePatch)
	} else {
		fmt.Fprint(o.stdout, res.UnifiedDiff)
	}
	return exitFailure
}

func (o *options) runPatch(args []string) int {
	if len(args) == 0 {
		return o.usageError(errors.New("patch needs a merge patch file"))
	}
	patch, err := readFile(args[0])
	if err != nil {
		return o.usageError(err)
	}
	text, err := o.readInput(args[1:])
	if err != nil {
		return o.usageError(err)
	}
	result, err := o.transformer.ApplyPatch(text, patch)
	if err != nil {
		fmt.Fprintf(o.stderr, "error: %v\n", err)
		return exitFailure
	}
	o.println(result)
	return exitOK
}
