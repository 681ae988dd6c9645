package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	j "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	typesynth "github.com/reoring/typesynth"
	"github.com/reoring/typesynth/factory"
	"github.com/reoring/typesynth/i18n"
	"github.com/reoring/typesynth/jsonschema"
	"github.com/reoring/typesynth/synth"
)

var errUsage = errors.New("usage")

// errInvalid marks a validation run that reported issues.
var errInvalid = errors.New("invalid")

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		usage(os.Stderr)
		os.Exit(2)
	case errors.Is(err, errInvalid):
		os.Exit(1)
	default:
		fatalf("typesynth: %v", err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "typesynth CLI\n\nUsage:\n  typesynth synth [flags] schema.json\n  typesynth validate [flags] -data value.json schema.json\n\nSchemas and data ending in .yaml or .yml are read as YAML.")
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "synth":
		return synthCmd(args[1:], stdout, stderr)
	case "validate":
		return validateCmd(args[1:], stdout, stderr)
	}
	return errUsage
}

type common struct {
	opts    typesynth.Options
	yaml    bool
	lang    string
	verbose bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.BoolVar(&c.opts.AllowUndefinedArrayItems, "allow-undefined-array-items", false, "type arrays without items as arrays of anything")
	fs.BoolVar(&c.opts.AllowUndefinedType, "allow-undefined-type", false, "type schemas without type information as anything")
	fs.BoolVar(&c.opts.PopulateByName, "populate-by-name", false, "accept sanitized field names in inputs")
	fs.IntVar(&c.opts.MaxDepth, "max-depth", 0, "maximum schema nesting depth (0 = unlimited)")
	fs.BoolVar(&c.yaml, "yaml", false, "read the schema as YAML regardless of its extension")
	fs.StringVar(&c.lang, "lang", "en", "message language (en, ja)")
	fs.BoolVar(&c.verbose, "v", false, "debug logging")
}

func (c *common) setup() func() {
	i18n.SetLanguage(c.lang)
	if !c.verbose {
		return func() {}
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return func() {}
	}
	c.opts.Logger = l
	return func() { _ = l.Sync() }
}

func (c *common) load(path string, stderr io.Writer) (*synth.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res *synth.Result
	if c.yaml || isYAML(path) {
		res, err = synth.FromYAML(data, c.opts)
	} else {
		res, err = synth.FromJSON(data, c.opts)
	}
	if err != nil {
		return nil, err
	}
	for _, w := range res.Diag.Warnings() {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
	return res, nil
}

func synthCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("synth", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	defer c.setup()()

	res, err := c.load(fs.Arg(0), stderr)
	if err != nil {
		return err
	}
	s, err := jsonschema.FromGraph(res.Graph)
	if err != nil {
		return err
	}
	out, err := jsonschema.Marshal(s)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", out)
	return err
}

func validateCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	var dataPath string
	var failFast bool
	c.register(fs)
	fs.StringVar(&dataPath, "data", "", "value to validate (JSON or YAML)")
	fs.BoolVar(&failFast, "fail-fast", false, "stop at the first issue")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 || dataPath == "" {
		return errUsage
	}
	defer c.setup()()

	res, err := c.load(fs.Arg(0), stderr)
	if err != nil {
		return err
	}
	opts := []factory.Option{}
	if failFast {
		opts = append(opts, factory.FailFast())
	}
	if c.opts.Logger != nil {
		opts = append(opts, factory.WithLogger(c.opts.Logger))
	}
	m, err := factory.Build(res.Graph, opts...)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(dataPath)
	if err != nil {
		return err
	}
	ctx := context.Background()
	var out any
	if isYAML(dataPath) {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode %s: %w", dataPath, err)
		}
		out, err = m.ValidateRoot(ctx, v)
	} else {
		out, err = m.ValidateBytes(ctx, data)
	}
	if iss, ok := typesynth.AsIssues(err); ok {
		for _, it := range iss {
			fmt.Fprintf(stderr, "%s: %s: %s\n", it.Path, it.Code, it.Message)
		}
		return errInvalid
	}
	if err != nil {
		return err
	}
	b, err := j.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%s\n", b)
	return err
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
