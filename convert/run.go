// Package convert drives conversion of a single stylesheet: decoding, parsing,
// tree transformations, formatting and output.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"cssuss/config"
	"cssuss/css"
	"cssuss/format"
	"cssuss/state"
	"cssuss/transform"
)

// stdout receives the result when no destination is given.
var stdout io.Writer = os.Stdout

// Options controls everything Transpile does.
type Options struct {
	Indent         int
	HeaderTemplate string
	Bubble         []string
	Unwrap         []string
	Preserve       bool
}

// OptionsFromConfig picks conversion options out of program configuration.
// nil configuration means defaults.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{Indent: format.DefaultIndent, Preserve: true}
	}
	return Options{
		Indent:         cfg.Format.Indent,
		HeaderTemplate: cfg.Format.HeaderTemplate,
		Bubble:         cfg.Transform.Nesting.Bubble,
		Unwrap:         cfg.Transform.Nesting.Unwrap,
		Preserve:       cfg.Transform.CustomProperties.Preserve,
	}
}

// Result is what Transpile produced.
type Result struct {
	Root        *css.Root
	Output      []byte
	Definitions map[string]string
}

// Run is the action of the root command: "SOURCE [DESTINATION]".
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return &UsageError{Err: errors.New("no input file has been specified")}
	}
	dst := cmd.Args().Get(1)

	log := env.Log.Named("convert")
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if cmd.IsSet("indent") {
		indent := cmd.Int("indent")
		if indent < 0 {
			return &UsageError{Err: fmt.Errorf("indent must not be negative: %d", indent)}
		}
		env.Cfg.Format.Indent = indent
	}

	// Old stylesheets may come in archaic code pages without any BOM
	if cp := cmd.String("charset"); len(cp) > 0 {
		if env.CodePage, err = ianaindex.IANA.Encoding(cp); err != nil || env.CodePage == nil {
			env.CodePage = nil
			return &UsageError{Err: fmt.Errorf("unknown character set %q", cp)}
		}
		n, _ := ianaindex.IANA.Name(env.CodePage)
		log.Debug("Forcefully decoding input", zap.String("charset", n))
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)), zap.Bool("success", err == nil))
	}(time.Now())

	return Process(ctx, env, src, dst)
}

// Process converts file src and writes result to dst, or to standard output
// when dst is empty. Output is produced with a single write only after all
// stages succeeded.
func Process(ctx context.Context, env *state.LocalEnv, src, dst string) error {
	if len(src) == 0 {
		return &UsageError{Err: errors.New("no input file has been specified")}
	}

	log := env.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("convert")

	path, err := filepath.Abs(src)
	if err != nil {
		return &NotFoundError{Path: src, Err: err}
	}
	fi, err := os.Stat(path)
	if err != nil {
		return &NotFoundError{Path: src, Err: err}
	}
	if !fi.Mode().IsRegular() {
		return &NotFoundError{Path: src, Err: errors.New("not a regular file")}
	}

	if err := env.Rpt.StoreCopy("input/"+filepath.Base(path), path); err != nil {
		log.Warn("Unable to store input in debug report", zap.String("file", path), zap.Error(err))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &StageError{Stage: StageRead, Err: err}
	}
	if data, err = decode(data, env.CodePage); err != nil {
		return &StageError{Stage: StageDecode, Err: err}
	}

	res, err := Transpile(ctx, data, src, OptionsFromConfig(env.Cfg), log)
	if err != nil {
		return err
	}
	storeResult(env.Rpt, filepath.Base(path), res)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeOutput(dst, res.Output); err != nil {
		return &StageError{Stage: StageWrite, Err: err}
	}
	if len(dst) == 0 {
		dst = "STDOUT"
	}
	log.Debug("Output written", zap.String("file", dst), zap.Int("bytes", len(res.Output)))
	return nil
}

// Transpile runs all stages over already decoded stylesheet text in memory.
// source is used for diagnostics and header template only.
func Transpile(ctx context.Context, data []byte, source string, opts Options, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	root, err := css.NewParser(log).Parse(data, source)
	if err != nil {
		return nil, &StageError{Stage: StageParse, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := transform.NewNesting(opts.Bubble, opts.Unwrap, log).Apply(root); err != nil {
		return nil, &StageError{Stage: StageNesting, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	props := transform.NewCustomProperties(opts.Preserve, log)
	if err := props.Apply(root); err != nil {
		return nil, &StageError{Stage: StageProperties, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(opts.HeaderTemplate) > 0 {
		text, err := expandHeader(opts.HeaderTemplate, source)
		if err != nil {
			return nil, &StageError{Stage: StageHeader, Err: err}
		}
		root.SetChildren(append([]css.Node{&css.Comment{Text: text}}, root.Children()...))
	}

	format.New(opts.Indent, log).Annotate(root, 0)

	buf := new(bytes.Buffer)
	if _, err := root.WriteTo(buf); err != nil {
		return nil, &StageError{Stage: StageSerialize, Err: err}
	}

	return &Result{
		Root:        root,
		Output:      buf.Bytes(),
		Definitions: props.Definitions(),
	}, nil
}

// decode converts input to UTF-8. BOM always wins, forced code page is used
// for input without BOM, UTF-8 is assumed otherwise.
func decode(data []byte, cp encoding.Encoding) ([]byte, error) {
	fallback := unicode.UTF8
	if cp != nil {
		fallback = cp
	}
	dec := &encoding.Decoder{Transformer: unicode.BOMOverride(fallback.NewDecoder())}
	return dec.Bytes(data)
}

func writeOutput(dst string, data []byte) error {
	if len(dst) == 0 {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return os.WriteFile(dst, data, 0644)
}

// storeResult puts conversion artifacts into debug report.
func storeResult(rpt *config.Report, name string, res *Result) {
	if rpt == nil {
		return
	}
	rpt.StoreData("output/"+name, res.Output)
	rpt.StoreData("tree.txt", []byte(css.Dump(res.Root)))
	rpt.StoreData("properties.txt", propertyTable(res.Definitions))
}

func propertyTable(defs map[string]string) []byte {
	names := make([]string, 0, len(defs))
	for k := range defs {
		names = append(names, k)
	}
	sort.Sort(natural.StringSlice(names))

	var sb strings.Builder
	for _, n := range names {
		fmt.Fprintf(&sb, "%s\t%s\n", n, defs[n])
	}
	return []byte(sb.String())
}
