package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/reusee/dscope"
	"versec/pkg/compiler"
	"versec/pkg/config"
	"versec/pkg/logs"
	"versec/pkg/sink"
	"versec/pkg/utils"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("versec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outPath := fs.String("o", "", "output assembly file path (default: input with .asm extension)")
	configPath := fs.String("config", "", "CUE config file")
	width := fs.String("width", "", "mutation operand size: byte or dword")
	loop := fs.String("loop", "", "for loop layout: do-while or pre-test")
	verify := fs.Bool("verify", false, "check the generated listing before writing it")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: versec [flags] <input>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}
	inPath := fs.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFiles(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "failed to load config %q: %v\n", *configPath, err)
			return exitError
		}
	}

	// flags given explicitly override the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output = *outPath
		case "width":
			cfg.Width = *width
		case "loop":
			cfg.Loop = *loop
		case "verify":
			cfg.Verify = *verify
		case "log-level":
			cfg.Log.Level = *logLevel
		}
	})

	level, err := logs.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	opts := compiler.Options{
		Verify: cfg.Verify,
	}
	if opts.Width, err = compiler.ParseWidth(cfg.Width); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.Loop, err = compiler.ParseLoopMode(cfg.Loop); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	code := exitError
	dscope.New(new(logs.Module)).Fork(
		func() logs.Writer {
			return stderr
		},
		func() logs.Options {
			return logs.Options{
				Level:   level,
				Journal: cfg.Log.Journal,
			}
		},
	).Call(func(
		logger logs.Logger,
	) {
		opts.Logger = logger
		code = compileFile(logs.WithSource(context.Background(), inPath), logger, inPath, cfg.Output, opts)
	})
	return code
}

// compileFile refuses to write over its own input. Any failure after
// that leaves the output empty.
func compileFile(ctx context.Context, logger logs.Logger, inPath, override string, opts compiler.Options) int {
	output, err := utils.OutputPath(inPath, override)
	if err != nil {
		logger.ErrorContext(ctx, "resolve output path", "error", err)
		return exitError
	}
	input, _, err := utils.GetPathInfo(inPath)
	if err != nil {
		logger.ErrorContext(ctx, "resolve input path", "error", err)
		return exitError
	}
	if input == output {
		logger.ErrorContext(ctx, "output would overwrite the input", "path", output)
		return exitUsage
	}

	var res *compiler.Result
	source, err := os.ReadFile(inPath)
	if err != nil {
		logger.ErrorContext(ctx, "read input", "error", err)
	} else if res, err = compiler.New(opts).Compile(compiler.JoinLines(string(source))); err != nil {
		var cerr *compiler.Error
		if errors.As(err, &cerr) {
			logger.ErrorContext(ctx, "compilation failed", "kind", cerr.Kind.String(), "error", cerr)
		} else {
			logger.ErrorContext(ctx, "compilation failed", "error", err)
		}
	}

	var assembly string
	if res != nil {
		assembly = res.Assembly
	}
	if werr := sink.Write(output, assembly, err); werr != nil {
		if err == nil {
			logger.ErrorContext(ctx, "write output", "path", output, "error", werr)
		}
		return exitError
	}
	logger.InfoContext(ctx, "compiled",
		"output", output,
		"bytes", len(res.Assembly),
		"symbols", res.Symbols.Len(),
	)
	return exitOK
}
