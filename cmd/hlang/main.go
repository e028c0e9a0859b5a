// Hlang CLI - runs Hlang programs, the REPL and the language servers
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"github.com/chazu/hlang/cache"
	"github.com/chazu/hlang/compiler"
	"github.com/chazu/hlang/loader"
	"github.com/chazu/hlang/manifest"
	"github.com/chazu/hlang/server"
	"github.com/chazu/hlang/vm"

	_ "github.com/tliron/commonlog/simple"
)

// Exit statuses, following sysexits.h.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitDataErr  = 65
	exitSoftware = 70
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// verbosity counts "-v" flags; "-v=3" sets it directly.
type verbosity int

func (v *verbosity) String() string   { return strconv.Itoa(int(*v)) }
func (v *verbosity) IsBoolFlag() bool { return true }

func (v *verbosity) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid verbosity %q", s)
	}
	*v = verbosity(n)
	return nil
}

type options struct {
	tokens   bool
	serve    bool
	port     int
	lsp      bool
	noCache  bool
	tabWidth int
	maxDepth int
	verbose  verbosity
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("hlang", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.tokens, "tokens", false, "Print the token stream instead of running")
	fs.BoolVar(&opts.serve, "serve", false, "Start the evaluation server (Connect, gRPC and gRPC-Web)")
	fs.IntVar(&opts.port, "port", 4567, "Evaluation server port (used with -serve)")
	fs.BoolVar(&opts.lsp, "lsp", false, "Start the language server on stdio")
	fs.BoolVar(&opts.noCache, "no-cache", false, "Disable the token cache")
	fs.IntVar(&opts.tabWidth, "tab-width", 0, "Tab stop for indentation (overrides hlang.toml)")
	fs.IntVar(&opts.maxDepth, "max-call-depth", 0, "Call depth limit (overrides hlang.toml)")
	fs.Var(&opts.verbose, "v", "Log verbosity; repeat or use -v=N")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: hlang [options] [file.hl]\n\n")
		fmt.Fprintf(stderr, "Runs a Hlang program, or starts the REPL when no file is given.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  hlang                  # Start REPL\n")
		fmt.Fprintf(stderr, "  hlang main.hl          # Run a program\n")
		fmt.Fprintf(stderr, "  hlang -tokens main.hl  # Dump tokens\n")
		fmt.Fprintf(stderr, "  hlang -serve -port 8080\n")
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return exitUsage
	}

	commonlog.Configure(int(opts.verbose), nil)

	env, err := setup(opts, fs.Arg(0))
	if err != nil {
		printError(stderr, err)
		return exitFailure
	}

	switch {
	case opts.lsp:
		if err := server.NewLSP(env.tabWidth).Run(); err != nil {
			printError(stderr, err)
			return exitFailure
		}
		return exitOK

	case opts.serve:
		srv, err := server.New(
			server.WithPrograms(env.programs),
			server.WithInterpreterFactory(env.newInterpreter),
		)
		if err != nil {
			printError(stderr, err)
			return exitFailure
		}
		defer srv.Stop()
		if err := srv.ListenAndServe(fmt.Sprintf(":%d", opts.port)); err != nil {
			printError(stderr, err)
			return exitFailure
		}
		return exitOK

	case env.entry == "":
		return runREPL(env, stdout, stderr)

	case opts.tokens:
		src, err := os.ReadFile(env.entry)
		if err != nil {
			printError(stderr, err)
			return exitFailure
		}
		tokens, err := env.programs.Tokens(string(src))
		if err != nil {
			printError(stderr, err)
			return exitCode(err)
		}
		for _, tok := range tokens {
			fmt.Fprintf(stdout, "%4d %s\n", tok.Line, tok)
		}
		return exitOK
	}

	in := env.newInterpreter(stdout)
	if err := env.loaderFor(stdout).RunFile(in, env.entry); err != nil {
		printError(stderr, err)
		return exitCode(err)
	}
	return exitOK
}

// environment is the configuration every mode runs with.
type environment struct {
	entry      string
	tabWidth   int
	maxDepth   int
	searchDirs []string
	programs   *cache.Programs
}

// setup loads hlang.toml, applies flag overrides, resolves dependencies and
// builds the token cache.
func setup(opts options, file string) (*environment, error) {
	start := "."
	if file != "" {
		start = filepath.Dir(file)
	}
	m, err := manifest.FindAndLoad(start)
	if err != nil {
		return nil, err
	}
	if m == nil {
		// Without a project there is no place for the disk cache.
		m = manifest.Defaults(start)
		m.Cache.Dir = ""
	}
	if opts.tabWidth != 0 {
		m.Runtime.TabWidth = opts.tabWidth
	}
	if opts.maxDepth != 0 {
		m.Runtime.MaxCallDepth = opts.maxDepth
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	deps, err := manifest.NewResolver(m).Resolve(context.Background())
	if err != nil {
		return nil, err
	}

	env := &environment{
		entry:      file,
		tabWidth:   m.Runtime.TabWidth,
		maxDepth:   m.Runtime.MaxCallDepth,
		searchDirs: append(m.SourceDirPaths(), manifest.SearchDirs(deps)...),
	}
	if env.entry == "" && !opts.serve && !opts.lsp {
		env.entry = m.EntryPath()
	}

	var cacheOpts []cache.Option
	cacheOpts = append(cacheOpts, cache.WithTabWidth(env.tabWidth))
	entries := m.Cache.Entries
	if opts.noCache {
		entries = 0
	} else if dir := m.CacheDir(); dir != "" {
		cacheOpts = append(cacheOpts, cache.WithDiskStore(cache.NewDiskStore(dir)))
	}
	if env.programs, err = cache.NewPrograms(entries, cacheOpts...); err != nil {
		return nil, err
	}
	return env, nil
}

// loaderFor returns a module resolver whose modules print to stdout.
func (env *environment) loaderFor(stdout io.Writer) *loader.Resolver {
	return loader.New(env.searchDirs,
		loader.WithPrograms(env.programs),
		loader.WithStdout(stdout),
		loader.WithInterpreterOptions(vm.WithMaxCallDepth(env.maxDepth), vm.WithTabWidth(env.tabWidth)),
	)
}

func (env *environment) newInterpreter(stdout io.Writer) *vm.Interpreter {
	return vm.New(
		vm.WithStdout(stdout),
		vm.WithResolver(env.loaderFor(stdout)),
		vm.WithMaxCallDepth(env.maxDepth),
		vm.WithTabWidth(env.tabWidth),
	)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, compiler.ErrSyntax):
		return exitDataErr
	case errors.Is(err, vm.ErrRuntime):
		return exitSoftware
	}
	return exitFailure
}

var errorColor = color.New(color.FgRed)

func printError(w io.Writer, err error) {
	errorColor.Fprintln(w, err)
}
