package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/Azhovan/jsonenv"
	"github.com/Azhovan/jsonenv/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliOptions holds the parsed command line.
type cliOptions struct {
	folder        string
	includeFolder string
	excludeFolder string
	includeEntry  string
	excludeEntry  string
	onDuplicate   string
	strict        bool
	noFilePrefix  bool
	formats       []string
	concurrent    bool
	verbose       bool

	exportJSON    bool
	exportSources bool
	exportRedact  string
	exportOutput  string

	command []string
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &cliOptions{}

	app := kingpin.New("jsonenv", "Load a folder of JSON configuration files into environment variables")
	app.UsageWriter(stdout)
	app.ErrorWriter(stderr)
	// help output ends with a terminate call; record it instead of exiting
	helped := false
	app.Terminate(func(int) { helped = true })

	app.Flag("folder", "Folder to scan (default: $JSONENVLOADER_CONFIG_FOLDER)").Short('f').StringVar(&opts.folder)
	app.Flag("include-folder", "Regex a file name must match to be loaded").StringVar(&opts.includeFolder)
	app.Flag("exclude-folder", "Regex of file names to skip").StringVar(&opts.excludeFolder)
	app.Flag("include-entry", "Regex a leaf key must match to be written").StringVar(&opts.includeEntry)
	app.Flag("exclude-entry", "Regex of leaf keys to skip").StringVar(&opts.excludeEntry)
	app.Flag("on-duplicate", "What to do when a key already exists").EnumVar(&opts.onDuplicate, "ignore", "overwrite", "throw")
	app.Flag("strict", "Fail on files that are not a valid object").BoolVar(&opts.strict)
	app.Flag("no-file-prefix", "Do not prefix keys with the file name").BoolVar(&opts.noFilePrefix)
	app.Flag("format", "Extra format decoded by file extension (yaml, toml, dotenv); repeatable").StringsVar(&opts.formats)
	app.Flag("concurrent", "Process files concurrently").BoolVar(&opts.concurrent)
	app.Flag("verbose", "Enable debug logging").Short('v').BoolVar(&opts.verbose)

	exportCmd := app.Command("export", "Print the entries that were loaded")
	exportCmd.Flag("json", "Print a JSON object instead of dotenv lines").BoolVar(&opts.exportJSON)
	exportCmd.Flag("sources", "Show the file each entry came from").BoolVar(&opts.exportSources)
	exportCmd.Flag("redact", "Regex of keys whose values are hidden").StringVar(&opts.exportRedact)
	exportCmd.Flag("output", "Write to this file instead of stdout ({{timestamp}} is expanded)").Short('o').StringVar(&opts.exportOutput)

	runCmd := app.Command("run", "Run a command with the loaded environment")
	runCmd.Arg("command", "Command and its arguments (use -- before flags of the command)").Required().StringsVar(&opts.command)

	selected, err := app.Parse(args)
	if helped {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "jsonenv: %v\n", err)
		return 2
	}

	logger, err := logging.New(opts.verbose)
	if err != nil {
		fmt.Fprintf(stderr, "jsonenv: failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := opts.config()
	if err != nil {
		logger.Error("invalid flags", zap.Error(err))
		return 2
	}

	loader := jsonenv.NewLoader(cfg).WithLogger(logger)
	if opts.concurrent {
		err = loader.LoadConcurrent(ctx)
	} else {
		err = loader.Load(ctx)
	}
	if err != nil {
		logger.Error("load failed", zap.Error(err))
		return 1
	}

	switch selected {
	case exportCmd.FullCommand():
		if err := export(stdout, loader.Provenance(), opts, logger); err != nil {
			logger.Error("export failed", zap.Error(err))
			return 1
		}
		return 0

	case runCmd.FullCommand():
		return execute(ctx, opts.command, stdin, stdout, stderr, logger)
	}

	return 0
}

// config converts flags into a jsonenv.Config. Empty flags stay unset so the
// JSONENVLOADER_CONFIG_* environment variables still apply.
func (o *cliOptions) config() (jsonenv.Config, error) {
	cfg := jsonenv.Config{
		Folder:           o.folder,
		OnDuplicateEntry: jsonenv.DuplicatePolicy(o.onDuplicate),
		Strict:           o.strict,
		Formats:          o.formats,
	}
	if o.noFilePrefix {
		cfg.UseFilePrefix = jsonenv.Some(false)
	}

	patterns := []struct {
		flag   string
		source string
		target **regexp.Regexp
	}{
		{"include-folder", o.includeFolder, &cfg.IncludeFolder},
		{"exclude-folder", o.excludeFolder, &cfg.ExcludeFolder},
		{"include-entry", o.includeEntry, &cfg.IncludeEntry},
		{"exclude-entry", o.excludeEntry, &cfg.ExcludeEntry},
	}
	for _, p := range patterns {
		if p.source == "" {
			continue
		}
		re, err := regexp.Compile(p.source)
		if err != nil {
			return jsonenv.Config{}, fmt.Errorf("--%s: %w", p.flag, err)
		}
		*p.target = re
	}

	return cfg, nil
}

// export prints the loaded entries, or writes them to --output.
func export(w io.Writer, prov *jsonenv.Provenance, opts *cliOptions, logger *zap.Logger) error {
	var dumpOpts []jsonenv.DumpOption
	if opts.exportJSON {
		dumpOpts = append(dumpOpts, jsonenv.AsJSON())
	}
	if opts.exportSources {
		dumpOpts = append(dumpOpts, jsonenv.WithSources())
	}
	if opts.exportRedact != "" {
		re, err := regexp.Compile(opts.exportRedact)
		if err != nil {
			return fmt.Errorf("--redact: %w", err)
		}
		dumpOpts = append(dumpOpts, jsonenv.WithRedact(re))
	}

	if opts.exportOutput != "" {
		path, err := jsonenv.WriteSnapshot(prov, opts.exportOutput, dumpOpts...)
		if err != nil {
			return err
		}
		logger.Info("snapshot written", zap.String("path", path))
		return nil
	}

	return jsonenv.Dump(w, prov, dumpOpts...)
}

// execute runs command with the current process environment and returns its exit code.
func execute(ctx context.Context, command []string, stdin io.Reader, stdout, stderr io.Writer, logger *zap.Logger) int {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Debug("running command", zap.Strings("command", command))

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		logger.Error("failed to run command", zap.String("command", command[0]), zap.Error(err))
		return 127
	}

	return 0
}
