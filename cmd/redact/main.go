package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"clinical-redact-go/internal/config"
	"clinical-redact-go/internal/dataset"
	"clinical-redact-go/internal/logger"
	"clinical-redact-go/internal/metrics"
	"clinical-redact-go/internal/pipeline"
	"clinical-redact-go/internal/rewriter"
	"clinical-redact-go/internal/types"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	in      string
	out     string
	envFile string
	prompt  string
	column  string
	dryRun  bool
	summary bool
	limit   int
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	flags := flag.NewFlagSet("redact", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: redact [flags] [max_records]")
		flags.PrintDefaults()
	}
	var o options
	flags.StringVar(&o.in, "in", envOr("INPUT_CSV", "data/processed/conversation_1000_processed.csv"), "input table (.csv or .xlsx)")
	flags.StringVar(&o.out, "out", envOr("OUTPUT_CSV", "data/processed/conversation_1000_redacted.csv"), "output table (.csv or .xlsx)")
	flags.StringVar(&o.envFile, "env", config.DefaultEnvFile, "optional .env file")
	flags.StringVar(&o.prompt, "prompt", "", "prompt variant: "+strings.Join(rewriter.Variants(), ", "))
	flags.StringVar(&o.column, "column", types.ConversationColumn, "column holding the dialogue")
	flags.BoolVar(&o.dryRun, "dry-run", false, "keep heads unchanged; no oracle calls, no credential needed")
	flags.BoolVar(&o.summary, "summary", false, "print a JSON summary of the input and exit")
	if err := flags.Parse(args); err != nil {
		return o, err
	}

	o.limit = pipeline.NoLimit
	switch flags.NArg() {
	case 0:
	case 1:
		n, err := strconv.Atoi(flags.Arg(0))
		if err != nil || n < 0 {
			flags.Usage()
			return o, fmt.Errorf("max_records must be a non-negative integer, got %q", flags.Arg(0))
		}
		o.limit = n
	default:
		flags.Usage()
		return o, fmt.Errorf("unexpected arguments: %q", flags.Args()[1:])
	}
	return o, nil
}

// run keeps stdout for the -summary report; usage and logs go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	log := logger.NewWithOutput(stderr).WithRun("")

	if opts.summary {
		if err := summarize(opts, stdout, log); err != nil {
			log.WithError(err).Error("summary failed")
			return exitFail
		}
		return exitOK
	}

	stats, err := redact(ctx, opts, log)
	if err != nil {
		var se *config.SetupError
		if errors.As(err, &se) {
			log.WithError(err).Error("setup failed")
		} else {
			log.WithError(err).Error("run failed")
		}
		return exitFail
	}
	log.WithFields(map[string]interface{}{
		"processed":   stats.Processed,
		"rewritten":   stats.Rewritten,
		"failed":      stats.Failed,
		"duration_ms": stats.Duration.Milliseconds(),
	}).Infof("saved to %s", opts.out)
	return exitOK
}

func redact(ctx context.Context, opts options, log *logger.Logger) (pipeline.Stats, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return pipeline.Stats{}, err
	}
	if opts.prompt != "" {
		cfg.Prompt = opts.prompt
	}

	var oracle rewriter.Oracle = rewriter.Identity
	if !opts.dryRun {
		if err := cfg.Validate(); err != nil {
			return pipeline.Stats{}, err
		}
		if oracle, err = rewriter.NewOracle(cfg.OracleOptions()); err != nil {
			return pipeline.Stats{}, config.Setup(err)
		}
	}
	prompt, err := cfg.ResolvePrompt()
	if err != nil {
		return pipeline.Stats{}, err
	}
	log.WithFields(map[string]interface{}{
		"provider": cfg.Provider,
		"model":    cfg.Model,
		"prompt":   prompt.Name,
		"dry_run":  opts.dryRun,
		"limit":    opts.limit,
	}).Info("starting redaction")

	src, err := dataset.Open(opts.in)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %s", config.ErrMissingInput, opts.in)
		}
		return pipeline.Stats{}, config.Setup(err)
	}
	defer src.Close()
	log.WithFields(map[string]interface{}{
		"input":   opts.in,
		"columns": src.Header(),
	}).Info("input opened")
	if err := pipeline.CheckColumn(src.Header(), opts.column); err != nil {
		return pipeline.Stats{}, err
	}

	dst, err := dataset.Create(opts.out)
	if err != nil {
		return pipeline.Stats{}, config.Setup(err)
	}

	m := metrics.New("redact")
	if cfg.MetricsAddr != "" {
		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := metrics.Serve(serveCtx, cfg.MetricsAddr, m, log); err != nil {
				log.WithError(err).Warn("metrics server stopped")
			}
		}()
	}

	driver := pipeline.New(
		rewriter.NewInvoker(oracle, prompt),
		pipeline.WithLogger(log),
		pipeline.WithMetrics(m),
		pipeline.WithLimit(opts.limit),
		pipeline.WithColumn(opts.column),
	)
	stats, runErr := driver.Run(ctx, src, dst)
	if err := dst.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close output: %w", err)
	}
	return stats, runErr
}

func summarize(opts options, stdout io.Writer, log *logger.Logger) error {
	src, err := dataset.Open(opts.in)
	if err != nil {
		return err
	}
	defer src.Close()
	s, err := dataset.Summarize(src, opts.column, log)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
