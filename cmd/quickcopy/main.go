package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/akesseler/QuickCopy/internal/config"
	"github.com/akesseler/QuickCopy/internal/engine"
	"github.com/akesseler/QuickCopy/internal/stats"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		recursive   bool
		pattern     string
		move        bool
		verify      bool
		overwrite   bool
		workers     int
		digest      string
		bwLimitStr  string
		logFile     string
		verbose     bool
		quiet       bool
		showVersion bool
	)

	rootCmd := &cobra.Command{
		Use:   "quickcopy [flags] <source>... <target-dir>",
		Short: "Fast parallel file copy with long-path support and integrity verification",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.MinimumNArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "quickcopy %s\n", version)
				return nil
			}

			sources := args[:len(args)-1]
			targetDir := args[len(args)-1]

			// Load optional config file; flags explicitly set win.
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: config file ignored: %v\n", err)
			}
			applyConfigDefaults(cmd, cfg.Defaults, &workers, &verify, &overwrite, &digest, &bwLimitStr, &logFile)

			var bwLimit int64
			if bwLimitStr != "" {
				bwLimit, err = parseSize(bwLimitStr)
				if err != nil {
					return fmt.Errorf("invalid --bwlimit: %w", err)
				}
			}

			logger, closeLog, err := buildLogger(verbose, quiet, logFile)
			if err != nil {
				return err
			}
			defer closeLog()

			request, err := buildRequest(sources, targetDir, pattern, recursive, move, verify, overwrite)
			if err != nil {
				return err
			}

			// Bridge terminal interrupts into the single shared cancellation
			// signal every handler polls.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			result := engine.Run(ctx, engine.Config{
				Request: request,
				Workers: workers,
				Digest:  engine.DigestAlgorithm(digest),
				BWLimit: bwLimit,
				Log:     logger,
				Stats:   collector,
			})

			if !quiet {
				fmt.Fprintln(os.Stderr, result.Stats.String())
			}

			if result.Err != nil {
				logger.Error("run finished with failures", zap.Error(result.Err))
				if result.Stats.EntriesCopied > 0 {
					return &exitError{code: 1} // partial failure
				}
				return &exitError{code: 2} // total failure
			}
			if result.Canceled {
				logger.Warn("run canceled",
					zap.Int("attempted", result.Attempted),
					zap.Int64("copied", result.Stats.EntriesCopied))
				return &exitError{code: 1}
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "scan the source directory recursively")
	rootCmd.Flags().StringVarP(&pattern, "pattern", "p", "", "file name pattern for directory scans (e.g. *.iso)")
	rootCmd.Flags().BoolVarP(&move, "move", "m", false, "delete each source after a successful copy")
	rootCmd.Flags().BoolVar(&verify, "verify", false, "verify each target against a streaming digest of its source")
	rootCmd.Flags().BoolVarP(&overwrite, "overwrite", "o", false, "replace pre-existing target files")
	rootCmd.Flags().IntVarP(&workers, "workers", "n", 0, "parallel entries per wave (default: processor count)")
	rootCmd.Flags().StringVar(&digest, "digest", "", "verification digest: blake3 (default) or xxh64")
	rootCmd.Flags().StringVar(&bwLimitStr, "bwlimit", "", "aggregate bandwidth limit (e.g. 100M, 1G)")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// buildRequest maps the CLI surface onto the engine request: a single
// directory source becomes a scan, anything else an explicit file list.
func buildRequest(sources []string, targetDir, pattern string, recursive, move, verify, overwrite bool) (engine.Request, error) {
	req := engine.Request{
		TargetDir: targetDir,
		Move:      move,
		Verify:    verify,
		Overwrite: overwrite,
	}

	if len(sources) == 1 {
		if fi, err := os.Stat(sources[0]); err == nil && fi.IsDir() {
			req.SourceDir = sources[0]
			req.Pattern = pattern
			req.Recursive = recursive
			return req, nil
		}
	}

	if pattern != "" || recursive {
		return engine.Request{}, fmt.Errorf("--pattern and --recursive require a single source directory")
	}
	req.Files = sources
	return req, nil
}

// buildLogger assembles the console core and, when requested, tees a JSON
// file core alongside it. Components receive this logger explicitly; there
// is no global logger state.
func buildLogger(verbose, quiet bool, logFile string) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	} else if quiet {
		level = zapcore.ErrorLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	if term.IsTerminal(int(os.Stderr.Fd())) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	if logFile == "" {
		return zap.New(consoleCore), func() {}, nil
	}

	lf, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(lf),
		zapcore.DebugLevel,
	)
	logger := zap.New(zapcore.NewTee(consoleCore, fileCore))
	closeLog := func() {
		_ = logger.Sync()
		_ = lf.Close()
	}
	return logger, closeLog, nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	workers *int,
	verify *bool,
	overwrite *bool,
	digest *string,
	bwLimit *string,
	logFile *string,
) {
	if !cmd.Flags().Changed("workers") && defaults.Workers != nil {
		*workers = *defaults.Workers
	}
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		*verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("overwrite") && defaults.Overwrite != nil {
		*overwrite = *defaults.Overwrite
	}
	if !cmd.Flags().Changed("digest") && defaults.Digest != nil {
		*digest = *defaults.Digest
	}
	if !cmd.Flags().Changed("bwlimit") && defaults.BWLimit != nil {
		*bwLimit = *defaults.BWLimit
	}
	if !cmd.Flags().Changed("log") && defaults.LogFile != nil {
		*logFile = *defaults.LogFile
	}
}

// parseSize parses a human byte count like 512, 100K, 10M, 1G.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	mult := int64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1 << 10
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1 << 20
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1 << 30
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive, got %d", n)
	}
	return n * mult, nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
