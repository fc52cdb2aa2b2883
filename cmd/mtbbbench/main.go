// Command mtbbbench runs a set of self-checking workloads through the mtbb
// facade and reports how long each took. Build it with -tags mtbb_serial to
// measure the serial backend.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/mathicgb/mtbb"
	"github.com/mathicgb/mtbb/internal/config"
	"github.com/mathicgb/mtbb/internal/workload"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		die("%v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "mtbbbench: "+format+"\n", args...)
	os.Exit(1)
}

func run(args []string, stderr io.Writer) error {
	flags := flag.NewFlagSet("mtbbbench", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configFile := flags.String("config", "", "path to a YAML config file")
	threads := flags.Int("threads", 0, "maximum number of concurrent workers (0 = all CPUs)")
	size := flags.Int("size", 0, "problem size of every workload")
	grain := flags.Int("grain", 0, "grain size for range based workloads")
	seed := flags.Uint64("seed", 0, "seed for generated inputs")
	workloads := flags.String("workloads", "", "comma separated workloads to run ("+strings.Join(workload.Names(), ", ")+")")
	logLevel := flags.String("log-level", "", "debug, info, warn or error")
	noColor := flags.Bool("no-color", false, "disable colored log output")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threads":
			cfg.Threads = *threads
		case "size":
			cfg.Size = *size
		case "grain":
			cfg.Grain = *grain
		case "seed":
			cfg.Seed = *seed
		case "workloads":
			cfg.Workloads = strings.Split(*workloads, ",")
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	level, _ := cfg.Level()

	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    *noColor,
	}))

	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer undo()
	if err != nil {
		logger.Warn("could not adjust GOMAXPROCS", slog.Any("error", err))
	}

	funcs := make([]workload.Func, len(cfg.Workloads))
	for i, name := range cfg.Workloads {
		if funcs[i], err = workload.Lookup(strings.TrimSpace(name)); err != nil {
			return err
		}
	}

	scheduler := mtbb.NewScheduler(cfg.Threads, mtbb.WithLogger(logger))
	defer scheduler.Close()

	logger.Info("starting",
		slog.String("backend", mtbb.Backend),
		slog.Int("max_concurrency", mtbb.MaxConcurrency()),
		slog.Int("size", cfg.Size),
		slog.Int("grain", cfg.Grain),
	)

	params := workload.Params{Size: cfg.Size, Grain: cfg.Grain, Seed: cfg.Seed}
	total := mtbb.Now()
	for _, f := range funcs {
		res, err := f(params)
		if err != nil {
			return fmt.Errorf("%s: %w", res.Name, err)
		}
		logger.Info("workload done",
			slog.String("name", res.Name),
			slog.Float64("seconds", res.Elapsed.Seconds()),
			slog.Int64("checksum", res.Checksum),
		)
	}
	logger.Info("finished", slog.Duration("elapsed", mtbb.Now().Sub(total).Duration()))
	return nil
}
