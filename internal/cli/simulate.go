package cli

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/gourdian25/gourdianringlog"
	"github.com/gourdian25/gourdianringlog/filesink"
	"github.com/gourdian25/gourdianringlog/pebblesink"
)

type simulateOptions struct {
	events     int
	flushEvery int
	seed       uint64
	noClock    bool
	fileDir    string
	compress   bool
	maxBytes   int64
	pebbleDir  string
}

func newSimulateCommand() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a cooperative main loop that records peripheral events and flushes when idle",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runSimulation(cmd.OutOrStdout(), cmd.ErrOrStderr(), config, opts)
		},
	}

	cmd.Flags().IntVar(&opts.events, "events", 100, "Number of events to record")
	cmd.Flags().IntVar(&opts.flushEvery, "flush-every", 10, "Flush after this many loop iterations (the idle slot)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "Seed of the event generator")
	cmd.Flags().BoolVar(&opts.noClock, "no-clock", false, "Run without a time source")
	cmd.Flags().StringVar(&opts.fileDir, "file-dir", "", "Persist to a rotating log file in this directory")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "zstd-compress rotated log files")
	cmd.Flags().Int64Var(&opts.maxBytes, "max-bytes", 0, "Rotate the log file at this size (default 1MB)")
	cmd.Flags().StringVar(&opts.pebbleDir, "pebble-dir", "", "Persist to a Pebble database in this directory")
	return cmd
}

var simulatedEvents = [...]string{
	"transfer complete",
	"transfer timeout",
	"bus arbitration lost",
	"buffer overrun",
	"conversion ready",
	"duty cycle updated",
	"counter overflow",
	"watchdog kicked",
}

func runSimulation(stdout, stderr io.Writer, config gourdianringlog.Config, opts simulateOptions) error {
	if opts.flushEvery <= 0 {
		return fmt.Errorf("--flush-every must be positive")
	}

	var persistence []gourdianringlog.Sink
	if opts.fileDir != "" {
		fs, err := filesink.Open(filesink.Config{Dir: opts.fileDir, MaxBytes: opts.maxBytes, Compress: opts.compress})
		if err != nil {
			return err
		}
		defer fs.Close()
		persistence = append(persistence, fs)
	}
	if opts.pebbleDir != "" {
		ps, err := pebblesink.Open(pebblesink.Options{DataDir: opts.pebbleDir, Fsync: pebblesink.FsyncModeInterval})
		if err != nil {
			return err
		}
		defer ps.Close()
		fmt.Fprintf(stderr, "pebble session %s\n", ps.Session())
		persistence = append(persistence, ps)
	}

	logOpts := []gourdianringlog.Option{
		gourdianringlog.WithDisplay(gourdianringlog.WriterSink(stdout)),
		gourdianringlog.WithErrorHandler(func(err error) {
			fmt.Fprintf(stderr, "sink error: %v\n", err)
		}),
	}
	if !opts.noClock {
		logOpts = append(logOpts, gourdianringlog.WithClock(gourdianringlog.SystemClock()))
	}
	if len(persistence) > 0 {
		logOpts = append(logOpts, gourdianringlog.WithPersistence(gourdianringlog.MultiSink(persistence...)))
	}

	logger, err := gourdianringlog.New(config, logOpts...)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	subsystems := gourdianringlog.Subsystems()
	for i := 0; i < opts.events; i++ {
		sub := subsystems[rng.IntN(len(subsystems))]
		level := simulatedLevel(rng)
		event := simulatedEvents[rng.IntN(len(simulatedEvents))]
		logger.Recordf(sub, level, level >= gourdianringlog.ERROR, "%s #%d", event, i)

		if (i+1)%opts.flushEvery == 0 {
			logger.Flush()
		}
	}
	logger.Flush()

	stats := logger.Stats()
	fmt.Fprintf(stderr, "admitted=%d filtered=%d overwritten=%d truncated=%d flushed=%d blanked=%d sink_errors=%d\n",
		stats.Admitted, stats.Filtered, stats.Overwritten, stats.Truncated, stats.Flushed, stats.Blanked, stats.SinkErrors)
	return nil
}

// simulatedLevel skews towards verbose levels the way firmware traces do.
func simulatedLevel(rng *rand.Rand) gourdianringlog.Level {
	switch n := rng.IntN(100); {
	case n < 40:
		return gourdianringlog.DEBUG
	case n < 70:
		return gourdianringlog.INFO
	case n < 85:
		return gourdianringlog.WARNING
	case n < 97:
		return gourdianringlog.ERROR
	default:
		return gourdianringlog.CRITICAL
	}
}
