// Package gourdianringlog provides a deferred, fixed-footprint logger for
// cooperative main loops on small targets.
//
// Overview:
// Recording a message only copies it into a bounded ring of records. Nothing
// is formatted or written until the application calls Flush, typically from
// an idle slot of its main loop. When the ring is full the oldest record is
// overwritten, so recording never blocks and never allocates more storage.
//
// Key Features:
// - Five severities (DEBUG, INFO, WARNING, ERROR, CRITICAL) plus NONE
// - Per-subsystem thresholds checked at record time and again at flush time
// - Fixed-capacity ring with overwrite-oldest semantics
// - Optional clock, display sink and persistence sink
// - Size-rotated file persistence with zstd backups (package filesink)
// - Pebble-backed persistence with boot sessions (package pebblesink)
// - log/slog handler (package slogbridge)
// - JSON or YAML configuration with RINGLOG_* environment overrides
// - Admission rate limiting
// - Thread-safe operations
//
// Getting Started:
//
// Basic example:
//
//	package main
//
//	import (
//	    "os"
//
//	    "github.com/gourdian25/gourdianringlog"
//	)
//
//	func main() {
//	    logger, err := gourdianringlog.New(gourdianringlog.DefaultConfig(),
//	        gourdianringlog.WithClock(gourdianringlog.SystemClock()),
//	        gourdianringlog.WithDisplay(gourdianringlog.WriterSink(os.Stdout)),
//	    )
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    for {
//	        logger.Info(gourdianringlog.CORE, "Mensaje")
//	        // ... work ...
//	        logger.Flush()
//	    }
//	}
//
// Line Format:
//
// Every flushed record becomes exactly one line:
//
//	2022-08-06 03:53:07, [INFO]	CORE:	Mensaje\r\n
//
// Without a clock the timestamp field is left out:
//
//	[INFO]	CORE:	Mensaje\r\n
//
// A record whose subsystem threshold was raised between Record and Flush is
// emitted as a lone "\r" unless Config.SkipFilteredLines is set.
//
// Configuration:
//
// Programmatic configuration:
//
//	config := gourdianringlog.Config{
//	    Capacity:         32,
//	    MaxMessageLength: 96,
//	    DefaultLevel:     "INFO",
//	    SubsystemLevels:  map[string]string{"SPI": "WARNING"},
//	}
//
// YAML configuration:
//
//	capacity: 32
//	max_message_length: 96
//	default_level: info
//	subsystem_levels:
//	  SPI: warning
//	max_record_rate: 200
//
// Load it with LoadConfig, overlay the environment with ApplyEnv, then
// pass the result to New.
//
// Thresholds:
//
// A record is kept when its level is at least the threshold of its
// subsystem. NONE disables a subsystem entirely.
//
//	logger.SetThreshold(gourdianringlog.SPI, gourdianringlog.WARNING)
//	logger.DisableSubsystem(gourdianringlog.PWM)
//	logger.EnableAll()
//
// Persistence:
//
// Records created with persist set are written to the persistence sink in
// addition to the display sink. Sinks that implement RecordSink receive the
// structured Record as well as the formatted line.
//
//	flash, _ := filesink.Open(filesink.Config{Dir: "logs", Name: "flash", Compress: true})
//	defer flash.Close()
//	logger, _ := gourdianringlog.New(config, gourdianringlog.WithPersistence(flash))
//	logger.Record(gourdianringlog.CORE, gourdianringlog.CRITICAL, "brown-out", true)
//
// Custom Error Handling:
//
// Sink errors never reach the caller of Flush. They are counted in
// Stats().SinkErrors and handed to Config.ErrorHandler, or printed to
// stderr when EnableFallback is set.
//
// Environment Overrides:
// - RINGLOG_CAPACITY            (ring slots)
// - RINGLOG_MAX_MESSAGE_LENGTH  (message storage, terminator included)
// - RINGLOG_LEVEL               (default threshold, e.g. "info")
// - RINGLOG_MAX_RATE            (records admitted per second)
// - RINGLOG_SKIP_FILTERED       ("true" to drop filtered lines)
//
// Testing:
//
// A fixed clock and a capturing sink make output deterministic:
//
//	func TestLogger(t *testing.T) {
//	    var buf bytes.Buffer
//	    logger, _ := gourdianringlog.New(gourdianringlog.DefaultConfig(),
//	        gourdianringlog.WithClock(gourdianringlog.ClockFunc(func() int64 { return 1659757987 })),
//	        gourdianringlog.WithDisplay(gourdianringlog.WriterSink(&buf)),
//	    )
//	    logger.Info(gourdianringlog.CORE, "Mensaje")
//	    logger.Flush()
//	    assert.Equal(t, "2022-08-06 03:53:07, [INFO]\tCORE:\tMensaje\r\n", buf.String())
//	}
//
// Performance Notes:
// - Record does no formatting and no I/O
// - Flush formats outside the lock, so sinks may call Record
// - Concurrent Flush calls are serialized and keep arrival order
// - Capacity bounds memory; a busy producer loses the oldest records first
package gourdianringlog
